package activitystreams

import (
	"strings"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semstreams/vocabulary"
)

// Namespace is the IRI prefix for Activity Streams terms.
const Namespace = "https://www.w3.org/ns/activitystreams#"

// RDFType is the rdf:type property.
const RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// Object predicates.
const (
	// ObjectType is the vocabulary type of the document.
	ObjectType = "activity.object.type"

	// ObjectID is the document identifier.
	ObjectID = "activity.object.id"

	ObjectDisplayName = "activity.object.display_name"
	ObjectTitle       = "activity.object.title"
	ObjectContent     = "activity.object.content"
	ObjectSummary     = "activity.object.summary"

	// ObjectPublished is when the object was first made available.
	ObjectPublished = "activity.object.published"
	ObjectUpdated   = "activity.object.updated"
	ObjectStartTime = "activity.object.start_time"
	ObjectEndTime   = "activity.object.end_time"

	// ObjectAuthor links the object to the entity that created it.
	ObjectAuthor     = "activity.object.author"
	ObjectURL        = "activity.object.url"
	ObjectTag        = "activity.object.tag"
	ObjectInReplyTo  = "activity.object.in_reply_to"
	ObjectLocation   = "activity.object.location"
	ObjectAttachment = "activity.object.attachment"
	ObjectImage      = "activity.object.image"
)

// Activity predicates.
const (
	// ActivityVerb identifies the action the activity describes.
	ActivityVerb = "activity.activity.verb"

	ActivityActor     = "activity.activity.actor"
	ActivityObject    = "activity.activity.object"
	ActivityTarget    = "activity.activity.target"
	ActivityGenerator = "activity.activity.generator"
	ActivityProvider  = "activity.activity.provider"
)

// Collection predicates.
const (
	// CollectionTotalItems is the declared size of the collection.
	CollectionTotalItems = "activity.collection.total_items"

	CollectionItems = "activity.collection.items"
	CollectionFirst = "activity.collection.first"
	CollectionLast  = "activity.collection.last"
	CollectionNext  = "activity.collection.next"
	CollectionPrev  = "activity.collection.prev"
)

// propertyPredicates maps wire property names to predicates.
var propertyPredicates = map[string]string{
	activity.PropObjectType:  ObjectType,
	activity.PropID:          ObjectID,
	activity.PropDisplayName: ObjectDisplayName,
	activity.PropTitle:       ObjectTitle,
	activity.PropContent:     ObjectContent,
	activity.PropSummary:     ObjectSummary,
	activity.PropPublished:   ObjectPublished,
	activity.PropUpdated:     ObjectUpdated,
	activity.PropStartTime:   ObjectStartTime,
	activity.PropEndTime:     ObjectEndTime,
	activity.PropAuthor:      ObjectAuthor,
	activity.PropURL:         ObjectURL,
	activity.PropTags:        ObjectTag,
	activity.PropInReplyTo:   ObjectInReplyTo,
	activity.PropLocation:    ObjectLocation,
	activity.PropAttachments: ObjectAttachment,
	activity.PropImage:       ObjectImage,

	activity.PropVerb:      ActivityVerb,
	activity.PropActor:     ActivityActor,
	activity.PropObject:    ActivityObject,
	activity.PropTarget:    ActivityTarget,
	activity.PropGenerator: ActivityGenerator,
	activity.PropProvider:  ActivityProvider,

	activity.PropTotalItems: CollectionTotalItems,
	activity.PropItems:      CollectionItems,
	activity.PropFirst:      CollectionFirst,
	activity.PropLast:       CollectionLast,
	activity.PropNext:       CollectionNext,
	activity.PropPrev:       CollectionPrev,
}

// PredicateFor returns the predicate registered for a wire property name.
func PredicateFor(property string) (string, bool) {
	p, ok := propertyPredicates[property]
	return p, ok
}

// Properties returns a copy of the property to predicate mapping.
func Properties() map[string]string {
	out := make(map[string]string, len(propertyPredicates))
	for k, v := range propertyPredicates {
		out[k] = v
	}
	return out
}

// ClassIRI returns the class IRI for a type tag. Absolute IRIs are returned
// unchanged; bare tokens are capitalized into the Activity Streams namespace.
func ClassIRI(tag string) string {
	if tag == "" || strings.Contains(tag, ":") {
		return tag
	}
	return Namespace + strings.ToUpper(tag[:1]) + tag[1:]
}

func init() {
	vocabulary.Register(ObjectType,
		vocabulary.WithDescription("Vocabulary type of the document"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFType))

	vocabulary.Register(ObjectID,
		vocabulary.WithDescription("Document identifier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcIdentifier))

	vocabulary.Register(ObjectDisplayName,
		vocabulary.WithDescription("Human-readable name of the object"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.SkosPrefLabel))

	vocabulary.Register(ObjectTitle,
		vocabulary.WithDescription("Title of the object"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcTitle))

	vocabulary.Register(ObjectContent,
		vocabulary.WithDescription("Content of the object, possibly HTML"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"content"))

	vocabulary.Register(ObjectSummary,
		vocabulary.WithDescription("Short summary of the object"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"summary"))

	vocabulary.Register(ObjectPublished,
		vocabulary.WithDescription("When the object was published"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(vocabulary.ProvGeneratedAtTime))

	vocabulary.Register(ObjectUpdated,
		vocabulary.WithDescription("When the object was last updated"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(Namespace+"updated"))

	vocabulary.Register(ObjectStartTime,
		vocabulary.WithDescription("When the described event starts"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(Namespace+"startTime"))

	vocabulary.Register(ObjectEndTime,
		vocabulary.WithDescription("When the described event ends"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(Namespace+"endTime"))

	vocabulary.Register(ObjectAuthor,
		vocabulary.WithDescription("Entity that created the object"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(vocabulary.ProvWasAttributedTo))

	vocabulary.Register(ObjectURL,
		vocabulary.WithDescription("Link to a representation of the object"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"url"))

	vocabulary.Register(ObjectTag,
		vocabulary.WithDescription("Objects the object is tagged with"),
		vocabulary.WithDataType("array"),
		vocabulary.WithIRI(Namespace+"tag"))

	vocabulary.Register(ObjectInReplyTo,
		vocabulary.WithDescription("Objects this object responds to"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"inReplyTo"))

	vocabulary.Register(ObjectLocation,
		vocabulary.WithDescription("Place associated with the object"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"location"))

	vocabulary.Register(ObjectAttachment,
		vocabulary.WithDescription("Objects attached to the object"),
		vocabulary.WithDataType("array"),
		vocabulary.WithIRI(Namespace+"attachment"))

	vocabulary.Register(ObjectImage,
		vocabulary.WithDescription("Image representing the object"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"image"))

	vocabulary.Register(ActivityVerb,
		vocabulary.WithDescription("Action performed by the actor"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"verb"))

	vocabulary.Register(ActivityActor,
		vocabulary.WithDescription("Entity that performed the activity"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"actor"))

	vocabulary.Register(ActivityObject,
		vocabulary.WithDescription("Primary object of the activity"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"object"))

	vocabulary.Register(ActivityTarget,
		vocabulary.WithDescription("Indirect object of the activity"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"target"))

	vocabulary.Register(ActivityGenerator,
		vocabulary.WithDescription("Application that generated the activity"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"generator"))

	vocabulary.Register(ActivityProvider,
		vocabulary.WithDescription("Service that published the activity"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"provider"))

	vocabulary.Register(CollectionTotalItems,
		vocabulary.WithDescription("Declared number of items in the collection"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"totalItems"))

	vocabulary.Register(CollectionItems,
		vocabulary.WithDescription("Members of the collection"),
		vocabulary.WithDataType("array"),
		vocabulary.WithIRI(Namespace+"items"))

	vocabulary.Register(CollectionFirst,
		vocabulary.WithDescription("First page of the collection"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"first"))

	vocabulary.Register(CollectionLast,
		vocabulary.WithDescription("Last page of the collection"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"last"))

	vocabulary.Register(CollectionNext,
		vocabulary.WithDescription("Next page of the collection"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"next"))

	vocabulary.Register(CollectionPrev,
		vocabulary.WithDescription("Previous page of the collection"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"prev"))
}
