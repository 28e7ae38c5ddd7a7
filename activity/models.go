// Package activity provides the built-in base vocabulary: the "object" model
// every document inherits from, the "activity" and "collection" models with
// their concrete Go types, and the "mediaLink" model used for images and icons.
package activity

import "github.com/c360studio/semactivity/schema"

// Type tags of the built-in models.
const (
	TagObject     = "object"
	TagActivity   = "activity"
	TagCollection = "collection"
	TagMediaLink  = "mediaLink"
)

// Object properties.
const (
	PropAttachments          = "attachments"
	PropAuthor               = "author"
	PropContent              = "content"
	PropDisplayName          = "displayName"
	PropDownstreamDuplicates = "downstreamDuplicates"
	PropEndTime              = "endTime"
	PropID                   = "id"
	PropImage                = "image"
	PropInReplyTo            = "inReplyTo"
	PropLocation             = "location"
	PropObjectType           = "objectType"
	PropPublished            = "published"
	PropStartTime            = "startTime"
	PropSummary              = "summary"
	PropTags                 = "tags"
	PropTitle                = "title"
	PropUpdated              = "updated"
	PropUpstreamDuplicates   = "upstreamDuplicates"
	PropURL                  = "url"
)

// Activity properties.
const (
	PropActor     = "actor"
	PropGenerator = "generator"
	PropIcon      = "icon"
	PropObject    = "object"
	PropProvider  = "provider"
	PropTarget    = "target"
	PropVerb      = "verb"
)

// Collection properties.
const (
	PropItems        = "items"
	PropItemsPerPage = "itemsPerPage"
	PropStartIndex   = "startIndex"
	PropTotalItems   = "totalItems"
	PropFirst        = "first"
	PropLast         = "last"
	PropNext         = "next"
	PropPrev         = "prev"
	PropCurrent      = "current"
)

// Media link properties.
const (
	PropDuration = "duration"
	PropHeight   = "height"
	PropMimeType = "mimeType"
	PropWidth    = "width"
)

// ObjectModel is the root model of the vocabulary.
func ObjectModel() *schema.Model {
	return schema.NewModel(TagObject).
		Type(PropObjectType).
		Link(PropAttachments, PropAuthor, PropDownstreamDuplicates, PropUpstreamDuplicates,
			PropInReplyTo, PropLocation, PropTags, PropURL).
		Text(PropContent, PropDisplayName, PropSummary, PropTitle).
		DateTime(PropPublished, PropUpdated, PropStartTime, PropEndTime).
		Property(schema.KindString, PropID).
		Document(TagMediaLink, PropImage).
		Build()
}

// ActivityModel extends the object model with the actor/verb/object relation.
func ActivityModel() *schema.Model {
	return schema.NewModel(TagActivity).
		Parent(TagObject).
		Type(PropVerb).
		Link(PropActor, PropObject, PropTarget, PropGenerator, PropProvider).
		Document(TagMediaLink, PropIcon).
		Factory(ActivityFactory).
		Build()
}

// CollectionModel extends the object model with paging and items.
func CollectionModel() *schema.Model {
	return schema.NewModel(TagCollection).
		Parent(TagObject).
		Document("", PropItems).
		Property(schema.KindNumber, PropTotalItems, PropItemsPerPage, PropStartIndex).
		Link(PropFirst, PropLast, PropNext, PropPrev, PropCurrent).
		Factory(CollectionFactory).
		Build()
}

// MediaLinkModel describes images, icons and other media references.
func MediaLinkModel() *schema.Model {
	return schema.NewModel(TagMediaLink).
		Property(schema.KindString, PropURL).
		Property(schema.KindNumber, PropWidth, PropHeight).
		Duration(PropDuration).
		MediaType(PropMimeType).
		Build()
}

// Models returns the built-in models.
func Models() []*schema.Model {
	return []*schema.Model{ObjectModel(), ActivityModel(), CollectionModel(), MediaLinkModel()}
}
