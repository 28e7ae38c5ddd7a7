package activity

import (
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/schema"
	"github.com/google/uuid"
)

// Common verbs.
const (
	VerbPost     = "post"
	VerbShare    = "share"
	VerbLike     = "like"
	VerbFavorite = "favorite"
	VerbFollow   = "follow"
	VerbJoin     = "join"
	VerbUpdate   = "update"
	VerbDelete   = "delete"
)

// ErrInvalidActivity is returned when an activity document is rejected.
var ErrInvalidActivity = errors.New("invalid activity")

// Activity is an actor performing a verb on an object, optionally against a
// target.
type Activity struct {
	*document.Document
}

// ActivityFactory builds *Activity values for the "activity" model.
var ActivityFactory = schema.NewFactory(TagActivity, NewActivityFrom)

// NewActivityFrom wraps a document as an Activity. The verb, when present,
// must be a type value or a plain string.
func NewActivityFrom(d *document.Document) (*Activity, error) {
	if v, ok := d.Get(PropVerb); ok {
		switch v.(type) {
		case *document.TypeValue, string:
		default:
			return nil, fmt.Errorf("%w: verb has type %T", ErrInvalidActivity, v)
		}
	}
	return &Activity{Document: d}, nil
}

// Verb returns the activity verb, or nil.
func (a *Activity) Verb() *document.TypeValue {
	return a.TypeValue(PropVerb)
}

// Actor returns the actor link, or nil.
func (a *Activity) Actor() *document.Link {
	return a.Link(PropActor)
}

// Object returns the object link, or nil.
func (a *Activity) Object() *document.Link {
	return a.Link(PropObject)
}

// Target returns the target link, or nil.
func (a *Activity) Target() *document.Link {
	return a.Link(PropTarget)
}

// Published returns the publication time.
func (a *Activity) Published() (time.Time, bool) {
	return a.Time(PropPublished)
}

// ActivityBuilder assembles an Activity. The embedded document builder
// accepts any additional property.
type ActivityBuilder struct {
	*document.Builder
}

// NewActivity starts an activity tagged with the "activity" object type.
func NewActivity() *ActivityBuilder {
	return &ActivityBuilder{Builder: document.NewBuilder().ObjectType(TagActivity)}
}

// Verb sets the verb.
func (b *ActivityBuilder) Verb(verb string) *ActivityBuilder {
	b.Set(PropVerb, document.TypeID(verb))
	return b
}

// Actor adds an actor. Repeated calls accumulate.
func (b *ActivityBuilder) Actor(l *document.Link) *ActivityBuilder {
	b.Link(PropActor, l)
	return b
}

// Object adds an object. Repeated calls accumulate.
func (b *ActivityBuilder) Object(l *document.Link) *ActivityBuilder {
	b.Link(PropObject, l)
	return b
}

// Target adds a target. Repeated calls accumulate.
func (b *ActivityBuilder) Target(l *document.Link) *ActivityBuilder {
	b.Link(PropTarget, l)
	return b
}

// Published sets the publication time.
func (b *ActivityBuilder) Published(t time.Time) *ActivityBuilder {
	b.Time(PropPublished, t)
	return b
}

// Build validates and returns the activity.
func (b *ActivityBuilder) Build() (*Activity, error) {
	return NewActivityFrom(b.Builder.Build())
}

// NewID returns a fresh URN identifier for a document.
func NewID() string {
	return "urn:uuid:" + uuid.NewString()
}
