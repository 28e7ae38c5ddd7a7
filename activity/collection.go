package activity

import (
	"errors"
	"fmt"

	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/schema"
)

// ErrInvalidCollection is returned when a collection document is rejected.
var ErrInvalidCollection = errors.New("invalid collection")

// Collection is an ordered, optionally paged set of items.
type Collection struct {
	*document.Document
}

// CollectionFactory builds *Collection values for the "collection" model.
var CollectionFactory = schema.NewFactory(TagCollection, NewCollectionFrom)

// NewCollectionFrom wraps a document as a Collection. A negative or
// non-integral totalItems is rejected.
func NewCollectionFrom(d *document.Document) (*Collection, error) {
	if v, ok := d.Get(PropTotalItems); ok {
		n, isInt := d.Int(PropTotalItems)
		if !isInt {
			return nil, fmt.Errorf("%w: totalItems %v is not an integer", ErrInvalidCollection, v)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative totalItems %d", ErrInvalidCollection, n)
		}
	}
	return &Collection{Document: d}, nil
}

// TotalItems returns the declared total, which may exceed len(Items) for a
// paged collection.
func (c *Collection) TotalItems() (int64, bool) {
	return c.Int(PropTotalItems)
}

// Items returns the collection members in order. A single embedded document
// is returned as a one-element slice.
func (c *Collection) Items() []any {
	v, ok := c.Get(PropItems)
	if !ok {
		return nil
	}
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{v}
}

// Documents returns the members that are documents, skipping other values.
func (c *Collection) Documents() []*document.Document {
	var out []*document.Document
	for _, item := range c.Items() {
		if t, ok := item.(document.Typed); ok {
			out = append(out, t.Doc())
		}
	}
	return out
}

// CollectionBuilder assembles a Collection.
type CollectionBuilder struct {
	*document.Builder
	items []any
}

// NewCollection starts a collection tagged with the "collection" object type.
func NewCollection() *CollectionBuilder {
	return &CollectionBuilder{Builder: document.NewBuilder().ObjectType(TagCollection)}
}

// Add appends members.
func (b *CollectionBuilder) Add(items ...document.Typed) *CollectionBuilder {
	for _, item := range items {
		b.items = append(b.items, item)
	}
	return b
}

// TotalItems sets the declared total.
func (b *CollectionBuilder) TotalItems(n int64) *CollectionBuilder {
	b.Set(PropTotalItems, n)
	return b
}

// Build validates and returns the collection. When no total was set it
// defaults to the number of members added.
func (b *CollectionBuilder) Build() (*Collection, error) {
	if len(b.items) > 0 {
		items := make([]any, len(b.items))
		copy(items, b.items)
		b.Set(PropItems, items)
	}
	if !b.Has(PropTotalItems) {
		b.Set(PropTotalItems, int64(len(b.items)))
	}
	return NewCollectionFrom(b.Builder.Build())
}
