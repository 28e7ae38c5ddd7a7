package document

import "time"

// Builder accumulates properties and produces an immutable Document.
// A Builder is not safe for concurrent use; confine it to one goroutine.
type Builder struct {
	names  []string
	values map[string]any
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{values: make(map[string]any)}
}

// Set stores value under name. An existing property keeps its position.
// A nil value removes the property.
func (b *Builder) Set(name string, value any) *Builder {
	if value == nil {
		return b.Remove(name)
	}
	if _, ok := b.values[name]; !ok {
		b.names = append(b.names, name)
	}
	b.values[name] = value
	return b
}

// Remove deletes a property.
func (b *Builder) Remove(name string) *Builder {
	if _, ok := b.values[name]; !ok {
		return b
	}
	delete(b.values, name)
	for i, n := range b.names {
		if n == name {
			b.names = append(b.names[:i], b.names[i+1:]...)
			break
		}
	}
	return b
}

// Get returns the value currently held for name.
func (b *Builder) Get(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Has reports whether name has been set.
func (b *Builder) Has(name string) bool {
	_, ok := b.values[name]
	return ok
}

// Len returns the number of properties set.
func (b *Builder) Len() int {
	return len(b.names)
}

// Link adds a link value to a repeatable property. When the property already
// holds a link the two are merged into an Array link in call order.
func (b *Builder) Link(name string, l *Link) *Builder {
	if l == nil {
		return b
	}
	prev, _ := b.values[name]
	return b.Set(name, mergeLinks(prev, l))
}

// LinkURI adds a Simple link to uri. See Link.
func (b *Builder) LinkURI(name, uri string) *Builder {
	return b.Link(name, LinkTo(uri))
}

// LinkDocument adds an Object link embedding doc. See Link.
func (b *Builder) LinkDocument(name string, doc Typed) *Builder {
	return b.Link(name, LinkObject(doc))
}

// ID sets the id property.
func (b *Builder) ID(id string) *Builder {
	return b.Set(PropID, id)
}

// ObjectType sets the type tag to a Simple type value.
func (b *Builder) ObjectType(tag string) *Builder {
	return b.Set(PropObjectType, TypeID(tag))
}

// DisplayName sets displayName to a Simple natural-language value.
func (b *Builder) DisplayName(s string) *Builder {
	return b.Set(PropDisplayName, Text(s))
}

// Text sets a Simple natural-language value.
func (b *Builder) Text(name, s string) *Builder {
	return b.Set(name, Text(s))
}

// Time sets a date-time property.
func (b *Builder) Time(name string, t time.Time) *Builder {
	return b.Set(name, t)
}

// Build returns an immutable snapshot. The builder may keep being used; later
// changes do not affect documents already built.
func (b *Builder) Build() *Document {
	names := make([]string, len(b.names))
	copy(names, b.names)
	values := make(map[string]any, len(b.values))
	for k, v := range b.values {
		values[k] = v
	}
	return &Document{names: names, values: values}
}
