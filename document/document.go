package document

import "time"

// Well-known property names.
const (
	// PropID is the document identifier property.
	PropID = "id"

	// PropObjectType is the type-tag property used for wire identification.
	PropObjectType = "objectType"

	// PropDisplayName is the human-readable name property.
	PropDisplayName = "displayName"
)

// Typed is implemented by every concrete document type. Concrete types wrap a
// Document and expose it through Doc.
type Typed interface {
	Doc() *Document
}

// Document is an immutable, insertion-ordered property bag.
// A nil *Document behaves as an empty document.
type Document struct {
	names  []string
	values map[string]any
}

// Empty returns a document with no properties.
func Empty() *Document {
	return &Document{values: map[string]any{}}
}

// Doc implements Typed.
func (d *Document) Doc() *Document {
	return d
}

// Len returns the number of properties.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Names returns the property names in insertion order.
func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Has reports whether the property is present.
func (d *Document) Has(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.values[name]
	return ok
}

// Get returns the raw value of a property.
func (d *Document) Get(name string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[name]
	return v, ok
}

// Range calls fn for each property in insertion order until fn returns false.
func (d *Document) Range(fn func(name string, value any) bool) {
	if d == nil {
		return
	}
	for _, name := range d.names {
		if !fn(name, d.values[name]) {
			return
		}
	}
}

// ID returns the id property as a string, or "" when absent.
func (d *Document) ID() string {
	s, _ := d.String(PropID)
	return s
}

// ObjectType returns the type tag of the document, or nil when untagged.
// A plain string tag is returned as a Simple type value.
func (d *Document) ObjectType() *TypeValue {
	return d.TypeValue(PropObjectType)
}

// DisplayName returns the displayName property, or nil when absent.
func (d *Document) DisplayName() *LangText {
	return d.LangText(PropDisplayName)
}

// String returns a string-valued property.
func (d *Document) String(name string) (string, bool) {
	v, _ := d.Get(name)
	s, ok := v.(string)
	return s, ok
}

// Bool returns a boolean property.
func (d *Document) Bool(name string) (bool, bool) {
	v, _ := d.Get(name)
	b, ok := v.(bool)
	return b, ok
}

// Int returns an integral numeric property.
func (d *Document) Int(name string) (int64, bool) {
	v, _ := d.Get(name)
	return toInt64(v)
}

// Float returns a numeric property as float64.
func (d *Document) Float(name string) (float64, bool) {
	v, _ := d.Get(name)
	return toFloat64(v)
}

// Time returns a date-time property.
func (d *Document) Time(name string) (time.Time, bool) {
	v, _ := d.Get(name)
	t, ok := v.(time.Time)
	return t, ok
}

// Duration returns a duration property.
func (d *Document) Duration(name string) (time.Duration, bool) {
	v, _ := d.Get(name)
	t, ok := v.(time.Duration)
	return t, ok
}

// Link returns a link-valued property. A plain string is returned as a
// Simple link and an embedded document as an Object link.
func (d *Document) Link(name string) *Link {
	v, _ := d.Get(name)
	switch l := v.(type) {
	case *Link:
		return l
	case string:
		return LinkTo(l)
	case Typed:
		return LinkObject(l)
	default:
		return nil
	}
}

// TypeValue returns a type-valued property. A plain string is returned as a
// Simple type value and an embedded document as an Object type value.
func (d *Document) TypeValue(name string) *TypeValue {
	v, _ := d.Get(name)
	switch t := v.(type) {
	case *TypeValue:
		return t
	case string:
		return TypeID(t)
	case Typed:
		return TypeObject(t)
	default:
		return nil
	}
}

// LangText returns a natural-language property. A plain string is returned
// as a Simple value.
func (d *Document) LangText(name string) *LangText {
	v, _ := d.Get(name)
	switch t := v.(type) {
	case *LangText:
		return t
	case string:
		return Text(t)
	default:
		return nil
	}
}

// Embedded returns an embedded document property.
func (d *Document) Embedded(name string) *Document {
	v, _ := d.Get(name)
	if t, ok := v.(Typed); ok {
		return t.Doc()
	}
	return nil
}

// List returns a list-valued property.
func (d *Document) List(name string) []any {
	v, _ := d.Get(name)
	l, _ := v.([]any)
	return l
}

// Template returns a builder pre-populated with the document's properties.
func (d *Document) Template() *Builder {
	b := NewBuilder()
	d.Range(func(name string, value any) bool {
		b.Set(name, value)
		return true
	})
	return b
}

// Equal reports whether both documents hold equal values for the same
// property names. Property order is not significant.
func (d *Document) Equal(other *Document) bool {
	if d.Len() != other.Len() {
		return false
	}
	for _, name := range d.Names() {
		ov, ok := other.Get(name)
		if !ok {
			return false
		}
		v, _ := d.Get(name)
		if !ValuesEqual(v, ov) {
			return false
		}
	}
	return true
}
