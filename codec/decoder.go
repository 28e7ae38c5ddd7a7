package codec

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/schema"
)

// Decoder carries the state of one decode call. Adapters receive it to
// decode nested values and to report located errors. A Decoder is confined
// to the goroutine running the call.
type Decoder struct {
	c    *Codec
	path []string
}

// Schema returns the schema driving the decode.
func (d *Decoder) Schema() *schema.Schema {
	return d.c.schema
}

// Path returns the location currently being decoded, e.g. $.object.tags[1].
func (d *Decoder) Path() string {
	return "$" + strings.Join(d.path, "")
}

func (d *Decoder) pushName(name string) {
	d.path = append(d.path, "."+name)
}

func (d *Decoder) pushIndex(i int) {
	d.path = append(d.path, "["+strconv.Itoa(i)+"]")
}

func (d *Decoder) pop() {
	d.path = d.path[:len(d.path)-1]
}

// Malformed returns a located ErrMalformed error.
func (d *Decoder) Malformed(format string, args ...any) error {
	return &DecodeError{Path: d.Path(), Err: fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...)}
}

// Value decodes v for a property declared with kind. Arrays are decoded as a
// whole by ArrayAdapters and element by element otherwise.
func (d *Decoder) Value(kind schema.Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	a := d.c.adapter(kind)
	if list, ok := v.([]any); ok {
		if aa, ok := a.(ArrayAdapter); ok {
			return aa.DecodeArray(d, list)
		}
		out := make([]any, 0, len(list))
		for i, item := range list {
			d.pushIndex(i)
			val, err := d.Value(kind, item)
			d.pop()
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	}
	if a == nil {
		return d.Primitive(v)
	}
	return a.Decode(d, v)
}

// Primitive applies the rule used for undeclared properties: booleans,
// numbers and strings keep their JSON type, objects become documents and
// arrays become lists.
func (d *Decoder) Primitive(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string:
		return x, nil
	case json.Number:
		n, err := number(x)
		if err != nil {
			return nil, d.wrap(err)
		}
		return n, nil
	case *Object:
		return d.DecodeObject(x, "")
	case []any:
		return d.Value(schema.KindNone, x)
	}
	return nil, d.Malformed("unexpected value %T", v)
}

// DecodeObject decodes a nested document. tag names the model used when the
// object carries no type tag and is not recognized by shape.
func (d *Decoder) DecodeObject(obj *Object, tag string) (document.Typed, error) {
	return d.decode(obj, hint{tag: tag})
}

// hint is the static expectation for a document being decoded.
type hint struct {
	typ reflect.Type
	tag string
}

func (d *Decoder) decode(obj *Object, h hint) (document.Typed, error) {
	tv, err := d.typeTag(obj)
	if err != nil {
		return nil, err
	}
	r := d.resolve(obj, h, tv)

	b := document.NewBuilder()
	for _, m := range obj.Members {
		if m.Name == document.PropObjectType {
			if tv != nil {
				b.Set(m.Name, tv)
			}
			continue
		}
		if m.Value == nil {
			continue
		}
		d.pushName(m.Name)
		v, err := d.Value(r.Model.KindOf(m.Name), m.Value)
		d.pop()
		if err != nil {
			return nil, err
		}
		b.Set(m.Name, v)
	}

	typed, err := r.Factory.New(b)
	if err != nil {
		return nil, &DecodeError{
			Path: d.Path(),
			Err:  fmt.Errorf("%w: %s: %w", ErrConstruction, r.Factory.ID, err),
		}
	}
	return typed, nil
}

// typeTag decodes the type-tag member, which must be a string or an object.
func (d *Decoder) typeTag(obj *Object) (*document.TypeValue, error) {
	raw, ok := obj.Get(document.PropObjectType)
	if !ok || raw == nil {
		return nil, nil
	}
	d.pushName(document.PropObjectType)
	defer d.pop()
	v, err := decodeTypeValue(d, raw)
	if err != nil {
		return nil, err
	}
	return v.(*document.TypeValue), nil
}

// resolve picks the model and factory for obj. Special static types bind
// directly; otherwise an explicit type tag wins, then shape sniffing, then
// the static expectation, then the generic document.
func (d *Decoder) resolve(obj *Object, h hint, tv *document.TypeValue) schema.Resolution {
	s := d.c.schema
	if h.typ != nil && d.c.special[h.typ] {
		if r, ok := resolveType(s, h.typ); ok {
			return r
		}
	}

	if tv != nil {
		r := s.Resolve(tv.ID())
		if !r.Known {
			d.c.logger.Debug("Unknown type tag, using generic document",
				slog.String("tag", tv.ID()),
				slog.String("path", d.Path()))
			d.c.metrics.recordUnknownTag()
		}
		return r
	}

	if sniffed, ok := d.sniff(obj); ok {
		if r, ok := resolveType(s, sniffed); ok {
			d.c.logger.Debug("Inferred document type from shape",
				slog.String("factory", r.Factory.ID),
				slog.String("path", d.Path()))
			d.c.metrics.recordSniffed(r.Factory.ID)
			return r
		}
	}

	if h.tag != "" {
		if r := s.Resolve(h.tag); r.Known {
			return r
		}
	}
	if h.typ != nil {
		if r, ok := resolveType(s, h.typ); ok {
			return r
		}
	}
	return schema.Resolution{Model: s.Fallback(), Factory: schema.Generic}
}

// sniff recognizes untagged activities and collections. The activity check
// runs first.
func (d *Decoder) sniff(obj *Object) (reflect.Type, bool) {
	if obj.Has(activity.PropVerb) &&
		(obj.Has(activity.PropActor) || obj.Has(activity.PropObject) || obj.Has(activity.PropTarget)) {
		return activityType, true
	}
	if obj.Has(activity.PropItems) {
		return collectionType, true
	}
	return nil, false
}

// resolveType returns the resolution bound to a concrete Go type.
func resolveType(s *schema.Schema, t reflect.Type) (schema.Resolution, bool) {
	f, ok := s.FactoryForType(t)
	if !ok {
		return schema.Resolution{}, false
	}
	m, ok := s.ModelForFactory(f.ID)
	if !ok {
		m = s.Fallback()
	}
	return schema.Resolution{Tag: m.Name(), Model: m, Factory: f, Known: true}, true
}
