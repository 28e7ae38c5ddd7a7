package codec

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/schema"
)

// Adapter decodes a parsed JSON value for one semantic kind. v is one of
// bool, json.Number, string, []any or *Object; null members never reach an
// adapter. Arrays reach Decode element by element unless the adapter is an
// ArrayAdapter.
type Adapter interface {
	Decode(d *Decoder, v any) (any, error)
}

// ArrayAdapter is implemented by adapters that decode a whole JSON array as a
// single value.
type ArrayAdapter interface {
	Adapter
	DecodeArray(d *Decoder, items []any) (any, error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(d *Decoder, v any) (any, error)

// Decode implements Adapter.
func (f AdapterFunc) Decode(d *Decoder, v any) (any, error) {
	return f(d, v)
}

// Writer converts a value of a registered Go type into a value the encoder
// already knows how to write.
type Writer func(v any) (any, error)

func builtinAdapters() map[schema.Kind]Adapter {
	return map[schema.Kind]Adapter{
		schema.KindLink:      linkAdapter{},
		schema.KindType:      AdapterFunc(decodeTypeValue),
		schema.KindText:      AdapterFunc(decodeLangText),
		schema.KindDateTime:  AdapterFunc(decodeDateTime),
		schema.KindDuration:  AdapterFunc(decodeDuration),
		schema.KindMediaType: AdapterFunc(decodeMediaType),
		schema.KindString:    AdapterFunc(decodeString),
		schema.KindNumber:    AdapterFunc(decodeNumber),
		schema.KindBoolean:   AdapterFunc(decodeBoolean),
		schema.KindDocument:  documentAdapter{},
	}
}

type linkAdapter struct{}

func (linkAdapter) Decode(d *Decoder, v any) (any, error) {
	switch x := v.(type) {
	case string:
		return document.LinkTo(x), nil
	case *Object:
		doc, err := d.DecodeObject(x, "")
		if err != nil {
			return nil, err
		}
		return document.LinkObject(doc), nil
	}
	return nil, d.Malformed("link must be a string, object or array, got %s", jsonKind(v))
}

func (a linkAdapter) DecodeArray(d *Decoder, items []any) (any, error) {
	b := document.NewLinkArrayBuilder()
	for i, item := range items {
		d.pushIndex(i)
		if _, nested := item.([]any); nested {
			err := d.Malformed("%v", document.ErrNestedLinkArray)
			d.pop()
			return nil, err
		}
		if item == nil {
			d.pop()
			continue
		}
		l, err := a.Decode(d, item)
		d.pop()
		if err != nil {
			return nil, err
		}
		b.Add(l.(*document.Link))
	}
	l, err := b.Build()
	if err != nil {
		return nil, d.Malformed("%v", err)
	}
	return l, nil
}

func decodeTypeValue(d *Decoder, v any) (any, error) {
	switch x := v.(type) {
	case string:
		return document.TypeID(x), nil
	case *Object:
		doc, err := d.DecodeObject(x, "")
		if err != nil {
			return nil, err
		}
		return document.TypeObject(doc), nil
	}
	return nil, d.Malformed("type value must be a string or object, got %s", jsonKind(v))
}

func decodeLangText(d *Decoder, v any) (any, error) {
	switch x := v.(type) {
	case string:
		return document.Text(x), nil
	case *Object:
		b := document.NewLangTextBuilder()
		for _, m := range x.Members {
			s, ok := m.Value.(string)
			if !ok {
				d.pushName(m.Name)
				err := d.Malformed("language map value must be a string, got %s", jsonKind(m.Value))
				d.pop()
				return nil, err
			}
			b.Set(m.Name, s)
		}
		return b.Build(), nil
	}
	return nil, d.Malformed("natural-language value must be a string or object, got %s", jsonKind(v))
}

func decodeDateTime(d *Decoder, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, d.Malformed("date-time must be a string, got %s", jsonKind(v))
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, d.Malformed("date-time %q: %v", s, err)
	}
	return t, nil
}

func decodeDuration(d *Decoder, v any) (any, error) {
	switch x := v.(type) {
	case string:
		dur, err := ParseDuration(x)
		if err != nil {
			return nil, d.Malformed("%v", err)
		}
		return dur, nil
	case json.Number:
		secs, err := x.Float64()
		if err != nil {
			return nil, d.Malformed("duration %s: %v", x, err)
		}
		ns := secs * float64(time.Second)
		if math.Abs(ns) >= maxDuration {
			return nil, d.Malformed("duration %s seconds overflows", x)
		}
		return time.Duration(ns), nil
	}
	return nil, d.Malformed("duration must be a string or number, got %s", jsonKind(v))
}

func decodeMediaType(d *Decoder, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, d.Malformed("media type must be a string, got %s", jsonKind(v))
	}
	mt, err := document.ParseMediaType(s)
	if err != nil {
		return nil, d.Malformed("%v", err)
	}
	return mt, nil
}

func decodeString(d *Decoder, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, d.Malformed("expected string, got %s", jsonKind(v))
	}
	return s, nil
}

func decodeNumber(d *Decoder, v any) (any, error) {
	n, ok := v.(json.Number)
	if !ok {
		return nil, d.Malformed("expected number, got %s", jsonKind(v))
	}
	out, err := number(n)
	if err != nil {
		return nil, d.wrap(err)
	}
	return out, nil
}

func decodeBoolean(d *Decoder, v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, d.Malformed("expected boolean, got %s", jsonKind(v))
	}
	return b, nil
}

// documentAdapter decodes nested documents. tag, when set, names the model
// used for nested objects that carry no type tag of their own. Primitives
// fall back to the fixed primitive rule.
type documentAdapter struct {
	tag string
}

func (a documentAdapter) Decode(d *Decoder, v any) (any, error) {
	if obj, ok := v.(*Object); ok {
		return d.DecodeObject(obj, a.tag)
	}
	return d.Primitive(v)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case *Object:
		return "object"
	}
	return "unknown"
}

// wrap turns a parse-level error into a located DecodeError.
func (d *Decoder) wrap(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Path: d.Path(), Err: err}
}
