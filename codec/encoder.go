package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/c360studio/semactivity/document"
)

// encoder writes documents by dispatching on each value's own shape.
// Property order follows document insertion order.
type encoder struct {
	c   *Codec
	buf bytes.Buffer
}

func (e *encoder) value(v any) error {
	if v == nil {
		e.buf.WriteString("null")
		return nil
	}
	if w, ok := e.c.writers[reflect.TypeOf(v)]; ok {
		out, err := w(v)
		if err != nil {
			return fmt.Errorf("writer for %T: %w", v, err)
		}
		v = out
	}
	return e.builtin(v)
}

func (e *encoder) builtin(v any) error {
	switch x := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case *document.Link:
		return e.link(x)
	case *document.TypeValue:
		if x.Shape() == document.ShapeObject {
			return e.document(x.Object())
		}
		return e.scalar(x.ID())
	case *document.LangText:
		return e.langText(x)
	case document.Typed:
		return e.document(x.Doc())
	case time.Time:
		return e.scalar(x.Format(time.RFC3339Nano))
	case time.Duration:
		return e.scalar(FormatDuration(x))
	case document.MediaType:
		return e.scalar(x.String())
	case []any:
		e.buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.value(item); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
	default:
		return e.composite(reflect.ValueOf(x))
	}
	return nil
}

// composite walks typed slices, arrays and string-keyed maps so that shapes
// and documents held inside them still render themselves. Everything else,
// byte slices and json.Marshaler values go to encoding/json.
func (e *encoder) composite(rv reflect.Value) error {
	if _, ok := rv.Interface().(json.Marshaler); ok {
		return e.scalar(rv.Interface())
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.scalar(rv.Interface())
		}
		fallthrough
	case reflect.Array:
		e.buf.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.value(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return e.scalar(rv.Interface())
		}
		if rv.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		e.buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.scalar(k.String()); err != nil {
				return err
			}
			e.buf.WriteByte(':')
			if err := e.value(rv.MapIndex(k).Interface()); err != nil {
				return err
			}
		}
		e.buf.WriteByte('}')
		return nil
	}
	return e.scalar(rv.Interface())
}

func (e *encoder) document(d *document.Document) error {
	e.buf.WriteByte('{')
	first := true
	var err error
	d.Range(func(name string, value any) bool {
		if !first {
			e.buf.WriteByte(',')
		}
		first = false
		if err = e.scalar(name); err != nil {
			return false
		}
		e.buf.WriteByte(':')
		err = e.value(value)
		return err == nil
	})
	if err != nil {
		return err
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) link(l *document.Link) error {
	switch l.Shape() {
	case document.ShapeSimple:
		return e.scalar(l.URI())
	case document.ShapeObject:
		return e.document(l.Object())
	}
	e.buf.WriteByte('[')
	for i, item := range l.Items() {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.link(item); err != nil {
			return err
		}
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) langText(t *document.LangText) error {
	if t.Shape() == document.ShapeSimple {
		return e.scalar(t.Text())
	}
	e.buf.WriteByte('{')
	for i, lang := range t.Languages() {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		s, _ := t.Get(lang)
		if err := e.scalar(lang); err != nil {
			return err
		}
		e.buf.WriteByte(':')
		if err := e.scalar(s); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

// scalar writes v with encoding/json, leaving HTML characters unescaped.
func (e *encoder) scalar(v any) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: %T: %v", ErrUnsupported, v, err)
	}
	e.buf.Write(bytes.TrimRight(b.Bytes(), "\n"))
	return nil
}
