package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/schema"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	activityType   = reflect.TypeFor[*activity.Activity]()
	collectionType = reflect.TypeFor[*activity.Collection]()
	genericType    = reflect.TypeFor[*document.Document]()
)

// Codec converts between documents and JSON. A Codec is immutable after New
// and safe for concurrent use.
type Codec struct {
	schema   *schema.Schema
	adapters map[schema.Kind]Adapter
	writers  map[reflect.Type]Writer
	special  map[reflect.Type]bool
	pretty   bool
	charset  string
	encoding encoding.Encoding
	logger   *slog.Logger
	metrics  *Metrics
}

// New builds a codec. Modules are composed over the base schema in order,
// then explicit adapter and writer options are applied.
func New(opts ...Option) (*Codec, error) {
	o := &options{
		adapters: make(map[schema.Kind]Adapter),
		writers:  make(map[reflect.Type]Writer),
		charset:  DefaultCharset,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.schema == nil {
		o.schema = activity.Schema()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	c := &Codec{
		schema:   o.schema,
		adapters: builtinAdapters(),
		writers:  make(map[reflect.Type]Writer),
		special:  map[reflect.Type]bool{activityType: true, collectionType: true},
		pretty:   o.pretty,
		charset:  o.charset,
		logger:   o.logger,
	}

	if len(o.modules) > 0 {
		reg := &Registrar{
			schema:   schema.NewBuilder().Merge(o.schema),
			adapters: c.adapters,
			writers:  c.writers,
		}
		for _, m := range o.modules {
			if err := m.Register(reg); err != nil {
				return nil, fmt.Errorf("module %q: %w", m.Name(), err)
			}
			c.logger.Debug("Registered codec module", slog.String("module", m.Name()))
		}
		s, err := reg.schema.Build()
		if err != nil {
			return nil, fmt.Errorf("compose schema: %w", err)
		}
		c.schema = s
	}
	for k, a := range o.adapters {
		c.adapters[k] = a
	}
	for t, w := range o.writers {
		c.writers[t] = w
	}

	enc, err := htmlindex.Get(o.charset)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", o.charset, err)
	}
	c.encoding = enc

	metrics, err := NewMetrics(o.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	c.metrics = metrics
	return c, nil
}

// Schema returns the composed schema.
func (c *Codec) Schema() *schema.Schema {
	return c.schema
}

// Charset returns the configured text encoding label.
func (c *Codec) Charset() string {
	return c.charset
}

func (c *Codec) adapter(kind schema.Kind) Adapter {
	if kind == schema.KindNone {
		return nil
	}
	if a, ok := c.adapters[kind]; ok {
		return a
	}
	if tag, ok := kind.DocumentTag(); ok {
		return documentAdapter{tag: tag}
	}
	c.logger.Debug("No adapter for kind, using primitive rule", slog.String("kind", kind.String()))
	return nil
}

// Decode parses a JSON object into a document. hint is the expected
// concrete type; nil or *document.Document requests a generic document, in
// which case the type tag or shape of the input decides the result type.
func (c *Codec) Decode(data []byte, hint reflect.Type) (document.Typed, error) {
	start := time.Now()
	v, err := Parse(data)
	if err != nil {
		err = &DecodeError{Path: "$", Err: err}
		c.metrics.recordError("decode", err)
		return nil, err
	}
	return c.decodeValue(v, hint, start)
}

func (c *Codec) decodeValue(v any, hint reflect.Type, start time.Time) (document.Typed, error) {
	d := &Decoder{c: c}
	obj, ok := v.(*Object)
	if !ok {
		err := d.Malformed("document must be a JSON object, got %s", jsonKind(v))
		c.metrics.recordError("decode", err)
		return nil, err
	}
	if hint == genericType {
		hint = nil
	}
	doc, err := d.decode(obj, hintFor(hint))
	if err != nil {
		c.metrics.recordError("decode", err)
		return nil, err
	}
	c.metrics.recordDecode(factoryID(c.schema, doc), time.Since(start))
	return doc, nil
}

func hintFor(t reflect.Type) hint {
	return hint{typ: t}
}

func factoryID(s *schema.Schema, doc document.Typed) string {
	if f, ok := s.FactoryForType(reflect.TypeOf(doc)); ok {
		return f.ID
	}
	return schema.GenericFactoryID
}

// Encode serializes a document.
func (c *Codec) Encode(v document.Typed) ([]byte, error) {
	start := time.Now()
	if v == nil {
		err := fmt.Errorf("%w: nil document", ErrUnsupported)
		c.metrics.recordError("encode", err)
		return nil, err
	}
	e := &encoder{c: c}
	if err := e.document(v.Doc()); err != nil {
		c.metrics.recordError("encode", err)
		return nil, err
	}
	out := e.buf.Bytes()
	if c.pretty {
		var indented bytes.Buffer
		if err := json.Indent(&indented, out, "", "  "); err != nil {
			return nil, err
		}
		out = indented.Bytes()
	}
	c.metrics.recordEncode(time.Since(start))
	return out, nil
}

// Read decodes one document from r, transcoding from the configured charset.
func (c *Codec) Read(r io.Reader, hint reflect.Type) (document.Typed, error) {
	start := time.Now()
	v, err := parseFrom(c.encoding.NewDecoder().Reader(r))
	if err != nil {
		err = &DecodeError{Path: "$", Err: err}
		c.metrics.recordError("decode", err)
		return nil, err
	}
	return c.decodeValue(v, hint, start)
}

// Write encodes v to w in the configured charset.
func (c *Codec) Write(w io.Writer, v document.Typed) error {
	data, err := c.Encode(v)
	if err != nil {
		return err
	}
	tw := c.encoding.NewEncoder().Writer(w)
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", c.charset, err)
	}
	return nil
}

// DecodeAs decodes data expecting T. A generic *document.Document request
// accepts any result and returns its underlying document.
func DecodeAs[T document.Typed](c *Codec, data []byte) (T, error) {
	v, err := c.Decode(data, reflect.TypeFor[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](c, v)
}

// ReadAs reads from r expecting T. See DecodeAs.
func ReadAs[T document.Typed](c *Codec, r io.Reader) (T, error) {
	v, err := c.Read(r, reflect.TypeFor[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](c, v)
}

func as[T document.Typed](c *Codec, v document.Typed) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	if t, ok := any(v.Doc()).(T); ok {
		return t, nil
	}
	var zero T
	err := fmt.Errorf("%w: want %v, got %T", ErrTypeMismatch, reflect.TypeFor[T](), v)
	c.metrics.recordError("decode", err)
	return zero, err
}
