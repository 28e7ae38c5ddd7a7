package codec

import (
	"log/slog"
	"reflect"

	"github.com/c360studio/semactivity/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultCharset is the text encoding used by Read and Write.
const DefaultCharset = "utf-8"

type options struct {
	schema   *schema.Schema
	modules  []Module
	pretty   bool
	adapters map[schema.Kind]Adapter
	writers  map[reflect.Type]Writer
	charset  string
	logger   *slog.Logger
	registry prometheus.Registerer
}

// Option configures a Codec.
type Option func(*options)

// WithSchema sets the base schema. Without it the built-in activity schema
// is used.
func WithSchema(s *schema.Schema) Option {
	return func(o *options) {
		o.schema = s
	}
}

// WithModules appends modules composed over the base schema, in order.
func WithModules(mods ...Module) Option {
	return func(o *options) {
		o.modules = append(o.modules, mods...)
	}
}

// WithPretty enables indented output.
func WithPretty(pretty bool) Option {
	return func(o *options) {
		o.pretty = pretty
	}
}

// WithAdapter overrides the decoder for a kind. It takes precedence over
// built-in and module adapters.
func WithAdapter(kind schema.Kind, a Adapter) Option {
	return func(o *options) {
		o.adapters[kind] = a
	}
}

// WithWriter overrides how values of type t are encoded. It takes precedence
// over module writers.
func WithWriter(t reflect.Type, w Writer) Option {
	return func(o *options) {
		o.writers[t] = w
	}
}

// WithCharset sets the text encoding for Read and Write by WHATWG label,
// e.g. "utf-8", "utf-16le" or "iso-8859-1".
func WithCharset(name string) Option {
	return func(o *options) {
		o.charset = name
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics registers codec metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}
