package schema

import (
	"reflect"

	"github.com/c360studio/semactivity/document"
)

// GenericFactoryID identifies the factory for anonymous documents.
const GenericFactoryID = "document"

// Factory builds a concrete document type from an accumulated builder.
// Each factory is bound to exactly one concrete Go type within a Schema.
type Factory struct {
	// ID identifies the factory within a schema.
	ID string

	// Type is the concrete type produced by New.
	Type reflect.Type

	// New finalizes the builder. Returning an error rejects the document.
	New func(b *document.Builder) (document.Typed, error)
}

// Generic is the always-available factory for plain documents.
var Generic = &Factory{
	ID:   GenericFactoryID,
	Type: reflect.TypeFor[*document.Document](),
	New: func(b *document.Builder) (document.Typed, error) {
		return b.Build(), nil
	},
}

// NewFactory returns a factory for T. wrap receives the built document and
// returns the concrete value, or an error when the document is not a valid T.
func NewFactory[T document.Typed](id string, wrap func(*document.Document) (T, error)) *Factory {
	return &Factory{
		ID:   id,
		Type: reflect.TypeFor[T](),
		New: func(b *document.Builder) (document.Typed, error) {
			v, err := wrap(b.Build())
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

func (f *Factory) valid() bool {
	return f != nil && f.ID != "" && f.Type != nil && f.New != nil
}
