package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// Errors returned by Builder.Build.
var (
	// ErrInvalidModel is returned for a model without a name.
	ErrInvalidModel = errors.New("invalid model")

	// ErrInvalidFactory is returned for a factory missing its id, type or constructor.
	ErrInvalidFactory = errors.New("invalid factory")

	// ErrFactoryConflict is returned when factory ids and concrete types do
	// not map one to one, or two models declare the same factory.
	ErrFactoryConflict = errors.New("factory conflict")

	// ErrUnknownFactory is returned when a tag is bound to an unregistered factory.
	ErrUnknownFactory = errors.New("unknown factory")

	// ErrCycle is returned when a model is its own ancestor.
	ErrCycle = errors.New("model parent cycle")
)

// DefaultFallback is the model used for anonymous documents when present.
const DefaultFallback = "object"

// Schema is the immutable registry of models and factories. It is safe for
// concurrent use.
type Schema struct {
	models        map[string]*Model
	tagFactories  map[string]*Factory
	factories     map[string]*Factory
	factoryModels map[string]*Model
	byType        map[reflect.Type]*Factory
	fallback      *Model
}

// Model returns the model registered for tag.
func (s *Schema) Model(tag string) (*Model, bool) {
	m, ok := s.models[tag]
	return m, ok
}

// Models returns every model sorted by name.
func (s *Schema) Models() []*Model {
	out := make([]*Model, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Tags returns every registered tag, sorted. Tags bound to a factory without
// a model of their own are included.
func (s *Schema) Tags() []string {
	seen := make(map[string]bool, len(s.models)+len(s.tagFactories))
	for tag := range s.models {
		seen[tag] = true
	}
	for tag := range s.tagFactories {
		seen[tag] = true
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Factory returns the factory registered under id.
func (s *Schema) Factory(id string) (*Factory, bool) {
	f, ok := s.factories[id]
	return f, ok
}

// FactoryForType returns the factory producing the concrete type t.
func (s *Schema) FactoryForType(t reflect.Type) (*Factory, bool) {
	f, ok := s.byType[t]
	return f, ok
}

// TypeOf returns the concrete type produced by the factory id.
func (s *Schema) TypeOf(id string) (reflect.Type, bool) {
	f, ok := s.factories[id]
	if !ok {
		return nil, false
	}
	return f.Type, true
}

// ModelForFactory returns the model that declared the factory id.
func (s *Schema) ModelForFactory(id string) (*Model, bool) {
	m, ok := s.factoryModels[id]
	return m, ok
}

// ModelForType returns the model bound to the factory producing t.
func (s *Schema) ModelForType(t reflect.Type) (*Model, bool) {
	f, ok := s.byType[t]
	if !ok {
		return nil, false
	}
	return s.ModelForFactory(f.ID)
}

// Fallback returns the model used for anonymous documents. It is never nil.
func (s *Schema) Fallback() *Model {
	return s.fallback
}

// Resolution is the outcome of resolving a type tag.
type Resolution struct {
	// Tag is the resolved tag.
	Tag string

	// Model drives property deserialization. Never nil.
	Model *Model

	// Factory builds the concrete value. Never nil.
	Factory *Factory

	// Known is false when the tag has neither a model nor a factory binding
	// and the generic fallbacks were used.
	Known bool
}

// Resolve maps a type tag to the model and factory used to build it.
//
// A tag explicitly bound to a factory (its own model's factory or a Bind
// entry) uses the model that declared that factory, in preference to the
// model registered under the tag string. Otherwise the tag's model is used
// with the nearest inherited factory. Unknown tags resolve to the generic
// factory and the fallback model.
func (s *Schema) Resolve(tag string) Resolution {
	f, bound := s.tagFactories[tag]
	var m *Model
	if bound {
		m = s.factoryModels[f.ID]
	}
	if m == nil {
		m = s.models[tag]
	}
	if !bound && m != nil {
		f = m.InheritedFactory()
	}
	known := bound || m != nil
	if f == nil {
		f = Generic
	}
	if m == nil {
		m = s.fallback
	}
	return Resolution{Tag: tag, Model: m, Factory: f, Known: known}
}

// Builder unions model contributions into a Schema. Later contributions for
// the same tag replace earlier ones. A Builder is not safe for concurrent use.
type Builder struct {
	models   map[string]*Model
	order    []string
	bindings map[string]string
	fallback string
}

// NewBuilder returns an empty schema builder.
func NewBuilder() *Builder {
	return &Builder{
		models:   make(map[string]*Model),
		bindings: make(map[string]string),
		fallback: DefaultFallback,
	}
}

// Add registers models under their names.
func (b *Builder) Add(models ...*Model) *Builder {
	for _, m := range models {
		if m == nil {
			continue
		}
		if _, ok := b.models[m.name]; !ok {
			b.order = append(b.order, m.name)
		}
		b.models[m.name] = m
	}
	return b
}

// Bind maps tag to the factory id without declaring a model for it.
func (b *Builder) Bind(tag, factoryID string) *Builder {
	b.bindings[tag] = factoryID
	return b
}

// Fallback names the model used for anonymous documents.
func (b *Builder) Fallback(name string) *Builder {
	b.fallback = name
	return b
}

// Merge adds every model and binding of an existing schema.
func (b *Builder) Merge(s *Schema) *Builder {
	for _, m := range s.Models() {
		b.Add(m)
	}
	for tag, f := range s.tagFactories {
		if m, ok := s.models[tag]; ok && m.factory == f {
			continue
		}
		b.Bind(tag, f.ID)
	}
	return b
}

// Build validates the contributions and returns the immutable schema.
func (b *Builder) Build() (*Schema, error) {
	s := &Schema{
		models:        make(map[string]*Model, len(b.models)),
		tagFactories:  make(map[string]*Factory),
		factories:     map[string]*Factory{Generic.ID: Generic},
		factoryModels: make(map[string]*Model),
		byType:        map[reflect.Type]*Factory{Generic.Type: Generic},
	}

	for _, name := range b.order {
		src := b.models[name]
		if src.name == "" {
			return nil, fmt.Errorf("schema build: %w: empty model name", ErrInvalidModel)
		}
		m := src.bind(s)
		s.models[name] = m

		if m.factory == nil {
			continue
		}
		if err := s.registerFactory(m.factory); err != nil {
			return nil, fmt.Errorf("schema build: model %q: %w", name, err)
		}
		if prev, ok := s.factoryModels[m.factory.ID]; ok {
			return nil, fmt.Errorf("schema build: %w: factory %q declared by models %q and %q",
				ErrFactoryConflict, m.factory.ID, prev.name, name)
		}
		s.factoryModels[m.factory.ID] = m
		s.tagFactories[name] = m.factory
	}

	for tag, id := range b.bindings {
		f, ok := s.factories[id]
		if !ok {
			return nil, fmt.Errorf("schema build: tag %q: %w: %s", tag, ErrUnknownFactory, id)
		}
		s.tagFactories[tag] = f
	}

	for _, m := range s.models {
		if err := checkCycle(s, m); err != nil {
			return nil, err
		}
	}

	if fb, ok := s.models[b.fallback]; ok {
		s.fallback = fb
	} else {
		s.fallback = NewModel(b.fallback).Build().bind(s)
	}
	return s, nil
}

// registerFactory records f, enforcing the id ↔ type bijection.
func (s *Schema) registerFactory(f *Factory) error {
	if !f.valid() {
		return ErrInvalidFactory
	}
	if prev, ok := s.factories[f.ID]; ok && prev.Type != f.Type {
		return fmt.Errorf("%w: id %q bound to %v and %v", ErrFactoryConflict, f.ID, prev.Type, f.Type)
	}
	if prev, ok := s.byType[f.Type]; ok && prev.ID != f.ID {
		return fmt.Errorf("%w: type %v bound to %q and %q", ErrFactoryConflict, f.Type, prev.ID, f.ID)
	}
	s.factories[f.ID] = f
	s.byType[f.Type] = f
	return nil
}

func checkCycle(s *Schema, m *Model) error {
	seen := map[string]bool{m.name: true}
	for cur := m; cur.parent != ""; {
		if seen[cur.parent] {
			return fmt.Errorf("schema build: %w: %q", ErrCycle, m.name)
		}
		seen[cur.parent] = true
		next, ok := s.models[cur.parent]
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}
