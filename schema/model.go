package schema

import "sort"

// Model is the per-type metadata used to deserialize a document: which
// properties carry which Kind, the parent model to fall back to, and an
// optional factory for the concrete type.
//
// A Model never references other models directly. Parent lookups go through
// the Schema the model is bound to, so models can be declared in any order.
type Model struct {
	name    string
	parent  string
	props   map[string]Kind
	def     Kind
	factory *Factory
	schema  *Schema
}

// Name returns the model name, which is also its type tag.
func (m *Model) Name() string {
	return m.name
}

// Parent returns the parent model name, or "" for a root model.
func (m *Model) Parent() string {
	return m.parent
}

// Factory returns the factory declared by this model, or nil.
func (m *Model) Factory() *Factory {
	return m.factory
}

// Default returns the kind reported for undeclared properties.
func (m *Model) Default() Kind {
	return m.def
}

// Schema returns the owning schema, or nil for an unbound model.
func (m *Model) Schema() *Schema {
	return m.schema
}

// ParentModel resolves the parent through the owning schema.
func (m *Model) ParentModel() (*Model, bool) {
	if m.parent == "" || m.schema == nil {
		return nil, false
	}
	return m.schema.Model(m.parent)
}

// Local returns the kind declared by this model itself.
func (m *Model) Local(name string) (Kind, bool) {
	k, ok := m.props[name]
	return k, ok
}

// KindOf returns the kind declared for name by this model or the nearest
// ancestor that declares it, falling back to the model's default kind.
func (m *Model) KindOf(name string) Kind {
	if k, ok := m.lookup(name); ok {
		return k
	}
	return m.def
}

// Has reports whether this model or an ancestor declares name.
func (m *Model) Has(name string) bool {
	_, ok := m.lookup(name)
	return ok
}

// lookup walks the parent chain. The chain is acyclic once the schema is
// built; the step bound only guards unbound or hand-assembled models.
func (m *Model) lookup(name string) (Kind, bool) {
	cur := m
	for steps := 0; cur != nil && steps <= m.maxDepth(); steps++ {
		if k, ok := cur.props[name]; ok {
			return k, true
		}
		next, ok := cur.ParentModel()
		if !ok {
			break
		}
		cur = next
	}
	return KindNone, false
}

func (m *Model) maxDepth() int {
	if m.schema == nil {
		return 0
	}
	return len(m.schema.models)
}

// InheritedFactory returns the factory declared by this model or the nearest
// ancestor that declares one.
func (m *Model) InheritedFactory() *Factory {
	cur := m
	for steps := 0; cur != nil && steps <= m.maxDepth(); steps++ {
		if cur.factory != nil {
			return cur.factory
		}
		next, ok := cur.ParentModel()
		if !ok {
			break
		}
		cur = next
	}
	return nil
}

// Properties returns the locally declared entries.
func (m *Model) Properties() map[string]Kind {
	out := make(map[string]Kind, len(m.props))
	for k, v := range m.props {
		out[k] = v
	}
	return out
}

// Resolved returns every entry visible through the model, with local entries
// shadowing inherited ones.
func (m *Model) Resolved() map[string]Kind {
	out := make(map[string]Kind)
	chain := []*Model{m}
	cur := m
	for steps := 0; steps < m.maxDepth(); steps++ {
		next, ok := cur.ParentModel()
		if !ok {
			break
		}
		chain = append(chain, next)
		cur = next
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].props {
			out[k] = v
		}
	}
	return out
}

// PropertyNames returns the locally declared property names, sorted.
func (m *Model) PropertyNames() []string {
	names := make([]string, 0, len(m.props))
	for name := range m.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns a builder pre-populated with this model's parent, default
// kind, entries and factory. A factory belongs to exactly one model in a
// schema, so renaming the template with Name drops the inherited factory.
func (m *Model) Template() *ModelBuilder {
	b := NewModel(m.name)
	b.parent = m.parent
	b.def = m.def
	b.factory = m.factory
	b.inherited = m.factory != nil
	for k, v := range m.props {
		b.props[k] = v
	}
	return b
}

// bind returns a copy of the model owned by s.
func (m *Model) bind(s *Schema) *Model {
	return &Model{
		name:    m.name,
		parent:  m.parent,
		props:   m.props,
		def:     m.def,
		factory: m.factory,
		schema:  s,
	}
}

// ModelBuilder accumulates the entries of a Model.
type ModelBuilder struct {
	name    string
	parent  string
	props   map[string]Kind
	def     Kind
	factory *Factory
	// inherited is set while factory came from Template.
	inherited bool
}

// NewModel starts a model named name.
func NewModel(name string) *ModelBuilder {
	return &ModelBuilder{name: name, props: make(map[string]Kind)}
}

// Name renames the model, typically after Template. A factory inherited
// from the template is dropped when the name changes.
func (b *ModelBuilder) Name(name string) *ModelBuilder {
	if b.inherited && name != b.name {
		b.factory = nil
		b.inherited = false
	}
	b.name = name
	return b
}

// Parent sets the parent model name.
func (b *ModelBuilder) Parent(name string) *ModelBuilder {
	b.parent = name
	return b
}

// Default sets the kind reported for undeclared properties.
func (b *ModelBuilder) Default(k Kind) *ModelBuilder {
	b.def = k
	return b
}

// Factory binds the concrete type built for documents of this model.
func (b *ModelBuilder) Factory(f *Factory) *ModelBuilder {
	b.factory = f
	b.inherited = false
	return b
}

// Property declares kind for each name, overriding earlier entries.
func (b *ModelBuilder) Property(k Kind, names ...string) *ModelBuilder {
	for _, name := range names {
		b.props[name] = k
	}
	return b
}

// Remove drops a local entry.
func (b *ModelBuilder) Remove(names ...string) *ModelBuilder {
	for _, name := range names {
		delete(b.props, name)
	}
	return b
}

// Link declares link-valued properties.
func (b *ModelBuilder) Link(names ...string) *ModelBuilder {
	return b.Property(KindLink, names...)
}

// Type declares type-valued properties.
func (b *ModelBuilder) Type(names ...string) *ModelBuilder {
	return b.Property(KindType, names...)
}

// Text declares natural-language properties.
func (b *ModelBuilder) Text(names ...string) *ModelBuilder {
	return b.Property(KindText, names...)
}

// DateTime declares timestamp properties.
func (b *ModelBuilder) DateTime(names ...string) *ModelBuilder {
	return b.Property(KindDateTime, names...)
}

// Duration declares duration properties.
func (b *ModelBuilder) Duration(names ...string) *ModelBuilder {
	return b.Property(KindDuration, names...)
}

// MediaType declares media-type properties.
func (b *ModelBuilder) MediaType(names ...string) *ModelBuilder {
	return b.Property(KindMediaType, names...)
}

// Document declares nested document properties of the type registered for tag.
// An empty tag declares generic nested documents.
func (b *ModelBuilder) Document(tag string, names ...string) *ModelBuilder {
	if tag == "" {
		return b.Property(KindDocument, names...)
	}
	return b.Property(DocumentOf(tag), names...)
}

// Build returns the immutable model. The model is unbound until added to a
// schema; unbound models resolve only their local entries.
func (b *ModelBuilder) Build() *Model {
	props := make(map[string]Kind, len(b.props))
	for k, v := range b.props {
		props[k] = v
	}
	return &Model{
		name:    b.name,
		parent:  b.parent,
		props:   props,
		def:     b.def,
		factory: b.factory,
	}
}
