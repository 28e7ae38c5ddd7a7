// Package schema holds the metadata that drives deserialization: per-type
// Models mapping property names to semantic Kinds, and the immutable Schema
// registry that binds type tags to Models and Factories.
//
// Models form a tree through parent names. A property lookup that misses on a
// model falls through to its parent, resolved lazily through the owning Schema:
//
//	object := schema.NewModel("object").
//	    DateTime("published", "updated").
//	    Link("author", "tags").
//	    Build()
//	note := schema.NewModel("note").Parent("object").Text("content").Build()
//
//	s, err := schema.NewBuilder().Add(object, note).Build()
//	if err != nil {
//	    return err
//	}
//	m, _ := s.Model("note")
//	m.KindOf("published") // schema.KindDateTime, inherited from object
//
// Schemas are built once, typically by composing several modules, and are
// read-only afterwards.
package schema
