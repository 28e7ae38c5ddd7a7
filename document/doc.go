// Package document provides the immutable property-bag model shared by every
// vocabulary type, together with the polymorphic value shapes that may appear
// as property values.
//
// # Documents
//
// A Document is an insertion-ordered mapping from property name to value. It
// never changes after construction; all mutation happens on a Builder:
//
//	doc := document.NewBuilder().
//	    ID("urn:example:1").
//	    ObjectType("note").
//	    Set("content", document.Text("Hello")).
//	    LinkURI("tags", "urn:tag:a").
//	    LinkURI("tags", "urn:tag:b").
//	    Build()
//
// # Value Shapes
//
// Three value kinds admit more than one wire shape:
//   - Link: a bare URI, an embedded Document, or an array of either
//   - TypeValue: a bare token/IRI or an embedded Document
//   - LangText: a plain string or a language tag → string map
//
// Callers branch on Shape() before using shape-specific accessors. Calling an
// accessor that does not match the shape panics.
//
// Builder.Link merges repeated calls for the same property into an Array link,
// which is how repeatable relations such as "tags" or "author" accumulate.
package document
