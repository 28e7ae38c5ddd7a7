// Package codec converts documents to and from their JSON wire form.
//
// Encoding is value driven: each property is written according to its own
// runtime shape, so no schema lookup is needed. Decoding is schema driven:
// the codec first decides which model and factory to use for an object, then
// decodes every member through the adapter registered for the member's
// declared kind.
//
// Type resolution for an object proceeds in order:
//
//  1. A requested *activity.Activity or *activity.Collection binds directly.
//  2. An objectType member is decoded as a type value and its id resolved in
//     the schema. Unknown ids yield a generic document that keeps the tag.
//  3. Without any objectType, an object with a verb and an actor, object or
//     target is an activity, and an object with items is a collection.
//  4. The requested type, or the declared document kind of the property
//     being decoded, is used when the schema knows it.
//  5. Otherwise the result is a generic *document.Document.
//
// Basic usage:
//
//	c, err := codec.New(codec.WithPretty(true))
//	if err != nil {
//	    return err
//	}
//	doc, err := c.Decode(data, nil)
//	if a, ok := doc.(*activity.Activity); ok {
//	    fmt.Println(a.Verb())
//	}
//
// Modules extend the schema and the codec together; see Module and
// RegisterModule. A Codec is immutable and safe for concurrent use.
package codec
