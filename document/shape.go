package document

import (
	"errors"
	"fmt"
)

// Shape discriminates the wire shape of a polymorphic value.
type Shape int

const (
	// ShapeSimple is a bare string (URI, token or plain text).
	ShapeSimple Shape = iota
	// ShapeObject is an embedded document or language map.
	ShapeObject
	// ShapeArray is an ordered sequence of Simple/Object links.
	ShapeArray
)

// String returns the string representation of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeSimple:
		return "simple"
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Errors returned by value-shape builders.
var (
	// ErrNestedLinkArray is returned when an Array link would contain another Array link.
	ErrNestedLinkArray = errors.New("array link cannot contain an array link")

	// ErrNilValue is returned when a nil value is added to a value builder.
	ErrNilValue = errors.New("nil value")
)

// shapeMismatch panics for an accessor used on the wrong shape.
func shapeMismatch(kind string, want, got Shape) {
	panic(fmt.Sprintf("document: %s accessor requires %s shape, value is %s", kind, want, got))
}
