package schema

import "strings"

// Kind is the semantic kind declared for a property. The codec picks the
// adapter used to deserialize a property from its Kind.
type Kind string

// Built-in kinds.
const (
	// KindNone means nothing is declared; primitives keep their JSON type
	// and objects decode as generic documents.
	KindNone Kind = ""

	// KindLink is a link value (URI, embedded document or array of either).
	KindLink Kind = "link"

	// KindType is a type-tag value (token/IRI or embedded document).
	KindType Kind = "type"

	// KindText is a natural-language value (string or language map).
	KindText Kind = "text"

	// KindDateTime is an RFC 3339 timestamp.
	KindDateTime Kind = "date-time"

	// KindDuration is an ISO 8601 duration or a number of seconds.
	KindDuration Kind = "duration"

	// KindMediaType is an RFC 2045 media type.
	KindMediaType Kind = "media-type"

	// KindString forces a string value.
	KindString Kind = "string"

	// KindNumber forces a numeric value.
	KindNumber Kind = "number"

	// KindBoolean forces a boolean value.
	KindBoolean Kind = "boolean"

	// KindDocument is a nested generic document.
	KindDocument Kind = "document"
)

const documentPrefix = "document:"

// DocumentOf returns the kind of a nested document whose concrete type is the
// one registered for tag.
func DocumentOf(tag string) Kind {
	return Kind(documentPrefix + tag)
}

// DocumentTag returns the tag of a DocumentOf kind.
func (k Kind) DocumentTag() (string, bool) {
	if !strings.HasPrefix(string(k), documentPrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(k), documentPrefix), true
}

// IsDocument reports whether the kind denotes a nested document.
func (k Kind) IsDocument() bool {
	_, tagged := k.DocumentTag()
	return k == KindDocument || tagged
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	return string(k)
}
