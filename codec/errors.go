package codec

import (
	"errors"
	"fmt"
)

// Error classes reported by the codec. Check them with errors.Is.
var (
	// ErrMalformed is returned when a JSON value appears where the wire format
	// disallows it, or a declared kind cannot decode the shape present.
	ErrMalformed = errors.New("malformed document")

	// ErrConstruction is returned when a factory rejects the assembled document.
	ErrConstruction = errors.New("document construction failed")

	// ErrTypeMismatch is returned by DecodeAs when the decoded value is not of
	// the requested type.
	ErrTypeMismatch = errors.New("decoded type mismatch")

	// ErrUnsupported is returned when a value cannot be encoded.
	ErrUnsupported = errors.New("unsupported value")
)

// DecodeError locates a decoding failure within the input.
type DecodeError struct {
	// Path is a JSONPath-like location such as $.object.tags[1].
	Path string

	// Err wraps ErrMalformed or ErrConstruction.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// errorClass names the class of err for metrics and logs.
func errorClass(err error) string {
	switch {
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrConstruction):
		return "construction"
	case errors.Is(err, ErrTypeMismatch):
		return "type_mismatch"
	default:
		return "io"
	}
}
