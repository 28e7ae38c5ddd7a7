package document

import (
	"mime"
	"strings"
)

// MediaType is a parsed RFC 2045 media type such as "text/html; charset=utf-8".
type MediaType struct {
	Type   string
	Params map[string]string
}

// ParseMediaType parses s into a MediaType. The type is lower-cased.
func ParseMediaType(s string) (MediaType, error) {
	t, params, err := mime.ParseMediaType(s)
	if err != nil {
		return MediaType{}, err
	}
	if len(params) == 0 {
		params = nil
	}
	return MediaType{Type: t, Params: params}, nil
}

// String formats the media type with its parameters.
func (m MediaType) String() string {
	return mime.FormatMediaType(m.Type, m.Params)
}

// Equal reports whether both media types have the same type and parameters.
// Parameter names are case-insensitive.
func (m MediaType) Equal(other MediaType) bool {
	if !strings.EqualFold(m.Type, other.Type) || len(m.Params) != len(other.Params) {
		return false
	}
	for k, v := range m.Params {
		if other.Params[strings.ToLower(k)] != v && other.Params[k] != v {
			return false
		}
	}
	return true
}
