package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// maxDepth bounds nesting of JSON objects and arrays.
const maxDepth = 256

// Object is a parsed JSON object that keeps member order. Values are nil,
// bool, json.Number, string, []any or *Object.
type Object struct {
	Members []Member
}

// Member is a single name/value pair of an Object.
type Member struct {
	Name  string
	Value any
}

// Get returns the last value stored under name.
func (o *Object) Get(name string) (any, bool) {
	for i := len(o.Members) - 1; i >= 0; i-- {
		if o.Members[i].Name == name {
			return o.Members[i].Value, true
		}
	}
	return nil, false
}

// Has reports whether the object has a non-null member name.
func (o *Object) Has(name string) bool {
	v, ok := o.Get(name)
	return ok && v != nil
}

// Parse reads a single JSON value, preserving object member order.
func Parse(data []byte) (any, error) {
	return parseFrom(bytes.NewReader(data))
}

func parseFrom(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := parseValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformed)
	}
	return v, nil
}

func parseValue(dec *json.Decoder, depth int) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: unexpected end of input", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	if depth >= maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrMalformed, maxDepth)
	}
	switch delim {
	case '{':
		obj := &Object{}
		for dec.More() {
			key, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			name, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("%w: object key %v", ErrMalformed, key)
			}
			v, err := parseValue(dec, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Members = append(obj.Members, Member{Name: name, Value: v})
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return obj, nil
	case '[':
		list := []any{}
		for dec.More() {
			v, err := parseValue(dec, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %v", ErrMalformed, delim)
	}
}

// number converts a JSON number to int64 when it is integral and in range,
// and to float64 otherwise.
func number(n json.Number) (any, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: number %s", ErrMalformed, n)
	}
	if math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: number %s out of range", ErrMalformed, n)
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f), nil
	}
	return f, nil
}
