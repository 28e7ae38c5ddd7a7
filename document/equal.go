package document

import (
	"math"
	"reflect"
	"time"
)

// ValuesEqual compares two property values the way Document.Equal does:
// value shapes and documents by their own equality, numbers by numeric value,
// times by instant, lists element-wise, anything else by reflect.DeepEqual.
func ValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case *Link:
		bv, ok := b.(*Link)
		return ok && av.Equal(bv)
	case *TypeValue:
		bv, ok := b.(*TypeValue)
		return ok && av.Equal(bv)
	case *LangText:
		bv, ok := b.(*LangText)
		return ok && av.Equal(bv)
	case Typed:
		bv, ok := b.(Typed)
		return ok && av.Doc().Equal(bv.Doc())
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case MediaType:
		bv, ok := b.(MediaType)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	if isNumber(a) && isNumber(b) {
		return numbersEqual(a, b)
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func numbersEqual(a, b any) bool {
	ai, aInt := toInt64(a)
	bi, bInt := toInt64(b)
	if aInt && bInt {
		return ai == bi
	}
	af, _ := toFloat64(a)
	bf, _ := toFloat64(b)
	return af == bf
}

// toInt64 converts integral values, including integral floats, to int64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), n <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	if n, ok := v.(uint64); ok {
		return float64(n), true
	}
	return 0, false
}
