package bson

import (
	"bytes"
	"math"
	"reflect"
	"time"
)

// Equal reports whether two values are equal. Documents compare by ordered
// elements, times by instant and NaN doubles equal each other. Integer
// widths are significant: int32(1) and int64(1) are not equal.
func Equal(a, b interface{}) bool {
	if ae, ok := documentElems(a); ok {
		be, ok := documentElems(b)
		return ok && elemsEqual(ae, be)
	}

	switch av := a.(type) {
	case Array:
		return arraysEqual(av, b)
	case []interface{}:
		return arraysEqual(av, b)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case float64:
		bv, ok := b.(float64)
		return ok && (av == bv || (math.IsNaN(av) && math.IsNaN(bv)))
	case Binary:
		bv, ok := b.(Binary)
		return ok && av.Equal(bv)
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case CodeWithScope:
		bv, ok := b.(CodeWithScope)
		return ok && av.Code == bv.Code && av.Scope.Equal(bv.Scope)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func elemsEqual(a, b []Elem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || !Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func arraysEqual(a []interface{}, other interface{}) bool {
	var b []interface{}
	switch bv := other.(type) {
	case Array:
		b = bv
	case []interface{}:
		b = bv
	default:
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
