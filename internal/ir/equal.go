package ir

import "reflect"

// Equal reports whether a and b are structurally equal: arrays element-wise
// in order, objects by key set and per-key value, primitives by value.
// A length mismatch is simply "not equal".
func Equal(a, b Value) bool {
	if isNull(a) || isNull(b) {
		return isNull(a) && isNull(b)
	}

	switch av := a.(type) {
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		if sameBacking(av, bv) {
			return true
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true

	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		if reflect.ValueOf(av).Pointer() == reflect.ValueOf(bv).Pointer() {
			return true
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true

	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return float64(av) == float64(bv)
		}
		return false

	case Float:
		switch bv := b.(type) {
		case Float:
			return av == bv
		case Int:
			return float64(av) == float64(bv)
		}
		return false

	case String:
		bv, ok := b.(String)
		return ok && av == bv

	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	}
	return false
}

func isNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

func sameBacking(a, b Array) bool {
	return len(a) > 0 && &a[0] == &b[0]
}

// LineEqual reports whether two timeline lines are structurally equal.
func LineEqual(a, b Line) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(a.Tuple(), b.Tuple())
}
