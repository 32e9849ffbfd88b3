package evaluator

import (
	"github.com/funvibe/vybe/internal/ast"
)

// ValuesEqual implements the = operator. Strings compare ignoring ASCII
// case; Nothing equals Nothing and the empty string only; Objects compare by
// identity; a String against any other value compares with that value's
// string form; numbers compare after promotion to Double.
func ValuesEqual(a, b Value) bool {
	switch l := a.(type) {
	case *Boolean:
		switch r := b.(type) {
		case *Boolean:
			return l.Value == r.Value
		case *Integer:
			return (r.Value != 0) == l.Value
		}
	case *Integer:
		switch r := b.(type) {
		case *Integer:
			return l.Value == r.Value
		case *Boolean:
			return (l.Value != 0) == r.Value
		}
	case *Long:
		if r, ok := b.(*Long); ok {
			return l.Value == r.Value
		}
	case *Single:
		if r, ok := b.(*Single); ok {
			return l.Value == r.Value
		}
	case *Double:
		if r, ok := b.(*Double); ok {
			return l.Value == r.Value
		}
	case *Date:
		if r, ok := b.(*Date); ok {
			return l.Value == r.Value
		}
	case *String:
		switch r := b.(type) {
		case *String:
			return equalFoldASCII(l.Value, r.Value)
		case *Nothing:
			return l.Value == ""
		}
		return equalFoldASCII(l.Value, AsString(b))
	case *Nothing:
		switch r := b.(type) {
		case *Nothing:
			return true
		case *String:
			return r.Value == ""
		}
		return false
	case *Object:
		if r, ok := b.(*Object); ok {
			return l == r
		}
	}

	switch r := b.(type) {
	case *String:
		return equalFoldASCII(r.Value, AsString(a))
	case *Nothing:
		return false
	}

	if isReference(a) || isReference(b) {
		return a == b
	}
	ld, err := AsDouble(a)
	if err != nil {
		return false
	}
	rd, err := AsDouble(b)
	if err != nil {
		return false
	}
	return ld == rd
}

// ValueInRange reports lo <= v <= hi, as used by Case lo To hi.
func ValueInRange(v, lo, hi Value) bool {
	if vi, ok := v.(*Integer); ok {
		li, lok := lo.(*Integer)
		hi2, hok := hi.(*Integer)
		if lok && hok {
			return vi.Value >= li.Value && vi.Value <= hi2.Value
		}
	}
	if vs, ok := v.(*String); ok {
		ls, lok := lo.(*String)
		hs, hok := hi.(*String)
		if lok && hok {
			return vs.Value >= ls.Value && vs.Value <= hs.Value
		}
	}
	vd, err := AsDouble(v)
	if err != nil {
		return false
	}
	ld, err := AsDouble(lo)
	if err != nil {
		return false
	}
	hd, err := AsDouble(hi)
	if err != nil {
		return false
	}
	return vd >= ld && vd <= hd
}

// CompareValues applies a relational operator. Integer pairs and String
// pairs compare natively (strings by byte order); anything else is
// compared as Double and fails when either side cannot convert.
func CompareValues(a Value, op ast.CompareOp, b Value) (bool, error) {
	switch op {
	case ast.CompareEqual:
		return ValuesEqual(a, b), nil
	case ast.CompareNotEqual:
		return !ValuesEqual(a, b), nil
	}

	var c int
	switch {
	case isIntegerPair(a, b):
		c = cmp3(a.(*Integer).Value, b.(*Integer).Value)
	case isStringPair(a, b):
		c = cmp3(a.(*String).Value, b.(*String).Value)
	default:
		ld, err := AsDouble(a)
		if err != nil {
			return false, err
		}
		rd, err := AsDouble(b)
		if err != nil {
			return false, err
		}
		// NaN compares false with everything
		if ld != ld || rd != rd {
			return false, nil
		}
		c = cmp3(ld, rd)
	}

	switch op {
	case ast.CompareLess:
		return c < 0, nil
	case ast.CompareLessEqual:
		return c <= 0, nil
	case ast.CompareGreater:
		return c > 0, nil
	case ast.CompareGreaterEqual:
		return c >= 0, nil
	}
	return false, NewCustom("unknown comparison operator %s", op)
}

func isIntegerPair(a, b Value) bool {
	_, l := a.(*Integer)
	_, r := b.(*Integer)
	return l && r
}

func isStringPair(a, b Value) bool {
	_, l := a.(*String)
	_, r := b.(*String)
	return l && r
}

func cmp3[T int32 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
