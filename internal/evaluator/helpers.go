package evaluator

import (
	"github.com/funvibe/vybe/internal/config"
)

// equalFoldASCII compares strings ignoring ASCII case only. Non-ASCII
// characters must match exactly, unlike strings.EqualFold.
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		if lowerASCII(ca) != lowerASCII(cb) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func lowerASCIIRune(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// GetArrayElement returns element index of an Array or Collection.
func GetArrayElement(v Value, index int) (Value, error) {
	switch v := v.(type) {
	case *Array:
		if index < 0 || index >= len(v.Elements) {
			return nil, NewCustom("Array index %d out of bounds", index)
		}
		return v.Elements[index], nil
	case *Collection:
		return v.Item(index)
	}
	return nil, NewTypeError("Array or Collection", v)
}

// SetArrayElement stores val at index of an Array or Collection in place.
func SetArrayElement(v Value, index int, val Value) error {
	switch v := v.(type) {
	case *Array:
		if index < 0 || index >= len(v.Elements) {
			return NewCustom("Array index %d out of bounds", index)
		}
		v.Elements[index] = val
		return nil
	case *Collection:
		return v.SetItem(index, val)
	}
	return NewTypeError("Array or Collection", v)
}

func ArrayLength(v Value) (int, error) {
	if arr, ok := v.(*Array); ok {
		return len(arr.Elements), nil
	}
	return 0, NewTypeError("Array", v)
}

// ToIterable flattens an enumerable value into the sequence For Each visits.
func ToIterable(v Value) ([]Value, error) {
	switch v := v.(type) {
	case *Array:
		return append([]Value(nil), v.Elements...), nil
	case *Collection:
		return append([]Value(nil), v.Items...), nil
	case *Queue:
		return v.ToArray(), nil
	case *Stack:
		return v.ToArray(), nil
	case *HashSet:
		return v.ToArray(), nil
	case *Dictionary:
		out := make([]Value, len(v.keys))
		for i := range v.keys {
			out[i] = newKeyValuePair(v.keys[i], v.values[i])
		}
		return out, nil
	case *String:
		out := make([]Value, 0, len(v.Value))
		for _, r := range v.Value {
			out = append(out, &String{Value: string(r)})
		}
		return out, nil
	case *Object:
		for _, field := range []string{config.ItemsField, config.RowsField} {
			if arr, ok := v.Fields[field].(*Array); ok {
				return append([]Value(nil), arr.Elements...), nil
			}
		}
		return nil, NewCustom("Object of type '%s' is not enumerable", v.ClassName)
	case *Nothing:
		return nil, nil
	}
	return nil, NewTypeError("Array, Collection, Dictionary, or other enumerable", v)
}
