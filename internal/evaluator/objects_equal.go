package evaluator

// Identical is the strict equality used for collection membership: same
// variant and same payload, strings compared exactly, Arrays element-wise,
// and handles (Object, collections, Lambda) by identity.
func Identical(a, b Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}

	switch aVal := a.(type) {
	case *Integer:
		return aVal.Value == b.(*Integer).Value
	case *Long:
		return aVal.Value == b.(*Long).Value
	case *Byte:
		return aVal.Value == b.(*Byte).Value
	case *Char:
		return aVal.Value == b.(*Char).Value
	case *Single:
		return aVal.Value == b.(*Single).Value
	case *Double:
		return aVal.Value == b.(*Double).Value
	case *Date:
		return aVal.Value == b.(*Date).Value
	case *String:
		return aVal.Value == b.(*String).Value
	case *Boolean:
		return aVal.Value == b.(*Boolean).Value
	case *Nothing:
		return true
	case *Array:
		bVal := b.(*Array)
		if len(aVal.Elements) != len(bVal.Elements) {
			return false
		}
		for i := range aVal.Elements {
			if !Identical(aVal.Elements[i], bVal.Elements[i]) {
				return false
			}
		}
		return true
	}
	// distinct handles
	return false
}
