package evaluator

type ValueType string

const (
	BYTE_OBJ       = "Byte"
	CHAR_OBJ       = "Char"
	INTEGER_OBJ    = "Integer"
	LONG_OBJ       = "Long"
	SINGLE_OBJ     = "Single"
	DOUBLE_OBJ     = "Double"
	DATE_OBJ       = "Date"
	STRING_OBJ     = "String"
	BOOLEAN_OBJ    = "Boolean"
	ARRAY_OBJ      = "Array"
	COLLECTION_OBJ = "Collection"
	QUEUE_OBJ      = "Queue"
	STACK_OBJ      = "Stack"
	HASHSET_OBJ    = "HashSet"
	DICTIONARY_OBJ = "Dictionary"
	NOTHING_OBJ    = "Nothing"
	OBJECT_OBJ     = "Object"
	LAMBDA_OBJ     = "Lambda"
)

// Value is a dynamically typed runtime value. The set of implementations is
// closed: only the types in this package satisfy it.
//
// Primitive values and Array are copied by value. Object, Collection, Queue,
// Stack, HashSet and Dictionary are handles: copying the Value copies the
// pointer and every alias observes mutations. Values are owned by a single
// goroutine; crossing goroutines goes through ToShared / SharedValue.ToValue.
type Value interface {
	Type() ValueType
	Inspect() string
	value()
}

var (
	TRUE    = &Boolean{Value: true}
	FALSE   = &Boolean{Value: false}
	NOTHING = &Nothing{}
)

func nativeBoolToBooleanValue(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// IsNothing reports whether v is Nothing (a nil interface counts too).
func IsNothing(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(*Nothing)
	return ok
}

// isReference reports whether v is a shared, mutably aliasable handle.
func isReference(v Value) bool {
	switch v.(type) {
	case *Object, *Collection, *Queue, *Stack, *HashSet, *Dictionary:
		return true
	}
	return false
}

// Copy returns the value a VB assignment would store: Arrays are copied
// element-wise (recursively), handles and primitives are returned as is.
func Copy(v Value) Value {
	arr, ok := v.(*Array)
	if !ok {
		return v
	}
	elems := make([]Value, len(arr.Elements))
	for i, el := range arr.Elements {
		elems[i] = Copy(el)
	}
	return &Array{Elements: elems}
}
