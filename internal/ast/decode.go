package ast

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes an expression tree written as YAML.
//
// Plain scalars are literals (1, 2.5, "text", true, null). Mappings select a
// node kind by key:
//
//	{var: x}                         variable
//	{member: Name, of: <expr>}       member access
//	{op: "+", left: <e>, right: <e>} infix operator
//	{not: <e>} / {neg: <e>}          prefix operators
//	{int: 5} {double: 1} {string: s} typed literals
//	{date: "12/31/1999"}             date literal
//	{array: [<e>, ...]}              array literal
//	{index: arr, at: [<e>, ...]}     array access
//	{call: F, args: [...]}           call (needs an interpreter)
//	{new: Class, args: [...]}        object creation (needs an interpreter)
//	{await: <e>}                     await (needs an interpreter)
//	{if: [<c>, <a>, <b>]}            If() expression (needs an interpreter)
func DecodeYAML(data []byte) (Expression, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("expression tree: %w", err)
	}
	return FromTree(raw)
}

// FromTree converts a generic decoded document (as produced by yaml.Unmarshal
// into interface{}) into an expression.
func FromTree(raw interface{}) (Expression, error) {
	switch v := raw.(type) {
	case nil:
		return &NothingLiteral{}, nil
	case bool:
		return &BooleanLiteral{Value: v}, nil
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return &DoubleLiteral{Value: float64(v)}, nil
		}
		return &IntegerLiteral{Value: int32(v)}, nil
	case float64:
		return &DoubleLiteral{Value: v}, nil
	case string:
		return &StringLiteral{Value: v}, nil
	case []interface{}:
		return nil, fmt.Errorf("bare sequence is not an expression; use {array: [...]}")
	case map[string]interface{}:
		return fromMap(v)
	default:
		return nil, fmt.Errorf("unsupported expression node %T", raw)
	}
}

func fromMap(m map[string]interface{}) (Expression, error) {
	if op, ok := m["op"]; ok {
		opStr, ok := op.(string)
		if !ok {
			return nil, fmt.Errorf("op must be a string, got %T", op)
		}
		left, err := child(m, "left")
		if err != nil {
			return nil, err
		}
		right, err := child(m, "right")
		if err != nil {
			return nil, err
		}
		return &InfixExpression{Operator: canonicalOperator(opStr), Left: left, Right: right}, nil
	}

	switch {
	case has(m, "int"):
		n, ok := m["int"].(int)
		if !ok || n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("int literal out of range: %v", m["int"])
		}
		return &IntegerLiteral{Value: int32(n)}, nil
	case has(m, "double"):
		switch n := m["double"].(type) {
		case int:
			return &DoubleLiteral{Value: float64(n)}, nil
		case float64:
			return &DoubleLiteral{Value: n}, nil
		}
		return nil, fmt.Errorf("double literal must be numeric, got %T", m["double"])
	case has(m, "string"):
		return &StringLiteral{Value: fmt.Sprint(m["string"])}, nil
	case has(m, "bool"):
		b, ok := m["bool"].(bool)
		if !ok {
			return nil, fmt.Errorf("bool literal must be true or false")
		}
		return &BooleanLiteral{Value: b}, nil
	case has(m, "date"):
		return &DateLiteral{Value: fmt.Sprint(m["date"])}, nil
	case has(m, "nothing"):
		return &NothingLiteral{}, nil
	case has(m, "var"):
		name, err := str(m, "var")
		if err != nil {
			return nil, err
		}
		return &Variable{Name: name}, nil
	case has(m, "member"):
		name, err := str(m, "member")
		if err != nil {
			return nil, err
		}
		obj, err := child(m, "of")
		if err != nil {
			return nil, err
		}
		return &MemberAccess{Object: obj, Member: name}, nil
	case has(m, "not"):
		operand, err := child(m, "not")
		if err != nil {
			return nil, err
		}
		return &PrefixExpression{Operator: OpNot, Operand: operand}, nil
	case has(m, "neg"):
		operand, err := child(m, "neg")
		if err != nil {
			return nil, err
		}
		return &PrefixExpression{Operator: OpNegate, Operand: operand}, nil
	case has(m, "array"):
		elems, err := list(m, "array")
		if err != nil {
			return nil, err
		}
		return &ArrayLiteral{Elements: elems}, nil
	case has(m, "index"):
		name, err := str(m, "index")
		if err != nil {
			return nil, err
		}
		indices, err := list(m, "at")
		if err != nil {
			return nil, err
		}
		if len(indices) == 0 {
			return nil, fmt.Errorf("index %s: at least one index required", name)
		}
		return &ArrayAccess{Name: name, Indices: indices}, nil
	case has(m, "call"):
		name, err := str(m, "call")
		if err != nil {
			return nil, err
		}
		args, err := optionalList(m, "args")
		if err != nil {
			return nil, err
		}
		return &Call{Name: name, Args: args}, nil
	case has(m, "new"):
		name, err := str(m, "new")
		if err != nil {
			return nil, err
		}
		args, err := optionalList(m, "args")
		if err != nil {
			return nil, err
		}
		return &New{ClassName: name, Args: args}, nil
	case has(m, "await"):
		operand, err := child(m, "await")
		if err != nil {
			return nil, err
		}
		return &Await{Operand: operand}, nil
	case has(m, "if"):
		parts, err := list(m, "if")
		if err != nil {
			return nil, err
		}
		if len(parts) != 3 {
			return nil, fmt.Errorf("if expects [condition, then, else], got %d items", len(parts))
		}
		return &IfExpression{Condition: parts[0], Consequence: parts[1], Alternative: parts[2]}, nil
	case has(m, "me"):
		return &Me{}, nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, fmt.Errorf("unknown expression node with keys [%s]", strings.Join(keys, ", "))
}

// canonicalOperator maps case-insensitive keyword operators (and, mod, like...)
// onto their canonical spelling.
func canonicalOperator(op string) string {
	for _, known := range []string{OpModulo, OpAnd, OpOr, OpXor, OpAndAlso, OpOrElse, OpIs, OpIsNot, OpLike} {
		if strings.EqualFold(op, known) {
			return known
		}
	}
	return op
}

func has(m map[string]interface{}, key string) bool {
	_, ok := m[key]
	return ok
}

func child(m map[string]interface{}, key string) (Expression, error) {
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("missing %q", key)
	}
	expr, err := FromTree(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return expr, nil
}

func str(m map[string]interface{}, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%q must be a non-empty string", key)
	}
	return s, nil
}

func list(m map[string]interface{}, key string) ([]Expression, error) {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%q must be a sequence", key)
	}
	out := make([]Expression, len(raw))
	for i, item := range raw {
		expr, err := FromTree(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out[i] = expr
	}
	return out, nil
}

func optionalList(m map[string]interface{}, key string) ([]Expression, error) {
	if !has(m, key) {
		return nil, nil
	}
	return list(m, key)
}
