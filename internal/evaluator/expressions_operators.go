package evaluator

import (
	"math"

	"github.com/funvibe/vybe/internal/ast"
)

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) (Value, error) {
	left, err := e.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}

	// AndAlso / OrElse only evaluate the right side when it decides the result.
	switch node.Operator {
	case ast.OpAndAlso, ast.OpOrElse:
		lb, ok := left.(*Boolean)
		if !ok {
			return nil, NewTypeError("Boolean", left)
		}
		if lb.Value == (node.Operator == ast.OpOrElse) {
			return lb, nil
		}
		right, err := e.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(*Boolean)
		if !ok {
			return nil, NewTypeError("Boolean", right)
		}
		return rb, nil
	}

	right, err := e.Eval(node.Right, env)
	if err != nil {
		return nil, err
	}
	return EvalInfixExpression(node.Operator, left, right)
}

// EvalInfixExpression applies a binary operator to two evaluated operands.
// AndAlso and OrElse are accepted too, without short-circuiting.
func EvalInfixExpression(operator string, left, right Value) (Value, error) {
	switch operator {
	case ast.OpAdd:
		return evalAdd(left, right)
	case ast.OpSubtract:
		return evalSubtract(left, right)
	case ast.OpMultiply:
		return evalMultiply(left, right)
	case ast.OpDivide:
		a, b, err := doubles(left, right)
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, NewDivisionByZero()
		}
		return &Double{Value: a / b}, nil
	case ast.OpIntDivide, ast.OpModulo:
		return evalIntegerDivision(operator, left, right)
	case ast.OpExponent:
		a, b, err := doubles(left, right)
		if err != nil {
			return nil, err
		}
		return &Double{Value: math.Pow(a, b)}, nil
	case ast.OpConcat:
		return &String{Value: AsString(left) + AsString(right)}, nil

	case ast.OpEqual:
		return nativeBoolToBooleanValue(ValuesEqual(left, right)), nil
	case ast.OpNotEqual:
		return nativeBoolToBooleanValue(!ValuesEqual(left, right)), nil
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEq:
		op, _ := ast.ParseCompareOp(operator)
		ok, err := CompareValues(left, op, right)
		if err != nil {
			return nil, err
		}
		return nativeBoolToBooleanValue(ok), nil

	case ast.OpAnd, ast.OpOr, ast.OpXor:
		return evalLogical(operator, left, right)
	case ast.OpAndAlso, ast.OpOrElse:
		lb, ok := left.(*Boolean)
		if !ok {
			return nil, NewTypeError("Boolean", left)
		}
		rb, ok := right.(*Boolean)
		if !ok {
			return nil, NewTypeError("Boolean", right)
		}
		if operator == ast.OpAndAlso {
			return nativeBoolToBooleanValue(lb.Value && rb.Value), nil
		}
		return nativeBoolToBooleanValue(lb.Value || rb.Value), nil

	case ast.OpIs:
		return nativeBoolToBooleanValue(sameHandle(left, right)), nil
	case ast.OpIsNot:
		return nativeBoolToBooleanValue(!sameHandle(left, right)), nil
	case ast.OpLike:
		return nativeBoolToBooleanValue(LikeMatch(AsString(left), AsString(right))), nil

	case ast.OpShiftLeft, ast.OpShiftRight:
		val, err := AsLong(left)
		if err != nil {
			return nil, err
		}
		shift, err := AsInteger(right)
		if err != nil {
			return nil, err
		}
		n := uint(shift & 63)
		if operator == ast.OpShiftLeft {
			return &Long{Value: val << n}, nil
		}
		return &Long{Value: val >> n}, nil
	}
	return nil, NewCustom("unknown operator: %s", operator)
}

// EvalPrefixExpression applies Not or unary minus.
func EvalPrefixExpression(operator string, operand Value) (Value, error) {
	switch operator {
	case ast.OpNot:
		if b, ok := operand.(*Boolean); ok {
			return nativeBoolToBooleanValue(!b.Value), nil
		}
		i, err := AsLong(operand)
		if err != nil {
			return nil, err
		}
		return &Long{Value: ^i}, nil
	case ast.OpNegate:
		switch v := operand.(type) {
		case *Integer:
			return &Integer{Value: -v.Value}, nil
		case *Double:
			return &Double{Value: -v.Value}, nil
		}
		d, err := AsDouble(operand)
		if err != nil {
			return nil, err
		}
		return &Double{Value: -d}, nil
	}
	return nil, NewCustom("unknown operator: %s", operator)
}

func evalAdd(left, right Value) (Value, error) {
	switch l := left.(type) {
	case *Integer:
		switch r := right.(type) {
		case *Integer:
			return &Integer{Value: l.Value + r.Value}, nil
		case *Long:
			return &Long{Value: int64(l.Value) + r.Value}, nil
		case *Date:
			return &Date{Value: r.Value + float64(l.Value)}, nil
		}
	case *Long:
		switch r := right.(type) {
		case *Long:
			return &Long{Value: l.Value + r.Value}, nil
		case *Integer:
			return &Long{Value: l.Value + int64(r.Value)}, nil
		}
	case *Double:
		if r, ok := right.(*Date); ok {
			return &Date{Value: r.Value + l.Value}, nil
		}
	case *Date:
		switch r := right.(type) {
		case *Double:
			return &Date{Value: l.Value + r.Value}, nil
		case *Integer:
			return &Date{Value: l.Value + float64(r.Value)}, nil
		}
	}
	a, b, err := doubles(left, right)
	if err != nil {
		return nil, err
	}
	return &Double{Value: a + b}, nil
}

func evalSubtract(left, right Value) (Value, error) {
	switch l := left.(type) {
	case *Integer:
		switch r := right.(type) {
		case *Integer:
			return &Integer{Value: l.Value - r.Value}, nil
		case *Long:
			return &Long{Value: int64(l.Value) - r.Value}, nil
		}
	case *Long:
		switch r := right.(type) {
		case *Long:
			return &Long{Value: l.Value - r.Value}, nil
		case *Integer:
			return &Long{Value: l.Value - int64(r.Value)}, nil
		}
	case *Date:
		switch r := right.(type) {
		case *Date:
			return &Double{Value: l.Value - r.Value}, nil
		case *Double:
			return &Date{Value: l.Value - r.Value}, nil
		case *Integer:
			return &Date{Value: l.Value - float64(r.Value)}, nil
		}
	}
	a, b, err := doubles(left, right)
	if err != nil {
		return nil, err
	}
	return &Double{Value: a - b}, nil
}

func evalMultiply(left, right Value) (Value, error) {
	switch l := left.(type) {
	case *Integer:
		switch r := right.(type) {
		case *Integer:
			return &Integer{Value: l.Value * r.Value}, nil
		case *Long:
			return &Long{Value: int64(l.Value) * r.Value}, nil
		}
	case *Long:
		switch r := right.(type) {
		case *Long:
			return &Long{Value: l.Value * r.Value}, nil
		case *Integer:
			return &Long{Value: l.Value * int64(r.Value)}, nil
		}
	}
	a, b, err := doubles(left, right)
	if err != nil {
		return nil, err
	}
	return &Double{Value: a * b}, nil
}

// evalIntegerDivision implements \ and Mod. Operands are coerced to
// Integer, or to Long when either side already is one.
func evalIntegerDivision(operator string, left, right Value) (Value, error) {
	_, ll := left.(*Long)
	_, rl := right.(*Long)
	if ll || rl {
		a, err := AsLong(left)
		if err != nil {
			return nil, err
		}
		b, err := AsLong(right)
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, NewDivisionByZero()
		}
		if operator == ast.OpModulo {
			return &Long{Value: a % b}, nil
		}
		return &Long{Value: a / b}, nil
	}

	a, err := AsInteger(left)
	if err != nil {
		return nil, err
	}
	b, err := AsInteger(right)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, NewDivisionByZero()
	}
	if operator == ast.OpModulo {
		return &Integer{Value: a % b}, nil
	}
	return &Integer{Value: a / b}, nil
}

func evalLogical(operator string, left, right Value) (Value, error) {
	lb, lok := left.(*Boolean)
	rb, rok := right.(*Boolean)
	if lok && rok {
		switch operator {
		case ast.OpAnd:
			return nativeBoolToBooleanValue(lb.Value && rb.Value), nil
		case ast.OpOr:
			return nativeBoolToBooleanValue(lb.Value || rb.Value), nil
		default:
			return nativeBoolToBooleanValue(lb.Value != rb.Value), nil
		}
	}

	a, err := AsLong(left)
	if err != nil {
		return nil, err
	}
	b, err := AsLong(right)
	if err != nil {
		return nil, err
	}
	switch operator {
	case ast.OpAnd:
		return &Long{Value: a & b}, nil
	case ast.OpOr:
		return &Long{Value: a | b}, nil
	default:
		return &Long{Value: a ^ b}, nil
	}
}

// sameHandle implements Is: both Nothing, or the same Object.
func sameHandle(left, right Value) bool {
	if IsNothing(left) && IsNothing(right) {
		return true
	}
	lo, lok := left.(*Object)
	ro, rok := right.(*Object)
	return lok && rok && lo == ro
}

func doubles(left, right Value) (float64, float64, error) {
	a, err := AsDouble(left)
	if err != nil {
		return 0, 0, err
	}
	b, err := AsDouble(right)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
