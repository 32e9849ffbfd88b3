// Package evaluator holds the dynamic value model of the vybe runtime and
// the pure expression evaluator built on it: coercions, operator semantics,
// the RuntimeSignal error taxonomy, scoped environments and the shared
// mirror used to move values between goroutines.
package evaluator

import (
	"context"

	"github.com/funvibe/vybe/internal/ast"
	"github.com/funvibe/vybe/internal/config"
)

// Evaluator evaluates expression trees against an Environment. It never
// mutates the environment. An Evaluator is not safe for concurrent use; Fork
// one per goroutine.
type Evaluator struct {
	// MaxDepth bounds expression nesting; zero or less disables the check.
	MaxDepth int

	// Context, when set, is checked for cancellation on every node.
	Context context.Context

	// depth tracks the current nesting of Eval calls
	depth int
}

func New() *Evaluator {
	return &Evaluator{MaxDepth: config.DefaultMaxEvalDepth}
}

// NewFromSettings creates an evaluator using the limits in s.
func NewFromSettings(s *config.Settings) *Evaluator {
	e := New()
	if s != nil && s.MaxEvalDepth > 0 {
		e.MaxDepth = s.MaxEvalDepth
	}
	return e
}

// Fork creates an independent evaluator with the same limits, for use on
// another goroutine.
func (e *Evaluator) Fork() *Evaluator {
	return &Evaluator{MaxDepth: e.MaxDepth, Context: e.Context}
}

// WithContext returns a fork whose evaluation stops once ctx is done.
func (e *Evaluator) WithContext(ctx context.Context) *Evaluator {
	f := e.Fork()
	f.Context = ctx
	return f
}

// Evaluate evaluates expr with a default evaluator.
func Evaluate(expr ast.Expression, env *Environment) (Value, error) {
	return New().Eval(expr, env)
}

func (e *Evaluator) Eval(expr ast.Expression, env *Environment) (Value, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.MaxDepth > 0 && e.depth > e.MaxDepth {
		return nil, NewCustom("expression nesting too deep (limit %d)", e.MaxDepth)
	}

	if e.Context != nil {
		select {
		case <-e.Context.Done():
			return nil, WrapCustom(e.Context.Err(), "execution cancelled")
		default:
		}
	}

	return e.evalCore(expr, env)
}

func (e *Evaluator) evalCore(expr ast.Expression, env *Environment) (Value, error) {
	switch node := expr.(type) {
	// Literals
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}, nil
	case *ast.DoubleLiteral:
		return &Double{Value: node.Value}, nil
	case *ast.StringLiteral:
		return &String{Value: node.Value}, nil
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanValue(node.Value), nil
	case *ast.DateLiteral:
		d, err := ParseDate(node.Value)
		if err != nil {
			return nil, err
		}
		return &Date{Value: d}, nil
	case *ast.NothingLiteral:
		return NOTHING, nil

	// Lookups
	case *ast.Variable:
		return env.Get(node.Name)
	case *ast.MemberAccess:
		return e.evalMemberAccess(node, env)
	case *ast.ArrayAccess:
		return e.evalArrayAccess(node, env)
	case *ast.ArrayLiteral:
		elems := make([]Value, len(node.Elements))
		for i, el := range node.Elements {
			v, err := e.Eval(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &Array{Elements: elems}, nil

	// Operators
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.PrefixExpression:
		operand, err := e.Eval(node.Operand, env)
		if err != nil {
			return nil, err
		}
		return EvalPrefixExpression(node.Operator, operand)

	case nil:
		return nil, NewCustom("missing expression")
	}

	// Calls, object creation, Await, lambdas, casts and queries belong to
	// the statement interpreter.
	return nil, newNeedsInterpreter(expr.Kind())
}
