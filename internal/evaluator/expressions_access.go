package evaluator

import (
	"github.com/funvibe/vybe/internal/ast"
)

// evalMemberAccess resolves obj.Member. A flat "name.member" binding (as
// used for module-level and enum constants) wins over field lookup.
func (e *Evaluator) evalMemberAccess(node *ast.MemberAccess, env *Environment) (Value, error) {
	if v, ok := node.Object.(*ast.Variable); ok {
		if val, err := env.Get(v.Name + "." + node.Member); err == nil {
			return val, nil
		}
	}

	target, err := e.Eval(node.Object, env)
	if err != nil {
		return nil, err
	}
	obj, ok := target.(*Object)
	if !ok {
		return nil, NewTypeError("Object", target)
	}
	field, ok := obj.Get(node.Member)
	if !ok {
		return nil, NewUndefinedVariable(node.Member)
	}
	return field, nil
}

// evalArrayAccess reads name(index). Only the first index is used; it
// selects an Array or Collection element, or a Dictionary entry by key.
func (e *Evaluator) evalArrayAccess(node *ast.ArrayAccess, env *Environment) (Value, error) {
	container, err := env.Get(node.Name)
	if err != nil {
		return nil, err
	}
	if len(node.Indices) == 0 {
		return nil, NewCustom("missing index for '%s'", node.Name)
	}
	index, err := e.Eval(node.Indices[0], env)
	if err != nil {
		return nil, err
	}

	if dict, ok := container.(*Dictionary); ok {
		return dict.Item(index)
	}
	i, err := AsInteger(index)
	if err != nil {
		return nil, err
	}
	return GetArrayElement(container, int(i))
}
