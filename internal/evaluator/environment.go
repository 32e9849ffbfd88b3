package evaluator

import "strings"

// Environment is a stack of variable scopes. Index 0 is the global scope.
// Names are case-insensitive and stored lower-cased. An Environment belongs
// to one goroutine and is not locked; see SharedEnvironment for the
// cross-goroutine form.
type Environment struct {
	scopes    []map[string]Value
	constants map[string]struct{}
}

func NewEnvironment() *Environment {
	return &Environment{
		scopes:    []map[string]Value{make(map[string]Value)},
		constants: make(map[string]struct{}),
	}
}

func (e *Environment) PushScope() {
	e.scopes = append(e.scopes, make(map[string]Value))
}

// PopScope discards the innermost scope. The global scope is never popped.
func (e *Environment) PopScope() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

// Depth is the number of scopes, including the global one.
func (e *Environment) Depth() int { return len(e.scopes) }

func (e *Environment) Define(name string, val Value) {
	e.scopes[len(e.scopes)-1][strings.ToLower(name)] = val
}

func (e *Environment) DefineGlobal(name string, val Value) {
	e.scopes[0][strings.ToLower(name)] = val
}

// DefineConst defines name in the current scope and forbids later assignment.
func (e *Environment) DefineConst(name string, val Value) {
	lower := strings.ToLower(name)
	e.constants[lower] = struct{}{}
	e.scopes[len(e.scopes)-1][lower] = val
}

// Set assigns to the innermost existing binding, or defines name in the
// current scope when it is unbound.
func (e *Environment) Set(name string, val Value) error {
	lower := strings.ToLower(name)
	if _, isConst := e.constants[lower]; isConst {
		return NewCustom("Cannot assign to constant '%s'", name)
	}
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, ok := e.scopes[i][lower]; ok {
			e.scopes[i][lower] = val
			return nil
		}
	}
	e.scopes[len(e.scopes)-1][lower] = val
	return nil
}

func (e *Environment) Get(name string) (Value, error) {
	lower := strings.ToLower(name)
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][lower]; ok {
			return v, nil
		}
	}
	return nil, NewUndefinedVariable(name)
}

func (e *Environment) GetOrNothing(name string) Value {
	v, err := e.Get(name)
	if err != nil {
		return NOTHING
	}
	return v
}

func (e *Environment) ExistsInCurrentScope(name string) bool {
	_, ok := e.scopes[len(e.scopes)-1][strings.ToLower(name)]
	return ok
}

// HasLocal reports whether name is bound in any scope other than the global one.
func (e *Environment) HasLocal(name string) bool {
	lower := strings.ToLower(name)
	for _, scope := range e.scopes[1:] {
		if _, ok := scope[lower]; ok {
			return true
		}
	}
	return false
}

// GetGlobal looks name up in the global scope only.
func (e *Environment) GetGlobal(name string) (Value, bool) {
	v, ok := e.scopes[0][strings.ToLower(name)]
	return v, ok
}

func (e *Environment) IsConst(name string) bool {
	_, ok := e.constants[strings.ToLower(name)]
	return ok
}

// DeepClone copies every scope and deep-clones every bound value, so the
// result shares no handles with e. Aliasing between variables is kept.
func (e *Environment) DeepClone() *Environment {
	return newCloner().environment(e)
}

// ToShared mirrors e into a SharedEnvironment for use on another goroutine.
func (e *Environment) ToShared() *SharedEnvironment {
	return newSharer().environment(e)
}
