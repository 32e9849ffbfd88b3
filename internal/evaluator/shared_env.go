package evaluator

import (
	"strings"
	"sync"
)

// SharedEnvironment is the cross-goroutine mirror of an Environment.
type SharedEnvironment struct {
	mu        sync.Mutex
	scopes    []map[string]SharedValue
	constants map[string]struct{}
}

func NewSharedEnvironment() *SharedEnvironment {
	return &SharedEnvironment{
		scopes:    []map[string]SharedValue{make(map[string]SharedValue)},
		constants: make(map[string]struct{}),
	}
}

// GetShared returns the shared node bound to name. Mutations through it are
// visible to every holder of this environment.
func (e *SharedEnvironment) GetShared(name string) (SharedValue, bool) {
	lower := strings.ToLower(name)
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if sv, ok := e.scopes[i][lower]; ok {
			return sv, true
		}
	}
	return nil, false
}

// Get returns a fresh Value copy of the binding for name.
func (e *SharedEnvironment) Get(name string) (Value, error) {
	sv, ok := e.GetShared(name)
	if !ok {
		return nil, NewUndefinedVariable(name)
	}
	return sv.ToValue(), nil
}

// Set assigns v (mirrored) with the same rules as Environment.Set.
func (e *SharedEnvironment) Set(name string, v Value) error {
	sv := ToShared(v)
	lower := strings.ToLower(name)
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, isConst := e.constants[lower]; isConst {
		return NewCustom("Cannot assign to constant '%s'", name)
	}
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, ok := e.scopes[i][lower]; ok {
			e.scopes[i][lower] = sv
			return nil
		}
	}
	e.scopes[len(e.scopes)-1][lower] = sv
	return nil
}

// Define binds name in the innermost scope.
func (e *SharedEnvironment) Define(name string, v Value) {
	e.DefineShared(name, ToShared(v))
}

func (e *SharedEnvironment) DefineShared(name string, sv SharedValue) {
	e.mu.Lock()
	e.scopes[len(e.scopes)-1][strings.ToLower(name)] = sv
	e.mu.Unlock()
}

// ToEnvironment copies the shared environment back into a fresh,
// single-goroutine Environment.
func (e *SharedEnvironment) ToEnvironment() *Environment {
	return newUnsharer().environment(e)
}

func (e *SharedEnvironment) snapshot() ([]map[string]SharedValue, map[string]struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	scopes := make([]map[string]SharedValue, len(e.scopes))
	for i, scope := range e.scopes {
		copied := make(map[string]SharedValue, len(scope))
		for k, v := range scope {
			copied[k] = v
		}
		scopes[i] = copied
	}
	constants := make(map[string]struct{}, len(e.constants))
	for k := range e.constants {
		constants[k] = struct{}{}
	}
	return scopes, constants
}
