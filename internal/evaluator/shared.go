package evaluator

import (
	"strings"
	"sync"

	"github.com/funvibe/vybe/internal/ast"
)

// SharedValue is the cross-goroutine mirror of a Value. Every mutable node
// guards its own state with its own mutex. SharedValue and Value are
// distinct interfaces, so one can never be passed where the other is
// expected; ToShared and ToValue are the only bridges and both deep-copy.
type SharedValue interface {
	SharedType() ValueType
	// ToValue returns a fresh, disconnected Value copy of the shared graph.
	ToValue() Value
	sharedValue()
}

// ToShared mirrors v into a SharedValue graph. Aliasing inside v is kept
// and cycles terminate.
func ToShared(v Value) SharedValue {
	return newSharer().value(v)
}

// SharedScalar wraps an immutable primitive.
type SharedScalar struct {
	v Value
}

func (s *SharedScalar) SharedType() ValueType { return s.v.Type() }
func (s *SharedScalar) ToValue() Value        { return s.v }
func (s *SharedScalar) sharedValue()          {}

// SharedArray mirrors an Array.
type SharedArray struct {
	mu    sync.Mutex
	elems []SharedValue
}

func (a *SharedArray) SharedType() ValueType { return ARRAY_OBJ }
func (a *SharedArray) ToValue() Value        { return newUnsharer().value(a) }
func (a *SharedArray) sharedValue()          {}

func (a *SharedArray) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.elems)
}

func (a *SharedArray) Get(i int) (SharedValue, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.elems) {
		return nil, false
	}
	return a.elems[i], true
}

func (a *SharedArray) Set(i int, v SharedValue) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.elems) {
		return false
	}
	a.elems[i] = v
	return true
}

func (a *SharedArray) snapshot() []SharedValue {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]SharedValue(nil), a.elems...)
}

// SharedObjectData mirrors an Object. Field names are lower-cased.
type SharedObjectData struct {
	mu        sync.Mutex
	ClassName string
	fields    map[string]SharedValue
}

// NewSharedObject creates an empty shared object of the given class.
func NewSharedObject(className string) *SharedObjectData {
	return &SharedObjectData{ClassName: className, fields: make(map[string]SharedValue)}
}

func (o *SharedObjectData) SharedType() ValueType { return OBJECT_OBJ }
func (o *SharedObjectData) ToValue() Value        { return newUnsharer().value(o) }
func (o *SharedObjectData) sharedValue()          {}

func (o *SharedObjectData) Get(name string) (SharedValue, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.fields[strings.ToLower(name)]
	return v, ok
}

// GetValue returns a fresh Value copy of a field.
func (o *SharedObjectData) GetValue(name string) (Value, bool) {
	sv, ok := o.Get(name)
	if !ok {
		return nil, false
	}
	return sv.ToValue(), true
}

func (o *SharedObjectData) Set(name string, v SharedValue) {
	o.mu.Lock()
	o.fields[strings.ToLower(name)] = v
	o.mu.Unlock()
}

// SetValue mirrors v and stores it under name.
func (o *SharedObjectData) SetValue(name string, v Value) {
	o.Set(name, ToShared(v))
}

// Update runs fn with the object locked, for read-modify-write of several
// fields at once. fn must not block or touch other shared nodes.
func (o *SharedObjectData) Update(fn func(fields map[string]SharedValue)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o.fields)
}

// Snapshot returns a disconnected Object copy of the current state.
func (o *SharedObjectData) Snapshot() *Object {
	return o.ToValue().(*Object)
}

func (o *SharedObjectData) snapshot() map[string]SharedValue {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]SharedValue, len(o.fields))
	for k, v := range o.fields {
		out[k] = v
	}
	return out
}

// SharedCollection mirrors any of the five collection kinds. For a
// Dictionary, keys holds the dictionary keys parallel to items; for a
// Collection, names holds the string-key index.
type SharedCollection struct {
	mu    sync.Mutex
	Kind  ValueType
	items []SharedValue
	keys  []SharedValue
	names map[string]int
}

func (c *SharedCollection) SharedType() ValueType { return c.Kind }
func (c *SharedCollection) ToValue() Value        { return newUnsharer().value(c) }
func (c *SharedCollection) sharedValue()          {}

func (c *SharedCollection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *SharedCollection) snapshot() (items, keys []SharedValue, names map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items = append([]SharedValue(nil), c.items...)
	keys = append([]SharedValue(nil), c.keys...)
	names = make(map[string]int, len(c.names))
	for k, v := range c.names {
		names[k] = v
	}
	return items, keys, names
}

// SharedLambda mirrors a Lambda and its captured environment.
type SharedLambda struct {
	Params []ast.Parameter
	Body   ast.Node
	Env    *SharedEnvironment
}

func (l *SharedLambda) SharedType() ValueType { return LAMBDA_OBJ }
func (l *SharedLambda) ToValue() Value        { return newUnsharer().value(l) }
func (l *SharedLambda) sharedValue()          {}

// sharer builds a shared graph from a Value graph. The nodes it creates are
// not yet visible to other goroutines, so no locks are taken.
type sharer struct {
	seen map[Value]SharedValue
	envs map[*Environment]*SharedEnvironment
}

func newSharer() *sharer {
	return &sharer{
		seen: make(map[Value]SharedValue),
		envs: make(map[*Environment]*SharedEnvironment),
	}
}

func (s *sharer) value(v Value) SharedValue {
	if v == nil {
		return &SharedScalar{v: NOTHING}
	}
	if done, ok := s.seen[v]; ok {
		return done
	}
	switch src := v.(type) {
	case *Array:
		dst := &SharedArray{elems: make([]SharedValue, len(src.Elements))}
		s.seen[v] = dst
		for i, el := range src.Elements {
			dst.elems[i] = s.value(el)
		}
		return dst
	case *Object:
		dst := NewSharedObject(src.ClassName)
		s.seen[v] = dst
		for name, field := range src.Fields {
			dst.fields[name] = s.value(field)
		}
		return dst
	case *Collection:
		dst := &SharedCollection{Kind: COLLECTION_OBJ, names: make(map[string]int, len(src.Keys))}
		s.seen[v] = dst
		for k, idx := range src.Keys {
			dst.names[k] = idx
		}
		dst.items = s.values(src.Items)
		return dst
	case *Queue:
		dst := &SharedCollection{Kind: QUEUE_OBJ}
		s.seen[v] = dst
		dst.items = s.values(src.Items)
		return dst
	case *Stack:
		dst := &SharedCollection{Kind: STACK_OBJ}
		s.seen[v] = dst
		dst.items = s.values(src.Items)
		return dst
	case *HashSet:
		dst := &SharedCollection{Kind: HASHSET_OBJ}
		s.seen[v] = dst
		dst.items = s.values(src.Items)
		return dst
	case *Dictionary:
		dst := &SharedCollection{Kind: DICTIONARY_OBJ}
		s.seen[v] = dst
		dst.keys = s.values(src.keys)
		dst.items = s.values(src.values)
		return dst
	case *Lambda:
		dst := &SharedLambda{Params: src.Params, Body: src.Body}
		s.seen[v] = dst
		if src.Env != nil {
			dst.Env = s.environment(src.Env)
		}
		return dst
	}
	return &SharedScalar{v: v}
}

func (s *sharer) values(src []Value) []SharedValue {
	out := make([]SharedValue, len(src))
	for i, v := range src {
		out[i] = s.value(v)
	}
	return out
}

func (s *sharer) environment(src *Environment) *SharedEnvironment {
	if done, ok := s.envs[src]; ok {
		return done
	}
	dst := &SharedEnvironment{
		scopes:    make([]map[string]SharedValue, len(src.scopes)),
		constants: make(map[string]struct{}, len(src.constants)),
	}
	s.envs[src] = dst
	for name := range src.constants {
		dst.constants[name] = struct{}{}
	}
	for i, scope := range src.scopes {
		mirrored := make(map[string]SharedValue, len(scope))
		for name, v := range scope {
			mirrored[name] = s.value(v)
		}
		dst.scopes[i] = mirrored
	}
	return dst
}

// unsharer builds a Value graph from a shared graph. Each node is locked
// only long enough to copy its direct children; no lock is held while
// recursing.
type unsharer struct {
	seen map[SharedValue]Value
	envs map[*SharedEnvironment]*Environment
}

func newUnsharer() *unsharer {
	return &unsharer{
		seen: make(map[SharedValue]Value),
		envs: make(map[*SharedEnvironment]*Environment),
	}
}

func (u *unsharer) value(sv SharedValue) Value {
	if sv == nil {
		return NOTHING
	}
	if scalar, ok := sv.(*SharedScalar); ok {
		return scalar.v
	}
	if done, ok := u.seen[sv]; ok {
		return done
	}
	switch src := sv.(type) {
	case *SharedArray:
		elems := src.snapshot()
		dst := &Array{Elements: make([]Value, len(elems))}
		u.seen[sv] = dst
		for i, el := range elems {
			dst.Elements[i] = u.value(el)
		}
		return dst
	case *SharedObjectData:
		fields := src.snapshot()
		dst := &Object{ClassName: src.ClassName, Fields: make(map[string]Value, len(fields))}
		u.seen[sv] = dst
		for name, field := range fields {
			dst.Fields[name] = u.value(field)
		}
		return dst
	case *SharedCollection:
		items, keys, names := src.snapshot()
		var dst Value
		switch src.Kind {
		case COLLECTION_OBJ:
			c := &Collection{Keys: names}
			u.seen[sv] = c
			c.Items = u.values(items)
			dst = c
		case QUEUE_OBJ:
			q := &Queue{}
			u.seen[sv] = q
			q.Items = u.values(items)
			dst = q
		case STACK_OBJ:
			s := &Stack{}
			u.seen[sv] = s
			s.Items = u.values(items)
			dst = s
		case HASHSET_OBJ:
			h := &HashSet{}
			u.seen[sv] = h
			h.Items = u.values(items)
			dst = h
		default:
			d := &Dictionary{}
			u.seen[sv] = d
			d.keys = u.values(keys)
			d.values = u.values(items)
			dst = d
		}
		return dst
	case *SharedLambda:
		dst := &Lambda{Params: src.Params, Body: src.Body}
		u.seen[sv] = dst
		if src.Env != nil {
			dst.Env = u.environment(src.Env)
		}
		return dst
	}
	return NOTHING
}

func (u *unsharer) values(src []SharedValue) []Value {
	out := make([]Value, len(src))
	for i, sv := range src {
		out[i] = u.value(sv)
	}
	return out
}

func (u *unsharer) environment(src *SharedEnvironment) *Environment {
	if done, ok := u.envs[src]; ok {
		return done
	}
	scopes, constants := src.snapshot()
	dst := &Environment{
		scopes:    make([]map[string]Value, len(scopes)),
		constants: constants,
	}
	u.envs[src] = dst
	for i, scope := range scopes {
		copied := make(map[string]Value, len(scope))
		for name, sv := range scope {
			copied[name] = u.value(sv)
		}
		dst.scopes[i] = copied
	}
	return dst
}
