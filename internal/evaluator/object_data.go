package evaluator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/vybe/internal/ast"
	"github.com/funvibe/vybe/internal/config"
)

// Object is a class instance. Field names are stored lower-cased.
type Object struct {
	ClassName string
	Fields    map[string]Value
}

func NewObject(className string) *Object {
	return &Object{ClassName: className, Fields: make(map[string]Value)}
}

func (o *Object) Type() ValueType { return OBJECT_OBJ }
func (o *Object) Inspect() string {
	names := make([]string, 0, len(o.Fields))
	for name := range o.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	var out strings.Builder
	out.WriteString("Object(" + o.ClassName)
	for _, name := range names {
		// composites are summarised so cyclic graphs still print
		switch f := o.Fields[name].(type) {
		case *Array, *Lambda, *Object, *Collection, *Queue, *Stack, *HashSet, *Dictionary:
			fmt.Fprintf(&out, ", %s: <%s>", name, f.Type())
		default:
			fmt.Fprintf(&out, ", %s: %s", name, f.Inspect())
		}
	}
	out.WriteString(")")
	return out.String()
}

func (o *Object) value() {}

// Get looks a field up case-insensitively.
func (o *Object) Get(name string) (Value, bool) {
	v, ok := o.Fields[strings.ToLower(name)]
	return v, ok
}

func (o *Object) Set(name string, v Value) {
	if o.Fields == nil {
		o.Fields = make(map[string]Value)
	}
	o.Fields[strings.ToLower(name)] = v
}

// newKeyValuePair builds the object For Each yields over a Dictionary.
func newKeyValuePair(key, val Value) *Object {
	kv := NewObject(config.KeyValuePairClassName)
	kv.Fields[config.KeyField] = key
	kv.Fields[config.ValueField] = val
	kv.Fields[config.TypeField] = &String{Value: config.KeyValuePairClassName}
	return kv
}

// Lambda is an anonymous function together with the environment it captured.
type Lambda struct {
	Params []ast.Parameter
	Body   ast.Node
	Env    *Environment
}

func (l *Lambda) Type() ValueType { return LAMBDA_OBJ }
func (l *Lambda) Inspect() string {
	names := make([]string, len(l.Params))
	for i, p := range l.Params {
		names[i] = p.Name
	}
	return "Lambda(" + strings.Join(names, ", ") + ")"
}
func (l *Lambda) value() {}
