package evaluator

import (
	"testing"
)

func TestEnvironmentScopes(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", &Integer{Value: 1})

	env.PushScope()
	env.Define("y", &Integer{Value: 2})
	if err := env.Set("X", &Integer{Value: 10}); err != nil {
		t.Fatalf("Set(X): %v", err)
	}
	if !env.HasLocal("y") || env.HasLocal("x") {
		t.Error("HasLocal: y should be local, x global")
	}
	if !env.ExistsInCurrentScope("Y") || env.ExistsInCurrentScope("x") {
		t.Error("ExistsInCurrentScope mismatch")
	}
	if err := env.Set("z", &Integer{Value: 3}); err != nil {
		t.Fatalf("Set(z): %v", err)
	}
	env.PopScope()

	v, err := env.Get("x")
	if err != nil || AsString(v) != "10" {
		t.Errorf("x after inner Set = %v, %v; want 10", v, err)
	}
	if _, err := env.Get("y"); err == nil {
		t.Error("y should be gone with its scope")
	}
	if _, err := env.Get("z"); err == nil {
		t.Error("z was defined in the popped scope")
	}

	env.PopScope()
	if env.Depth() != 1 {
		t.Errorf("global scope popped: depth %d", env.Depth())
	}
}

func TestEnvironmentShadowing(t *testing.T) {
	env := NewEnvironment()
	env.Define("v", &String{Value: "outer"})
	env.PushScope()
	env.Define("v", &String{Value: "inner"})

	if v, _ := env.Get("v"); AsString(v) != "inner" {
		t.Errorf("v = %s, want inner", v.Inspect())
	}
	if g, ok := env.GetGlobal("V"); !ok || AsString(g) != "outer" {
		t.Errorf("GetGlobal(V) = %v, %v", g, ok)
	}
	env.DefineGlobal("g", TRUE)
	env.PopScope()
	if v, _ := env.Get("g"); v != TRUE {
		t.Error("DefineGlobal binding lost")
	}
}

func TestEnvironmentConstants(t *testing.T) {
	env := NewEnvironment()
	env.DefineConst("Pi", &Double{Value: 3.14})
	if !env.IsConst("pi") {
		t.Error("IsConst(pi) = false")
	}
	err := env.Set("PI", &Double{Value: 3})
	if err == nil || err.Error() != "Cannot assign to constant 'PI'" {
		t.Errorf("Set(PI) error = %v", err)
	}
	if v, _ := env.Get("pi"); AsString(v) != "3.14" {
		t.Errorf("constant changed to %s", v.Inspect())
	}
}

func TestEnvironmentGetOrNothing(t *testing.T) {
	env := NewEnvironment()
	if v := env.GetOrNothing("missing"); v != NOTHING {
		t.Errorf("GetOrNothing(missing) = %s", v.Inspect())
	}
	_, err := env.Get("missing")
	if sig, ok := AsSignal(err); !ok || sig.Kind != SignalUndefinedVariable || sig.Name != "missing" {
		t.Errorf("Get(missing) error = %v", err)
	}
}

func TestEnvironmentDeepClone(t *testing.T) {
	arr := &Array{Elements: []Value{&Integer{Value: 1}}}
	env := NewEnvironment()
	env.Define("a", arr)
	env.Define("b", arr)
	env.DefineConst("k", &Integer{Value: 7})

	clone := env.DeepClone()
	ca, _ := clone.Get("a")
	cb, _ := clone.Get("b")

	if ca == Value(arr) {
		t.Fatal("clone shares the original array")
	}
	if ca != cb {
		t.Error("aliasing between a and b lost in clone")
	}
	ca.(*Array).Elements[0] = &Integer{Value: 99}
	if AsString(arr.Elements[0]) != "1" {
		t.Error("mutating the clone changed the original")
	}
	if !clone.IsConst("k") {
		t.Error("constants not cloned")
	}
}

func TestDeepCloneCycles(t *testing.T) {
	parent := NewObject("Node")
	child := NewObject("Node")
	parent.Set("child", child)
	child.Set("parent", parent)

	c := DeepClone(parent).(*Object)
	cc, _ := c.Get("child")
	back, _ := cc.(*Object).Get("parent")
	if back != Value(c) {
		t.Error("cycle not preserved by DeepClone")
	}
	if c == parent {
		t.Error("DeepClone returned the original")
	}

	col := NewCollection(&String{Value: "a"})
	if _, err := col.AddWithKey(&String{Value: "b"}, "kb"); err != nil {
		t.Fatal(err)
	}
	cloned := DeepClone(col).(*Collection)
	cloned.Keys["other"] = 0
	if col.ContainsKey("other") {
		t.Error("collection key index shared with clone")
	}
}

func TestCopySemantics(t *testing.T) {
	inner := &Array{Elements: []Value{&Integer{Value: 1}}}
	outer := &Array{Elements: []Value{inner}}
	obj := NewObject("X")

	c := Copy(outer).(*Array)
	c.Elements[0].(*Array).Elements[0] = &Integer{Value: 2}
	if AsString(inner.Elements[0]) != "1" {
		t.Error("Copy of an Array must be deep")
	}
	if Copy(obj) != Value(obj) {
		t.Error("Copy of an Object must keep the handle")
	}
}
