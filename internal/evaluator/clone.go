package evaluator

// DeepClone copies v and everything reachable from it into fresh instances.
// Handles that alias each other inside v alias the corresponding copies in
// the result, and cyclic graphs terminate.
func DeepClone(v Value) Value {
	return newCloner().value(v)
}

type cloner struct {
	seen map[Value]Value
	envs map[*Environment]*Environment
}

func newCloner() *cloner {
	return &cloner{
		seen: make(map[Value]Value),
		envs: make(map[*Environment]*Environment),
	}
}

func (c *cloner) value(v Value) Value {
	switch src := v.(type) {
	case *Array:
		if done, ok := c.seen[src]; ok {
			return done
		}
		dst := &Array{Elements: make([]Value, len(src.Elements))}
		c.seen[src] = dst
		for i, el := range src.Elements {
			dst.Elements[i] = c.value(el)
		}
		return dst
	case *Object:
		if done, ok := c.seen[src]; ok {
			return done
		}
		dst := &Object{ClassName: src.ClassName, Fields: make(map[string]Value, len(src.Fields))}
		c.seen[src] = dst
		for name, field := range src.Fields {
			dst.Fields[name] = c.value(field)
		}
		return dst
	case *Collection:
		if done, ok := c.seen[src]; ok {
			return done
		}
		dst := &Collection{Items: make([]Value, len(src.Items)), Keys: make(map[string]int, len(src.Keys))}
		c.seen[src] = dst
		for k, idx := range src.Keys {
			dst.Keys[k] = idx
		}
		for i, item := range src.Items {
			dst.Items[i] = c.value(item)
		}
		return dst
	case *Queue:
		if done, ok := c.seen[src]; ok {
			return done
		}
		dst := &Queue{}
		c.seen[src] = dst
		dst.Items = c.values(src.Items)
		return dst
	case *Stack:
		if done, ok := c.seen[src]; ok {
			return done
		}
		dst := &Stack{}
		c.seen[src] = dst
		dst.Items = c.values(src.Items)
		return dst
	case *HashSet:
		if done, ok := c.seen[src]; ok {
			return done
		}
		dst := &HashSet{}
		c.seen[src] = dst
		dst.Items = c.values(src.Items)
		return dst
	case *Dictionary:
		if done, ok := c.seen[src]; ok {
			return done
		}
		dst := &Dictionary{}
		c.seen[src] = dst
		dst.keys = c.values(src.keys)
		dst.values = c.values(src.values)
		return dst
	case *Lambda:
		if done, ok := c.seen[src]; ok {
			return done
		}
		dst := &Lambda{Params: src.Params, Body: src.Body}
		c.seen[src] = dst
		if src.Env != nil {
			dst.Env = c.environment(src.Env)
		}
		return dst
	}
	// primitives are immutable
	return v
}

func (c *cloner) values(src []Value) []Value {
	if src == nil {
		return nil
	}
	out := make([]Value, len(src))
	for i, v := range src {
		out[i] = c.value(v)
	}
	return out
}

func (c *cloner) environment(src *Environment) *Environment {
	if done, ok := c.envs[src]; ok {
		return done
	}
	dst := &Environment{
		scopes:    make([]map[string]Value, len(src.scopes)),
		constants: make(map[string]struct{}, len(src.constants)),
	}
	c.envs[src] = dst
	for name := range src.constants {
		dst.constants[name] = struct{}{}
	}
	for i, scope := range src.scopes {
		copied := make(map[string]Value, len(scope))
		for name, v := range scope {
			copied[name] = c.value(v)
		}
		dst.scopes[i] = copied
	}
	return dst
}
