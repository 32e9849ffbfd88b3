// Package ast defines the expression tree produced by the vybe parser and
// consumed by the evaluator. The parser itself lives outside this module;
// ast.DecodeYAML provides a textual form of the same tree for tools and tests.
package ast

// Node is the base interface for all tree nodes.
type Node interface {
	// Kind names the node kind, e.g. "Variable" or "Call".
	Kind() string
}

// Expression is a Node that yields a value.
type Expression interface {
	Node
	expressionNode()
}

// Parameter is a declared lambda / procedure parameter.
type Parameter struct {
	Name     string
	TypeName string // "" when untyped (Object)
	ByRef    bool
	Optional bool
	Default  Expression
}

// CompareOp is a relational operator as used by Select Case and range clauses.
type CompareOp int

const (
	CompareEqual CompareOp = iota
	CompareNotEqual
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
)

var compareOpNames = [...]string{"=", "<>", "<", "<=", ">", ">="}

func (op CompareOp) String() string {
	if int(op) < len(compareOpNames) {
		return compareOpNames[op]
	}
	return "?"
}

// ParseCompareOp maps an operator spelling to its CompareOp.
func ParseCompareOp(s string) (CompareOp, bool) {
	for i, name := range compareOpNames {
		if name == s {
			return CompareOp(i), true
		}
	}
	return 0, false
}
