package ast

import (
	"strings"
	"testing"
)

func TestDecodeYAMLLiterals(t *testing.T) {
	tests := []struct {
		input string
		kind  string
	}{
		{"1", "IntegerLiteral"},
		{"2.5", "DoubleLiteral"},
		{"hello", "StringLiteral"},
		{"true", "BooleanLiteral"},
		{"null", "Nothing"},
		{"{double: 3}", "DoubleLiteral"},
		{"{date: '12/30/1899'}", "DateLiteral"},
		{"{var: x}", "Variable"},
		{"{nothing: true}", "Nothing"},
		{"3000000000", "DoubleLiteral"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := DecodeYAML([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeYAML(%q) error: %v", tt.input, err)
			}
			if expr.Kind() != tt.kind {
				t.Errorf("DecodeYAML(%q).Kind() = %s, want %s", tt.input, expr.Kind(), tt.kind)
			}
		})
	}
}

func TestDecodeYAMLTree(t *testing.T) {
	src := `
op: and
left:
  op: "<"
  left: {var: a}
  right: 10
right:
  not: {member: Enabled, of: {var: form}}
`
	expr, err := DecodeYAML([]byte(src))
	if err != nil {
		t.Fatalf("DecodeYAML error: %v", err)
	}
	infix, ok := expr.(*InfixExpression)
	if !ok {
		t.Fatalf("expected *InfixExpression, got %T", expr)
	}
	if infix.Operator != OpAnd {
		t.Errorf("operator = %q, want %q", infix.Operator, OpAnd)
	}
	cmp, ok := infix.Left.(*InfixExpression)
	if !ok || cmp.Operator != OpLess {
		t.Fatalf("left = %#v, want < comparison", infix.Left)
	}
	if lit, ok := cmp.Right.(*IntegerLiteral); !ok || lit.Value != 10 {
		t.Errorf("left.right = %#v, want IntegerLiteral 10", cmp.Right)
	}
	not, ok := infix.Right.(*PrefixExpression)
	if !ok || not.Operator != OpNot {
		t.Fatalf("right = %#v, want Not", infix.Right)
	}
	member, ok := not.Operand.(*MemberAccess)
	if !ok || member.Member != "Enabled" {
		t.Fatalf("not operand = %#v, want member Enabled", not.Operand)
	}
}

func TestDecodeYAMLInterpreterNodes(t *testing.T) {
	tests := []struct {
		input string
		kind  string
	}{
		{"{call: Len, args: [abc]}", "Call"},
		{"{new: Collection}", "New"},
		{"{await: {var: t}}", "Await"},
		{"{if: [true, 1, 2]}", "IfExpression"},
		{"{me: true}", "Me"},
		{"{index: arr, at: [0]}", "ArrayAccess"},
		{"{array: [1, 2, 3]}", "ArrayLiteral"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			expr, err := DecodeYAML([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeYAML(%q) error: %v", tt.input, err)
			}
			if expr.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", expr.Kind(), tt.kind)
			}
		})
	}
}

func TestDecodeYAMLErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr string
	}{
		{"[1, 2]", "bare sequence"},
		{"{op: '+', left: 1}", `missing "right"`},
		{"{frobnicate: 1}", "unknown expression node"},
		{"{index: arr, at: []}", "at least one index"},
		{"{if: [1, 2]}", "if expects"},
		{"{var: ''}", "non-empty string"},
		{"{int: 99999999999}", "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := DecodeYAML([]byte(tt.input))
			if err == nil {
				t.Fatalf("DecodeYAML(%q) expected error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseCompareOp(t *testing.T) {
	for _, s := range []string{"=", "<>", "<", "<=", ">", ">="} {
		op, ok := ParseCompareOp(s)
		if !ok {
			t.Fatalf("ParseCompareOp(%q) failed", s)
		}
		if op.String() != s {
			t.Errorf("round trip %q -> %q", s, op.String())
		}
	}
	if _, ok := ParseCompareOp("=="); ok {
		t.Error("ParseCompareOp(==) should fail")
	}
}
