package ast

// Operator spellings used by InfixExpression and PrefixExpression.
const (
	OpAdd        = "+"
	OpSubtract   = "-"
	OpMultiply   = "*"
	OpDivide     = "/"
	OpIntDivide  = "\\"
	OpModulo     = "Mod"
	OpExponent   = "^"
	OpConcat     = "&"
	OpEqual      = "="
	OpNotEqual   = "<>"
	OpLess       = "<"
	OpLessEqual  = "<="
	OpGreater    = ">"
	OpGreaterEq  = ">="
	OpAnd        = "And"
	OpOr         = "Or"
	OpXor        = "Xor"
	OpAndAlso    = "AndAlso"
	OpOrElse     = "OrElse"
	OpIs         = "Is"
	OpIsNot      = "IsNot"
	OpLike       = "Like"
	OpShiftLeft  = "<<"
	OpShiftRight = ">>"
	OpNot        = "Not"
	OpNegate     = "-"
)

// IntegerLiteral is a 32-bit integer literal, e.g. 42 or &HFF.
type IntegerLiteral struct {
	Value int32
}

func (il *IntegerLiteral) Kind() string    { return "IntegerLiteral" }
func (il *IntegerLiteral) expressionNode() {}

// DoubleLiteral is a floating point literal, e.g. 1.5.
type DoubleLiteral struct {
	Value float64
}

func (dl *DoubleLiteral) Kind() string    { return "DoubleLiteral" }
func (dl *DoubleLiteral) expressionNode() {}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	Value string
}

func (sl *StringLiteral) Kind() string    { return "StringLiteral" }
func (sl *StringLiteral) expressionNode() {}

// BooleanLiteral is True or False.
type BooleanLiteral struct {
	Value bool
}

func (bl *BooleanLiteral) Kind() string    { return "BooleanLiteral" }
func (bl *BooleanLiteral) expressionNode() {}

// DateLiteral is a #...# literal. Value holds the text between the hashes.
type DateLiteral struct {
	Value string
}

func (dl *DateLiteral) Kind() string    { return "DateLiteral" }
func (dl *DateLiteral) expressionNode() {}

// NothingLiteral is the Nothing keyword.
type NothingLiteral struct{}

func (nl *NothingLiteral) Kind() string    { return "Nothing" }
func (nl *NothingLiteral) expressionNode() {}

// Variable is a bare identifier reference.
type Variable struct {
	Name string
}

func (v *Variable) Kind() string    { return "Variable" }
func (v *Variable) expressionNode() {}

// MemberAccess is obj.Member without a call.
type MemberAccess struct {
	Object Expression
	Member string
}

func (ma *MemberAccess) Kind() string    { return "MemberAccess" }
func (ma *MemberAccess) expressionNode() {}

// InfixExpression is a binary operator application.
type InfixExpression struct {
	Operator string
	Left     Expression
	Right    Expression
}

func (ie *InfixExpression) Kind() string    { return "InfixExpression" }
func (ie *InfixExpression) expressionNode() {}

// PrefixExpression is Not x or -x.
type PrefixExpression struct {
	Operator string
	Operand  Expression
}

func (pe *PrefixExpression) Kind() string    { return "PrefixExpression" }
func (pe *PrefixExpression) expressionNode() {}

// ArrayLiteral is {a, b, c}.
type ArrayLiteral struct {
	Elements []Expression
}

func (al *ArrayLiteral) Kind() string    { return "ArrayLiteral" }
func (al *ArrayLiteral) expressionNode() {}

// ArrayAccess is name(i[, j...]) where name is known to be an array.
type ArrayAccess struct {
	Name    string
	Indices []Expression
}

func (aa *ArrayAccess) Kind() string    { return "ArrayAccess" }
func (aa *ArrayAccess) expressionNode() {}

// The node kinds below need a statement interpreter (call graph, object
// construction, thread joins) and are refused by the pure evaluator.

// Call is a procedure or function call, name(args).
type Call struct {
	Name string
	Args []Expression
}

func (c *Call) Kind() string    { return "Call" }
func (c *Call) expressionNode() {}

// MethodCall is obj.Method(args).
type MethodCall struct {
	Object Expression
	Method string
	Args   []Expression
}

func (mc *MethodCall) Kind() string    { return "MethodCall" }
func (mc *MethodCall) expressionNode() {}

// New is New ClassName(args).
type New struct {
	ClassName string
	Args      []Expression
}

func (n *New) Kind() string    { return "New" }
func (n *New) expressionNode() {}

// Me refers to the current instance.
type Me struct{}

func (m *Me) Kind() string    { return "Me" }
func (m *Me) expressionNode() {}

// MyBase refers to the base class of the current instance.
type MyBase struct{}

func (m *MyBase) Kind() string    { return "MyBase" }
func (m *MyBase) expressionNode() {}

// IfExpression is If(cond, a, b).
type IfExpression struct {
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (ie *IfExpression) Kind() string    { return "IfExpression" }
func (ie *IfExpression) expressionNode() {}

// Lambda is Function(x) expr / Sub(x) ... End Sub.
// Body is either an Expression or a statement block owned by the parser.
type Lambda struct {
	Params []Parameter
	Body   Node
}

func (l *Lambda) Kind() string    { return "Lambda" }
func (l *Lambda) expressionNode() {}

// Await is Await expr.
type Await struct {
	Operand Expression
}

func (a *Await) Kind() string    { return "Await" }
func (a *Await) expressionNode() {}

// Cast is CType/DirectCast/TryCast/CInt... applied to an operand.
type Cast struct {
	Function string
	Operand  Expression
	TypeName string
}

func (c *Cast) Kind() string    { return "Cast" }
func (c *Cast) expressionNode() {}

// TypeOf is TypeOf x Is T.
type TypeOf struct {
	Operand  Expression
	TypeName string
}

func (t *TypeOf) Kind() string    { return "TypeOf" }
func (t *TypeOf) expressionNode() {}

// Query is a LINQ-style From ... Select query. Clauses are parser-owned.
type Query struct {
	Source  Expression
	Clauses []Node
}

func (q *Query) Kind() string    { return "Query" }
func (q *Query) expressionNode() {}

// XmlLiteral is an inline XML literal.
type XmlLiteral struct {
	Text string
}

func (x *XmlLiteral) Kind() string    { return "XmlLiteral" }
func (x *XmlLiteral) expressionNode() {}
