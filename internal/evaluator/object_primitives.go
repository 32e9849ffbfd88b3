package evaluator

import (
	"fmt"
	"strconv"
)

// Byte
type Byte struct {
	Value uint8
}

func (b *Byte) Type() ValueType { return BYTE_OBJ }
func (b *Byte) Inspect() string { return fmt.Sprintf("Byte(%d)", b.Value) }
func (b *Byte) value()          {}

// Char
type Char struct {
	Value rune
}

func (c *Char) Type() ValueType { return CHAR_OBJ }
func (c *Char) Inspect() string { return fmt.Sprintf("Char(%q)", c.Value) }
func (c *Char) value()          {}

// Integer is a 32-bit signed integer.
type Integer struct {
	Value int32
}

func (i *Integer) Type() ValueType { return INTEGER_OBJ }
func (i *Integer) Inspect() string { return fmt.Sprintf("Integer(%d)", i.Value) }
func (i *Integer) value()          {}

// Long is a 64-bit signed integer.
type Long struct {
	Value int64
}

func (l *Long) Type() ValueType { return LONG_OBJ }
func (l *Long) Inspect() string { return fmt.Sprintf("Long(%d)", l.Value) }
func (l *Long) value()          {}

// Single
type Single struct {
	Value float32
}

func (s *Single) Type() ValueType { return SINGLE_OBJ }
func (s *Single) Inspect() string {
	return "Single(" + strconv.FormatFloat(float64(s.Value), 'g', -1, 32) + ")"
}
func (s *Single) value() {}

// Double
type Double struct {
	Value float64
}

func (d *Double) Type() ValueType { return DOUBLE_OBJ }
func (d *Double) Inspect() string {
	return "Double(" + strconv.FormatFloat(d.Value, 'g', -1, 64) + ")"
}
func (d *Double) value() {}

// Date holds an OLE Automation date: whole days since 1899-12-30 plus the
// time of day as a fraction of 86400 seconds.
type Date struct {
	Value float64
}

func (d *Date) Type() ValueType { return DATE_OBJ }
func (d *Date) Inspect() string { return fmt.Sprintf("Date(%s)", FormatOLEDate(d.Value)) }
func (d *Date) value()          {}

// String
type String struct {
	Value string
}

func (s *String) Type() ValueType { return STRING_OBJ }
func (s *String) Inspect() string { return fmt.Sprintf("String(%q)", s.Value) }
func (s *String) value()          {}

// Boolean
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ValueType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "Boolean(True)"
	}
	return "Boolean(False)"
}
func (b *Boolean) value() {}

// Nothing is the absence of a value. Use the NOTHING singleton.
type Nothing struct{}

func (n *Nothing) Type() ValueType { return NOTHING_OBJ }
func (n *Nothing) Inspect() string { return "Nothing" }
func (n *Nothing) value()          {}
