package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/vybe/internal/config"
)

// AsInteger converts v to a 32-bit integer. Floats truncate toward zero and
// saturate; Boolean is -1/0; strings accept &H and &O prefixes.
func AsInteger(v Value) (int32, error) {
	switch v := v.(type) {
	case *Integer:
		return v.Value, nil
	case *Long:
		return int32(v.Value), nil
	case *Single:
		return floatToInt32(float64(v.Value)), nil
	case *Double:
		return floatToInt32(v.Value), nil
	case *Date:
		return floatToInt32(v.Value), nil
	case *Byte:
		return int32(v.Value), nil
	case *Char:
		return v.Value, nil
	case *Boolean:
		return boolToInt32(v.Value), nil
	case *Nothing:
		return 0, nil
	case *String:
		n, err := parseVBInteger(v.Value, 32)
		if err != nil {
			return 0, &RuntimeSignal{Kind: SignalTypeError, Expected: "Integer" + radixSuffix(v.Value), Got: v.Inspect()}
		}
		return int32(n), nil
	}
	return 0, NewTypeError("Integer", v)
}

// AsLong converts v to a 64-bit integer, with the same rules as AsInteger.
func AsLong(v Value) (int64, error) {
	switch v := v.(type) {
	case *Integer:
		return int64(v.Value), nil
	case *Long:
		return v.Value, nil
	case *Single:
		return floatToInt64(float64(v.Value)), nil
	case *Double:
		return floatToInt64(v.Value), nil
	case *Date:
		return floatToInt64(v.Value), nil
	case *Byte:
		return int64(v.Value), nil
	case *Char:
		return int64(v.Value), nil
	case *Boolean:
		return int64(boolToInt32(v.Value)), nil
	case *Nothing:
		return 0, nil
	case *String:
		n, err := parseVBInteger(v.Value, 64)
		if err != nil {
			return 0, &RuntimeSignal{Kind: SignalTypeError, Expected: "Long" + radixSuffix(v.Value), Got: v.Inspect()}
		}
		return n, nil
	}
	return 0, NewTypeError("Long", v)
}

// AsDouble converts v to a float64. A Date yields its raw OLE day count.
func AsDouble(v Value) (float64, error) {
	switch v := v.(type) {
	case *Integer:
		return float64(v.Value), nil
	case *Long:
		return float64(v.Value), nil
	case *Single:
		return float64(v.Value), nil
	case *Double:
		return v.Value, nil
	case *Date:
		return v.Value, nil
	case *Byte:
		return float64(v.Value), nil
	case *Boolean:
		return float64(boolToInt32(v.Value)), nil
	case *Nothing:
		return 0, nil
	case *String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
				return 0, NewTypeError("Double", v)
			}
		}
		return f, nil
	}
	return 0, NewTypeError("Double", v)
}

// AsBool converts v to a Boolean.
func AsBool(v Value) (bool, error) {
	switch v := v.(type) {
	case *Boolean:
		return v.Value, nil
	case *Integer:
		return v.Value != 0, nil
	case *Long:
		return v.Value != 0, nil
	case *Byte:
		return v.Value != 0, nil
	case *Single:
		return v.Value != 0, nil
	case *Double:
		return v.Value != 0, nil
	case *Date:
		return v.Value != 0, nil
	case *String:
		switch {
		case equalFoldASCII(v.Value, "true"):
			return true, nil
		case equalFoldASCII(v.Value, "false"):
			return false, nil
		}
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f != 0, nil
		}
		return v.Value != "", nil
	case *Object:
		return true, nil
	case *Nothing:
		return false, nil
	}
	return false, NewTypeError("Boolean", v)
}

// AsString renders v for display and concatenation. It never fails.
func AsString(v Value) string {
	switch v := v.(type) {
	case *Integer:
		return strconv.FormatInt(int64(v.Value), 10)
	case *Long:
		return strconv.FormatInt(v.Value, 10)
	case *Byte:
		return strconv.FormatUint(uint64(v.Value), 10)
	case *Char:
		return string(v.Value)
	case *Single:
		return formatFloat(float64(v.Value), 32)
	case *Double:
		return formatFloat(v.Value, 64)
	case *Date:
		return FormatOLEDate(v.Value)
	case *String:
		return v.Value
	case *Boolean:
		if v.Value {
			return "True"
		}
		return "False"
	case *Nothing:
		return "Nothing"
	case *Array:
		return "[Array]"
	case *Collection:
		return fmt.Sprintf("[Collection Count=%d]", v.Count())
	case *Queue:
		return fmt.Sprintf("[Queue Count=%d]", v.Count())
	case *Stack:
		return fmt.Sprintf("[Stack Count=%d]", v.Count())
	case *HashSet:
		return fmt.Sprintf("[HashSet Count=%d]", v.Count())
	case *Dictionary:
		return fmt.Sprintf("[Dictionary Count=%d]", v.Count())
	case *Object:
		if v.ClassName == config.StringBuilderClassName {
			if data, ok := v.Fields[config.DataField]; ok {
				return AsString(data)
			}
			return ""
		}
		return "[Object " + v.ClassName + "]"
	case *Lambda:
		return "[Lambda]"
	case nil:
		return "Nothing"
	}
	return v.Inspect()
}

// AsByte narrows v to 0..255. Out-of-range values are an Overflow failure,
// never a silent wrap. True converts to 255.
func AsByte(v Value) (uint8, error) {
	switch v := v.(type) {
	case *Byte:
		return v.Value, nil
	case *Integer:
		if v.Value < 0 || v.Value > 255 {
			return 0, byteOverflow(v)
		}
		return uint8(v.Value), nil
	case *Long:
		if v.Value < 0 || v.Value > 255 {
			return 0, byteOverflow(v)
		}
		return uint8(v.Value), nil
	case *Single:
		if !(v.Value >= 0 && v.Value <= 255) {
			return 0, byteOverflow(v)
		}
		return uint8(v.Value), nil
	case *Double:
		if !(v.Value >= 0 && v.Value <= 255) {
			return 0, byteOverflow(v)
		}
		return uint8(v.Value), nil
	case *String:
		n, err := AsInteger(v)
		if err != nil {
			return 0, err
		}
		if n < 0 || n > 255 {
			return 0, byteOverflow(&Integer{Value: n})
		}
		return uint8(n), nil
	case *Boolean:
		if v.Value {
			return 255, nil
		}
		return 0, nil
	case *Nothing:
		return 0, nil
	}
	return 0, NewTypeError("Byte", v)
}

func byteOverflow(v Value) *RuntimeSignal {
	return NewCustom("Overflow: %s to Byte", AsString(v))
}

// AsChar converts v to a single character.
func AsChar(v Value) (rune, error) {
	switch v := v.(type) {
	case *Char:
		return v.Value, nil
	case *String:
		r, size := utf8.DecodeRuneInString(v.Value)
		if size == 0 {
			return 0, NewCustom("String is empty")
		}
		return r, nil
	case *Integer:
		return codePoint(int64(v.Value))
	case *Long:
		return codePoint(v.Value)
	case *Byte:
		return rune(v.Value), nil
	}
	return 0, NewTypeError("Char", v)
}

func codePoint(n int64) (rune, error) {
	if n < 0 || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
		return 0, NewCustom("Invalid char code %d", n)
	}
	return rune(n), nil
}

// IsTruthy is the non-failing truthiness used by conditionals.
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case *Boolean:
		return v.Value
	case *Integer:
		return v.Value != 0
	case *Long:
		return v.Value != 0
	case *Byte:
		return v.Value != 0
	case *Single:
		return v.Value != 0
	case *Double:
		return v.Value != 0
	case *Date:
		return v.Value != 0
	case *String:
		return v.Value != ""
	case *Object, *Collection, *Queue, *Stack, *HashSet, *Dictionary:
		return true
	}
	return false
}

func boolToInt32(b bool) int32 {
	if b {
		return -1
	}
	return 0
}

func floatToInt32(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func floatToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

// parseVBInteger parses decimal, &H hex and &O octal literals. Hex and octal
// digits are read as an unsigned bit pattern, so &HFFFFFFFF is -1 at 32 bits.
func parseVBInteger(s string, bitSize int) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[0] == '&' {
		base := 0
		switch s[1] {
		case 'H', 'h':
			base = 16
		case 'O', 'o':
			base = 8
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, bitSize)
			if err != nil {
				return 0, err
			}
			if bitSize == 32 {
				return int64(int32(uint32(u))), nil
			}
			return int64(u), nil
		}
	}
	return strconv.ParseInt(s, 10, bitSize)
}

func radixSuffix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[0] == '&' {
		switch s[1] {
		case 'H', 'h':
			return " (Hex)"
		case 'O', 'o':
			return " (Oct)"
		}
	}
	return ""
}
