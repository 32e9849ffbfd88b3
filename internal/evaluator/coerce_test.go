package evaluator

import (
	"math"
	"strings"
	"testing"

	"github.com/funvibe/vybe/internal/config"
)

func TestAsInteger(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected int32
		wantErr  bool
	}{
		{"true", TRUE, -1, false},
		{"false", FALSE, 0, false},
		{"truncate positive", &Double{Value: 3.9}, 3, false},
		{"truncate negative", &Double{Value: -3.9}, -3, false},
		{"saturate", &Double{Value: 1e20}, math.MaxInt32, false},
		{"nan", &Double{Value: math.NaN()}, 0, false},
		{"long wraps", &Long{Value: 1 << 32}, 0, false},
		{"hex", &String{Value: "&HFF"}, 255, false},
		{"hex lower", &String{Value: "&hff"}, 255, false},
		{"hex all bits", &String{Value: "&HFFFFFFFF"}, -1, false},
		{"octal", &String{Value: "&O17"}, 15, false},
		{"decimal with spaces", &String{Value: " 42 "}, 42, false},
		{"negative decimal", &String{Value: "-7"}, -7, false},
		{"nothing", NOTHING, 0, false},
		{"char", &Char{Value: 'A'}, 65, false},
		{"byte", &Byte{Value: 200}, 200, false},
		{"date", &Date{Value: 2.75}, 2, false},
		{"not a number", &String{Value: "abc"}, 0, true},
		{"fraction string", &String{Value: "3.5"}, 0, true},
		{"bad hex", &String{Value: "&HZZ"}, 0, true},
		{"array", &Array{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsInteger(tt.input)
			if tt.wantErr {
				sig, ok := AsSignal(err)
				if !ok || sig.Kind != SignalTypeError {
					t.Fatalf("AsInteger(%s) error = %v, want TypeError", tt.input.Inspect(), err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AsInteger(%s) unexpected error: %v", tt.input.Inspect(), err)
			}
			if got != tt.expected {
				t.Errorf("AsInteger(%s) = %d, want %d", tt.input.Inspect(), got, tt.expected)
			}
		})
	}
}

func TestAsIntegerHexErrorNamesRadix(t *testing.T) {
	_, err := AsInteger(&String{Value: "&HXYZ"})
	if err == nil || !strings.Contains(err.Error(), "expected Integer (Hex)") {
		t.Errorf("error = %v, want it to mention Integer (Hex)", err)
	}
}

func TestAsLong(t *testing.T) {
	tests := []struct {
		input    Value
		expected int64
	}{
		{&Integer{Value: -5}, -5},
		{&String{Value: "9000000000"}, 9000000000},
		{&String{Value: "&HFFFFFFFFFFFFFFFF"}, -1},
		{&String{Value: "&H7FFFFFFFFFFFFFFF"}, math.MaxInt64},
		{TRUE, -1},
		{&Double{Value: -1e30}, math.MinInt64},
	}
	for _, tt := range tests {
		got, err := AsLong(tt.input)
		if err != nil {
			t.Errorf("AsLong(%s) unexpected error: %v", tt.input.Inspect(), err)
			continue
		}
		if got != tt.expected {
			t.Errorf("AsLong(%s) = %d, want %d", tt.input.Inspect(), got, tt.expected)
		}
	}
}

func TestAsDouble(t *testing.T) {
	tests := []struct {
		input    Value
		expected float64
		wantErr  bool
	}{
		{&Integer{Value: 5}, 5, false},
		{&Date{Value: 1.5}, 1.5, false},
		{&String{Value: "2.5"}, 2.5, false},
		{&String{Value: "1e3"}, 1000, false},
		{NOTHING, 0, false},
		{TRUE, -1, false},
		{&Single{Value: 0.5}, 0.5, false},
		{&String{Value: "x"}, 0, true},
		{&Char{Value: '1'}, 0, true},
		{NewObject("Foo"), 0, true},
	}
	for _, tt := range tests {
		got, err := AsDouble(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("AsDouble(%s) error = %v, wantErr %v", tt.input.Inspect(), err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.expected {
			t.Errorf("AsDouble(%s) = %v, want %v", tt.input.Inspect(), got, tt.expected)
		}
	}
}

func TestIntegerRoundTrips(t *testing.T) {
	for _, x := range []int32{0, 1, -1, 42, -2147483648, 2147483647, 1000000} {
		v := &Integer{Value: x}
		d, err := AsDouble(v)
		if err != nil || d != float64(x) {
			t.Errorf("AsDouble(Integer %d) = %v, %v", x, d, err)
		}
		back, err := AsInteger(&String{Value: AsString(v)})
		if err != nil || back != x {
			t.Errorf("AsInteger(AsString(%d)) = %d, %v", x, back, err)
		}
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		input    Value
		expected bool
		wantErr  bool
	}{
		{&String{Value: "TRUE"}, true, false},
		{&String{Value: "False"}, false, false},
		{&String{Value: "0"}, false, false},
		{&String{Value: "2"}, true, false},
		{&String{Value: "abc"}, true, false},
		{&String{Value: ""}, false, false},
		{&Integer{Value: 0}, false, false},
		{&Double{Value: 0.1}, true, false},
		{NewObject("Form"), true, false},
		{NOTHING, false, false},
		{&Char{Value: 'x'}, false, true},
		{&Array{}, false, true},
	}
	for _, tt := range tests {
		got, err := AsBool(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("AsBool(%s) error = %v, wantErr %v", tt.input.Inspect(), err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("AsBool(%s) = %v, want %v", tt.input.Inspect(), got, tt.expected)
		}
	}
}

func TestAsString(t *testing.T) {
	sb := NewObject(config.StringBuilderClassName)
	sb.Fields[config.DataField] = &String{Value: "built"}

	tests := []struct {
		input    Value
		expected string
	}{
		{&Integer{Value: -5}, "-5"},
		{&Long{Value: 9000000000}, "9000000000"},
		{&Double{Value: 2}, "2"},
		{&Double{Value: 0.1}, "0.1"},
		{&Double{Value: 1e21}, "1000000000000000000000"},
		{&Double{Value: math.Inf(1)}, "Infinity"},
		{&Single{Value: 1.5}, "1.5"},
		{&Byte{Value: 7}, "7"},
		{&Char{Value: 'z'}, "z"},
		{TRUE, "True"},
		{FALSE, "False"},
		{NOTHING, "Nothing"},
		{&Date{Value: 0}, "12/30/1899 00:00:00"},
		{&Array{Elements: []Value{TRUE}}, "[Array]"},
		{NewCollection(TRUE, FALSE), "[Collection Count=2]"},
		{&Queue{}, "[Queue Count=0]"},
		{&Stack{Items: []Value{TRUE}}, "[Stack Count=1]"},
		{&HashSet{}, "[HashSet Count=0]"},
		{NewDictionary(), "[Dictionary Count=0]"},
		{NewObject("Customer"), "[Object Customer]"},
		{sb, "built"},
		{&Lambda{}, "[Lambda]"},
	}
	for _, tt := range tests {
		if got := AsString(tt.input); got != tt.expected {
			t.Errorf("AsString(%s) = %q, want %q", tt.input.Inspect(), got, tt.expected)
		}
	}
}

func TestAsByte(t *testing.T) {
	tests := []struct {
		input    Value
		expected uint8
		wantErr  string
	}{
		{&Integer{Value: 255}, 255, ""},
		{&Integer{Value: 256}, 0, "Overflow: 256 to Byte"},
		{&Integer{Value: -1}, 0, "Overflow: -1 to Byte"},
		{&Long{Value: 300}, 0, "Overflow: 300 to Byte"},
		{&Double{Value: 254.9}, 254, ""},
		{&Double{Value: 255.5}, 0, "Overflow: 255.5 to Byte"},
		{&String{Value: "200"}, 200, ""},
		{&String{Value: "999"}, 0, "Overflow: 999 to Byte"},
		// True converts to 255 rather than overflowing from -1
		{TRUE, 255, ""},
		{FALSE, 0, ""},
		{NOTHING, 0, ""},
	}
	for _, tt := range tests {
		got, err := AsByte(tt.input)
		if tt.wantErr != "" {
			sig, ok := AsSignal(err)
			if !ok || sig.Kind != SignalCustom || sig.Error() != tt.wantErr {
				t.Errorf("AsByte(%s) error = %v, want Custom %q", tt.input.Inspect(), err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("AsByte(%s) unexpected error: %v", tt.input.Inspect(), err)
			continue
		}
		if got != tt.expected {
			t.Errorf("AsByte(%s) = %d, want %d", tt.input.Inspect(), got, tt.expected)
		}
	}

	if _, err := AsByte(&Char{Value: 'a'}); err == nil {
		t.Error("AsByte(Char) expected TypeError")
	}
}

func TestAsChar(t *testing.T) {
	if c, err := AsChar(&String{Value: "hello"}); err != nil || c != 'h' {
		t.Errorf("AsChar(hello) = %q, %v", c, err)
	}
	if c, err := AsChar(&Integer{Value: 65}); err != nil || c != 'A' {
		t.Errorf("AsChar(65) = %q, %v", c, err)
	}
	if _, err := AsChar(&String{Value: ""}); err == nil || err.Error() != "String is empty" {
		t.Errorf("AsChar(\"\") error = %v", err)
	}
	if _, err := AsChar(&Integer{Value: -1}); err == nil || err.Error() != "Invalid char code -1" {
		t.Errorf("AsChar(-1) error = %v", err)
	}
	if _, err := AsChar(&Long{Value: 0xD800}); err == nil {
		t.Error("AsChar(surrogate) expected error")
	}
	if _, err := AsChar(&Double{Value: 65}); err == nil {
		t.Error("AsChar(Double) expected TypeError")
	}
}

func TestIsTruthy(t *testing.T) {
	truthy := []Value{TRUE, &Integer{Value: -1}, &String{Value: "false"}, NewObject("X"), NewCollection(), &Double{Value: 0.5}}
	falsy := []Value{FALSE, &Integer{Value: 0}, &String{Value: ""}, NOTHING, &Array{}, &Lambda{}}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Errorf("IsTruthy(%s) = false, want true", v.Inspect())
		}
	}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Errorf("IsTruthy(%s) = true, want false", v.Inspect())
		}
	}
}

func TestToIterable(t *testing.T) {
	dict := NewDictionary()
	dict.SetItem(&String{Value: "a"}, &Integer{Value: 1})
	dict.SetItem(&String{Value: "b"}, &Integer{Value: 2})

	items, err := ToIterable(dict)
	if err != nil {
		t.Fatalf("ToIterable(Dictionary) error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d pairs, want 2", len(items))
	}
	kv, ok := items[1].(*Object)
	if !ok || kv.ClassName != config.KeyValuePairClassName {
		t.Fatalf("pair = %s, want KeyValuePair object", items[1].Inspect())
	}
	if AsString(kv.Fields["key"]) != "b" || AsString(kv.Fields["value"]) != "2" {
		t.Errorf("pair fields = %s", kv.Inspect())
	}
	if AsString(kv.Fields["__type"]) != config.KeyValuePairClassName {
		t.Errorf("__type = %s", kv.Fields["__type"].Inspect())
	}

	chars, err := ToIterable(&String{Value: "hé!"})
	if err != nil || len(chars) != 3 || AsString(chars[1]) != "é" {
		t.Errorf("ToIterable(String) = %v, %v", chars, err)
	}

	stack := &Stack{}
	stack.Push(&Integer{Value: 1})
	stack.Push(&Integer{Value: 2})
	order, _ := ToIterable(stack)
	if AsString(order[0]) != "2" {
		t.Errorf("stack iterates %s first, want top (2)", AsString(order[0]))
	}

	queue := &Queue{}
	queue.Enqueue(&Integer{Value: 1})
	queue.Enqueue(&Integer{Value: 2})
	order, _ = ToIterable(queue)
	if AsString(order[0]) != "1" {
		t.Errorf("queue iterates %s first, want front (1)", AsString(order[0]))
	}

	table := NewObject("DataTable")
	table.Fields["rows"] = &Array{Elements: []Value{NewObject("DataRow")}}
	rows, err := ToIterable(table)
	if err != nil || len(rows) != 1 {
		t.Errorf("ToIterable(object with rows) = %v, %v", rows, err)
	}

	empty, err := ToIterable(NOTHING)
	if err != nil || len(empty) != 0 {
		t.Errorf("ToIterable(Nothing) = %v, %v", empty, err)
	}

	_, err = ToIterable(NewObject("Customer"))
	if err == nil || err.Error() != "Object of type 'Customer' is not enumerable" {
		t.Errorf("ToIterable(Customer) error = %v", err)
	}

	_, err = ToIterable(&Integer{Value: 3})
	if sig, ok := AsSignal(err); !ok || sig.Kind != SignalTypeError {
		t.Errorf("ToIterable(Integer) error = %v, want TypeError", err)
	}
}

func TestArrayElementHelpers(t *testing.T) {
	arr := &Array{Elements: []Value{&Integer{Value: 10}, &Integer{Value: 20}}}
	if err := SetArrayElement(arr, 1, &Integer{Value: 99}); err != nil {
		t.Fatalf("SetArrayElement: %v", err)
	}
	v, err := GetArrayElement(arr, 1)
	if err != nil || AsString(v) != "99" {
		t.Errorf("GetArrayElement = %v, %v", v, err)
	}
	if _, err := GetArrayElement(arr, 2); err == nil || err.Error() != "Array index 2 out of bounds" {
		t.Errorf("out of bounds error = %v", err)
	}
	if n, err := ArrayLength(arr); err != nil || n != 2 {
		t.Errorf("ArrayLength = %d, %v", n, err)
	}
	if _, err := ArrayLength(NewCollection()); err == nil {
		t.Error("ArrayLength(Collection) expected TypeError")
	}

	col := NewCollection(&String{Value: "x"})
	if v, err := GetArrayElement(col, 0); err != nil || AsString(v) != "x" {
		t.Errorf("GetArrayElement(Collection) = %v, %v", v, err)
	}
}
