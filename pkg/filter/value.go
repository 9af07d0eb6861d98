package filter

import (
	"cmp"
	"strconv"
)

// ValueKind is the runtime type of a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	default:
		return "ValueKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the result of evaluating an expression: a string, a number or
// a bool. The zero Value is the empty string.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }

func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string payload; it is empty for other kinds.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload; it is zero for other kinds.
func (v Value) Num() float64 { return v.num }

// Bool returns the boolean payload; it is false for other kinds.
func (v Value) Bool() bool { return v.b }

// Truthy coerces v to a bool: strings other than "" and "0" are true,
// non-zero numbers are true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != "" && v.str != "0"
	case KindNumber:
		return v.num != 0
	default:
		return v.b
	}
}

// Compare orders two values of the same kind. Values of different kinds
// cannot be compared.
func (v Value) Compare(other Value) (int, error) {
	if v.kind != other.kind {
		return 0, semanticErrorf("cannot compare %s %s with %s %s", v.kind, v, other.kind, other)
	}
	switch v.kind {
	case KindString:
		return cmp.Compare(v.str, other.str), nil
	case KindNumber:
		return cmp.Compare(v.num, other.num), nil
	default:
		return cmp.Compare(boolRank(v.b), boolRank(other.b)), nil
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return strconv.Quote(v.str)
	}
}
