package filter

import (
	"math"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Vars is the binding context: field name to current value for one record.
type Vars map[string]Value

// fuzzyNumberTolerance is the relative distance within which two numbers
// are considered fuzzy-equal.
const fuzzyNumberTolerance = 0.1

// Evaluate computes the value of expr against vars. Both operands of every
// operator are evaluated; the first error aborts the whole evaluation.
func Evaluate(expr Expr, vars Vars) (Value, error) {
	switch e := expr.(type) {
	case Boolean:
		return BoolValue(e.Value), nil
	case Number:
		return NumberValue(e.Value), nil
	case String:
		return StringValue(e.Value), nil
	case Date:
		return StringValue(e.Value.Format(time.DateOnly)), nil
	case Variable:
		v, ok := vars[e.Name]
		if !ok {
			return Value{}, semanticErrorf("Unknown variable '%s'", e.Name)
		}
		return v, nil
	case Quantity:
		raw, err := Evaluate(e.Value, vars)
		if err != nil {
			return Value{}, err
		}
		if raw.Kind() != KindNumber {
			return Value{}, semanticErrorf("unit %s requires a number, got %s", e.Unit, raw.Kind())
		}
		return NumberValue(e.Unit.Convert(raw.Num())), nil
	case Binary:
		return evalBinary(e, vars)
	default:
		return Value{}, semanticErrorf("unsupported expression %T", expr)
	}
}

// EvaluateBool evaluates expr and requires the result to be a Bool.
func EvaluateBool(expr Expr, vars Vars) (bool, error) {
	v, err := Evaluate(expr, vars)
	if err != nil {
		return false, err
	}
	if v.Kind() != KindBool {
		return false, semanticErrorf("expression must evaluate to a boolean, got: %s", expr)
	}
	return v.Bool(), nil
}

func evalBinary(e Binary, vars Vars) (Value, error) {
	left, err := Evaluate(e.Left, vars)
	if err != nil {
		return Value{}, err
	}
	right, err := Evaluate(e.Right, vars)
	if err != nil {
		return Value{}, err
	}

	switch e.Operator {
	case TokAnd:
		return BoolValue(left.Truthy() && right.Truthy()), nil
	case TokOr:
		return BoolValue(left.Truthy() || right.Truthy()), nil
	case TokFuzzyEqual, TokNotFuzzyEqual:
		match, err := fuzzyEqual(left, right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(match == (e.Operator == TokFuzzyEqual)), nil
	}

	c, err := left.Compare(right)
	if err != nil {
		return Value{}, err
	}
	switch e.Operator {
	case TokGreaterThan:
		return BoolValue(c > 0), nil
	case TokGreaterThanOrEqual:
		return BoolValue(c >= 0), nil
	case TokLessThan:
		return BoolValue(c < 0), nil
	case TokLessThanOrEqual:
		return BoolValue(c <= 0), nil
	case TokEqual:
		return BoolValue(c == 0), nil
	case TokNotEqual:
		return BoolValue(c != 0), nil
	default:
		return Value{}, semanticErrorf("invalid operator %s in %s", e.Operator, e)
	}
}

// fuzzyEqual matches strings as a case-insensitive subsequence (the right
// operand is the needle) and numbers within fuzzyNumberTolerance of the
// right operand.
func fuzzyEqual(left, right Value) (bool, error) {
	if left.Kind() != right.Kind() {
		return false, semanticErrorf("cannot compare %s %s with %s %s", left.Kind(), left, right.Kind(), right)
	}
	switch left.Kind() {
	case KindString:
		return fuzzy.MatchFold(right.Str(), left.Str()), nil
	case KindNumber:
		return math.Abs(left.Num()-right.Num()) <= fuzzyNumberTolerance*math.Abs(right.Num()), nil
	default:
		return left.Bool() == right.Bool(), nil
	}
}

// Filter is a compiled expression ready to be matched against records.
// It holds no mutable state and may be shared between goroutines.
type Filter struct {
	source string
	expr   Expr
}

// Compile parses source into a Filter.
func Compile(source string) (*Filter, error) {
	expr, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return &Filter{source: source, expr: expr}, nil
}

// Match reports whether the record described by vars satisfies the filter.
func (f *Filter) Match(vars Vars) (bool, error) {
	return EvaluateBool(f.expr, vars)
}

func (f *Filter) Expr() Expr { return f.expr }

func (f *Filter) Source() string { return f.source }

func (f *Filter) String() string { return f.expr.String() }
