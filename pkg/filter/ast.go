package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Expr is a node of a parsed filter expression. The set of node types is
// closed; the evaluator switches over all of them.
type Expr interface {
	fmt.Stringer
	isExpr()
}

type Boolean struct {
	Value bool
}

func (Boolean) isExpr() {}

func (b Boolean) String() string {
	return strconv.FormatBool(b.Value)
}

type Number struct {
	Value float64
}

func (Number) isExpr() {}

func (n Number) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type String struct {
	Value string
}

func (String) isExpr() {}

func (s String) String() string {
	if strings.ContainsRune(s.Value, '"') {
		return "'" + s.Value + "'"
	}
	return `"` + s.Value + `"`
}

// Date is a calendar day literal written as YYYY-MM-DD.
type Date struct {
	Value time.Time
}

func (Date) isExpr() {}

func (d Date) String() string {
	return d.Value.Format(time.DateOnly)
}

// Variable references a field of the binding context.
type Variable struct {
	Name string
}

func (Variable) isExpr() {}

func (v Variable) String() string {
	return v.Name
}

// Binary applies a comparison or logical operator to two operands.
type Binary struct {
	Left     Expr
	Operator TokenKind
	Right    Expr
}

func (Binary) isExpr() {}

func (b Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Operator.Symbol(), b.Right)
}

// Quantity is a numeric literal with a unit suffix, such as 10km.
type Quantity struct {
	Value Expr
	Unit  Unit
}

func (Quantity) isExpr() {}

func (q Quantity) String() string {
	return q.Value.String() + q.Unit.String()
}
