package solver

import (
	"context"
	"errors"
)

// ErrForeignHandle is returned by Solve when a constraint references a handle
// that the model did not create.
var ErrForeignHandle = errors.New("solver: handle does not belong to this model")

// IntVar is a handle to an integer decision variable.
type IntVar int

// BoolVar is a handle to a 0/1 decision variable.
type BoolVar int

// Int returns the integer view of b.
func (b BoolVar) Int() IntVar { return IntVar(b) }

// Lit returns the positive literal of b.
func (b BoolVar) Lit() Literal { return Literal{Var: b} }

// Not returns the negated literal of b.
func (b BoolVar) Not() Literal { return Literal{Var: b, Negated: true} }

// Literal is a possibly negated boolean variable.
type Literal struct {
	Var     BoolVar
	Negated bool
}

// Interval is a handle to a (start, size, end) triple.
type Interval int

// Op is the relation of a linear constraint.
type Op int

const (
	LE Op = iota
	EQ
	GE
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case EQ:
		return "=="
	case GE:
		return ">="
	default:
		return "?"
	}
}

// Model is the capability interface of a constraint engine.
type Model interface {
	// NewIntVar declares an integer variable with inclusive bounds.
	NewIntVar(lb, ub int64, name string) IntVar
	// NewBoolVar declares a 0/1 variable.
	NewBoolVar(name string) BoolVar
	// NewConstant declares an integer fixed to v.
	NewConstant(v int64) IntVar
	// NewConstantBool declares a boolean fixed to v.
	NewConstantBool(v bool) BoolVar
	// NewInterval declares an always-present interval and posts
	// start + size == end.
	NewInterval(start IntVar, size int64, end IntVar, name string) Interval
	// NewOptionalInterval declares an interval that only exists when
	// presence is true; start + size == end is enforced by presence.
	NewOptionalInterval(start IntVar, size int64, end IntVar, presence BoolVar, name string) Interval
	// AddLinear posts expr op rhs, enforced only when every literal in
	// enforce is true.
	AddLinear(expr LinearExpr, op Op, rhs int64, enforce ...Literal)
	// AddCumulative bounds, at every time unit, the summed demand of the
	// present intervals covering it to capacity.
	AddCumulative(intervals []Interval, demands []int64, capacity int64)
	// AddAtMostOne allows at most one of lits to be true.
	AddAtMostOne(lits ...Literal)
	// Maximize sets the objective.
	Maximize(expr LinearExpr)
	// Solve searches the model and blocks until it is done or ctx ends.
	Solve(ctx context.Context) (Result, error)
}
