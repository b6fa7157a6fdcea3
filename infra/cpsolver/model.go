// Package cpsolver implements solver.Model on top of the gini SAT solver.
//
// Solve first runs linear bounds propagation so that pinned times become
// constants. The integer variables left open are one-hot encoded, and linear,
// at-most-one and cumulative constraints become gini circuits built from
// sorting networks. The objective is maximised by asking for ever larger
// objective counts under assumptions, starting from a gonum LP relaxation
// bound.
package cpsolver

import (
	"fmt"
	"time"

	"github.com/kilianp07/resplan/core/logger"
	"github.com/kilianp07/resplan/core/solver"
	inlog "github.com/kilianp07/resplan/infra/logger"
)

// Options tunes the search.
type Options struct {
	// TimeLimit stops the search after this duration. Zero disables it.
	TimeLimit time.Duration
	// CallLimit stops the search after this many SAT calls. Zero disables it.
	CallLimit int64
	// DisableLPBound skips the root LP relaxation.
	DisableLPBound bool
	Logger         logger.Logger
}

type variable struct {
	lb, ub int64
	name   string
}

type linear struct {
	terms   []solver.Term
	op      solver.Op
	rhs     int64
	enforce []solver.Literal
}

type interval struct {
	start, end solver.IntVar
	size       int64
	presence   solver.Literal
	optional   bool
	name       string
}

type cumulative struct {
	intervals []solver.Interval
	demands   []int64
	capacity  int64
}

type atMostOne struct {
	lits []solver.Literal
}

// Model accumulates variables and constraints until Solve is called.
type Model struct {
	opts        Options
	log         logger.Logger
	vars        []variable
	linears     []linear
	intervals   []interval
	cumulatives []cumulative
	amos        []atMostOne
	objective   solver.LinearExpr
	maximize    bool
	err         error
}

var _ solver.Model = (*Model)(nil)

// New returns an empty model.
func New(opts Options) *Model {
	l := opts.Logger
	if l == nil {
		l = inlog.NopLogger{}
	}
	return &Model{opts: opts, log: l}
}

func (m *Model) fail(format string, args ...any) {
	if m.err == nil {
		m.err = fmt.Errorf("%w: %s", solver.ErrForeignHandle, fmt.Sprintf(format, args...))
	}
}

func (m *Model) checkVar(v solver.IntVar) {
	if int(v) < 0 || int(v) >= len(m.vars) {
		m.fail("variable %d", v)
	}
}

func (m *Model) checkLits(lits []solver.Literal) {
	for _, l := range lits {
		m.checkVar(l.Var.Int())
	}
}

func (m *Model) checkExpr(e solver.LinearExpr) {
	for _, t := range e.Terms {
		m.checkVar(t.Var)
	}
}

// NewIntVar declares an integer variable in [lb, ub].
func (m *Model) NewIntVar(lb, ub int64, name string) solver.IntVar {
	m.vars = append(m.vars, variable{lb: lb, ub: ub, name: name})
	return solver.IntVar(len(m.vars) - 1)
}

// NewBoolVar declares a 0/1 variable.
func (m *Model) NewBoolVar(name string) solver.BoolVar {
	return solver.BoolVar(m.NewIntVar(0, 1, name))
}

// NewConstant declares a fixed integer.
func (m *Model) NewConstant(v int64) solver.IntVar {
	return m.NewIntVar(v, v, fmt.Sprintf("const_%d", v))
}

// NewConstantBool declares a fixed boolean.
func (m *Model) NewConstantBool(v bool) solver.BoolVar {
	if v {
		return solver.BoolVar(m.NewIntVar(1, 1, "true"))
	}
	return solver.BoolVar(m.NewIntVar(0, 0, "false"))
}

// NewInterval declares an always-present interval.
func (m *Model) NewInterval(start solver.IntVar, size int64, end solver.IntVar, name string) solver.Interval {
	return m.addInterval(interval{start: start, end: end, size: size, name: name})
}

// NewOptionalInterval declares an interval guarded by presence.
func (m *Model) NewOptionalInterval(start solver.IntVar, size int64, end solver.IntVar, presence solver.BoolVar, name string) solver.Interval {
	return m.addInterval(interval{start: start, end: end, size: size, presence: presence.Lit(), optional: true, name: name})
}

func (m *Model) addInterval(iv interval) solver.Interval {
	m.checkVar(iv.start)
	m.checkVar(iv.end)
	var enforce []solver.Literal
	if iv.optional {
		m.checkVar(iv.presence.Var.Int())
		enforce = []solver.Literal{iv.presence}
	}
	// start - end == -size
	m.AddLinear(solver.Var(iv.start).Plus(iv.end, -1), solver.EQ, -iv.size, enforce...)
	m.intervals = append(m.intervals, iv)
	return solver.Interval(len(m.intervals) - 1)
}

// AddLinear posts expr op rhs under the given enforcement literals.
func (m *Model) AddLinear(expr solver.LinearExpr, op solver.Op, rhs int64, enforce ...solver.Literal) {
	m.checkExpr(expr)
	m.checkLits(enforce)
	terms := make([]solver.Term, 0, len(expr.Terms))
	for _, t := range expr.Terms {
		if t.Coef != 0 {
			terms = append(terms, t)
		}
	}
	m.linears = append(m.linears, linear{
		terms:   terms,
		op:      op,
		rhs:     rhs - expr.Offset,
		enforce: append([]solver.Literal(nil), enforce...),
	})
}

// AddCumulative posts a resource capacity constraint.
func (m *Model) AddCumulative(intervals []solver.Interval, demands []int64, capacity int64) {
	if len(intervals) != len(demands) {
		m.fail("cumulative has %d intervals and %d demands", len(intervals), len(demands))
		return
	}
	for _, iv := range intervals {
		if int(iv) < 0 || int(iv) >= len(m.intervals) {
			m.fail("interval %d", iv)
			return
		}
	}
	m.cumulatives = append(m.cumulatives, cumulative{
		intervals: append([]solver.Interval(nil), intervals...),
		demands:   append([]int64(nil), demands...),
		capacity:  capacity,
	})
}

// AddAtMostOne posts Σ lits <= 1.
func (m *Model) AddAtMostOne(lits ...solver.Literal) {
	m.checkLits(lits)
	m.amos = append(m.amos, atMostOne{lits: append([]solver.Literal(nil), lits...)})
}

// Maximize sets the objective to maximise.
func (m *Model) Maximize(expr solver.LinearExpr) {
	m.checkExpr(expr)
	m.objective = expr
	m.maximize = true
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of posted constraints, interval links
// included.
func (m *Model) NumConstraints() int {
	return len(m.linears) + len(m.cumulatives) + len(m.amos)
}
