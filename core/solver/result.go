package solver

import "time"

// Status is the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// Result carries the status of a solve and, for OPTIMAL and FEASIBLE, the
// valuation of every declared variable.
type Result struct {
	Status    Status
	Objective int64
	// BestBound is an upper bound on the objective of any solution.
	BestBound int64
	// Calls counts the solver calls the engine made.
	Calls    int64
	WallTime time.Duration
	values   []int64
}

// NewResult builds a Result. values is indexed by variable handle and must be
// nil unless status is OPTIMAL or FEASIBLE.
func NewResult(status Status, objective, bound int64, values []int64) Result {
	return Result{Status: status, Objective: objective, BestBound: bound, values: values}
}

// HasSolution reports whether the result carries a valuation.
func (r Result) HasSolution() bool {
	return (r.Status == StatusOptimal || r.Status == StatusFeasible) && r.values != nil
}

// Value returns the value of v. It returns 0 when there is no solution or v is
// unknown.
func (r Result) Value(v IntVar) int64 {
	if !r.HasSolution() || int(v) < 0 || int(v) >= len(r.values) {
		return 0
	}
	return r.values[v]
}

// BoolValue returns the value of b.
func (r Result) BoolValue(b BoolVar) bool {
	return r.Value(b.Int()) == 1
}

// LiteralValue returns the value of l.
func (r Result) LiteralValue(l Literal) bool {
	return r.BoolValue(l.Var) != l.Negated
}
