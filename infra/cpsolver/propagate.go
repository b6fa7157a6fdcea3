package cpsolver

import (
	"math"

	"github.com/kilianp07/resplan/core/solver"
)

type bounds struct {
	lb, ub int64
}

// domains holds the current bounds of every variable, indexed by handle.
type domains []bounds

func (d domains) fixed(v solver.IntVar) bool {
	return d[v].lb == d[v].ub
}

// tighten intersects the bounds of v with [lb, ub]. ok is false when the
// domain becomes empty.
func (d domains) tighten(v solver.IntVar, lb, ub int64) (changed, ok bool) {
	b := d[v]
	if lb > b.lb {
		b.lb = lb
		changed = true
	}
	if ub < b.ub {
		b.ub = ub
		changed = true
	}
	if b.lb > b.ub {
		return changed, false
	}
	d[v] = b
	return changed, true
}

func litTrue(d domains, l solver.Literal) bool {
	b := d[l.Var]
	if l.Negated {
		return b.ub <= 0
	}
	return b.lb >= 1
}

func litFalse(d domains, l solver.Literal) bool {
	b := d[l.Var]
	if l.Negated {
		return b.lb >= 1
	}
	return b.ub <= 0
}

func setLit(d domains, l solver.Literal, val bool) (bool, bool) {
	v := l.Var.Int()
	if val != l.Negated {
		return d.tighten(v, 1, 1)
	}
	return d.tighten(v, 0, 0)
}

func termRange(d domains, t solver.Term) (lo, hi int64) {
	a, b := t.Coef*d[t.Var].lb, t.Coef*d[t.Var].ub
	if a > b {
		a, b = b, a
	}
	return a, b
}

func violated(op solver.Op, rhs, minSum, maxSum int64) bool {
	switch op {
	case solver.LE:
		return minSum > rhs
	case solver.GE:
		return maxSum < rhs
	default:
		return minSum > rhs || maxSum < rhs
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

// propagate runs linear bounds propagation to a fixpoint. It returns false
// when a domain empties or a constraint cannot hold. Whatever it fixes is
// encoded as a constant.
func (m *Model) propagate(d domains) bool {
	for {
		changed := false
		for i := range m.linears {
			ch, ok := propagateLinear(d, &m.linears[i])
			if !ok {
				return false
			}
			changed = changed || ch
		}
		if !changed {
			return true
		}
	}
}

func propagateLinear(d domains, c *linear) (bool, bool) {
	unfixed, nUnfixed := -1, 0
	for i, l := range c.enforce {
		if litFalse(d, l) {
			return false, true
		}
		if !litTrue(d, l) {
			unfixed = i
			nUnfixed++
		}
	}
	var minSum, maxSum int64
	for _, t := range c.terms {
		lo, hi := termRange(d, t)
		minSum += lo
		maxSum += hi
	}
	if nUnfixed > 0 {
		// A single open enforcement literal must be false if the
		// constraint can no longer hold.
		if nUnfixed == 1 && violated(c.op, c.rhs, minSum, maxSum) {
			return setLit(d, c.enforce[unfixed], false)
		}
		return false, true
	}
	if violated(c.op, c.rhs, minSum, maxSum) {
		return false, false
	}
	changed := false
	for _, t := range c.terms {
		lo, hi := termRange(d, t)
		if c.op == solver.LE || c.op == solver.EQ {
			limit := c.rhs - (minSum - lo)
			var ch, ok bool
			if t.Coef > 0 {
				ch, ok = d.tighten(t.Var, math.MinInt64, floorDiv(limit, t.Coef))
			} else {
				ch, ok = d.tighten(t.Var, ceilDiv(limit, t.Coef), math.MaxInt64)
			}
			if !ok {
				return changed, false
			}
			changed = changed || ch
		}
		if c.op == solver.GE || c.op == solver.EQ {
			limit := c.rhs - (maxSum - hi)
			var ch, ok bool
			if t.Coef > 0 {
				ch, ok = d.tighten(t.Var, ceilDiv(limit, t.Coef), math.MaxInt64)
			} else {
				ch, ok = d.tighten(t.Var, math.MinInt64, floorDiv(limit, t.Coef))
			}
			if !ok {
				return changed, false
			}
			changed = changed || ch
		}
	}
	return changed, true
}
