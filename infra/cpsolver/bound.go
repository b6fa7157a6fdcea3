package cpsolver

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/resplan/core/solver"
)

// lpSolve minimises cᵀx subject to Ax = b, x >= 0 and returns the optimum.
// It can be overridden in tests to simulate solver failures.
var lpSolve = func(c []float64, a mat.Matrix, b []float64) (float64, error) {
	opt, _, err := lp.Simplex(c, a, b, 1e-9, nil)
	return opt, err
}

// lpBound relaxes the objective booleans to [0,1] and keeps only the
// at-most-one rows and the time-indexed capacity rows of intervals whose times
// are already fixed. Dropping the other constraints, and the non-negative
// terms that do not involve an objective column, keeps the result a valid
// upper bound. ok is false when the relaxation does not apply or the simplex
// fails.
func (m *Model) lpBound(d domains) (int64, bool) {
	col := make(map[solver.IntVar]int)
	var cost []float64
	constObj := m.objective.Offset
	for _, t := range m.objective.Terms {
		b := d[t.Var]
		if b.lb == b.ub {
			constObj += t.Coef * b.lb
			continue
		}
		if b.lb < 0 || b.ub > 1 {
			return 0, false
		}
		if j, ok := col[t.Var]; ok {
			cost[j] += float64(t.Coef)
			continue
		}
		col[t.Var] = len(cost)
		cost = append(cost, float64(t.Coef))
	}
	n := len(cost)
	if n == 0 {
		return constObj, true
	}

	var rows [][]float64
	var rhs []float64
	for j := 0; j < n; j++ {
		row := make([]float64, n)
		row[j] = 1
		rows = append(rows, row)
		rhs = append(rhs, 1)
	}

	for _, a := range m.amos {
		row := make([]float64, n)
		r, used := 1.0, false
		for _, l := range a.lits {
			b := d[l.Var]
			if b.lb == b.ub {
				val := b.lb
				if l.Negated {
					val = 1 - val
				}
				r -= float64(val)
				continue
			}
			if l.Negated {
				continue
			}
			if j, ok := col[l.Var.Int()]; ok {
				row[j]++
				used = true
			}
		}
		if used {
			rows = append(rows, row)
			rhs = append(rhs, r)
		}
	}

	type item struct {
		from, to int64
		demand   float64
		col      int
	}
	for _, c := range m.cumulatives {
		var items []item
		var points []int64
		for k, idx := range c.intervals {
			iv := m.intervals[idx]
			dem := c.demands[k]
			if dem <= 0 || !d.fixed(iv.start) || !d.fixed(iv.end) {
				continue
			}
			from, to := d[iv.start].lb, d[iv.end].lb
			if from >= to {
				continue
			}
			it := item{from: from, to: to, demand: float64(dem), col: -1}
			switch {
			case !iv.optional || litTrue(d, iv.presence):
			case litFalse(d, iv.presence) || iv.presence.Negated:
				continue
			default:
				j, ok := col[iv.presence.Var.Int()]
				if !ok {
					continue
				}
				it.col = j
			}
			items = append(items, it)
			points = append(points, from, to)
		}
		sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
		for p := 0; p+1 < len(points); p++ {
			if points[p] == points[p+1] {
				continue
			}
			at := points[p]
			row := make([]float64, n)
			r, used := float64(c.capacity), false
			for _, it := range items {
				if it.from > at || it.to <= at {
					continue
				}
				if it.col < 0 {
					r -= it.demand
					continue
				}
				row[it.col] += it.demand
				used = true
			}
			if used {
				rows = append(rows, row)
				rhs = append(rhs, r)
			}
		}
	}

	for _, r := range rhs {
		if r < 0 {
			return 0, false
		}
	}

	// Standard form: [G I][x; s] = h with x, s >= 0, minimising -costᵀx.
	nRows := len(rows)
	a := mat.NewDense(nRows, n+nRows, nil)
	for i, row := range rows {
		for j, v := range row {
			if v != 0 {
				a.Set(i, j, v)
			}
		}
		a.Set(i, n+i, 1)
	}
	c := make([]float64, n+nRows)
	for j, v := range cost {
		c[j] = -v
	}
	opt, err := lpSolve(c, a, rhs)
	if err != nil {
		m.log.Debugf("lp relaxation skipped: %v", err)
		return 0, false
	}
	return constObj + int64(math.Floor(-opt+1e-6)), true
}
