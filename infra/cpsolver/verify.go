package cpsolver

import (
	"sort"

	"github.com/kilianp07/resplan/core/solver"
)

type event struct {
	t     int64
	delta int64
}

type segment struct {
	from, to int64
	load     int64
}

// buildProfile turns start/stop events into load segments. Segments with no
// load are omitted.
func buildProfile(events []event) []segment {
	sort.Slice(events, func(i, j int) bool { return events[i].t < events[j].t })
	var segs []segment
	var load int64
	for i := 0; i < len(events); {
		t := events[i].t
		for i < len(events) && events[i].t == t {
			load += events[i].delta
			i++
		}
		if i < len(events) && load != 0 {
			segs = append(segs, segment{from: t, to: events[i].t, load: load})
		}
	}
	return segs
}

// verify checks a complete assignment against every constraint. Models
// decoded from the SAT solver go through it before they become incumbents.
func (m *Model) verify(values []int64) bool {
	value := func(v solver.IntVar) int64 { return values[v] }
	lit := func(l solver.Literal) bool { return (values[l.Var] == 1) != l.Negated }
	for i, v := range m.vars {
		if values[i] < v.lb || values[i] > v.ub {
			return false
		}
	}
	for _, c := range m.linears {
		active := true
		for _, l := range c.enforce {
			if !lit(l) {
				active = false
				break
			}
		}
		if !active {
			continue
		}
		sum := solver.LinearExpr{Terms: c.terms}.Eval(value)
		if violated(c.op, c.rhs, sum, sum) {
			return false
		}
	}
	for _, a := range m.amos {
		n := 0
		for _, l := range a.lits {
			if lit(l) {
				n++
			}
		}
		if n > 1 {
			return false
		}
	}
	for _, c := range m.cumulatives {
		var events []event
		for k, idx := range c.intervals {
			iv := m.intervals[idx]
			if c.demands[k] <= 0 || (iv.optional && !lit(iv.presence)) {
				continue
			}
			from, to := values[iv.start], values[iv.end]
			if from < to {
				events = append(events, event{t: from, delta: c.demands[k]}, event{t: to, delta: -c.demands[k]})
			}
		}
		for _, s := range buildProfile(events) {
			if s.load > c.capacity {
				return false
			}
		}
	}
	return true
}
