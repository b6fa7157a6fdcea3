package cpsolver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/kilianp07/resplan/core/solver"
)

// ErrTooLarge is returned when an open variable or a constraint needs more
// literals than the encoder accepts.
var ErrTooLarge = errors.New("cpsolver: model too large to encode")

const (
	maxDomain = 1 << 12 // values of one open variable
	maxPairs  = 1 << 16 // value pairs of a two variable linear
	maxWeight = 1 << 13 // inputs of one sorting network
)

// encVar is a variable after presolve: either a constant or one literal per
// value, lits[k] standing for lb+k.
type encVar struct {
	fixed bool
	value int64
	lb    int64
	lits  []z.Lit
}

// weighted is offset + Σ weights[i]·lits[i] with positive weights.
type weighted struct {
	lits    []z.Lit
	weights []int64
	offset  int64
}

func (w *weighted) add(m z.Lit, weight int64) {
	w.lits = append(w.lits, m)
	w.weights = append(w.weights, weight)
}

func (w weighted) total() int64 {
	var t int64
	for _, x := range w.weights {
		t += x
	}
	return t
}

type encoder struct {
	m    *Model
	d    domains
	c    *logic.C
	vars []encVar
	// required holds the circuit outputs asserted as unit clauses.
	required []z.Lit

	objOffset int64
	objCard   *logic.CardSort
}

func newEncoder(m *Model, d domains) (*encoder, error) {
	e := &encoder{m: m, d: d, c: logic.NewC(), vars: make([]encVar, len(d))}
	for i, b := range d {
		switch {
		case b.lb == b.ub:
			e.vars[i] = encVar{fixed: true, value: b.lb, lb: b.lb}
		case b.ub-b.lb >= maxDomain:
			return nil, fmt.Errorf("%w: variable %s spans %d values", ErrTooLarge, m.vars[i].name, b.ub-b.lb+1)
		case b.lb == 0 && b.ub == 1:
			x := e.c.Lit()
			e.vars[i] = encVar{lits: []z.Lit{x.Not(), x}}
		default:
			lits := make([]z.Lit, b.ub-b.lb+1)
			for k := range lits {
				lits[k] = e.c.Lit()
			}
			e.vars[i] = encVar{lb: b.lb, lits: lits}
			// exactly one value
			cs := e.c.CardSort(lits)
			e.require(e.c.And(cs.Leq(1), cs.Geq(1)))
		}
	}
	return e, nil
}

func (e *encoder) require(m z.Lit) {
	if m != e.c.T {
		e.required = append(e.required, m)
	}
}

// eq returns the literal for v == val.
func (e *encoder) eq(v solver.IntVar, val int64) z.Lit {
	ev := e.vars[v]
	if ev.fixed {
		if val == ev.value {
			return e.c.T
		}
		return e.c.F
	}
	k := val - ev.lb
	if k < 0 || k >= int64(len(ev.lits)) {
		return e.c.F
	}
	return ev.lits[k]
}

func (e *encoder) lit(l solver.Literal) z.Lit {
	m := e.eq(l.Var.Int(), 1)
	if l.Negated {
		return m.Not()
	}
	return m
}

func (e *encoder) lits(ls []solver.Literal) []z.Lit {
	out := make([]z.Lit, len(ls))
	for i, l := range ls {
		out[i] = e.lit(l)
	}
	return out
}

// encode turns every constraint and the objective into circuit outputs.
func (e *encoder) encode() error {
	for i := range e.m.linears {
		if err := e.linear(&e.m.linears[i]); err != nil {
			return err
		}
	}
	for _, a := range e.m.amos {
		ms := e.lits(a.lits)
		if len(ms) > 1 {
			e.require(e.c.CardSort(ms).Leq(1))
		}
	}
	for i := range e.m.cumulatives {
		if err := e.cumulative(&e.m.cumulatives[i]); err != nil {
			return err
		}
	}
	return e.objective()
}

// collect folds constant terms into rhs and merges repeated variables.
func (e *encoder) collect(terms []solver.Term, rhs int64) ([]solver.Term, int64) {
	idx := make(map[solver.IntVar]int)
	var open []solver.Term
	for _, t := range terms {
		if ev := e.vars[t.Var]; ev.fixed {
			rhs -= t.Coef * ev.value
			continue
		}
		if i, ok := idx[t.Var]; ok {
			open[i].Coef += t.Coef
			continue
		}
		idx[t.Var] = len(open)
		open = append(open, t)
	}
	kept := open[:0]
	for _, t := range open {
		if t.Coef != 0 {
			kept = append(kept, t)
		}
	}
	return kept, rhs
}

func (e *encoder) linear(c *linear) error {
	terms, rhs := e.collect(c.terms, c.rhs)
	holds, err := e.linearLit(terms, c.op, rhs)
	if err != nil {
		return err
	}
	e.require(e.c.Implies(e.c.Ands(e.lits(c.enforce)...), holds))
	return nil
}

// linearLit returns a literal equivalent to Σ terms op rhs. One and two
// variable constraints enumerate values; larger ones go through a
// pseudo-boolean sorting network.
func (e *encoder) linearLit(terms []solver.Term, op solver.Op, rhs int64) (z.Lit, error) {
	holds := func(sum int64) bool { return !violated(op, rhs, sum, sum) }
	switch len(terms) {
	case 0:
		if holds(0) {
			return e.c.T, nil
		}
		return e.c.F, nil
	case 1:
		t := terms[0]
		var allowed []z.Lit
		for v := e.d[t.Var].lb; v <= e.d[t.Var].ub; v++ {
			if holds(t.Coef * v) {
				allowed = append(allowed, e.eq(t.Var, v))
			}
		}
		return e.c.Ors(allowed...), nil
	case 2:
		a, b := terms[0], terms[1]
		da, db := e.d[a.Var], e.d[b.Var]
		if (da.ub-da.lb+1)*(db.ub-db.lb+1) > maxPairs {
			break
		}
		rows := make([]z.Lit, 0, da.ub-da.lb+1)
		for va := da.lb; va <= da.ub; va++ {
			var allowed []z.Lit
			for vb := db.lb; vb <= db.ub; vb++ {
				if holds(a.Coef*va + b.Coef*vb) {
					allowed = append(allowed, e.eq(b.Var, vb))
				}
			}
			rows = append(rows, e.c.Implies(e.eq(a.Var, va), e.c.Ors(allowed...)))
		}
		return e.c.Ands(rows...), nil
	}
	le := func(sign int64) (z.Lit, error) {
		return e.atMost(e.expand(terms, sign), sign*rhs)
	}
	switch op {
	case solver.LE:
		return le(1)
	case solver.GE:
		return le(-1)
	}
	upper, err := le(1)
	if err != nil {
		return 0, err
	}
	lower, err := le(-1)
	if err != nil {
		return 0, err
	}
	return e.c.And(upper, lower), nil
}

// expand rewrites Σ sign·coef·x over open variables as a weighted sum of
// value literals. Negative weights move to the negated literal.
func (e *encoder) expand(terms []solver.Term, sign int64) weighted {
	var w weighted
	for _, t := range terms {
		coef := sign * t.Coef
		ev := e.vars[t.Var]
		if ev.fixed {
			w.offset += coef * ev.value
			continue
		}
		w.offset += coef * ev.lb
		for k := 1; k < len(ev.lits); k++ {
			wt := coef * int64(k)
			if wt > 0 {
				w.add(ev.lits[k], wt)
				continue
			}
			w.offset += wt
			w.add(ev.lits[k].Not(), -wt)
		}
	}
	return w
}

// replicate repeats each literal by its weight so that a sorting network
// counts the weighted sum.
func replicate(w weighted) ([]z.Lit, error) {
	total := w.total()
	if total > maxWeight {
		return nil, fmt.Errorf("%w: weighted sum of %d", ErrTooLarge, total)
	}
	ms := make([]z.Lit, 0, total)
	for i, m := range w.lits {
		for r := int64(0); r < w.weights[i]; r++ {
			ms = append(ms, m)
		}
	}
	return ms, nil
}

// atMost returns a literal for w <= bound.
func (e *encoder) atMost(w weighted, bound int64) (z.Lit, error) {
	k := bound - w.offset
	if k < 0 {
		return e.c.F, nil
	}
	if k >= w.total() {
		return e.c.T, nil
	}
	ms, err := replicate(w)
	if err != nil {
		return 0, err
	}
	return e.c.CardSort(ms).Leq(int(k)), nil
}

// cumulative checks the load at every candidate start time, where the
// profile of half-open intervals peaks.
func (e *encoder) cumulative(c *cumulative) error {
	type use struct {
		start    solver.IntVar
		size     int64
		demand   int64
		presence z.Lit
	}
	var uses []use
	seen := make(map[int64]bool)
	var points []int64
	for k, idx := range c.intervals {
		iv := e.m.intervals[idx]
		if c.demands[k] <= 0 || iv.size <= 0 {
			continue
		}
		presence := e.c.T
		if iv.optional {
			presence = e.lit(iv.presence)
		}
		if presence == e.c.F {
			continue
		}
		uses = append(uses, use{start: iv.start, size: iv.size, demand: c.demands[k], presence: presence})
		for s := e.d[iv.start].lb; s <= e.d[iv.start].ub; s++ {
			if !seen[s] {
				seen[s] = true
				points = append(points, s)
			}
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })

	for _, t := range points {
		var ms []z.Lit
		var load int64
		for _, u := range uses {
			var at []z.Lit
			for s := max(e.d[u.start].lb, t-u.size+1); s <= min(e.d[u.start].ub, t); s++ {
				at = append(at, e.eq(u.start, s))
			}
			covers := e.c.And(u.presence, e.c.Ors(at...))
			switch covers {
			case e.c.F:
				continue
			case e.c.T:
				load += u.demand
				continue
			}
			for r := int64(0); r < u.demand; r++ {
				ms = append(ms, covers)
			}
		}
		limit := c.capacity - load
		if limit < 0 {
			e.require(e.c.F)
			return nil
		}
		if int64(len(ms)) <= limit {
			continue
		}
		if len(ms) > maxWeight {
			return fmt.Errorf("%w: %d intervals overlap at %d", ErrTooLarge, len(ms), t)
		}
		e.require(e.c.CardSort(ms).Leq(int(limit)))
	}
	return nil
}

func (e *encoder) objective() error {
	w := e.expand(e.m.objective.Terms, 1)
	e.objOffset = w.offset + e.m.objective.Offset
	if len(w.lits) == 0 {
		return nil
	}
	ms, err := replicate(w)
	if err != nil {
		return err
	}
	e.objCard = e.c.CardSort(ms)
	return nil
}

// atLeast returns a literal for objective >= k.
func (e *encoder) atLeast(k int64) z.Lit {
	if e.objCard == nil {
		if k <= e.objOffset {
			return e.c.T
		}
		return e.c.F
	}
	return e.objCard.Geq(int(k - e.objOffset))
}

// load writes the circuit and the required outputs into g. It returns false
// when a required output is constant false.
func (e *encoder) load(g *gini.Gini) bool {
	e.c.ToCnf(g)
	for _, m := range e.required {
		if m == e.c.F {
			return false
		}
		g.Add(m)
		g.Add(0)
	}
	return true
}

// values decodes the last SAT model into one value per variable handle.
func (e *encoder) values(g *gini.Gini) []int64 {
	top := g.MaxVar()
	val := func(m z.Lit) bool { return m.Var() <= top && g.Value(m) }
	out := make([]int64, len(e.vars))
	for i, ev := range e.vars {
		if ev.fixed {
			out[i] = ev.value
			continue
		}
		out[i] = ev.lb
		if len(ev.lits) == 2 && ev.lb == 0 && ev.lits[0] == ev.lits[1].Not() {
			if val(ev.lits[1]) {
				out[i] = 1
			}
			continue
		}
		for k, m := range ev.lits {
			if val(m) {
				out[i] = ev.lb + int64(k)
				break
			}
		}
	}
	return out
}
