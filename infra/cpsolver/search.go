package cpsolver

import (
	"context"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/kilianp07/resplan/core/solver"
)

// pollInterval is how often a running SAT call checks the context and the
// deadline.
const pollInterval = 5 * time.Millisecond

type search struct {
	m        *Model
	ctx      context.Context
	deadline time.Time
	enc      *encoder
	sat      *gini.Gini
	bound    int64

	calls   int64
	stopped bool
	found   bool
	bestObj int64
	best    []int64
}

// Solve presolves, encodes and optimises the model. It returns an error only
// for a malformed or oversized model; infeasibility and interruptions are
// reported through the status.
func (m *Model) Solve(ctx context.Context) (solver.Result, error) {
	if m.err != nil {
		return solver.Result{}, m.err
	}
	begin := time.Now()
	s := &search{m: m, ctx: ctx}
	if m.opts.TimeLimit > 0 {
		s.deadline = begin.Add(m.opts.TimeLimit)
	}
	if err := s.run(); err != nil {
		return solver.Result{}, err
	}

	status := solver.StatusInfeasible
	switch {
	case s.found && s.stopped:
		status = solver.StatusFeasible
	case s.found:
		status = solver.StatusOptimal
	case s.stopped:
		status = solver.StatusUnknown
	}
	bestBound := s.bound
	if status == solver.StatusOptimal {
		bestBound = s.bestObj
	}
	var values []int64
	if s.found {
		values = s.best
	}
	res := solver.NewResult(status, s.bestObj, bestBound, values)
	res.Calls = s.calls
	res.WallTime = time.Since(begin)
	m.log.Debugw("search finished", map[string]any{
		"status":    status.String(),
		"objective": s.bestObj,
		"bound":     bestBound,
		"sat_calls": s.calls,
		"vars":      len(m.vars),
		"wall_ms":   res.WallTime.Milliseconds(),
	})
	return res, nil
}

func (s *search) run() error {
	m := s.m
	root := make(domains, len(m.vars))
	for i, v := range m.vars {
		root[i] = bounds{lb: v.lb, ub: v.ub}
		if v.lb > v.ub {
			return nil
		}
	}
	if !m.propagate(root) {
		return nil
	}

	enc, err := newEncoder(m, root)
	if err != nil {
		return err
	}
	if err := enc.encode(); err != nil {
		return err
	}
	s.enc = enc
	s.bound = m.objectiveUpper(root)
	if m.maximize && !m.opts.DisableLPBound {
		if lpb, ok := m.lpBound(root); ok && lpb < s.bound {
			m.log.Debugf("lp relaxation bound %d (trivial %d)", lpb, s.bound)
			s.bound = lpb
		}
	}

	s.sat = gini.New()
	if !enc.load(s.sat) {
		return nil
	}
	m.log.Debugf("encoded %d variables into %d sat variables", len(m.vars), s.sat.MaxVar())

	switch s.call(z.LitNull) {
	case 1:
		if err := s.record(); err != nil {
			return err
		}
	case -1:
		return nil
	default:
		s.stopped = true
		return nil
	}

	// Try the bound first; if it is out of reach, climb one step at a time.
	jump := true
	for s.bestObj < s.bound {
		target := s.bestObj + 1
		if jump {
			target = s.bound
		}
		switch s.call(enc.atLeast(target)) {
		case 1:
			if err := s.record(); err != nil {
				return err
			}
			if s.bestObj < target {
				return fmt.Errorf("cpsolver: model below requested objective %d", target)
			}
		case -1:
			s.bound = target - 1
			jump = false
		default:
			s.stopped = true
			return nil
		}
	}
	return nil
}

func (m *Model) objectiveUpper(d domains) int64 {
	ub := m.objective.Offset
	for _, t := range m.objective.Terms {
		_, hi := termRange(d, t)
		ub += hi
	}
	return ub
}

func (s *search) expired() bool {
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

// call runs one SAT call under the optional assumption. It returns 1 for SAT,
// -1 for UNSAT and 0 when a limit or the context stopped it.
func (s *search) call(assume z.Lit) int {
	if s.ctx.Err() != nil || s.expired() {
		return 0
	}
	if s.m.opts.CallLimit > 0 && s.calls >= s.m.opts.CallLimit {
		return 0
	}
	switch assume {
	case s.enc.c.F:
		return -1
	case z.LitNull, s.enc.c.T:
	default:
		s.sat.Assume(assume)
	}
	s.calls++

	run := s.sat.GoSolve()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		if res, done := run.Test(); done {
			return res
		}
		select {
		case <-s.ctx.Done():
			return run.Stop()
		case <-tick.C:
			if s.expired() {
				return run.Stop()
			}
		}
	}
}

func (s *search) record() error {
	values := s.enc.values(s.sat)
	if !s.m.verify(values) {
		return fmt.Errorf("cpsolver: decoded model violates a constraint")
	}
	obj := s.m.objective.Eval(func(v solver.IntVar) int64 { return values[v] })
	if !s.found || obj > s.bestObj {
		s.found = true
		s.bestObj = obj
		s.best = values
	}
	return nil
}
