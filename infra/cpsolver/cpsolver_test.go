package cpsolver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/resplan/core/solver"
)

func TestMaximizeWithAtMostOne(t *testing.T) {
	m := New(Options{})
	a, b, c := m.NewBoolVar("a"), m.NewBoolVar("b"), m.NewBoolVar("c")
	m.AddAtMostOne(a.Lit(), b.Lit())
	m.Maximize(solver.SumBools(a, b, c))

	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusOptimal || res.Objective != 2 {
		t.Fatalf("expected OPTIMAL/2 got %s/%d", res.Status, res.Objective)
	}
	if !res.BoolValue(c) {
		t.Fatalf("c should be set")
	}
	if res.BoolValue(a) == res.BoolValue(b) {
		t.Fatalf("exactly one of a, b expected")
	}
	if res.BestBound != 2 {
		t.Fatalf("optimal bound should equal objective, got %d", res.BestBound)
	}
}

func TestLinearBoundsPropagation(t *testing.T) {
	m := New(Options{})
	x, y := m.NewIntVar(0, 10, "x"), m.NewIntVar(0, 10, "y")
	m.AddLinear(solver.Sum(x, y), solver.EQ, 12)
	m.AddLinear(solver.Var(x).Plus(y, -1), solver.GE, 4)
	m.Maximize(solver.Var(y))

	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusOptimal {
		t.Fatalf("expected OPTIMAL got %s", res.Status)
	}
	if res.Value(x) != 8 || res.Value(y) != 4 {
		t.Fatalf("expected x=8 y=4 got x=%d y=%d", res.Value(x), res.Value(y))
	}
}

func TestEnforcedLinearTurnsIndicatorOff(t *testing.T) {
	m := New(Options{})
	b := m.NewBoolVar("b")
	x := m.NewIntVar(0, 5, "x")
	m.AddLinear(solver.Var(x), solver.EQ, 3, b.Lit())
	m.AddLinear(solver.Var(x), solver.EQ, 4)
	m.Maximize(solver.SumBools(b))

	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusOptimal || res.Objective != 0 || res.BoolValue(b) {
		t.Fatalf("expected b=false, got %s obj=%d b=%v", res.Status, res.Objective, res.BoolValue(b))
	}
	if res.Value(x) != 4 {
		t.Fatalf("expected x=4 got %d", res.Value(x))
	}
}

func TestNegatedEnforcement(t *testing.T) {
	m := New(Options{})
	b := m.NewBoolVar("b")
	x := m.NewIntVar(0, 9, "x")
	m.AddLinear(solver.Var(x), solver.GE, 7, b.Not())
	m.AddLinear(solver.Var(x), solver.LE, 2)
	m.Maximize(solver.Var(x))

	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !res.BoolValue(b) || res.Value(x) != 2 {
		t.Fatalf("expected b=true x=2 got b=%v x=%d", res.BoolValue(b), res.Value(x))
	}
}

func optionalTask(m *Model, start, size int64, name string) (solver.BoolVar, solver.Interval) {
	p := m.NewBoolVar(name)
	iv := m.NewOptionalInterval(m.NewConstant(start), size, m.NewConstant(start+size), p, name)
	return p, iv
}

func TestCumulativeCapacity(t *testing.T) {
	for _, tc := range []struct {
		capacity int64
		want     int64
	}{{1, 1}, {2, 2}} {
		m := New(Options{})
		b1, i1 := optionalTask(m, 0, 5, "t1")
		b2, i2 := optionalTask(m, 2, 5, "t2")
		m.AddCumulative([]solver.Interval{i1, i2}, []int64{1, 1}, tc.capacity)
		m.Maximize(solver.SumBools(b1, b2))

		res, err := m.Solve(context.Background())
		if err != nil {
			t.Fatalf("solve: %v", err)
		}
		if res.Status != solver.StatusOptimal || res.Objective != tc.want {
			t.Fatalf("capacity %d: expected OPTIMAL/%d got %s/%d", tc.capacity, tc.want, res.Status, res.Objective)
		}
	}
}

func TestCumulativeWithFixedInterval(t *testing.T) {
	m := New(Options{})
	fixed := m.NewInterval(m.NewConstant(0), 5, m.NewConstant(5), "fixed")
	overlap, iOverlap := optionalTask(m, 3, 3, "overlap")
	after, iAfter := optionalTask(m, 5, 3, "after")
	m.AddCumulative([]solver.Interval{fixed, iOverlap, iAfter}, []int64{1, 1, 1}, 1)
	m.Maximize(solver.SumBools(overlap, after))

	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Objective != 1 || res.BoolValue(overlap) || !res.BoolValue(after) {
		t.Fatalf("expected only the trailing task, got obj=%d overlap=%v after=%v",
			res.Objective, res.BoolValue(overlap), res.BoolValue(after))
	}
}

func TestZeroLengthIntervalUsesNoCapacity(t *testing.T) {
	m := New(Options{})
	fixed := m.NewInterval(m.NewConstant(0), 4, m.NewConstant(4), "fixed")
	point, iPoint := optionalTask(m, 2, 0, "point")
	m.AddCumulative([]solver.Interval{fixed, iPoint}, []int64{1, 1}, 1)
	m.Maximize(solver.SumBools(point))

	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !res.BoolValue(point) {
		t.Fatalf("empty interval should fit")
	}
}

func TestInfeasible(t *testing.T) {
	m := New(Options{})
	x := m.NewIntVar(0, 3, "x")
	m.AddLinear(solver.Var(x), solver.GE, 5)
	m.Maximize(solver.Var(x))

	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("infeasibility must not be an error: %v", err)
	}
	if res.Status != solver.StatusInfeasible || res.HasSolution() {
		t.Fatalf("expected INFEASIBLE got %s", res.Status)
	}
}

func TestConstantTrueIndicatorsConflict(t *testing.T) {
	m := New(Options{})
	m.AddAtMostOne(m.NewConstantBool(true).Lit(), m.NewConstantBool(true).Lit())
	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusInfeasible {
		t.Fatalf("expected INFEASIBLE got %s", res.Status)
	}
}

func TestCallLimitKeepsIncumbent(t *testing.T) {
	m := New(Options{CallLimit: 1, DisableLPBound: true})
	x := m.NewIntVar(0, 20, "x")
	y := m.NewIntVar(0, 20, "y")
	m.AddLinear(solver.Sum(x, y), solver.LE, 30)
	m.Maximize(solver.Var(x))
	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !res.HasSolution() {
		t.Fatalf("expected an incumbent after the first call, got %s", res.Status)
	}
	if res.Calls != 1 {
		t.Fatalf("expected a single sat call got %d", res.Calls)
	}
	if res.Status == solver.StatusFeasible && res.BestBound != 20 {
		t.Fatalf("interrupted search should keep the trivial bound, got %d", res.BestBound)
	}
	if res.Value(x)+res.Value(y) > 30 {
		t.Fatalf("incumbent violates x+y<=30: %d+%d", res.Value(x), res.Value(y))
	}
}

func TestOpenDomainTooLarge(t *testing.T) {
	m := New(Options{})
	x := m.NewIntVar(0, 1_000_000, "x")
	m.Maximize(solver.Var(x))
	if _, err := m.Solve(context.Background()); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge got %v", err)
	}
}

func TestWeightedLinear(t *testing.T) {
	m := New(Options{})
	a, b, c := m.NewBoolVar("a"), m.NewBoolVar("b"), m.NewBoolVar("c")
	weights := solver.LinearExpr{Terms: []solver.Term{
		{Var: a.Int(), Coef: 2},
		{Var: b.Int(), Coef: 3},
		{Var: c.Int(), Coef: 4},
	}}
	m.AddLinear(weights, solver.LE, 5)
	m.Maximize(weights)

	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusOptimal || res.Objective != 5 {
		t.Fatalf("expected OPTIMAL/5 got %s/%d", res.Status, res.Objective)
	}
	if !res.BoolValue(a) || !res.BoolValue(b) || res.BoolValue(c) {
		t.Fatalf("expected a and b only")
	}
}

func TestCumulativeWithOpenStart(t *testing.T) {
	m := New(Options{})
	fixed := m.NewInterval(m.NewConstant(0), 5, m.NewConstant(5), "fixed")
	start, end := m.NewIntVar(0, 8, "start"), m.NewIntVar(0, 11, "end")
	open := m.NewInterval(start, 3, end, "open")
	m.AddCumulative([]solver.Interval{fixed, open}, []int64{1, 1}, 1)
	m.Maximize(solver.LinearExpr{Terms: []solver.Term{{Var: start, Coef: -1}}})

	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusOptimal {
		t.Fatalf("expected OPTIMAL got %s", res.Status)
	}
	if res.Value(start) != 5 || res.Value(end) != 8 {
		t.Fatalf("expected the earliest free slot [5,8) got [%d,%d)", res.Value(start), res.Value(end))
	}
}

// bestSubset counts the largest set of tasks whose load never exceeds
// capacity, by enumeration.
func bestSubset(starts, sizes []int64, capacity int64) int64 {
	var best int64
	for mask := 0; mask < 1<<len(starts); mask++ {
		var events []event
		var n int64
		for i := range starts {
			if mask&(1<<i) == 0 {
				continue
			}
			n++
			events = append(events, event{t: starts[i], delta: 1}, event{t: starts[i] + sizes[i], delta: -1})
		}
		ok := true
		for _, s := range buildProfile(events) {
			if s.load > capacity {
				ok = false
				break
			}
		}
		if ok && n > best {
			best = n
		}
	}
	return best
}

func TestOptimumMatchesEnumeration(t *testing.T) {
	cases := []struct {
		name     string
		n        int
		capacity int64
	}{
		{"unit capacity", 12, 1},
		{"double capacity", 12, 2},
		{"triple capacity", 14, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			starts := make([]int64, tc.n)
			sizes := make([]int64, tc.n)
			m := New(Options{TimeLimit: 20 * time.Second})
			var tasks []solver.BoolVar
			var ivs []solver.Interval
			for i := 0; i < tc.n; i++ {
				starts[i] = int64((i * 5) % 13)
				sizes[i] = int64(2 + (i*3)%5)
				b, iv := optionalTask(m, starts[i], sizes[i], fmt.Sprintf("t%d", i))
				tasks = append(tasks, b)
				ivs = append(ivs, iv)
			}
			demands := make([]int64, tc.n)
			for i := range demands {
				demands[i] = 1
			}
			m.AddCumulative(ivs, demands, tc.capacity)
			m.Maximize(solver.SumBools(tasks...))

			res, err := m.Solve(context.Background())
			if err != nil {
				t.Fatalf("solve: %v", err)
			}
			want := bestSubset(starts, sizes, tc.capacity)
			if res.Status != solver.StatusOptimal || res.Objective != want {
				t.Fatalf("expected OPTIMAL/%d got %s/%d (bound %d)", want, res.Status, res.Objective, res.BestBound)
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	m := New(Options{})
	a := m.NewBoolVar("a")
	m.Maximize(solver.SumBools(a))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := m.Solve(ctx)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusUnknown {
		t.Fatalf("expected UNKNOWN got %s", res.Status)
	}
}

func TestForeignHandle(t *testing.T) {
	m := New(Options{})
	m.AddAtMostOne(solver.BoolVar(42).Lit())
	if _, err := m.Solve(context.Background()); !errors.Is(err, solver.ErrForeignHandle) {
		t.Fatalf("expected ErrForeignHandle got %v", err)
	}
}

func TestSatisfactionWithoutObjective(t *testing.T) {
	m := New(Options{})
	x := m.NewIntVar(0, 3, "x")
	m.AddLinear(solver.Var(x), solver.GE, 2)
	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusOptimal || res.Value(x) < 2 {
		t.Fatalf("expected a satisfying assignment got %s x=%d", res.Status, res.Value(x))
	}
}

func TestLPBoundTriangle(t *testing.T) {
	m := New(Options{})
	a, b, c := m.NewBoolVar("a"), m.NewBoolVar("b"), m.NewBoolVar("c")
	m.AddAtMostOne(a.Lit(), b.Lit())
	m.AddAtMostOne(b.Lit(), c.Lit())
	m.AddAtMostOne(a.Lit(), c.Lit())
	m.Maximize(solver.SumBools(a, b, c))

	root := domains{{0, 1}, {0, 1}, {0, 1}}
	bound, ok := m.lpBound(root)
	if !ok {
		t.Fatalf("expected an lp bound")
	}
	if bound != 1 {
		t.Fatalf("expected floor(1.5)=1 got %d", bound)
	}
	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusOptimal || res.Objective != 1 {
		t.Fatalf("expected OPTIMAL/1 got %s/%d", res.Status, res.Objective)
	}
}

func TestLPFailureFallsBackToSearch(t *testing.T) {
	old := lpSolve
	lpSolve = func([]float64, mat.Matrix, []float64) (float64, error) { return 0, errors.New("fail") }
	defer func() { lpSolve = old }()

	m := New(Options{})
	b1, i1 := optionalTask(m, 0, 5, "t1")
	b2, i2 := optionalTask(m, 5, 5, "t2")
	m.AddCumulative([]solver.Interval{i1, i2}, []int64{1, 1}, 1)
	m.Maximize(solver.SumBools(b1, b2))
	res, err := m.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != solver.StatusOptimal || res.Objective != 2 {
		t.Fatalf("expected OPTIMAL/2 got %s/%d", res.Status, res.Objective)
	}
}

func TestDivisionHelpers(t *testing.T) {
	cases := []struct{ a, b, floor, ceil int64 }{
		{7, 2, 3, 4},
		{-7, 2, -4, -3},
		{7, -2, -4, -3},
		{-7, -2, 3, 4},
		{6, 3, 2, 2},
	}
	for _, c := range cases {
		if got := floorDiv(c.a, c.b); got != c.floor {
			t.Errorf("floorDiv(%d,%d)=%d want %d", c.a, c.b, got, c.floor)
		}
		if got := ceilDiv(c.a, c.b); got != c.ceil {
			t.Errorf("ceilDiv(%d,%d)=%d want %d", c.a, c.b, got, c.ceil)
		}
	}
}
