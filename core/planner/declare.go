package planner

import (
	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/solver"
	"github.com/kilianp07/resplan/core/timeline"
)

// FreeDuration is the day count used for solver-placed projects:
// end_date - start_date, without counting the end day.
//
// It differs from FixedDuration by one day. Both are kept as they are until
// the intended semantics are settled; see TestDurationFormulasDiffer.
func FreeDuration(p model.Project) int64 {
	return int64(p.Duration())
}

// FixedDuration is the day count used for preassigned projects:
// end_date - start_date + 1, counting both ends.
func FixedDuration(p model.Project) int64 {
	return int64(p.Duration()) + 1
}

// FreeVars are the decision variables of one free project.
type FreeVars struct {
	ProjectID string
	Start     solver.IntVar
	End       solver.IntVar
	Choice    solver.IntVar
	Duration  int64
	Interval  solver.Interval
}

// declareVariables creates the start, end and resource-choice variables and
// the linking interval of every free project. Fixed and on-hold projects get
// none.
func declareVariables(m solver.Model, tl timeline.Timeline, ds model.Dataset, part Partition) map[string]FreeVars {
	horizon := int64(tl.Horizon)
	lastResource := int64(len(ds.Resources) - 1)
	vars := make(map[string]FreeVars)
	for _, p := range ds.Projects {
		if part.Class(p.ID) != ClassFree {
			continue
		}
		fv := FreeVars{
			ProjectID: p.ID,
			Start:     m.NewIntVar(0, horizon, "start_"+p.ID),
			End:       m.NewIntVar(0, horizon, "end_"+p.ID),
			Choice:    m.NewIntVar(0, lastResource, "resource_"+p.ID),
			Duration:  FreeDuration(p),
		}
		fv.Interval = m.NewInterval(fv.Start, fv.Duration, fv.End, "interval_"+p.ID)
		vars[p.ID] = fv
	}
	return vars
}
