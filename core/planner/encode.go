package planner

import (
	"fmt"

	"github.com/kilianp07/resplan/core/logger"
	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/solver"
	"github.com/kilianp07/resplan/core/timeline"
)

// Placement is the constant position of a preassigned project on a resource.
type Placement struct {
	ProjectID string
	Resource  int
	// Start and End are the day offsets of the project dates.
	Start int64
	End   int64
	// Duration is the inclusive day count occupying capacity.
	Duration int64
}

// Claim is one resource's candidacy for a project.
type Claim struct {
	Resource  int
	Indicator solver.BoolVar
	// Constant marks the always-true claim of a preassignment.
	Constant bool
}

// Encoding records what the encoder posted so the objective builder and the
// reconstructor can read it back.
type Encoding struct {
	Placements map[string][]Placement
	Claims     map[string][]Claim
	// Indicators are the claim indicators of free projects, in posting order.
	Indicators []solver.BoolVar
	// Capacity reports, per resource, whether a cumulative constraint was posted.
	Capacity []bool
}

// encodeConstraints posts the per-resource capacity constraints and the
// cross-resource exclusivity of every project.
func encodeConstraints(m solver.Model, tl timeline.Timeline, ds model.Dataset, part Partition, vars map[string]FreeVars, log logger.Logger) Encoding {
	enc := Encoding{
		Placements: make(map[string][]Placement),
		Claims:     make(map[string][]Claim),
		Capacity:   make([]bool, len(ds.Resources)),
	}
	projects := ds.ProjectIndex()
	free := part.IDs(ClassFree)

	// Free projects keep their requested dates; the solver only picks the
	// resource.
	for _, id := range free {
		p := ds.Projects[projects[id]]
		m.AddLinear(solver.Var(vars[id].Start), solver.EQ, int64(tl.Offset(p.StartDate)))
	}

	for r, res := range ds.Resources {
		var intervals []solver.Interval
		for _, ref := range part.References(r) {
			p := ds.Projects[projects[ref.ProjectID]]
			if ref.OnHold {
				log.Debugf("[Skip - On Hold] %s → %s", res.Name, p.ID)
				continue
			}
			start := int64(tl.Offset(p.StartDate))
			duration := FixedDuration(p)
			end := start + duration
			iv := m.NewInterval(m.NewConstant(start), duration, m.NewConstant(end),
				fmt.Sprintf("%s_fixed_interval_%s", p.ID, res.Name))
			intervals = append(intervals, iv)
			enc.Placements[p.ID] = append(enc.Placements[p.ID], Placement{
				ProjectID: p.ID,
				Resource:  r,
				Start:     start,
				End:       int64(tl.Offset(p.EndDate)),
				Duration:  duration,
			})
			enc.Claims[p.ID] = append(enc.Claims[p.ID], Claim{Resource: r, Indicator: m.NewConstantBool(true), Constant: true})
			log.Debugf("[Fixed - Preassigned] %s → %s from %s to %s, duration %d", res.Name, p.ID,
				p.StartDate.Format(model.DateLayout), p.EndDate.Format(model.DateLayout), duration)
		}

		for _, id := range free {
			fv := vars[id]
			claims := m.NewBoolVar(fmt.Sprintf("is_assigned_%s_%s", id, res.Name))
			m.AddLinear(solver.Var(fv.Choice), solver.EQ, int64(r), claims.Lit())
			iv := m.NewOptionalInterval(fv.Start, fv.Duration, fv.End, claims,
				fmt.Sprintf("%s_interval_%s", id, res.Name))
			intervals = append(intervals, iv)
			enc.Claims[id] = append(enc.Claims[id], Claim{Resource: r, Indicator: claims})
			enc.Indicators = append(enc.Indicators, claims)
		}

		log.Debugf("[Capacity] %s → intervals: %d / capacity: %d", res.Name, len(intervals), res.Capacity)
		if len(intervals) == 0 {
			continue
		}
		demands := make([]int64, len(intervals))
		for i := range demands {
			demands[i] = 1
		}
		m.AddCumulative(intervals, demands, int64(res.Capacity))
		enc.Capacity[r] = true
	}

	for _, p := range ds.Projects {
		claims := enc.Claims[p.ID]
		if len(claims) == 0 {
			continue
		}
		lits := make([]solver.Literal, len(claims))
		for i, c := range claims {
			lits[i] = c.Indicator.Lit()
		}
		m.AddAtMostOne(lits...)
		if len(enc.Placements[p.ID]) > 1 {
			log.Warnf("project %s is preassigned to %d resources; the model is infeasible", p.ID, len(enc.Placements[p.ID]))
		}
	}
	return enc
}
