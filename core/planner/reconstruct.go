package planner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/solver"
	"github.com/kilianp07/resplan/core/timeline"
)

// Label is the provenance of a schedule record.
type Label string

const (
	// LabelPreassigned marks a project fixed on its resource by the input.
	LabelPreassigned Label = "Fixed – Preassigned"
	// LabelOnHold marks an on-hold reference added back after solving. It
	// occupies no capacity.
	LabelOnHold Label = "Fixed – On Hold"
	// LabelSolver marks a free project the solver placed.
	LabelSolver Label = "Optional – Solver-assigned"
)

// Labels lists the provenance labels in legend order.
var Labels = []Label{LabelSolver, LabelPreassigned, LabelOnHold}

// Assignment is one project on one resource in the reconstructed schedule.
type Assignment struct {
	ProjectID string
	Resource  string
	StartDay  int
	StartDate time.Time
	EndDate   time.Time
	Label     Label
	// Days is the capacity the record occupies; zero for on-hold records.
	Days int
	// Reinjected marks on-hold records added back after solving. They sort
	// after every solved record of their resource.
	Reinjected bool
	Phases     []model.Phase
}

// SortKey orders records within a resource.
func (a Assignment) SortKey() float64 {
	if a.Reinjected {
		return math.Inf(1)
	}
	return float64(a.StartDay)
}

// ResourceSchedule is the ordered list of records of one resource.
type ResourceSchedule struct {
	Resource    string
	Capacity    int
	Assignments []Assignment
}

// Schedule is the resource → projects table of a solved run.
type Schedule struct {
	// Resources holds every resource with at least one record, sorted by name.
	Resources []ResourceSchedule
	// Total counts the records across all resources.
	Total int
	// Unassigned lists free projects no resource claimed, in input order.
	Unassigned []string
}

// For returns the records of the named resource.
func (s Schedule) For(resource string) []Assignment {
	for _, rs := range s.Resources {
		if rs.Resource == resource {
			return rs.Assignments
		}
	}
	return nil
}

// Find returns every record of a project.
func (s Schedule) Find(projectID string) []Assignment {
	var out []Assignment
	for _, rs := range s.Resources {
		for _, a := range rs.Assignments {
			if a.ProjectID == projectID {
				out = append(out, a)
			}
		}
	}
	return out
}

// reconstruct turns a solved valuation back into a schedule and re-adds the
// on-hold projects the model never saw.
func reconstruct(res solver.Result, tl timeline.Timeline, ds model.Dataset, part Partition, vars map[string]FreeVars, enc Encoding) (Schedule, error) {
	byResource := make(map[int][]Assignment)
	assigned := make(map[string]bool)
	var sched Schedule

	for _, p := range ds.Projects {
		var rec Assignment
		var r int
		switch part.Class(p.ID) {
		case ClassFixed:
			placements := enc.Placements[p.ID]
			if len(placements) == 0 {
				return Schedule{}, fmt.Errorf("%w: preassigned project %s has no placement", ErrInvariant, p.ID)
			}
			pl := placements[0]
			r = pl.Resource
			rec = Assignment{
				StartDay:  int(pl.Start),
				StartDate: tl.Date(int(pl.Start)),
				EndDate:   tl.Date(int(pl.End)),
				Label:     LabelPreassigned,
				Days:      int(pl.Duration),
			}
		case ClassFree:
			claimed, ok, err := claimedResource(res, p.ID, enc.Claims[p.ID])
			if err != nil {
				return Schedule{}, err
			}
			if !ok {
				sched.Unassigned = append(sched.Unassigned, p.ID)
				continue
			}
			fv := vars[p.ID]
			if choice := int(res.Value(fv.Choice)); choice != claimed {
				return Schedule{}, fmt.Errorf("%w: project %s claimed by resource %d but chose %d", ErrInvariant, p.ID, claimed, choice)
			}
			r = claimed
			start, end := int(res.Value(fv.Start)), int(res.Value(fv.End))
			rec = Assignment{
				StartDay:  start,
				StartDate: tl.Date(start),
				EndDate:   tl.Date(end),
				Label:     labelFor(part, r, p.ID),
				Days:      end - start,
			}
			if rec.Label == LabelOnHold {
				return Schedule{}, fmt.Errorf("%w: on-hold project %s was placed by the solver", ErrInvariant, p.ID)
			}
		default:
			continue
		}
		rec.ProjectID = p.ID
		rec.Resource = ds.Resources[r].Name
		rec.Phases = p.Phases
		byResource[r] = append(byResource[r], rec)
		assigned[p.ID] = true
	}

	projects := ds.ProjectIndex()
	for r := range ds.Resources {
		for _, ref := range part.References(r) {
			if !ref.OnHold || assigned[ref.ProjectID] {
				continue
			}
			p := ds.Projects[projects[ref.ProjectID]]
			byResource[r] = append(byResource[r], Assignment{
				ProjectID:  p.ID,
				Resource:   ds.Resources[r].Name,
				StartDay:   tl.Offset(p.StartDate),
				StartDate:  model.Day(p.StartDate),
				EndDate:    model.Day(p.EndDate),
				Label:      LabelOnHold,
				Reinjected: true,
				Phases:     p.Phases,
			})
		}
	}

	for r, recs := range byResource {
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].SortKey() < recs[j].SortKey() })
		sched.Resources = append(sched.Resources, ResourceSchedule{
			Resource:    ds.Resources[r].Name,
			Capacity:    ds.Resources[r].Capacity,
			Assignments: recs,
		})
		sched.Total += len(recs)
	}
	sort.Slice(sched.Resources, func(i, j int) bool { return sched.Resources[i].Resource < sched.Resources[j].Resource })
	return sched, nil
}

func claimedResource(res solver.Result, id string, claims []Claim) (int, bool, error) {
	r, found := -1, false
	for _, c := range claims {
		if !res.BoolValue(c.Indicator) {
			continue
		}
		if found {
			return 0, false, fmt.Errorf("%w: project %s claimed by more than one resource", ErrInvariant, id)
		}
		r, found = c.Resource, true
	}
	return r, found, nil
}

// labelFor classifies a project against the reference list of resource r.
func labelFor(part Partition, r int, id string) Label {
	ref, ok := part.Lookup(r, id)
	switch {
	case !ok:
		return LabelSolver
	case ref.OnHold:
		return LabelOnHold
	default:
		return LabelPreassigned
	}
}
