package planner

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/timeline"
)

// Summary aggregates the outcome of a run.
type Summary struct {
	FreeProjects int
	Scheduled    int
	Preassigned  int
	OnHold       int
	Unassigned   int
	// Utilization is the share of each resource's capacity-days occupied by
	// solved records over the window, keyed by resource name.
	Utilization       map[string]float64
	MeanUtilization   float64
	StdDevUtilization float64
}

func summarize(ds model.Dataset, tl timeline.Timeline, part Partition, sched Schedule) Summary {
	s := Summary{
		FreeProjects: len(part.IDs(ClassFree)),
		Unassigned:   len(sched.Unassigned),
		Utilization:  make(map[string]float64, len(ds.Resources)),
	}
	occupied := make(map[string]int, len(ds.Resources))
	for _, rs := range sched.Resources {
		for _, a := range rs.Assignments {
			switch a.Label {
			case LabelSolver:
				s.Scheduled++
			case LabelPreassigned:
				s.Preassigned++
			case LabelOnHold:
				s.OnHold++
			}
			occupied[rs.Resource] += a.Days
		}
	}
	window := tl.Horizon + 1
	samples := make([]float64, 0, len(ds.Resources))
	for _, r := range ds.Resources {
		u := 0.0
		if r.Capacity > 0 {
			u = float64(occupied[r.Name]) / float64(r.Capacity*window)
		}
		s.Utilization[r.Name] = u
		samples = append(samples, u)
	}
	switch len(samples) {
	case 0:
	case 1:
		s.MeanUtilization = samples[0]
	default:
		s.MeanUtilization, s.StdDevUtilization = stat.MeanStdDev(samples, nil)
	}
	return s
}
