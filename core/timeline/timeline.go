// Package timeline maps calendar dates onto the integer day offsets used by the
// scheduling model.
package timeline

import (
	"errors"
	"time"

	"github.com/kilianp07/resplan/core/model"
)

// ErrNoProjects signals an empty project set. Callers treat it as "nothing to
// schedule" rather than as a failure.
var ErrNoProjects = errors.New("timeline: no projects to schedule")

// Timeline is the global scheduling window of a run.
type Timeline struct {
	Min     time.Time
	Max     time.Time
	Horizon int
}

// New computes the window spanning every project start and end date.
func New(projects []model.Project) (Timeline, error) {
	if len(projects) == 0 {
		return Timeline{}, ErrNoProjects
	}
	lo, hi := model.Day(projects[0].StartDate), model.Day(projects[0].EndDate)
	for _, p := range projects {
		for _, d := range []time.Time{model.Day(p.StartDate), model.Day(p.EndDate)} {
			if d.Before(lo) {
				lo = d
			}
			if d.After(hi) {
				hi = d
			}
		}
	}
	return Timeline{Min: lo, Max: hi, Horizon: model.DaysBetween(lo, hi)}, nil
}

// Offset returns the number of days between the window start and d.
func (t Timeline) Offset(d time.Time) int {
	return model.DaysBetween(t.Min, d)
}

// Date is the inverse of Offset.
func (t Timeline) Date(offset int) time.Time {
	return model.AddDays(t.Min, offset)
}

// Contains reports whether offset lies within [0, Horizon].
func (t Timeline) Contains(offset int) bool {
	return offset >= 0 && offset <= t.Horizon
}
