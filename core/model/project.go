package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidProject is returned when a project has an empty identifier or an
// inverted date range.
var ErrInvalidProject = errors.New("invalid project")

// Phase is a named sub-interval of a project. Phases are carried through the
// scheduling run untouched.
type Phase struct {
	Name string
	From time.Time
	To   time.Time
}

// Project is a unit of work to be assigned to a resource.
type Project struct {
	ID        string
	StartDate time.Time
	EndDate   time.Time
	Phases    []Phase
}

// Duration returns the whole number of days between the start and end dates.
func (p Project) Duration() int {
	return DaysBetween(p.StartDate, p.EndDate)
}

// Validate checks the identifier and date ordering.
func (p Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty project id", ErrInvalidProject)
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("%w: project %s has no start or end date", ErrInvalidProject, p.ID)
	}
	if p.StartDate.After(p.EndDate) {
		return fmt.Errorf("%w: project %s starts %s after it ends %s", ErrInvalidProject, p.ID,
			p.StartDate.Format(DateLayout), p.EndDate.Format(DateLayout))
	}
	for _, ph := range p.Phases {
		if ph.From.After(ph.To) {
			return fmt.Errorf("%w: project %s phase %q is inverted", ErrInvalidProject, p.ID, ph.Name)
		}
	}
	return nil
}
