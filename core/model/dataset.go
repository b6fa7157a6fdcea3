package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateID is returned when two projects share an identifier or two
// resources share a name.
var ErrDuplicateID = errors.New("duplicate identifier")

// Dataset groups the three input collections of a scheduling run.
type Dataset struct {
	Projects  []Project
	Resources []Resource
	Holidays  []Holiday
}

// Validate checks every project and resource and reports all problems at once.
// Unknown project references are not an error here; the planner drops them.
func (d Dataset) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(d.Projects))
	for _, p := range d.Projects {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: project %s", ErrDuplicateID, p.ID))
		}
		seen[p.ID] = struct{}{}
	}
	names := make(map[string]struct{}, len(d.Resources))
	for _, r := range d.Resources {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := names[r.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: resource %s", ErrDuplicateID, r.Name))
		}
		names[r.Name] = struct{}{}
	}
	return errors.Join(errs...)
}

// ProjectIndex maps project identifiers to their position in Projects.
func (d Dataset) ProjectIndex() map[string]int {
	idx := make(map[string]int, len(d.Projects))
	for i, p := range d.Projects {
		idx[p.ID] = i
	}
	return idx
}
