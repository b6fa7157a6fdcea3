package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidResource is returned for resources without a name or with a
// non-positive capacity.
var ErrInvalidResource = errors.New("invalid resource")

// StatusOnHold is the only active-project status with special meaning. Any
// other status, including the empty string, marks a fixed preassignment.
const StatusOnHold = "on hold"

// DefaultCapacity applies when a resource document omits its capacity.
const DefaultCapacity = 1

// NormalizeStatus trims and lowercases a free-text status.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ActiveProject references a project already held by a resource.
type ActiveProject struct {
	ProjectID string
	Status    string
}

// OnHold reports whether the reference is suspended.
func (a ActiveProject) OnHold() bool {
	return NormalizeStatus(a.Status) == StatusOnHold
}

// Resource is a person or team that can carry Capacity projects at once.
type Resource struct {
	Name           string
	Capacity       int
	ActiveProjects []ActiveProject
	// Availability maps calendar dates to a free-text status. It is loaded
	// and exported but not used by the capacity model.
	Availability map[time.Time]string
}

// Validate checks the name and capacity.
func (r Resource) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty resource name", ErrInvalidResource)
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("%w: resource %s has capacity %d", ErrInvalidResource, r.Name, r.Capacity)
	}
	return nil
}

// Holiday is a non-working calendar date.
type Holiday struct {
	Date time.Time
	Name string
}
