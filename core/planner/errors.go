package planner

import "errors"

var (
	// ErrNoResources is returned when a run has projects but no resource to
	// place them on.
	ErrNoResources = errors.New("planner: no resources")
	// ErrInvariant signals a solved model that contradicts its own encoding.
	// It always indicates a modelling bug.
	ErrInvariant = errors.New("planner: invariant violated")
)
