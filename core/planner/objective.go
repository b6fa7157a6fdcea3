package planner

import "github.com/kilianp07/resplan/core/solver"

// buildObjective maximises the number of free projects claimed by a resource.
// Preassigned and on-hold projects never contribute.
func buildObjective(m solver.Model, enc Encoding) solver.LinearExpr {
	obj := solver.SumBools(enc.Indicators...)
	m.Maximize(obj)
	return obj
}
