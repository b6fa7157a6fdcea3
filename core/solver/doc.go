// Package solver declares the capability interface the planner uses to build
// and solve a constraint model. It knows nothing about projects or resources;
// any engine able to declare integer, boolean and interval variables, post
// linear, cumulative and at-most-one constraints and maximise a linear
// objective can implement Model.
//
// Handles returned by a Model are only meaningful for that Model. Solve is a
// single blocking call. An infeasible or unresolved model is reported through
// Result.Status, never as an error.
package solver
