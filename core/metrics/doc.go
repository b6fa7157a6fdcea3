// Package metrics defines the run events emitted by the planner and the
// sink interfaces that record them. Implementations live in infra/metrics;
// several sinks can be combined with a MultiSink there.
package metrics
