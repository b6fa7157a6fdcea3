package metrics

import "time"

// AssignmentRecord is one line of a reconstructed schedule.
type AssignmentRecord struct {
	Resource  string
	ProjectID string
	Label     string
	Start     time.Time
	End       time.Time
	Days      int
}

// RunEvent summarises one scheduling run.
type RunEvent struct {
	RunID        string
	Status       string
	Objective    int64
	BestBound    int64
	SATCalls     int64
	SolveTime    time.Duration
	FreeProjects int
	Scheduled    int
	Preassigned  int
	OnHold       int
	Unassigned   int
	Records      int
	// Utilization maps resource names to occupied capacity share.
	Utilization map[string]float64
	Assignments []AssignmentRecord
	Time        time.Time
}

// RunRecorder records scheduling runs for observability purposes.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// Flusher is implemented by sinks that buffer or hold connections.
type Flusher interface {
	Close() error
}

// NopSink implements RunRecorder with a no-op method.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error { return nil }
