// Package planner turns a dataset of projects and resources into a
// constraint model, solves it and reads the schedule back.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/resplan/core/logger"
	"github.com/kilianp07/resplan/core/metrics"
	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/solver"
	"github.com/kilianp07/resplan/core/timeline"
)

// ModelFactory returns a fresh, empty model. It is called once per run.
type ModelFactory func() solver.Model

// Planner runs the classify, encode, solve and reconstruct pipeline.
type Planner struct {
	newModel ModelFactory
	log      logger.Logger
	sink     metrics.RunRecorder
	now      func() time.Time
}

// New creates a Planner. A nil sink disables run metrics.
func New(newModel ModelFactory, log logger.Logger, sink metrics.RunRecorder) *Planner {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Planner{newModel: newModel, log: log, sink: sink, now: time.Now}
}

// Outcome is the result of one run. Schedule and Summary are empty when no
// solution was found.
type Outcome struct {
	RunID     string
	Status    solver.Status
	Objective int64
	BestBound int64
	SATCalls  int64
	SolveTime time.Duration
	Timeline  timeline.Timeline
	Partition Partition
	Schedule  Schedule
	Summary   Summary
}

// Found reports whether the solver returned an assignment.
func (o *Outcome) Found() bool {
	return o.Status == solver.StatusOptimal || o.Status == solver.StatusFeasible
}

// Run schedules ds. An empty project set returns timeline.ErrNoProjects.
// INFEASIBLE and UNKNOWN solves are not errors; check Outcome.Found.
func (p *Planner) Run(ctx context.Context, ds model.Dataset) (*Outcome, error) {
	runID := uuid.NewString()
	log := logger.With(p.log, map[string]any{"run_id": runID})

	if len(ds.Projects) == 0 {
		return nil, timeline.ErrNoProjects
	}
	if len(ds.Resources) == 0 {
		return nil, ErrNoResources
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	part := Classify(ds, log)
	tl, err := timeline.New(ds.Projects)
	if err != nil {
		return nil, err
	}
	log.Infof("scheduling %d project(s) on %d resource(s) over %d day(s) from %s",
		len(ds.Projects), len(ds.Resources), tl.Horizon, tl.Min.Format(model.DateLayout))

	m := p.newModel()
	vars := declareVariables(m, tl, ds, part)
	enc := encodeConstraints(m, tl, ds, part, vars, log)
	buildObjective(m, enc)

	res, err := m.Solve(ctx)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	out := &Outcome{
		RunID:     runID,
		Status:    res.Status,
		Objective: res.Objective,
		BestBound: res.BestBound,
		SATCalls:  res.Calls,
		SolveTime: res.WallTime,
		Timeline:  tl,
		Partition: part,
	}
	if !out.Found() {
		log.Warnf("no solution found (status %s)", res.Status)
		p.record(log, out)
		return out, nil
	}

	free := int64(len(part.IDs(ClassFree)))
	if res.Objective < 0 || res.Objective > free {
		return nil, fmt.Errorf("%w: objective %d outside [0, %d]", ErrInvariant, res.Objective, free)
	}
	sched, err := reconstruct(res, tl, ds, part, vars, enc)
	if err != nil {
		return nil, err
	}
	out.Schedule = sched
	out.Summary = summarize(ds, tl, part, sched)
	log.Infof("status %s: %d of %d free project(s) scheduled, %d record(s) in total",
		res.Status, res.Objective, free, sched.Total)
	for _, id := range sched.Unassigned {
		log.Debugf("[No Valid Assignment] %s", id)
	}
	p.record(log, out)
	return out, nil
}

// record forwards the run to the metrics sink. Sink failures are logged only.
func (p *Planner) record(log logger.Logger, out *Outcome) {
	if err := p.sink.RecordRun(NewRunEvent(out, p.now())); err != nil {
		log.Errorf("record run metrics: %v", err)
	}
}

// NewRunEvent flattens an outcome into a metrics event.
func NewRunEvent(out *Outcome, at time.Time) metrics.RunEvent {
	ev := metrics.RunEvent{
		RunID:        out.RunID,
		Status:       out.Status.String(),
		Objective:    out.Objective,
		BestBound:    out.BestBound,
		SATCalls:     out.SATCalls,
		SolveTime:    out.SolveTime,
		FreeProjects: len(out.Partition.IDs(ClassFree)),
		Scheduled:    out.Summary.Scheduled,
		Preassigned:  out.Summary.Preassigned,
		OnHold:       out.Summary.OnHold,
		Unassigned:   len(out.Schedule.Unassigned),
		Records:      out.Schedule.Total,
		Utilization:  out.Summary.Utilization,
		Time:         at,
	}
	for _, rs := range out.Schedule.Resources {
		for _, a := range rs.Assignments {
			ev.Assignments = append(ev.Assignments, metrics.AssignmentRecord{
				Resource:  a.Resource,
				ProjectID: a.ProjectID,
				Label:     string(a.Label),
				Start:     a.StartDate,
				End:       a.EndDate,
				Days:      a.Days,
			})
		}
	}
	return ev
}

// IsNothingToSchedule reports whether err means the input had no projects.
func IsNothingToSchedule(err error) bool {
	return errors.Is(err, timeline.ErrNoProjects)
}
