package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/resplan/core/metrics"
)

// PromSink records scheduling runs in Prometheus metrics. When a textfile
// path is set, every run rewrites it for the node exporter textfile
// collector.
type PromSink struct {
	runs        *prometheus.CounterVec
	projects    *prometheus.GaugeVec
	objective   *prometheus.GaugeVec
	utilization *prometheus.GaugeVec
	solve       prometheus.Histogram
	satCalls    prometheus.Counter

	gatherer prometheus.Gatherer
	textfile string
}

// NewPromSink registers the run metrics on the default registerer.
func NewPromSink(textfile string) (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, textfile)
}

// NewPromSinkWithRegistry registers the run metrics on reg. A nil registerer
// defaults to the global one. The textfile is gathered from reg when it is
// also a Gatherer, and from the default gatherer otherwise.
func NewPromSinkWithRegistry(reg prometheus.Registerer, textfile string) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{textfile: textfile, gatherer: prometheus.DefaultGatherer}
	if g, ok := reg.(prometheus.Gatherer); ok {
		s.gatherer = g
	}

	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resplan_runs_total",
		Help: "Scheduling runs by solver status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.projects, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resplan_projects",
		Help: "Projects in the last run by outcome",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.objective, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resplan_objective",
		Help: "Objective value and best bound of the last run",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resplan_resource_utilization_ratio",
		Help: "Share of resource capacity-days occupied in the last run",
	}, []string{"resource"})); err != nil {
		return nil, err
	}
	if s.solve, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "resplan_solve_duration_seconds",
		Help:    "Wall time spent in the solver",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})); err != nil {
		return nil, err
	}
	if s.satCalls, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resplan_sat_calls_total",
		Help: "SAT solver calls across runs",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the metrics from ev and refreshes the textfile.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Status).Inc()
	s.projects.WithLabelValues("free").Set(float64(ev.FreeProjects))
	s.projects.WithLabelValues("scheduled").Set(float64(ev.Scheduled))
	s.projects.WithLabelValues("preassigned").Set(float64(ev.Preassigned))
	s.projects.WithLabelValues("on_hold").Set(float64(ev.OnHold))
	s.projects.WithLabelValues("unassigned").Set(float64(ev.Unassigned))
	s.objective.WithLabelValues("objective").Set(float64(ev.Objective))
	s.objective.WithLabelValues("bound").Set(float64(ev.BestBound))
	s.utilization.Reset()
	for name, u := range ev.Utilization {
		s.utilization.WithLabelValues(name).Set(u)
	}
	s.solve.Observe(ev.SolveTime.Seconds())
	s.satCalls.Add(float64(ev.SATCalls))

	if s.textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(s.textfile, s.gatherer)
}
