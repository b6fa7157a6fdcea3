// Package app wires configuration, data loading, the planner and the output
// side (report, metrics, publishing) into one scheduling service.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kilianp07/resplan/config"
	coremetrics "github.com/kilianp07/resplan/core/metrics"
	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/planner"
	"github.com/kilianp07/resplan/core/solver"
	"github.com/kilianp07/resplan/infra/cpsolver"
	"github.com/kilianp07/resplan/infra/loader"
	"github.com/kilianp07/resplan/infra/logger"
	_ "github.com/kilianp07/resplan/infra/metrics" // registers the built-in sinks
	"github.com/kilianp07/resplan/infra/mqtt"
	"github.com/kilianp07/resplan/pkg/export"
)

// Service runs scheduling passes from a configuration.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	planner   *planner.Planner
	sink      coremetrics.RunRecorder
	publisher *mqtt.Publisher
}

var newPublisher = mqtt.NewPublisher

// New creates a Service. The MQTT publisher connects here when configured.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log := logger.New("service")
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	engineLog := logger.New("cpsolver")
	opts := cpsolver.Options{
		TimeLimit:      cfg.Solver.TimeLimit(),
		CallLimit:      cfg.Solver.CallLimit,
		DisableLPBound: cfg.Solver.DisableLPBound,
		Logger:         engineLog,
	}
	svc := &Service{
		cfg:  cfg,
		log:  log,
		sink: sink,
		planner: planner.New(func() solver.Model { return cpsolver.New(opts) },
			logger.New("planner"), sink),
	}
	if cfg.Publish.Enabled() {
		pub, err := newPublisher(cfg.Publish)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Load reads the configured input documents.
func (s *Service) Load() (model.Dataset, error) {
	ds, err := loader.Load(loader.Paths{
		Projects:  s.cfg.Data.Projects,
		Resources: s.cfg.Data.Resources,
		Holidays:  s.cfg.Data.Holidays,
	})
	if err != nil {
		return ds, fmt.Errorf("load data: %w", err)
	}
	s.log.Infof("loaded %d project(s), %d resource(s), %d holiday(s)",
		len(ds.Projects), len(ds.Resources), len(ds.Holidays))
	return ds, nil
}

// Schedule loads the data and runs the planner once.
func (s *Service) Schedule(ctx context.Context) (*planner.Outcome, error) {
	ds, err := s.Load()
	if err != nil {
		return nil, err
	}
	return s.planner.Run(ctx, ds)
}

// Emit writes the report in the configured format, to the configured path or
// to stdout, and publishes the JSON document when MQTT is enabled.
func (s *Service) Emit(ctx context.Context, out *planner.Outcome, stdout io.Writer) (err error) {
	w := stdout
	if s.cfg.Output.Path != "" {
		f, ferr := os.Create(s.cfg.Output.Path)
		if ferr != nil {
			return fmt.Errorf("create output: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if err := export.Write(w, s.cfg.Output.Format, out); err != nil {
		return fmt.Errorf("write %s report: %w", s.cfg.Output.Format, err)
	}
	if s.publisher == nil {
		return nil
	}
	payload, err := export.MarshalJSON(out)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	return s.publisher.Publish(ctx, payload)
}

// Close disconnects the publisher and flushes the metrics sinks.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		return f.Close()
	}
	return nil
}
