package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/resplan/core/metrics"
	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/infra/logger"
)

// InfluxSink writes scheduling runs to an InfluxDB v2 bucket: one
// schedule_run point per run and one schedule_assignment point per record.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint. A trailing
// /api/v2/write is accepted and stripped.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the instance first and returns a NopSink
// when the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.RunRecorder {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run summary and its assignments in one request.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	at := ev.Time
	if at.IsZero() {
		at = time.Now()
	}
	points := make([]*write.Point, 0, len(ev.Assignments)+1)
	points = append(points, write.NewPointWithMeasurement("schedule_run").
		AddTag("run_id", ev.RunID).
		AddTag("status", ev.Status).
		AddField("objective", ev.Objective).
		AddField("best_bound", ev.BestBound).
		AddField("sat_calls", ev.SATCalls).
		AddField("solve_ms", round3(float64(ev.SolveTime)/float64(time.Millisecond))).
		AddField("free", ev.FreeProjects).
		AddField("scheduled", ev.Scheduled).
		AddField("preassigned", ev.Preassigned).
		AddField("on_hold", ev.OnHold).
		AddField("unassigned", ev.Unassigned).
		AddField("records", ev.Records).
		SetTime(at))
	for _, a := range ev.Assignments {
		points = append(points, write.NewPointWithMeasurement("schedule_assignment").
			AddTag("run_id", ev.RunID).
			AddTag("resource", a.Resource).
			AddTag("project_id", a.ProjectID).
			AddTag("label", a.Label).
			AddField("start", a.Start.Format(model.DateLayout)).
			AddField("end", a.End.Format(model.DateLayout)).
			AddField("days", a.Days).
			SetTime(at))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
