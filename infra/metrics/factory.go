package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/resplan/core/factory"
	coremetrics "github.com/kilianp07/resplan/core/metrics"
)

// init registers the built-in sinks: nop, prometheus and influx.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.RunRecorder, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterSink("prometheus", func(conf map[string]any) (coremetrics.RunRecorder, error) {
		var c struct {
			Textfile string `json:"textfile"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		sink, err := NewPromSinkWithRegistry(prometheus.DefaultRegisterer, c.Textfile)
		if err != nil {
			return nil, err
		}
		return sink, nil
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.RunRecorder, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
