package metrics

import "github.com/kilianp07/resplan/core/factory"

var sinkRegistry = factory.NewRegistry[RunRecorder]()

// RegisterSink adds a sink factory under name.
func RegisterSink(name string, f factory.Factory[RunRecorder]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink builds the sinks described by cfgs. No entry yields a NopSink and
// several entries a MultiSink.
func NewSink(cfgs []factory.ModuleConfig) (RunRecorder, error) {
	switch len(cfgs) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]RunRecorder, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}
