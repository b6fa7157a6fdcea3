package logger

// Logger exposes logging methods for common severity levels. The planning
// core only depends on this interface.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// With returns a logger that adds fields to every structured entry when l
// supports it, and l itself otherwise.
func With(l Logger, fields map[string]any) Logger {
	if fl, ok := l.(FieldLogger); ok {
		return fl.With(fields)
	}
	return l
}

// FieldLogger can derive a child logger carrying extra fields. It is
// implemented by the zerolog adapter.
type FieldLogger interface {
	With(fields map[string]any) Logger
}
