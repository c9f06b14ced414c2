// Package logging provides the structured logging interface used across the
// extractor, backed by logrus in production and by MockLogger in tests.
package logging

// Logger is the structured logger handed to every component.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a derived logger carrying err.
	WithError(err error) Logger
	// WithField returns a derived logger carrying one field.
	WithField(key string, value interface{}) Logger
	// WithFields returns a derived logger carrying several fields.
	WithFields(fields ...Field) Logger

	// Fatal logs and exits the process.
	Fatal(msg string, fields ...Field)
	// Fatalf logs a formatted message and exits the process.
	Fatalf(msg string, args ...interface{})
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// OrDefault returns l, or an info-level text logger when l is nil.
func OrDefault(l Logger) Logger {
	if l == nil {
		return NewLogrusAdapter("info", "text")
	}
	return l
}
