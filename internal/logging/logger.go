// Package logging is the structured logging seam of the application.
// Components take a Logger in their constructor and never reach for a
// global; the process wires a logrus-backed Logger, tests a MockLogger.
package logging

// Logger is the structured logger every component writes to.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError, WithField and WithFields return a derived Logger whose
	// entries all carry the given error or fields.
	WithError(err error) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields ...Field) Logger
}

// Field is one key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
