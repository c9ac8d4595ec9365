package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Format values accepted by Options.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options select how logs are rendered.
type Options struct {
	Level  string
	Format string
	Output io.Writer // stderr when nil
}

// NewLogrus builds the process logger. An unknown level falls back to info
// and is reported on the logger itself.
func NewLogrus(opts Options) *logrus.Logger {
	logger := logrus.New()
	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	if strings.EqualFold(opts.Format, FormatJSON) {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
		logger.WithField("level", opts.Level).Warn("Unknown log level, using info")
	}
	logger.SetLevel(level)

	return logger
}

// New returns a Logger backed by NewLogrus(opts).
func New(opts Options) Logger {
	return FromLogrus(NewLogrus(opts))
}

// FromLogrus wraps an existing logrus logger. A nil logger yields Discard().
func FromLogrus(logger *logrus.Logger) Logger {
	if logger == nil {
		return Discard()
	}
	return entryLogger{entry: logrus.NewEntry(logger)}
}

// Discard returns a Logger that drops everything. Components built without
// a logger use it.
func Discard() Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return entryLogger{entry: logrus.NewEntry(logger)}
}

// entryLogger carries its bound fields in a logrus.Entry; deriving a logger
// copies the entry, so siblings never see each other's fields.
type entryLogger struct {
	entry *logrus.Entry
}

func (l entryLogger) log(level logrus.Level, msg string, fields []Field) {
	if !l.entry.Logger.IsLevelEnabled(level) {
		return
	}
	e := l.entry
	if len(fields) > 0 {
		e = e.WithFields(toLogrus(fields))
	}
	e.Log(level, msg)
}

func (l entryLogger) Debug(msg string, fields ...Field) { l.log(logrus.DebugLevel, msg, fields) }
func (l entryLogger) Info(msg string, fields ...Field)  { l.log(logrus.InfoLevel, msg, fields) }
func (l entryLogger) Warn(msg string, fields ...Field)  { l.log(logrus.WarnLevel, msg, fields) }
func (l entryLogger) Error(msg string, fields ...Field) { l.log(logrus.ErrorLevel, msg, fields) }

func (l entryLogger) WithError(err error) Logger {
	return entryLogger{entry: l.entry.WithError(err)}
}

func (l entryLogger) WithField(key string, value interface{}) Logger {
	return entryLogger{entry: l.entry.WithField(key, value)}
}

func (l entryLogger) WithFields(fields ...Field) Logger {
	return entryLogger{entry: l.entry.WithFields(toLogrus(fields))}
}

func toLogrus(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
