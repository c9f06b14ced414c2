package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements Logger on top of a logrus entry.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter creates a logger for the given level ("debug", "info",
// "warn", "error") and format ("json" or "text"). An unknown level falls back
// to info.
func NewLogrusAdapter(level, format string) Logger {
	return NewLogrusAdapterWithOutput(level, format, nil)
}

// NewLogrusAdapterWithOutput is NewLogrusAdapter writing to w. A nil writer
// keeps logrus' default of stderr.
func NewLogrusAdapterWithOutput(level, format string, w io.Writer) Logger {
	logger := logrus.New()
	if w != nil {
		logger.SetOutput(w)
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &LogrusAdapter{logger: logger, entry: logrus.NewEntry(logger)}
}

// NewLogrusAdapterFromLogger wraps an existing logrus logger.
func NewLogrusAdapterFromLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogrusAdapter{logger: logger, entry: logrus.NewEntry(logger)}
}

func (l *LogrusAdapter) Debug(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Debug(msg)
}

func (l *LogrusAdapter) Info(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Info(msg)
}

func (l *LogrusAdapter) Warn(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Warn(msg)
}

func (l *LogrusAdapter) Error(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Error(msg)
}

func (l *LogrusAdapter) WithError(err error) Logger {
	return &LogrusAdapter{logger: l.logger, entry: l.entry.WithError(err)}
}

func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return &LogrusAdapter{logger: l.logger, entry: l.entry.WithField(key, value)}
}

func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return &LogrusAdapter{logger: l.logger, entry: l.entry.WithFields(convertFields(fields))}
}

func (l *LogrusAdapter) Fatal(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Fatal(msg)
}

func (l *LogrusAdapter) Fatalf(msg string, args ...interface{}) {
	l.entry.Fatalf(msg, args...)
}

// Writer returns an io.Writer that logs each line at the given level. The
// HTTP server uses it for net/http's error log.
func (l *LogrusAdapter) Writer(level string) io.WriteCloser {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.ErrorLevel
	}
	return l.entry.WriterLevel(lvl)
}

func convertFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
