// Package xlog adapts dc4eu-vc/pkg/logger to this module's scope: the same
// logr-over-zap/zapr shape and Info/Debug/Trace leveling, trimmed of the
// teacher's production-vs-development and file-output configuration, since
// the pure core (spec.md §5) never logs and the demo program has no
// deployment environment to distinguish — it always logs to stderr at
// development verbosity.
package xlog

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

// Log wraps logr.Logger the way the teacher's pkg/logger.Log does, so
// callers get named sub-loggers and leveled helpers instead of the raw
// logr API.
type Log struct {
	logr.Logger
}

// New creates a development-configured logger named name.
func New(name string) (*Log, error) {
	zc := zap.NewDevelopmentConfig()
	z, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return &Log{Logger: zapr.NewLogger(z).WithName(name)}, nil
}

// Discard returns a Log that drops every record, for callers that don't
// want to configure logging (e.g. library defaults).
func Discard() *Log {
	return &Log{Logger: logr.Discard()}
}

// New returns a named sub-logger of l.
func (l *Log) New(name string) *Log {
	return &Log{Logger: l.WithName(name)}
}

// Info logs at the default verbosity.
func (l *Log) Info(msg string, keysAndValues ...any) {
	l.Logger.V(0).Info(msg, keysAndValues...)
}

// Debug logs at elevated verbosity.
func (l *Log) Debug(msg string, keysAndValues ...any) {
	l.Logger.V(1).Info(msg, keysAndValues...)
}

// Trace logs at the most detailed verbosity.
func (l *Log) Trace(msg string, keysAndValues ...any) {
	l.Logger.V(2).Info(msg, keysAndValues...)
}
