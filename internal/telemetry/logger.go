// Package telemetry provides the ambient observability stack for the
// resilience core: structured logging, request metrics, and trace
// correlation, all reached only through aresilient.Hooks implementations
// rather than baked into the decision core.
package telemetry

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

var log = logrus.New()

// InitLogger configures the package logger with a JSON formatter and the
// given level.
func InitLogger(level logrus.Level) {
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
}

// L returns the package-wide logger, for callers wiring their own fields
// before handing it to a hook.
func L() *logrus.Logger { return log }

// WithContext attaches the active span's trace/span IDs to a log entry, so
// a retry sequence can be correlated with the trace produced by Tracer.
func WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(log)
	span := trace.SpanFromContext(ctx)
	if span == nil {
		return entry
	}
	sc := span.SpanContext()
	if !sc.IsValid() {
		return entry
	}
	return entry.WithFields(logrus.Fields{
		"trace.id": sc.TraceID().String(),
		"span.id":  sc.SpanID().String(),
	})
}

// WithFields is a thin passthrough kept for symmetry with WithContext so
// call sites do not need to import logrus directly.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}
