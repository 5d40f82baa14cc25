package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/durandtibo/aresilient-go"

// InitTracerProvider installs a process-wide otel SDK TracerProvider with
// an always-on sampler and no exporter wired by default, registering it as
// the global provider NewTracer reads from. Callers that want spans to
// leave the process should attach a real exporter via additional
// sdktrace.TracerProviderOption values before calling otel.SetTracerProvider
// themselves; this helper covers the common case of local/demo use where
// otel's span recording and context propagation are exercised without
// shipping data anywhere.
func InitTracerProvider() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	return tp
}

// Tracer wraps an otel Tracer with the span shape the resilience hooks
// need: one span per attempt, tagged with method/target/attempt and closed
// with a status derived from the attempt's outcome.
type Tracer struct {
	tr trace.Tracer
}

// NewTracer returns a Tracer sourced from the global otel TracerProvider.
// Call this after the caller's main has installed its own provider (see
// cmd/demo/main.go) so spans land in the configured exporter.
func NewTracer() *Tracer {
	return &Tracer{tr: otel.Tracer(tracerName)}
}

// AttemptSpan starts a span for one attempt and returns the context callers
// should pass to the transport, plus a finish function that records the
// outcome and ends the span.
func (t *Tracer) AttemptSpan(ctx context.Context, method, target string, attempt int) (context.Context, func(status int, err error)) {
	ctx, span := t.tr.Start(ctx, "aresilient.attempt",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("aresilient.target", target),
			attribute.Int("aresilient.attempt", attempt),
		),
	)
	return ctx, func(status int, err error) {
		if status != 0 {
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
