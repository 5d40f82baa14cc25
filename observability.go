package aresilient

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/durandtibo/aresilient-go/internal/telemetry"
)

// LoggingHooks builds a *Hooks that reports the call lifecycle to the
// package's logrus logger: attempts at debug, retries at warn, terminal
// success at info, terminal failure at error.
func LoggingHooks() *Hooks {
	return &Hooks{
		OnRequest: func(info RequestInfo) {
			telemetry.L().WithFields(map[string]interface{}{
				"method":      info.Method,
				"target":      info.URL,
				"attempt":     info.Attempt,
				"max_retries": info.MaxRetries,
			}).Debug("attempt started")
		},
		OnRetry: func(info RetryInfo) {
			telemetry.L().WithFields(map[string]interface{}{
				"method":   info.Method,
				"target":   info.URL,
				"attempt":  info.Attempt,
				"wait":     info.WaitTime.String(),
				"status":   info.Status,
				"err_kind": info.ErrKind,
			}).Warn("retrying")
		},
		OnSuccess: func(info ResponseInfo) {
			telemetry.L().WithFields(map[string]interface{}{
				"method":  info.Method,
				"target":  info.URL,
				"attempt": info.Attempt,
				"status":  info.Response.Status,
				"elapsed": info.TotalTime.String(),
			}).Info("call succeeded")
		},
		OnFailure: func(info FailureInfo) {
			telemetry.L().WithFields(map[string]interface{}{
				"method":  info.Method,
				"target":  info.URL,
				"attempt": info.Attempt,
				"kind":    info.Err.Kind.String(),
				"elapsed": info.TotalTime.String(),
			}).Error("call failed")
		},
	}
}

// MetricsHooks builds a *Hooks that reports the call lifecycle to a
// telemetry.Metrics collector set.
func MetricsHooks(m *telemetry.Metrics) *Hooks {
	return &Hooks{
		OnRequest: func(info RequestInfo) {
			m.AttemptsTotal.WithLabelValues(info.Method, info.URL).Inc()
		},
		OnRetry: func(info RetryInfo) {
			reason := info.ErrKind
			if reason == "" {
				reason = strconv.Itoa(info.Status)
			}
			m.RetriesTotal.WithLabelValues(info.Method, info.URL, reason).Inc()
		},
		OnSuccess: func(info ResponseInfo) {
			m.AttemptDuration.WithLabelValues(info.Method, info.URL).Observe(time.Duration(info.Response.Elapsed).Seconds())
		},
		OnFailure: func(info FailureInfo) {
			m.FailuresTotal.WithLabelValues(info.Method, info.URL, info.Err.Kind.String()).Inc()
		},
	}
}

// BreakerMetrics wires a Breaker's state transitions into m, reporting both
// the current gauge value and a trip counter. Call once per breaker the
// client constructs.
func BreakerMetrics(m *telemetry.Metrics, target string, b *Breaker) {
	b.OnTransition(func(from, to CircuitState) {
		m.BreakerState.WithLabelValues(target).Set(float64(to))
		if to == Open {
			m.BreakerTripsTotal.WithLabelValues(target).Inc()
		}
	})
}

// TracingHooks opens one otel span per attempt. It is not a *Hooks: the
// Hooks ABI's RequestInfo carries no context, so spans are opened through
// StartAttempt, which returns the span context and a finish function, and
// is called directly by a transport wrapper around Send (see
// TracingTransport) rather than through the plain Hooks fields.
type TracingHooks struct {
	tracer *telemetry.Tracer
}

// NewTracingHooks builds a TracingHooks using the package tracer.
func NewTracingHooks() *TracingHooks {
	return &TracingHooks{tracer: telemetry.NewTracer()}
}

// StartAttempt opens a span for one attempt; the returned finish function
// must be called exactly once with the attempt's resulting status (0 if
// none) and error (nil on success).
func (t *TracingHooks) StartAttempt(ctx context.Context, method, target string, attempt int) (context.Context, func(status int, err error)) {
	return t.tracer.AttemptSpan(ctx, method, target, attempt)
}

// TracingTransport wraps a Transport, opening one otel span per Send call
// via TracingHooks and closing it with the resulting status/error. Compose
// it around NetHTTPTransport (or any Transport) before handing it to
// NewClient so every attempt, including retries, gets its own span. Send
// does not receive the attempt number, so every span's aresilient.attempt
// attribute is 0.
type TracingTransport struct {
	inner Transport
	hooks *TracingHooks
}

// NewTracingTransport wraps inner with span instrumentation.
func NewTracingTransport(inner Transport, hooks *TracingHooks) *TracingTransport {
	return &TracingTransport{inner: inner, hooks: hooks}
}

// Send opens a span, delegates to the wrapped transport, and closes the
// span with the observed status or transport error.
func (t *TracingTransport) Send(ctx context.Context, spec RequestSpec) AttemptOutcome {
	spanCtx, finish := t.hooks.StartAttempt(ctx, spec.Method, spec.Target, 0)
	outcome := t.inner.Send(spanCtx, spec)
	if resp, ok := outcome.Response(); ok {
		finish(resp.Status, nil)
	} else {
		finish(0, outcome.Cause())
	}
	return outcome
}

// Close delegates to the wrapped transport.
func (t *TracingTransport) Close() error { return t.inner.Close() }

// RequestIDHook stamps each observed request with a fresh request ID. The
// ID is logged but not threaded back into RequestSpec; callers wanting it
// on the wire should generate their own and set it as a header in Params
// before calling Do.
func RequestIDHook() *Hooks {
	return &Hooks{
		OnRequest: func(info RequestInfo) {
			telemetry.L().WithField("request_id", uuid.NewString()).
				WithField("target", info.URL).Trace("request id issued")
		},
	}
}
