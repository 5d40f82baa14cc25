package aresilient

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/durandtibo/aresilient-go/internal/telemetry"
)

// captureLogs swaps telemetry's package logger output to a local logrus hook
// for the duration of the test, restoring the previous level/output after.
func captureLogs(t *testing.T) *logrustest.Hook {
	t.Helper()
	logger := telemetry.L()
	prevLevel := logger.GetLevel()
	prevOut := logger.Out
	prevHooks := logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.SetLevel(logrus.TraceLevel)
	hook := logrustest.NewLocal(logger)
	t.Cleanup(func() {
		logger.SetLevel(prevLevel)
		logger.SetOutput(prevOut)
		logger.ReplaceHooks(prevHooks)
	})
	return hook
}

func TestLoggingHooks_OnRequestLogsAttemptStarted(t *testing.T) {
	hook := captureLogs(t)
	hooks := LoggingHooks()

	hooks.fireRequest(RequestInfo{URL: "/widgets", Method: "GET", Attempt: 1, MaxRetries: 3})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "attempt started", entry.Message)
	assert.Equal(t, "GET", entry.Data["method"])
	assert.Equal(t, "/widgets", entry.Data["target"])
	assert.Equal(t, 1, entry.Data["attempt"])
}

func TestLoggingHooks_OnRetryLogsWarning(t *testing.T) {
	hook := captureLogs(t)
	hooks := LoggingHooks()

	hooks.fireRetry(RetryInfo{
		URL: "/widgets", Method: "GET", Attempt: 2, MaxRetries: 3,
		WaitTime: 500 * time.Millisecond, Status: 503,
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "retrying", entry.Message)
	assert.Equal(t, 503, entry.Data["status"])
}

func TestLoggingHooks_OnSuccessLogsInfo(t *testing.T) {
	hook := captureLogs(t)
	hooks := LoggingHooks()

	hooks.fireSuccess(ResponseInfo{
		URL: "/widgets", Method: "GET", Attempt: 1, MaxRetries: 3,
		Response: &Response{Status: 200}, TotalTime: 10 * time.Millisecond,
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "call succeeded", entry.Message)
	assert.Equal(t, 200, entry.Data["status"])
}

func TestLoggingHooks_OnFailureLogsError(t *testing.T) {
	hook := captureLogs(t)
	hooks := LoggingHooks()

	hooks.fireFailure(FailureInfo{
		URL: "/widgets", Method: "GET", Attempt: 4, MaxRetries: 3,
		Err: NewError(RetriesExhausted, nil), TotalTime: time.Second,
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "call failed", entry.Message)
	assert.Equal(t, RetriesExhausted.String(), entry.Data["kind"])
}

func TestMetricsHooks_RecordsAttemptsRetriesFailuresDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)
	hooks := MetricsHooks(m)

	hooks.fireRequest(RequestInfo{URL: "/widgets", Method: "GET", Attempt: 1, MaxRetries: 3})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AttemptsTotal.WithLabelValues("GET", "/widgets")))

	hooks.fireRetry(RetryInfo{URL: "/widgets", Method: "GET", Attempt: 1, MaxRetries: 3, Status: 503})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RetriesTotal.WithLabelValues("GET", "/widgets", "503")))

	hooks.fireRetry(RetryInfo{URL: "/widgets", Method: "GET", Attempt: 2, MaxRetries: 3, ErrKind: "timeout"})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RetriesTotal.WithLabelValues("GET", "/widgets", "timeout")))

	hooks.fireSuccess(ResponseInfo{
		URL: "/widgets", Method: "GET", Attempt: 3, MaxRetries: 3,
		Response: &Response{Status: 200}, TotalTime: 250 * time.Millisecond,
	})
	count := testutil.CollectAndCount(m.AttemptDuration, "aresilient_attempt_duration_seconds")
	assert.Equal(t, 1, count)
}

func TestMetricsHooks_RecordsFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)
	hooks := MetricsHooks(m)

	hooks.fireFailure(FailureInfo{
		URL: "/widgets", Method: "GET", Attempt: 4, MaxRetries: 3,
		Err: NewError(RetriesExhausted, nil),
	})

	got := testutil.ToFloat64(m.FailuresTotal.WithLabelValues("GET", "/widgets", RetriesExhausted.String()))
	assert.Equal(t, float64(1), got)
}

func TestBreakerMetrics_TracksStateAndTrips(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, RecoveryTimeout: time.Minute})
	BreakerMetrics(m, "host-a", b)

	now := time.Now()
	p := b.TryAcquire(now)
	require.True(t, p.Admitted())
	b.Record(failure500(), now)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.BreakerState.WithLabelValues("host-a")) == float64(Open)
	}, time.Second, time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BreakerTripsTotal.WithLabelValues("host-a")))

	later := now.Add(2 * time.Minute)
	probe := b.TryAcquire(later)
	require.True(t, probe.Admitted())
	b.Record(success(), later)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.BreakerState.WithLabelValues("host-a")) == float64(Closed)
	}, time.Second, time.Millisecond)
	// Only the single Closed/HalfOpen -> Open transition counts as a trip.
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BreakerTripsTotal.WithLabelValues("host-a")))
}

func TestTracingHooks_StartAttemptRecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prevProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prevProvider) })

	hooks := NewTracingHooks()
	ctx, finish := hooks.StartAttempt(context.Background(), "GET", "/widgets", 1)
	require.NotNil(t, ctx)
	finish(200, nil)
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "aresilient.attempt", spans[0].Name)
}

func TestTracingTransport_SendWrapsInnerAndClose(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prevProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prevProvider) })

	inner := newScriptedTransport(respOutcome(200))
	tt := NewTracingTransport(inner, NewTracingHooks())

	outcome := tt.Send(context.Background(), RequestSpec{Target: "/widgets", Method: "GET"})
	resp, ok := outcome.Response()
	require.True(t, ok)
	assert.Equal(t, 200, resp.Status)
	require.NoError(t, tp.ForceFlush(context.Background()))
	assert.Len(t, exporter.GetSpans(), 1)

	require.NoError(t, tt.Close())
}

func TestRequestIDHook_FiresWithoutPanicking(t *testing.T) {
	hook := captureLogs(t)
	hooks := RequestIDHook()

	hooks.fireRequest(RequestInfo{URL: "/widgets", Method: "GET", Attempt: 1, MaxRetries: 3})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request id issued", entry.Message)
	assert.NotEmpty(t, entry.Data["request_id"])
}
