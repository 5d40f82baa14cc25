// Command demo wires a Client against a real HTTP endpoint, with logging,
// metrics, and tracing hooks attached, as a worked example of assembling
// the resilience core end to end.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	aresilient "github.com/durandtibo/aresilient-go"
	"github.com/durandtibo/aresilient-go/internal/telemetry"
)

func main() {
	telemetry.InitLogger(logrus.InfoLevel)

	tracerProvider := telemetry.InitTracerProvider()
	defer tracerProvider.Shutdown(context.Background())

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		_ = http.ListenAndServe(":9090", mux)
	}()

	breaker := aresilient.NewBreaker(aresilient.BreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	})
	aresilient.BreakerMetrics(metrics, "demo-api", breaker)

	retry := aresilient.DefaultRetryConfig().
		WithBackoff(aresilient.NewExponentialBackoff(200*time.Millisecond, 5*time.Second)).
		WithJitterFactor(0.2).
		WithMaxTotalTime(30 * time.Second).
		WithBreaker(breaker).
		WithHooks(aresilient.Composite(
			aresilient.LoggingHooks(),
			aresilient.MetricsHooks(metrics),
			aresilient.RequestIDHook(),
		))

	config := aresilient.DefaultClientConfig().
		WithBaseURL("https://httpbin.org").
		WithTimeout(10 * time.Second).
		WithRetry(retry)

	httpTransport := aresilient.NewNetHTTPTransport(config.BaseURL, config.Headers, config.Timeout, nil)
	transport := aresilient.NewTracingTransport(httpTransport, aresilient.NewTracingHooks())

	client, err := aresilient.NewClient(config, transport)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build client:", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resp, err := client.Do(ctx, aresilient.RequestSpec{
		Target: "/status/503",
		Method: http.MethodGet,
	}, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "call failed:", err)
		os.Exit(1)
	}
	fmt.Println("status:", resp.Status)
}
