package aresilient

import (
	"context"
	"time"
)

// Result carries the outcome of an AsyncExecutor.Execute call, delivered
// once on the channel Execute returns.
type Result struct {
	Response *Response
	Err      error
}

// AsyncExecutor is the cooperative-suspended counterpart to Executor.
// Rather than blocking the calling goroutine, Execute returns immediately
// with a channel that receives exactly one Result; the attempt loop itself
// runs on its own goroutine and suspends at exactly two points: the
// transport invocation and the delay sleep. It shares decide() and
// computeDelay() with the blocking Executor verbatim; this file differs
// from executor.go only in how it yields control at those two points, so
// the two models cannot diverge in observable behavior.
type AsyncExecutor struct {
	transport AsyncTransport
}

// NewAsyncExecutor builds an AsyncExecutor over the given async transport.
func NewAsyncExecutor(transport AsyncTransport) *AsyncExecutor {
	return &AsyncExecutor{transport: transport}
}

// Execute starts spec's attempt loop on a new goroutine and returns a
// channel that receives the single terminal Result. The channel is
// buffered so the loop's goroutine never blocks on send even if the caller
// abandons the channel after cancelling ctx.
func (e *AsyncExecutor) Execute(ctx context.Context, spec RequestSpec, config *RetryConfig) <-chan Result {
	out := make(chan Result, 1)
	go e.run(ctx, spec, config, out)
	return out
}

func (e *AsyncExecutor) run(ctx context.Context, spec RequestSpec, config *RetryConfig, out chan<- Result) {
	startTime := time.Now()
	maxRetries := config.MaxRetries
	breaker := resolveBreaker(config)

	for attempt := 1; attempt <= maxRetries+1; attempt++ {
		permit := breaker.TryAcquire(time.Now())
		if !permit.Admitted() {
			err := NewError(BreakerOpen, nil).
				WithRequest(spec.Method, spec.Target).
				WithAttempts(attempt).
				WithElapsed(time.Since(startTime))
			config.Hooks.fireFailure(FailureInfo{
				URL: spec.Target, Method: spec.Method,
				Attempt: attempt, MaxRetries: maxRetries,
				Err: err, TotalTime: err.Elapsed,
			})
			out <- Result{Err: err}
			return
		}

		config.Hooks.fireRequest(RequestInfo{
			URL: spec.Target, Method: spec.Method,
			Attempt: attempt, MaxRetries: maxRetries,
		})

		// Suspension point 1: the transport call. A channel-based send
		// lets other goroutines run while this one waits, the same
		// cooperative-yield the blocking Executor achieves by parking an
		// OS thread instead.
		outcome, cancelled := sendOrCancel(ctx, e.transport, spec)
		if cancelled {
			out <- Result{Err: ctx.Err()}
			return
		}

		breaker.Record(outcome, time.Now())

		decision := decide(outcome, attempt, config)

		switch {
		case decision.IsReturn():
			resp, _ := decision.Response()
			config.Hooks.fireSuccess(ResponseInfo{
				URL: spec.Target, Method: spec.Method,
				Attempt: attempt, MaxRetries: maxRetries,
				Response: resp, TotalTime: time.Since(startTime),
			})
			out <- Result{Response: resp}
			return

		case decision.IsFail():
			elapsed := time.Since(startTime)
			err := decision.Err().
				WithRequest(spec.Method, spec.Target).
				WithAttempts(attempt).
				WithElapsed(elapsed)
			config.Hooks.fireFailure(FailureInfo{
				URL: spec.Target, Method: spec.Method,
				Attempt: attempt, MaxRetries: maxRetries,
				Err: err, Status: err.Status, TotalTime: elapsed,
			})
			out <- Result{Err: err}
			return

		default: // decision.IsRetry()
			reason := decision.Reason()
			delay := computeDelay(config.Backoff, attempt, outcome, config.JitterFactor, config.MaxWaitTime, time.Now())

			if config.hasTimeBudget() && time.Since(startTime)+delay > config.MaxTotalTime {
				elapsed := time.Since(startTime)
				err := NewError(BudgetExhausted, nil).
					WithRequest(spec.Method, spec.Target).
					WithAttempts(attempt).
					WithElapsed(elapsed).
					WithStatus(reason.Status)
				config.Hooks.fireFailure(FailureInfo{
					URL: spec.Target, Method: spec.Method,
					Attempt: attempt, MaxRetries: maxRetries,
					Err: err, Status: reason.Status, TotalTime: elapsed,
				})
				out <- Result{Err: err}
				return
			}

			config.Hooks.fireRetry(RetryInfo{
				URL: spec.Target, Method: spec.Method,
				Attempt: attempt, MaxRetries: maxRetries,
				WaitTime: delay, Status: reason.Status, ErrKind: reason.ErrKind,
			})

			// Suspension point 2: the delay sleep.
			if !sleepOrCancel(ctx, delay) {
				out <- Result{Err: ctx.Err()}
				return
			}
		}
	}

	elapsed := time.Since(startTime)
	out <- Result{Err: NewError(RetriesExhausted, nil).
		WithRequest(spec.Method, spec.Target).
		WithAttempts(maxRetries + 1).
		WithElapsed(elapsed)}
}

// sendOrCancel races the transport call against ctx cancellation. The
// transport call itself is not interrupted mid-flight; once it completes
// it is simply discarded if the caller already cancelled.
func sendOrCancel(ctx context.Context, transport AsyncTransport, spec RequestSpec) (AttemptOutcome, bool) {
	done := make(chan AttemptOutcome, 1)
	go func() { done <- transport.Send(ctx, spec) }()

	select {
	case outcome := <-done:
		return outcome, false
	case <-ctx.Done():
		return AttemptOutcome{}, true
	}
}
