package aresilient

import (
	"context"
	"time"
)

// Executor drives the blocking attempt loop: it consults the breaker,
// invokes the transport, consults the decision function, and
// either returns, fails, or sleeps before the next attempt. Delays block
// the calling goroutine's thread of control; callers wanting cooperative
// suspension should use AsyncExecutor instead, which shares the same
// decide()/computeDelay() core but never blocks.
type Executor struct {
	transport Transport
}

// NewExecutor builds an Executor over the given synchronous transport.
func NewExecutor(transport Transport) *Executor {
	return &Executor{transport: transport}
}

// Execute runs spec to completion under config, returning the accepted
// Response or a terminal *Error. It issues at most config.MaxRetries+1
// attempts and fires at most one of OnSuccess/OnFailure per call.
func (e *Executor) Execute(ctx context.Context, spec RequestSpec, config *RetryConfig) (*Response, error) {
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
			return nil, err
		}

		config.Hooks.fireRequest(RequestInfo{
			URL: spec.Target, Method: spec.Method,
			Attempt: attempt, MaxRetries: maxRetries,
		})

		outcome := e.transport.Send(ctx, spec)
		if ctx.Err() != nil {
			// Cancelled while the attempt was in flight: no further hooks
			// fire and the breaker does not record the attempt, matching
			// the suspended executor's cancellation path.
			return nil, ctx.Err()
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
			return resp, nil

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
			return nil, err

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
				return nil, err
			}

			config.Hooks.fireRetry(RetryInfo{
				URL: spec.Target, Method: spec.Method,
				Attempt: attempt, MaxRetries: maxRetries,
				WaitTime: delay, Status: reason.Status, ErrKind: reason.ErrKind,
			})

			if !sleepOrCancel(ctx, delay) {
				// Cancelled mid-sleep: no further hooks fire, and since no
				// attempt is in flight there is nothing for the breaker to
				// record.
				return nil, ctx.Err()
			}
		}
	}

	// Unreachable if decide() is correct: terminateOrRetry always converts
	// a would-be (max_retries+1)-th retry into a Fail decision.
	elapsed := time.Since(startTime)
	return nil, NewError(RetriesExhausted, nil).
		WithRequest(spec.Method, spec.Target).
		WithAttempts(maxRetries + 1).
		WithElapsed(elapsed)
}

// sleepOrCancel blocks for d or until ctx is done, whichever comes first.
// It reports false if ctx ended the wait early.
func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
