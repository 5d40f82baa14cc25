package aresilient

import (
	"sync"
	"time"
)

// CircuitState is one of the three states a Breaker can occupy.
//
// Transitions:
//
//	Closed   -Failure, count>=threshold-> Open
//	Open     -admission after recovery timeout-> HalfOpen (admits exactly one probe)
//	HalfOpen -Success-> Closed
//	HalfOpen -Failure-> Open
type CircuitState int

const (
	// Closed is the normal operating state: requests pass, failures are counted.
	Closed CircuitState = iota
	// Open rejects every admission attempt until the recovery timeout elapses.
	Open
	// HalfOpen admits exactly one probe attempt; all others are rejected.
	HalfOpen
)

// String returns the lowercase name of the state.
func (s CircuitState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker's thresholds and classification.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures in Closed
	// state that trips the breaker to Open. Must be positive.
	FailureThreshold int

	// RecoveryTimeout is how long the breaker stays Open before admitting
	// a HalfOpen probe. Must be positive.
	RecoveryTimeout time.Duration

	// IsFailure classifies an outcome as failure/success for breaker
	// bookkeeping. If nil, the default classifier is used: a Response
	// with status >= 500, or any TransportError/Timeout, counts as failure.
	IsFailure func(AttemptOutcome) bool
}

// DefaultBreakerConfig returns sensible defaults: 5 consecutive failures
// trip the breaker, with a 30s recovery timeout.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	}
}

func (c *BreakerConfig) classify(o AttemptOutcome) bool {
	if c.IsFailure != nil {
		return c.IsFailure(o)
	}
	return o.isFailure()
}

func (c *BreakerConfig) applyDefaults() {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.RecoveryTimeout <= 0 {
		c.RecoveryTimeout = 30 * time.Second
	}
}

// Permit is returned by Breaker.TryAcquire. A rejected permit means the
// caller must not invoke the transport; it must fire the failure hook with
// BreakerOpen and terminate the call without scheduling a retry.
type Permit struct {
	admitted bool
	// isProbe is true when this permit is the single HalfOpen probe; Record
	// must be called exactly once for a probe permit before another probe
	// can be admitted.
	isProbe bool
}

// Admitted reports whether the permit allows the attempt to proceed.
func (p Permit) Admitted() bool { return p.admitted }

// Breaker is a long-lived, shared, mutex-guarded state machine. It must
// outlive any single call and may be referenced by RetryConfig across many
// concurrent Executors. Never embed one inside an Executor.
//
// Breaker brackets exactly one transport invocation per TryAcquire/Record
// pair: TryAcquire before the attempt, Record after it resolves.
type Breaker struct {
	config BreakerConfig

	mu               sync.Mutex
	state            CircuitState
	failures         int
	lastTransition   time.Time
	halfOpenInFlight bool

	onTransition func(from, to CircuitState)
	// lastNotify is closed once the most recently scheduled onTransition
	// call has returned; the next call waits on it so callbacks run in
	// transition order.
	lastNotify chan struct{}
}

// NewBreaker creates a Breaker starting in Closed state with zero failures.
func NewBreaker(config BreakerConfig) *Breaker {
	config.applyDefaults()
	return &Breaker{config: config, state: Closed}
}

// OnTransition registers a callback invoked whenever the breaker changes
// state. The callback runs asynchronously on its own goroutine, outside the
// lock; successive callbacks run one after another in transition order.
// Intended for wiring observability hooks; at most
// one callback is kept, consistent with the breaker having a single owner
// that wires it into a Client.
func (b *Breaker) OnTransition(fn func(from, to CircuitState)) {
	b.mu.Lock()
	b.onTransition = fn
	b.mu.Unlock()
}

// State returns the breaker's current phase. Calling State does not itself
// cause the Open -> HalfOpen transition; that only happens via TryAcquire,
// so repeated State() polling cannot leak HalfOpen probes.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount returns the current consecutive-failure counter.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// TryAcquire requests admission for one attempt. See the state table on
// CircuitState: a Closed breaker always admits; an Open breaker admits only
// after RecoveryTimeout has elapsed since the last trip, and that admission
// is the single HalfOpen probe; all other HalfOpen admission attempts are
// rejected while the probe is outstanding.
func (b *Breaker) TryAcquire(now time.Time) Permit {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return Permit{admitted: true}

	case Open:
		if now.Sub(b.lastTransition) < b.config.RecoveryTimeout {
			return Permit{admitted: false}
		}
		b.transitionLocked(HalfOpen, now)
		b.halfOpenInFlight = true
		return Permit{admitted: true, isProbe: true}

	case HalfOpen:
		if b.halfOpenInFlight {
			return Permit{admitted: false}
		}
		b.halfOpenInFlight = true
		return Permit{admitted: true, isProbe: true}

	default:
		return Permit{admitted: false}
	}
}

// Record reports the outcome of an attempt admitted by a prior TryAcquire.
// It must be called exactly once per admitted permit, and never for a
// rejected one.
func (b *Breaker) Record(outcome AttemptOutcome, now time.Time) {
	failed := b.config.classify(outcome)

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.halfOpenInFlight = false
		if failed {
			b.failures++
			if b.failures >= b.config.FailureThreshold {
				b.transitionLocked(Open, now)
			}
		} else {
			b.failures = 0
		}

	case HalfOpen:
		b.halfOpenInFlight = false
		if failed {
			b.transitionLocked(Open, now)
		} else {
			b.transitionLocked(Closed, now)
		}

	case Open:
		// A stray Record for a rejected call; nothing to do.
	}
}

// Reset forces the breaker back to Closed with failure count zero. Use
// sparingly, typically only once the operator knows the outage is over.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionLocked(Closed, time.Now())
	b.halfOpenInFlight = false
}

// transitionLocked must be called with b.mu held.
func (b *Breaker) transitionLocked(to CircuitState, now time.Time) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.lastTransition = now
	b.failures = 0
	if to != HalfOpen {
		b.halfOpenInFlight = false
	}
	if b.onTransition != nil {
		cb := b.onTransition
		prev := b.lastNotify
		done := make(chan struct{})
		b.lastNotify = done
		go func() {
			if prev != nil {
				<-prev
			}
			defer close(done)
			cb(from, to)
		}()
	}
}
