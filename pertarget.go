package aresilient

import "sync"

// PerTargetBreakerSet lazily creates and caches one Breaker per target key,
// so that a single Client can isolate failures on one target (say, one
// downstream host) from another sharing the same RetryConfig.
//
// All breakers in the set share the same BreakerConfig.
type PerTargetBreakerSet struct {
	config BreakerConfig

	mu       sync.RWMutex
	breakers map[string]*Breaker

	onTransition func(target string, from, to CircuitState)
}

// NewPerTargetBreakerSet builds a set that mints Breakers with config on
// first use of each key.
func NewPerTargetBreakerSet(config BreakerConfig) *PerTargetBreakerSet {
	return &PerTargetBreakerSet{
		config:   config,
		breakers: make(map[string]*Breaker),
	}
}

// OnTransition registers a callback fired whenever any breaker in the set
// changes state, tagged with the target key it belongs to.
func (s *PerTargetBreakerSet) OnTransition(fn func(target string, from, to CircuitState)) {
	s.mu.Lock()
	s.onTransition = fn
	for target, b := range s.breakers {
		target := target
		b.OnTransition(func(from, to CircuitState) {
			if fn != nil {
				fn(target, from, to)
			}
		})
	}
	s.mu.Unlock()
}

// Get returns the Breaker for key, creating it if this is the first request
// for that key. Double-checked locking: a fast read-locked lookup for the
// common case, falling back to a write lock only on first sight of a key.
func (s *PerTargetBreakerSet) Get(key string) *Breaker {
	s.mu.RLock()
	b, ok := s.breakers[key]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok = s.breakers[key]; ok {
		return b
	}
	b = NewBreaker(s.config)
	if s.onTransition != nil {
		key := key
		fn := s.onTransition
		b.OnTransition(func(from, to CircuitState) { fn(key, from, to) })
	}
	s.breakers[key] = b
	return b
}

// Keys returns the set's currently known target keys, mainly for
// diagnostics and metrics export.
func (s *PerTargetBreakerSet) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.breakers))
	for k := range s.breakers {
		keys = append(keys, k)
	}
	return keys
}

// There is no breaker interface: callers depend on the concrete
// Breaker/PerTargetBreakerSet types; the package favors concrete shared
// state here over dynamic dispatch, matching the small surface a single
// Client wires together.

// NewNoopBreaker returns a Breaker that never trips: its FailureThreshold is
// effectively infinite, so TryAcquire always admits. Used by Client when
// circuit breaking is disabled, so the executor's admission protocol stays
// uniform regardless of configuration.
func NewNoopBreaker() *Breaker {
	return NewBreaker(BreakerConfig{
		FailureThreshold: int(^uint(0) >> 1), // max int
		RecoveryTimeout:  1,
	})
}

// sharedNoopBreaker backs every call whose RetryConfig leaves Breaker nil.
// It never trips, so it adds no observable behavior of its own; its purpose
// is keeping the Executor/AsyncExecutor admission protocol unconditional
// rather than branching on whether a breaker was configured.
var sharedNoopBreaker = NewNoopBreaker()

// resolveBreaker returns config.Breaker, or sharedNoopBreaker when the
// caller didn't configure one.
func resolveBreaker(config *RetryConfig) *Breaker {
	if config.Breaker != nil {
		return config.Breaker
	}
	return sharedNoopBreaker
}
