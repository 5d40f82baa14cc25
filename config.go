package aresilient

import (
	"fmt"
	"time"
)

var defaultRetryableStatuses = []int{429, 500, 502, 503, 504}

// RetryConfig is the immutable settings bundle consumed by the Executor and
// decision function. Build one with DefaultRetryConfig and customize it
// with the fluent With* methods, each of which returns a new *RetryConfig
// rather than mutating the receiver in place.
type RetryConfig struct {
	// MaxRetries is the retry cap; attempt budget is MaxRetries+1. Zero is a
	// legitimate value (a caller disabling retries, e.g. for a streaming
	// request whose body cannot be replayed), so Merge must distinguish
	// "explicitly set to zero" from "left unset"; see maxRetriesSet.
	MaxRetries    int
	maxRetriesSet bool

	// Backoff produces the delay before each retry. Required.
	Backoff Strategy

	// JitterFactor is the uniform jitter ratio applied to every computed
	// delay, in [0,1].
	JitterFactor float64

	// RetryableStatuses is consulted only when Predicate is nil.
	RetryableStatuses []int

	// Predicate, when set, overrides the default retry rules for both the
	// response and exception paths.
	Predicate Predicate

	// MaxTotalTime bounds wall-clock duration across all attempts and
	// delays. Zero means unbounded, unless it was set explicitly via
	// WithMaxTotalTime(0), which means "no delay ever permitted"; see
	// hasTimeBudget/timeBudgetSet.
	MaxTotalTime  time.Duration
	timeBudgetSet bool

	// MaxWaitTime caps any single computed delay (strategy or server hint)
	// before jitter is added. Zero means unbounded.
	MaxWaitTime time.Duration

	// Breaker, when set, brackets every attempt with TryAcquire/Record.
	// Shared by reference: multiple Clients or calls may point at the same
	// Breaker, and config merging never clones it.
	Breaker *Breaker

	// Hooks, when set, observes the call's lifecycle.
	Hooks *Hooks
}

// DefaultRetryConfig returns the package defaults: 3 retries, exponential
// backoff with a 0.3s base, zero jitter, and the standard retryable
// status set.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		maxRetriesSet:     true,
		Backoff:           NewExponentialBackoff(300*time.Millisecond, 0),
		JitterFactor:      0,
		RetryableStatuses: append([]int(nil), defaultRetryableStatuses...),
	}
}

// clone returns a shallow copy. Structural fields (Backoff, Predicate,
// Breaker, Hooks) are copied by reference; RetryableStatuses is copied by
// value since it's a slice callers might mutate independently between
// client default and per-call override.
func (c *RetryConfig) clone() *RetryConfig {
	cp := *c
	if c.RetryableStatuses != nil {
		cp.RetryableStatuses = append([]int(nil), c.RetryableStatuses...)
	}
	return &cp
}

// WithMaxRetries returns a copy with MaxRetries replaced. Passing 0
// explicitly disables retries (one attempt only), distinct from an unset
// override, matching WithMaxTotalTime's zero-value handling below.
func (c *RetryConfig) WithMaxRetries(n int) *RetryConfig {
	cp := c.clone()
	cp.MaxRetries = n
	cp.maxRetriesSet = true
	return cp
}

// WithBackoff returns a copy with Backoff replaced.
func (c *RetryConfig) WithBackoff(s Strategy) *RetryConfig {
	cp := c.clone()
	cp.Backoff = s
	return cp
}

// WithJitterFactor returns a copy with JitterFactor replaced.
func (c *RetryConfig) WithJitterFactor(f float64) *RetryConfig {
	cp := c.clone()
	cp.JitterFactor = f
	return cp
}

// WithRetryableStatuses returns a copy with RetryableStatuses replaced.
func (c *RetryConfig) WithRetryableStatuses(statuses []int) *RetryConfig {
	cp := c.clone()
	cp.RetryableStatuses = append([]int(nil), statuses...)
	return cp
}

// WithPredicate returns a copy with Predicate replaced.
func (c *RetryConfig) WithPredicate(p Predicate) *RetryConfig {
	cp := c.clone()
	cp.Predicate = p
	return cp
}

// WithMaxTotalTime returns a copy with MaxTotalTime replaced. Passing 0
// explicitly sets a zero budget under which no delay is ever permitted,
// distinct from an unset budget.
func (c *RetryConfig) WithMaxTotalTime(d time.Duration) *RetryConfig {
	cp := c.clone()
	cp.MaxTotalTime = d
	cp.timeBudgetSet = true
	return cp
}

// WithMaxWaitTime returns a copy with MaxWaitTime replaced.
func (c *RetryConfig) WithMaxWaitTime(d time.Duration) *RetryConfig {
	cp := c.clone()
	cp.MaxWaitTime = d
	return cp
}

// WithBreaker returns a copy referencing the given Breaker.
func (c *RetryConfig) WithBreaker(b *Breaker) *RetryConfig {
	cp := c.clone()
	cp.Breaker = b
	return cp
}

// WithHooks returns a copy referencing the given Hooks.
func (c *RetryConfig) WithHooks(h *Hooks) *RetryConfig {
	cp := c.clone()
	cp.Hooks = h
	return cp
}

// hasTimeBudget reports whether a wall-clock budget was explicitly set,
// including the zero-budget case.
func (c *RetryConfig) hasTimeBudget() bool {
	return c.timeBudgetSet || c.MaxTotalTime > 0
}

func (c *RetryConfig) isRetryableStatus(status int) bool {
	for _, s := range c.RetryableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Merge produces a new RetryConfig with every non-zero field of override
// replacing the corresponding field of c, right-biased: an explicit
// override value wins over the client default. MaxRetries and MaxTotalTime
// also replace when explicitly set to zero via WithMaxRetries/WithMaxTotalTime.
// Override is typically built by copying DefaultRetryConfig's zero value
// and setting only the fields a single call wants to change; fields left
// at their zero value fall through to c.
func (c *RetryConfig) Merge(override *RetryConfig) *RetryConfig {
	if override == nil {
		return c
	}
	merged := c.clone()
	if override.maxRetriesSet || override.MaxRetries != 0 {
		merged.MaxRetries = override.MaxRetries
		merged.maxRetriesSet = true
	}
	if override.Backoff != nil {
		merged.Backoff = override.Backoff
	}
	if override.JitterFactor != 0 {
		merged.JitterFactor = override.JitterFactor
	}
	if override.RetryableStatuses != nil {
		merged.RetryableStatuses = append([]int(nil), override.RetryableStatuses...)
	}
	if override.Predicate != nil {
		merged.Predicate = override.Predicate
	}
	if override.hasTimeBudget() {
		merged.MaxTotalTime = override.MaxTotalTime
		merged.timeBudgetSet = true
	}
	if override.MaxWaitTime != 0 {
		merged.MaxWaitTime = override.MaxWaitTime
	}
	if override.Breaker != nil {
		merged.Breaker = override.Breaker
	}
	if override.Hooks != nil {
		merged.Hooks = override.Hooks
	}
	return merged
}

// Validate rejects negative or out-of-range fields at construction time.
func (c *RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("aresilient: MaxRetries must be >= 0, got %d", c.MaxRetries)
	}
	if c.Backoff == nil {
		return fmt.Errorf("aresilient: Backoff strategy is required")
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		return fmt.Errorf("aresilient: JitterFactor must be in [0,1], got %f", c.JitterFactor)
	}
	if c.MaxTotalTime < 0 {
		return fmt.Errorf("aresilient: MaxTotalTime must be >= 0, got %s", c.MaxTotalTime)
	}
	if c.MaxWaitTime < 0 {
		return fmt.Errorf("aresilient: MaxWaitTime must be >= 0, got %s", c.MaxWaitTime)
	}
	return nil
}

// ClientConfig binds connection-level defaults for a Client: base URL,
// default timeout, default headers, and the RetryConfig every call starts
// from.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
	Retry   *RetryConfig
}

// DefaultClientConfig returns a ClientConfig with a 10s default timeout
// and DefaultRetryConfig.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Timeout: 10 * time.Second,
		Headers: map[string]string{},
		Retry:   DefaultRetryConfig(),
	}
}

// WithBaseURL returns a copy with BaseURL replaced.
func (c *ClientConfig) WithBaseURL(url string) *ClientConfig {
	cp := *c
	cp.BaseURL = url
	return &cp
}

// WithTimeout returns a copy with Timeout replaced.
func (c *ClientConfig) WithTimeout(d time.Duration) *ClientConfig {
	cp := *c
	cp.Timeout = d
	return &cp
}

// WithHeader returns a copy with the given header added or replaced.
func (c *ClientConfig) WithHeader(key, value string) *ClientConfig {
	cp := *c
	cp.Headers = make(map[string]string, len(c.Headers)+1)
	for k, v := range c.Headers {
		cp.Headers[k] = v
	}
	cp.Headers[key] = value
	return &cp
}

// WithRetry returns a copy with Retry replaced.
func (c *ClientConfig) WithRetry(r *RetryConfig) *ClientConfig {
	cp := *c
	cp.Retry = r
	return &cp
}

// Validate checks the client-level fields and delegates to Retry.Validate.
func (c *ClientConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("aresilient: Timeout must be >= 0, got %s", c.Timeout)
	}
	if c.Retry == nil {
		return fmt.Errorf("aresilient: Retry config is required")
	}
	return c.Retry.Validate()
}
