package aresilient

import "time"

// RequestInfo is delivered to OnRequest before each transport invocation.
type RequestInfo struct {
	URL        string
	Method     string
	Attempt    int // 1-indexed
	MaxRetries int
}

// RetryInfo is delivered to OnRetry after a Retry decision, before sleeping.
type RetryInfo struct {
	URL        string
	Method     string
	Attempt    int
	MaxRetries int
	WaitTime   time.Duration
	Status     int    // 0 if the retry was triggered by a transport error
	ErrKind    string // empty if the retry was triggered by a response status
}

// ResponseInfo is delivered to OnSuccess on the terminal Return decision.
type ResponseInfo struct {
	URL        string
	Method     string
	Attempt    int
	MaxRetries int
	Response   *Response
	TotalTime  time.Duration
}

// FailureInfo is delivered to OnFailure on the terminal Fail decision.
type FailureInfo struct {
	URL        string
	Method     string
	Attempt    int
	MaxRetries int
	Err        *Error
	Status     int
	TotalTime  time.Duration
}

// Hooks bundles the four optional lifecycle callables an Executor fires.
// Every field may be nil. Hooks are caller-supplied and must be
// thread-safe if a Client carrying them is shared across goroutines; the
// core does not serialize hook invocations.
type Hooks struct {
	OnRequest func(RequestInfo)
	OnRetry   func(RetryInfo)
	OnSuccess func(ResponseInfo)
	OnFailure func(FailureInfo)
}

func (h *Hooks) fireRequest(info RequestInfo) {
	if h != nil && h.OnRequest != nil {
		h.OnRequest(info)
	}
}

func (h *Hooks) fireRetry(info RetryInfo) {
	if h != nil && h.OnRetry != nil {
		h.OnRetry(info)
	}
}

func (h *Hooks) fireSuccess(info ResponseInfo) {
	if h != nil && h.OnSuccess != nil {
		h.OnSuccess(info)
	}
}

func (h *Hooks) fireFailure(info FailureInfo) {
	if h != nil && h.OnFailure != nil {
		h.OnFailure(info)
	}
}

// Composite fans a single lifecycle event out to multiple Hooks, isolating
// each one with a recover() so a panicking observer (a logging hook with a
// bug, say) cannot take down a sibling metrics hook or the caller's attempt
// loop.
func Composite(all ...*Hooks) *Hooks {
	return &Hooks{
		OnRequest: func(info RequestInfo) {
			for _, h := range all {
				callGuarded(func() { h.fireRequest(info) })
			}
		},
		OnRetry: func(info RetryInfo) {
			for _, h := range all {
				callGuarded(func() { h.fireRetry(info) })
			}
		},
		OnSuccess: func(info ResponseInfo) {
			for _, h := range all {
				callGuarded(func() { h.fireSuccess(info) })
			}
		},
		OnFailure: func(info FailureInfo) {
			for _, h := range all {
				callGuarded(func() { h.fireFailure(info) })
			}
		},
	}
}

func callGuarded(fn func()) {
	defer func() { recover() }()
	fn()
}
