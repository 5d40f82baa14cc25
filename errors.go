package aresilient

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies why a call ultimately failed. Kinds are stable
// across the package's evolution; callers should switch on Kind rather
// than comparing error strings.
type ErrorKind int

const (
	// NonRetryableStatus: a response with a status outside the retryable
	// set, with no predicate overriding it (or a predicate that said no).
	NonRetryableStatus ErrorKind = iota
	// RetriesExhausted: the retry limit was reached while the last
	// outcome was itself retryable.
	RetriesExhausted
	// BudgetExhausted: scheduling the next delay would exceed max_total_time.
	BudgetExhausted
	// BreakerOpen: the circuit breaker rejected admission.
	BreakerOpen
	// TransportFatal: a transport error the policy treats as non-retryable.
	// A retryable transport error that exhausts the attempt budget is
	// reported as RetriesExhausted instead.
	TransportFatal
	// PredicateError: the user-supplied predicate returned an error.
	PredicateError
)

// String names the kind for logging and error messages.
func (k ErrorKind) String() string {
	switch k {
	case NonRetryableStatus:
		return "non_retryable_status"
	case RetriesExhausted:
		return "retries_exhausted"
	case BudgetExhausted:
		return "budget_exhausted"
	case BreakerOpen:
		return "breaker_open"
	case TransportFatal:
		return "transport_fatal"
	case PredicateError:
		return "predicate_error"
	default:
		return "unknown"
	}
}

// Error is the single error type the core emits. It exposes originating
// method, URL, last status code (if any), last transport cause (if any),
// attempt count, and total elapsed time.
type Error struct {
	Kind     ErrorKind
	Method   string
	URL      string
	Status   int // 0 when no response was involved
	Attempts int
	Elapsed  time.Duration
	Cause    error
}

// NewError constructs a bare Error of the given kind wrapping cause. Callers
// chain With* to attach call context before returning it from the Executor.
func NewError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// WithRequest attaches the method/URL the call addressed.
func (e *Error) WithRequest(method, url string) *Error {
	e.Method = method
	e.URL = url
	return e
}

// WithStatus attaches the last observed HTTP status code.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// WithAttempts attaches the number of attempts issued before failing.
func (e *Error) WithAttempts(n int) *Error {
	e.Attempts = n
	return e
}

// WithElapsed attaches total wall-clock time spent on the call.
func (e *Error) WithElapsed(d time.Duration) *Error {
	e.Elapsed = d
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("aresilient: %s: %s %s (attempts=%d, elapsed=%s",
		e.Kind, e.Method, e.URL, e.Attempts, e.Elapsed)
	if e.Status != 0 {
		msg += fmt.Sprintf(", status=%d", e.Status)
	}
	msg += ")"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the chained root cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same Kind, enabling
// errors.Is(err, aresilient.NewError(aresilient.BreakerOpen, nil)) style
// checks without comparing full struct contents.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}
