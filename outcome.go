package aresilient

import (
	"io"
	"net/http"
)

// RequestSpec is the caller's intent for one logical call. It is created
// once per call, handed to the transport verbatim, and never mutated by
// the executor.
//
// Example:
//
//	spec := aresilient.RequestSpec{
//	    Target: "https://api.example.com/v1/widgets",
//	    Method: http.MethodGet,
//	    Params: map[string]interface{}{"Body": payload},
//	}
type RequestSpec struct {
	// Target is the opaque URL or resource identifier this call addresses.
	Target string

	// Method is the method tag (GET, POST, ...) reported to hooks and
	// attached to terminal errors.
	Method string

	// Params carries transport-specific parameters (body, headers,
	// query) passed through to the transport without interpretation.
	Params map[string]interface{}
}

// Response is the successful-variant payload of an AttemptOutcome.
type Response struct {
	Status  int
	Header  http.Header
	Body    io.ReadCloser
	Elapsed int64 // nanoseconds spent on this attempt, for hook records
}

// outcomeKind discriminates the AttemptOutcome sum type.
type outcomeKind int

const (
	outcomeResponse outcomeKind = iota
	outcomeTimeout
	outcomeTransportError
)

// AttemptOutcome is the tagged result of one transport invocation: exactly
// one of a Response, a transport timeout, or a transport error. Construct
// with NewResponseOutcome, NewTimeoutOutcome, or NewTransportErrorOutcome;
// the zero value is not a valid outcome.
type AttemptOutcome struct {
	kind     outcomeKind
	response *Response
	errKind  string
	cause    error
}

// NewResponseOutcome wraps a completed response as an outcome.
func NewResponseOutcome(resp *Response) AttemptOutcome {
	return AttemptOutcome{kind: outcomeResponse, response: resp}
}

// NewTimeoutOutcome reports that the transport invocation timed out.
func NewTimeoutOutcome(cause error) AttemptOutcome {
	return AttemptOutcome{kind: outcomeTimeout, cause: cause}
}

// NewTransportErrorOutcome reports a non-timeout transport failure (DNS,
// connection refused, TLS handshake, etc). errKind is a short, stable
// classifier surfaced in error context and hook records.
func NewTransportErrorOutcome(errKind string, cause error) AttemptOutcome {
	return AttemptOutcome{kind: outcomeTransportError, errKind: errKind, cause: cause}
}

// IsResponse reports whether the outcome carries a Response.
func (o AttemptOutcome) IsResponse() bool { return o.kind == outcomeResponse }

// IsTimeout reports whether the outcome is a transport timeout.
func (o AttemptOutcome) IsTimeout() bool { return o.kind == outcomeTimeout }

// IsTransportError reports whether the outcome is a non-timeout transport error.
func (o AttemptOutcome) IsTransportError() bool { return o.kind == outcomeTransportError }

// Response returns the carried response and true, or (nil, false) if this
// outcome is not the Response variant.
func (o AttemptOutcome) Response() (*Response, bool) {
	if o.kind != outcomeResponse {
		return nil, false
	}
	return o.response, true
}

// ErrKind returns the transport-error classifier, valid only when
// IsTransportError is true.
func (o AttemptOutcome) ErrKind() string { return o.errKind }

// Cause returns the underlying error for timeout/transport-error variants,
// or nil for the Response variant.
func (o AttemptOutcome) Cause() error { return o.cause }

// isFailure reports whether this outcome counts as a failure for circuit
// breaker bookkeeping under the default classification: any non-Response
// outcome, or a Response with status >= 500.
func (o AttemptOutcome) isFailure() bool {
	switch o.kind {
	case outcomeResponse:
		return o.response != nil && o.response.Status >= 500
	default:
		return true
	}
}
