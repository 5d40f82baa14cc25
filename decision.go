package aresilient

// Predicate overrides the default retry rules for both response and
// exception paths. It is called as predicate(response, nil) for a completed
// response, or predicate(nil, cause) for a transport timeout/error. A
// non-nil returned error is itself fatal: the call terminates as
// PredicateError rather than being retried or returned.
type Predicate func(resp *Response, cause error) (retry bool, err error)

// decisionKind discriminates the Decision sum type.
type decisionKind int

const (
	decisionReturn decisionKind = iota
	decisionRetry
	decisionFail
)

// DecisionReason carries the status code or exception kind behind a Retry
// decision, for observability in RetryInfo hook records.
type DecisionReason struct {
	Status  int // 0 if this reason came from a transport error
	ErrKind string
}

// Decision is the tagged result of decide(): exactly one of Return
// (terminal success), Retry (schedule another attempt), or Fail (terminal
// failure).
type Decision struct {
	kind     decisionKind
	response *Response
	reason   DecisionReason
	err      *Error
}

// IsReturn reports whether this is a terminal success.
func (d Decision) IsReturn() bool { return d.kind == decisionReturn }

// IsRetry reports whether another attempt should be scheduled.
func (d Decision) IsRetry() bool { return d.kind == decisionRetry }

// IsFail reports whether this is a terminal failure.
func (d Decision) IsFail() bool { return d.kind == decisionFail }

// Response returns the returned response and true, valid only for Return.
func (d Decision) Response() (*Response, bool) {
	if d.kind != decisionReturn {
		return nil, false
	}
	return d.response, true
}

// Reason returns the retry reason, valid only for Retry.
func (d Decision) Reason() DecisionReason { return d.reason }

// Err returns the terminal error, valid only for Fail.
func (d Decision) Err() *Error { return d.err }

func decisionReturnWith(resp *Response) Decision {
	return Decision{kind: decisionReturn, response: resp}
}

func decisionRetryWith(reason DecisionReason) Decision {
	return Decision{kind: decisionRetry, reason: reason}
}

func decisionFailWith(err *Error) Decision {
	return Decision{kind: decisionFail, err: err}
}

// decide is the pure decision function at the center of the package: given
// the outcome of one attempt, the 1-indexed attempt number, and the
// resolved configuration, it decides whether to return, retry, or fail. It
// has no side effects and depends on nothing but its arguments, so the
// blocking and suspended Executors share this single implementation.
func decide(outcome AttemptOutcome, attempt int, config *RetryConfig) Decision {
	switch {
	case outcome.IsResponse():
		return decideResponse(outcome, attempt, config)
	default:
		return decideException(outcome, attempt, config)
	}
}

func decideResponse(outcome AttemptOutcome, attempt int, config *RetryConfig) Decision {
	resp, _ := outcome.Response()

	if config.Predicate != nil {
		retry, err := config.Predicate(resp, nil)
		if err != nil {
			return decisionFailWith(NewError(PredicateError, err).WithStatus(resp.Status))
		}
		if !retry {
			if resp.Status < 400 {
				return decisionReturnWith(resp)
			}
			return decisionFailWith(NewError(NonRetryableStatus, nil).WithStatus(resp.Status))
		}
		return terminateOrRetry(outcome, attempt, config, DecisionReason{Status: resp.Status})
	}

	if resp.Status < 400 {
		return decisionReturnWith(resp)
	}

	if config.isRetryableStatus(resp.Status) {
		return terminateOrRetry(outcome, attempt, config, DecisionReason{Status: resp.Status})
	}
	return decisionFailWith(NewError(NonRetryableStatus, nil).WithStatus(resp.Status))
}

func decideException(outcome AttemptOutcome, attempt int, config *RetryConfig) Decision {
	cause := outcome.Cause()

	if config.Predicate != nil {
		retry, err := config.Predicate(nil, cause)
		if err != nil {
			return decisionFailWith(NewError(PredicateError, err))
		}
		if !retry {
			return decisionFailWith(NewError(TransportFatal, cause))
		}
		return terminateOrRetry(outcome, attempt, config, DecisionReason{ErrKind: outcome.ErrKind()})
	}

	return terminateOrRetry(outcome, attempt, config, DecisionReason{ErrKind: outcome.ErrKind()})
}

// terminateOrRetry converts a Retry-eligible outcome into a terminal Fail
// once the attempt budget is spent.
func terminateOrRetry(outcome AttemptOutcome, attempt int, config *RetryConfig, reason DecisionReason) Decision {
	if attempt >= config.MaxRetries+1 {
		err := NewError(RetriesExhausted, outcome.Cause())
		if resp, ok := outcome.Response(); ok && resp != nil {
			err = err.WithStatus(resp.Status)
		}
		return decisionFailWith(err)
	}
	return decisionRetryWith(reason)
}
