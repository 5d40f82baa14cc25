package aresilient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *RetryConfig {
	return DefaultRetryConfig().WithMaxRetries(3)
}

func TestDecide_SuccessResponseReturns(t *testing.T) {
	outcome := NewResponseOutcome(&Response{Status: 200})
	d := decide(outcome, 1, testConfig())
	assert.True(t, d.IsReturn())
	resp, _ := d.Response()
	assert.Equal(t, 200, resp.Status)
}

func TestDecide_RetryableStatusRetries(t *testing.T) {
	outcome := NewResponseOutcome(&Response{Status: 503})
	d := decide(outcome, 1, testConfig())
	assert.True(t, d.IsRetry())
	assert.Equal(t, 503, d.Reason().Status)
}

func TestDecide_NonRetryableStatusFails(t *testing.T) {
	outcome := NewResponseOutcome(&Response{Status: 404})
	d := decide(outcome, 1, testConfig())
	require.True(t, d.IsFail())
	assert.Equal(t, NonRetryableStatus, d.Err().Kind)
	assert.Equal(t, 404, d.Err().Status)
}

func TestDecide_RetryExhaustedAtMaxAttempts(t *testing.T) {
	cfg := DefaultRetryConfig().WithMaxRetries(2)
	outcome := NewResponseOutcome(&Response{Status: 500})
	d := decide(outcome, 3, cfg) // attempt == max_retries+1
	require.True(t, d.IsFail())
	assert.Equal(t, RetriesExhausted, d.Err().Kind)
}

func TestDecide_TransportErrorRetriesByDefault(t *testing.T) {
	outcome := NewTransportErrorOutcome("network", errors.New("conn refused"))
	d := decide(outcome, 1, testConfig())
	assert.True(t, d.IsRetry())
}

func TestDecide_TimeoutRetriesByDefault(t *testing.T) {
	outcome := NewTimeoutOutcome(errors.New("deadline exceeded"))
	d := decide(outcome, 1, testConfig())
	assert.True(t, d.IsRetry())
}

func TestDecide_PredicateOverridesSuccessToRetry(t *testing.T) {
	cfg := testConfig().WithPredicate(func(resp *Response, err error) (bool, error) {
		return true, nil
	})
	outcome := NewResponseOutcome(&Response{Status: 200})
	d := decide(outcome, 1, cfg)
	assert.True(t, d.IsRetry())
}

func TestDecide_PredicateFalseOn500Fails(t *testing.T) {
	cfg := testConfig().WithPredicate(func(resp *Response, err error) (bool, error) {
		return false, nil
	})
	outcome := NewResponseOutcome(&Response{Status: 500})
	d := decide(outcome, 1, cfg)
	require.True(t, d.IsFail())
	assert.Equal(t, NonRetryableStatus, d.Err().Kind)
	assert.Equal(t, 500, d.Err().Status)
}

func TestDecide_PredicateErrorPropagatesAsFail(t *testing.T) {
	boom := errors.New("boom")
	cfg := testConfig().WithPredicate(func(resp *Response, err error) (bool, error) {
		return false, boom
	})
	outcome := NewResponseOutcome(&Response{Status: 200})
	d := decide(outcome, 1, cfg)
	require.True(t, d.IsFail())
	assert.Equal(t, PredicateError, d.Err().Kind)
	assert.ErrorIs(t, d.Err().Cause, boom)
}

func TestDecide_PredicateFalseOnTransportErrorIsTransportFatal(t *testing.T) {
	cfg := testConfig().WithPredicate(func(resp *Response, err error) (bool, error) {
		return false, nil
	})
	outcome := NewTransportErrorOutcome("network", errors.New("down"))
	d := decide(outcome, 1, cfg)
	require.True(t, d.IsFail())
	assert.Equal(t, TransportFatal, d.Err().Kind)
}

func TestDecide_IsIdempotent(t *testing.T) {
	cfg := testConfig()
	outcome := NewResponseOutcome(&Response{Status: 503})
	first := decide(outcome, 1, cfg)
	second := decide(outcome, 1, cfg)
	assert.Equal(t, first.IsRetry(), second.IsRetry())
	assert.Equal(t, first.Reason(), second.Reason())
}

func TestDecide_StatusListMembershipIsExact(t *testing.T) {
	cfg := testConfig()
	for _, status := range []int{429, 500, 502, 503, 504} {
		outcome := NewResponseOutcome(&Response{Status: status})
		d := decide(outcome, 1, cfg)
		assert.Truef(t, d.IsRetry(), "status %d should retry", status)
	}
	for _, status := range []int{400, 401, 403, 404, 410, 499} {
		outcome := NewResponseOutcome(&Response{Status: status})
		d := decide(outcome, 1, cfg)
		assert.Truef(t, d.IsFail(), "status %d should fail", status)
	}
}
