package aresilient

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError_FluentBuildersAttachContext(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(TransportFatal, cause).
		WithRequest("GET", "https://example.com").
		WithStatus(502).
		WithAttempts(4).
		WithElapsed(3 * time.Second)

	assert.Equal(t, TransportFatal, err.Kind)
	assert.Equal(t, "GET", err.Method)
	assert.Equal(t, "https://example.com", err.URL)
	assert.Equal(t, 502, err.Status)
	assert.Equal(t, 4, err.Attempts)
	assert.Equal(t, 3*time.Second, err.Elapsed)
	assert.ErrorIs(t, err, cause)
}

func TestError_IsMatchesOnKindOnly(t *testing.T) {
	a := NewError(BreakerOpen, errors.New("one"))
	b := NewError(BreakerOpen, errors.New("two"))
	c := NewError(BudgetExhausted, nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestError_MessageIncludesKindAndContext(t *testing.T) {
	err := NewError(NonRetryableStatus, nil).
		WithRequest("POST", "/widgets").
		WithStatus(404).
		WithAttempts(1)

	msg := err.Error()
	assert.Contains(t, msg, "non_retryable_status")
	assert.Contains(t, msg, "/widgets")
	assert.Contains(t, msg, "404")
}

func TestErrorKind_String(t *testing.T) {
	cases := map[ErrorKind]string{
		NonRetryableStatus: "non_retryable_status",
		RetriesExhausted:   "retries_exhausted",
		BudgetExhausted:    "budget_exhausted",
		BreakerOpen:        "breaker_open",
		TransportFatal:     "transport_fatal",
		PredicateError:     "predicate_error",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}
