package aresilient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposite_FansOutToAllHooks(t *testing.T) {
	var aCalled, bCalled bool
	a := &Hooks{OnRequest: func(RequestInfo) { aCalled = true }}
	b := &Hooks{OnRequest: func(RequestInfo) { bCalled = true }}

	composite := Composite(a, b)
	composite.fireRequest(RequestInfo{Attempt: 1})

	assert.True(t, aCalled)
	assert.True(t, bCalled)
}

func TestComposite_IsolatesPanickingChild(t *testing.T) {
	var survivorCalled bool
	panicker := &Hooks{OnRequest: func(RequestInfo) { panic("boom") }}
	survivor := &Hooks{OnRequest: func(RequestInfo) { survivorCalled = true }}

	composite := Composite(panicker, survivor)
	assert.NotPanics(t, func() {
		composite.fireRequest(RequestInfo{Attempt: 1})
	})
	assert.True(t, survivorCalled)
}

func TestHooks_NilFieldsAreNoOps(t *testing.T) {
	h := &Hooks{}
	assert.NotPanics(t, func() {
		h.fireRequest(RequestInfo{})
		h.fireRetry(RetryInfo{})
		h.fireSuccess(ResponseInfo{})
		h.fireFailure(FailureInfo{})
	})
}

func TestNilHooks_AreNoOps(t *testing.T) {
	var h *Hooks
	assert.NotPanics(t, func() {
		h.fireRequest(RequestInfo{})
	})
}
