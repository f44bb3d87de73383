package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimited(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed", NewRateLimitError(errors.New("too many requests")), true},
		{"wrapped_typed", fmt.Errorf("search: %w", NewRateLimitError(errors.New("slow down"))), true},
		{"keyword_429", errors.New("gemini: unexpected status 429: {}"), true},
		{"keyword_quota", errors.New("quota exceeded for model"), true},
		{"keyword_resource_exhausted", errors.New("RESOURCE_EXHAUSTED"), true},
		{"plain", errors.New("boom"), false},
		{"transient_typed", NewTransientError(errors.New("bad gateway"), 502), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimited(tt.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed", NewTransientError(errors.New("bad gateway"), 502), true},
		{"wrapped_typed", fmt.Errorf("call: %w", NewTransientError(errors.New("x"), 503)), true},
		{"keyword_reset", errors.New("read tcp: connection reset by peer"), true},
		{"keyword_overloaded", errors.New("the model is overloaded"), true},
		{"keyword_unavailable", errors.New("503 Service Unavailable"), true},
		{"rate_limit_not_transient", NewRateLimitError(errors.New("429")), false},
		{"rate_limit_keyword_not_transient", errors.New("status 429 slow down"), false},
		{"plain", errors.New("invalid argument"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{408, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "code %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 429} {
		assert.False(t, IsTransientHTTPStatus(code), "code %d", code)
	}
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("inner")
	assert.ErrorIs(t, NewTransientError(inner, 500), inner)
	assert.ErrorIs(t, NewRateLimitError(inner), inner)
	assert.Equal(t, "inner", NewTransientError(inner, 500).Error())
	assert.Equal(t, "inner", NewRateLimitError(inner).Error())
}

func TestIsTransientContextCanceled(t *testing.T) {
	t.Parallel()
	assert.False(t, IsTransient(context.Canceled))
}
