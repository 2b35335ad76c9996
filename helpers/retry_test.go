package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryConfig_Do(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := r.Do("flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryConfig_Exhausted(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond}

	sentinel := errors.New("still broken")
	calls := 0
	err := r.Do("broken", func() error {
		calls++
		return sentinel
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls)
}

func TestRetryConfig_PermanentStatusAborts(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond}

	calls := 0
	err := r.Do("forbidden", func() error {
		calls++
		return &PermanentStatusError{URL: "https://example.com/a.jpg", StatusCode: 404}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
