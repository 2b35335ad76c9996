package errors

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIngestError_Error(t *testing.T) {
	e := New(KindNetwork, "klook", "download", "request failed", io.ErrUnexpectedEOF)
	assert.Contains(t, e.Error(), "[network]")
	assert.Contains(t, e.Error(), "klook")
	assert.Contains(t, e.Error(), "unexpected EOF")

	noWrap := NewSelectorMiss("kkday", "title")
	assert.Equal(t, "[selector_miss] kkday extract: title", noWrap.Error())
}

func TestIngestError_Unwrap(t *testing.T) {
	e := NewStorage("myrealtrip", "csv_append", io.ErrClosedPipe)
	assert.ErrorIs(t, e, io.ErrClosedPipe)
}

func TestIngestError_IsRetryable(t *testing.T) {
	testCases := []struct {
		kind      Kind
		retryable bool
	}{
		{KindNetwork, true},
		{KindNavigationTimeout, true},
		{KindSelectorMiss, false},
		{KindParse, false},
		{KindStorage, false},
		{KindCancelled, false},
		{KindRateLimit, false},
	}

	for _, tc := range testCases {
		e := New(tc.kind, "test", "op", "msg", nil)
		assert.Equal(t, tc.retryable, e.IsRetryable(), string(tc.kind))
	}
}

func TestKindOf(t *testing.T) {
	e := NewNavigationTimeout("klook", "https://example.com", nil)
	assert.Equal(t, KindNavigationTimeout, KindOf(e))

	wrapped := fmt.Errorf("run failed: %w", e)
	assert.Equal(t, KindNavigationTimeout, KindOf(wrapped))

	assert.Equal(t, Kind(""), KindOf(io.EOF))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(NewCancelled("klook", "collect")))
	assert.False(t, IsCancelled(NewNetwork("klook", "fetch", io.EOF)))
}

func TestNewRateLimit(t *testing.T) {
	e := NewRateLimit("kkday", 500*time.Second)
	assert.Equal(t, KindRateLimit, e.Kind)
	assert.Contains(t, e.Message, "8m20s")
}
