package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryService_SetGet(t *testing.T) {
	svc := NewMemoryService()

	err := svc.Set("klook_rate_limited", []byte("500"), time.Minute)
	assert.NoError(t, err)

	val, err := svc.Get("klook_rate_limited")
	assert.NoError(t, err)
	assert.Equal(t, []byte("500"), val)
}

func TestMemoryService_Miss(t *testing.T) {
	svc := NewMemoryService()

	_, err := svc.Get("absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryService_Expiration(t *testing.T) {
	svc := NewMemoryService()

	err := svc.Set("short", []byte("x"), time.Millisecond)
	assert.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.Get("short")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryService_Delete(t *testing.T) {
	svc := NewMemoryService()

	_ = svc.Set("key", []byte("v"), 0)
	assert.NoError(t, svc.Delete("key"))

	_, err := svc.Get("key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
