package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "travelproducts", cfg.RedisStream)
	assert.Equal(t, "localhost:11211", cfg.MemcacheAddr)
	assert.Equal(t, 100, cfg.TargetCount)
	assert.Equal(t, 10, cfg.MaxPages)
	assert.Equal(t, 30*time.Second, cfg.PageTimeout)
	assert.Equal(t, 300, cfg.ThumbShortEdge)
	assert.Equal(t, 85, cfg.JPEGQuality)
	assert.Equal(t, "development", cfg.Environment)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TARGET_COUNT", "25")
	t.Setenv("MAX_PAGES", "3")
	t.Setenv("THUMB_SHORT_EDGE", "400")
	t.Setenv("UNIFIED_DB", "/tmp/test.db")

	cfg := LoadConfig()
	assert.Equal(t, 25, cfg.TargetCount)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, 400, cfg.ThumbShortEdge)
	assert.Equal(t, "/tmp/test.db", cfg.UnifiedDB)
}

func TestValidateRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero target count", func(c *Config) { c.TargetCount = 0 }},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero thumb edge", func(c *Config) { c.ThumbShortEdge = 0 }},
		{"jpeg quality too high", func(c *Config) { c.JPEGQuality = 101 }},
		{"zero page timeout", func(c *Config) { c.PageTimeout = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := LoadConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
