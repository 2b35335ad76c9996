package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration (product event stream)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration (fetch rate limiting)
	MemcacheAddr string

	// Storage roots
	DataRoot    string // per-city CSV tables, ranking files, url logs
	ImageRoot   string // downloaded product images
	UnifiedDB   string // SQLite unified product store
	StatusDir   string // session status files
	RankingDir  string // per-tab ranking snapshots
	AccumDir    string // accumulated ranking maps
	URLLogDir   string // url collection logs

	// Collection parameters
	TargetCount int
	MaxPages    int

	// Timeouts and retries
	PageTimeout     time.Duration
	DownloadTimeout time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration

	// Thumbnail generation
	ThumbShortEdge int
	JPEGQuality    int

	// Browser
	ChromeBin string
	Headless  bool

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	targetCount, _ := strconv.Atoi(getEnv("TARGET_COUNT", "100"))
	maxPages, _ := strconv.Atoi(getEnv("MAX_PAGES", "10"))
	pageTimeout, _ := strconv.Atoi(getEnv("PAGE_TIMEOUT_SECONDS", "30"))
	dlTimeout, _ := strconv.Atoi(getEnv("DOWNLOAD_TIMEOUT_SECONDS", "20"))
	maxRetries, _ := strconv.Atoi(getEnv("MAX_RETRIES", "3"))
	retryBase, _ := strconv.Atoi(getEnv("RETRY_BASE_DELAY_SECONDS", "2"))
	thumbEdge, _ := strconv.Atoi(getEnv("THUMB_SHORT_EDGE", "300"))
	jpegQuality, _ := strconv.Atoi(getEnv("JPEG_QUALITY", "85"))

	return Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "travelproducts"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		DataRoot:             getEnv("DATA_ROOT", "data"),
		ImageRoot:            getEnv("IMAGE_ROOT", "images"),
		UnifiedDB:            getEnv("UNIFIED_DB", "unified_travel_products.db"),
		StatusDir:            getEnv("STATUS_DIR", "status"),
		RankingDir:           getEnv("RANKING_DIR", "ranking_urls"),
		AccumDir:             getEnv("ACCUM_DIR", "ranking_data"),
		URLLogDir:            getEnv("URL_LOG_DIR", "url_collected"),
		TargetCount:          targetCount,
		MaxPages:             maxPages,
		PageTimeout:          time.Duration(pageTimeout) * time.Second,
		DownloadTimeout:      time.Duration(dlTimeout) * time.Second,
		MaxRetries:           maxRetries,
		RetryBaseDelay:       time.Duration(retryBase) * time.Second,
		ThumbShortEdge:       thumbEdge,
		JPEGQuality:          jpegQuality,
		ChromeBin:            getEnv("CHROME_BIN", ""),
		Headless:             getEnv("HEADLESS", "true") != "false",
		Environment:          getEnv("TRAVELWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.TargetCount <= 0 {
		return fmt.Errorf("TARGET_COUNT must be positive, got %d", c.TargetCount)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("MAX_PAGES must be positive, got %d", c.MaxPages)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	if c.ThumbShortEdge <= 0 {
		return fmt.Errorf("THUMB_SHORT_EDGE must be positive, got %d", c.ThumbShortEdge)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be in 1..100, got %d", c.JPEGQuality)
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("PAGE_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
