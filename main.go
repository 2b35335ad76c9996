package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sjsage522/travelworker/config"
	"sjsage522/travelworker/internal/session"
	"sjsage522/travelworker/internal/source"
	"sjsage522/travelworker/internal/unified"
	"sjsage522/travelworker/logger"
	"sjsage522/travelworker/services/cache"
	"sjsage522/travelworker/services/publisher"
	"sjsage522/travelworker/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	sourceName := flag.String("source", os.Getenv("SOURCE"), "provider to ingest (klook, kkday, myrealtrip, getyourguide)")
	cityName := flag.String("city", os.Getenv("CITY"), "destination city name or alias")
	strict := flag.Bool("strict", false, "abort when the city cannot be resolved")
	flag.Parse()

	src, err := source.ByName(*sourceName)
	if err != nil {
		log.Fatal().Err(err).Msg("Unknown source")
	}
	if *cityName == "" {
		log.Fatal().Msg("No city given (use -city or the CITY environment variable)")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("source", src.Name).
		Str("city", *cityName).
		Msg("Starting ingestion run")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// Initialize services
	services := initializeServices(ctx, &cfg)
	defer services.Cleanup()

	sess, err := session.NewChromeSession(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start browser session")
	}
	defer sess.Close()

	w := worker.New(cfg, src, sess, services.Cache, services.Publisher, services.Unified)
	summary, err := w.Run(ctx, *cityName, *strict)
	if err != nil {
		log.Fatal().Err(err).Msg("Run failed")
	}

	log.Info().
		Int("urls_collected", summary.URLsCollected).
		Int("attempted", summary.Attempted).
		Int("succeeded", summary.Succeeded).
		Int("partial", summary.Partial).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Ingestion run complete")
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Unified   *unified.DB
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Unified != nil {
		s.Unified.Close()
	}
}

// initializeServices wires the optional backing services. A missing
// memcache or redis degrades to local behaviour instead of aborting.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Using Memcache at %s", cfg.MemcacheAddr)
	} else {
		services.Cache = cache.NewMemoryService()
		logger.Info("Memcache not configured, using in-process cache")
	}

	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		logger.Info("Publishing to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	} else {
		logger.Info("Redis not configured, skipping event publishing")
	}

	udb, err := unified.Open(cfg.UnifiedDB)
	if err != nil {
		logger.Warn("Unified store unavailable: %v", err)
	} else {
		services.Unified = udb
	}

	return services
}
