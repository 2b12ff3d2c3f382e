package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/labelscan/labelscan/config"
	httpDelivery "github.com/labelscan/labelscan/internal/delivery/http"
	"github.com/labelscan/labelscan/internal/domain"
	"github.com/labelscan/labelscan/internal/infrastructure/analyzer"
	"github.com/labelscan/labelscan/internal/infrastructure/cache"
	"github.com/labelscan/labelscan/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting LabelScan enrichment server")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Initialize infrastructure dependencies
	recordCache, err := openCache(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer recordCache.Close()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	analyzerClient := analyzer.NewClient(
		cfg.Analyzer.URL,
		cfg.Analyzer.Timeout,
		cfg.Analyzer.RateLimit,
		cfg.Analyzer.Burst,
	)

	debug := cfg.Server.Environment == "development" || cfg.Workflow.Debug
	if debug {
		analyzerClient.SetDebug(true)
		log.Printf("Analyzer client debug mode enabled")
	}
	log.Printf("Analyzer: %s (rate=%.1f/s, burst=%d)", cfg.Analyzer.URL, cfg.Analyzer.RateLimit, cfg.Analyzer.Burst)

	// Initialize usecase layer
	enrichmentService := usecase.NewEnrichmentService(
		recordCache,
		analyzerClient,
		usecase.EnrichmentServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			EnableDebugLogging: debug,
		},
	)

	handler := httpDelivery.NewHandler(enrichmentService)
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

type closableCache interface {
	domain.RecordCache
	Close() error
}

// openCache builds the configured record cache. SQLite caches drop expired
// rows on startup.
func openCache(cfg config.CacheConfig) (closableCache, error) {
	if cfg.Type != "sqlite" {
		return cache.NewMemoryCache(), nil
	}

	c, err := cache.NewSQLiteCache(cfg.Path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	purged, err := c.PurgeExpired(ctx)
	if err != nil {
		log.Printf("WARNING: failed to purge expired cache rows: %v", err)
	} else if purged > 0 {
		log.Printf("Purged %d expired cache rows", purged)
	}
	log.Printf("SQLite cache: %s", c.Path())
	return c, nil
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
