package domain

import (
	"context"
	"time"
)

// RecordCache defines the interface for caching enrichment records by ingredient key
type RecordCache interface {
	Get(ctx context.Context, key string) (*EnrichmentRecord, error)
	Set(ctx context.Context, key string, record *EnrichmentRecord, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TextExtractor runs OCR on a prepared image.
// An empty string with a nil error means no text was found.
type TextExtractor interface {
	ExtractText(ctx context.Context, req ExtractionRequest) (string, error)
}

// EnrichmentClient sends an ingredient set to the enrichment service
type EnrichmentClient interface {
	ProcessIngredients(ctx context.Context, req ProcessRequest) ([]EnrichmentRecord, error)
}

// IngredientAnalyzer annotates ingredients (the upstream model behind the enrichment service)
type IngredientAnalyzer interface {
	Analyze(ctx context.Context, ingredients []string) ([]AnalysisResult, error)
}
