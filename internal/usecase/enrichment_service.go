package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/labelscan/labelscan/internal/domain"
)

// Fallback texts used when the analyzer cannot describe an ingredient
const (
	usageNotProvided     = "Description not provided"
	usageUnavailable     = "Usage not available"
	usageAnalyzerFailed  = "Usage not available (AI call failed)"
	reasonNotInResponse  = "Not found in AI response"
	verdictAnalyzerError = "Error"
)

// EnrichmentServiceConfig holds configuration for the enrichment service
type EnrichmentServiceConfig struct {
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// EnrichmentService annotates ingredients, serving repeats from the cache
type EnrichmentService struct {
	cache              domain.RecordCache
	analyzer           domain.IngredientAnalyzer
	cacheTTL           time.Duration
	enableDebugLogging bool
}

// NewEnrichmentService creates a new enrichment service with dependencies
func NewEnrichmentService(
	cache domain.RecordCache,
	analyzer domain.IngredientAnalyzer,
	config EnrichmentServiceConfig,
) *EnrichmentService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 720 * time.Hour // Default 30 days
	}

	return &EnrichmentService{
		cache:              cache,
		analyzer:           analyzer,
		cacheTTL:           cacheTTL,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// ProcessIngredients returns one record per requested ingredient, in request order.
// Flow: check cache -> analyze misses in one batch -> cache successes -> merge
func (s *EnrichmentService) ProcessIngredients(
	ctx context.Context,
	request domain.ProcessRequest,
) ([]domain.EnrichmentRecord, error) {
	ingredients := nonEmpty(request.Ingredients)
	if len(ingredients) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	cached := make(map[string]domain.EnrichmentRecord)
	var missing []string
	for _, ing := range ingredients {
		record, err := s.cache.Get(ctx, cacheKey(ing))
		if err == nil && record != nil {
			cached[ing] = *record
			continue
		}
		if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
			log.Printf("[ENRICH] Cache read failed for %q: %v", ing, err)
		}
		missing = append(missing, ing)
	}

	if s.enableDebugLogging {
		log.Printf("[ENRICH] %d ingredients: %d cached, %d to analyze", len(ingredients), len(cached), len(missing))
	}

	// Analyzer records are matched by exact name first, then by cache key
	analyzed := make(map[string]domain.EnrichmentRecord)
	analyzedByKey := make(map[string]domain.EnrichmentRecord)
	if len(missing) > 0 {
		results, err := s.analyzer.Analyze(ctx, missing)
		if err != nil {
			log.Printf("[ENRICH] Analyzer failed: %v", err)
			for _, ing := range missing {
				analyzed[ing] = analyzerErrorRecord(ing, err)
			}
		} else {
			for _, result := range results {
				record := normalizeAnalysis(result)
				if record.Ingredient == "" {
					continue
				}
				analyzed[record.Ingredient] = record
				if _, ok := analyzedByKey[cacheKey(record.Ingredient)]; !ok {
					analyzedByKey[cacheKey(record.Ingredient)] = record
				}

				// Log but don't fail if caching fails
				if err := s.cache.Set(ctx, cacheKey(record.Ingredient), &record, s.cacheTTL); err != nil {
					log.Printf("[ENRICH] Cache write failed for %q: %v", record.Ingredient, err)
				}
			}
		}
	}

	records := make([]domain.EnrichmentRecord, 0, len(ingredients))
	for _, ing := range ingredients {
		if record, ok := cached[ing]; ok {
			records = append(records, record)
		} else if record, ok := analyzed[ing]; ok {
			records = append(records, record)
		} else if record, ok := analyzedByKey[cacheKey(ing)]; ok {
			records = append(records, record)
		} else {
			records = append(records, missingRecord(ing))
		}
	}

	return records, nil
}

// cacheKey normalizes an ingredient name for cache lookups
func cacheKey(ingredient string) string {
	return fmt.Sprintf("ingredient:%s", strings.ToLower(strings.TrimSpace(ingredient)))
}

func nonEmpty(set domain.IngredientSet) []string {
	out := make([]string, 0, len(set))
	for _, ing := range set {
		if strings.TrimSpace(ing) != "" {
			out = append(out, ing)
		}
	}
	return out
}

// normalizeAnalysis maps an analyzer result onto the enrichment record shape
func normalizeAnalysis(result domain.AnalysisResult) domain.EnrichmentRecord {
	usage := result.Description
	if strings.TrimSpace(usage) == "" {
		usage = usageNotProvided
	}
	verdict := result.Healthy
	if strings.TrimSpace(verdict) == "" {
		verdict = domain.UnknownValue
	}
	banned := result.BannedIn
	if banned == nil {
		banned = domain.StringList{}
	}

	return domain.EnrichmentRecord{
		Ingredient: result.Ingredient,
		Usage:      usage,
		Health: domain.Health{
			Verdict: verdict,
			Reason:  result.Reason,
			Rating:  result.Rating,
		},
		BannedCountries: banned,
		RawAIResponse:   result.RawOutput,
	}
}

func analyzerErrorRecord(ingredient string, err error) domain.EnrichmentRecord {
	return domain.EnrichmentRecord{
		Ingredient: ingredient,
		Usage:      usageAnalyzerFailed,
		Health: domain.Health{
			Verdict: verdictAnalyzerError,
			Reason:  fmt.Sprintf("AI call failed: %v", err),
		},
		BannedCountries: domain.StringList{},
	}
}

func missingRecord(ingredient string) domain.EnrichmentRecord {
	return domain.EnrichmentRecord{
		Ingredient: ingredient,
		Usage:      usageUnavailable,
		Health: domain.Health{
			Verdict: domain.UnknownValue,
			Reason:  reasonNotInResponse,
		},
		BannedCountries: domain.StringList{},
	}
}
