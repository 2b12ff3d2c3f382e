package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/labelscan/labelscan/internal/domain"
)

// MockRecordCache is a mock implementation of domain.RecordCache
type MockRecordCache struct {
	data     map[string]domain.EnrichmentRecord
	ttls     map[string]time.Duration
	getError error
	setError error
}

func NewMockRecordCache() *MockRecordCache {
	return &MockRecordCache{
		data: make(map[string]domain.EnrichmentRecord),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockRecordCache) Get(ctx context.Context, key string) (*domain.EnrichmentRecord, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if record, ok := m.data[key]; ok {
		return &record, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockRecordCache) Set(ctx context.Context, key string, record *domain.EnrichmentRecord, ttl time.Duration) error {
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = *record
	m.ttls[key] = ttl
	return nil
}

func (m *MockRecordCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockRecordCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockAnalyzer is a mock implementation of domain.IngredientAnalyzer
type MockAnalyzer struct {
	results []domain.AnalysisResult
	err     error
	calls   [][]string
}

func (m *MockAnalyzer) Analyze(ctx context.Context, ingredients []string) ([]domain.AnalysisResult, error) {
	m.calls = append(m.calls, append([]string(nil), ingredients...))
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func intPtr(n int) *int { return &n }

func TestNewEnrichmentService(t *testing.T) {
	s := NewEnrichmentService(NewMockRecordCache(), &MockAnalyzer{}, EnrichmentServiceConfig{})
	if s.cacheTTL != 720*time.Hour {
		t.Errorf("cacheTTL = %v, want 720h default", s.cacheTTL)
	}

	s = NewEnrichmentService(NewMockRecordCache(), &MockAnalyzer{}, EnrichmentServiceConfig{CacheTTL: time.Minute})
	if s.cacheTTL != time.Minute {
		t.Errorf("cacheTTL = %v, want 1m", s.cacheTTL)
	}
}

func TestEnrichmentServiceProcessIngredients(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an empty request", func(t *testing.T) {
		s := NewEnrichmentService(NewMockRecordCache(), &MockAnalyzer{}, EnrichmentServiceConfig{})

		for _, set := range []domain.IngredientSet{nil, {}, {"", "  "}} {
			if _, err := s.ProcessIngredients(ctx, domain.ProcessRequest{Ingredients: set}); !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("ProcessIngredients(%q) error = %v, want ErrInvalidRequest", set, err)
			}
		}
	})

	t.Run("analyzes misses in one batch and keeps request order", func(t *testing.T) {
		cache := NewMockRecordCache()
		analyzer := &MockAnalyzer{results: []domain.AnalysisResult{
			{Ingredient: "Sugar", Description: "sweetener", Healthy: "No", Reason: "Empty calories", Rating: intPtr(2)},
			{Ingredient: "Salt", Description: "seasoning", Healthy: "Yes", BannedIn: domain.StringList{}},
		}}
		s := NewEnrichmentService(cache, analyzer, EnrichmentServiceConfig{CacheTTL: time.Hour})

		records, err := s.ProcessIngredients(ctx, domain.ProcessRequest{Ingredients: domain.IngredientSet{"Salt", "Sugar"}})
		if err != nil {
			t.Fatalf("ProcessIngredients() error = %v", err)
		}
		if len(analyzer.calls) != 1 || !reflect.DeepEqual(analyzer.calls[0], []string{"Salt", "Sugar"}) {
			t.Errorf("analyzer calls = %q, want one batch [Salt Sugar]", analyzer.calls)
		}
		if len(records) != 2 || records[0].Ingredient != "Salt" || records[1].Ingredient != "Sugar" {
			t.Fatalf("records = %+v, want Salt then Sugar", records)
		}
		if records[0].Usage != "seasoning" || records[0].Health.Verdict != "Yes" {
			t.Errorf("Salt record = %+v", records[0])
		}
		if records[1].Health.Rating == nil || *records[1].Health.Rating != 2 || records[1].Health.Reason != "Empty calories" {
			t.Errorf("Sugar health = %+v", records[1].Health)
		}
		if records[1].BannedCountries == nil {
			t.Error("BannedCountries should default to an empty list")
		}
		if cache.ttls["ingredient:salt"] != time.Hour {
			t.Errorf("cache TTL = %v, want 1h", cache.ttls["ingredient:salt"])
		}
	})

	t.Run("serves cached ingredients without calling the analyzer", func(t *testing.T) {
		cache := NewMockRecordCache()
		cache.data["ingredient:salt"] = domain.EnrichmentRecord{Ingredient: "Salt", Usage: "cached"}
		analyzer := &MockAnalyzer{results: []domain.AnalysisResult{{Ingredient: "Sugar", Description: "sweetener"}}}
		s := NewEnrichmentService(cache, analyzer, EnrichmentServiceConfig{})

		records, err := s.ProcessIngredients(ctx, domain.ProcessRequest{Ingredients: domain.IngredientSet{"SALT", "Sugar"}})
		if err != nil {
			t.Fatalf("ProcessIngredients() error = %v", err)
		}
		if !reflect.DeepEqual(analyzer.calls, [][]string{{"Sugar"}}) {
			t.Errorf("analyzer calls = %q, want only [Sugar]", analyzer.calls)
		}
		if records[0].Usage != "cached" {
			t.Errorf("records[0] = %+v, want cached record", records[0])
		}

		// Everything cached: no analyzer call at all
		analyzer.calls = nil
		if _, err := s.ProcessIngredients(ctx, domain.ProcessRequest{Ingredients: domain.IngredientSet{"salt", "sugar"}}); err != nil {
			t.Fatalf("ProcessIngredients() error = %v", err)
		}
		if len(analyzer.calls) != 0 {
			t.Errorf("analyzer calls = %q, want none", analyzer.calls)
		}
	})

	t.Run("fills in missing analyzer fields", func(t *testing.T) {
		analyzer := &MockAnalyzer{results: []domain.AnalysisResult{{Ingredient: "Salt"}}}
		s := NewEnrichmentService(NewMockRecordCache(), analyzer, EnrichmentServiceConfig{})

		records, err := s.ProcessIngredients(ctx, domain.ProcessRequest{Ingredients: domain.IngredientSet{"Salt", "Pepper"}})
		if err != nil {
			t.Fatalf("ProcessIngredients() error = %v", err)
		}
		if records[0].Usage != usageNotProvided || records[0].Health.Verdict != domain.UnknownValue {
			t.Errorf("Salt record = %+v", records[0])
		}
		if records[1].Ingredient != "Pepper" || records[1].Health.Reason != reasonNotInResponse {
			t.Errorf("Pepper record = %+v, want not-found fallback", records[1])
		}
	})

	t.Run("case variants each get their own analyzer record", func(t *testing.T) {
		analyzer := &MockAnalyzer{results: []domain.AnalysisResult{
			{Ingredient: "Salt", Description: "table salt"},
			{Ingredient: "salt", Description: "sea salt"},
		}}
		s := NewEnrichmentService(NewMockRecordCache(), analyzer, EnrichmentServiceConfig{})

		records, err := s.ProcessIngredients(ctx, domain.ProcessRequest{Ingredients: domain.IngredientSet{"Salt", "salt"}})
		if err != nil {
			t.Fatalf("ProcessIngredients() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("len(records) = %d, want 2", len(records))
		}
		if records[0].Usage != "table salt" || records[1].Usage != "sea salt" {
			t.Errorf("usages = %q, %q, want table salt, sea salt", records[0].Usage, records[1].Usage)
		}
	})

	t.Run("analyzer name casing falls back to the cache key", func(t *testing.T) {
		analyzer := &MockAnalyzer{results: []domain.AnalysisResult{{Ingredient: "SALT", Description: "seasoning"}}}
		s := NewEnrichmentService(NewMockRecordCache(), analyzer, EnrichmentServiceConfig{})

		records, err := s.ProcessIngredients(ctx, domain.ProcessRequest{Ingredients: domain.IngredientSet{"Salt"}})
		if err != nil {
			t.Fatalf("ProcessIngredients() error = %v", err)
		}
		if len(records) != 1 || records[0].Usage != "seasoning" {
			t.Errorf("records = %+v, want the SALT record", records)
		}
	})

	t.Run("analyzer failure yields error records that are not cached", func(t *testing.T) {
		cache := NewMockRecordCache()
		analyzer := &MockAnalyzer{err: errors.New("upstream down")}
		s := NewEnrichmentService(cache, analyzer, EnrichmentServiceConfig{})

		records, err := s.ProcessIngredients(ctx, domain.ProcessRequest{Ingredients: domain.IngredientSet{"Salt"}})
		if err != nil {
			t.Fatalf("ProcessIngredients() error = %v", err)
		}
		if len(records) != 1 || records[0].Health.Verdict != verdictAnalyzerError || records[0].Usage != usageAnalyzerFailed {
			t.Errorf("records = %+v, want analyzer error record", records)
		}
		if !strings.Contains(records[0].Health.Reason, "upstream down") {
			t.Errorf("Reason = %q, want the analyzer error", records[0].Health.Reason)
		}
		if len(cache.data) != 0 {
			t.Error("error records must not be cached")
		}
	})

	t.Run("cache errors are logged, not returned", func(t *testing.T) {
		cache := NewMockRecordCache()
		cache.getError = errors.New("disk gone")
		cache.setError = errors.New("disk gone")
		analyzer := &MockAnalyzer{results: []domain.AnalysisResult{{Ingredient: "Salt", Description: "seasoning"}}}
		s := NewEnrichmentService(cache, analyzer, EnrichmentServiceConfig{EnableDebugLogging: true})

		records, err := s.ProcessIngredients(ctx, domain.ProcessRequest{Ingredients: domain.IngredientSet{"Salt"}})
		if err != nil {
			t.Fatalf("ProcessIngredients() error = %v", err)
		}
		if len(records) != 1 || records[0].Usage != "seasoning" {
			t.Errorf("records = %+v", records)
		}
	})
}

func TestCacheKey(t *testing.T) {
	if got := cacheKey("  Citric Acid "); got != "ingredient:citric acid" {
		t.Errorf("cacheKey() = %q", got)
	}
}
