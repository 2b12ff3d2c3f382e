package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/labelscan/labelscan/internal/domain"
)

// ProcessPath is the enrichment endpoint path
const ProcessPath = "/process_ingredients"

// maxBodyBytes caps how much of a response is read
const maxBodyBytes = 4 << 20

// StatusError is returned for non-2xx responses. Body holds the response text for display.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s: status %d", domain.ErrEnrichmentFailed, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", domain.ErrEnrichmentFailed, e.StatusCode, body)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrEnrichmentFailed
}

// Client handles communication with the enrichment service
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new enrichment client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// One submission at a time is the norm; the limiter only guards scripted use
	limiter := rate.NewLimiter(rate.Limit(2), 2)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: limiter,
	}
}

// SetDebug enables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// ProcessIngredients posts the ingredient set and returns the enrichment records.
// There are no retries: any failure is returned to the caller as is.
func (c *Client) ProcessIngredients(ctx context.Context, request domain.ProcessRequest) ([]domain.EnrichmentRecord, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrEnrichmentFailed, err)
	}

	if request.Ingredients == nil {
		request.Ingredients = domain.IngredientSet{}
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ProcessPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "LabelScan/1.0")

	if c.debug {
		log.Printf("[ENRICH] POST %s with %d ingredients", req.URL, len(request.Ingredients))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEnrichmentFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrEnrichmentFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.debug {
			log.Printf("[ENRICH] Error status %d, body: %s", resp.StatusCode, string(body))
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	records, err := DecodeResults(body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[ENRICH] Received %d records", len(records))
	}
	return records, nil
}

// DecodeResults reads {"results": [...]} leniently. A missing or non-array
// "results" yields an empty list; elements that are not objects are skipped.
func DecodeResults(body []byte) ([]domain.EnrichmentRecord, error) {
	records := []domain.EnrichmentRecord{}
	if len(bytes.TrimSpace(body)) == 0 {
		return records, nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", domain.ErrEnrichmentFailed)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return records, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(envelope["results"], &items); err != nil {
		return records, nil
	}

	for i, item := range items {
		if first := firstByte(item); first != '{' {
			log.Printf("[ENRICH] Skipping result %d: not an object", i)
			continue
		}
		var record domain.EnrichmentRecord
		if err := json.Unmarshal(item, &record); err != nil {
			log.Printf("[ENRICH] Skipping result %d: %v", i, err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
