package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/labelscan/labelscan/internal/domain"
)

// Client calls the upstream ingredient analyzer (POST {"ingredients": [...]})
type Client struct {
	httpClient  *http.Client
	url         string
	rateLimiter *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	debug       bool
}

// NewClient creates a new analyzer client. ratePerSecond <= 0 disables limiting.
func NewClient(url string, timeout time.Duration, ratePerSecond float64, burst int) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if burst <= 0 {
		burst = 1
	}

	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:         url,
		rateLimiter: rate.NewLimiter(limit, burst),
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
	}
}

// SetDebug enables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetRetry configures how often transient failures (transport errors and 5xx)
// are retried. The wait before attempt n is n*backoff.
func (c *Client) SetRetry(maxAttempts int, backoff time.Duration) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	c.maxAttempts = maxAttempts
	c.backoff = backoff
}

type analyzeRequest struct {
	Ingredients []string `json:"ingredients"`
}

type analyzeResponse struct {
	Results []json.RawMessage `json:"results"`
}

// Analyze sends the ingredients in one batch and returns the analyzer's records
func (c *Client) Analyze(ctx context.Context, ingredients []string) ([]domain.AnalysisResult, error) {
	if len(ingredients) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(analyzeRequest{Ingredients: ingredients})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrAnalyzerFailure, ctx.Err())
			case <-time.After(time.Duration(attempt-1) * c.backoff):
			}
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := c.post(ctx, payload)
		if err != nil {
			log.Printf("[ANALYZER] Request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrAnalyzerFailure, err)
			continue
		}

		if status != http.StatusOK {
			log.Printf("[ANALYZER] API error (attempt %d) - Status: %d, Body: %s", attempt, status, string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrAnalyzerFailure, status)
			if status < 500 {
				return nil, lastErr
			}
			continue
		}

		results, err := decodeResults(body)
		if err != nil {
			log.Printf("[ANALYZER] JSON decode error: %v", err)
			return nil, fmt.Errorf("%w: decode response: %v", domain.ErrAnalyzerFailure, err)
		}

		if c.debug {
			log.Printf("[ANALYZER] %d ingredients -> %d results in %s", len(ingredients), len(results), time.Since(start))
		}
		return results, nil
	}

	log.Printf("[ANALYZER] All %d attempts failed", c.maxAttempts)
	return nil, lastErr
}

// post executes one request and returns the body and status code
func (c *Client) post(ctx context.Context, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "LabelScan/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// decodeResults keeps every result that decodes; malformed items are dropped
func decodeResults(body []byte) ([]domain.AnalysisResult, error) {
	var decoded analyzeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}

	results := make([]domain.AnalysisResult, 0, len(decoded.Results))
	for _, item := range decoded.Results {
		var result domain.AnalysisResult
		if err := json.Unmarshal(item, &result); err != nil {
			continue
		}
		results = append(results, result)
	}
	return results, nil
}
