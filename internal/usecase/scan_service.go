package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/labelscan/labelscan/internal/domain"
	"github.com/labelscan/labelscan/internal/infrastructure/ocr"
)

// ScanServiceConfig holds configuration for the scan service
type ScanServiceConfig struct {
	Language      string
	MaxImageWidth int
	EnableDebug   bool
}

// ScanService runs the collaborators behind the workflow transitions.
// Failures become terminal states of the attempt; nothing is retried.
type ScanService struct {
	extractor domain.TextExtractor
	client    domain.EnrichmentClient
	workflow  *Workflow
	language  string
	maxWidth  int
	debug     bool
}

// NewScanService creates a new scan service with dependencies
func NewScanService(
	extractor domain.TextExtractor,
	client domain.EnrichmentClient,
	workflow *Workflow,
	config ScanServiceConfig,
) *ScanService {
	if workflow == nil {
		workflow = NewWorkflow(WorkflowOptions{})
	}
	return &ScanService{
		extractor: extractor,
		client:    client,
		workflow:  workflow,
		language:  config.Language,
		maxWidth:  config.MaxImageWidth,
		debug:     config.EnableDebug,
	}
}

// Workflow returns the transitions used by the service
func (s *ScanService) Workflow() *Workflow {
	return s.workflow
}

// WithLanguage returns a copy of the service that runs OCR in the given language
func (s *ScanService) WithLanguage(language string) *ScanService {
	c := *s
	c.language = language
	return &c
}

// Recognize crops the image and runs OCR on it
func (s *ScanService) Recognize(ctx context.Context, image []byte, crop domain.CropRegion) (string, error) {
	if s.extractor == nil {
		return "", fmt.Errorf("%w: no OCR engine configured", domain.ErrExtractionFailed)
	}

	prepared, err := ocr.PrepareImage(image, crop, s.maxWidth)
	if err != nil {
		if errors.Is(err, domain.ErrNoImage) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	if s.debug {
		log.Printf("[SCAN] Running OCR on %d byte JPEG (crop=%+v)", len(prepared), crop)
	}
	return s.extractor.ExtractText(ctx, domain.ExtractionRequest{
		Image:    prepared,
		Language: s.language,
	})
}

// Enrich sends an accepted request to the enrichment service
func (s *ScanService) Enrich(ctx context.Context, request domain.ProcessRequest) ([]domain.EnrichmentRecord, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: no enrichment client configured", domain.ErrEnrichmentFailed)
	}
	return s.client.ProcessIngredients(ctx, request)
}

// Extract runs OCR for the state's image and crop. The returned error is the
// reason the attempt did not produce text; the state always reflects it.
func (s *ScanService) Extract(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	next, err := s.workflow.BeginExtraction(state)
	if err != nil {
		return next, err
	}

	text, err := s.Recognize(ctx, next.Image, next.Crop)
	if err != nil {
		return s.workflow.FailExtraction(next, err), err
	}
	return s.workflow.CompleteExtraction(next, text), nil
}

// Submit gates, sends and stores the enrichment results for the state's text
func (s *ScanService) Submit(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	next, request, err := s.workflow.BeginSubmission(state)
	if err != nil {
		return next, err
	}

	if s.debug {
		log.Printf("[SCAN] Submitting %d ingredients", len(request.Ingredients))
	}

	records, err := s.Enrich(ctx, request)
	if err != nil {
		return s.workflow.FailSubmission(next, err), err
	}
	return s.workflow.CompleteSubmission(next, records), nil
}
