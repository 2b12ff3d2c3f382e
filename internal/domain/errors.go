package domain

import "errors"

var (
	// ErrEmptySubmission is returned when there is no extracted text to submit
	ErrEmptySubmission = errors.New("no text to submit")

	// ErrPlaceholderSubmission is returned when the raw text is still the unedited placeholder
	ErrPlaceholderSubmission = errors.New("text has not been extracted yet")

	// ErrNoIngredients is returned when the parser finds nothing to submit
	ErrNoIngredients = errors.New("no recognizable ingredients")

	// ErrOperationInFlight is returned when an extraction or submission is already running
	ErrOperationInFlight = errors.New("operation already in progress")

	// ErrNoImage is returned when extraction is requested before an image is loaded
	ErrNoImage = errors.New("no image loaded")

	// ErrInvalidRegion is returned when a crop region lies outside the image
	ErrInvalidRegion = errors.New("crop region outside image bounds")

	// ErrExtractionFailed is returned when the OCR engine fails
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEnrichmentFailed is returned when the enrichment service request fails
	ErrEnrichmentFailed = errors.New("enrichment request failed")

	// ErrAnalyzerFailure is returned when the upstream analyzer request fails
	ErrAnalyzerFailure = errors.New("analyzer request failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
