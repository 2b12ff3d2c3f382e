package usecase

import (
	"github.com/labelscan/labelscan/internal/domain"
)

// WorkflowStatus is the user-visible status line
type WorkflowStatus string

const (
	StatusIdle            WorkflowStatus = ""
	StatusImageLoaded     WorkflowStatus = "Image loaded"
	StatusExtracting      WorkflowStatus = "Extracting text..."
	StatusExtracted       WorkflowStatus = "Extraction complete"
	StatusNoText          WorkflowStatus = "No text found"
	StatusExtractionError WorkflowStatus = "Error during extraction"
	StatusSubmitting      WorkflowStatus = "Submitting ingredients..."
	StatusSubmitted       WorkflowStatus = "Results received"
	StatusSubmissionError WorkflowStatus = "Submission failed"
)

// Acknowledgment is the generic message shown once a submission finishes
const Acknowledgment = "Operation complete"

// WorkflowState is an immutable snapshot of the scan workflow.
// Transitions on Workflow take a snapshot and return the next one.
type WorkflowState struct {
	Image      []byte
	Crop       domain.CropRegion
	RawText    string
	Extracting bool
	Submitting bool

	// Ingredients is the set sent by the latest accepted submission
	Ingredients domain.IngredientSet
	Results     []domain.EnrichmentRecord
	Error       string

	Status         WorkflowStatus
	Notice         string
	Acknowledgment string
}

// Busy reports whether an operation is in flight
func (s WorkflowState) Busy() bool {
	return s.Extracting || s.Submitting
}

// WorkflowOptions configures the workflow transitions
type WorkflowOptions struct {
	Parser *IngredientParser

	// AcknowledgeOnlySuccess suppresses the acknowledgment when the backend call
	// failed. Off by default: the acknowledgment is always shown.
	AcknowledgeOnlySuccess bool
}

// Workflow holds the pure transition functions of the scan workflow
type Workflow struct {
	parser                 *IngredientParser
	acknowledgeOnlySuccess bool
}

// NewWorkflow creates a new workflow
func NewWorkflow(opts WorkflowOptions) *Workflow {
	parser := opts.Parser
	if parser == nil {
		parser = defaultParser
	}
	return &Workflow{
		parser:                 parser,
		acknowledgeOnlySuccess: opts.AcknowledgeOnlySuccess,
	}
}

// Parser returns the parser used by the submission gate
func (w *Workflow) Parser() *IngredientParser {
	return w.parser
}

// Initial returns the state before any image is loaded
func (w *Workflow) Initial() WorkflowState {
	return WorkflowState{RawText: w.parser.Placeholder()}
}

// LoadImage starts over with a new image. Text and results from the previous image are dropped.
func (w *Workflow) LoadImage(s WorkflowState, image []byte) (WorkflowState, error) {
	if s.Busy() {
		s.Notice = RejectBusy.Message()
		return s, domain.ErrOperationInFlight
	}

	next := w.Initial()
	next.Image = image
	next.Status = StatusImageLoaded
	return next, nil
}

// SetCrop replaces the crop region
func (w *Workflow) SetCrop(s WorkflowState, region domain.CropRegion) WorkflowState {
	s.Crop = region
	s.Notice = ""
	return s
}

// BeginExtraction marks OCR as running
func (w *Workflow) BeginExtraction(s WorkflowState) (WorkflowState, error) {
	if s.Busy() {
		s.Notice = RejectBusy.Message()
		return s, domain.ErrOperationInFlight
	}
	if len(s.Image) == 0 {
		s.Notice = "Please upload an image first."
		return s, domain.ErrNoImage
	}

	s.Extracting = true
	s.Status = StatusExtracting
	s.Notice = ""
	s.Error = ""
	return s, nil
}

// CompleteExtraction replaces the raw text with the OCR output
func (w *Workflow) CompleteExtraction(s WorkflowState, text string) WorkflowState {
	s.Extracting = false
	s.RawText = text
	if text == "" {
		s.Status = StatusNoText
	} else {
		s.Status = StatusExtracted
	}
	return s
}

// FailExtraction records an OCR failure. The previous text is kept so the user can retry.
func (w *Workflow) FailExtraction(s WorkflowState, err error) WorkflowState {
	s.Extracting = false
	s.Status = StatusExtractionError
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// EditText replaces the raw text with the user's edit. Ignored while OCR is running.
func (w *Workflow) EditText(s WorkflowState, text string) WorkflowState {
	if s.Extracting {
		return s
	}
	s.RawText = text
	s.Notice = ""
	return s
}

// BeginSubmission runs the submission gate. On acceptance it marks the submission
// as running, clears the previous results and returns the request to send.
func (w *Workflow) BeginSubmission(s WorkflowState) (WorkflowState, domain.ProcessRequest, error) {
	set, reason := CheckSubmission(s, w.parser)
	if reason != RejectNone {
		s.Notice = reason.Message()
		return s, domain.ProcessRequest{}, reason.Err()
	}

	s.Submitting = true
	s.Ingredients = set
	s.Results = nil
	s.Error = ""
	s.Notice = ""
	s.Acknowledgment = ""
	s.Status = StatusSubmitting
	return s, BuildRequest(set), nil
}

// CompleteSubmission stores the enrichment results
func (w *Workflow) CompleteSubmission(s WorkflowState, records []domain.EnrichmentRecord) WorkflowState {
	s.Submitting = false
	s.Results = make([]domain.EnrichmentRecord, len(records))
	copy(s.Results, records)
	s.Error = ""
	s.Status = StatusSubmitted
	s.Acknowledgment = Acknowledgment
	return s
}

// FailSubmission records a backend or transport failure and clears any results
func (w *Workflow) FailSubmission(s WorkflowState, err error) WorkflowState {
	s.Submitting = false
	s.Results = nil
	s.Status = StatusSubmissionError
	if err != nil {
		s.Error = err.Error()
	}
	if w.acknowledgeOnlySuccess {
		s.Acknowledgment = ""
	} else {
		s.Acknowledgment = Acknowledgment
	}
	return s
}
