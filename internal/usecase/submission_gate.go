package usecase

import (
	"strings"

	"github.com/labelscan/labelscan/internal/domain"
)

// RejectReason explains why the current text cannot be submitted
type RejectReason int

const (
	// RejectNone means the submission is accepted
	RejectNone RejectReason = iota
	// RejectBusy means an extraction or submission is still running
	RejectBusy
	// RejectEmpty means there is no text at all
	RejectEmpty
	// RejectPlaceholder means the text is still the unedited placeholder
	RejectPlaceholder
	// RejectNoIngredients means the parser found nothing in the text
	RejectNoIngredients
)

// String returns a short identifier for logs and tests
func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectBusy:
		return "busy"
	case RejectEmpty:
		return "empty"
	case RejectPlaceholder:
		return "placeholder"
	case RejectNoIngredients:
		return "no_ingredients"
	default:
		return "unknown"
	}
}

// Message returns the user-facing explanation
func (r RejectReason) Message() string {
	switch r {
	case RejectBusy:
		return "Please wait for the current operation to finish."
	case RejectEmpty, RejectPlaceholder:
		return "Please upload an image and extract the ingredient text before submitting."
	case RejectNoIngredients:
		return "No ingredients recognized. Please edit the extracted text and try again."
	default:
		return ""
	}
}

// Err maps the reason to its sentinel error, nil when accepted
func (r RejectReason) Err() error {
	switch r {
	case RejectBusy:
		return domain.ErrOperationInFlight
	case RejectEmpty:
		return domain.ErrEmptySubmission
	case RejectPlaceholder:
		return domain.ErrPlaceholderSubmission
	case RejectNoIngredients:
		return domain.ErrNoIngredients
	default:
		return nil
	}
}

// CheckSubmission decides whether the state's raw text may be submitted.
// On acceptance it returns the parsed IngredientSet and RejectNone.
func CheckSubmission(state WorkflowState, parser *IngredientParser) (domain.IngredientSet, RejectReason) {
	if parser == nil {
		parser = defaultParser
	}

	if state.Extracting || state.Submitting {
		return nil, RejectBusy
	}
	if strings.TrimSpace(state.RawText) == "" {
		return nil, RejectEmpty
	}
	if parser.IsPlaceholder(state.RawText) {
		return nil, RejectPlaceholder
	}

	set := parser.Parse(state.RawText)
	if len(set) == 0 {
		return nil, RejectNoIngredients
	}

	return set, RejectNone
}

// CanSubmit reports whether CheckSubmission would accept the state
func CanSubmit(state WorkflowState, parser *IngredientParser) bool {
	_, reason := CheckSubmission(state, parser)
	return reason == RejectNone
}

// BuildRequest wraps an ingredient set in the enrichment request payload
func BuildRequest(set domain.IngredientSet) domain.ProcessRequest {
	ingredients := make(domain.IngredientSet, len(set))
	copy(ingredients, set)
	return domain.ProcessRequest{Ingredients: ingredients}
}
