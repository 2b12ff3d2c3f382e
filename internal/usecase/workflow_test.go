package usecase

import (
	"errors"
	"reflect"
	"testing"

	"github.com/labelscan/labelscan/internal/domain"
)

func loadedState(t *testing.T, w *Workflow) WorkflowState {
	t.Helper()
	s, err := w.LoadImage(w.Initial(), []byte("image"))
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	return s
}

func TestWorkflowInitial(t *testing.T) {
	w := NewWorkflow(WorkflowOptions{})
	s := w.Initial()

	if s.RawText != DefaultPlaceholder {
		t.Errorf("RawText = %q, want placeholder", s.RawText)
	}
	if s.Busy() {
		t.Error("initial state should not be busy")
	}
	if _, reason := CheckSubmission(s, w.Parser()); reason != RejectPlaceholder {
		t.Errorf("initial state gate = %v, want %v", reason, RejectPlaceholder)
	}
}

func TestWorkflowLoadImage(t *testing.T) {
	w := NewWorkflow(WorkflowOptions{})

	t.Run("replaces previous text and results", func(t *testing.T) {
		prev := WorkflowState{
			Image:   []byte("old"),
			RawText: "Salt",
			Results: []domain.EnrichmentRecord{{Ingredient: "Salt"}},
			Error:   "boom",
			Crop:    domain.CropRegion{Width: 10, Height: 10},
		}

		s, err := w.LoadImage(prev, []byte("new"))
		if err != nil {
			t.Fatalf("LoadImage() error = %v", err)
		}
		if string(s.Image) != "new" || s.RawText != DefaultPlaceholder || s.Results != nil || s.Error != "" {
			t.Errorf("LoadImage() did not reset state: %+v", s)
		}
		if !s.Crop.IsEmpty() {
			t.Errorf("Crop = %+v, want empty", s.Crop)
		}
		if s.Status != StatusImageLoaded {
			t.Errorf("Status = %q, want %q", s.Status, StatusImageLoaded)
		}
	})

	t.Run("refused while busy", func(t *testing.T) {
		busy := WorkflowState{Image: []byte("old"), Extracting: true}

		s, err := w.LoadImage(busy, []byte("new"))
		if !errors.Is(err, domain.ErrOperationInFlight) {
			t.Errorf("LoadImage() error = %v, want ErrOperationInFlight", err)
		}
		if string(s.Image) != "old" {
			t.Error("image replaced while busy")
		}
	})
}

func TestWorkflowExtraction(t *testing.T) {
	w := NewWorkflow(WorkflowOptions{})

	t.Run("requires an image", func(t *testing.T) {
		s, err := w.BeginExtraction(w.Initial())
		if !errors.Is(err, domain.ErrNoImage) {
			t.Errorf("BeginExtraction() error = %v, want ErrNoImage", err)
		}
		if s.Extracting || s.Notice == "" {
			t.Errorf("BeginExtraction() state = %+v, want notice and not extracting", s)
		}
	})

	t.Run("one extraction at a time", func(t *testing.T) {
		s, err := w.BeginExtraction(loadedState(t, w))
		if err != nil {
			t.Fatalf("BeginExtraction() error = %v", err)
		}
		if !s.Extracting || s.Status != StatusExtracting {
			t.Errorf("state = %+v, want extracting", s)
		}

		if _, err := w.BeginExtraction(s); !errors.Is(err, domain.ErrOperationInFlight) {
			t.Errorf("second BeginExtraction() error = %v, want ErrOperationInFlight", err)
		}
	})

	t.Run("text replaces the placeholder", func(t *testing.T) {
		s, _ := w.BeginExtraction(loadedState(t, w))
		s = w.CompleteExtraction(s, "Salt, Sugar")

		if s.Extracting || s.RawText != "Salt, Sugar" || s.Status != StatusExtracted {
			t.Errorf("CompleteExtraction() state = %+v", s)
		}
	})

	t.Run("no text is distinct from failure", func(t *testing.T) {
		s, _ := w.BeginExtraction(loadedState(t, w))
		empty := w.CompleteExtraction(s, "")
		failed := w.FailExtraction(s, errors.New("engine crashed"))

		if empty.Status != StatusNoText || empty.Error != "" {
			t.Errorf("empty extraction state = %+v", empty)
		}
		if failed.Status != StatusExtractionError || failed.Error != "engine crashed" {
			t.Errorf("failed extraction state = %+v", failed)
		}
		if failed.RawText != DefaultPlaceholder {
			t.Errorf("failed extraction RawText = %q, want previous text kept", failed.RawText)
		}
		if empty.Status == failed.Status {
			t.Error("no-text and extraction-error statuses must differ")
		}
	})

	t.Run("edits ignored while extracting", func(t *testing.T) {
		s, _ := w.BeginExtraction(loadedState(t, w))
		s = w.EditText(s, "typed")
		if s.RawText != DefaultPlaceholder {
			t.Errorf("RawText = %q, want edit ignored", s.RawText)
		}
	})
}

func TestWorkflowSubmission(t *testing.T) {
	w := NewWorkflow(WorkflowOptions{})
	records := []domain.EnrichmentRecord{{Ingredient: "Salt", Usage: "seasoning"}}

	t.Run("placeholder is rejected without a request", func(t *testing.T) {
		s, req, err := w.BeginSubmission(loadedState(t, w))
		if !errors.Is(err, domain.ErrPlaceholderSubmission) {
			t.Errorf("BeginSubmission() error = %v, want ErrPlaceholderSubmission", err)
		}
		if s.Submitting || req.Ingredients != nil {
			t.Errorf("rejected submission started: %+v %+v", s, req)
		}
		if s.Notice != RejectPlaceholder.Message() {
			t.Errorf("Notice = %q, want %q", s.Notice, RejectPlaceholder.Message())
		}
	})

	t.Run("no ingredients has its own notice", func(t *testing.T) {
		s := w.EditText(loadedState(t, w), ";;;")
		s, _, err := w.BeginSubmission(s)
		if !errors.Is(err, domain.ErrNoIngredients) {
			t.Errorf("BeginSubmission() error = %v, want ErrNoIngredients", err)
		}
		if s.Notice != RejectNoIngredients.Message() {
			t.Errorf("Notice = %q", s.Notice)
		}
	})

	t.Run("success stores results and acknowledges", func(t *testing.T) {
		s := w.EditText(loadedState(t, w), "Salt 50mg, Salt")
		s, req, err := w.BeginSubmission(s)
		if err != nil {
			t.Fatalf("BeginSubmission() error = %v", err)
		}
		if !reflect.DeepEqual(req.Ingredients, domain.IngredientSet{"Salt"}) {
			t.Errorf("request = %q, want [Salt]", req.Ingredients)
		}
		if !s.Submitting || s.Status != StatusSubmitting {
			t.Errorf("state = %+v, want submitting", s)
		}
		if _, _, err := w.BeginSubmission(s); !errors.Is(err, domain.ErrOperationInFlight) {
			t.Errorf("second BeginSubmission() error = %v, want ErrOperationInFlight", err)
		}

		s = w.CompleteSubmission(s, records)
		if s.Submitting || s.Status != StatusSubmitted || s.Acknowledgment != Acknowledgment {
			t.Errorf("CompleteSubmission() state = %+v", s)
		}
		if !reflect.DeepEqual(s.Results, records) {
			t.Errorf("Results = %+v, want %+v", s.Results, records)
		}
	})

	t.Run("failure clears results and still acknowledges", func(t *testing.T) {
		s := w.EditText(loadedState(t, w), "Salt")
		s, _, _ = w.BeginSubmission(s)
		s = w.CompleteSubmission(s, records)

		s, _, _ = w.BeginSubmission(s)
		if s.Results != nil {
			t.Error("new submission should clear previous results")
		}
		s = w.FailSubmission(s, errors.New("status 500"))

		if s.Results != nil || s.Error != "status 500" || s.Status != StatusSubmissionError {
			t.Errorf("FailSubmission() state = %+v", s)
		}
		if s.Acknowledgment != Acknowledgment {
			t.Errorf("Acknowledgment = %q, want %q", s.Acknowledgment, Acknowledgment)
		}
	})

	t.Run("acknowledge only success", func(t *testing.T) {
		strict := NewWorkflow(WorkflowOptions{AcknowledgeOnlySuccess: true})
		s := strict.EditText(loadedState(t, strict), "Salt")
		s, _, _ = strict.BeginSubmission(s)
		s = strict.FailSubmission(s, errors.New("timeout"))

		if s.Acknowledgment != "" {
			t.Errorf("Acknowledgment = %q, want none after failure", s.Acknowledgment)
		}
	})
}

func TestWorkflowSetCrop(t *testing.T) {
	w := NewWorkflow(WorkflowOptions{})
	region := domain.CropRegion{X: 1, Y: 2, Width: 3, Height: 4}

	s := w.SetCrop(loadedState(t, w), region)
	if s.Crop != region {
		t.Errorf("Crop = %+v, want %+v", s.Crop, region)
	}
}
