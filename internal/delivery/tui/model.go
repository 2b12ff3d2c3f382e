package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/labelscan/labelscan/internal/delivery/render"
	"github.com/labelscan/labelscan/internal/domain"
	"github.com/labelscan/labelscan/internal/usecase"
)

// Scanner is the part of the scan service the review screen drives.
type Scanner interface {
	Workflow() *usecase.Workflow
	Recognize(ctx context.Context, image []byte, crop domain.CropRegion) (string, error)
	Enrich(ctx context.Context, request domain.ProcessRequest) ([]domain.EnrichmentRecord, error)
}

// extractionDone carries the OCR outcome back into the update loop.
type extractionDone struct {
	text string
	err  error
}

// submissionDone carries the enrichment outcome back into the update loop.
type submissionDone struct {
	records []domain.EnrichmentRecord
	err     error
}

// Model is the review screen. Every state change goes through the workflow
// transitions; the editor only mirrors RawText.
type Model struct {
	ctx      context.Context
	scanner  Scanner
	workflow *usecase.Workflow
	state    usecase.WorkflowState

	editor  textarea.Model
	spinner spinner.Model
	styles  *Styles

	width    int
	quitting bool
}

// Ensure Model implements tea.Model.
var _ tea.Model = (*Model)(nil)

// NewModel loads the image into a fresh workflow and prepares the editor.
func NewModel(ctx context.Context, scanner Scanner, image []byte, crop domain.CropRegion) (*Model, error) {
	if scanner == nil {
		return nil, errors.New("scan service not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	wf := scanner.Workflow()
	state, err := wf.LoadImage(wf.Initial(), image)
	if err != nil {
		return nil, err
	}
	state = wf.SetCrop(state, crop)

	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.SetWidth(80)
	editor.SetHeight(8)
	editor.SetValue(state.RawText)
	editor.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:      ctx,
		scanner:  scanner,
		workflow: wf,
		state:    state,
		editor:   editor,
		spinner:  sp,
		styles:   DefaultStyles(),
		width:    80,
	}, nil
}

// State returns the current workflow snapshot.
func (m *Model) State() usecase.WorkflowState {
	return m.state
}

// Init starts the first extraction.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.startExtraction())
}

// Update handles messages for the review screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 4 {
			m.editor.SetWidth(msg.Width - 4)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case extractionDone:
		if msg.err != nil {
			m.state = m.workflow.FailExtraction(m.state, msg.err)
		} else {
			m.state = m.workflow.CompleteExtraction(m.state, msg.text)
		}
		m.editor.SetValue(m.state.RawText)
		return m, nil

	case submissionDone:
		if msg.err != nil {
			m.state = m.workflow.FailSubmission(m.state, msg.err)
		} else {
			m.state = m.workflow.CompleteSubmission(m.state, msg.records)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyCtrlS:
		return m, m.startSubmission()
	case tea.KeyCtrlR:
		return m, m.startExtraction()
	}

	// The editor is read-only while OCR is running
	if m.state.Extracting {
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.state = m.workflow.EditText(m.state, m.editor.Value())
	return m, cmd
}

func (m *Model) startExtraction() tea.Cmd {
	next, err := m.workflow.BeginExtraction(m.state)
	m.state = next
	if err != nil {
		return nil
	}

	scanner, ctx := m.scanner, m.ctx
	image, crop := next.Image, next.Crop
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		text, err := scanner.Recognize(ctx, image, crop)
		return extractionDone{text: text, err: err}
	})
}

func (m *Model) startSubmission() tea.Cmd {
	next, request, err := m.workflow.BeginSubmission(m.state)
	m.state = next
	if err != nil {
		return nil
	}

	scanner, ctx := m.scanner, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		records, err := scanner.Enrich(ctx, request)
		return submissionDone{records: records, err: err}
	})
}

// View renders the review screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("LabelScan"))
	b.WriteString("\n")

	status := string(m.state.Status)
	if m.state.Busy() {
		status = m.spinner.View() + " " + status
	}
	if status != "" {
		b.WriteString(m.styles.Status.Render(status))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Editor.Render(m.editor.View()))
	b.WriteString("\n")

	if m.state.Notice != "" {
		b.WriteString(m.styles.Notice.Render(m.state.Notice))
		b.WriteString("\n")
	}
	if m.state.Error != "" {
		b.WriteString(m.styles.Error.Render("Error: " + m.state.Error))
		b.WriteString("\n")
	}
	if m.state.Acknowledgment != "" {
		b.WriteString(m.styles.Success.Render(m.state.Acknowledgment))
		b.WriteString("\n")
	}
	if len(m.state.Results) > 0 {
		b.WriteString(m.styles.Results.Render(render.Text(m.state.Results)))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf(
		"ctrl+s submit • ctrl+r re-run OCR • esc quit • %d ingredients detected",
		len(m.workflow.Parser().Parse(m.state.RawText)),
	)))
	b.WriteString("\n")
	return b.String()
}

// Run opens the review screen and blocks until the user quits.
// It returns the final workflow state.
func Run(ctx context.Context, scanner Scanner, image []byte, crop domain.CropRegion) (usecase.WorkflowState, error) {
	model, err := NewModel(ctx, scanner, image, crop)
	if err != nil {
		return usecase.WorkflowState{}, fmt.Errorf("failed to create review screen: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return model.State(), fmt.Errorf("TUI error: %w", err)
	}
	if fm, ok := final.(*Model); ok {
		return fm.State(), nil
	}
	return model.State(), nil
}
