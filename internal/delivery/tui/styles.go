// Package tui provides the interactive review screen: OCR text in an editor,
// submission on demand and the enrichment results below it.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	Title   lipgloss.Style
	Status  lipgloss.Style
	Muted   lipgloss.Style
	Notice  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Editor  lipgloss.Style
	Results lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() *Styles {
	primary := lipgloss.Color("#7C3AED")
	muted := lipgloss.Color("#6C7086")
	success := lipgloss.Color("#A6E3A1")
	warning := lipgloss.Color("#F9E2AF")
	danger := lipgloss.Color("#F38BA8")
	border := lipgloss.Color("#45475A")

	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(primary).MarginBottom(1),
		Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Notice:  lipgloss.NewStyle().Foreground(warning),
		Error:   lipgloss.NewStyle().Foreground(danger).Bold(true),
		Success: lipgloss.NewStyle().Foreground(success),
		Editor:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Results: lipgloss.NewStyle().MarginTop(1),
	}
}
