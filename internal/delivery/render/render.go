// Package render formats enrichment records for terminals and reports.
// Missing fields are shown as "Unknown" and an empty ban list as "None".
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/labelscan/labelscan/internal/domain"
)

// Format selects an output representation
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or markdown)", s)
	}
}

// Records writes records in the given format
func Records(w io.Writer, records []domain.EnrichmentRecord, format Format) error {
	switch format {
	case FormatJSON:
		return JSON(w, records)
	case FormatMarkdown:
		return Markdown(w, records)
	default:
		_, err := io.WriteString(w, Text(records))
		return err
	}
}

// Text renders records as an indented plain-text list
func Text(records []domain.EnrichmentRecord) string {
	if len(records) == 0 {
		return "No results.\n"
	}

	var b strings.Builder
	for i, r := range records {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, r.DisplayName())
		fmt.Fprintf(&b, "    Usage:  %s\n", r.DisplayUsage())
		fmt.Fprintf(&b, "    Health: %s\n", r.DisplayVerdict())
		fmt.Fprintf(&b, "    Reason: %s\n", r.DisplayReason())
		if r.Health.Rating != nil {
			fmt.Fprintf(&b, "    Rating: %d/5\n", *r.Health.Rating)
		}
		fmt.Fprintf(&b, "    Banned: %s\n", r.DisplayBanned())
		if i < len(records)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// JSON writes the records wrapped the way the enrichment service returns them
func JSON(w io.Writer, records []domain.EnrichmentRecord) error {
	if records == nil {
		records = []domain.EnrichmentRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(domain.ProcessResponse{Results: records})
}

// Markdown writes a report with one table row per ingredient
func Markdown(w io.Writer, records []domain.EnrichmentRecord) error {
	md := markdown.NewMarkdown(w)
	md.H2("Ingredient Analysis")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No results.")
		return md.Build()
	}

	rows := make([][]string, 0, len(records))
	flagged := 0
	for _, r := range records {
		rating := domain.UnknownValue
		if r.Health.Rating != nil {
			rating = fmt.Sprintf("%d/5", *r.Health.Rating)
		}
		if r.DisplayBanned() != domain.NoneValue {
			flagged++
		}
		rows = append(rows, []string{
			escapeCell(r.DisplayName()),
			escapeCell(r.DisplayUsage()),
			escapeCell(r.DisplayVerdict()),
			escapeCell(r.DisplayReason()),
			rating,
			escapeCell(r.DisplayBanned()),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Ingredient", "Usage", "Health", "Reason", "Rating", "Banned In"},
		Rows:   rows,
	})
	md.PlainText("")

	if flagged > 0 {
		md.Warningf("%d of %d ingredients are banned or restricted somewhere.", flagged, len(records))
	} else {
		md.Note("None of these ingredients are reported as banned.")
	}

	return md.Build()
}

// escapeCell keeps table cells on one line and escapes the column separator
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
