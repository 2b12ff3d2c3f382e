package usecase

import (
	"log"
	"regexp"
	"strings"
	"unicode"

	"github.com/labelscan/labelscan/internal/domain"
)

// DefaultPlaceholder is the instructional text shown before any extraction has run
const DefaultPlaceholder = "Extracted text will appear here. Upload and crop an image, then run extraction."

// quantity matches a number with one of the recognised units, e.g. "50mg", "0.5 %", "2 kg"
const quantity = `\b\d+(?:\.\d+)?\s*(?:mg|kg|ml|g)\b|\b\d+(?:\.\d+)?\s*%`

// Compiled regex patterns for ingredient parsing
var (
	// Runs of newline, bullet, comma, semicolon or slash separate segments
	segmentDelimiterPattern = regexp.MustCompile(`[\r\n\x{2022},;/]+`)

	// Standalone "and" / "&" connectors, only when surrounded by whitespace.
	// Adjacent connectors ("and and") form a single separator.
	conjunctionPattern = regexp.MustCompile(`(?i)\s+(?:(?:and|&)\s+)+`)

	// Quantity annotations. A parenthesised one is removed whole only at the
	// end of a token, e.g. "Citric Acid (0.5%)".
	quantityUnitPattern = regexp.MustCompile(`(?i)\(\s*(?:` + quantity + `)\s*\)\s*$|` + quantity)
)

// ParserOptions configures an IngredientParser
type ParserOptions struct {
	// Placeholder is treated as no input at all. Defaults to DefaultPlaceholder.
	Placeholder string

	// BalancedParentheses strips only a fully enclosing "( ... )" pair instead of
	// any leading "(" run and trailing ")" run.
	BalancedParentheses bool

	EnableDebugLogging bool
}

// IngredientParser turns free-form label text into a deduplicated ingredient list.
// It only does lexical cleanup: no dictionary lookups, no spelling correction.
type IngredientParser struct {
	placeholder         string
	balancedParentheses bool
	enableDebugLogging  bool
}

var defaultParser = NewIngredientParser(ParserOptions{})

// NewIngredientParser creates a new ingredient parser
func NewIngredientParser(opts ParserOptions) *IngredientParser {
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	return &IngredientParser{
		placeholder:         placeholder,
		balancedParentheses: opts.BalancedParentheses,
		enableDebugLogging:  opts.EnableDebugLogging,
	}
}

// ParseIngredients parses text with the default parser
func ParseIngredients(text string) domain.IngredientSet {
	return defaultParser.Parse(text)
}

// Placeholder returns the placeholder text this parser ignores
func (p *IngredientParser) Placeholder() string {
	return p.placeholder
}

// IsPlaceholder reports whether text is exactly the placeholder
func (p *IngredientParser) IsPlaceholder(text string) bool {
	return text == p.placeholder
}

// Parse converts raw text into an IngredientSet. It never fails; bad input just
// yields fewer (or zero) names.
func (p *IngredientParser) Parse(text string) domain.IngredientSet {
	result := domain.IngredientSet{}
	if strings.TrimSpace(text) == "" || p.IsPlaceholder(text) {
		return result
	}

	seen := make(map[string]struct{})

	// Step 1: split into segments on delimiter runs
	for _, segment := range segmentDelimiterPattern.Split(text, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		// Step 2: split on standalone conjunctions
		for _, part := range conjunctionPattern.Split(segment, -1) {
			// Step 3: strip quantities and enclosing parentheses
			name := p.cleanToken(part)
			if name == "" {
				continue
			}

			// Step 4: first occurrence wins
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			result = append(result, name)
		}
	}

	if p.enableDebugLogging {
		log.Printf("[PARSER] Input: %q → Output: %q", text, []string(result))
	}

	return result
}

// cleanToken removes quantity annotations, then enclosing parentheses and whitespace
func (p *IngredientParser) cleanToken(token string) string {
	cleaned := quantityUnitPattern.ReplaceAllString(token, "")

	if p.balancedParentheses {
		return stripBalancedParentheses(cleaned)
	}

	cleaned = strings.TrimLeftFunc(cleaned, func(r rune) bool {
		return r == '(' || unicode.IsSpace(r)
	})
	cleaned = strings.TrimRightFunc(cleaned, func(r rune) bool {
		return r == ')' || unicode.IsSpace(r)
	})
	return cleaned
}

// stripBalancedParentheses removes "( ... )" pairs that wrap the whole token
func stripBalancedParentheses(s string) string {
	for {
		s = strings.TrimSpace(s)
		if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
			return s
		}
		if matchingParen(s) != len(s)-1 {
			return s
		}
		s = s[1 : len(s)-1]
	}
}

// matchingParen returns the index of the ")" closing the "(" at s[0], or -1
func matchingParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
