// Package tesseract implements domain.TextExtractor with the gosseract client.
package tesseract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/labelscan/labelscan/internal/domain"
)

// DefaultLanguage is the traineddata used when no hint is given
const DefaultLanguage = "eng"

// Engine runs Tesseract OCR on prepared JPEG images
type Engine struct {
	clientFactory   func() *gosseract.Client
	defaultLanguage string
	debug           bool
}

// NewEngine constructs a Tesseract-backed extractor
func NewEngine(defaultLanguage string) *Engine {
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}
	return &Engine{
		clientFactory:   gosseract.NewClient,
		defaultLanguage: defaultLanguage,
	}
}

// SetDebug enables per-call logging
func (e *Engine) SetDebug(debug bool) {
	e.debug = debug
}

// ExtractText recognises text in req.Image. An empty result means no text was found.
func (e *Engine) ExtractText(ctx context.Context, req domain.ExtractionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if len(req.Image) == 0 {
		return "", domain.ErrNoImage
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(req.Image); err != nil {
		return "", fmt.Errorf("%w: set image: %v", domain.ErrExtractionFailed, err)
	}

	language := req.Language
	if language == "" {
		language = e.defaultLanguage
	}
	if err := c.SetLanguage(language); err != nil {
		return "", fmt.Errorf("%w: set language %q: %v", domain.ErrExtractionFailed, language, err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("%w: recognize text: %v", domain.ErrExtractionFailed, err)
	}
	text = strings.TrimSpace(text)

	if e.debug {
		log.Printf("[OCR] Recognized %d characters (lang=%s)", len(text), language)
	}
	return text, nil
}
