package main

import (
	"os"

	"github.com/labelscan/labelscan/config"
	"github.com/labelscan/labelscan/internal/delivery/cli"
	"github.com/labelscan/labelscan/internal/domain"
	"github.com/labelscan/labelscan/internal/infrastructure/ocr/tesseract"
)

func main() {
	cli.SetServiceFactory(cli.NewServiceFactory(func(cfg *config.Config) domain.TextExtractor {
		engine := tesseract.NewEngine(cfg.OCR.Language)
		engine.SetDebug(cfg.Workflow.Debug)
		return engine
	}))

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
