// Package cli implements the labelscan command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/labelscan/labelscan/config"
	"github.com/labelscan/labelscan/internal/domain"
	"github.com/labelscan/labelscan/internal/infrastructure/enrichment"
	"github.com/labelscan/labelscan/internal/usecase"
)

// ServiceFactory builds the scan service from the loaded configuration.
type ServiceFactory func(cfg *config.Config) (*usecase.ScanService, error)

var (
	configPath string
	serverURL  string
	verbose    bool

	serviceFactory ServiceFactory

	// Set by the root command before any subcommand runs
	scanService *usecase.ScanService
)

var rootCmd = &cobra.Command{
	Use:   "labelscan",
	Short: "Read ingredient labels and look up what is in them",
	Long: `LabelScan extracts the ingredient list from a photo of a product label,
lets you correct the OCR text and asks the enrichment service what each
ingredient is used for, how healthy it is and where it is banned.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "enrichment server URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parser, OCR and HTTP details to stderr")
}

// NewServiceFactory returns a factory that wires the configured parser and
// enrichment client around the OCR engine built by newExtractor.
func NewServiceFactory(newExtractor func(cfg *config.Config) domain.TextExtractor) ServiceFactory {
	return func(cfg *config.Config) (*usecase.ScanService, error) {
		parser := usecase.NewIngredientParser(usecase.ParserOptions{
			Placeholder:         cfg.Workflow.Placeholder,
			BalancedParentheses: cfg.Workflow.BalancedParentheses,
			EnableDebugLogging:  cfg.Workflow.Debug,
		})
		workflow := usecase.NewWorkflow(usecase.WorkflowOptions{
			Parser:                 parser,
			AcknowledgeOnlySuccess: cfg.Workflow.AcknowledgeOnlySuccess,
		})

		client := enrichment.NewClient(cfg.Client.ServerURL, cfg.Client.Timeout)
		client.SetDebug(cfg.Workflow.Debug)

		var extractor domain.TextExtractor
		if newExtractor != nil {
			extractor = newExtractor(cfg)
		}

		return usecase.NewScanService(extractor, client, workflow, usecase.ScanServiceConfig{
			Language:      cfg.OCR.Language,
			MaxImageWidth: cfg.OCR.MaxImageWidth,
			EnableDebug:   cfg.Workflow.Debug,
		}), nil
	}
}

// SetServiceFactory sets how commands obtain the scan service.
func SetServiceFactory(factory ServiceFactory) {
	serviceFactory = factory
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetOutput(cmd.ErrOrStderr())
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Client.ServerURL = serverURL
	}
	if verbose {
		cfg.Workflow.Debug = true
	}

	if serviceFactory == nil {
		return errors.New("scan service not configured")
	}
	svc, err := serviceFactory(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	scanService = svc
	return nil
}

// readInput reads the named file, or stdin when the name is empty or "-"
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}
