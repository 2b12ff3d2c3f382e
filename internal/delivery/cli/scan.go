package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labelscan/labelscan/internal/delivery/render"
	"github.com/labelscan/labelscan/internal/domain"
	"github.com/labelscan/labelscan/internal/usecase"
)

var (
	scanCrop        string
	scanLanguage    string
	scanFormat      string
	scanExtractOnly bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "OCR a label photo and enrich its ingredients",
	Long: `Runs OCR on a label photo (optionally cropped to the ingredient panel),
parses the extracted text and sends the ingredients to the enrichment server.

Use --extract-only to print the OCR text without submitting it, e.g. to edit
it and pipe it into "labelscan submit -".`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanCrop, "crop", "", "crop region as x,y,width,height in pixels")
	scanCmd.Flags().StringVar(&scanLanguage, "lang", "", "OCR language (overrides config)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "text", "output format: text, json or markdown")
	scanCmd.Flags().BoolVar(&scanExtractOnly, "extract-only", false, "print the extracted text and stop")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(scanFormat)
	if err != nil {
		return err
	}

	state, err := loadImageState(args[0], scanCrop)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc := scanService
	if scanLanguage != "" {
		svc = svc.WithLanguage(scanLanguage)
	}

	state, err = svc.Extract(ctx, state)
	if err != nil {
		return fmt.Errorf("%s: %w", usecase.StatusExtractionError, err)
	}
	if state.Status == usecase.StatusNoText {
		return fmt.Errorf("%s in %s", usecase.StatusNoText, args[0])
	}

	if scanExtractOnly {
		cmd.Println(state.RawText)
		return nil
	}

	return submitState(cmd, state, format)
}

// loadImageState reads the image and applies the crop flag to a fresh workflow
func loadImageState(path, crop string) (usecase.WorkflowState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return usecase.WorkflowState{}, fmt.Errorf("failed to read image: %w", err)
	}

	region, err := parseCrop(crop)
	if err != nil {
		return usecase.WorkflowState{}, err
	}

	wf := scanService.Workflow()
	state, err := wf.LoadImage(wf.Initial(), data)
	if err != nil {
		return state, err
	}
	return wf.SetCrop(state, region), nil
}

// parseCrop parses "x,y,width,height"; an empty flag means the whole image
func parseCrop(s string) (domain.CropRegion, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.CropRegion{}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return domain.CropRegion{}, fmt.Errorf("%w: want x,y,width,height, got %q", domain.ErrInvalidRegion, s)
	}

	var values [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return domain.CropRegion{}, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidRegion, part)
		}
		values[i] = n
	}

	region := domain.CropRegion{X: values[0], Y: values[1], Width: values[2], Height: values[3]}
	if region.X < 0 || region.Y < 0 || region.Width <= 0 || region.Height <= 0 {
		return domain.CropRegion{}, fmt.Errorf("%w: %q", domain.ErrInvalidRegion, s)
	}
	return region, nil
}
