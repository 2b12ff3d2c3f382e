package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labelscan/labelscan/internal/delivery/tui"
)

var reviewCrop string

var reviewCmd = &cobra.Command{
	Use:   "review <image>",
	Short: "Review and correct OCR text interactively before submitting",
	Long: `Opens an interactive screen that runs OCR on the image, shows the text in
an editor and submits the corrected text on request.

Controls:
  ctrl+s - Submit the current text
  ctrl+r - Run OCR again
  esc    - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewCrop, "crop", "", "crop region as x,y,width,height in pixels")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	state, err := loadImageState(args[0], reviewCrop)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	final, err := tui.Run(ctx, scanService, state.Image, state.Crop)
	if err != nil {
		return err
	}
	if final.Error != "" {
		return fmt.Errorf("%s: %s", final.Status, final.Error)
	}
	return nil
}
