package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labelscan/labelscan/internal/delivery/render"
	"github.com/labelscan/labelscan/internal/domain"
	"github.com/labelscan/labelscan/internal/usecase"
)

var submitFormat string

var submitCmd = &cobra.Command{
	Use:   "submit [file|-]",
	Short: "Send ingredient text to the enrichment server",
	Long: `Reads ingredient text from a file or stdin, parses it and sends the
ingredient list to the enrichment server. Text that contains no ingredients
is rejected before anything is sent.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitFormat, "format", "f", "text", "output format: text, json or markdown")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(submitFormat)
	if err != nil {
		return err
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	wf := scanService.Workflow()
	state := wf.EditText(wf.Initial(), text)
	return submitState(cmd, state, format)
}

// submitState runs a submission and prints its outcome
func submitState(cmd *cobra.Command, state usecase.WorkflowState, format render.Format) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	state, err := scanService.Submit(ctx, state)
	if err != nil {
		if isRejection(err) {
			// Nothing was sent
			return errors.New(state.Notice)
		}
		if state.Acknowledgment != "" {
			cmd.Println(state.Acknowledgment)
		}
		return fmt.Errorf("submission failed: %w", err)
	}

	if err := render.Records(cmd.OutOrStdout(), state.Results, format); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}
	if format == render.FormatText && state.Acknowledgment != "" {
		cmd.Println()
		cmd.Println(state.Acknowledgment)
	}
	return nil
}

// isRejection reports whether err came from the submission gate
func isRejection(err error) bool {
	return errors.Is(err, domain.ErrEmptySubmission) ||
		errors.Is(err, domain.ErrPlaceholderSubmission) ||
		errors.Is(err, domain.ErrNoIngredients) ||
		errors.Is(err, domain.ErrOperationInFlight)
}
