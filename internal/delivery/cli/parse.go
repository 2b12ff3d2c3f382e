package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labelscan/labelscan/internal/domain"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Split ingredient text into a clean list",
	Long: `Reads ingredient text from a file or stdin and prints the ingredient names
it contains: quantities like "50mg" or "(0.5%)" removed, duplicates dropped,
first occurrence order kept. Nothing is sent to the server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "output the list as a JSON array")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	set := scanService.Workflow().Parser().Parse(text)

	if parseJSON {
		if set == nil {
			set = domain.IngredientSet{}
		}
		data, err := json.Marshal(set)
		if err != nil {
			return fmt.Errorf("failed to marshal ingredients: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(set) == 0 {
		cmd.Println("No ingredients found.")
		return nil
	}
	for _, name := range set {
		cmd.Println(name)
	}
	return nil
}
