package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soundprediction/hskg/pkg/ingest"
	"github.com/soundprediction/hskg/pkg/types"
	"github.com/spf13/cobra"
)

var conceptsSource string

var conceptsCmd = &cobra.Command{
	Use:   "concepts <file>",
	Short: "Extract categorised concepts from a text or CSV file as YAML items",
	Long: `Concepts splits the input into sentence-level concepts, tags each with a
category from the built-in lexicon and prints them as a YAML item list that
"hskg build --items" accepts. Files ending in .csv are read as feedback.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := types.Source(conceptsSource)
		if source != types.UXSource && source != types.DesignSource {
			return fmt.Errorf("%w: %q", types.ErrInvalidSource, conceptsSource)
		}

		var texts []string
		var err error
		if isCSV(args[0]) {
			texts, err = ingest.LoadFeedbackCSV(args[0], ingest.DefaultFeedbackColumn)
		} else {
			var data []byte
			data, err = os.ReadFile(args[0])
			texts = []string{string(data)}
		}
		if err != nil {
			return err
		}

		items := ingest.ToItems(ingest.ExtractConcepts(texts), source)
		appLogger.Info("Extracted concepts", "path", args[0], "items", len(items))
		return ingest.WriteItems(cmd.OutOrStdout(), items)
	},
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func init() {
	rootCmd.AddCommand(conceptsCmd)
	conceptsCmd.Flags().StringVar(&conceptsSource, "source", string(types.UXSource), "item source (ux or design)")
}
