package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/breed-twin/internal/constants"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <photo>",
	Short: "Print the best matching built-in breeds for a photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	addPipelineFlags(suggestCmd)
	suggestCmd.Flags().Int("count", constants.DefaultSuggestions, "Number of suggestions")
	suggestCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	count := min(mustGetInt(cmd, "count"), constants.MaxSuggestions)
	jsonOutput := mustGetBool(cmd, "json")
	ctx := context.Background()

	data, err := readPhoto(args[0])
	if err != nil {
		return err
	}
	p, cleanup, err := photoPipeline(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	f := p.extractor.Extract(ctx, data)
	suggestions := p.matcher.Suggest(ctx, f, count)
	if jsonOutput {
		return outputJSON(suggestions)
	}

	fmt.Printf("Hair: %s, skin: %s, eyes: %s\n\n", f.Hair.Dominant, f.Skin.Dominant, f.Eyes.Dominant)
	for i, s := range suggestions {
		fmt.Printf("%d. %-28s %3.0f%%  %s\n", i+1, s.Breed, s.Confidence*100, s.Reasoning)
	}
	return nil
}
