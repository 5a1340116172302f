package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/breed-twin/internal/features"
	"github.com/kozaktomas/breed-twin/internal/matcher"
)

var matchCmd = &cobra.Command{
	Use:   "match <photo>",
	Short: "Match a photo to a dog breed",
	Long: `Extract facial features from a photo and find the most similar dog breed.

Examples:
  # Match a photo
  breed-twin match selfie.jpg

  # Reproducible match with a fixed seed
  breed-twin match selfie.jpg --seed 42

  # Use a calibrated hair table
  breed-twin match selfie.jpg --hair-table hair_colors.yaml --json`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	addPipelineFlags(matchCmd)
	matchCmd.Flags().Bool("json", false, "Output as JSON")
}

// addPipelineFlags registers the flags shared by the photo commands.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64("seed", 0, "Random seed for reproducible matches (0 for random)")
	cmd.Flags().String("hair-table", "", "Calibrated hair table YAML to use instead of stored profiles")
}

// MatchOutput is the JSON output of the match command
type MatchOutput struct {
	Match     matcher.Result `json:"match"`
	Features  features.Set   `json:"features"`
	Describer *DescriberCost `json:"describer,omitempty"`
}

// DescriberCost reports LLM usage of a command
type DescriberCost struct {
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// photoPipeline loads config, tables and the pipeline for a photo command.
func photoPipeline(ctx context.Context, cmd *cobra.Command) (*pipeline, func(), error) {
	return photoPipelineWithSeed(ctx, cmd, mustGetUint64(cmd, "seed"))
}

func photoPipelineWithSeed(ctx context.Context, cmd *cobra.Command, seed uint64) (*pipeline, func(), error) {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := openProfileStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	tables, err := loadTables(ctx, mustGetString(cmd, "hair-table"), store, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	p, err := newPipeline(ctx, cfg, logger, tables, seed)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return p, func() {
		closeStore()
		logger.Sync()
	}, nil
}

func readPhoto(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return data, nil
}

func runMatch(cmd *cobra.Command, args []string) error {
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
	res := p.matcher.Match(ctx, f)

	var cost *DescriberCost
	if name, usage, usd := p.describerCost(); name != "" && usage.InputTokens+usage.OutputTokens > 0 {
		cost = &DescriberCost{Model: name, InputTokens: usage.InputTokens, OutputTokens: usage.OutputTokens, CostUSD: usd}
	}

	if jsonOutput {
		return outputJSON(MatchOutput{Match: res, Features: f, Describer: cost})
	}

	fmt.Printf("Your breed twin: %s\n", res.Breed)
	fmt.Printf("  Confidence: %.0f%%\n", res.Confidence*100)
	fmt.Printf("  Strategy:   %s (%d breeds tested)\n", res.Strategy, res.Tested)
	fmt.Printf("  Image:      %s\n", res.DogImage)
	if res.Reasoning != "" {
		fmt.Printf("\n%s\n", res.Reasoning)
	}
	if info := res.BreedInfo; info != nil {
		fmt.Println("\nBreed info:")
		fmt.Printf("  Temperament: %s\n", info.Temperament)
		fmt.Printf("  Origin:      %s\n", info.Origin)
		fmt.Printf("  Size:        %s\n", info.Size)
		fmt.Printf("  Life span:   %s\n", info.LifeSpan)
		if info.Description != "" {
			fmt.Printf("\n%s\n", strings.TrimSpace(info.Description))
		}
	}
	if cost != nil {
		fmt.Printf("\nDescription by %s: %d in / %d out tokens, $%.6f\n",
			cost.Model, cost.InputTokens, cost.OutputTokens, cost.CostUSD)
	}
	return nil
}
