package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features <photo>",
	Short: "Print the facial features extracted from a photo",
	Long: `Extract hair, skin and eye colors, face shape and visual features
from a photo and print them as JSON.

Undecodable photos yield the neutral feature set.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	data, err := readPhoto(args[0])
	if err != nil {
		return err
	}
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := newPipeline(ctx, cfg, logger, nil, 0)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	return outputJSON(p.extractor.Extract(ctx, data))
}
