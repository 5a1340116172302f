package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/breed-twin/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the breed catalog",
	Long: `Fetch the dog.ceo breed list and print the classified catalog.

Examples:
  # List all breeds
  breed-twin catalog

  # Breeds with black or white coats and brown eyes
  breed-twin catalog --hair Black,White --eyes Brown`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringSlice("hair", nil, "Only breeds with any of these coat colors")
	catalogCmd.Flags().StringSlice("eyes", nil, "Only breeds with any of these eye colors")
	catalogCmd.Flags().String("hair-table", "", "Calibrated hair table YAML to use instead of stored profiles")
	catalogCmd.Flags().Bool("json", false, "Output as JSON")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	hair := mustGetStringSlice(cmd, "hair")
	eyes := mustGetStringSlice(cmd, "eyes")
	jsonOutput := mustGetBool(cmd, "json")
	ctx := context.Background()

	p, cleanup, err := photoPipelineWithSeed(ctx, cmd, 0)
	if err != nil {
		return err
	}
	defer cleanup()

	entries := p.catalog.Build(ctx)
	if len(entries) == 0 {
		return catalog.ErrEmpty
	}
	if len(hair) > 0 || len(eyes) > 0 {
		entries = catalog.Filter(entries, hair, eyes)
	}

	if jsonOutput {
		return outputJSON(entries)
	}

	fmt.Printf("%-32s %-8s %-30s %s\n", "BREED", "SIZE", "COAT", "EYES")
	for _, e := range entries {
		fmt.Printf("%-32s %-8s %-30s %s\n", e.Name, e.Size, joinOrDash(e.HairColors), joinOrDash(e.EyeColors))
	}
	fmt.Printf("\n%d breeds\n", len(entries))
	return nil
}
