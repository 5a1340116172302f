package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/breed-twin/internal/constants"
	"github.com/kozaktomas/breed-twin/internal/database"
	"github.com/kozaktomas/breed-twin/internal/lookup"
)

var similarCmd = &cobra.Command{
	Use:   "similar <breed>",
	Short: "Find breeds with the most similar calibrated coat color",
	Long: `Find the breeds whose calibrated coat color is closest to the given breed,
using Euclidean distance in Lab color space.

The in-memory HNSW index is used by default. With --db the query runs in
PostgreSQL with pgvector instead.

Examples:
  breed-twin similar "golden retriever"
  breed-twin similar akita --k 10 --db`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().Int("k", constants.DefaultSimilarBreeds, "Number of similar breeds")
	similarCmd.Flags().Bool("db", false, "Query the profile store instead of the in-memory index")
	similarCmd.Flags().Bool("json", false, "Output as JSON")
}

// SimilarOutput is the JSON output of the similar command
type SimilarOutput struct {
	Breed   string              `json:"breed"`
	Hex     string              `json:"hex"`
	Similar []database.Neighbor `json:"similar"`
}

func runSimilar(cmd *cobra.Command, args []string) error {
	k := min(max(mustGetInt(cmd, "k"), 1), constants.MaxSimilarBreeds)
	useDB := mustGetBool(cmd, "db")
	jsonOutput := mustGetBool(cmd, "json")
	ctx := context.Background()

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	store, closeStore, err := openProfileStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	key := lookup.Normalize(args[0])
	profile, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return fmt.Errorf("breed %q has no calibrated profile, run calibrate --save first", key)
	}

	var neighbors []database.Neighbor
	if useDB {
		neighbors, err = nearestFromStore(ctx, store, *profile, k)
		if err != nil {
			return err
		}
	} else {
		profiles, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list profiles: %w", err)
		}
		index := database.NewProfileIndex()
		index.Build(profiles)
		neighbors, err = index.Similar(key, k)
		if err != nil {
			return fmt.Errorf("failed to search index: %w", err)
		}
	}

	if jsonOutput {
		return outputJSON(SimilarOutput{Breed: profile.Breed, Hex: profile.Hex, Similar: neighbors})
	}

	fmt.Printf("Breeds with a coat like %s (%s, %s):\n\n", profile.Breed, profile.Hex, joinOrDash(profile.Colors))
	for i, n := range neighbors {
		fmt.Printf("%2d. %-30s %s  %-24s distance %.4f\n",
			i+1, n.Profile.Breed, n.Profile.Hex, joinOrDash(n.Profile.Colors), n.Distance)
	}
	if len(neighbors) == 0 {
		fmt.Println("No other calibrated breeds.")
	}
	return nil
}

// nearestFromStore runs the nearest query in the store, dropping the
// breed itself.
func nearestFromStore(ctx context.Context, store database.ProfileReader, p database.BreedProfile, k int) ([]database.Neighbor, error) {
	profiles, distances, err := store.FindNearest(ctx, p.Lab, k+1)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearest profiles: %w", err)
	}
	out := make([]database.Neighbor, 0, k)
	for i, other := range profiles {
		if other.Key == p.Key {
			continue
		}
		if len(out) == k {
			break
		}
		out = append(out, database.Neighbor{Profile: other, Distance: distances[i]})
	}
	return out, nil
}
