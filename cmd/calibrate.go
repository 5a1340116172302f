package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/config"
	"github.com/kozaktomas/breed-twin/internal/photoanalyzer"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Calibrate breed coat colors from breed photos",
	Long: `Analyze dog.ceo photos of every catalog breed and derive its coat colors.

Breeds are processed in rate-limited batches. The result can be written as
a hair table for the catalog, as a JSON run file, and as profiles in the
profile store (PostgreSQL when DATABASE_URL is set).

Examples:
  # Calibrate all breeds and write the hair table
  breed-twin calibrate --output hair_colors.yaml

  # Quick run over 10 breeds with k-means clustering
  breed-twin calibrate --limit 10 --mode kmeans --results run.json

  # Store profiles for similarity queries
  breed-twin calibrate --save`,
	Args: cobra.NoArgs,
	RunE: runCalibrate,
}

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().Int("batch-size", 0, "Breeds per batch (defaults to CALIBRATION_BATCH_SIZE or 5)")
	calibrateCmd.Flags().Int("photos", 0, "Photos per breed (defaults to CALIBRATION_PHOTOS or 4)")
	calibrateCmd.Flags().Duration("delay", -1, "Pause between batches (defaults to CALIBRATION_DELAY_MS or 1s)")
	calibrateCmd.Flags().String("mode", string(photoanalyzer.ModeQuantize), "Color extraction: quantize or kmeans")
	calibrateCmd.Flags().Int("limit", 0, "Only calibrate the first N breeds (0 for all)")
	calibrateCmd.Flags().String("output", "", "Write the hair table YAML to this file")
	calibrateCmd.Flags().String("results", "", "Write the full run as JSON to this file")
	calibrateCmd.Flags().Bool("save", false, "Save profiles to the profile store")
	calibrateCmd.Flags().Bool("json", false, "Output the run summary as JSON instead of a progress bar")
}

// CalibrateResult summarizes a calibration run
type CalibrateResult struct {
	RunID         string   `json:"run_id"`
	Mode          string   `json:"mode"`
	Total         int      `json:"total"`
	Succeeded     int      `json:"succeeded"`
	Failed        int      `json:"failed"`
	Saved         int      `json:"saved"`
	Interrupted   bool     `json:"interrupted,omitempty"`
	HairTable     string   `json:"hair_table,omitempty"`
	ResultsFile   string   `json:"results_file,omitempty"`
	FailedBreeds  []string `json:"failed_breeds,omitempty"`
	DurationMs    int64    `json:"duration_ms"`
	DurationHuman string   `json:"duration_human,omitempty"`
}

// calibrateOptions merges calibration flags over the configured defaults.
func calibrateOptions(cmd *cobra.Command, batchSize, photos int, delay time.Duration) photoanalyzer.CalibrateOptions {
	opts := photoanalyzer.CalibrateOptions{BatchSize: batchSize, Photos: photos, Delay: delay}
	if n := mustGetInt(cmd, "batch-size"); n > 0 {
		opts.BatchSize = n
	}
	if n := mustGetInt(cmd, "photos"); n > 0 {
		opts.Photos = n
	}
	if d := mustGetDuration(cmd, "delay"); d >= 0 {
		opts.Delay = d
	}
	return opts
}

func parseMode(s string) (photoanalyzer.Mode, error) {
	switch m := photoanalyzer.Mode(s); m {
	case photoanalyzer.ModeQuantize, photoanalyzer.ModeKmeans:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q, use quantize or kmeans", s)
}

// writeFile creates path and writes to it with write.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	limit := mustGetInt(cmd, "limit")
	outputPath := mustGetString(cmd, "output")
	resultsPath := mustGetString(cmd, "results")
	save := mustGetBool(cmd, "save")

	mode, err := parseMode(mustGetString(cmd, "mode"))
	if err != nil {
		return err
	}

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := newPipeline(ctx, cfg, logger, nil, 0)
	if err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Println("Building breed catalog...")
	}
	entries := p.catalog.Build(ctx)
	if len(entries) == 0 {
		return fmt.Errorf("no breeds to calibrate: %w", catalog.ErrEmpty)
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	opts := calibrateOptions(cmd, cfg.Calibration.BatchSize, cfg.Calibration.Photos, cfg.Calibration.Delay)
	if !jsonOutput {
		fmt.Printf("Calibrating %d breeds (%d photos each, batches of %d, mode %s)\n\n",
			len(entries), opts.Photos, opts.BatchSize, mode)

		bar := progressbar.NewOptions(len(entries),
			progressbar.OptionSetDescription("Analyzing breeds"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("breeds"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
		opts.OnProgress = func(photoanalyzer.Progress) { bar.Add(1) }
	}

	analyzer := photoanalyzer.New(p.dogs, photoanalyzer.WithMode(mode), photoanalyzer.WithLogger(logger))
	run, runErr := photoanalyzer.NewCalibrator(analyzer, opts).Run(ctx, entries)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("calibration failed: %w", runErr)
	}
	if !jsonOutput {
		fmt.Println()
	}

	result := CalibrateResult{
		RunID:       run.ID.String(),
		Mode:        string(run.Mode),
		Total:       run.Total,
		Succeeded:   run.Succeeded,
		Failed:      run.Failed,
		Interrupted: runErr != nil,
	}
	for _, r := range run.Results {
		if !r.Success {
			result.FailedBreeds = append(result.FailedBreeds, r.Breed)
		}
	}

	if outputPath != "" {
		if err := writeFile(outputPath, func(f *os.File) error { return run.WriteHairTable(f) }); err != nil {
			return fmt.Errorf("failed to write hair table: %w", err)
		}
		result.HairTable = outputPath
	}
	if resultsPath != "" {
		if err := writeFile(resultsPath, func(f *os.File) error { return run.WriteJSON(f) }); err != nil {
			return err
		}
		result.ResultsFile = resultsPath
	}
	if save {
		// Detached from ctx: an interrupted run still saves its finished breeds.
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer saveCancel()
		saved, err := saveProfiles(saveCtx, cfg, logger, run)
		if err != nil {
			return err
		}
		result.Saved = saved
	}

	duration := run.FinishedAt.Sub(run.StartedAt)
	result.DurationMs = duration.Milliseconds()

	if jsonOutput {
		return outputJSON(result)
	}

	result.DurationHuman = formatDuration(duration)
	if result.Interrupted {
		fmt.Println("\nCalibration interrupted!")
	} else {
		fmt.Println("\nCalibration complete!")
	}
	fmt.Printf("  Run:       %s\n", result.RunID)
	fmt.Printf("  Breeds:    %d\n", result.Total)
	fmt.Printf("  Succeeded: %d\n", result.Succeeded)
	if result.Failed > 0 {
		fmt.Printf("  Failed:    %d (%s)\n", result.Failed, joinOrDash(result.FailedBreeds))
	}
	if result.HairTable != "" {
		fmt.Printf("  Hair table: %s\n", result.HairTable)
	}
	if result.ResultsFile != "" {
		fmt.Printf("  Results:   %s\n", result.ResultsFile)
	}
	if save {
		fmt.Printf("  Saved:     %d profiles\n", result.Saved)
	}
	fmt.Printf("  Duration:  %s\n", result.DurationHuman)
	return nil
}

// saveProfiles writes the run's profiles to the profile store.
func saveProfiles(ctx context.Context, cfg *config.Config, logger *zap.Logger, run *photoanalyzer.Run) (int, error) {
	profiles := run.Profiles()
	if len(profiles) == 0 {
		return 0, nil
	}
	store, closeStore, err := openProfileStore(ctx, cfg, logger)
	if err != nil {
		return 0, err
	}
	defer closeStore()

	if err := store.Save(ctx, profiles); err != nil {
		return 0, fmt.Errorf("failed to save profiles: %w", err)
	}
	logger.Info("profiles saved", zap.String("run", run.ID.String()), zap.Int("profiles", len(profiles)))
	return len(profiles), nil
}
