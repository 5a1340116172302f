package photoanalyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/database"
	"github.com/kozaktomas/breed-twin/internal/lookup"
)

const (
	DefaultBatchSize = 5
	DefaultPhotos    = 4
	DefaultDelay     = time.Second

	significantPercent = 5.0
	keptColors         = 4
)

// Progress is reported after each breed finishes.
type Progress struct {
	Current int
	Total   int
	Breed   string
	Success bool
}

// CalibrateOptions tunes a calibration run. A zero BatchSize or Photos
// uses the default, and a zero Delay disables the pause between batches.
type CalibrateOptions struct {
	BatchSize  int
	Photos     int
	Delay      time.Duration
	OnProgress func(Progress) // Optional, called from worker goroutines
}

// BreedResult is the calibration outcome for one catalog entry.
type BreedResult struct {
	Breed      string         `json:"breed"`
	Key        string         `json:"key"`
	Path       string         `json:"path"`
	Success    bool           `json:"success"`
	Colors     []string       `json:"colors"`
	Confidence int            `json:"confidence"`
	Error      string         `json:"error,omitempty"`
	Analysis   *BreedAnalysis `json:"analysis,omitempty"`
}

// Run is a finished or interrupted calibration.
type Run struct {
	ID         uuid.UUID     `json:"id"`
	Mode       Mode          `json:"mode"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Results    []BreedResult `json:"results"`
}

// Calibrator profiles every catalog entry in rate-limited batches.
type Calibrator struct {
	analyzer *Analyzer
	opts     CalibrateOptions
	sleep    func(context.Context, time.Duration) error
}

// NewCalibrator returns a Calibrator using analyzer for each breed.
func NewCalibrator(analyzer *Analyzer, opts CalibrateOptions) *Calibrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Photos <= 0 {
		opts.Photos = DefaultPhotos
	}
	opts.Delay = max(opts.Delay, 0)
	return &Calibrator{analyzer: analyzer, opts: opts, sleep: sleepContext}
}

// Run analyzes entries batch by batch. A failing breed is recorded and
// does not stop its batch. On cancellation the partial run is returned
// together with the context error.
func (c *Calibrator) Run(ctx context.Context, entries []catalog.Entry) (*Run, error) {
	run := &Run{
		ID:        uuid.New(),
		Mode:      c.analyzer.mode,
		StartedAt: time.Now().UTC(),
		Total:     len(entries),
		Results:   make([]BreedResult, 0, len(entries)),
	}
	log := c.analyzer.logger.With(zap.String("run", run.ID.String()))
	log.Info("calibration started", zap.Int("breeds", len(entries)), zap.Int("batch", c.opts.BatchSize))

	var mu sync.Mutex
	done := 0
	report := func(r BreedResult) {
		mu.Lock()
		done++
		current := done
		mu.Unlock()
		if c.opts.OnProgress != nil {
			c.opts.OnProgress(Progress{Current: current, Total: len(entries), Breed: r.Breed, Success: r.Success})
		}
	}

	for start := 0; start < len(entries); start += c.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return c.finish(run, log), err
		}
		batch := entries[start:min(start+c.opts.BatchSize, len(entries))]
		results := make([]BreedResult, len(batch))

		var g errgroup.Group
		g.SetLimit(c.opts.BatchSize)
		for i, e := range batch {
			g.Go(func() error {
				results[i] = c.calibrate(ctx, e)
				if !results[i].Success {
					log.Warn("breed failed", zap.String("breed", e.Name), zap.String("error", results[i].Error))
				}
				report(results[i])
				return nil
			})
		}
		_ = g.Wait()
		run.Results = append(run.Results, results...)

		if start+c.opts.BatchSize < len(entries) {
			if err := c.sleep(ctx, c.opts.Delay); err != nil {
				return c.finish(run, log), err
			}
		}
	}
	return c.finish(run, log), nil
}

func (c *Calibrator) calibrate(ctx context.Context, e catalog.Entry) BreedResult {
	r := BreedResult{Breed: e.Name, Key: lookup.Normalize(e.Name), Path: e.Path, Colors: []string{}}
	analysis, err := c.analyzer.AnalyzeBreed(ctx, e.Name, e.Path, c.opts.Photos)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Success = true
	r.Analysis = analysis
	r.Confidence = analysis.Confidence
	r.Colors = SignificantColors(analysis.Dominant)
	return r
}

func (c *Calibrator) finish(run *Run, log *zap.Logger) *Run {
	run.FinishedAt = time.Now().UTC()
	for _, r := range run.Results {
		if r.Success {
			run.Succeeded++
		} else {
			run.Failed++
		}
	}
	log.Info("calibration finished",
		zap.Int("succeeded", run.Succeeded),
		zap.Int("failed", run.Failed),
		zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)))
	return run
}

// SignificantColors returns the names of up to four colors above 5%.
func SignificantColors(dominant []ColorStat) []string {
	out := []string{}
	for _, s := range dominant {
		if s.Percentage <= significantPercent {
			continue
		}
		out = append(out, s.Name)
		if len(out) == keptColors {
			break
		}
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// HairFile converts the successful results into a catalog hair table.
// Results without colors are dropped and a repeated key keeps its first
// position but takes the latest colors.
func (r *Run) HairFile() catalog.HairFile {
	index := make(map[string]int)
	var groups []lookup.Group[[]string]
	for _, res := range r.Results {
		if !res.Success || len(res.Colors) == 0 {
			continue
		}
		if i, ok := index[res.Key]; ok {
			groups[i].Value = res.Colors
			continue
		}
		index[res.Key] = len(groups)
		groups = append(groups, lookup.Group[[]string]{Keys: []string{res.Key}, Value: res.Colors})
	}
	return catalog.HairFile{
		GeneratedFrom: fmt.Sprintf("%d breed analyses", len(groups)),
		Groups:        groups,
	}
}

// WriteHairTable writes the hair table in the catalog's YAML format.
func (r *Run) WriteHairTable(w io.Writer) error {
	f := r.HairFile()
	if len(f.Groups) == 0 {
		return catalog.ErrEmpty
	}
	return catalog.WriteHairFile(w, f)
}

// WriteJSON writes the full run, including per-photo analyses.
func (r *Run) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	return nil
}

// Profiles converts the successful results into stored breed profiles.
// Like HairFile, a repeated key keeps the latest result.
func (r *Run) Profiles() []database.BreedProfile {
	index := make(map[string]int)
	var out []database.BreedProfile
	for _, res := range r.Results {
		if !res.Success || res.Analysis == nil {
			continue
		}
		p := database.BreedProfile{
			Key:        res.Key,
			Breed:      res.Breed,
			Path:       res.Path,
			Colors:     res.Colors,
			Lab:        database.LabVector(res.Analysis.Overall.RGB),
			Hex:        res.Analysis.Overall.Hex,
			Confidence: res.Confidence,
			Samples:    res.Analysis.Samples,
			RunID:      r.ID.String(),
		}
		if i, ok := index[p.Key]; ok {
			out[i] = p
			continue
		}
		index[p.Key] = len(out)
		out = append(out, p)
	}
	return out
}
