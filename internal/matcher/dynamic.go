package matcher

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/features"
)

// CatalogSource builds the live catalog.
type CatalogSource interface {
	Build(ctx context.Context) []catalog.Entry
}

// Dynamic matches against the live catalog with popularity weighting and
// visual-feature bonuses.
type Dynamic struct {
	settings
	source   CatalogSource
	enricher *Enricher
	scorer   scorer
	reasoner reasoner
}

// NewDynamic creates the dynamic strategy. enricher may be nil.
func NewDynamic(source CatalogSource, enricher *Enricher, opts ...Option) *Dynamic {
	s := newSettings(opts)
	families := s.tuning.Affinity.Families
	return &Dynamic{
		settings: s,
		source:   source,
		enricher: enricher,
		scorer:   scorer{tuning: s.tuning, families: families, member: containsAny, weighted: true},
		reasoner: reasoner{
			threshold: s.tuning.ReasonThreshold,
			warm:      families.Warm,
			member:    containsAny,
			traits:    true,
		},
	}
}

func (d *Dynamic) Name() string { return "dynamic" }

// Candidates picks the entries to score: the first prefiltered entries by
// color overlap plus a random sample, or only a random sample when nothing
// overlaps.
func (d *Dynamic) Candidates(entries []catalog.Entry, f features.Set, rng *rand.Rand) []catalog.Entry {
	c := d.tuning.Candidates
	filtered := catalog.Filter(entries, []string{f.Hair.Dominant}, []string{f.Eyes.Dominant})
	if len(filtered) == 0 {
		return catalog.Sample(entries, c.Unfiltered, rng)
	}
	if len(filtered) > c.Prefiltered {
		filtered = filtered[:c.Prefiltered]
	}
	out := make([]catalog.Entry, 0, len(filtered)+c.Random)
	out = append(out, filtered...)
	return append(out, catalog.Sample(entries, c.Random, rng)...)
}

// Score scores entries including visual bonuses, best first.
func (d *Dynamic) Score(f features.Set, entries []catalog.Entry) []Candidate {
	cands := make([]Candidate, len(entries))
	for i, e := range entries {
		c := d.scorer.score(f, e)
		c.Breakdown.Bonus = d.tuning.Bonuses.bonus(f, e.Name)
		c.Score = withBonus(c.Score, c.Breakdown.Bonus)
		cands[i] = c
	}
	rank(cands)
	return cands
}

func (d *Dynamic) Match(ctx context.Context, f features.Set) (Result, error) {
	entries := d.source.Build(ctx)
	if len(entries) == 0 {
		return Result{}, ErrEmptyCatalog
	}

	rng := d.seeds.next()
	tested := d.Candidates(entries, f, rng)
	band := tieBand(d.Score(f, tested), d.tuning.TieBand)
	pick := band[rng.IntN(len(band))]

	c := d.tuning.Confidence
	res := newResult(d.Name(), f, pick, confidence(pick.Score, c.Bias, c.Jitter, c.Max, rng.Float64()), len(tested))
	res.Reasoning = d.reasoner.reason(f, pick.Entry)
	res.DogImage = d.enricher.image(ctx, pick.Entry)
	res.BreedInfo = d.enricher.dynamicInfo(ctx, pick.Entry)

	d.logger.Info("breed matched",
		zap.String("breed", res.Breed),
		zap.Float64("score", pick.Score),
		zap.Int("catalog", len(entries)),
		zap.Int("tested", len(tested)),
		zap.Int("band", len(band)))
	return res, nil
}
