package matcher

import (
	"context"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/features"
)

// Static matches against the built-in breeds. Affinity families match by
// exact name and popularity is ignored.
type Static struct {
	settings
	breeds   []catalog.Entry
	enricher *Enricher
	scorer   scorer
	reasoner reasoner
}

// NewStatic creates the static strategy. enricher may be nil.
func NewStatic(enricher *Enricher, opts ...Option) *Static {
	s := newSettings(opts)
	families := staticData().Affinity
	return &Static{
		settings: s,
		breeds:   StaticBreeds(),
		enricher: enricher,
		scorer:   scorer{tuning: s.tuning, families: families, member: exactMember},
		reasoner: reasoner{
			threshold: s.tuning.ReasonThreshold,
			warm:      families.Warm,
			member:    exactMember,
			darkEyes:  true,
		},
	}
}

func (s *Static) Name() string { return "static" }

// Rank scores every built-in breed, best first.
func (s *Static) Rank(f features.Set) []Candidate {
	cands := make([]Candidate, len(s.breeds))
	for i, e := range s.breeds {
		cands[i] = s.scorer.score(f, e)
	}
	rank(cands)
	return cands
}

// Match never returns an error.
func (s *Static) Match(ctx context.Context, f features.Set) (Result, error) {
	rng := s.seeds.next()
	band := tieBand(s.Rank(f), s.tuning.TieBand)
	pick := band[rng.IntN(len(band))]

	c := s.tuning.Confidence
	res := newResult(s.Name(), f, pick, confidence(pick.Score, c.Bias, c.Jitter, c.Max, rng.Float64()), len(s.breeds))
	res.Reasoning = s.reasoner.reason(f, pick.Entry)
	res.DogImage = s.enricher.image(ctx, pick.Entry)
	res.BreedInfo = s.enricher.staticInfo(ctx, pick.Entry, true)
	return res, nil
}

// Suggest returns the n best built-in breeds. Their confidence carries
// jitter but no bias.
func (s *Static) Suggest(ctx context.Context, f features.Set, n int) []Result {
	rng := s.seeds.next()
	ranked := s.Rank(f)
	if n <= 0 {
		n = 3
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}

	c := s.tuning.Confidence
	results := make([]Result, 0, len(ranked))
	for _, cand := range ranked {
		res := newResult(s.Name(), f, cand, confidence(cand.Score, 0, c.Jitter, c.Max, rng.Float64()), len(s.breeds))
		res.Reasoning = s.reasoner.reason(f, cand.Entry)
		res.DogImage = s.enricher.image(ctx, cand.Entry)
		res.BreedInfo = s.enricher.staticInfo(ctx, cand.Entry, false)
		results = append(results, res)
	}
	return results
}
