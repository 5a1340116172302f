package matcher

import (
	"math"
	"slices"
	"sort"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/color"
	"github.com/kozaktomas/breed-twin/internal/features"
)

// memberFunc reports whether a breed name belongs to a family list.
type memberFunc func(name string, family []string) bool

func exactMember(name string, family []string) bool {
	return slices.Contains(family, name)
}

// scorer computes the weighted feature score of one catalog entry.
type scorer struct {
	tuning   Tuning
	families Families
	member   memberFunc
	weighted bool
}

// Breakdown is a scored entry with its component similarities.
type Breakdown struct {
	Hair      float64 `json:"hair"`
	Eyes      float64 `json:"eyes"`
	Skin      float64 `json:"skin"`
	Intensity float64 `json:"intensity"`
	Bonus     float64 `json:"bonus"`
}

// Candidate is a catalog entry and its score.
type Candidate struct {
	Entry     catalog.Entry `json:"entry"`
	Score     float64       `json:"score"`
	Breakdown Breakdown     `json:"breakdown"`
}

func (s scorer) score(f features.Set, e catalog.Entry) Candidate {
	w := s.tuning.Weights
	a := s.tuning.Affinity
	b := Breakdown{
		Hair:      color.BestSimilarity(f.Hair.Dominant, e.HairColors),
		Eyes:      color.BestSimilarity(f.Eyes.Dominant, e.EyeColors),
		Skin:      a.Base,
		Intensity: a.Base,
	}

	switch f.Skin.Warmth {
	case color.Warm:
		if s.member(e.Name, s.families.Warm) {
			b.Skin = a.Match
		}
	case color.Cool:
		if s.member(e.Name, s.families.Cool) {
			b.Skin = a.Match
		}
	}

	switch f.Eyes.Intensity {
	case color.IntensityDark:
		if s.member(e.Name, s.families.DarkEyes) {
			b.Intensity = a.Match
		}
	case color.IntensityLight:
		if s.member(e.Name, s.families.LightEyes) {
			b.Intensity = a.Match
		}
	}

	sum := b.Hair*w.Hair + b.Eyes*w.Eyes + b.Skin*w.Skin + b.Intensity*w.Intensity
	score := 0.0
	if total := w.total(); total > 0 {
		score = sum / total
	}
	if s.weighted {
		score *= e.PopularityWeight
	}
	return Candidate{Entry: e, Score: score, Breakdown: b}
}

// bonus returns the visual-feature bonus for a breed. The beard and
// mustache bonuses add up; the generic facial-hair bonus applies only when
// neither fired.
func (bs Bonuses) bonus(f features.Set, name string) float64 {
	total := 0.0
	switch f.Hair.Dominant {
	case color.White:
		if bs.WhiteHair.applies(name) {
			total += bs.WhiteHair.Value
		}
	case color.Gray:
		if bs.GrayHair.applies(name) {
			total += bs.GrayHair.Value
		}
	}

	v := f.Visual
	if v == nil {
		return total
	}

	specific := false
	if v.HasBeard && bs.Beard.applies(name) {
		total += bs.Beard.Value
		specific = true
	}
	if v.HasMustache && bs.Mustache.applies(name) {
		total += bs.Mustache.Value
		specific = true
	}
	if !specific && v.HasFacialHair && bs.FacialHair.applies(name) {
		total += bs.FacialHair.Value
	}
	if v.HasLongHair && bs.LongHair.applies(name) {
		total += bs.LongHair.Value
	}
	if v.HasGlasses && bs.Glasses.applies(name) {
		total += bs.Glasses.Value
	}
	return total
}

// withBonus adds a bonus to a score. The bonus never lifts a score past
// 1.0, and a popularity-weighted score already above 1.0 is kept.
func withBonus(score, bonus float64) float64 {
	if bonus <= 0 {
		return score
	}
	return math.Max(score, math.Min(score+bonus, 1))
}

// rank sorts candidates by descending score. Ties keep input order.
func rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
}

// tieBand returns the ranked candidates within band of the best score.
func tieBand(ranked []Candidate, band float64) []Candidate {
	if len(ranked) == 0 {
		return nil
	}
	cut := ranked[0].Score - band
	n := 1
	for n < len(ranked) && ranked[n].Score >= cut {
		n++
	}
	return ranked[:n]
}

// confidence biases and jitters a score into [0, limit].
func confidence(score, bias, jitter, limit, roll float64) float64 {
	c := math.Min(score+bias+roll*jitter, limit)
	return math.Max(c, 0)
}
