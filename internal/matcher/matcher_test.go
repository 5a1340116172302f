package matcher

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/color"
	"github.com/kozaktomas/breed-twin/internal/dogapi"
	"github.com/kozaktomas/breed-twin/internal/features"
)

func featureSet(hair, eyes string, warmth color.Warmth, intensity color.Intensity) features.Set {
	return features.Set{
		Hair:          features.Hair{Dominant: hair},
		Eyes:          features.Eyes{Dominant: eyes, Intensity: intensity},
		Skin:          features.Skin{Dominant: color.Medium, Warmth: warmth},
		FaceShape:     features.ShapeOval,
		NumberOfFaces: 1,
		FaceDetected:  true,
	}
}

func seeded(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed+1)))
}

type fakeCatalog []catalog.Entry

func (f fakeCatalog) Build(context.Context) []catalog.Entry { return f }

type panicStrategy struct{}

func (panicStrategy) Name() string { return "panic" }
func (panicStrategy) Match(context.Context, features.Set) (Result, error) {
	panic("boom")
}

type fakeMetadata struct {
	info *dogapi.BreedInfo
}

func (f fakeMetadata) Lookup(context.Context, string) (*dogapi.BreedInfo, error) {
	if f.info == nil {
		return nil, dogapi.ErrNotFound
	}
	info := *f.info
	return &info, nil
}

type fakeEncyclopedia string

func (f fakeEncyclopedia) Summary(context.Context, string) (string, error) {
	if f == "" {
		return "", dogapi.ErrNotFound
	}
	return string(f), nil
}

type fakeImages struct{}

func (fakeImages) ImageFor(_ context.Context, path string) string {
	return "https://img/" + path + ".jpg"
}

func TestBrownHairMatchesBothBrownBreeds(t *testing.T) {
	s := scorer{tuning: DefaultTuning(), member: containsAny}
	f := featureSet(color.Brown, color.Brown, color.NeutralWarmth, color.IntensityMedium)

	a := s.score(f, catalog.Entry{Name: "A", HairColors: []string{"Black", "Brown"}, PopularityWeight: 1})
	b := s.score(f, catalog.Entry{Name: "B", HairColors: []string{"Brown"}, PopularityWeight: 1})
	assert.Equal(t, 1.0, a.Breakdown.Hair)
	assert.Equal(t, 1.0, b.Breakdown.Hair)
}

func TestStaticScore(t *testing.T) {
	st := NewStatic(nil)
	f := featureSet(color.Blonde, color.Brown, color.Warm, color.IntensityMedium)

	ranked := st.Rank(f)
	require.Len(t, ranked, 12)

	byName := make(map[string]Candidate)
	for _, c := range ranked {
		byName[c.Entry.Name] = c
	}
	assert.InDelta(t, 0.91, byName["Golden Retriever"].Score, 1e-9)
	assert.InDelta(t, 0.85, byName["Poodle"].Score, 1e-9)
	assert.InDelta(t, 0.45, byName["German Shepherd"].Score, 1e-9)
	assert.InDelta(t, 0.91, ranked[0].Score, 1e-9)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestDynamicScoreUsesPopularityAndFamilies(t *testing.T) {
	d := NewDynamic(fakeCatalog(nil), nil)
	f := featureSet(color.Black, color.Blue, color.Cool, color.IntensityLight)

	husky := catalog.Entry{Name: "Siberian Husky", HairColors: []string{"Black"}, EyeColors: []string{"Blue"}, PopularityWeight: 1.0}
	exotic := catalog.Entry{Name: "Basenji", HairColors: []string{"Black"}, EyeColors: []string{"Blue"}, PopularityWeight: 0.3}

	cands := d.Score(f, []catalog.Entry{exotic, husky})
	require.Len(t, cands, 2)
	assert.Equal(t, "Siberian Husky", cands[0].Entry.Name)
	// Blue has no bucket, so identical names only reach the substring score.
	// 0.4 + 0.7*0.3 + 0.8*0.2 + 0.8*0.1
	assert.InDelta(t, 0.85, cands[0].Score, 1e-9)
	// (0.4 + 0.7*0.3 + 0.5*0.2 + 0.5*0.1) * 0.3
	assert.InDelta(t, 0.228, cands[1].Score, 1e-9)
}

func TestBonuses(t *testing.T) {
	bs := DefaultTuning().Bonuses

	tests := []struct {
		name   string
		breed  string
		hair   string
		visual *features.VisualFeatures
		want   float64
	}{
		{"white hair", "Samoyed", color.White, nil, 0.3},
		{"gray hair", "Weimaraner", color.Gray, nil, 0.25},
		{"no visual flags", "Schnauzer", color.Brown, nil, 0},
		{"beard and mustache add up", "Miniature Schnauzer", color.Brown,
			&features.VisualFeatures{HasBeard: true, HasMustache: true, HasFacialHair: true}, 0.75},
		{"specific beard suppresses generic", "Bearded Collie", color.Brown,
			&features.VisualFeatures{HasBeard: true, HasFacialHair: true}, 0.4},
		{"generic facial hair", "Poodle", color.Brown,
			&features.VisualFeatures{HasBeard: true, HasFacialHair: true}, 0.35},
		{"long hair", "Afghan Hound", color.Brown,
			&features.VisualFeatures{HasLongHair: true, HairLength: features.HairLong}, 0.2},
		{"glasses", "Labradoodle", color.Brown,
			&features.VisualFeatures{HasGlasses: true}, 0.15},
		{"unlisted breed", "Pug", color.White,
			&features.VisualFeatures{HasBeard: true, HasFacialHair: true, HasGlasses: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := featureSet(tt.hair, color.Brown, color.NeutralWarmth, color.IntensityMedium)
			f.Visual = tt.visual
			assert.InDelta(t, tt.want, bs.bonus(f, tt.breed), 1e-9)
		})
	}
}

func TestWithBonus(t *testing.T) {
	assert.InDelta(t, 1.0, withBonus(0.5, 0.75), 1e-9)
	assert.InDelta(t, 0.8, withBonus(0.5, 0.3), 1e-9)
	assert.InDelta(t, 1.2, withBonus(1.2, 0.3), 1e-9)
	assert.InDelta(t, 0.5, withBonus(0.5, 0), 1e-9)
}

func TestTieBand(t *testing.T) {
	ranked := []Candidate{{Score: 0.9}, {Score: 0.85}, {Score: 0.81}, {Score: 0.79}, {Score: 0.2}}
	assert.Len(t, tieBand(ranked, 0.1), 3)
	assert.Len(t, tieBand(ranked[:1], 0.1), 1)
	assert.Empty(t, tieBand(nil, 0.1))
}

func TestConfidenceBounds(t *testing.T) {
	assert.InDelta(t, 0.95, confidence(2, 0.1, 0.1, 0.95, 0.99), 1e-9)
	assert.InDelta(t, 0.0, confidence(-1, 0.1, 0.1, 0.95, 0.5), 1e-9)
	assert.InDelta(t, 0.65, confidence(0.5, 0.1, 0.1, 0.95, 0.5), 1e-9)

	f := featureSet(color.Blonde, color.Brown, color.Warm, color.IntensityMedium)
	for seed := uint64(0); seed < 200; seed++ {
		res, err := NewStatic(nil, seeded(seed)).Match(context.Background(), f)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 0.95)
	}
}

func TestStaticPicksWithinTieBand(t *testing.T) {
	f := featureSet(color.Blonde, color.Brown, color.Warm, color.IntensityMedium)
	best := NewStatic(nil).Rank(f)[0].Score

	seen := make(map[string]bool)
	for seed := uint64(0); seed < 100; seed++ {
		res, err := NewStatic(nil, seeded(seed)).Match(context.Background(), f)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Score, best-0.1)
		seen[res.Breed] = true
	}
	assert.Greater(t, len(seen), 1, "tie band should give variety across seeds")
}

func TestSameSeedSameMatch(t *testing.T) {
	f := featureSet(color.Black, color.Blue, color.Cool, color.IntensityLight)
	a, _ := NewStatic(nil, seeded(7)).Match(context.Background(), f)
	b, _ := NewStatic(nil, seeded(7)).Match(context.Background(), f)
	assert.Equal(t, a.Breed, b.Breed)
	assert.Equal(t, a.Confidence, b.Confidence)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestReasoning(t *testing.T) {
	static := NewStatic(nil).reasoner
	golden := catalog.Entry{Name: "Golden Retriever", HairColors: []string{"Blonde", "Light Brown"}, EyeColors: []string{"Brown", "Hazel"}}

	got := static.reason(featureSet(color.Blonde, color.Brown, color.Warm, color.IntensityMedium), golden)
	assert.Equal(t, "Based on our analysis, your blonde hair matches the blonde coat, and your brown eyes are similar to this breed's typical eye color, and your warm undertones complement this breed's golden coloring.", got)

	got = static.reason(featureSet(color.Red, color.Green, color.Warm, color.IntensityDark), golden)
	assert.Equal(t, "Based on our analysis, your warm undertones complement this breed's golden coloring, and your expressive dark eyes mirror this breed's soulful gaze.", got)

	dalmatian := catalog.Entry{Name: "Dalmatian", HairColors: []string{"White", "Black"}, EyeColors: []string{"Brown", "Blue"}}
	got = static.reason(featureSet(color.Red, color.Green, color.NeutralWarmth, color.IntensityMedium), dalmatian)
	assert.Equal(t, "Based on our analysis, "+harmoniousReason+".", got)

	dynamic := NewDynamic(fakeCatalog(nil), nil).reasoner
	spaniel := catalog.Entry{Name: "Cocker Spaniel", HairColors: []string{"Tan"}, EyeColors: []string{"Amber"}, PhysicalTraits: []string{"Soft Wavy Hair"}}
	got = dynamic.reason(featureSet(color.Black, color.Green, color.Warm, color.IntensityMedium), spaniel)
	assert.Equal(t, "Based on our analysis, your warm undertones complement this breed's golden coloring, and your features align with this breed's soft wavy hair.", got)
}

func TestDynamicCandidates(t *testing.T) {
	d := NewDynamic(fakeCatalog(nil), nil)
	rng := rand.New(rand.NewPCG(1, 2))

	entries := []catalog.Entry{
		{Name: "A", HairColors: []string{"Black"}, EyeColors: []string{"Blue"}},
		{Name: "B", HairColors: []string{"White"}, EyeColors: []string{"Brown"}},
		{Name: "C", HairColors: []string{"Black"}, EyeColors: []string{"Blue", "Brown"}},
	}

	f := featureSet(color.Black, color.Blue, color.Cool, color.IntensityMedium)
	got := d.Candidates(entries, f, rng)
	require.Len(t, got, 5)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "C", got[1].Name)

	none := featureSet(color.Red, color.Violet, color.Cool, color.IntensityMedium)
	assert.Len(t, d.Candidates(entries, none, rng), 3)
}

func TestDispatcherFallsBackOnEmptyCatalog(t *testing.T) {
	d := NewDispatcher(NewDynamic(fakeCatalog{}, nil, seeded(1)), nil, seeded(1))
	res := d.Match(context.Background(), featureSet(color.Brown, color.Brown, color.NeutralWarmth, color.IntensityMedium))

	assert.Equal(t, "static", res.Strategy)
	assert.NotEmpty(t, res.Breed)
	assert.Equal(t, dogapi.DefaultImageURL, res.DogImage)
	assert.Contains(t, res.Reasoning, "Based on our analysis, ")
}

func TestDispatcherRecoversPanics(t *testing.T) {
	d := NewDispatcher(panicStrategy{}, nil)
	res := d.Match(context.Background(), featureSet(color.Black, color.Blue, color.Cool, color.IntensityLight))
	assert.Equal(t, "static", res.Strategy)
}

func TestDynamicMatch(t *testing.T) {
	entries := fakeCatalog{
		{Name: "Miniature Schnauzer", Path: "schnauzer/miniature", HairColors: []string{"Gray", "Black"}, EyeColors: []string{"Brown"}, Temperament: []string{"alert", "spirited"}, Size: catalog.SizeSmall, PopularityWeight: 1.0},
		{Name: "Pug", Path: "pug", HairColors: []string{"Auburn"}, EyeColors: []string{"Dark Brown"}, Size: catalog.SizeSmall, PopularityWeight: 0.8},
	}
	enricher := &Enricher{
		Encyclopedia: fakeEncyclopedia("A small German breed with a distinctive beard."),
		Images:       fakeImages{},
	}
	d := NewDispatcher(NewDynamic(entries, enricher, seeded(3)), NewStatic(enricher), seeded(3))

	f := featureSet(color.Gray, color.Brown, color.Cool, color.IntensityMedium)
	f.Visual = &features.VisualFeatures{HasBeard: true, HasMustache: true, HasFacialHair: true}

	res := d.Match(context.Background(), f)
	assert.Equal(t, "dynamic", res.Strategy)
	assert.Equal(t, "Miniature Schnauzer", res.Breed)
	assert.Equal(t, "https://img/schnauzer/miniature.jpg", res.DogImage)
	assert.Equal(t, features.ShapeOval, res.FaceShape)
	assert.Equal(t, 1, res.NumberOfFaces)
	assert.LessOrEqual(t, res.Confidence, 0.95)

	require.NotNil(t, res.BreedInfo)
	assert.Equal(t, "alert, spirited", res.BreedInfo.Temperament)
	assert.Equal(t, DefaultOrigin, res.BreedInfo.Origin)
	assert.Equal(t, "small size", res.BreedInfo.Size)
	assert.Equal(t, DefaultLifeSpan, res.BreedInfo.LifeSpan)
	assert.Equal(t, "A small German breed with a distinctive beard.", res.BreedInfo.Description)
}

func TestEnrichWithMetadata(t *testing.T) {
	en := &Enricher{
		Metadata: fakeMetadata{info: &dogapi.BreedInfo{
			Name:     "Beagle",
			LifeSpan: "12 - 15 years",
			Height:   dogapi.Measure{Imperial: "13 - 15"},
		}},
	}
	entry := catalog.Entry{Name: "Beagle", Temperament: []string{"curious"}}

	dyn := en.dynamicInfo(context.Background(), entry)
	assert.Equal(t, "curious", dyn.Temperament)
	assert.Equal(t, DefaultOrigin, dyn.Origin)
	assert.Equal(t, "13 - 15, Medium weight", dyn.Size)
	assert.Equal(t, "12 - 15 years", dyn.LifeSpan)
	assert.Equal(t, DefaultDescription, dyn.Description)

	st := en.staticInfo(context.Background(), entry, true)
	assert.Equal(t, DefaultTemperament, st.Temperament)
	assert.Equal(t, UnknownOrigin, st.Origin)

	assert.Nil(t, (&Enricher{Metadata: fakeMetadata{}}).staticInfo(context.Background(), entry, true))
}

type failingDescriber struct{}

func (failingDescriber) Describe(context.Context, string) (string, error) {
	return "", errors.New("quota exceeded")
}

type fixedDescriber string

func (f fixedDescriber) Describe(context.Context, string) (string, error) {
	return string(f), nil
}

func TestDescriptionChain(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "wiki", (&Enricher{Encyclopedia: fakeEncyclopedia("wiki"), Describer: fixedDescriber("llm")}).describe(ctx, "Pug"))
	assert.Equal(t, "llm", (&Enricher{Encyclopedia: fakeEncyclopedia(""), Describer: fixedDescriber("llm")}).describe(ctx, "Pug"))
	assert.Equal(t, DefaultDescription, (&Enricher{Describer: failingDescriber{}}).describe(ctx, "Pug"))
	assert.Equal(t, DefaultDescription, (*Enricher)(nil).describe(ctx, "Pug"))
}

func TestSuggest(t *testing.T) {
	en := &Enricher{Metadata: fakeMetadata{info: &dogapi.BreedInfo{Temperament: "Playful"}}, Images: fakeImages{}}
	d := NewDispatcher(nil, NewStatic(en, seeded(5)))
	f := featureSet(color.Black, color.Blue, color.Cool, color.IntensityLight)

	got := d.Suggest(context.Background(), f, 3)
	require.Len(t, got, 3)
	for i, res := range got {
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Score, res.Score)
		}
		assert.LessOrEqual(t, res.Confidence, 0.95)
		assert.GreaterOrEqual(t, res.Confidence, res.Score)
		require.NotNil(t, res.BreedInfo)
		assert.Equal(t, res.Breed+"s are wonderful companions.", res.BreedInfo.Description)
		assert.Equal(t, "Playful", res.BreedInfo.Temperament)
	}
	assert.Equal(t, []string{"Border Collie", "Husky", "Dalmatian"}, []string{got[0].Breed, got[1].Breed, got[2].Breed})

	assert.Len(t, d.Suggest(context.Background(), f, 0), 3)
	assert.Len(t, d.Suggest(context.Background(), f, 50), 12)
}
