package matcher

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/breed-twin/internal/catalog"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed static_breeds.yaml
var staticBreedsYAML []byte

// Weights of the four score components.
type Weights struct {
	Hair      float64 `yaml:"hair"`
	Eyes      float64 `yaml:"eyes"`
	Skin      float64 `yaml:"skin"`
	Intensity float64 `yaml:"intensity"`
}

func (w Weights) total() float64 {
	return w.Hair + w.Eyes + w.Skin + w.Intensity
}

// Families are breed-name lists that earn the affinity boost.
type Families struct {
	Warm      []string `yaml:"warm"`
	Cool      []string `yaml:"cool"`
	DarkEyes  []string `yaml:"dark_eyes"`
	LightEyes []string `yaml:"light_eyes"`
}

// Affinity scores skin warmth and eye intensity against breed families.
type Affinity struct {
	Base     float64 `yaml:"base"`
	Match    float64 `yaml:"match"`
	Families `yaml:",inline"`
}

// Bonus adds Value to breeds whose name contains one of Breeds.
type Bonus struct {
	Value  float64  `yaml:"value"`
	Breeds []string `yaml:"breeds"`
}

func (b Bonus) applies(name string) bool {
	return containsAny(name, b.Breeds)
}

// Bonuses are the visual-feature bonuses.
type Bonuses struct {
	WhiteHair  Bonus `yaml:"white_hair"`
	GrayHair   Bonus `yaml:"gray_hair"`
	Beard      Bonus `yaml:"beard"`
	Mustache   Bonus `yaml:"mustache"`
	FacialHair Bonus `yaml:"facial_hair"`
	LongHair   Bonus `yaml:"long_hair"`
	Glasses    Bonus `yaml:"glasses"`
}

// Candidates bounds how many catalog entries are scored per match.
type Candidates struct {
	Prefiltered int `yaml:"prefiltered"`
	Random      int `yaml:"random"`
	Unfiltered  int `yaml:"unfiltered"`
}

// Confidence shapes the reported confidence.
type Confidence struct {
	Bias   float64 `yaml:"bias"`
	Jitter float64 `yaml:"jitter"`
	Max    float64 `yaml:"max"`
}

// Tuning holds every matcher constant.
type Tuning struct {
	Weights         Weights    `yaml:"weights"`
	Affinity        Affinity   `yaml:"affinity"`
	TieBand         float64    `yaml:"tie_band"`
	ReasonThreshold float64    `yaml:"reason_threshold"`
	Confidence      Confidence `yaml:"confidence"`
	Candidates      Candidates `yaml:"candidates"`
	Bonuses         Bonuses    `yaml:"bonuses"`
}

// DefaultTuning returns the embedded tuning.
var DefaultTuning = sync.OnceValue(func() Tuning {
	var t Tuning
	if err := yaml.Unmarshal(defaultsYAML, &t); err != nil {
		panic(fmt.Sprintf("matcher: invalid embedded defaults.yaml: %v", err))
	}
	return t
})

type staticBreed struct {
	Name        string       `yaml:"name"`
	Hair        []string     `yaml:"hair"`
	Pattern     []string     `yaml:"pattern"`
	Size        catalog.Size `yaml:"size"`
	Eyes        []string     `yaml:"eyes"`
	Temperament []string     `yaml:"temperament"`
	Traits      []string     `yaml:"traits"`
}

type staticFile struct {
	Affinity Families      `yaml:"affinity"`
	Breeds   []staticBreed `yaml:"breeds"`
}

var staticData = sync.OnceValue(func() staticFile {
	var f staticFile
	if err := yaml.Unmarshal(staticBreedsYAML, &f); err != nil {
		panic(fmt.Sprintf("matcher: invalid embedded static_breeds.yaml: %v", err))
	}
	return f
})

// StaticBreeds returns the built-in breeds as catalog entries with a
// neutral popularity weight.
func StaticBreeds() []catalog.Entry {
	f := staticData()
	entries := make([]catalog.Entry, len(f.Breeds))
	for i, b := range f.Breeds {
		entries[i] = catalog.Entry{
			Name:             b.Name,
			FullName:         b.Name,
			HairColors:       b.Hair,
			CoatPattern:      b.Pattern,
			Size:             b.Size,
			EyeColors:        b.Eyes,
			Temperament:      b.Temperament,
			PhysicalTraits:   b.Traits,
			PopularityWeight: 1,
		}
	}
	return entries
}

func containsAny(name string, fragments []string) bool {
	name = strings.ToLower(name)
	return slices.ContainsFunc(fragments, func(f string) bool {
		return strings.Contains(name, f)
	})
}
