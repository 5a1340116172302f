package catalog

import (
	"embed"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/breed-twin/internal/lookup"
)

//go:embed tables/*.yaml
var tablesFS embed.FS

// HairFile is the on-disk form of a measured hair-color table.
type HairFile struct {
	GeneratedFrom string                   `yaml:"generated_from,omitempty"`
	Groups        []lookup.Group[[]string] `yaml:"groups"`
}

type rulesFile struct {
	HairOverrides      []lookup.Group[[]string] `yaml:"hair_overrides"`
	HairFamilies       []lookup.Group[[]string] `yaml:"hair_families"`
	HairDefault        []string                 `yaml:"hair_default"`
	CoatPatterns       []lookup.Group[[]string] `yaml:"coat_patterns"`
	CoatPatternDefault []string                 `yaml:"coat_pattern_default"`
	Sizes              []lookup.Group[Size]     `yaml:"sizes"`
	EyeColors          []lookup.Group[[]string] `yaml:"eye_colors"`
	EyeDefault         []string                 `yaml:"eye_default"`
	SmallEyes          []string                 `yaml:"small_eyes"`
	Temperaments       []lookup.Group[[]string] `yaml:"temperaments"`
	TemperamentDefault []string                 `yaml:"temperament_default"`
	Traits             []lookup.Group[[]string] `yaml:"traits"`
	TraitDefault       []string                 `yaml:"trait_default"`
	SmallTraits        []string                 `yaml:"small_traits"`
	Popularity         []lookup.Group[float64]  `yaml:"popularity"`
	PopularityDefault  float64                  `yaml:"popularity_default"`
	DisplayNames       map[string]string        `yaml:"display_names"`
}

// Tables holds every heuristic table used to classify a breed name.
type Tables struct {
	Hair          lookup.Table[[]string]
	HairOverrides lookup.Table[[]string]
	HairFamilies  lookup.Table[[]string]
	Patterns      lookup.Table[[]string]
	Sizes         lookup.Table[Size]
	Eyes          lookup.Table[[]string]
	Temperaments  lookup.Table[[]string]
	Traits        lookup.Table[[]string]
	Popularity    lookup.Table[float64]

	rules rulesFile
}

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	hairData, err := tablesFS.ReadFile("tables/hair_colors.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read hair table: %w", err)
	}
	var hair HairFile
	if err := yaml.Unmarshal(hairData, &hair); err != nil {
		return nil, fmt.Errorf("failed to parse hair table: %w", err)
	}

	rulesData, err := tablesFS.ReadFile("tables/rules.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	var rules rulesFile
	if err := yaml.Unmarshal(rulesData, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	return &Tables{
		Hair:          lookup.New(hair.Groups, true),
		HairOverrides: lookup.New(rules.HairOverrides, false),
		HairFamilies:  lookup.New(rules.HairFamilies, false),
		Patterns:      lookup.New(rules.CoatPatterns, false),
		Sizes:         lookup.New(rules.Sizes, false),
		Eyes:          lookup.New(rules.EyeColors, false),
		Temperaments:  lookup.New(rules.Temperaments, false),
		Traits:        lookup.New(rules.Traits, false),
		Popularity:    lookup.New(rules.Popularity, false),
		rules:         rules,
	}, nil
})

// DefaultTables returns the embedded tables. They are parsed once.
func DefaultTables() (*Tables, error) {
	return defaultTables()
}

// WithHair returns a copy of t whose measured hair table is replaced.
func (t *Tables) WithHair(groups []lookup.Group[[]string]) *Tables {
	c := *t
	c.Hair = lookup.New(groups, true)
	return &c
}

// ReadHairFile parses a hair table written by the calibrator.
func ReadHairFile(r io.Reader) (HairFile, error) {
	var f HairFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return HairFile{}, fmt.Errorf("failed to decode hair table: %w", err)
	}
	if len(f.Groups) == 0 {
		return HairFile{}, ErrEmpty
	}
	return f, nil
}

// WriteHairFile writes f in the format ReadHairFile accepts.
func WriteHairFile(w io.Writer, f HairFile) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode hair table: %w", err)
	}
	return enc.Close()
}
