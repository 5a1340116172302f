// Package catalog turns the flat breed list from dog.ceo into classified
// catalog entries using keyword tables.
package catalog

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kozaktomas/breed-twin/internal/color"
	"github.com/kozaktomas/breed-twin/internal/dogapi"
	"github.com/kozaktomas/breed-twin/internal/lookup"
)

// ErrEmpty is returned when a table or breed list has no rows.
var ErrEmpty = errors.New("catalog is empty")

// Size is a coarse breed size class.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Entry is one breed or sub-breed in the catalog.
type Entry struct {
	Name             string   `json:"name"`
	FullName         string   `json:"fullName"`
	HairColors       []string `json:"hairColors"`
	CoatPattern      []string `json:"coatPattern"`
	Size             Size     `json:"size"`
	EyeColors        []string `json:"eyeColors"`
	Temperament      []string `json:"temperament"`
	PhysicalTraits   []string `json:"physicalTraits"`
	IsSubBreed       bool     `json:"isSubBreed"`
	ParentBreed      string   `json:"parentBreed,omitempty"`
	Path             string   `json:"path"`
	PopularityWeight float64  `json:"popularityWeight"`
}

// BreedLister returns the raw breed list.
type BreedLister interface {
	ListBreeds(ctx context.Context) ([]dogapi.Breed, error)
}

// Builder builds catalogs from a breed list.
type Builder struct {
	lister BreedLister
	tables *Tables
	logger *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithTables replaces the embedded tables, usually with a calibrated hair
// table.
func WithTables(t *Tables) Option {
	return func(b *Builder) {
		b.tables = t
	}
}

// NewBuilder creates a builder over lister using the embedded tables.
func NewBuilder(lister BreedLister, opts ...Option) (*Builder, error) {
	tables, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	b := &Builder{lister: lister, tables: tables, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build fetches the breed list and classifies it. A fetch failure or an
// empty list yields an empty catalog so callers can degrade to static
// breeds.
func (b *Builder) Build(ctx context.Context) []Entry {
	breeds, err := b.lister.ListBreeds(ctx)
	if err != nil {
		b.logger.Warn("breed list unavailable, using empty catalog", zap.Error(err))
		return []Entry{}
	}
	entries := b.FromBreeds(breeds)
	b.logger.Debug("catalog built", zap.Int("breeds", len(breeds)), zap.Int("entries", len(entries)))
	return entries
}

// FromBreeds classifies breeds in input order. Sub-breeds come before
// their parent.
func (b *Builder) FromBreeds(breeds []dogapi.Breed) []Entry {
	entries := make([]Entry, 0, len(breeds))
	for _, br := range breeds {
		for _, sub := range br.SubBreeds {
			e := b.Classify(b.DisplayName(br.Name, sub))
			e.IsSubBreed = true
			e.ParentBreed = br.Name
			e.Path = dogapi.PathFor(br.Name, sub)
			entries = append(entries, e)
		}
		e := b.Classify(b.DisplayName(br.Name, ""))
		e.Path = br.Name
		entries = append(entries, e)
	}
	return entries
}

// Classify assigns colors, size, temperament, traits and a popularity
// weight to a display name.
func (b *Builder) Classify(name string) Entry {
	t := b.tables
	r := t.rules
	key := lookup.Normalize(name)

	size := lookup.Resolve(key, SizeMedium, t.Sizes)
	e := Entry{
		Name:             name,
		FullName:         name,
		Path:             dogapi.BreedPath(name),
		HairColors:       lookup.Resolve(key, r.HairDefault, t.Hair, t.HairOverrides, t.HairFamilies),
		CoatPattern:      lookup.Resolve(key, r.CoatPatternDefault, t.Patterns),
		Size:             size,
		EyeColors:        lookup.Resolve(key, r.EyeDefault, t.Eyes),
		Temperament:      lookup.Resolve(key, r.TemperamentDefault, t.Temperaments),
		PhysicalTraits:   lookup.Resolve(key, r.TraitDefault, t.Traits),
		PopularityWeight: lookup.Resolve(key, r.PopularityDefault, t.Popularity),
	}
	if size == SizeSmall {
		e.EyeColors = r.SmallEyes
		e.PhysicalTraits = r.SmallTraits
	}
	return e
}

// DisplayName formats a dog.ceo breed for display: "Sub Breed" for
// sub-breeds, a fixed spelling for run-together names, otherwise title
// case.
func (b *Builder) DisplayName(breed, sub string) string {
	title := cases.Title(language.English)
	if sub != "" {
		return title.String(sub) + " " + title.String(breed)
	}
	if special, ok := b.tables.rules.DisplayNames[strings.ToLower(breed)]; ok {
		return special
	}
	return title.String(breed)
}

// Filter keeps entries sharing at least one hair color and one eye color
// with the given lists. An empty list does not constrain.
func Filter(entries []Entry, hair, eyes []string) []Entry {
	var out []Entry
	for _, e := range entries {
		if len(hair) > 0 && !color.Overlaps(hair, e.HairColors) {
			continue
		}
		if len(eyes) > 0 && !color.Overlaps(eyes, e.EyeColors) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Sample returns up to n entries in random order. The input is not
// modified.
func Sample(entries []Entry, n int, rng *rand.Rand) []Entry {
	shuffled := make([]Entry, len(entries))
	copy(shuffled, entries)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return shuffled
}
