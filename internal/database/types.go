package database

import (
	"time"

	"github.com/kozaktomas/breed-twin/internal/color"
	"github.com/kozaktomas/breed-twin/internal/lookup"
)

// BreedProfile is the measured coat color of a breed from a calibration run
type BreedProfile struct {
	Key        string    // Normalized breed name, unique per profile
	Breed      string    // Display name
	Path       string    // dog.ceo breed path
	Colors     []string  // Significant coat colors, most frequent first
	Lab        []float32 // CIE L*a*b* of the overall coat color
	Hex        string    // Overall coat color as #rrggbb
	Confidence int       // Agreement between sample photos, 0-100
	Samples    int       // Number of photos analyzed
	RunID      string    // Calibration run that produced the profile
	UpdatedAt  time.Time
}

// LabVector returns the Lab coordinates of c as an index vector
func LabVector(c color.RGB) []float32 {
	l, a, b := c.Lab()
	return []float32{float32(l), float32(a), float32(b)}
}

// HairGroups turns stored profiles into hair table rows for the catalog,
// in the order given. Profiles without colors are skipped.
func HairGroups(profiles []BreedProfile) []lookup.Group[[]string] {
	groups := make([]lookup.Group[[]string], 0, len(profiles))
	for _, p := range profiles {
		if len(p.Colors) == 0 {
			continue
		}
		groups = append(groups, lookup.Group[[]string]{Keys: []string{p.Key}, Value: p.Colors})
	}
	return groups
}
