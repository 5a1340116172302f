package matcher

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/color"
	"github.com/kozaktomas/breed-twin/internal/features"
)

const harmoniousReason = "your overall coloring and features create a harmonious match with this breed"

// reasoner assembles the match explanation from the factors that clear
// the threshold.
type reasoner struct {
	threshold float64
	warm      []string
	member    memberFunc
	// traits adds the breed's first physical trait.
	traits bool
	// darkEyes adds a clause for dark eyes on a breed with brown eyes.
	darkEyes bool
}

func (r reasoner) reason(f features.Set, e catalog.Entry) string {
	var reasons []string

	if c, ok := r.firstAbove(f.Hair.Dominant, e.HairColors); ok {
		reasons = append(reasons, fmt.Sprintf("your %s hair matches the %s coat", strings.ToLower(f.Hair.Dominant), strings.ToLower(c)))
	}
	if _, ok := r.firstAbove(f.Eyes.Dominant, e.EyeColors); ok {
		reasons = append(reasons, fmt.Sprintf("your %s eyes are similar to this breed's typical eye color", strings.ToLower(f.Eyes.Dominant)))
	}
	if f.Skin.Warmth == color.Warm && r.member(e.Name, r.warm) {
		reasons = append(reasons, "your warm undertones complement this breed's golden coloring")
	}
	if r.traits && len(e.PhysicalTraits) > 0 {
		reasons = append(reasons, fmt.Sprintf("your features align with this breed's %s", strings.ToLower(e.PhysicalTraits[0])))
	}
	if r.darkEyes && f.Eyes.Intensity == color.IntensityDark && slices.Contains(e.EyeColors, color.Brown) {
		reasons = append(reasons, "your expressive dark eyes mirror this breed's soulful gaze")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, harmoniousReason)
	}
	return "Based on our analysis, " + strings.Join(reasons, ", and ") + "."
}

func (r reasoner) firstAbove(name string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if color.Similarity(name, c) > r.threshold {
			return c, true
		}
	}
	return "", false
}
