package features

import (
	"image"

	"github.com/kozaktomas/breed-twin/internal/facedetect"
	"github.com/kozaktomas/breed-twin/internal/region"
)

// Visual feature thresholds on 0-255 brightness.
const (
	beardContrast     = 30
	beardMaxBright    = 120
	mustacheContrast  = 25
	mustacheMaxBright = 100
	glassesMaxBright  = 60

	shortHairRatio = 0.15
	longHairRatio  = 0.4
)

// Visual derives appearance flags by comparing region brightness against
// the skin region.
func Visual(img *image.NRGBA, regions region.Set, box facedetect.Box) *VisualFeatures {
	skin := region.Average(img, regions.Skin).Brightness()
	beard := region.Average(img, regions.Beard).Brightness()
	mustache := region.Average(img, regions.Mustache).Brightness()
	leftEye := region.Average(img, regions.LeftEye).Brightness()
	rightEye := region.Average(img, regions.RightEye).Brightness()

	v := &VisualFeatures{
		HasBeard:    skin-beard > beardContrast && beard < beardMaxBright,
		HasMustache: skin-mustache > mustacheContrast && mustache < mustacheMaxBright,
		HasGlasses:  leftEye < glassesMaxBright && rightEye < glassesMaxBright,
		HairLength:  hairLength(regions.Hair.Area(), box.Width*box.Height),
	}
	v.HasFacialHair = v.HasBeard || v.HasMustache
	v.HasLongHair = v.HairLength == HairLong
	return v
}

func hairLength(hairArea, boxArea float64) HairLength {
	if boxArea <= 0 {
		return HairMedium
	}
	ratio := hairArea / boxArea
	switch {
	case ratio < shortHairRatio:
		return HairShort
	case ratio > longHairRatio:
		return HairLong
	default:
		return HairMedium
	}
}
