package features

import "github.com/kozaktomas/breed-twin/internal/color"

// FaceShape is a coarse face outline class.
type FaceShape string

const (
	ShapeOval    FaceShape = "oval"
	ShapeRound   FaceShape = "round"
	ShapeSquare  FaceShape = "square"
	ShapeHeart   FaceShape = "heart"
	ShapeDiamond FaceShape = "diamond"
)

// HairLength is estimated from the hair region relative to the face box.
type HairLength string

const (
	HairShort  HairLength = "short"
	HairMedium HairLength = "medium"
	HairLong   HairLength = "long"
)

// Hair is the dominant hair color.
type Hair struct {
	Dominant   string  `json:"dominant"`
	Hex        string  `json:"hex"`
	Confidence float64 `json:"confidence"`
}

// Skin is the dominant skin tone and undertone.
type Skin struct {
	Dominant string       `json:"dominant"`
	Hex      string       `json:"hex"`
	Warmth   color.Warmth `json:"warmth"`
}

// Eyes is the dominant eye color and its intensity.
type Eyes struct {
	Dominant  string          `json:"dominant"`
	Hex       string          `json:"hex"`
	Intensity color.Intensity `json:"intensity"`
}

// VisualFeatures are coarse appearance flags. HasGlasses is a weak
// heuristic based only on dark eye regions.
type VisualFeatures struct {
	HasBeard      bool       `json:"has_beard"`
	HasMustache   bool       `json:"has_mustache"`
	HasFacialHair bool       `json:"has_facial_hair"`
	HasLongHair   bool       `json:"has_long_hair"`
	HasGlasses    bool       `json:"has_glasses"`
	HairLength    HairLength `json:"hair_length"`
}

// Set is the feature record extracted from one image.
type Set struct {
	Hair          Hair            `json:"hair"`
	Skin          Skin            `json:"skin"`
	Eyes          Eyes            `json:"eyes"`
	FaceShape     FaceShape       `json:"face_shape,omitempty"`
	NumberOfFaces int             `json:"number_of_faces"`
	FaceDetected  bool            `json:"face_detected"`
	Confidence    float64         `json:"confidence"`
	Visual        *VisualFeatures `json:"visual_features,omitempty"`
}

// Confidence levels per extraction path.
const (
	DetectedConfidence  = 0.9
	GeometricConfidence = 0.75
	NeutralConfidence   = 0.3

	detectedHairConfidence = 0.8
	neutralHairConfidence  = 0.5
)

// Neutral is the feature set used when the image cannot be decoded.
func Neutral() Set {
	return Set{
		Hair:         Hair{Dominant: color.Brown, Hex: "#8B4513", Confidence: neutralHairConfidence},
		Skin:         Skin{Dominant: color.Medium, Hex: "#DDBEA9", Warmth: color.NeutralWarmth},
		Eyes:         Eyes{Dominant: color.Brown, Hex: "#654321", Intensity: color.IntensityMedium},
		FaceDetected: false,
		Confidence:   NeutralConfidence,
	}
}

// classify builds the color part of a set from the three region averages.
func classify(hair, skin, eyes color.RGB, hairConfidence float64) Set {
	tone, warmth := color.SkinTone(skin)
	eyeName, intensity := color.EyeColor(eyes)
	return Set{
		Hair: Hair{Dominant: color.HairColor(hair), Hex: hair.Hex(), Confidence: hairConfidence},
		Skin: Skin{Dominant: tone, Hex: skin.Hex(), Warmth: warmth},
		Eyes: Eyes{Dominant: eyeName, Hex: eyes.Hex(), Intensity: intensity},
	}
}
