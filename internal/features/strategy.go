// Package features extracts hair, skin, and eye color features from a face
// image, with a geometry-only fallback when no face can be found.
package features

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/kozaktomas/breed-twin/internal/facedetect"
	"github.com/kozaktomas/breed-twin/internal/region"
)

// ErrNoFace is returned by the detection strategy when it cannot locate a
// usable face.
var ErrNoFace = errors.New("no face detected")

// Strategy extracts a feature set from a decoded image.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, img *image.NRGBA) (Set, error)
}

// Detected samples regions around the highest-confidence face reported by
// the detector.
type Detected struct {
	detector facedetect.Detector
}

// NewDetected creates the detection strategy. A nil detector makes every
// call return ErrNoFace.
func NewDetected(detector facedetect.Detector) *Detected {
	return &Detected{detector: detector}
}

func (d *Detected) Name() string { return "detected" }

func (d *Detected) Extract(ctx context.Context, img *image.NRGBA) (Set, error) {
	if d.detector == nil {
		return Set{}, fmt.Errorf("detector unavailable: %w", ErrNoFace)
	}

	faces, err := d.detector.Detect(ctx, img)
	if err != nil {
		return Set{}, fmt.Errorf("face detection failed: %w", errors.Join(ErrNoFace, err))
	}
	face, ok := facedetect.Best(faces)
	if !ok {
		return Set{}, ErrNoFace
	}

	b := img.Bounds()
	regions := region.FromFace(face, b.Dx(), b.Dy())

	set := classify(
		region.Average(img, regions.Hair),
		region.Average(img, regions.Skin),
		region.AverageOf(img, regions.LeftEye, regions.RightEye),
		detectedHairConfidence,
	)
	set.FaceShape = Shape(face)
	set.Visual = Visual(img, regions, face.Box)
	set.NumberOfFaces = len(faces)
	set.FaceDetected = true
	set.Confidence = DetectedConfidence
	return set, nil
}

// Geometric samples fixed fractions of the image, assuming a roughly
// centered portrait.
type Geometric struct{}

func (Geometric) Name() string { return "geometric" }

func (Geometric) Extract(_ context.Context, img *image.NRGBA) (Set, error) {
	b := img.Bounds()
	regions := region.Geometric(b.Dx(), b.Dy())

	set := classify(
		region.Average(img, regions.Hair),
		region.Average(img, regions.Skin),
		region.Average(img, regions.LeftEye),
		detectedHairConfidence,
	)
	set.NumberOfFaces = 0
	set.FaceDetected = false
	set.Confidence = GeometricConfidence
	return set, nil
}
