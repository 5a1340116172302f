package facedetect

import (
	"context"
	"image"
	"math"
)

// Point is a pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a pixel bounding box anchored at its top-left corner.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Landmarks are the six keypoints returned per face, in detector order.
type Landmarks struct {
	RightEye        Point `json:"right_eye"`
	LeftEye         Point `json:"left_eye"`
	NoseTip         Point `json:"nose_tip"`
	MouthCenter     Point `json:"mouth_center"`
	RightEarTragion Point `json:"right_ear_tragion"`
	LeftEarTragion  Point `json:"left_ear_tragion"`
}

// EyeLineY is the mean height of both eyes.
func (l Landmarks) EyeLineY() float64 {
	return (l.RightEye.Y + l.LeftEye.Y) / 2
}

// EyeDistance is the horizontal distance between the eyes.
func (l Landmarks) EyeDistance() float64 {
	return math.Abs(l.RightEye.X - l.LeftEye.X)
}

// JawWidth approximates jaw width by the distance between the ear tragions.
func (l Landmarks) JawWidth() float64 {
	return math.Abs(l.RightEarTragion.X - l.LeftEarTragion.X)
}

// Face is a single detection.
type Face struct {
	Box        Box       `json:"box"`
	Landmarks  Landmarks `json:"landmarks"`
	Confidence float64   `json:"confidence"`
}

// Detector finds faces in an image. Implementations return an empty slice
// and no error when nothing is found.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Face, error)
}

// Best returns the face with the highest confidence.
func Best(faces []Face) (Face, bool) {
	if len(faces) == 0 {
		return Face{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.Confidence > best.Confidence {
			best = f
		}
	}
	return best, true
}
