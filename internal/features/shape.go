package features

import "github.com/kozaktomas/breed-twin/internal/facedetect"

// ClassifyShape maps face proportions to a shape. widthHeight is box width
// over height, jawCheek is jaw width over box width, and foreheadJaw is the
// estimated forehead width (eye distance x 1.3) over jaw width.
func ClassifyShape(widthHeight, jawCheek, foreheadJaw float64) FaceShape {
	switch {
	case widthHeight > 0.9 && jawCheek >= 0.85:
		return ShapeSquare
	case widthHeight > 0.9:
		return ShapeRound
	case widthHeight < 0.8 && foreheadJaw > 1:
		return ShapeHeart
	case widthHeight < 0.8 && jawCheek < 0.85:
		return ShapeDiamond
	default:
		return ShapeOval
	}
}

// Shape classifies a detected face.
func Shape(face facedetect.Face) FaceShape {
	box := face.Box
	jaw := face.Landmarks.JawWidth()
	if box.Height <= 0 || box.Width <= 0 || jaw <= 0 {
		return ShapeOval
	}
	forehead := face.Landmarks.EyeDistance() * 1.3
	return ClassifyShape(box.Width/box.Height, jaw/box.Width, forehead/jaw)
}
