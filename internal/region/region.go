// Package region computes the facial sampling rectangles and averages the
// pixel color inside them.
package region

import (
	"image"
	"math"

	"github.com/kozaktomas/breed-twin/internal/color"
	"github.com/kozaktomas/breed-twin/internal/facedetect"
)

// AlphaThreshold is the minimum alpha for a pixel to count toward an average.
const AlphaThreshold = 128

// Rect is a sampling rectangle in pixel coordinates. It may extend past the
// image; sampling clamps it.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the rectangle area, zero for degenerate rectangles.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Clamp returns the integer pixel rectangle of r that lies within an image
// of the given size. The result may be empty.
func (r Rect) Clamp(width, height int) image.Rectangle {
	x0 := int(math.Max(0, math.Floor(r.X)))
	y0 := int(math.Max(0, math.Floor(r.Y)))
	x1 := int(math.Min(float64(width), math.Ceil(r.X+r.Width)))
	y1 := int(math.Min(float64(height), math.Ceil(r.Y+r.Height)))
	if x1 <= x0 || y1 <= y0 {
		return image.Rectangle{}
	}
	return image.Rect(x0, y0, x1, y1)
}

// Set holds every region sampled from one face.
type Set struct {
	Hair     Rect `json:"hair"`
	Skin     Rect `json:"skin"`
	LeftEye  Rect `json:"left_eye"`
	RightEye Rect `json:"right_eye"`
	Beard    Rect `json:"beard"`
	Mustache Rect `json:"mustache"`
}

// FromFace derives the region set from a detected face in an image of the
// given size.
func FromFace(face facedetect.Face, width, height int) Set {
	box := face.Box
	lm := face.Landmarks
	w, h := float64(width), float64(height)
	eyeY := lm.EyeLineY()

	hair := Rect{
		X:      math.Max(0, box.X),
		Y:      math.Max(0, box.Y),
		Width:  math.Min(box.Width, w-box.X),
		Height: math.Max(10, eyeY-box.Y),
	}

	skinX := box.X + box.Width*0.2
	skin := Rect{
		X:      math.Max(skinX, 0),
		Y:      math.Max(eyeY+10, 0),
		Width:  math.Min(box.Width*0.6, w-skinX),
		Height: math.Max(10, lm.MouthCenter.Y-eyeY-20),
	}

	eyeSize := math.Max(20, box.Width*0.15)
	eye := func(p facedetect.Point) Rect {
		x := p.X - eyeSize/2
		y := p.Y - eyeSize/2
		return Rect{
			X:      math.Max(x, 0),
			Y:      math.Max(y, 0),
			Width:  math.Min(eyeSize, w-x),
			Height: math.Min(eyeSize, h-y),
		}
	}

	beard := Rect{
		X:      lm.MouthCenter.X - box.Width*0.3,
		Y:      lm.MouthCenter.Y,
		Width:  box.Width * 0.6,
		Height: math.Max(10, box.Y+box.Height-lm.MouthCenter.Y),
	}

	mustache := Rect{
		X:      lm.MouthCenter.X - box.Width*0.2,
		Y:      lm.NoseTip.Y,
		Width:  box.Width * 0.4,
		Height: math.Max(5, lm.MouthCenter.Y-lm.NoseTip.Y),
	}

	return Set{
		Hair:     hair,
		Skin:     skin,
		LeftEye:  eye(lm.LeftEye),
		RightEye: eye(lm.RightEye),
		Beard:    beard,
		Mustache: mustache,
	}
}

// Geometric approximates the regions from typical portrait proportions
// when no face was detected. Both eye rects cover the same horizontal
// strip, and beard and mustache are left empty.
func Geometric(width, height int) Set {
	faceTop := math.Floor(float64(height) * 0.2)
	faceBottom := math.Floor(float64(height) * 0.8)
	faceLeft := math.Floor(float64(width) * 0.25)
	faceRight := math.Floor(float64(width) * 0.75)
	band := faceBottom - faceTop
	faceWidth := faceRight - faceLeft
	inset := faceWidth * 0.2

	eyes := Rect{X: faceLeft + inset, Y: faceTop + band*0.4, Width: faceWidth - 2*inset, Height: band * 0.1}
	return Set{
		Hair:     Rect{X: faceLeft, Y: faceTop, Width: faceWidth, Height: band * 0.3},
		Skin:     Rect{X: faceLeft + inset, Y: faceTop + band*0.3, Width: faceWidth - 2*inset, Height: band * 0.4},
		LeftEye:  eyes,
		RightEye: eyes,
	}
}

// Average returns the mean color of the pixels in r whose alpha exceeds
// AlphaThreshold. A region without such pixels yields color.Neutral.
func Average(img *image.NRGBA, r Rect) color.RGB {
	b := img.Bounds()
	rect := r.Clamp(b.Dx(), b.Dy()).Add(b.Min)

	var totalR, totalG, totalB, count int
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := img.PixOffset(rect.Min.X, y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			px := img.Pix[off : off+4 : off+4]
			off += 4
			if px[3] <= AlphaThreshold {
				continue
			}
			totalR += int(px[0])
			totalG += int(px[1])
			totalB += int(px[2])
			count++
		}
	}

	if count == 0 {
		return color.Neutral
	}
	return color.RGB{
		R: roundDiv(totalR, count),
		G: roundDiv(totalG, count),
		B: roundDiv(totalB, count),
	}
}

// AverageOf returns the mean of the per-region averages, ignoring rects
// that fall entirely outside the image.
func AverageOf(img *image.NRGBA, rects ...Rect) color.RGB {
	var sumR, sumG, sumB, n float64
	for _, r := range rects {
		c := Average(img, r)
		if r.Clamp(img.Bounds().Dx(), img.Bounds().Dy()).Empty() {
			continue
		}
		sumR += float64(c.R)
		sumG += float64(c.G)
		sumB += float64(c.B)
		n++
	}
	if n == 0 {
		return color.Neutral
	}
	return color.RGB{
		R: uint8(math.Round(sumR / n)),
		G: uint8(math.Round(sumG / n)),
		B: uint8(math.Round(sumB / n)),
	}
}

func roundDiv(sum, n int) uint8 {
	return uint8(math.Round(float64(sum) / float64(n)))
}
