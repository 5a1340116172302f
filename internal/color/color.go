// Package color converts RGB samples to HSL and maps them onto the named
// palettes used for hair, skin, eyes, and breed photos.
package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit color sample.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Neutral is returned for regions that contain no usable pixels.
var Neutral = RGB{R: 100, G: 100, B: 100}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// HSL returns hue in [0,360) and saturation and lightness in [0,100].
// Gray samples (r=g=b) have zero hue and saturation.
func (c RGB) HSL() (h, s, l float64) {
	h, s, l = c.colorful().Hsl()
	if c.R == c.G && c.G == c.B {
		h, s = 0, 0
	}
	if h >= 360 {
		h -= 360
	}
	return h, s * 100, l * 100
}

// Hex returns the sample as #rrggbb.
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

// Lab returns the CIE L*a*b* coordinates of the sample.
func (c RGB) Lab() (l, a, b float64) {
	return c.colorful().Lab()
}

// Brightness is the plain mean of the three channels.
func (c RGB) Brightness() float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3
}

// FromHex parses #rrggbb. Invalid input yields Neutral.
func FromHex(s string) RGB {
	col, err := colorful.Hex(s)
	if err != nil {
		return Neutral
	}
	r, g, b := col.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// Attributes is a classified sample.
type Attributes struct {
	Name string  `json:"name"`
	Hex  string  `json:"hex"`
	H    float64 `json:"h"`
	S    float64 `json:"s"`
	L    float64 `json:"l"`
}

func attributes(c RGB, name string) Attributes {
	h, s, l := c.HSL()
	return Attributes{Name: name, Hex: c.Hex(), H: round1(h), S: round1(s), L: round1(l)}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
