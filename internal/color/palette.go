package color

// Hair palette.
const (
	Black        = "Black"
	DarkBrown    = "Dark Brown"
	Brown        = "Brown"
	Auburn       = "Auburn"
	LightBrown   = "Light Brown"
	Blonde       = "Blonde"
	Gray         = "Gray"
	White        = "White"
	Red          = "Red"
	ReddishBrown = "Reddish Brown"
)

// HairPalette lists every name HairColor can return.
var HairPalette = []string{Black, DarkBrown, Brown, Auburn, LightBrown, Blonde, White, Gray, Red, ReddishBrown}

// HairColor classifies a hair sample. Rules are evaluated in order and the
// first match wins.
func HairColor(c RGB) string {
	h, s, l := c.HSL()
	switch {
	case l < 15:
		return Black
	case l < 25 && s < 20:
		return DarkBrown
	case l < 35 && s < 30:
		return Brown
	case l < 45 && s > 30 && h > 15 && h < 45:
		return Auburn
	case l < 50 && s > 40 && h > 45 && h < 75:
		return LightBrown
	case l > 50 && s > 50 && h > 45 && h < 75:
		return Blonde
	case l > 85:
		return White
	case l > 70 && s < 20:
		return Gray
	case h < 30 && s > 60:
		return Red
	case h > 300 || h < 30:
		return ReddishBrown
	default:
		return Brown
	}
}

// Warmth of a skin sample.
type Warmth string

const (
	Warm          Warmth = "warm"
	Cool          Warmth = "cool"
	NeutralWarmth Warmth = "neutral"
)

// Skin tone labels from darkest to lightest.
const (
	Deep        = "Deep"
	Dark        = "Dark"
	MediumDark  = "Medium-Dark"
	Medium      = "Medium"
	MediumLight = "Medium-Light"
	Light       = "Light"
	VeryLight   = "Very Light"
)

// SkinPalette lists every tone SkinTone can return.
var SkinPalette = []string{Deep, Dark, MediumDark, Medium, MediumLight, Light, VeryLight}

// SkinTone returns the tone label and the undertone of a skin sample.
func SkinTone(c RGB) (string, Warmth) {
	h, _, l := c.HSL()

	warmth := NeutralWarmth
	if h > 15 && h < 45 {
		warmth = Warm
	} else if h > 200 && h < 300 {
		warmth = Cool
	}

	var tone string
	switch {
	case l < 25:
		tone = Deep
	case l < 35:
		tone = Dark
	case l < 45:
		tone = MediumDark
	case l < 55:
		tone = Medium
	case l < 65:
		tone = MediumLight
	case l < 75:
		tone = Light
	default:
		tone = VeryLight
	}
	return tone, warmth
}

// Intensity of an eye sample.
type Intensity string

const (
	IntensityDark   Intensity = "dark"
	IntensityMedium Intensity = "medium"
	IntensityLight  Intensity = "light"
)

// Eye palette.
const (
	Hazel  = "Hazel"
	Green  = "Green"
	Blue   = "Blue"
	Violet = "Violet"
)

// EyePalette lists every name EyeColor can return.
var EyePalette = []string{DarkBrown, Brown, Hazel, Green, Blue, Violet, Gray}

// EyeColor returns the eye color name and its intensity. Very dark samples
// are Dark Brown whatever their hue.
func EyeColor(c RGB) (string, Intensity) {
	h, s, l := c.HSL()

	intensity := IntensityLight
	if l < 30 {
		intensity = IntensityDark
	} else if l < 60 {
		intensity = IntensityMedium
	}

	var name string
	switch {
	case l < 20:
		name = DarkBrown
	case h > 15 && h < 45 && s > 30:
		name = Brown
	case h > 45 && h < 75 && s > 30:
		name = Hazel
	case h > 75 && h < 150 && s > 30:
		name = Green
	case h > 150 && h < 250 && s > 30:
		name = Blue
	case h > 250 && h < 300 && s > 30:
		name = Violet
	case s < 20 && l > 60:
		name = Gray
	default:
		name = Brown
	}
	return name, intensity
}

// Photo palette used when profiling breed photos.
const (
	DarkGray    = "Dark Gray"
	LightGray   = "Light Gray"
	VeryDark    = "Very Dark"
	Golden      = "Golden"
	YellowGreen = "Yellow-Green"
	BlueGreen   = "Blue-Green"
	Purple      = "Purple"
	Pink        = "Pink"
	RedPink     = "Red-Pink"
)

// PhotoPalette lists every name PhotoColor can return.
var PhotoPalette = []string{
	Black, DarkGray, Gray, LightGray, White, VeryDark, VeryLight,
	Red, Auburn, Brown, Golden, YellowGreen, Green, BlueGreen, Blue, Purple, Violet, Pink, RedPink,
}

var hueBands = []string{Auburn, Brown, Golden, YellowGreen, Green, BlueGreen, Blue, Purple, Violet, Pink, RedPink}

// PhotoColor names a pixel cluster from a breed photo. Low saturation maps
// onto the gray scale, extremes of lightness onto Very Dark and Very Light,
// and everything else onto 30 degree hue bands starting at 15.
func PhotoColor(c RGB) string {
	h, s, l := c.HSL()
	if s < 15 {
		switch {
		case l < 20:
			return Black
		case l < 40:
			return DarkGray
		case l < 60:
			return Gray
		case l < 80:
			return LightGray
		default:
			return White
		}
	}
	if l < 15 {
		return VeryDark
	}
	if l > 85 {
		return VeryLight
	}
	if h >= 345 || h < 15 {
		return Red
	}
	idx := int((h - 15) / 30)
	if idx >= len(hueBands) {
		return RedPink
	}
	return hueBands[idx]
}

// ClassifyHair classifies a hair sample with its hex and HSL.
func ClassifyHair(c RGB) Attributes {
	return attributes(c, HairColor(c))
}

// ClassifyPhoto classifies a photo cluster with its hex and HSL.
func ClassifyPhoto(c RGB) Attributes {
	return attributes(c, PhotoColor(c))
}
