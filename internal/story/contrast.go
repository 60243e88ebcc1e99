package story

import (
	"image/color"
	"math"
)

// contrastThreshold is the ratio against white above which white text is
// still legible on a background.
const contrastThreshold = 1.8

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.NRGBA{A: 0xff}
)

// Luminance returns the relative luminance of c in [0,1].
func Luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	lin := func(v uint32) float64 {
		s := float64(v) / 0xffff
		if s <= 0.03928 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(r) + 0.7152*lin(g) + 0.0722*lin(b)
}

// ContrastRatio returns the contrast ratio between two colours, from 1 to 21.
func ContrastRatio(a, b color.Color) float64 {
	la, lb := Luminance(a), Luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// TextColor picks white or black text for the given background.
func TextColor(background color.Color) color.NRGBA {
	if ContrastRatio(background, white) > contrastThreshold {
		return white
	}
	return black
}
