// Package colorutil provides shared color utilities for card recognition.
package colorutil

import (
	"image/color"
	"math"
)

// Overlay colors used by the preview UI.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.RGBA{R: 220, G: 30, B: 30, A: 255}
	Green = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	Amber = color.RGBA{R: 255, G: 176, B: 0, A: 255}
)

// HSVRange is an inclusive HSV box in OpenCV convention (H 0-180, S/V 0-255).
type HSVRange struct {
	HMin, SMin, VMin float64
	HMax, SMax, VMax float64
}

// Contains reports whether the HSV triple falls inside the range.
func (r HSVRange) Contains(h, s, v float64) bool {
	return h >= r.HMin && h <= r.HMax &&
		s >= r.SMin && s <= r.SMax &&
		v >= r.VMin && v <= r.VMax
}

// Red hue wraps around 0, so suit ink is matched by two ranges.
var (
	RedLow  = HSVRange{HMin: 0, SMin: 70, VMin: 40, HMax: 10, SMax: 255, VMax: 255}
	RedHigh = HSVRange{HMin: 170, SMin: 70, VMin: 40, HMax: 180, SMax: 255, VMax: 255}
)

// IsRedInk reports whether an RGB (0-255) pixel counts as red suit ink.
func IsRedInk(r, g, b float64) bool {
	h, s, v := RGBToHSV(r, g, b)
	return RedLow.Contains(h, s, v) || RedHigh.Contains(h, s, v)
}

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0 // V in 0-255

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0 // S in 0-255
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	h = h / 2 // Convert to OpenCV's 0-180 range

	return h, s, v
}
