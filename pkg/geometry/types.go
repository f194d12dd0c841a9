// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// FromImagePoints converts integer image points (contour output) to Point2D.
func FromImagePoints(pts []image.Point) []Point2D {
	out := make([]Point2D, len(pts))
	for i, p := range pts {
		out[i] = Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}

// RectInt represents a rectangle with integer pixel coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle covers no pixels.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Image returns the rectangle as an image.Rectangle offset by origin.
func (r RectInt) Image(origin image.Point) image.Rectangle {
	return image.Rect(origin.X+r.X, origin.Y+r.Y, origin.X+r.X+r.Width, origin.Y+r.Y+r.Height)
}

// RelRect is a rectangle expressed as fractions of a parent's width and height.
// All four values are expected in [0,1].
type RelRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRelRect builds a RelRect from the [x, y, w, h] form used in room profiles.
func NewRelRect(v [4]float64) RelRect {
	return RelRect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
}

// Array returns the [x, y, w, h] form.
func (r RelRect) Array() [4]float64 {
	return [4]float64{r.X, r.Y, r.Width, r.Height}
}

// Valid reports whether every component is finite, inside [0,1] and the
// rectangle has a positive area.
func (r RelRect) Valid() bool {
	for _, v := range r.Array() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

// ToAbs converts the relative rectangle to pixel bounds inside a parent of
// size w x h. The result is clamped so it never leaves the parent and always
// covers at least one pixel when the parent is non-empty.
func (r RelRect) ToAbs(w, h int) RectInt {
	if w <= 0 || h <= 0 {
		return RectInt{}
	}
	x := clampInt(int(math.Round(r.X*float64(w))), 0, w-1)
	y := clampInt(int(math.Round(r.Y*float64(h))), 0, h-1)
	rw := clampInt(int(math.Round(r.Width*float64(w))), 1, w-x)
	rh := clampInt(int(math.Round(r.Height*float64(h))), 1, h-y)
	return RectInt{X: x, Y: y, Width: rw, Height: rh}
}

// FromAbs converts pixel bounds inside a parent of size w x h back to a
// relative rectangle.
func FromAbs(r RectInt, w, h int) RelRect {
	if w <= 0 || h <= 0 {
		return RelRect{}
	}
	fw, fh := float64(w), float64(h)
	return RelRect{
		X:      float64(r.X) / fw,
		Y:      float64(r.Y) / fh,
		Width:  float64(r.Width) / fw,
		Height: float64(r.Height) / fh,
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
