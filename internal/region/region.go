// Package region cuts the rank and suit sub-patches out of a card patch.
package region

import (
	"fmt"
	"image"
	"image/draw"

	"pokervision/internal/card"
	"pokervision/pkg/geometry"
)

// Kind selects which default sub-region applies.
type Kind int

const (
	// Whole is the entire patch.
	Whole Kind = iota
	// Rank is the rank glyph corner.
	Rank
	// Suit is the suit pip corner.
	Suit
)

func (k Kind) String() string {
	switch k {
	case Rank:
		return "rank"
	case Suit:
		return "suit"
	default:
		return "card"
	}
}

// Default sub-regions, relative to the card patch.
var (
	DefaultRank = geometry.RelRect{X: 0.02, Y: 0.02, Width: 0.52, Height: 0.56}
	DefaultSuit = geometry.RelRect{X: 0.56, Y: 0.06, Width: 0.38, Height: 0.44}
)

// Default returns the default relative rectangle for a kind.
func Default(kind Kind) geometry.RelRect {
	switch kind {
	case Rank:
		return DefaultRank
	case Suit:
		return DefaultSuit
	default:
		return geometry.RelRect{Width: 1, Height: 1}
	}
}

// Extract copies the sub-region rel of img. A nil rel selects the default
// region for kind. The source image is never modified.
func Extract(img image.Image, rel *geometry.RelRect, kind Kind) (*image.RGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%s: %w", kind, card.ErrEmptyPatch)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%s: %w", kind, card.ErrEmptyPatch)
	}

	r := Default(kind)
	if rel != nil {
		if !rel.Valid() {
			return nil, fmt.Errorf("%s: invalid region %v: %w", kind, rel.Array(), card.ErrEmptyPatch)
		}
		r = *rel
	}

	abs := r.ToAbs(b.Dx(), b.Dy())
	if abs.Empty() {
		return nil, fmt.Errorf("%s: %w", kind, card.ErrEmptyPatch)
	}

	src := abs.Image(b.Min)
	out := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Draw(out, out.Bounds(), img, src.Min, draw.Src)
	return out, nil
}

// Crop copies an absolute rectangle out of img, clamped to its bounds.
func Crop(img image.Image, r image.Rectangle) (*image.RGBA, error) {
	if img == nil {
		return nil, card.ErrEmptyPatch
	}
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, card.ErrEmptyPatch
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out, nil
}
