// Package testcards renders synthetic card faces with a known label. The
// renderings feed the recognizer tests and the demo template bank written by
// templatesnap.
package testcards

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"pokervision/internal/card"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Card face size in pixels.
const (
	Width  = 120
	Height = 170
)

var (
	paper  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	edge   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	ink    = color.RGBA{R: 10, G: 10, B: 10, A: 255}
	redInk = color.RGBA{R: 200, G: 0, B: 0, A: 255}
	felt   = color.RGBA{R: 20, G: 90, B: 40, A: 255}
)

var (
	faceOnce sync.Once
	rankFace font.Face
	faceErr  error
)

func face() (font.Face, error) {
	faceOnce.Do(func() {
		f, err := opentype.Parse(gobold.TTF)
		if err != nil {
			faceErr = fmt.Errorf("failed to parse font: %w", err)
			return
		}
		rankFace, faceErr = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    44,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return rankFace, faceErr
}

// RankText is the printed form of a rank symbol ("10" for T).
func RankText(rank string) string {
	if rank == "T" {
		return "10"
	}
	return rank
}

// Render draws a card face for label: rank glyph in the upper-left area and
// a suit pip in the upper-right area, matching the default rank/suit regions.
func Render(label card.Label) (*image.RGBA, error) {
	if !label.Valid() {
		return nil, fmt.Errorf("invalid card %q", string(label))
	}
	fc, err := face()
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(edge), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(2, 2, Width-2, Height-2), image.NewUniform(paper), image.Point{}, draw.Src)

	col := ink
	if card.IsRed(label.Suit()) {
		col = redInk
	}

	// Rank region is roughly x 2..64, y 3..98.
	text := RankText(label.Rank())
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: fc}
	adv := d.MeasureString(text).Round()
	capH := fc.Metrics().CapHeight.Round()
	x := 2 + (62-adv)/2
	y := 3 + 95/2 + capH/2
	d.Dot = fixed.P(x, y)
	d.DrawString(text)

	// Suit region is roughly x 67..113, y 10..85.
	drawPip(img, label.Suit(), 90, 47, col)
	return img, nil
}

// Felt returns a uniform table-felt patch.
func Felt(w, h int) *image.RGBA {
	return Solid(w, h, felt)
}

// Solid returns a uniform patch of color c.
func Solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// OnFelt places a card face inside a felt frame with the given margin and
// returns the frame together with the card rectangle.
func OnFelt(face *image.RGBA, margin int) (*image.RGBA, image.Rectangle) {
	b := face.Bounds()
	frame := Felt(b.Dx()+2*margin, b.Dy()+2*margin)
	r := image.Rect(margin, margin, margin+b.Dx(), margin+b.Dy())
	draw.Draw(frame, r, face, b.Min, draw.Src)
	return frame, r
}

func drawPip(img *image.RGBA, suit string, cx, cy int, c color.RGBA) {
	inside := pipShape(suit)
	for dy := -22; dy <= 22; dy++ {
		for dx := -22; dx <= 22; dx++ {
			if inside(float64(dx), float64(dy)) {
				img.SetRGBA(cx+dx, cy+dy, c)
			}
		}
	}
}

func inCircle(x, y, cx, cy, r float64) bool {
	return (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r
}

// heart is a point-down heart spanning y -13..15.
func heart(x, y float64) bool {
	if inCircle(x, y, -7, -5, 8) || inCircle(x, y, 7, -5, 8) {
		return true
	}
	if y < -5 || y > 15 {
		return false
	}
	return math.Abs(x) <= 15*(1-(y+5)/20)
}

func pipShape(suit string) func(x, y float64) bool {
	switch suit {
	case "h":
		return heart
	case "d":
		return func(x, y float64) bool {
			return math.Abs(x)/14+math.Abs(y)/19 <= 1
		}
	case "s":
		return func(x, y float64) bool {
			if heart(x, -y+2) {
				return true
			}
			// stem with a flared foot
			if y >= 4 && y <= 18 && math.Abs(x) <= 2.5+(y-4)*0.45 {
				return true
			}
			return false
		}
	default:
		return func(x, y float64) bool {
			if inCircle(x, y, 0, -9, 7.5) || inCircle(x, y, -8.5, 3, 7.5) || inCircle(x, y, 8.5, 3, 7.5) {
				return true
			}
			if y >= -2 && y <= 18 && math.Abs(x) <= 2.5+math.Max(0, y-8)*0.6 {
				return true
			}
			return false
		}
	}
}
