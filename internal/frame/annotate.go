package frame

import (
	"image"
	"image/color"
	"image/draw"

	"pokervision/internal/config"
	"pokervision/internal/reader"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Slot overlay colors.
var (
	ColorAccepted = color.RGBA{0x2E, 0xCC, 0x40, 0xFF} // labeled
	ColorRejected = color.RGBA{0xFF, 0xB0, 0x00, 0xFF} // present, abstained
	ColorAbsent   = color.RGBA{0x80, 0x80, 0x80, 0xFF}
)

// SlotColor returns the overlay color for a reading.
func SlotColor(r reader.Reading) color.RGBA {
	switch {
	case r.Label != "":
		return ColorAccepted
	case r.Present():
		return ColorRejected
	default:
		return ColorAbsent
	}
}

// Annotate returns a copy of the table image with every profile slot
// outlined, tinted by its reading and captioned with the accepted label.
func Annotate(table image.Image, p config.Profile, state reader.TableState) *image.RGBA {
	b := table.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), table, b.Min, draw.Src)

	byName := make(map[string]reader.Reading, len(state.Readings))
	for _, r := range state.Readings {
		byName[r.Slot] = r
	}

	for _, name := range p.SlotNames() {
		rel, err := p.Slots[name].CardRect()
		if err != nil {
			continue
		}
		r := rel.ToAbs(b.Dx(), b.Dy()).Image(image.Point{})
		reading := byName[name]
		c := SlotColor(reading)

		tint(out, r, c, 0.15)
		outline(out, r, c, 2)
		caption := name
		if reading.Label != "" {
			caption = reading.Label.String()
		}
		label(out, r.Min.X+2, r.Min.Y-3, caption, c)
	}
	return out
}

// tint alpha-blends c over r.
func tint(dst *image.RGBA, r image.Rectangle, c color.RGBA, opacity float64) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			d := dst.RGBAAt(x, y)
			dst.SetRGBA(x, y, color.RGBA{
				R: mix(d.R, c.R, opacity),
				G: mix(d.G, c.G, opacity),
				B: mix(d.B, c.B, opacity),
				A: 255,
			})
		}
	}
}

func mix(dst, src uint8, alpha float64) uint8 {
	v := float64(src)*alpha + float64(dst)*(1-alpha)
	return uint8(clamp(v, 0, 255))
}

func outline(dst *image.RGBA, r image.Rectangle, c color.RGBA, width int) {
	u := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), u, image.Point{}, draw.Src)
	}
}

func label(dst *image.RGBA, x, y int, text string, c color.RGBA) {
	if y < 12 {
		y = 12
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
