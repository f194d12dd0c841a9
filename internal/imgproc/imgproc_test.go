package imgproc

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// bar draws a filled rectangle r of ink on a background.
func bar(w, h int, r image.Rectangle, ink, bg color.RGBA) *image.RGBA {
	img := solid(w, h, bg)
	draw.Draw(img, r, image.NewUniform(ink), image.Point{}, draw.Src)
	return img
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{220, 0, 0, 255}
)

func mat(t *testing.T, img image.Image) gocv.Mat {
	t.Helper()
	m, err := FromImage(img)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestFromImageBGR(t *testing.T) {
	m := mat(t, solid(4, 3, color.RGBA{10, 20, 30, 255}))
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 4, m.Cols())
	assert.Equal(t, uint8(30), m.GetUCharAt(0, 0))
	assert.Equal(t, uint8(20), m.GetUCharAt(0, 1))
	assert.Equal(t, uint8(10), m.GetUCharAt(0, 2))

	// Sub-images keep their own origin.
	src := bar(10, 10, image.Rect(5, 5, 10, 10), red, white)
	sub := src.SubImage(image.Rect(5, 5, 10, 10))
	m = mat(t, sub)
	assert.Equal(t, uint8(220), m.GetUCharAt(0, 2))

	_, err := FromImage(nil)
	assert.Error(t, err)
	_, err = FromImage(image.NewRGBA(image.Rect(0, 0, 0, 5)))
	assert.Error(t, err)
}

func TestBinarizePolarity(t *testing.T) {
	r := image.Rect(20, 10, 40, 50)
	for _, img := range []image.Image{bar(60, 60, r, black, white), bar(60, 60, r, white, black)} {
		bin, err := Binarize(mat(t, img), 120, Otsu)
		require.NoError(t, err)
		assert.Equal(t, 120, bin.Rows())

		// Glyph dark, background white, whatever the input polarity.
		assert.Equal(t, uint8(0), bin.GetUCharAt(60, 60))
		assert.Equal(t, uint8(255), bin.GetUCharAt(5, 5))

		fg := Foreground(bin)
		assert.InDelta(t, 800.0/3600.0, Ratio(fg), 0.05)
		fg.Close()
		bin.Close()
	}

	_, err := Binarize(gocv.NewMat(), 100, Adaptive)
	assert.Error(t, err)
	assert.Equal(t, "adaptive", Adaptive.String())
}

func TestExtractShape(t *testing.T) {
	fg := Blank(100, 100)
	defer fg.Close()
	gocv.Rectangle(&fg, image.Rect(20, 10, 40, 90), color.RGBA{255, 255, 255, 255}, -1)

	s, err := ExtractShape(fg, 10)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, s.Aspect, 0.03)
	assert.InDelta(t, 1.0, s.Solidity, 0.05)
	assert.Greater(t, s.Area, 1000.0)
	assert.Len(t, s.LogHu(), HuSize)

	empty := Blank(50, 50)
	defer empty.Close()
	_, err = ExtractShape(empty, 1)
	assert.ErrorIs(t, err, ErrNoContour)
	assert.Zero(t, LargestAspect(empty))
}

func TestLogHuSign(t *testing.T) {
	out := LogHu([HuSize]float64{1e-3, -1e-3, 0})
	assert.InDelta(t, 3, out[0], 1e-6)
	assert.InDelta(t, -3, out[1], 1e-6)
	assert.False(t, math.IsNaN(out[2]))
}

func TestMatchScore(t *testing.T) {
	q := mat(t, bar(60, 60, image.Rect(20, 10, 40, 50), black, white))
	g := Gray(q)
	defer g.Close()

	assert.InDelta(t, 1.0, MatchScore(g, g), 1e-3)
	assert.InDelta(t, 1.0, MatchScaled(g, g, []float64{1.0}), 1e-3)

	big := gocv.NewMatWithSize(80, 80, gocv.MatTypeCV8U)
	defer big.Close()
	assert.Equal(t, -1.0, MatchScore(g, big))
	assert.Zero(t, MatchScaled(gocv.NewMat(), g, []float64{1.0}))
}

func TestColorMeasures(t *testing.T) {
	redPatch := mat(t, bar(40, 40, image.Rect(10, 10, 30, 30), red, white))
	blackPatch := mat(t, bar(40, 40, image.Rect(10, 10, 30, 30), black, white))

	assert.InDelta(t, 0.25, RedRatio(redPatch), 0.02)
	assert.Zero(t, RedRatio(blackPatch))
	assert.Greater(t, EdgeDensity(blackPatch, 50, 150), 0.0)

	plain := mat(t, solid(40, 40, white))
	assert.Zero(t, EdgeDensity(plain, 50, 150))

	mask := Blank(40, 40)
	defer mask.Close()
	gocv.Rectangle(&mask, image.Rect(0, 0, 20, 40), color.RGBA{255, 255, 255, 255}, -1)
	assert.InDelta(t, 0.5, LargestContourFraction(mask), 0.05)
}

func TestPadAndErode(t *testing.T) {
	src := gocv.NewMatWithSizeWithScalar(10, 10, gocv.MatTypeCV8U, gocv.NewScalar(255, 0, 0, 0))
	defer src.Close()

	padded := Pad(src, 4, 0)
	defer padded.Close()
	assert.Equal(t, 18, padded.Rows())
	assert.Equal(t, uint8(0), padded.GetUCharAt(0, 0))
	assert.Equal(t, uint8(255), padded.GetUCharAt(9, 9))

	eroded := Erode(padded, 3)
	defer eroded.Close()
	assert.Less(t, Ratio(eroded), Ratio(padded))
}
