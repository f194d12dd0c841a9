package frame

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"pokervision/internal/card"
	"pokervision/internal/config"
	"pokervision/internal/reader"
	"pokervision/internal/testcards"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func write(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	switch filepath.Ext(name) {
	case ".tif":
		require.NoError(t, tiff.Encode(f, img, nil))
	default:
		require.NoError(t, png.Encode(f, img))
	}
	return path
}

func TestLoadAndList(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.png", testcards.Felt(30, 20))
	write(t, dir, "a.tif", testcards.Felt(30, 20))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	paths, err := List(dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "a.tif", filepath.Base(paths[0]))

	f, err := Load(paths[0])
	require.NoError(t, err)
	assert.Equal(t, 30, f.Width())
	assert.Equal(t, 20, f.Height())
	assert.InDelta(t, 72, f.DPI, 1e-6)

	f, err = Load(paths[1])
	require.NoError(t, err)
	assert.Zero(t, f.DPI)

	single, err := List(paths[1])
	require.NoError(t, err)
	assert.Equal(t, []string{paths[1]}, single)

	_, err = Load(filepath.Join(dir, "notes.txt"))
	assert.Error(t, err)
}

func TestTableCrop(t *testing.T) {
	screen := testcards.Solid(200, 100, color.RGBA{A: 255})
	f := &Frame{Image: screen}

	table, err := f.Table(config.TableROI{Left: 10, Top: 20, Width: 50, Height: 40}, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 40), table.Bounds())

	// Out of bounds or already table-sized: unchanged.
	same, err := f.Table(config.TableROI{Left: 190, Top: 0, Width: 50, Height: 40}, 0)
	require.NoError(t, err)
	assert.Equal(t, screen.Bounds(), same.Bounds())
	same, err = f.Table(config.TableROI{Width: 200, Height: 100}, 0)
	require.NoError(t, err)
	assert.Equal(t, screen.Bounds(), same.Bounds())

	_, err = (&Frame{}).Table(config.TableROI{}, 0)
	assert.Error(t, err)
}

func TestTableScalesWithDPI(t *testing.T) {
	roi := config.TableROI{Left: 10, Top: 5, Width: 50, Height: 40}
	screen := testcards.Solid(200, 100, color.RGBA{A: 255})

	tests := []struct {
		name     string
		dpi      float64
		dpiScale float64
		want     image.Rectangle
	}{
		{"auto from tiff resolution", 144, 0, image.Rect(0, 0, 100, 80)},
		{"explicit scale wins over resolution", 144, 1, image.Rect(0, 0, 50, 40)},
		{"explicit scale without resolution", 0, 2, image.Rect(0, 0, 100, 80)},
		{"no scale information", 0, 0, image.Rect(0, 0, 50, 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Frame{Image: screen, DPI: tt.dpi}
			table, err := f.Table(roi, tt.dpiScale)
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Bounds())
		})
	}

	// A 2x capture of a table-sized frame is passed through.
	f := &Frame{Image: testcards.Solid(100, 80, color.RGBA{A: 255}), DPI: 144}
	same, err := f.Table(roi, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 80), same.Bounds())

	assert.InDelta(t, 2.0, (&Frame{DPI: 144}).Scale(0), 1e-9)
	assert.InDelta(t, 1.25, (&Frame{DPI: 144}).Scale(1.25), 1e-9)
	assert.InDelta(t, 1.0, (&Frame{}).Scale(0), 1e-9)
}

func TestAnnotate(t *testing.T) {
	p := config.Default()
	table := testcards.Felt(400, 200)
	state := reader.TableState{Readings: []reader.Reading{
		{Slot: config.HeroLeft, Label: "Ah", Diagnostics: card.Diagnostics{"present": true}},
		{Slot: config.HeroRight, Diagnostics: card.Diagnostics{"present": true}},
	}}

	out := Annotate(table, p, state)
	assert.Equal(t, table.Bounds(), out.Bounds())

	r := p.Slots[config.HeroLeft]
	rel, err := r.CardRect()
	require.NoError(t, err)
	abs := rel.ToAbs(400, 200)
	assert.Equal(t, ColorAccepted, out.RGBAAt(abs.X, abs.Y+abs.Height/2))

	rel, _ = p.Slots[config.HeroRight].CardRect()
	abs = rel.ToAbs(400, 200)
	assert.Equal(t, ColorRejected, out.RGBAAt(abs.X, abs.Y+abs.Height/2))

	rel, _ = p.Slots[config.BoardSlot(1)].CardRect()
	abs = rel.ToAbs(400, 200)
	assert.Equal(t, ColorAbsent, out.RGBAAt(abs.X, abs.Y+abs.Height/2))

	// The source is untouched.
	assert.Equal(t, table.RGBAAt(0, 199), out.RGBAAt(0, 199))
}
