package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelRectRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		w := 1000 + rng.Intn(3000)
		h := 1000 + rng.Intn(3000)
		r := RelRect{X: rng.Float64() * 0.5, Y: rng.Float64() * 0.5}
		r.Width = 0.01 + rng.Float64()*0.44
		r.Height = 0.01 + rng.Float64()*0.44

		back := FromAbs(r.ToAbs(w, h), w, h)
		assert.InDelta(t, r.X, back.X, 1e-3)
		assert.InDelta(t, r.Y, back.Y, 1e-3)
		assert.InDelta(t, r.Width, back.Width, 1e-3)
		assert.InDelta(t, r.Height, back.Height, 1e-3)
	}
}

func TestToAbsClamps(t *testing.T) {
	got := RelRect{X: 0.95, Y: 0.95, Width: 0.5, Height: 0.5}.ToAbs(100, 100)
	assert.Equal(t, RectInt{X: 95, Y: 95, Width: 5, Height: 5}, got)

	got = RelRect{X: 1, Y: 1, Width: 0.001, Height: 0.001}.ToAbs(10, 10)
	assert.Equal(t, RectInt{X: 9, Y: 9, Width: 1, Height: 1}, got)

	assert.True(t, RelRect{Width: 1, Height: 1}.ToAbs(0, 10).Empty())
}

func TestRelRectValid(t *testing.T) {
	assert.True(t, NewRelRect([4]float64{0.1, 0.1, 0.5, 0.5}).Valid())
	assert.False(t, NewRelRect([4]float64{0.1, 0.1, 0, 0.5}).Valid())
	assert.False(t, NewRelRect([4]float64{-0.1, 0.1, 0.5, 0.5}).Valid())
	assert.False(t, NewRelRect([4]float64{0.1, 1.2, 0.5, 0.5}).Valid())
}

func TestConvexHullSquare(t *testing.T) {
	pts := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 5}, {2, 7}}
	hull := ConvexHull(pts)
	assert.Len(t, hull, 4)
	assert.InDelta(t, 100.0, PolygonArea(hull), 1e-9)
}

func TestPolygonAreaDegenerate(t *testing.T) {
	assert.Zero(t, PolygonArea([]Point2D{{0, 0}, {1, 1}}))
}
