// Package presence decides whether a card slot currently shows a card face.
package presence

import (
	"image"
	"math"

	"pokervision/internal/card"
	"pokervision/internal/imgproc"
	"pokervision/pkg/colorutil"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

// Params holds the presence detection thresholds.
type Params struct {
	CannyLow, CannyHigh float32

	EdgeRef float64

	WhiteValMin float64
	WhiteSatMax float64

	WeightEdge    float64
	WeightWhite   float64
	WeightContour float64

	MinEdge  float64 // edge density floor
	MinWhite float64 // near-white ratio floor
	MinScore float64 // min_card_score
}

// Presence is the outcome of a presence check.
type Presence struct {
	Score       float64 `json:"score"`
	Present     bool    `json:"present"`
	EdgeDensity float64 `json:"edge_density"`
	WhiteRatio  float64 `json:"white_ratio"`
	ContourFrac float64 `json:"contour_frac"`
}

// Detector scores card presence. Hero and board slots use separate params.
type Detector struct {
	Hero  Params
	Board Params
}

// NewDetector creates a detector with the default hero and board params.
func NewDetector() *Detector {
	return &Detector{Hero: DefaultParams(), Board: BoardParams()}
}

// Detect scores img and decides presence with the hero or board params.
// Empty input and recovered OpenCV failures report Present=false.
func (d *Detector) Detect(img image.Image, board bool) (p Presence) {
	params := d.Hero
	if board {
		params = d.Board
	}
	defer func() {
		if r := recover(); r != nil {
			p = Presence{}
		}
	}()

	mat, err := imgproc.FromImage(img)
	if err != nil {
		mat.Close()
		return Presence{}
	}
	defer mat.Close()
	return Measure(mat, params)
}

// Measure computes the presence metrics of a BGR Mat.
func Measure(mat gocv.Mat, params Params) Presence {
	if mat.Empty() {
		return Presence{}
	}
	p := Presence{}
	p.EdgeDensity = imgproc.EdgeDensity(mat, params.CannyLow, params.CannyHigh)

	white := imgproc.HSVMask(mat, colorutil.HSVRange{
		HMin: 0, SMin: 0, VMin: params.WhiteValMin,
		HMax: 180, SMax: params.WhiteSatMax, VMax: 255,
	})
	defer white.Close()
	p.WhiteRatio = imgproc.Ratio(white)
	p.ContourFrac = imgproc.LargestContourFraction(white)

	edgeTerm := 0.0
	if params.EdgeRef > 0 {
		edgeTerm = math.Min(1, p.EdgeDensity/params.EdgeRef)
	}
	p.Score = card.ClampConfidence(floats.Dot(
		[]float64{params.WeightEdge, params.WeightWhite, params.WeightContour},
		[]float64{edgeTerm, p.WhiteRatio, p.ContourFrac},
	))

	p.Present = p.EdgeDensity >= params.MinEdge &&
		p.WhiteRatio >= params.MinWhite &&
		p.Score >= params.MinScore
	return p
}

// Diagnostics returns the presence metrics as diagnostic entries.
func (p Presence) Diagnostics() card.Diagnostics {
	return card.Diagnostics{
		"present":      p.Present,
		"score":        p.Score,
		"edge_density": p.EdgeDensity,
		"white_ratio":  p.WhiteRatio,
		"contour_frac": p.ContourFrac,
	}
}
