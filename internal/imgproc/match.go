package imgproc

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// MatchScore returns the best TM_CCOEFF_NORMED score of tpl inside query, or
// -1 when the template does not fit.
func MatchScore(query, tpl gocv.Mat) float64 {
	if tpl.Empty() || query.Empty() || tpl.Rows() > query.Rows() || tpl.Cols() > query.Cols() {
		return -1
	}
	res := gocv.NewMat()
	defer res.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(query, tpl, &res, gocv.TmCcoeffNormed, mask)
	_, maxVal, _, _ := gocv.MinMaxLoc(res)
	v := float64(maxVal)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return -1
	}
	return v
}

// MatchScaled resizes tpl to each fraction of the query height and matches it
// against the query and its inverse. The best score is returned, floored at 0.
func MatchScaled(query, tpl gocv.Mat, scales []float64) float64 {
	if query.Empty() || tpl.Empty() {
		return 0
	}
	inverted := Invert(query)
	defer inverted.Close()

	best := 0.0
	for _, s := range scales {
		th := max(6, int(float64(query.Rows())*s))
		ratio := float64(th) / float64(max(1, tpl.Rows()))
		tw := max(3, int(float64(tpl.Cols())*ratio))

		scaled := gocv.NewMat()
		gocv.Resize(tpl, &scaled, image.Point{X: tw, Y: th}, 0, 0, gocv.InterpolationArea)
		best = math.Max(best, MatchScore(query, scaled))
		best = math.Max(best, MatchScore(inverted, scaled))
		scaled.Close()
	}
	return math.Min(1, best)
}
