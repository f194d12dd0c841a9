package imgproc

import (
	"errors"
	"image/color"
	"math"

	"pokervision/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrNoContour is returned when a mask holds no contour above the minimum area.
var ErrNoContour = errors.New("no contour")

// HuSize is the number of Hu invariants.
const HuSize = 7

// Shape describes the largest glyph contour of a binary patch.
type Shape struct {
	Area     float64
	Hu       [HuSize]float64
	Solidity float64 // contour area / convex hull area
	Aspect   float64 // min/max side of the minimum-area rectangle, (0,1]
	Angle    float64 // minimum-area rectangle angle folded into [0,90)
}

// LogHu returns the Hu vector on a log scale: -sign(h)*log10(|h|+1e-12).
func (s Shape) LogHu() []float64 {
	return LogHu(s.Hu)
}

// LogHu maps raw Hu invariants onto a log scale so that all seven components
// have comparable magnitude.
func LogHu(hu [HuSize]float64) []float64 {
	out := make([]float64, HuSize)
	for i, h := range hu {
		sign := 0.0
		if h > 0 {
			sign = 1
		} else if h < 0 {
			sign = -1
		}
		out[i] = -sign * math.Log10(math.Abs(h)+1e-12)
	}
	return out
}

// ExtractShape finds the largest external contour of a foreground mask
// (glyph pixels non-zero) and measures it.
func ExtractShape(fg gocv.Mat, minArea float64) (Shape, error) {
	contours := gocv.FindContours(fg, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best, bestArea := -1, 0.0
	for i := 0; i < contours.Size(); i++ {
		a := gocv.ContourArea(contours.At(i))
		if a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 || bestArea < minArea {
		return Shape{}, ErrNoContour
	}

	c := contours.At(best)
	shape := Shape{Area: bestArea}

	rect := gocv.MinAreaRect(c)
	shape.Aspect = aspect(float64(rect.Width), float64(rect.Height))
	shape.Angle = math.Mod(math.Abs(rect.Angle), 90)

	hull := geometry.ConvexHull(geometry.FromImagePoints(c.ToPoints()))
	if hullArea := geometry.PolygonArea(hull); hullArea > 0 {
		shape.Solidity = math.Min(1, bestArea/hullArea)
	}

	mask := Blank(fg.Rows(), fg.Cols())
	defer mask.Close()
	gocv.DrawContours(&mask, contours, best, color.RGBA{255, 255, 255, 255}, -1)
	shape.Hu = HuMoments(gocv.Moments(mask, true))

	return shape, nil
}

// LargestAspect returns the min/max side ratio of the minimum-area rectangle
// around the largest contour, or 0 when there is none.
func LargestAspect(fg gocv.Mat) float64 {
	s, err := ExtractShape(fg, 1)
	if err != nil {
		return 0
	}
	return s.Aspect
}

// HuMoments computes the seven Hu invariants from normalized central moments
// as returned by gocv.Moments (keys nu20..nu03).
func HuMoments(m map[string]float64) [HuSize]float64 {
	n20, n11, n02 := m["nu20"], m["nu11"], m["nu02"]
	n30, n21, n12, n03 := m["nu30"], m["nu21"], m["nu12"], m["nu03"]

	t0 := n30 + n12
	t1 := n21 + n03
	q0 := t0 * t0
	q1 := t1 * t1

	var hu [HuSize]float64
	hu[0] = n20 + n02
	hu[1] = (n20-n02)*(n20-n02) + 4*n11*n11
	hu[2] = (n30-3*n12)*(n30-3*n12) + (3*n21-n03)*(3*n21-n03)
	hu[3] = q0 + q1
	hu[4] = (n30-3*n12)*t0*(q0-3*q1) + (3*n21-n03)*t1*(3*q0-q1)
	hu[5] = (n20-n02)*(q0-q1) + 4*n11*t0*t1
	hu[6] = (3*n21-n03)*t0*(q0-3*q1) - (n30-3*n12)*t1*(3*q0-q1)
	return hu
}

func aspect(w, h float64) float64 {
	if w < 1 || h < 1 {
		return 0
	}
	return math.Min(w, h) / math.Max(w, h)
}

func colorRGBA(level uint8) color.RGBA {
	return color.RGBA{R: level, G: level, B: level, A: 255}
}
