package imgproc

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Binarization method.
type Method int

const (
	// Otsu picks a global threshold from the histogram.
	Otsu Method = iota
	// Adaptive thresholds against a Gaussian-weighted 31x31 neighbourhood.
	Adaptive
)

func (m Method) String() string {
	if m == Adaptive {
		return "adaptive"
	}
	return "otsu"
}

// Binarize turns a BGR (or gray) patch into a binary image of targetH rows
// with dark glyphs on a white background. Light-on-dark patches are inverted
// so both polarities come out the same way.
func Binarize(src gocv.Mat, targetH int, method Method) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}

	gray := Gray(src)
	defer gray.Close()
	darkBackground := gray.Mean().Val1 < 127

	clahe := gocv.NewCLAHEWithParams(3.0, image.Point{8, 8})
	defer clahe.Close()
	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe.Apply(gray, &enhanced)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(enhanced, &blurred, image.Point{3, 3}, 0, 0, gocv.BorderDefault)

	binary := gocv.NewMat()
	defer binary.Close()
	switch method {
	case Adaptive:
		gocv.AdaptiveThreshold(blurred, &binary, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, 31, 5)
	default:
		gocv.Threshold(blurred, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	}
	if darkBackground {
		gocv.BitwiseNot(binary, &binary)
	}

	return ResizeToHeight(binary, targetH, gocv.InterpolationCubic), nil
}

// Foreground returns a mask where glyph pixels are non-zero, suitable for
// contour extraction. bin must come from Binarize.
func Foreground(bin gocv.Mat) gocv.Mat {
	fg := gocv.NewMat()
	gocv.Threshold(bin, &fg, 127, 255, gocv.ThresholdBinaryInv)
	return fg
}

// Erode applies one pass of a size x size rectangular erosion.
func Erode(src gocv.Mat, size int) gocv.Mat {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{size, size})
	defer kernel.Close()
	dst := gocv.NewMat()
	gocv.Erode(src, &dst, kernel)
	return dst
}

// Pad adds a uniform border of the given gray level around a binary image.
func Pad(src gocv.Mat, border int, level uint8) gocv.Mat {
	dst := gocv.NewMat()
	gocv.CopyMakeBorder(src, &dst, border, border, border, border, gocv.BorderConstant,
		colorRGBA(level))
	return dst
}
