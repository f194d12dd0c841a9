package imgproc

import (
	"pokervision/pkg/colorutil"

	"gocv.io/x/gocv"
)

// HSVMask returns the pixels of a BGR Mat that fall inside an HSV range.
func HSVMask(bgr gocv.Mat, r colorutil.HSVRange) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(r.HMin, r.SMin, r.VMin, 0),
		gocv.NewScalar(r.HMax, r.SMax, r.VMax, 0),
		&mask)
	return mask
}

// RedRatio returns the share of pixels that look like red suit ink.
func RedRatio(bgr gocv.Mat) float64 {
	if bgr.Empty() {
		return 0
	}
	low := HSVMask(bgr, colorutil.RedLow)
	defer low.Close()
	high := HSVMask(bgr, colorutil.RedHigh)
	defer high.Close()

	both := gocv.NewMat()
	defer both.Close()
	gocv.BitwiseOr(low, high, &both)
	return Ratio(both)
}

// EdgeDensity returns the share of Canny edge pixels.
func EdgeDensity(bgr gocv.Mat, low, high float32) float64 {
	gray := Gray(bgr)
	defer gray.Close()
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, low, high)
	return Ratio(edges)
}

// LargestContourFraction returns the area of the largest external contour of
// a mask relative to the mask area.
func LargestContourFraction(mask gocv.Mat) float64 {
	total := float64(mask.Rows() * mask.Cols())
	if total == 0 {
		return 0
	}
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	largest := 0.0
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); a > largest {
			largest = a
		}
	}
	return min(1, largest/total)
}
