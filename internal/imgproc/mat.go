// Package imgproc holds the OpenCV preprocessing shared by the presence
// detector, the rank and suit recognizers and the template banks.
package imgproc

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// FromImage converts a Go image into a BGR Mat.
// The caller must Close the returned Mat.
func FromImage(src image.Image) (gocv.Mat, error) {
	if src == nil {
		return gocv.NewMat(), fmt.Errorf("nil image")
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)

	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[(y+bounds.Min.Y-rgba.Rect.Min.Y)*rgba.Stride:]
			for x := 0; x < w; x++ {
				i := (x + bounds.Min.X - rgba.Rect.Min.X) * 4
				mat.SetUCharAt(y, x*3+0, row[i+2])
				mat.SetUCharAt(y, x*3+1, row[i+1])
				mat.SetUCharAt(y, x*3+2, row[i+0])
			}
		}
		return mat, nil
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// 16-bit to 8-bit, BGR order for OpenCV
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}

// Gray converts a BGR Mat to single-channel grayscale. Single-channel input
// is cloned.
func Gray(src gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if src.Channels() == 1 {
		src.CopyTo(&gray)
		return gray
	}
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return gray
}

// ResizeToHeight scales src so that it is targetH rows tall, keeping the
// aspect ratio.
func ResizeToHeight(src gocv.Mat, targetH int, interp gocv.InterpolationFlags) gocv.Mat {
	h, w := src.Rows(), src.Cols()
	scale := float64(targetH) / float64(max(1, h))
	nw := max(1, int(float64(w)*scale))
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Point{X: nw, Y: targetH}, 0, 0, interp)
	return dst
}

// Blank returns a zero-filled single-channel Mat.
func Blank(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeWithScalar(rows, cols, gocv.MatTypeCV8U, gocv.NewScalar(0, 0, 0, 0))
}

// Invert returns the bitwise complement of a binary image.
func Invert(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.BitwiseNot(src, &dst)
	return dst
}

// Ratio returns the share of non-zero pixels in a single-channel mask.
func Ratio(mask gocv.Mat) float64 {
	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}
