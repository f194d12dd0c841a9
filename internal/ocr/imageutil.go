package ocr

import (
	"image/color"

	"gocv.io/x/gocv"
)

var blackInk = color.RGBA{A: 255}

// BorderLevel samples the border pixels of a single-channel image and
// returns their average. Useful for padding without introducing an edge.
func BorderLevel(gray gocv.Mat) uint8 {
	rows, cols := gray.Rows(), gray.Cols()
	if rows == 0 || cols == 0 {
		return 255
	}
	var sum, count uint64

	for x := 0; x < cols; x++ {
		sum += uint64(gray.GetUCharAt(0, x))
		sum += uint64(gray.GetUCharAt(rows-1, x))
		count += 2
	}
	for y := 0; y < rows; y++ {
		sum += uint64(gray.GetUCharAt(y, 0))
		sum += uint64(gray.GetUCharAt(y, cols-1))
		count += 2
	}
	return uint8(sum / count)
}

// PadForOCR surrounds a binarized glyph with a border matching its
// background. Tesseract drops glyphs that touch the image edge.
func PadForOCR(bin gocv.Mat) gocv.Mat {
	border := max(8, bin.Rows()/5)
	level := BorderLevel(bin)
	dst := gocv.NewMat()
	gocv.CopyMakeBorder(bin, &dst, border, border, border, border, gocv.BorderConstant,
		color.RGBA{R: level, G: level, B: level, A: 255})
	return dst
}
