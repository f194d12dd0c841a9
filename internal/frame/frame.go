// Package frame loads captured table screenshots and crops them to the
// table region of a room profile.
package frame

import (
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pokervision/internal/config"
	"pokervision/internal/region"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Frame is one captured screenshot.
type Frame struct {
	Path  string
	Image image.Image
	DPI   float64 // from TIFF metadata, 0 when unknown
}

// Load decodes a screenshot from disk.
func Load(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	f := &Frame{Path: path, Image: img}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tiff" || ext == ".tif" {
		if _, err := file.Seek(0, io.SeekStart); err == nil {
			if dpi, err := tiffDPI(file); err == nil {
				f.DPI = dpi
			}
		}
	}
	return f, nil
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	if f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	if f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dy()
}

// BaseDPI is the capture resolution profile coordinates are written for.
const BaseDPI = 72.0

// Scale returns the factor applied to profile pixel coordinates. An explicit
// dpiScale wins; otherwise the TIFF resolution relative to BaseDPI is used.
func (f *Frame) Scale(dpiScale float64) float64 {
	if dpiScale > 0 {
		return dpiScale
	}
	if f.DPI > 0 {
		return f.DPI / BaseDPI
	}
	return 1
}

// Table returns the table region of a full-screen capture, with the
// profile's table rectangle scaled by Scale(dpiScale). Frames that are
// already table-sized, or whose bounds do not contain the scaled rectangle,
// are returned unchanged.
func (f *Frame) Table(roi config.TableROI, dpiScale float64) (image.Image, error) {
	if f.Image == nil {
		return nil, fmt.Errorf("frame has no image")
	}
	b := f.Image.Bounds()
	if roi.Width <= 0 || roi.Height <= 0 {
		return f.Image, nil
	}
	k := f.Scale(dpiScale)
	left := int(math.Round(float64(roi.Left) * k))
	top := int(math.Round(float64(roi.Top) * k))
	w := int(math.Round(float64(roi.Width) * k))
	h := int(math.Round(float64(roi.Height) * k))
	if b.Dx() == w && b.Dy() == h {
		return f.Image, nil
	}
	r := image.Rect(left, top, left+w, top+h).Add(b.Min)
	if !r.In(b) {
		return f.Image, nil
	}
	return region.Crop(f.Image, r)
}

// List returns the supported image files of a directory, sorted by name, or
// the path itself when it names a file.
func List(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && IsSupportedFormat(e.Name()) {
			out = append(out, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// SupportedFormats returns the decodable file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the path has a decodable extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// tiffDPI reads the X (or Y) resolution tag of the first IFD.
func tiffDPI(r io.ReadSeeker) (float64, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, err
	}

	var order binary.ByteOrder
	switch string(header[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("not a TIFF file")
	}

	if _, err := r.Seek(int64(order.Uint32(header[4:8])), io.SeekStart); err != nil {
		return 0, err
	}
	var n uint16
	if err := binary.Read(r, order, &n); err != nil {
		return 0, err
	}

	var xRes, yRes float64
	unit := uint16(2) // inches
	entry := make([]byte, 12)
	for i := uint16(0); i < n; i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return 0, err
		}
		tag := order.Uint16(entry[0:2])
		typ := order.Uint16(entry[2:4])
		value := order.Uint32(entry[8:12])
		switch {
		case tag == 282 && typ == 5:
			xRes = rational(r, int64(value), order)
		case tag == 283 && typ == 5:
			yRes = rational(r, int64(value), order)
		case tag == 296 && typ == 3:
			unit = order.Uint16(entry[8:10])
		}
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	if dpi == 0 {
		return 0, fmt.Errorf("no resolution tags found")
	}
	if unit == 3 {
		dpi *= 2.54
	}
	return dpi, nil
}

func rational(r io.ReadSeeker, offset int64, order binary.ByteOrder) float64 {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	defer r.Seek(pos, io.SeekStart)

	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return 0
	}
	var num, den uint32
	if binary.Read(r, order, &num) != nil || binary.Read(r, order, &den) != nil || den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
