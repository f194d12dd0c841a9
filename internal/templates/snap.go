package templates

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"pokervision/internal/card"
	"pokervision/internal/region"
	"pokervision/pkg/geometry"
)

// Snap cuts the rank and suit corners of a labeled card patch into the
// asset layout (<ranks>/<R>/NNN.png, <suits>/<s>/NNN.png) and returns the
// written paths. Existing templates are never overwritten.
func Snap(img image.Image, label card.Label, rankRel, suitRel *geometry.RelRect, ranksDir, suitsDir string) ([]string, error) {
	if !label.Valid() {
		return nil, fmt.Errorf("invalid card %q", string(label))
	}

	rankPatch, err := region.Extract(img, rankRel, region.Rank)
	if err != nil {
		return nil, err
	}
	suitPatch, err := region.Extract(img, suitRel, region.Suit)
	if err != nil {
		return nil, err
	}

	rankPath, err := writeNext(filepath.Join(ranksDir, label.Rank()), rankPatch)
	if err != nil {
		return nil, err
	}
	suitPath, err := writeNext(filepath.Join(suitsDir, label.Suit()), suitPatch)
	if err != nil {
		return []string{rankPath}, err
	}
	return []string{rankPath, suitPath}, nil
}

// writeNext writes img as the next free NNN.png in dir.
func writeNext(dir string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for i := 1; i < 1000; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%03d.png", i))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create template: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to encode template: %w", err)
		}
		return path, f.Close()
	}
	return "", fmt.Errorf("too many templates in %s", dir)
}
