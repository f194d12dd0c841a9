// Package templates loads the rank and suit template banks from the asset
// directories and matches patches against them.
package templates

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pokervision/internal/card"
	"pokervision/internal/imgproc"

	"gocv.io/x/gocv"
)

// ErrNoTemplates is returned when neither asset directory yields a template.
var ErrNoTemplates = errors.New("no templates")

// Normalized template geometry. Query patches are prepared the same way.
const (
	RankHeight  = 140
	SuitHeight  = 120
	RankMinArea = 10
	SuitMinArea = 12
)

// Template is one binarized asset image.
type Template struct {
	Label    string
	Path     string
	Bin      gocv.Mat      // dark glyph on white, normalized height
	Shape    imgproc.Shape // valid only when HasShape
	HasShape bool
	LogHu    []float64
}

// Bank holds the loaded templates. It is immutable after loading and safe
// for concurrent read-only use.
type Bank struct {
	RanksDir string
	SuitsDir string
	Ranks    []Template
	Suits    []Template
}

// LoadBank scans both asset directories. Missing directories are not an
// error; an entirely empty bank returns ErrNoTemplates along with the bank.
func LoadBank(ranksDir, suitsDir string) (*Bank, error) {
	b := &Bank{RanksDir: ranksDir, SuitsDir: suitsDir}

	rankFiles, err := scanDir(ranksDir, rankLabel)
	if err != nil {
		return b, err
	}
	for _, f := range rankFiles {
		t, err := loadTemplate(f.label, f.path, RankHeight, RankMinArea)
		if err != nil {
			log.Printf("Skipping rank template %s: %v", f.path, err)
			continue
		}
		b.Ranks = append(b.Ranks, t)
	}

	suitFiles, err := scanDir(suitsDir, suitLabel)
	if err != nil {
		b.Close()
		return &Bank{RanksDir: ranksDir, SuitsDir: suitsDir}, err
	}
	for _, f := range suitFiles {
		t, err := loadTemplate(f.label, f.path, SuitHeight, SuitMinArea)
		if err != nil {
			log.Printf("Skipping suit template %s: %v", f.path, err)
			continue
		}
		b.Suits = append(b.Suits, t)
	}

	if len(b.Ranks) == 0 && len(b.Suits) == 0 {
		return b, ErrNoTemplates
	}
	return b, nil
}

func loadTemplate(label, path string, height int, minArea float64) (Template, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return Template{}, fmt.Errorf("failed to read image")
	}
	return NewTemplate(label, img, height, minArea)
}

// NewTemplate binarizes a BGR image into a template. The Mat is not retained.
func NewTemplate(label string, img gocv.Mat, height int, minArea float64) (Template, error) {
	bin, err := imgproc.Binarize(img, height, imgproc.Otsu)
	if err != nil {
		return Template{}, fmt.Errorf("failed to binarize: %w", err)
	}
	t := Template{Label: label, Bin: bin}

	fg := imgproc.Foreground(bin)
	defer fg.Close()
	if shape, err := imgproc.ExtractShape(fg, minArea); err == nil {
		t.Shape = shape
		t.HasShape = true
		t.LogHu = shape.LogHu()
	}
	return t, nil
}

// Close releases the template Mats.
func (b *Bank) Close() {
	if b == nil {
		return
	}
	for i := range b.Ranks {
		b.Ranks[i].Bin.Close()
	}
	for i := range b.Suits {
		b.Suits[i].Bin.Close()
	}
	b.Ranks, b.Suits = nil, nil
}

// RankCounts returns the number of rank templates per label.
func (b *Bank) RankCounts() map[string]int {
	return counts(b.Ranks)
}

// SuitCounts returns the number of suit templates per label.
func (b *Bank) SuitCounts() map[string]int {
	return counts(b.Suits)
}

// HasRankShapes reports whether any rank template carries a Hu descriptor.
func (b *Bank) HasRankShapes() bool {
	return hasShapes(b.Ranks, nil)
}

// HasSuitShapes reports whether any suit template for the given labels
// carries a Hu descriptor.
func (b *Bank) HasSuitShapes(labels []string) bool {
	return hasShapes(b.Suits, labels)
}

func counts(ts []Template) map[string]int {
	out := map[string]int{}
	for _, t := range ts {
		out[t.Label]++
	}
	return out
}

func hasShapes(ts []Template, labels []string) bool {
	for _, t := range ts {
		if t.HasShape && (labels == nil || contains(labels, t.Label)) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type assetFile struct {
	label string
	path  string
}

// scanDir finds <root>/<label>/*.png and <root>/<label>_*.png files.
func scanDir(root string, labelOf func(string) string) ([]assetFile, error) {
	if root == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read template dir: %w", err)
	}

	var files []assetFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			label := labelOf(name)
			if label == "" {
				continue
			}
			matches, _ := filepath.Glob(filepath.Join(root, name, "*.png"))
			for _, m := range matches {
				files = append(files, assetFile{label: label, path: m})
			}
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".png") {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		prefix, _, found := strings.Cut(stem, "_")
		if !found {
			continue
		}
		if label := labelOf(prefix); label != "" {
			files = append(files, assetFile{label: label, path: filepath.Join(root, name)})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}

func rankLabel(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "10" {
		return "T"
	}
	if card.IsRank(s) {
		return s
	}
	return ""
}

func suitLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "hearts", "heart":
		return "h"
	case "diamonds", "diamond":
		return "d"
	case "spades", "spade":
		return "s"
	case "clubs", "club":
		return "c"
	}
	if card.IsSuit(s) {
		return s
	}
	return ""
}
