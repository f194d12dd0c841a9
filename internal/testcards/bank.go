package testcards

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"pokervision/internal/card"
	"pokervision/internal/region"
)

// All returns the 52 labels in rank-major order.
func All() []card.Label {
	out := make([]card.Label, 0, 52)
	for _, r := range card.RankAlphabet {
		for _, s := range card.SuitAlphabet {
			out = append(out, card.Label(string(r)+string(s)))
		}
	}
	return out
}

// WriteBank renders rank and suit templates into the asset layout
// (<ranks>/<R>_<color>.png, <suits>/<s>_1.png). Rank templates are cut from
// both a black and a red card so either ink color matches exactly.
func WriteBank(ranksDir, suitsDir string) error {
	for _, dir := range []string{ranksDir, suitsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	for _, r := range card.RankAlphabet {
		for _, variant := range []struct{ suit, name string }{{"s", "black"}, {"h", "red"}} {
			face, err := Render(card.Label(string(r) + variant.suit))
			if err != nil {
				return err
			}
			patch, err := region.Extract(face, nil, region.Rank)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("%c_%s.png", r, variant.name)
			if err := writePNG(filepath.Join(ranksDir, name), patch); err != nil {
				return err
			}
		}
	}

	for _, s := range card.SuitAlphabet {
		face, err := Render(card.Label("A" + string(s)))
		if err != nil {
			return err
		}
		patch, err := region.Extract(face, nil, region.Suit)
		if err != nil {
			return err
		}
		if err := writePNG(filepath.Join(suitsDir, string(s)+"_1.png"), patch); err != nil {
			return err
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
