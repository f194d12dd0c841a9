// Command templatesnap builds the rank and suit template banks, either from
// a table screenshot whose visible cards are named on the command line or
// from synthetic renderings.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pokervision/internal/card"
	"pokervision/internal/config"
	"pokervision/internal/frame"
	"pokervision/internal/region"
	"pokervision/internal/templates"
	"pokervision/internal/testcards"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	imagePath := flag.String("image", "", "Table screenshot")
	profilePath := flag.String("profile", "", "Room profile YAML")
	labels := flag.String("labels", "", "Visible cards, e.g. hero_card_left=Ah,board_card_1=Td")
	out := flag.String("out", "", "Template root (default: assets/templates)")
	synthetic := flag.Bool("synthetic", false, "Write the synthetic 52-card bank instead")
	flag.Parse()

	root := *out
	if root == "" {
		root = templates.DefaultRoot()
	}
	ranksDir, suitsDir := filepath.Join(root, "ranks"), filepath.Join(root, "suits")

	if *synthetic {
		if err := testcards.WriteBank(ranksDir, suitsDir); err != nil {
			pterm.Error.Printfln("Failed to write synthetic bank: %v", err)
			os.Exit(1)
		}
		pterm.Success.Printfln("Synthetic templates written to %s", root)
		return
	}

	if *imagePath == "" || *labels == "" {
		fmt.Println("Usage: templatesnap -image table.png -labels slot=Card[,slot=Card...] [-profile room.yaml] [-out dir]")
		fmt.Println("       templatesnap -synthetic [-out dir]")
		os.Exit(1)
	}

	assignments, err := parseLabels(*labels)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	profile := config.Default()
	if *profilePath != "" {
		profile, err = config.Load(*profilePath)
		if err != nil {
			pterm.Warning.Printfln("Profile %s: %v", *profilePath, err)
		}
	}

	f, err := frame.Load(*imagePath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	table, err := f.Table(profile.TableROI, profile.DPIScale)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	b := table.Bounds()

	written := 0
	for slot, label := range assignments {
		s, ok := profile.Slots[slot]
		if !ok {
			pterm.Warning.Printfln("Unknown slot %s", slot)
			continue
		}
		rel, err := s.CardRect()
		if err != nil {
			pterm.Warning.Printfln("%s: %v", slot, err)
			continue
		}
		patch, err := region.Crop(table, rel.ToAbs(b.Dx(), b.Dy()).Image(b.Min))
		if err != nil {
			pterm.Warning.Printfln("%s: %v", slot, err)
			continue
		}
		paths, err := templates.Snap(patch, label, s.RankRect(), s.SuitRect(), ranksDir, suitsDir)
		if err != nil {
			pterm.Warning.Printfln("%s: %v", slot, err)
			continue
		}
		for _, p := range paths {
			pterm.Info.Printfln("%s %s -> %s", slot, label, p)
		}
		written += len(paths)
	}
	pterm.Success.Printfln("Wrote %d templates", written)
}

func parseLabels(s string) (map[string]card.Label, error) {
	out := make(map[string]card.Label)
	for _, part := range strings.Split(s, ",") {
		slot, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("expected slot=card, got %q", part)
		}
		label, err := card.ParseLabel(value)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSpace(slot)] = label
	}
	return out, nil
}
