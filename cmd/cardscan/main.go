// Command cardscan reads cards from a single card patch or from table
// screenshots and prints the accepted labels with their diagnostics.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pokervision/internal/config"
	"pokervision/internal/frame"
	"pokervision/internal/ocr"
	"pokervision/internal/rank"
	"pokervision/internal/reader"
	"pokervision/internal/templates"
	"pokervision/internal/version"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	profilePath := flag.String("profile", "", "Room profile YAML (default: $POKERIA_ROOM in assets/rooms)")
	imagePath := flag.String("image", "", "Card patch (with -slot) or table screenshot")
	slot := flag.String("slot", "", "Read -image as a single card for this slot")
	frames := flag.String("frames", "", "Directory of table screenshots to replay in order")
	annotate := flag.String("annotate", "", "Write an annotated table image (last frame) to this path")
	info := flag.Bool("info", false, "Print template bank and profile information and exit")
	strict := flag.Bool("strict", false, "Use hero thresholds for every slot")
	noOCR := flag.Bool("no-ocr", false, "Disable tesseract and read ranks from templates only")
	verbose := flag.Bool("v", false, "Print full diagnostics")
	flag.Parse()

	profile := loadProfile(*profilePath)
	if *strict {
		profile.Strict = true
	}

	ranksDir, suitsDir := profile.TemplateDirs()
	lib := templates.NewLibrary(ranksDir, suitsDir)
	defer lib.Close()

	if *info {
		printInfo(profile, lib)
		return
	}

	var textReader rank.TextReader
	if !*noOCR {
		engine, err := ocr.Shared()
		if err != nil {
			pterm.Warning.Printfln("OCR unavailable, using templates only: %v", err)
		} else {
			defer engine.Close()
			if err := engine.Warmup(); err != nil {
				log.Printf("OCR warmup failed: %v", err)
			}
			textReader = engine
		}
	}

	r, err := reader.New(lib, textReader, profile)
	if err != nil {
		pterm.Error.Printfln("Failed to build reader: %v", err)
		os.Exit(1)
	}

	switch {
	case *imagePath != "" && *slot != "":
		readCard(r, *imagePath, *slot, *verbose)
	case *imagePath != "" || *frames != "":
		src := *frames
		if src == "" {
			src = *imagePath
		}
		readFrames(r, src, *annotate, *verbose)
	default:
		fmt.Println("Usage: cardscan [-profile room.yaml] (-image card.png -slot hero_card_left | -image table.png | -frames dir) [-annotate out.png] [-strict] [-v]")
		fmt.Println("       cardscan -info")
		os.Exit(1)
	}
}

func loadProfile(path string) config.Profile {
	if path == "" {
		if room := os.Getenv("POKERIA_ROOM"); room != "" {
			path = config.RoomPath(room)
		}
	}
	p := config.Default()
	if path != "" {
		var err error
		p, err = config.Load(path)
		if err != nil {
			pterm.Warning.Printfln("Profile %s: %v", path, err)
		}
	}
	return p.ApplyEnv()
}

func readCard(r *reader.Reader, path, slot string, verbose bool) {
	f, err := frame.Load(path)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	res := r.ReadCard(f.Image, slot)
	printReadings([]reader.Reading{res}, verbose)
}

func readFrames(r *reader.Reader, src, annotatePath string, verbose bool) {
	paths, err := frame.List(src)
	if err != nil {
		pterm.Error.Printfln("Failed to list frames: %v", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		pterm.Warning.Printfln("No frames in %s", src)
		return
	}

	profile := r.Profile()
	table := reader.NewTable(r)
	ctx := context.Background()

	for _, path := range paths {
		f, err := frame.Load(path)
		if err != nil {
			pterm.Warning.Printfln("%s: %v", path, err)
			continue
		}
		img, err := f.Table(profile.TableROI, profile.DPIScale)
		if err != nil {
			pterm.Warning.Printfln("%s: %v", path, err)
			continue
		}
		state, err := table.Read(ctx, img)
		if err != nil {
			pterm.Error.Printfln("%s: %v", path, err)
			continue
		}

		pterm.DefaultSection.Println(filepath.Base(path))
		printReadings(state.Readings, verbose)
		pterm.Info.Printfln("stable hero: %s  board: %s",
			strings.Join(dashes(state.StableHero), " "), strings.Join(dashes(state.StableBoard), " "))
		if score, ok := state.Eval7(); ok {
			pterm.Info.Printfln("hand score: %d", score)
		}

		if annotatePath != "" {
			if err := writePNG(annotatePath, frame.Annotate(img, profile, state)); err != nil {
				pterm.Warning.Printfln("Failed to write %s: %v", annotatePath, err)
			}
		}
	}
}

func printReadings(readings []reader.Reading, verbose bool) {
	data := pterm.TableData{{"Slot", "Card", "Present", "Rank", "Rank conf", "Suit", "Suit conf", "Sources", "Reason"}}
	for _, r := range readings {
		d := r.Diagnostics
		rc, _ := d.Float("rank_conf")
		sc, _ := d.Float("suit_conf")
		card := r.Label.String()
		if r.Label != "" {
			card = pterm.LightGreen(card)
		}
		data = append(data, []string{
			r.Slot,
			card,
			fmt.Sprint(r.Present()),
			d.String("rank_code"),
			fmt.Sprintf("%.2f", rc),
			d.String("suit_code"),
			fmt.Sprintf("%.2f", sc),
			d.String("rank_src") + "/" + d.String("suit_src"),
			d.String("reason"),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		log.Printf("Failed to render table: %v", err)
	}

	if verbose {
		for _, r := range readings {
			fmt.Printf("%s: %s\n", r.Slot, r.Diagnostics.Format())
		}
	}
}

func printInfo(p config.Profile, lib *templates.Library) {
	pterm.DefaultHeader.Printfln("cardscan %s", version.String())

	ranksDir, suitsDir := lib.Dirs()
	pterm.Info.Printfln("Room: %s  strict=%v board_tolerant=%v", p.Room, p.Strict, p.BoardTolerant)
	pterm.Info.Printfln("Rank variant: %s (available: %s)", p.RankVariant, strings.Join(rank.Variants(), ", "))
	pterm.Info.Printfln("Suit variant: %s", p.SuitVariant)
	pterm.Info.Printfln("Ranks: %s", ranksDir)
	pterm.Info.Printfln("Suits: %s", suitsDir)

	bank, err := lib.Bank()
	if err != nil {
		pterm.Warning.Println(err)
	}
	if bank != nil {
		data := pterm.TableData{{"Label", "Templates"}}
		data = appendCounts(data, bank.RankCounts())
		data = appendCounts(data, bank.SuitCounts())
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			log.Printf("Failed to render table: %v", err)
		}
	}

	t := p.Thresholds
	pterm.Info.Printfln("Hero floors: rank %.2f suit %.2f score %.2f", t.MinRankConf, t.MinSuitConf, t.MinCardScore)
	pterm.Info.Printfln("Board floors: rank %.2f suit %.2f score %.2f", t.BoardMinRankConf, t.BoardMinSuitConf, t.BoardMinCardScore)
	pterm.Info.Printfln("Slots: %s", strings.Join(p.SlotNames(), ", "))
}

func appendCounts(data pterm.TableData, counts map[string]int) pterm.TableData {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		data = append(data, []string{l, fmt.Sprint(counts[l])})
	}
	return data
}

func dashes(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			v = "--"
		}
		out[i] = v
	}
	return out
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
