// Package config holds the room profile: slot layout, acceptance thresholds
// and recognizer selection, loaded from YAML and overridable by environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pokervision/internal/fusion"
	"pokervision/internal/presence"
	"pokervision/internal/rank"
	"pokervision/internal/stabilizer"
	"pokervision/internal/suit"
	"pokervision/internal/templates"
	"pokervision/pkg/geometry"

	"gopkg.in/yaml.v3"
)

// Slot names used by the default layout.
const (
	HeroLeft  = "hero_card_left"
	HeroRight = "hero_card_right"
)

// BoardSlot returns the name of the i-th (1-based) community card slot.
func BoardSlot(i int) string {
	return fmt.Sprintf("board_card_%d", i)
}

// TableROI is the table rectangle on screen, in pixels.
type TableROI struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Slot locates one card inside the table frame. All rectangles are
// [x, y, w, h] fractions: Rel of the table frame, RankRel and SuitRel of the
// card patch.
type Slot struct {
	Rel     []float64 `yaml:"rel"`
	RankRel []float64 `yaml:"rank_rel,omitempty"`
	SuitRel []float64 `yaml:"suit_rel,omitempty"`
}

// CardRect returns the slot rectangle.
func (s Slot) CardRect() (geometry.RelRect, error) {
	return toRel(s.Rel)
}

// RankRect returns the rank sub-rectangle, or nil for the default.
func (s Slot) RankRect() *geometry.RelRect {
	return optionalRel(s.RankRel)
}

// SuitRect returns the suit sub-rectangle, or nil for the default.
func (s Slot) SuitRect() *geometry.RelRect {
	return optionalRel(s.SuitRel)
}

func toRel(v []float64) (geometry.RelRect, error) {
	if len(v) != 4 {
		return geometry.RelRect{}, fmt.Errorf("rectangle needs 4 values, got %d", len(v))
	}
	r := geometry.NewRelRect([4]float64{v[0], v[1], v[2], v[3]})
	if !r.Valid() {
		return geometry.RelRect{}, fmt.Errorf("rectangle %v out of range", v)
	}
	return r, nil
}

func optionalRel(v []float64) *geometry.RelRect {
	if len(v) == 0 {
		return nil
	}
	r, err := toRel(v)
	if err != nil {
		return nil
	}
	return &r
}

// MaxDPIScale bounds dpi_scale.
const MaxDPIScale = 8.0

// Profile is a room configuration. DPIScale multiplies TableROI; zero derives
// it from the frame's resolution.
type Profile struct {
	Room     string          `yaml:"room"`
	DPIScale float64         `yaml:"dpi_scale"`
	TableROI TableROI        `yaml:"table_roi"`
	Slots    map[string]Slot `yaml:"rois_hint"`

	Thresholds    fusion.Thresholds `yaml:"thresholds"`
	Strict        bool              `yaml:"strict"`
	BoardTolerant bool              `yaml:"board_tolerant"`

	RankVariant string `yaml:"rank_variant"`
	SuitVariant string `yaml:"suit_variant"`
	RanksDir    string `yaml:"ranks_dir,omitempty"`
	SuitsDir    string `yaml:"suits_dir,omitempty"`

	Rank     RankTuning     `yaml:"rank"`
	Suit     SuitTuning     `yaml:"suit"`
	Presence PresenceTuning `yaml:"presence"`

	StabilizerWindow int `yaml:"stabilizer_window"`
	Workers          int `yaml:"workers"`
}

// Default returns the built-in profile.
func Default() Profile {
	return Profile{
		Room:             "default",
		TableROI:         TableROI{Left: 100, Top: 100, Width: 1280, Height: 720},
		Slots:            DefaultSlots(),
		Thresholds:       fusion.DefaultThresholds(),
		BoardTolerant:    true,
		RankVariant:      rank.TemplateFirst,
		SuitVariant:      suit.ShapeFirst,
		Rank:             DefaultRankTuning(),
		Suit:             DefaultSuitTuning(),
		Presence:         DefaultPresenceTuning(),
		StabilizerWindow: stabilizer.DefaultWindow,
		Workers:          4,
	}
}

// DefaultSlots returns a generic layout: two hero cards at the bottom center
// and five board cards across the middle.
func DefaultSlots() map[string]Slot {
	slots := map[string]Slot{
		HeroLeft:  {Rel: []float64{0.42, 0.70, 0.075, 0.17}},
		HeroRight: {Rel: []float64{0.505, 0.70, 0.075, 0.17}},
	}
	for i := 1; i <= 5; i++ {
		x := 0.30 + float64(i-1)*0.082
		slots[BoardSlot(i)] = Slot{Rel: []float64{x, 0.40, 0.075, 0.17}}
	}
	return slots
}

// SlotNames returns hero slots first, then board slots, each sorted by name.
func (p Profile) SlotNames() []string {
	var hero, board []string
	for name := range p.Slots {
		if fusion.IsBoardSlot(name) {
			board = append(board, name)
		} else {
			hero = append(hero, name)
		}
	}
	sort.Strings(hero)
	sort.Strings(board)
	return append(hero, board...)
}

// Policy returns the fusion policy described by the profile.
func (p Profile) Policy() fusion.Policy {
	return fusion.Policy{
		Thresholds:    p.Thresholds,
		Strict:        p.Strict,
		BoardTolerant: p.BoardTolerant,
	}
}

// Detector returns a presence detector tuned by the presence section, whose
// score floors follow the profile's min_card_score thresholds.
func (p Profile) Detector() *presence.Detector {
	t := p.Presence
	d := presence.NewDetector()
	d.Hero = d.Hero.WithEdgeRef(t.EdgeRef).
		WithWeights(t.WeightEdge, t.WeightWhite, t.WeightContour).
		WithMinimums(t.MinEdge, t.MinWhite).
		WithMinScore(p.Thresholds.MinCardScore)
	d.Board = d.Board.WithEdgeRef(t.EdgeRef).
		WithWeights(t.WeightEdge, t.WeightWhite, t.WeightContour).
		WithMinimums(t.BoardMinEdge, t.BoardMinWhite).
		WithMinScore(p.Thresholds.BoardMinCardScore)
	return d
}

// TemplateDirs returns the rank and suit asset directories: the profile's
// own, falling back to the environment and the default asset root.
func (p Profile) TemplateDirs() (string, string) {
	ranks, suits := templates.DefaultDirs()
	if p.RanksDir != "" {
		ranks = p.RanksDir
	}
	if p.SuitsDir != "" {
		suits = p.SuitsDir
	}
	return ranks, suits
}

// Load reads a profile from a YAML file. Fields missing from the file keep
// their defaults; the result is validated.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("failed to read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML profile over the defaults and validates it.
func Parse(data []byte) (Profile, error) {
	p := Default()
	p.Slots = nil
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("failed to parse profile: %w", err)
	}
	if len(p.Slots) == 0 {
		p.Slots = DefaultSlots()
	}
	p, err := p.Validate()
	return p, err
}

// Validate replaces invalid settings with defaults. The corrected profile is
// always returned; the error lists what was replaced.
func (p Profile) Validate() (Profile, error) {
	var errs []error
	def := Default()

	p.Thresholds = p.Thresholds.Validate()

	slots := make(map[string]Slot, len(p.Slots))
	for name, s := range p.Slots {
		if _, err := s.CardRect(); err != nil {
			errs = append(errs, fmt.Errorf("slot %s dropped: %w", name, err))
			continue
		}
		if len(s.RankRel) > 0 && s.RankRect() == nil {
			errs = append(errs, fmt.Errorf("slot %s: invalid rank_rel, using default", name))
			s.RankRel = nil
		}
		if len(s.SuitRel) > 0 && s.SuitRect() == nil {
			errs = append(errs, fmt.Errorf("slot %s: invalid suit_rel, using default", name))
			s.SuitRel = nil
		}
		slots[name] = s
	}
	p.Slots = slots

	if !contains(rank.Variants(), p.RankVariant) {
		errs = append(errs, fmt.Errorf("unknown rank variant %q, using %s", p.RankVariant, def.RankVariant))
		p.RankVariant = def.RankVariant
	}
	if !contains(suit.Variants(), p.SuitVariant) {
		errs = append(errs, fmt.Errorf("unknown suit variant %q, using %s", p.SuitVariant, def.SuitVariant))
		p.SuitVariant = def.SuitVariant
	}
	if p.StabilizerWindow < 1 {
		p.StabilizerWindow = def.StabilizerWindow
	}
	if p.Workers < 1 {
		p.Workers = def.Workers
	}
	if math.IsNaN(p.DPIScale) || p.DPIScale < 0 || p.DPIScale > MaxDPIScale {
		errs = append(errs, fmt.Errorf("dpi_scale %v out of [0,%v], deriving it from the frame", p.DPIScale, MaxDPIScale))
		p.DPIScale = 0
	}
	errs = append(errs, p.Rank.validate()...)
	errs = append(errs, p.Suit.validate()...)
	errs = append(errs, p.Presence.validate()...)
	return p, errors.Join(errs...)
}

// RoomPath returns the YAML path for a room: assets/rooms/<room>.yaml next
// to the executable when present, otherwise under the working directory.
// POKERIA_ROOMS_DIR overrides the directory.
func RoomPath(room string) string {
	name := strings.TrimSuffix(room, ".yaml") + ".yaml"
	if dir := os.Getenv("POKERIA_ROOMS_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "assets", "rooms")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return filepath.Join(dir, name)
		}
	}
	return filepath.Join("assets", "rooms", name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
