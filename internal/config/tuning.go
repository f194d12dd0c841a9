package config

import (
	"fmt"
	"math"

	"pokervision/internal/presence"
	"pokervision/internal/rank"
	"pokervision/internal/suit"
)

// RankTuning overrides the rank recognizer thresholds.
type RankTuning struct {
	FastAccept     float64 `yaml:"fast_accept"`
	ReconcileBelow float64 `yaml:"reconcile_below"`
	AmbiguousBelow float64 `yaml:"ambiguous_below"`
	TieBreakBelow  float64 `yaml:"tie_break_below"`
	QAspectMax     float64 `yaml:"q_aspect_max"`
}

// SuitTuning overrides the suit recognizer thresholds.
type SuitTuning struct {
	RedRatioMin     float64 `yaml:"red_ratio_min"`
	RefineMargin    float64 `yaml:"refine_margin"`
	RefineConf      float64 `yaml:"refine_conf"`
	TemplateBelow   float64 `yaml:"template_below"`
	ColorFloorBelow float64 `yaml:"color_floor_below"`
	ColorFloorConf  float64 `yaml:"color_floor_conf"`
}

// PresenceTuning overrides the presence detector. Score floors come from the
// min_card_score thresholds.
type PresenceTuning struct {
	EdgeRef       float64 `yaml:"edge_ref"`
	WeightEdge    float64 `yaml:"weight_edge"`
	WeightWhite   float64 `yaml:"weight_white"`
	WeightContour float64 `yaml:"weight_contour"`
	MinEdge       float64 `yaml:"min_edge"`
	MinWhite      float64 `yaml:"min_white"`
	BoardMinEdge  float64 `yaml:"board_min_edge"`
	BoardMinWhite float64 `yaml:"board_min_white"`
}

// DefaultRankTuning mirrors rank.DefaultParams.
func DefaultRankTuning() RankTuning {
	p := rank.DefaultParams()
	return RankTuning{
		FastAccept:     p.FastAccept,
		ReconcileBelow: p.ReconcileBelow,
		AmbiguousBelow: p.AmbiguousBelow,
		TieBreakBelow:  p.TieBreakBelow,
		QAspectMax:     p.QAspectMax,
	}
}

// DefaultSuitTuning mirrors suit.DefaultParams.
func DefaultSuitTuning() SuitTuning {
	p := suit.DefaultParams()
	return SuitTuning{
		RedRatioMin:     p.RedRatioMin,
		RefineMargin:    p.RefineMargin,
		RefineConf:      p.RefineConf,
		TemplateBelow:   p.TemplateBelow,
		ColorFloorBelow: p.ColorFloorBelow,
		ColorFloorConf:  p.ColorFloorConf,
	}
}

// DefaultPresenceTuning mirrors presence.DefaultParams and BoardParams.
func DefaultPresenceTuning() PresenceTuning {
	hero, board := presence.DefaultParams(), presence.BoardParams()
	return PresenceTuning{
		EdgeRef:       hero.EdgeRef,
		WeightEdge:    hero.WeightEdge,
		WeightWhite:   hero.WeightWhite,
		WeightContour: hero.WeightContour,
		MinEdge:       hero.MinEdge,
		MinWhite:      hero.MinWhite,
		BoardMinEdge:  board.MinEdge,
		BoardMinWhite: board.MinWhite,
	}
}

// RankParams returns the rank thresholds of the profile.
func (p Profile) RankParams() rank.Params {
	t := p.Rank
	return rank.DefaultParams().
		WithFastAccept(t.FastAccept).
		WithReconcile(t.ReconcileBelow, t.AmbiguousBelow).
		WithTieBreak(t.TieBreakBelow, t.QAspectMax)
}

// SuitParams returns the suit thresholds of the profile.
func (p Profile) SuitParams() suit.Params {
	t := p.Suit
	return suit.DefaultParams().
		WithRedRatio(t.RedRatioMin).
		WithRefine(t.RefineMargin, t.RefineConf).
		WithFloors(t.TemplateBelow, t.ColorFloorBelow, t.ColorFloorConf)
}

type unitField struct {
	name string
	val  *float64
	def  float64
}

// checkUnit resets every field outside [0, 1] to its default.
func checkUnit(section string, fields []unitField) []error {
	var errs []error
	for _, f := range fields {
		v := *f.val
		if math.IsNaN(v) || v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s.%s %v out of [0,1], using %v", section, f.name, v, f.def))
			*f.val = f.def
		}
	}
	return errs
}

func (t *RankTuning) validate() []error {
	def := DefaultRankTuning()
	return checkUnit("rank", []unitField{
		{"fast_accept", &t.FastAccept, def.FastAccept},
		{"reconcile_below", &t.ReconcileBelow, def.ReconcileBelow},
		{"ambiguous_below", &t.AmbiguousBelow, def.AmbiguousBelow},
		{"tie_break_below", &t.TieBreakBelow, def.TieBreakBelow},
		{"q_aspect_max", &t.QAspectMax, def.QAspectMax},
	})
}

func (t *SuitTuning) validate() []error {
	def := DefaultSuitTuning()
	return checkUnit("suit", []unitField{
		{"red_ratio_min", &t.RedRatioMin, def.RedRatioMin},
		{"refine_margin", &t.RefineMargin, def.RefineMargin},
		{"refine_conf", &t.RefineConf, def.RefineConf},
		{"template_below", &t.TemplateBelow, def.TemplateBelow},
		{"color_floor_below", &t.ColorFloorBelow, def.ColorFloorBelow},
		{"color_floor_conf", &t.ColorFloorConf, def.ColorFloorConf},
	})
}

func (t *PresenceTuning) validate() []error {
	def := DefaultPresenceTuning()
	errs := checkUnit("presence", []unitField{
		{"weight_edge", &t.WeightEdge, def.WeightEdge},
		{"weight_white", &t.WeightWhite, def.WeightWhite},
		{"weight_contour", &t.WeightContour, def.WeightContour},
		{"min_edge", &t.MinEdge, def.MinEdge},
		{"min_white", &t.MinWhite, def.MinWhite},
		{"board_min_edge", &t.BoardMinEdge, def.BoardMinEdge},
		{"board_min_white", &t.BoardMinWhite, def.BoardMinWhite},
	})
	// EdgeRef divides the edge density.
	if math.IsNaN(t.EdgeRef) || t.EdgeRef <= 0 || t.EdgeRef > 1 {
		errs = append(errs, fmt.Errorf("presence.edge_ref %v out of (0,1], using %v", t.EdgeRef, def.EdgeRef))
		t.EdgeRef = def.EdgeRef
	}
	if t.WeightEdge+t.WeightWhite+t.WeightContour == 0 {
		errs = append(errs, fmt.Errorf("presence weights are all zero, using defaults"))
		t.WeightEdge, t.WeightWhite, t.WeightContour = def.WeightEdge, def.WeightWhite, def.WeightContour
	}
	return errs
}
