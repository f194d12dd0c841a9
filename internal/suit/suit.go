// Package suit recognizes the suit of a card from its pip.
//
// The pip color narrows the candidates to a pair (hearts/diamonds or
// spades/clubs). Hu moment nearest-neighbour against the suit bank picks one,
// contour geometry settles close calls, and template matching backs up weak
// shape reads.
package suit

import (
	"errors"
	"image"
	"math"

	"pokervision/internal/card"
	"pokervision/internal/imgproc"
	"pokervision/internal/templates"

	"gocv.io/x/gocv"
)

// Recognizer reads a suit from a suit sub-patch.
type Recognizer interface {
	Recognize(img image.Image) card.Result
}

// GeometryClassifier picks a suit of the given color family from contour
// geometry alone.
type GeometryClassifier func(s imgproc.Shape, red bool, p Params) string

// Deps are the recognizer dependencies. All fields are optional.
type Deps struct {
	Library  *templates.Library
	Geometry GeometryClassifier
	Params   *Params
}

func (d Deps) withDefaults() Deps {
	if d.Geometry == nil {
		d.Geometry = Geometry
	}
	if d.Params == nil {
		p := DefaultParams()
		d.Params = &p
	}
	return d
}

// Geometry tells a diamond from a heart by its corner-standing square
// outline, and a club from a spade by its round but notched outline.
func Geometry(s imgproc.Shape, red bool, p Params) string {
	if red {
		if IsDiamond(s, p) {
			return "d"
		}
		return "h"
	}
	if IsClub(s, p) {
		return "c"
	}
	return "s"
}

// IsDiamond reports whether the shape looks like a diamond pip.
func IsDiamond(s imgproc.Shape, p Params) bool {
	return math.Abs(s.Angle-45) < p.DiamondAngleTol &&
		s.Aspect > p.DiamondAspectMin &&
		s.Solidity > p.DiamondSolidityMin
}

// IsClub reports whether the shape looks like a club pip.
func IsClub(s imgproc.Shape, p Params) bool {
	return s.Aspect > p.ClubAspectMin && s.Solidity > p.ClubSolidityMin
}

// Candidates returns the suits of a color family.
func Candidates(red bool) []string {
	if red {
		return []string{"h", "d"}
	}
	return []string{"s", "c"}
}

type mode int

const (
	shapeFirst mode = iota
	geometryOnly
	templateOnly
)

type recognizer struct {
	deps Deps
	mode mode
}

func (r *recognizer) Recognize(img image.Image) (res card.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = card.Recovered("suit", rec)
		}
	}()

	mat, err := imgproc.FromImage(img)
	if err != nil {
		mat.Close()
		res = card.Abstain(nil)
		res.Diagnostics["error"] = "empty_suit"
		return res
	}
	defer mat.Close()

	p := *r.deps.Params
	res = card.Result{Diagnostics: card.Diagnostics{}}

	redRatio := imgproc.RedRatio(mat)
	red := redRatio > p.RedRatioMin
	candidates := Candidates(red)
	res.Diagnostics["red_ratio"] = redRatio
	res.Diagnostics["color_hint"] = colorName(red)

	bin, err := imgproc.Binarize(mat, p.Height, imgproc.Otsu)
	if err != nil {
		res.Diagnostics["error"] = err.Error()
		return r.colorFloor(res, red, p)
	}
	defer bin.Close()

	fg := imgproc.Foreground(bin)
	defer fg.Close()
	shape, shapeErr := imgproc.ExtractShape(fg, p.MinArea)
	if shapeErr == nil {
		res.Diagnostics["solidity"] = shape.Solidity
		res.Diagnostics["aspect"] = shape.Aspect
		res.Diagnostics["angle"] = shape.Angle
	} else {
		res.Diagnostics["reason"] = "no_contour"
	}

	b := r.bank()
	switch r.mode {
	case geometryOnly:
		if shapeErr == nil {
			res = r.geometryFallback(res, shape, red, p)
		}
	case templateOnly:
		res = r.templateMatch(res, b, bin, candidates)
	default:
		if shapeErr == nil {
			res = r.shapeMatch(res, b, shape, red, candidates, p)
		}
		if res.Confidence < p.TemplateBelow {
			res = r.templateMatch(res, b, bin, candidates)
		}
	}

	return r.colorFloor(res, red, p).Clamp()
}

func (r *recognizer) bank() *templates.Bank {
	if r.deps.Library == nil {
		return nil
	}
	b, err := r.deps.Library.Bank()
	if err != nil && !errors.Is(err, templates.ErrNoTemplates) {
		return nil
	}
	return b
}

// shapeMatch classifies by Hu nearest neighbour within the color family and
// refines close calls with geometry.
func (r *recognizer) shapeMatch(res card.Result, b *templates.Bank, s imgproc.Shape, red bool, candidates []string, p Params) card.Result {
	if b == nil || !b.HasSuitShapes(candidates) {
		return r.geometryFallback(res, s, red, p)
	}

	n := b.NearestSuit(s.LogHu(), candidates)
	res.Diagnostics["hu_d1"] = n.D1
	res.Diagnostics["hu_d2"] = n.D2
	res.Diagnostics["hu_margin"] = n.Margin
	res.Value, res.Confidence, res.Source = n.Label, n.Confidence(), card.SourceTemplate

	switch {
	case red && (n.Margin < p.RefineMargin || res.Confidence < p.RefineConf):
		res.Value = r.deps.Geometry(s, true, p)
		res.Confidence = math.Max(res.Confidence, p.RedRefineConf)
		res.Source = card.SourceGeometry
		res.Diagnostics["reason"] = "refine_red"
	case !red && res.Confidence < p.RefineConf:
		res.Value = r.deps.Geometry(s, false, p)
		res.Confidence = math.Max(res.Confidence, p.BlackRefineConf)
		res.Source = card.SourceGeometry
		res.Diagnostics["reason"] = "refine_black"
	}
	return res
}

func (r *recognizer) geometryFallback(res card.Result, s imgproc.Shape, red bool, p Params) card.Result {
	res.Value = r.deps.Geometry(s, red, p)
	res.Source = card.SourceGeometry
	if red {
		res.Confidence = p.GeometryRedConf
		res.Diagnostics["reason"] = "geom_fallback_red"
	} else {
		res.Confidence = p.GeometryBlackConf
		res.Diagnostics["reason"] = "geom_fallback_black"
	}
	return res
}

// templateMatch replaces the current read when a suit template matches
// better.
func (r *recognizer) templateMatch(res card.Result, b *templates.Bank, bin gocv.Mat, candidates []string) card.Result {
	if b == nil || len(b.Suits) == 0 {
		return res
	}
	m := b.MatchSuit(bin, candidates)
	if m.Label == "" {
		return res
	}
	res.Diagnostics["tm_label"] = m.Label
	res.Diagnostics["tm_score"] = m.Score
	if m.Score > res.Confidence {
		res.Value, res.Confidence, res.Source = m.Label, m.Score, card.SourceTemplate
	}
	return res
}

// colorFloor guarantees a suit for every non-empty patch: a missing label is
// filled from the color family and weak reads are lifted to the floor.
func (r *recognizer) colorFloor(res card.Result, red bool, p Params) card.Result {
	if !res.Empty() && res.Confidence >= p.ColorFloorBelow {
		return res
	}
	if res.Empty() {
		res.Value = "s"
		if red {
			res.Value = "h"
		}
		res.Source = card.SourceColor
	}
	res.Confidence = math.Max(res.Confidence, p.ColorFloorConf)
	return res
}

func colorName(red bool) string {
	if red {
		return "red"
	}
	return "black"
}
