// Package rank recognizes the rank symbol of a card from its rank corner.
//
// Two independent sources are combined: template matching against the rank
// bank and OCR. Which one runs first depends on the variant; a weak or
// ambiguous OCR read always defers to the template result.
package rank

import (
	"errors"
	"image"

	"pokervision/internal/card"
	"pokervision/internal/imgproc"
	"pokervision/internal/ocr"
	"pokervision/internal/templates"

	"gocv.io/x/gocv"
)

// Recognizer reads a rank from a rank sub-patch.
type Recognizer interface {
	Recognize(img image.Image) card.Result
}

// TextReader is the OCR dependency. *ocr.Engine implements it.
type TextReader interface {
	ReadText(img gocv.Mat, allowlist string) (string, float64, error)
}

// TieBreaker settles a Q-or-9 read from the glyph foreground mask. It returns
// the (possibly changed) guess.
type TieBreaker func(fg gocv.Mat, guess string, p Params) string

// Deps are the recognizer dependencies. Every field is optional: without a
// library only OCR runs, without OCR only templates run.
type Deps struct {
	Library  *templates.Library
	OCR      TextReader
	TieBreak TieBreaker
	Params   *Params
}

func (d Deps) withDefaults() Deps {
	if d.TieBreak == nil {
		d.TieBreak = QOrNine
	}
	if d.Params == nil {
		p := DefaultParams()
		d.Params = &p
	}
	return d
}

// QOrNine erodes the glyph and calls it a Q when the largest remaining
// contour is slender: the Q tail separates from the bowl, a 9 stays compact.
func QOrNine(fg gocv.Mat, guess string, p Params) string {
	if guess != "Q" && guess != "9" {
		return guess
	}
	eroded := imgproc.Erode(fg, 2)
	defer eroded.Close()
	a := imgproc.LargestAspect(eroded)
	if a <= 0 {
		return guess
	}
	if a < p.QAspectMax {
		return "Q"
	}
	return guess
}

type order int

const (
	templateFirst order = iota
	ocrFirst
	templateOnly
)

type recognizer struct {
	deps  Deps
	order order
}

func (r *recognizer) Recognize(img image.Image) (res card.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = card.Recovered("rank", rec)
		}
	}()

	mat, err := imgproc.FromImage(img)
	if err != nil {
		mat.Close()
		res = card.Abstain(nil)
		res.Diagnostics["error"] = "empty_rank"
		return res
	}
	defer mat.Close()

	p := *r.deps.Params
	switch r.order {
	case templateOnly:
		res = r.templatePass(mat, p)
	case ocrFirst:
		o := r.ocrPass(mat, p)
		if needsFallback(o, p) {
			res = reconcile(o, r.templatePass(mat, p))
		} else {
			res = o
		}
	default:
		t := r.templatePass(mat, p)
		if t.Confidence >= p.FastAccept && !t.Empty() {
			res = t
			break
		}
		o := r.ocrPass(mat, p)
		if needsFallback(o, p) {
			res = reconcile(o, t)
		} else {
			res = o
		}
	}

	if res.Empty() {
		d := res.Diagnostics
		res = card.Abstain(nil)
		res.Diagnostics.Merge("", d)
		res.Diagnostics["error"] = "no_candidate"
	}
	return res.Clamp()
}

func needsFallback(o card.Result, p Params) bool {
	if o.Empty() || o.Confidence < p.ReconcileBelow {
		return true
	}
	return (o.Value == "Q" || o.Value == "9") && o.Confidence < p.AmbiguousBelow
}

// reconcile keeps the template result when it is at least as confident.
func reconcile(o, t card.Result) card.Result {
	d := card.Diagnostics{}
	d.Merge("", o.Diagnostics)
	d.Merge("", t.Diagnostics)

	best := o
	if !t.Empty() && t.Confidence >= o.Confidence {
		best = t
	}
	best.Diagnostics = d
	return best
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

// templatePass matches against the binary rank templates, falling back to
// the nearest Hu descriptor when no template fits the patch.
func (r *recognizer) templatePass(mat gocv.Mat, p Params) card.Result {
	res := card.Result{Diagnostics: card.Diagnostics{}}
	b := r.bank()
	if b == nil || len(b.Ranks) == 0 {
		res.Diagnostics["tm"] = "no_bank"
		return res
	}

	bin, err := imgproc.Binarize(mat, p.TemplateHeight, imgproc.Otsu)
	if err != nil {
		res.Diagnostics["tm"] = err.Error()
		return res
	}
	defer bin.Close()

	if m := b.MatchRank(bin); m.Label != "" {
		res.Diagnostics["tm_label"] = m.Label
		res.Diagnostics["tm_score"] = m.Score
		res.Value, res.Confidence, res.Source = m.Label, m.Score, card.SourceTemplate
		return res
	}

	if !b.HasRankShapes() {
		return res
	}
	fg := imgproc.Foreground(bin)
	defer fg.Close()
	shape, err := imgproc.ExtractShape(fg, templates.RankMinArea)
	if err != nil {
		res.Diagnostics["hu"] = err.Error()
		return res
	}
	n := b.NearestRank(shape.LogHu())
	if n.Label == "" {
		return res
	}
	res.Diagnostics["hu_label"] = n.Label
	res.Diagnostics["hu_d1"] = n.D1
	res.Diagnostics["hu_margin"] = n.Margin
	res.Value, res.Confidence, res.Source = n.Label, n.Confidence(), card.SourceTemplate
	return res
}

// ocrPass reads the glyph from adaptive and Otsu binarizations and keeps the
// most confident valid rank.
func (r *recognizer) ocrPass(mat gocv.Mat, p Params) card.Result {
	res := card.Result{Diagnostics: card.Diagnostics{}}
	if r.deps.OCR == nil {
		res.Diagnostics["ocr"] = "disabled"
		return res
	}

	var bestBin *gocv.Mat
	defer func() {
		if bestBin != nil {
			bestBin.Close()
		}
	}()

	for _, method := range []imgproc.Method{imgproc.Adaptive, imgproc.Otsu} {
		bin, err := imgproc.Binarize(mat, p.OCRHeight, method)
		if err != nil {
			res.Diagnostics["ocr"] = err.Error()
			return res
		}
		padded := ocr.PadForOCR(bin)
		text, conf, err := r.deps.OCR.ReadText(padded, ocr.RankChars)
		padded.Close()
		if err != nil {
			res.Diagnostics["ocr_error"] = err.Error()
			bin.Close()
			continue
		}

		guess := ocr.NormalizeRank(text)
		if guess != "" && conf > res.Confidence {
			res.Value, res.Confidence, res.Source = guess, conf, card.SourceOCR
			res.Diagnostics["ocr_raw"] = text
			res.Diagnostics["ocr_variant"] = method.String()
			if bestBin != nil {
				bestBin.Close()
			}
			bestBin = &bin
			continue
		}
		bin.Close()
	}

	if res.Empty() {
		return res
	}
	res.Diagnostics["ocr_label"] = res.Value
	res.Diagnostics["ocr_conf"] = res.Confidence

	if (res.Value == "Q" || res.Value == "9") && res.Confidence < p.TieBreakBelow {
		fg := imgproc.Foreground(*bestBin)
		guess := r.deps.TieBreak(fg, res.Value, p)
		fg.Close()
		if guess != res.Value {
			res.Diagnostics["tiebreak"] = res.Value + "->" + guess
			res.Value = guess
		}
	}
	return res
}
