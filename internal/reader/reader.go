// Package reader runs the card pipeline: region extraction, presence,
// rank and suit recognition, then fusion into an accepted label or an
// abstention.
package reader

import (
	"fmt"
	"image"
	"log"
	"math"

	"pokervision/internal/card"
	"pokervision/internal/config"
	"pokervision/internal/fusion"
	"pokervision/internal/presence"
	"pokervision/internal/rank"
	"pokervision/internal/region"
	"pokervision/internal/suit"
	"pokervision/internal/templates"
	"pokervision/pkg/geometry"
)

// Reading is the outcome of reading one card slot.
type Reading struct {
	Slot        string
	Label       card.Label
	Diagnostics card.Diagnostics
}

// Confidence is the weaker of the two field confidences, or 0 without a
// label.
func (r Reading) Confidence() float64 {
	if r.Label == "" {
		return 0
	}
	rc, _ := r.Diagnostics.Float("rank_conf")
	sc, _ := r.Diagnostics.Float("suit_conf")
	return math.Min(rc, sc)
}

// Present reports whether a card face was detected.
func (r Reading) Present() bool {
	return r.Diagnostics.Bool("present")
}

// Reader reads single cards. It is safe for concurrent use: recognizers hold
// no per-call state, the template bank is immutable and the OCR engine
// serializes its own calls.
type Reader struct {
	profile  config.Profile
	policy   fusion.Policy
	detector *presence.Detector
	rank     rank.Recognizer
	suit     suit.Recognizer
}

// New builds a reader. lib and ocr may be nil; the recognizers then run on
// whatever sources remain.
func New(lib *templates.Library, ocr rank.TextReader, profile config.Profile) (*Reader, error) {
	profile, err := profile.Validate()
	if err != nil {
		log.Printf("Profile corrected: %v", err)
	}

	rp, sp := profile.RankParams(), profile.SuitParams()
	rr, err := rank.New(profile.RankVariant, rank.Deps{Library: lib, OCR: ocr, Params: &rp})
	if err != nil {
		return nil, err
	}
	sr, err := suit.New(profile.SuitVariant, suit.Deps{Library: lib, Params: &sp})
	if err != nil {
		return nil, err
	}

	return &Reader{
		profile:  profile,
		policy:   profile.Policy(),
		detector: profile.Detector(),
		rank:     rr,
		suit:     sr,
	}, nil
}

// Profile returns the validated profile the reader was built with.
func (r *Reader) Profile() config.Profile {
	return r.profile
}

// ReadCard reads a card patch for the named slot, using the slot's rank and
// suit sub-regions from the profile when it defines them.
func (r *Reader) ReadCard(img image.Image, slot string) Reading {
	s := r.profile.Slots[slot]
	return r.ReadPatch(img, slot, s.RankRect(), s.SuitRect())
}

// ReadPatch reads a card patch with explicit rank and suit sub-regions; nil
// selects the defaults. It never fails: problems end up in the diagnostics
// and the label stays empty.
func (r *Reader) ReadPatch(img image.Image, slot string, rankRel, suitRel *geometry.RelRect) (out Reading) {
	ctx := r.policy.ContextFor(slot)

	defer func() {
		if rec := recover(); rec != nil {
			dec := r.policy.Decide(ctx, presence.Presence{}, card.Recovered("card", rec), card.Result{})
			dec.Diagnostics["error"] = fmt.Sprintf("%s: %v", card.ErrRecognizer, rec)
			out = Reading{Slot: slot, Diagnostics: dec.Diagnostics}
		}
	}()

	if img == nil || img.Bounds().Empty() {
		dec := r.policy.Decide(ctx, presence.Presence{}, card.Result{}, card.Result{})
		dec.Diagnostics["reason"] = "empty"
		dec.Diagnostics["error"] = card.ErrEmptyPatch.Error()
		return Reading{Slot: slot, Diagnostics: dec.Diagnostics}
	}

	pres := r.detector.Detect(img, ctx.IsBoard)
	if !pres.Present {
		dec := r.policy.Decide(ctx, pres, card.Result{}, card.Result{})
		dec.Diagnostics["reason"] = "no card"
		return Reading{Slot: slot, Diagnostics: dec.Diagnostics}
	}

	var rankRes, suitRes card.Result
	if patch, err := region.Extract(img, rankRel, region.Rank); err != nil {
		rankRes = card.Abstain(err)
	} else {
		rankRes = r.rank.Recognize(patch)
	}
	if patch, err := region.Extract(img, suitRel, region.Suit); err != nil {
		suitRes = card.Abstain(err)
	} else {
		suitRes = r.suit.Recognize(patch)
	}

	dec := r.policy.Decide(ctx, pres, rankRes.Clamp(), suitRes.Clamp())
	return Reading{Slot: slot, Label: dec.Label, Diagnostics: dec.Diagnostics}
}
