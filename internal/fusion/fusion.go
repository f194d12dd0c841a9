// Package fusion turns raw rank and suit results into an accepted card label
// or an abstention, depending on the slot context.
package fusion

import (
	"strings"

	"pokervision/internal/card"
	"pokervision/internal/presence"
)

// eps absorbs float rounding in floor comparisons.
const eps = 1e-9

// Context describes the slot being read and the floors it is judged by.
// Zero Thresholds defer to the policy's.
type Context struct {
	SlotName   string
	IsBoard    bool
	Thresholds Thresholds
}

// ContextFor derives the context from a slot name. Names starting with
// "board" are community card slots.
func ContextFor(slot string) Context {
	return Context{SlotName: slot, IsBoard: IsBoardSlot(slot)}
}

// IsBoardSlot reports whether the slot holds a community card.
func IsBoardSlot(slot string) bool {
	return strings.HasPrefix(strings.ToLower(slot), "board")
}

// Policy is the acceptance policy.
type Policy struct {
	Thresholds Thresholds
	// Strict applies hero floors everywhere and disables tolerance.
	Strict bool
	// BoardTolerant enables the color-backed tolerance on board slots.
	BoardTolerant bool
}

// ContextFor derives the context for a slot, carrying the policy's
// thresholds.
func (p Policy) ContextFor(slot string) Context {
	ctx := ContextFor(slot)
	ctx.Thresholds = p.Thresholds
	return ctx
}

// DefaultPolicy returns the default policy with board tolerance on.
func DefaultPolicy() Policy {
	return Policy{Thresholds: DefaultThresholds(), BoardTolerant: true}
}

// Decision is the fused outcome for one slot.
type Decision struct {
	Label        card.Label
	RankAccepted bool
	SuitAccepted bool
	Diagnostics  card.Diagnostics
}

// Decide applies the floors for ctx to the recognizer results. A label is
// emitted only when the card is present and both fields are accepted.
// Diagnostics are always complete.
func (p Policy) Decide(ctx Context, pres presence.Presence, rank, suit card.Result) Decision {
	t := ctx.Thresholds
	if t == (Thresholds{}) {
		t = p.Thresholds
	}
	board := ctx.IsBoard && !p.Strict
	rankFloor, suitFloor, scoreFloor := t.Floors(board)

	d := card.Diagnostics{}
	d.Merge("rank_", rank.Diagnostics)
	d.Merge("suit_", suit.Diagnostics)
	d.Merge("", pres.Diagnostics())

	redRatio, _ := suit.Diagnostics.Float("red_ratio")
	colorHint := suit.Diagnostics.String("color_hint")

	rankConf := card.ClampConfidence(rank.Confidence)
	suitConf := card.ClampConfidence(suit.Confidence)

	// A red suit on a colorless pip, or the reverse, is suspect.
	if !suit.Empty() {
		red := card.IsRed(suit.Value)
		if (red && redRatio <= t.StrongBlackMax) || (!red && redRatio >= t.StrongRedRatio) {
			suitConf *= t.ColorPenalty
			d["color_penalty"] = true
		}
	}
	strongColor := !suit.Empty() && ((card.IsRed(suit.Value) && redRatio >= t.StrongRedRatio) ||
		(!card.IsRed(suit.Value) && redRatio <= t.StrongBlackMax))
	tolerant := board && p.BoardTolerant

	present := pres.Present && pres.Score+eps >= scoreFloor

	rankOK := present && card.IsRank(rank.Value) && rankConf+eps >= rankFloor
	if present && !rankOK && tolerant && strongColor && card.IsRank(rank.Value) &&
		rankConf+eps >= rankFloor-t.BoardRankMargin {
		rankOK = true
		d["rank_tolerance"] = true
	}

	suitOK := present && card.IsSuit(suit.Value) && suitConf+eps >= suitFloor
	if present && !suitOK && tolerant && rankOK && strongColor && card.IsSuit(suit.Value) &&
		suitConf+eps >= suitFloor-t.BoardSuitMargin {
		suitOK = true
		d["suit_tolerance"] = true
	}

	d["roi_name"] = ctx.SlotName
	d["board"] = ctx.IsBoard
	d["strict"] = p.Strict
	d["present"] = present
	d["score"] = pres.Score
	d["rank_code"] = rank.Value
	d["rank_conf"] = rankConf
	d["rank_src"] = rank.Source.String()
	d["suit_code"] = suit.Value
	d["suit_conf"] = suitConf
	d["suit_src"] = suit.Source.String()
	d["color_hint"] = colorHint
	d["red_ratio"] = redRatio
	d["accepted_rank"] = rankOK
	d["accepted_suit"] = suitOK
	d["min_rank_conf"] = rankFloor
	d["min_suit_conf"] = suitFloor

	dec := Decision{RankAccepted: rankOK, SuitAccepted: suitOK, Diagnostics: d}
	if rankOK && suitOK {
		if l, err := card.NewLabel(rank.Value, suit.Value); err == nil {
			dec.Label = l
		}
	}
	if dec.Label == "" && present {
		d["reason"] = card.ErrLowConfidence.Error()
	}
	return dec
}
