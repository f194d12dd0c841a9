package fusion

import (
	"math"
	"testing"

	"pokervision/internal/card"
	"pokervision/internal/presence"

	"github.com/stretchr/testify/assert"
)

var shown = presence.Presence{Present: true, Score: 0.6, EdgeDensity: 0.05, WhiteRatio: 0.8}

func rankResult(v string, conf float64) card.Result {
	return card.Result{Value: v, Confidence: conf, Source: card.SourceTemplate, Diagnostics: card.Diagnostics{}}
}

func suitResult(v string, conf, redRatio float64) card.Result {
	hint := "black"
	if redRatio > 0.04 {
		hint = "red"
	}
	return card.Result{Value: v, Confidence: conf, Source: card.SourceTemplate,
		Diagnostics: card.Diagnostics{"red_ratio": redRatio, "color_hint": hint}}
}

func TestAcceptsConfidentHeroCard(t *testing.T) {
	dec := DefaultPolicy().Decide(ContextFor("hero_card_left"), shown, rankResult("A", 0.97), suitResult("h", 0.9, 0.2))
	assert.Equal(t, card.Label("Ah"), dec.Label)
	assert.True(t, dec.RankAccepted)
	assert.True(t, dec.SuitAccepted)
}

func TestDiagnosticsAlwaysComplete(t *testing.T) {
	keys := []string{"roi_name", "present", "score", "rank_code", "rank_conf", "suit_code",
		"suit_conf", "rank_src", "suit_src", "color_hint", "red_ratio", "accepted_rank", "accepted_suit"}

	for _, pres := range []presence.Presence{shown, {}} {
		dec := DefaultPolicy().Decide(ContextFor("board_card_1"), pres, card.Result{}, card.Result{})
		for _, k := range keys {
			assert.Contains(t, dec.Diagnostics, k)
		}
	}
}

func TestBoardAcceptsWhatHeroRejects(t *testing.T) {
	p := DefaultPolicy()
	p.BoardTolerant = false
	r, s := rankResult("7", 0.95), suitResult("c", 0.67, 0)

	hero := p.Decide(ContextFor("hero_card_right"), shown, r, s)
	board := p.Decide(ContextFor("board_card_3"), shown, r, s)
	assert.Empty(t, hero.Label)
	assert.False(t, hero.SuitAccepted)
	assert.Equal(t, card.Label("7c"), board.Label)
}

func TestBoardRankToleranceWithStrongBlack(t *testing.T) {
	p := DefaultPolicy()
	r, s := rankResult("Q", 0.85), suitResult("s", 0.9, 0)

	board := p.Decide(ContextFor("board_card_2"), shown, r, s)
	assert.Equal(t, card.Label("Qs"), board.Label)
	assert.Equal(t, true, board.Diagnostics["rank_tolerance"])

	hero := p.Decide(ContextFor("hero_card_left"), shown, r, s)
	assert.Empty(t, hero.Label)

	p.Strict = true
	strict := p.Decide(ContextFor("board_card_2"), shown, r, s)
	assert.Empty(t, strict.Label)

	// Ambiguous color disables tolerance.
	weak := DefaultPolicy().Decide(ContextFor("board_card_2"), shown, r, suitResult("s", 0.9, 0.05))
	assert.Empty(t, weak.Label)
}

func TestBoardSuitTolerance(t *testing.T) {
	p := DefaultPolicy()
	r, s := rankResult("9", 0.95), suitResult("d", 0.55, 0.2)

	dec := p.Decide(ContextFor("board_card_5"), shown, r, s)
	assert.Equal(t, card.Label("9d"), dec.Label)
	assert.Equal(t, true, dec.Diagnostics["suit_tolerance"])

	p.BoardTolerant = false
	assert.Empty(t, p.Decide(ContextFor("board_card_5"), shown, r, s).Label)

	// Too far below the floor.
	low := DefaultPolicy().Decide(ContextFor("board_card_5"), shown, r, suitResult("d", 0.45, 0.2))
	assert.Empty(t, low.Label)
}

func TestColorPenalty(t *testing.T) {
	dec := DefaultPolicy().Decide(ContextFor("hero_card_left"), shown, rankResult("K", 0.99), suitResult("h", 0.9, 0))
	assert.Empty(t, dec.Label)
	assert.Equal(t, true, dec.Diagnostics["color_penalty"])
	assert.InDelta(t, 0.54, dec.Diagnostics["suit_conf"], 1e-9)

	dec = DefaultPolicy().Decide(ContextFor("hero_card_left"), shown, rankResult("K", 0.99), suitResult("s", 0.9, 0.3))
	assert.Empty(t, dec.Label)
}

func TestAbsentCardHasNoLabel(t *testing.T) {
	for _, strict := range []bool{false, true} {
		p := DefaultPolicy()
		p.Strict = strict
		dec := p.Decide(ContextFor("board_card_1"), presence.Presence{}, rankResult("A", 1), suitResult("s", 1, 0))
		assert.Empty(t, dec.Label)
		assert.Equal(t, false, dec.Diagnostics["present"])
	}
}

func TestInvalidSymbolsRejected(t *testing.T) {
	dec := DefaultPolicy().Decide(ContextFor("hero_card_left"), shown, rankResult("X", 1), suitResult("s", 1, 0))
	assert.Empty(t, dec.Label)
	assert.False(t, dec.RankAccepted)
}

func TestValidate(t *testing.T) {
	th := DefaultThresholds()
	th.BoardMinRankConf = 0.99
	th.MinSuitConf = math.NaN()
	th.ColorPenalty = 3
	v := th.Validate()

	assert.Equal(t, v.MinRankConf, v.BoardMinRankConf)
	assert.Equal(t, 0.70, v.MinSuitConf)
	assert.Equal(t, 0.6, v.ColorPenalty)

	for _, board := range []bool{false, true} {
		r, s, c := v.Floors(board)
		for _, f := range []float64{r, s, c} {
			assert.GreaterOrEqual(t, f, 0.0)
			assert.LessOrEqual(t, f, 1.0)
		}
	}
	hr, hs, hc := v.Floors(false)
	br, bs, bc := v.Floors(true)
	assert.LessOrEqual(t, br, hr)
	assert.LessOrEqual(t, bs, hs)
	assert.LessOrEqual(t, bc, hc)
}

func TestIsBoardSlot(t *testing.T) {
	assert.True(t, IsBoardSlot("board_card_4"))
	assert.True(t, IsBoardSlot("Board1"))
	assert.False(t, IsBoardSlot("hero_card_left"))
}

func TestContextThresholdsOverridePolicy(t *testing.T) {
	p := DefaultPolicy()
	r, s := rankResult("9", 0.93), suitResult("s", 0.9, 0)

	ctx := p.ContextFor("hero_card_left")
	assert.Equal(t, p.Thresholds, ctx.Thresholds)
	assert.False(t, ctx.IsBoard)
	assert.Equal(t, card.Label("9s"), p.Decide(ctx, shown, r, s).Label)

	ctx.Thresholds.MinRankConf = 0.95
	dec := p.Decide(ctx, shown, r, s)
	assert.Empty(t, dec.Label)
	assert.False(t, dec.RankAccepted)
	assert.Equal(t, 0.95, dec.Diagnostics["min_rank_conf"])

	// A bare context falls back to the policy's floors.
	assert.Equal(t, card.Label("9s"), p.Decide(ContextFor("hero_card_left"), shown, r, s).Label)
}
