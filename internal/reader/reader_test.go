package reader

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"pokervision/internal/card"
	"pokervision/internal/config"
	"pokervision/internal/rank"
	"pokervision/internal/templates"
	"pokervision/internal/testcards"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func library(t *testing.T) *templates.Library {
	t.Helper()
	root := t.TempDir()
	ranks, suits := filepath.Join(root, "ranks"), filepath.Join(root, "suits")
	require.NoError(t, testcards.WriteBank(ranks, suits))
	lib := templates.NewLibrary(ranks, suits)
	t.Cleanup(lib.Close)
	return lib
}

func newReader(t *testing.T, lib *templates.Library, p config.Profile) *Reader {
	t.Helper()
	r, err := New(lib, nil, p)
	require.NoError(t, err)
	return r
}

func render(t *testing.T, label card.Label) *image.RGBA {
	t.Helper()
	face, err := testcards.Render(label)
	require.NoError(t, err)
	return face
}

func conf(t *testing.T, d card.Diagnostics, key string) float64 {
	t.Helper()
	v, ok := d.Float(key)
	require.True(t, ok, key)
	return v
}

// registerRank adds a rank variant for the duration of the test.
func registerRank(t *testing.T, name string, f rank.Factory) {
	t.Helper()
	rank.Register(name, f)
	t.Cleanup(func() { rank.Unregister(name) })
}

func TestReadsAllCards(t *testing.T) {
	r := newReader(t, library(t), config.Default())

	for _, label := range testcards.All() {
		for _, slot := range []string{config.HeroLeft, config.BoardSlot(2)} {
			got := r.ReadCard(render(t, label), slot)
			assert.Equal(t, label, got.Label, "%s in %s: %s", label, slot, got.Diagnostics.Format())
			assert.Greater(t, conf(t, got.Diagnostics, "rank_conf"), 0.9, "%s", label)
			assert.Greater(t, conf(t, got.Diagnostics, "suit_conf"), 0.7, "%s", label)
			assert.True(t, got.Present())
		}
	}
}

func TestAceOfHearts(t *testing.T) {
	r := newReader(t, library(t), config.Default())
	got := r.ReadCard(render(t, "Ah"), config.HeroRight)

	assert.Equal(t, card.Label("Ah"), got.Label)
	assert.Equal(t, true, got.Diagnostics["present"])
	assert.Equal(t, "A", got.Diagnostics["rank_code"])
	assert.Equal(t, "h", got.Diagnostics["suit_code"])
	assert.Equal(t, config.HeroRight, got.Diagnostics["roi_name"])
	assert.Greater(t, got.Confidence(), 0.7)
}

func TestConfidenceAlwaysInRange(t *testing.T) {
	r := newReader(t, library(t), config.Default())
	inputs := []image.Image{
		render(t, "7c"),
		testcards.Felt(120, 170),
		testcards.Solid(3, 3, color.RGBA{R: 255, A: 255}),
	}
	for _, img := range inputs {
		got := r.ReadCard(img, config.BoardSlot(1))
		for _, k := range []string{"rank_conf", "suit_conf"} {
			c := conf(t, got.Diagnostics, k)
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		}
	}
}

func TestBlankPatchIsAbsentInEveryMode(t *testing.T) {
	lib := library(t)
	blanks := []image.Image{
		testcards.Solid(120, 170, color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		testcards.Solid(120, 170, color.RGBA{A: 255}),
		testcards.Solid(120, 170, color.RGBA{R: 128, G: 128, B: 128, A: 255}),
		testcards.Felt(120, 170),
	}
	for _, strict := range []bool{false, true} {
		for _, tolerant := range []bool{false, true} {
			p := config.Default()
			p.Strict, p.BoardTolerant = strict, tolerant
			r := newReader(t, lib, p)
			for _, img := range blanks {
				for _, slot := range []string{config.HeroLeft, config.BoardSlot(3)} {
					got := r.ReadCard(img, slot)
					assert.Empty(t, got.Label)
					assert.Equal(t, false, got.Diagnostics["present"])
				}
			}
		}
	}
}

func TestAllBlackSmallPatch(t *testing.T) {
	r := newReader(t, library(t), config.Default())
	got := r.ReadCard(testcards.Solid(40, 40, color.RGBA{A: 255}), config.HeroLeft)

	assert.Empty(t, got.Label)
	assert.Equal(t, false, got.Diagnostics["present"])
	assert.InDelta(t, 0.0, conf(t, got.Diagnostics, "score"), 1e-6)
}

func TestEmptyInput(t *testing.T) {
	r := newReader(t, nil, config.Default())
	for _, img := range []image.Image{nil, image.NewRGBA(image.Rect(0, 0, 0, 0))} {
		got := r.ReadCard(img, config.HeroLeft)
		assert.Empty(t, got.Label)
		assert.Equal(t, "empty", got.Diagnostics["reason"])
		assert.Contains(t, got.Diagnostics, "rank_conf")
	}
}

type fixedRank struct {
	value string
	conf  float64
}

func (f fixedRank) Recognize(image.Image) card.Result {
	return card.Result{Value: f.value, Confidence: f.conf, Source: card.SourceTemplate, Diagnostics: card.Diagnostics{}}
}

func TestBoardToleratesSlightlyWeakRank(t *testing.T) {
	registerRank(t, "fixed-q", func(rank.Deps) rank.Recognizer { return fixedRank{"Q", 0.85} })
	lib := library(t)

	p := config.Default()
	p.RankVariant = "fixed-q"
	r := newReader(t, lib, p)

	board := r.ReadCard(render(t, "Qs"), config.BoardSlot(4))
	assert.Equal(t, card.Label("Qs"), board.Label, board.Diagnostics.Format())
	assert.Equal(t, true, board.Diagnostics["rank_tolerance"])

	hero := r.ReadCard(render(t, "Qs"), config.HeroLeft)
	assert.Empty(t, hero.Label)
	assert.Equal(t, card.ErrLowConfidence.Error(), hero.Diagnostics["reason"])

	p.Strict = true
	strict := newReader(t, lib, p).ReadCard(render(t, "Qs"), config.BoardSlot(4))
	assert.Empty(t, strict.Label)
}

type panicRank struct{}

func (panicRank) Recognize(image.Image) card.Result { panic("boom") }

func TestPanicBecomesDiagnostic(t *testing.T) {
	registerRank(t, "panics", func(rank.Deps) rank.Recognizer { return panicRank{} })
	p := config.Default()
	p.RankVariant = "panics"
	r := newReader(t, nil, p)

	got := r.ReadCard(render(t, "5d"), config.HeroLeft)
	assert.Empty(t, got.Label)
	assert.Contains(t, got.Diagnostics.String("error"), card.ErrRecognizer.Error())
}

func TestProfileSubRegions(t *testing.T) {
	p := config.Default()
	s := p.Slots[config.HeroLeft]
	// A rank region covering only card stock finds no rank.
	s.RankRel = []float64{0.05, 0.75, 0.3, 0.2}
	p.Slots[config.HeroLeft] = s
	r := newReader(t, library(t), p)

	got := r.ReadCard(render(t, "Kd"), config.HeroLeft)
	assert.Empty(t, got.Label)
	assert.True(t, got.Present())

	other := r.ReadCard(render(t, "Kd"), config.HeroRight)
	assert.Equal(t, card.Label("Kd"), other.Label)
}

// tableFrame lays cards out on felt and returns a profile whose slots point
// at them. An empty label leaves the slot showing felt.
func tableFrame(t *testing.T, hero [2]card.Label, board [5]card.Label) (*image.RGBA, config.Profile) {
	t.Helper()
	const w, h = 1000, 500
	frame := testcards.Felt(w, h)
	p := config.Default()
	p.Slots = map[string]config.Slot{}

	place := func(name string, label card.Label, x, y int) {
		p.Slots[name] = config.Slot{Rel: []float64{float64(x) / w, float64(y) / h, 0.12, 0.34}}
		if label == "" {
			return
		}
		face := render(t, label)
		draw.Draw(frame, image.Rect(x, y, x+120, y+170), face, image.Point{}, draw.Src)
	}
	place(config.HeroLeft, hero[0], 360, 300)
	place(config.HeroRight, hero[1], 500, 300)
	for i, l := range board {
		place(config.BoardSlot(i+1), l, 100+i*160, 50)
	}
	return frame, p
}

func TestTableRead(t *testing.T) {
	frame, p := tableFrame(t, [2]card.Label{"Ah", "Kd"}, [5]card.Label{"2c", "Ts", "9h"})
	table := NewTable(newReader(t, library(t), p))

	state, err := table.Read(context.Background(), frame)
	require.NoError(t, err)
	assert.Equal(t, []card.Label{"Ah", "Kd"}, state.Hero)
	assert.Equal(t, []card.Label{"2c", "Ts", "9h", "", ""}, state.Board)
	assert.Equal(t, card.Label("Ts"), state.Labels()[config.BoardSlot(2)])

	state, err = table.Read(context.Background(), frame)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ah", "Kd"}, state.StableHero)
	assert.Equal(t, []string{"2c", "Ts", "9h", "", ""}, state.StableBoard)

	table.Reset()
	state, err = table.Read(context.Background(), testcards.Felt(1000, 500))
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, state.StableHero)
}

func TestTableRejectsDuplicates(t *testing.T) {
	frame, p := tableFrame(t, [2]card.Label{"Ah", "3s"}, [5]card.Label{"Ah"})
	table := NewTable(newReader(t, library(t), p))

	state, err := table.Read(context.Background(), frame)
	require.NoError(t, err)
	assert.Equal(t, []card.Label{"Ah", "3s"}, state.Hero)
	assert.Empty(t, state.Board[0])

	dup := state.Readings[2]
	assert.Equal(t, config.BoardSlot(1), dup.Slot)
	assert.Equal(t, "duplicate of "+config.HeroLeft, dup.Diagnostics["reason"])
	assert.Equal(t, "Ah", dup.Diagnostics["rejected_label"])
}

func TestTableHonoursCancellation(t *testing.T) {
	frame, p := tableFrame(t, [2]card.Label{"Ah", "Kd"}, [5]card.Label{})
	table := NewTable(newReader(t, nil, p))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := table.Read(ctx, frame)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = table.Read(context.Background(), nil)
	assert.ErrorIs(t, err, card.ErrEmptyPatch)
}

func TestEval7(t *testing.T) {
	partial := TableState{Hero: []card.Label{"Ah", "Kh"}, Board: []card.Label{"Qh", "Jh", "Th", "", ""}}
	_, ok := partial.Eval7()
	assert.False(t, ok)

	royal := TableState{Hero: []card.Label{"Ah", "Kh"}, Board: []card.Label{"Qh", "Jh", "Th", "2c", "3d"}}
	pair := TableState{Hero: []card.Label{"2s", "2d"}, Board: []card.Label{"7h", "9c", "Jd", "4s", "5c"}}
	rs, ok := royal.Eval7()
	require.True(t, ok)
	ps, ok := pair.Eval7()
	require.True(t, ok)
	assert.Greater(t, rs, ps)
}

func TestVariantRegistrationIsScopedToTest(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		registerRank(t, "scoped", func(rank.Deps) rank.Recognizer { return fixedRank{"A", 1} })
		assert.Contains(t, rank.Variants(), "scoped")
	})
	assert.NotContains(t, rank.Variants(), "scoped")
}

func TestProfileTuningReachesRecognizers(t *testing.T) {
	lib := library(t)

	p := config.Default()
	p.Suit.RedRatioMin = 1
	got := newReader(t, lib, p).ReadCard(render(t, "Ah"), config.HeroLeft)
	assert.Equal(t, "black", got.Diagnostics["color_hint"])
	assert.NotEqual(t, card.Label("Ah"), got.Label)

	p = config.Default()
	p.Thresholds.MinRankConf = 0.999
	got = newReader(t, lib, p).ReadCard(render(t, "Ah"), config.HeroLeft)
	assert.Equal(t, 0.999, got.Diagnostics["min_rank_conf"])
}
