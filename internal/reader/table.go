package reader

import (
	"context"
	"fmt"
	"image"

	"pokervision/internal/card"
	"pokervision/internal/fusion"
	"pokervision/internal/region"
	"pokervision/internal/stabilizer"

	"github.com/paulhankin/poker"
	"golang.org/x/sync/errgroup"
)

// TableState is one poll of every profile slot.
type TableState struct {
	Readings []Reading // in profile slot order, hero first

	Hero  []card.Label // raw accepted labels of the hero slots
	Board []card.Label

	StableHero  []string
	StableBoard []string
}

// Labels returns the accepted labels keyed by slot name.
func (s TableState) Labels() map[string]card.Label {
	out := make(map[string]card.Label, len(s.Readings))
	for _, r := range s.Readings {
		out[r.Slot] = r.Label
	}
	return out
}

// Eval7 scores the seven visible cards with the hand evaluator. It reports
// false until both hero cards and all five board cards are labeled.
func (s TableState) Eval7() (int16, bool) {
	if len(s.Hero) != 2 || len(s.Board) != 5 {
		return 0, false
	}
	var hand [7]poker.Card
	for i, l := range append(append([]card.Label{}, s.Hero...), s.Board...) {
		c, err := l.PokerCard()
		if err != nil {
			return 0, false
		}
		hand[i] = c
	}
	return poker.Eval7(&hand), true
}

// Table reads all slots of a table frame and stabilizes the result across
// polls.
type Table struct {
	reader *Reader
	stable *stabilizer.Cards
}

// NewTable creates a table reader over r's profile.
func NewTable(r *Reader) *Table {
	return &Table{
		reader: r,
		stable: stabilizer.NewCards(r.profile.StabilizerWindow),
	}
}

// Reset clears the stabilizer, typically when a new hand starts.
func (t *Table) Reset() {
	t.stable.Reset()
}

// Read crops every slot of the frame and reads them concurrently. It only
// fails when ctx is cancelled; per-slot problems are reported in the slot
// diagnostics.
func (t *Table) Read(ctx context.Context, frame image.Image) (TableState, error) {
	if frame == nil || frame.Bounds().Empty() {
		return TableState{}, fmt.Errorf("failed to read table: %w", card.ErrEmptyPatch)
	}

	names := t.reader.profile.SlotNames()
	readings := make([]Reading, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.reader.profile.Workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			readings[i] = t.readSlot(frame, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TableState{}, fmt.Errorf("failed to read table: %w", err)
	}

	rejectDuplicates(readings)

	var state TableState
	state.Readings = readings
	var hero, board []stabilizer.Reading
	for _, r := range readings {
		sr := stabilizer.Reading{Value: string(r.Label), Conf: r.Confidence()}
		if fusion.IsBoardSlot(r.Slot) {
			state.Board = append(state.Board, r.Label)
			board = append(board, sr)
		} else {
			state.Hero = append(state.Hero, r.Label)
			hero = append(hero, sr)
		}
	}
	state.StableHero = t.stable.PushHero(hero)
	state.StableBoard = t.stable.PushBoard(board)
	return state, nil
}

func (t *Table) readSlot(frame image.Image, name string) Reading {
	slot := t.reader.profile.Slots[name]
	rel, err := slot.CardRect()
	if err != nil {
		return t.reader.ReadCard(nil, name)
	}
	b := frame.Bounds()
	rect := rel.ToAbs(b.Dx(), b.Dy()).Image(b.Min)
	patch, err := region.Crop(frame, rect)
	if err != nil {
		return t.reader.ReadCard(nil, name)
	}
	return t.reader.ReadCard(patch, name)
}

// rejectDuplicates clears labels that repeat a card already read in another
// slot. A deck holds each card once, so the weaker reading is a misread.
func rejectDuplicates(readings []Reading) {
	owner := make(map[poker.Card]int)
	for i, r := range readings {
		if r.Label == "" {
			continue
		}
		pc, err := r.Label.PokerCard()
		if err != nil {
			drop(&readings[i], "invalid card")
			continue
		}
		j, seen := owner[pc]
		if !seen {
			owner[pc] = i
			continue
		}
		if r.Confidence() > readings[j].Confidence() {
			drop(&readings[j], "duplicate of "+r.Slot)
			owner[pc] = i
		} else {
			drop(&readings[i], "duplicate of "+readings[j].Slot)
		}
	}
}

func drop(r *Reading, reason string) {
	r.Diagnostics["reason"] = reason
	r.Diagnostics["rejected_label"] = string(r.Label)
	r.Label = ""
}
