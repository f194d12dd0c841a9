// Package card defines the card symbols, recognition results and labels
// shared by the recognizers, the fusion policy and the table reader.
package card

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulhankin/poker"
)

// RankAlphabet lists the 13 rank symbols, lowest first.
const RankAlphabet = "23456789TJQKA"

// SuitAlphabet lists the 4 suit symbols.
const SuitAlphabet = "hdsc"

// Errors surfaced in diagnostics. None of them escapes the table reader.
var (
	ErrEmptyPatch    = errors.New("empty patch")
	ErrLowConfidence = errors.New("low confidence")
	ErrRecognizer    = errors.New("recognizer failure")
)

// Source indicates which recognizer path produced a value.
type Source int

const (
	// SourceNone means no value was produced.
	SourceNone Source = iota
	// SourceOCR indicates a character-recognition read.
	SourceOCR
	// SourceTemplate indicates template matching (NCC or Hu nearest neighbour).
	SourceTemplate
	// SourceGeometry indicates the contour aspect/angle/solidity heuristic.
	SourceGeometry
	// SourceColor indicates the red/black color fallback.
	SourceColor
)

func (s Source) String() string {
	switch s {
	case SourceOCR:
		return "ocr"
	case SourceTemplate:
		return "template"
	case SourceGeometry:
		return "geometry"
	case SourceColor:
		return "color-fallback"
	default:
		return "none"
	}
}

// IsRank reports whether s is one of the 13 rank symbols.
func IsRank(s string) bool {
	return len(s) == 1 && strings.Contains(RankAlphabet, s)
}

// IsSuit reports whether s is one of the 4 suit symbols.
func IsSuit(s string) bool {
	return len(s) == 1 && strings.Contains(SuitAlphabet, s)
}

// IsRed reports whether the suit symbol belongs to the red family.
func IsRed(suit string) bool {
	return suit == "h" || suit == "d"
}

// Result is the output of a single field recognizer.
type Result struct {
	Value       string // "" when the recognizer abstained
	Confidence  float64
	Source      Source
	Diagnostics Diagnostics
}

// Empty reports whether no value was produced.
func (r Result) Empty() bool {
	return r.Value == ""
}

// Abstain returns an empty result carrying the error in its diagnostics.
func Abstain(err error) Result {
	d := Diagnostics{}
	if err != nil {
		d["error"] = err.Error()
	}
	return Result{Diagnostics: d}
}

// Recovered converts a recovered panic from an image-processing call into an
// abstention tagged with ErrRecognizer.
func Recovered(field string, r any) Result {
	return Abstain(fmt.Errorf("%s: %w: %v", field, ErrRecognizer, r))
}

// Clamp returns the result with a confidence forced into [0,1]. A NaN
// confidence becomes 0.
func (r Result) Clamp() Result {
	r.Confidence = ClampConfidence(r.Confidence)
	if r.Diagnostics == nil {
		r.Diagnostics = Diagnostics{}
	}
	return r
}

// ClampConfidence forces c into [0,1].
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Label is an accepted card such as "Ah". The zero value means no card.
type Label string

// NewLabel joins a rank and a suit symbol. It returns an error when either
// symbol is outside its alphabet.
func NewLabel(rank, suit string) (Label, error) {
	if !IsRank(rank) || !IsSuit(suit) {
		return "", fmt.Errorf("invalid card %q%q", rank, suit)
	}
	return Label(rank + suit), nil
}

// ParseLabel validates a two-character label. "10h" is accepted for "Th".
func ParseLabel(s string) (Label, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return "", fmt.Errorf("invalid card %q", s)
	}
	return NewLabel(strings.ToUpper(s[:1]), strings.ToLower(s[1:]))
}

// Valid reports whether the label holds a real card.
func (l Label) Valid() bool {
	return len(l) == 2 && IsRank(string(l[0])) && IsSuit(string(l[1]))
}

// Rank returns the rank symbol, or "" for an empty label.
func (l Label) Rank() string {
	if !l.Valid() {
		return ""
	}
	return string(l[0])
}

// Suit returns the suit symbol, or "" for an empty label.
func (l Label) Suit() string {
	if !l.Valid() {
		return ""
	}
	return string(l[1])
}

// PokerCard converts the label into the hand evaluator's card type.
func (l Label) PokerCard() (poker.Card, error) {
	if !l.Valid() {
		return 0, fmt.Errorf("invalid card %q", string(l))
	}
	var suit poker.Suit
	switch l.Suit() {
	case "c":
		suit = poker.Club
	case "d":
		suit = poker.Diamond
	case "h":
		suit = poker.Heart
	case "s":
		suit = poker.Spade
	}
	// Evaluator ranks run Ace=1, 2..10, J=11, Q=12, K=13.
	rank := poker.Rank(strings.Index(RankAlphabet, l.Rank()) + 2)
	if l.Rank() == "A" {
		rank = 1
	}
	return poker.MakeCard(suit, rank)
}

func (l Label) String() string {
	if l == "" {
		return "--"
	}
	return string(l)
}
