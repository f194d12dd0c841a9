package fusion

import "math"

// Thresholds are the acceptance floors. Hero slots use the plain fields,
// board slots the Board* fields.
type Thresholds struct {
	MinRankConf  float64 `yaml:"min_rank_conf"`
	MinSuitConf  float64 `yaml:"min_suit_conf"`
	MinCardScore float64 `yaml:"min_card_score"`

	BoardMinRankConf  float64 `yaml:"board_min_rank_conf"`
	BoardMinSuitConf  float64 `yaml:"board_min_suit_conf"`
	BoardMinCardScore float64 `yaml:"board_min_card_score"`

	// How far below the board floors a field may fall when the pip color
	// is unambiguous
	BoardSuitMargin float64 `yaml:"board_suit_margin"`
	BoardRankMargin float64 `yaml:"board_rank_margin"`

	// Red ratio at or above which the pip is unambiguously red, and at or
	// below which it is unambiguously black
	StrongRedRatio float64 `yaml:"strong_red_ratio"`
	StrongBlackMax float64 `yaml:"strong_black_ratio"`
	ColorPenalty   float64 `yaml:"color_penalty"`
}

// DefaultThresholds returns the default acceptance floors.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinRankConf:  0.92,
		MinSuitConf:  0.70,
		MinCardScore: 0.15,

		BoardMinRankConf:  0.90,
		BoardMinSuitConf:  0.65,
		BoardMinCardScore: 0.10,

		BoardSuitMargin: 0.15,
		BoardRankMargin: 0.06,

		StrongRedRatio: 0.12,
		StrongBlackMax: 0.01,
		ColorPenalty:   0.6,
	}
}

// Validate replaces out-of-range values with their defaults and lowers any
// board floor that exceeds its hero counterpart.
func (t Thresholds) Validate() Thresholds {
	d := DefaultThresholds()
	fix := func(v *float64, def float64) {
		if math.IsNaN(*v) || *v < 0 || *v > 1 {
			*v = def
		}
	}
	fix(&t.MinRankConf, d.MinRankConf)
	fix(&t.MinSuitConf, d.MinSuitConf)
	fix(&t.MinCardScore, d.MinCardScore)
	fix(&t.BoardMinRankConf, d.BoardMinRankConf)
	fix(&t.BoardMinSuitConf, d.BoardMinSuitConf)
	fix(&t.BoardMinCardScore, d.BoardMinCardScore)
	fix(&t.BoardSuitMargin, d.BoardSuitMargin)
	fix(&t.BoardRankMargin, d.BoardRankMargin)
	fix(&t.StrongRedRatio, d.StrongRedRatio)
	fix(&t.StrongBlackMax, d.StrongBlackMax)
	fix(&t.ColorPenalty, d.ColorPenalty)

	t.BoardMinRankConf = math.Min(t.BoardMinRankConf, t.MinRankConf)
	t.BoardMinSuitConf = math.Min(t.BoardMinSuitConf, t.MinSuitConf)
	t.BoardMinCardScore = math.Min(t.BoardMinCardScore, t.MinCardScore)
	return t
}

// Floors returns the rank, suit and card score floors for a slot kind.
func (t Thresholds) Floors(board bool) (rank, suit, score float64) {
	if board {
		return t.BoardMinRankConf, t.BoardMinSuitConf, t.BoardMinCardScore
	}
	return t.MinRankConf, t.MinSuitConf, t.MinCardScore
}
