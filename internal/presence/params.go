package presence

// DefaultParams returns presence thresholds for hero (player hole card) slots.
func DefaultParams() Params {
	return Params{
		// Canny hysteresis
		CannyLow:  50,
		CannyHigh: 150,

		// Edge density treated as a fully textured card face
		EdgeRef: 0.10,

		// Near-white card stock: bright and unsaturated
		WhiteValMin: 200,
		WhiteSatMax: 40,

		WeightEdge:    0.4,
		WeightWhite:   0.3,
		WeightContour: 0.3,

		MinEdge:  0.02,
		MinWhite: 0.10,
		MinScore: 0.15,
	}
}

// BoardParams returns the looser thresholds used for community card slots,
// which are rendered smaller and often partly animated.
func BoardParams() Params {
	return DefaultParams().WithMinimums(0.01, 0.05).WithMinScore(0.10)
}

// WithMinimums returns a copy of params with custom edge and white minimums.
func (p Params) WithMinimums(minEdge, minWhite float64) Params {
	p.MinEdge = minEdge
	p.MinWhite = minWhite
	return p
}

// WithMinScore returns a copy of params with a custom minimum card score.
func (p Params) WithMinScore(score float64) Params {
	p.MinScore = score
	return p
}

// WithWeights returns a copy of params with custom score weights.
func (p Params) WithWeights(edge, white, contour float64) Params {
	p.WeightEdge = edge
	p.WeightWhite = white
	p.WeightContour = contour
	return p
}

// WithEdgeRef returns a copy of params with a custom full-texture edge density.
func (p Params) WithEdgeRef(ref float64) Params {
	p.EdgeRef = ref
	return p
}
