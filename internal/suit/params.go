package suit

// Params holds the suit recognition thresholds.
type Params struct {
	Height  int     // binarized height
	MinArea float64 // smallest usable glyph contour

	// Share of red pixels above which the pip counts as red
	RedRatioMin float64

	// Hu nearest-neighbour refinement triggers
	RefineMargin float64
	RefineConf   float64

	// Diamond: a square-ish convex shape standing on a corner
	DiamondAngleTol    float64
	DiamondAspectMin   float64
	DiamondSolidityMin float64
	RedRefineConf      float64

	// Club: round overall but notched between the leaves
	ClubAspectMin     float64
	ClubSolidityMin   float64
	BlackRefineConf   float64
	GeometryRedConf   float64
	GeometryBlackConf float64

	// Template matching runs below this shape confidence
	TemplateBelow float64
	// Below this confidence the color decides a missing label
	ColorFloorBelow float64
	ColorFloorConf  float64
}

// DefaultParams returns the default suit thresholds.
func DefaultParams() Params {
	return Params{
		Height:  120,
		MinArea: 12,

		RedRatioMin: 0.04,

		RefineMargin: 0.15,
		RefineConf:   0.4,

		DiamondAngleTol:    15,
		DiamondAspectMin:   0.75,
		DiamondSolidityMin: 0.90,
		RedRefineConf:      0.65,

		ClubAspectMin:     0.85,
		ClubSolidityMin:   0.93,
		BlackRefineConf:   0.60,
		GeometryRedConf:   0.60,
		GeometryBlackConf: 0.55,

		TemplateBelow:   0.70,
		ColorFloorBelow: 0.70,
		ColorFloorConf:  0.5,
	}
}

// WithRedRatio returns a copy of params with a custom red pixel threshold.
func (p Params) WithRedRatio(ratio float64) Params {
	p.RedRatioMin = ratio
	return p
}

// WithRefine returns a copy of params with custom Hu refinement triggers.
func (p Params) WithRefine(margin, conf float64) Params {
	p.RefineMargin = margin
	p.RefineConf = conf
	return p
}

// WithFloors returns a copy of params with custom template and color floor
// thresholds.
func (p Params) WithFloors(templateBelow, colorBelow, colorConf float64) Params {
	p.TemplateBelow = templateBelow
	p.ColorFloorBelow = colorBelow
	p.ColorFloorConf = colorConf
	return p
}
