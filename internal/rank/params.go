package rank

// Params holds the rank recognition thresholds.
type Params struct {
	TemplateHeight int // binarized height for template matching
	OCRHeight      int // binarized height fed to OCR

	// Template score accepted without consulting OCR
	FastAccept float64

	// OCR reads below this confidence fall back to templates
	ReconcileBelow float64
	// Q and 9 reads are easily confused; they need this much to stand alone
	AmbiguousBelow float64

	// Q/9 tie-break runs below this OCR confidence
	TieBreakBelow float64
	// Largest-contour aspect under which a Q/9 read becomes Q
	QAspectMax float64
}

// DefaultParams returns the default rank thresholds.
func DefaultParams() Params {
	return Params{
		TemplateHeight: 140,
		OCRHeight:      160,
		FastAccept:     0.92,
		ReconcileBelow: 0.88,
		AmbiguousBelow: 0.97,
		TieBreakBelow:  0.90,
		QAspectMax:     0.45,
	}
}

// WithFastAccept returns a copy of params with a custom template fast-path score.
func (p Params) WithFastAccept(score float64) Params {
	p.FastAccept = score
	return p
}

// WithReconcile returns a copy of params with custom OCR fallback thresholds.
func (p Params) WithReconcile(below, ambiguousBelow float64) Params {
	p.ReconcileBelow = below
	p.AmbiguousBelow = ambiguousBelow
	return p
}

// WithTieBreak returns a copy of params with custom Q/9 tie-break thresholds.
func (p Params) WithTieBreak(below, qAspectMax float64) Params {
	p.TieBreakBelow = below
	p.QAspectMax = qAspectMax
	return p
}
