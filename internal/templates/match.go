package templates

import (
	"math"

	"pokervision/internal/imgproc"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

// Template matching scales, relative to the query height.
var (
	RankScales = []float64{0.7, 0.85, 1.0}
	SuitScales = []float64{0.6, 0.8, 1.0}
)

// Match is the best template hit.
type Match struct {
	Label string
	Score float64
}

// MatchRank returns the rank template with the highest normalized
// cross-correlation against a query binarized at RankHeight.
func (b *Bank) MatchRank(query gocv.Mat) Match {
	return matchBest(query, b.Ranks, RankScales, nil)
}

// MatchSuit matches a query binarized at SuitHeight against the suit
// templates, optionally restricted to some labels.
func (b *Bank) MatchSuit(query gocv.Mat, labels []string) Match {
	return matchBest(query, b.Suits, SuitScales, labels)
}

func matchBest(query gocv.Mat, ts []Template, scales []float64, labels []string) Match {
	best := Match{}
	for _, t := range ts {
		if labels != nil && !contains(labels, t.Label) {
			continue
		}
		if s := imgproc.MatchScaled(query, t.Bin, scales); s > best.Score {
			best = Match{Label: t.Label, Score: s}
		}
	}
	return best
}

// Neighbour is a nearest-neighbour result over Hu descriptors.
type Neighbour struct {
	Label  string
	D1     float64 // distance to the best entry
	D2     float64 // distance to the best entry of another label, D1+1 when absent
	Margin float64
}

// Confidence maps distances to [0,0.99]: closeness and separation from the
// runner-up contribute equally.
func (n Neighbour) Confidence() float64 {
	if n.Label == "" {
		return 0
	}
	conf := 0.5/(1+n.D1) + 0.5*math.Min(1, n.Margin/(n.D1+0.5))
	return math.Min(0.99, conf)
}

// NearestRank finds the rank template nearest to a log Hu vector.
func (b *Bank) NearestRank(logHu []float64) Neighbour {
	return nearest(logHu, b.Ranks, nil)
}

// NearestSuit finds the suit template nearest to a log Hu vector among the
// given labels.
func (b *Bank) NearestSuit(logHu []float64, labels []string) Neighbour {
	return nearest(logHu, b.Suits, labels)
}

func nearest(q []float64, ts []Template, labels []string) Neighbour {
	best := Neighbour{D1: math.Inf(1), D2: math.Inf(1)}
	for _, t := range ts {
		if !t.HasShape || len(t.LogHu) != len(q) {
			continue
		}
		if labels != nil && !contains(labels, t.Label) {
			continue
		}
		d := floats.Distance(q, t.LogHu, 2)
		switch {
		case d < best.D1:
			if best.Label != t.Label {
				best.D2 = best.D1
			}
			best.Label, best.D1 = t.Label, d
		case t.Label != best.Label && d < best.D2:
			best.D2 = d
		}
	}
	if best.Label == "" {
		return Neighbour{}
	}
	if math.IsInf(best.D2, 1) {
		best.D2 = best.D1 + 1
	}
	best.Margin = math.Max(0, best.D2-best.D1)
	return best
}
