// Package stabilizer smooths per-slot card readings over consecutive polls so
// that a single misread frame does not flip the reported card.
package stabilizer

import (
	"sync"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the number of recent readings considered.
const DefaultWindow = 3

// Promotion rule: a value becomes stable when seen this often in the window
// or read with at least this mean confidence.
const (
	MinOccurrences = 2
	MinMeanConf    = 0.75
)

type reading struct {
	value string
	conf  float64
}

// Field stabilizes a single slot. It is not safe for concurrent use; Cards
// wraps its fields in a mutex.
type Field struct {
	k      int
	window []reading
	stable string
}

// NewField creates a field stabilizer with a window of k readings. k < 1
// selects DefaultWindow.
func NewField(k int) *Field {
	if k < 1 {
		k = DefaultWindow
	}
	return &Field{k: k, window: make([]reading, 0, k)}
}

// Push records a reading and returns the stable value. An empty value is an
// absent reading with zero confidence.
func (f *Field) Push(value string, conf float64) string {
	if value == "" {
		conf = 0
	}
	if len(f.window) == f.k {
		copy(f.window, f.window[1:])
		f.window = f.window[:f.k-1]
	}
	f.window = append(f.window, reading{value: value, conf: conf})

	// Weighted vote; ties go to the value seen first in the window.
	var order []string
	scores := map[string]float64{}
	for _, r := range f.window {
		if r.value == "" {
			continue
		}
		if _, ok := scores[r.value]; !ok {
			order = append(order, r.value)
		}
		scores[r.value] += 1 + 0.5*r.conf
	}
	if len(order) == 0 {
		return f.stable
	}
	best := order[0]
	for _, v := range order[1:] {
		if scores[v] > scores[best] {
			best = v
		}
	}

	var confs []float64
	for _, r := range f.window {
		if r.value == best {
			confs = append(confs, r.conf)
		}
	}
	if len(confs) >= MinOccurrences || stat.Mean(confs, nil) >= MinMeanConf {
		f.stable = best
	}
	return f.stable
}

// Stable returns the current stable value.
func (f *Field) Stable() string {
	return f.stable
}

// Reset clears the window and the stable value.
func (f *Field) Reset() {
	f.window = f.window[:0]
	f.stable = ""
}

// Reading is one slot observation.
type Reading struct {
	Value string
	Conf  float64
}

// Cards stabilizes the two hero slots and the five board slots. It is safe
// for concurrent use.
type Cards struct {
	mu    sync.Mutex
	hero  [2]*Field
	board [5]*Field
}

// NewCards creates a stabilizer for a full table.
func NewCards(k int) *Cards {
	c := &Cards{}
	for i := range c.hero {
		c.hero[i] = NewField(k)
	}
	for i := range c.board {
		c.board[i] = NewField(k)
	}
	return c
}

// PushHero records hero readings; missing slots count as absent.
func (c *Cards) PushHero(readings []Reading) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return push(c.hero[:], readings)
}

// PushBoard records board readings; missing slots count as absent.
func (c *Cards) PushBoard(readings []Reading) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return push(c.board[:], readings)
}

// Reset clears every slot, typically when a new hand starts.
func (c *Cards) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.hero {
		f.Reset()
	}
	for _, f := range c.board {
		f.Reset()
	}
}

func push(fields []*Field, readings []Reading) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		var r Reading
		if i < len(readings) {
			r = readings[i]
		}
		out[i] = f.Push(r.Value, r.Conf)
	}
	return out
}
