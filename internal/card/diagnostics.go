package card

import (
	"fmt"
	"sort"
	"strings"
)

// Diagnostics is a free-form key/value record attached to every result so
// that callers can see why a field was accepted or rejected.
type Diagnostics map[string]any

// Merge copies every entry of other into d, optionally prefixing keys.
func (d Diagnostics) Merge(prefix string, other Diagnostics) {
	for k, v := range other {
		d[prefix+k] = v
	}
}

// Float returns a numeric entry.
func (d Diagnostics) Float(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// String returns a string entry or "".
func (d Diagnostics) String(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// Bool returns a boolean entry.
func (d Diagnostics) Bool(key string) bool {
	v, _ := d[key].(bool)
	return v
}

// Format renders the diagnostics as sorted "key=value" pairs.
func (d Diagnostics) Format() string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := d[k].(type) {
		case float64:
			parts = append(parts, fmt.Sprintf("%s=%.3f", k, v))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}
