package ocr

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"pokervision/internal/card"
)

// tenReadings are the ways Tesseract spells a printed 10.
var tenReadings = strings.NewReplacer("10", "T", "IO", "T", "TO", "T", "I0", "T")

// NormalizeRank maps raw OCR output onto a single rank symbol, or "" when no
// rank symbol is present.
func NormalizeRank(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.ToUpper(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = tenReadings.Replace(s)
	for _, r := range s {
		if card.IsRank(string(r)) {
			return string(r)
		}
	}
	return ""
}
