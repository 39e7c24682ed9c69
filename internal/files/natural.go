package files

import (
	"sort"
	"strings"
)

// Chunk is one piece of a natural sort key: a run of digits or a run of
// anything else.
type Chunk struct {
	Text    string
	Digits  bool
	Numeric string // digit run without leading zeros, "0" for all zeros
}

// SortKey splits name into alternating text and digit chunks.
// The key always starts with a text chunk, which may be empty, so keys of
// different names line up chunk for chunk.
func SortKey(name string) []Chunk {
	var key []Chunk
	start := 0
	inDigits := false
	flush := func(end int) {
		text := name[start:end]
		c := Chunk{Text: text, Digits: inDigits}
		if inDigits {
			c.Numeric = strings.TrimLeft(text, "0")
			if c.Numeric == "" {
				c.Numeric = "0"
			}
		}
		key = append(key, c)
		start = end
	}

	for i := 0; i < len(name); i++ {
		d := isDigit(name[i])
		if d != inDigits {
			flush(i)
			inDigits = d
		}
	}
	flush(len(name))
	return key
}

// NaturalLess orders names with digit runs compared by numeric value.
// Names that compare equal chunk for chunk ("f1" and "f01") fall back to a
// plain string compare so the order is total.
func NaturalLess(a, b string) bool {
	ka, kb := SortKey(a), SortKey(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		if c := compareChunk(ka[i], kb[i]); c != 0 {
			return c < 0
		}
	}
	if len(ka) != len(kb) {
		return len(ka) < len(kb)
	}
	return a < b
}

// NaturalSort sorts names in place in natural order
func NaturalSort(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })
}

func compareChunk(a, b Chunk) int {
	if a.Digits && b.Digits {
		// Arbitrary length digit runs: longer significant part is larger.
		if len(a.Numeric) != len(b.Numeric) {
			if len(a.Numeric) < len(b.Numeric) {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Numeric, b.Numeric)
	}
	return strings.Compare(a.Text, b.Text)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
