package archive

import (
	"sort"
	"strings"

	"github.com/kerbaras/comicmerge/pkg/data"
)

// Compare orders two entry names naturally: runs of digits compare by
// numeric value (leading zeros ignored), everything else compares as text.
// It is a pure total order, so "page2" sorts before "page10".
func Compare(a, b string) int {
	for a != "" && b != "" {
		runA, restA, numA := nextRun(a)
		runB, restB, numB := nextRun(b)

		if numA && numB {
			if c := compareNumeric(runA, runB); c != 0 {
				return c
			}
		} else {
			if c := strings.Compare(runA, runB); c != 0 {
				return c
			}
		}

		a, b = restA, restB
	}

	// Shorter name first when one is a prefix of the other.
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// nextRun splits off the leading run of digits or non-digits.
func nextRun(s string) (run, rest string, numeric bool) {
	numeric = isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == numeric {
		i++
	}
	return s[:i], s[i:], numeric
}

// compareNumeric compares two digit runs by value without parsing them,
// so arbitrarily long runs cannot overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// SortEntries orders archive entries by natural name comparison. The sort is
// stable: entries whose names compare equal keep their archive order.
func SortEntries(entries []data.ArchiveEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Compare(entries[i].Name, entries[j].Name) < 0
	})
}
