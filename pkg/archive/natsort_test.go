package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kerbaras/comicmerge/pkg/data"
)

func TestCompareNumericRuns(t *testing.T) {
	assert.Negative(t, Compare("page2", "page10"))
	assert.Positive(t, Compare("page10", "page2"))
	assert.Negative(t, Compare("page2", "page2a"))
	assert.Negative(t, Compare("img9.jpg", "img10.jpg"))
}

func TestCompareLeadingZeros(t *testing.T) {
	// img001 and img1 are the same numeric key; both orders agree.
	assert.Zero(t, Compare("img001", "img1"))
	assert.Zero(t, Compare("img1", "img001"))
	assert.Negative(t, Compare("img001", "img2"))
}

func TestCompareNonNumeric(t *testing.T) {
	assert.Negative(t, Compare("alpha", "beta"))
	assert.Zero(t, Compare("same.png", "same.png"))
	assert.Negative(t, Compare("a", "ab"))
}

func TestCompareMixedRuns(t *testing.T) {
	assert.Negative(t, Compare("ch1_002.jpg", "ch1_010.jpg"))
	assert.Negative(t, Compare("ch2_001.jpg", "ch10_001.jpg"))
	assert.Negative(t, Compare("v1ch2", "v1ch10"))
}

func TestCompareHugeNumbers(t *testing.T) {
	// Longer than any int64; compared by digit length, never parsed.
	a := "p123456789012345678901234567890.jpg"
	b := "p123456789012345678901234567891.jpg"
	assert.Negative(t, Compare(a, b))
}

func TestSortEntries(t *testing.T) {
	entries := []data.ArchiveEntry{
		{Name: "2.jpg", Index: 0},
		{Name: "1.jpg", Index: 1},
		{Name: "10.jpg", Index: 2},
	}

	SortEntries(entries)

	assert.Equal(t, "1.jpg", entries[0].Name)
	assert.Equal(t, "2.jpg", entries[1].Name)
	assert.Equal(t, "10.jpg", entries[2].Name)
}

func TestSortEntriesStable(t *testing.T) {
	// Equal keys keep archive order.
	entries := []data.ArchiveEntry{
		{Name: "img01.jpg", Index: 0},
		{Name: "img1.jpg", Index: 1},
		{Name: "img001.jpg", Index: 2},
	}

	SortEntries(entries)

	assert.Equal(t, 0, entries[0].Index)
	assert.Equal(t, 1, entries[1].Index)
	assert.Equal(t, 2, entries[2].Index)
}
