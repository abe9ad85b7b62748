package services

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerbaras/comicmerge/pkg/data"
)

// outputEntries lists the entry names of a finished archive in write order.
func outputEntries(t *testing.T, path string) []string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func testOptions(outputPath string) data.MergeOptions {
	return data.MergeOptions{
		OutputPath: outputPath,
		Formats:    append([]string(nil), data.SupportedFormats...),
	}
}

func TestMergeTwoSourcesNaturalOrder(t *testing.T) {
	tmpDir := t.TempDir()

	srcA := filepath.Join(tmpDir, "a.cbz")
	createTestArchive(t, srcA, []zipEntry{
		{"2.jpg", []byte("two")},
		{"1.jpg", []byte("one")},
		{"10.jpg", []byte("ten")},
	})

	srcB := filepath.Join(tmpDir, "b.cbz")
	createTestArchive(t, srcB, []zipEntry{
		{"b.png", []byte("bee")},
	})

	merger := NewMerger()
	output := filepath.Join(tmpDir, "merged.cbz")
	result, err := merger.Merge([]data.SourceEntry{
		{Path: srcA, Kind: data.KindCBZ},
		{Path: srcB, Kind: data.KindCBZ},
	}, testOptions(output))
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalPages)
	assert.Equal(t, 2, result.Sources)
	assert.Equal(t,
		[]string{"ch1_001.jpg", "ch1_002.jpg", "ch1_003.jpg", "ch2_001.png"},
		outputEntries(t, output),
	)
}

func TestMergeZipSourceThroughExtractor(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.zip")
	createTestArchive(t, src, []zipEntry{
		{"a.txt", []byte("text")},
		{"img1.jpg", []byte("jpg1")},
		{"img2.gif", []byte("gif2")},
	})

	merger := NewMerger()
	output := filepath.Join(tmpDir, "merged.cbz")
	opts := testOptions(output)
	opts.Formats = []string{"jpg"}

	result, err := merger.Merge([]data.SourceEntry{
		{Path: src, Kind: data.KindZIP},
	}, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalPages)
	assert.Equal(t, []string{"ch1_001.jpg"}, outputEntries(t, output))
}

func TestMergeDeterministic(t *testing.T) {
	tmpDir := t.TempDir()

	srcA := filepath.Join(tmpDir, "a.cbz")
	createTestArchive(t, srcA, []zipEntry{
		{"5.jpg", []byte("five")},
		{"3.jpg", []byte("three")},
	})
	srcB := filepath.Join(tmpDir, "b.zip")
	createTestArchive(t, srcB, []zipEntry{
		{"x.png", []byte("ex")},
	})

	sources := []data.SourceEntry{
		{Path: srcA, Kind: data.KindCBZ},
		{Path: srcB, Kind: data.KindZIP},
	}

	out1 := filepath.Join(tmpDir, "m1.cbz")
	out2 := filepath.Join(tmpDir, "m2.cbz")

	_, err := NewMerger().Merge(sources, testOptions(out1))
	require.NoError(t, err)
	_, err = NewMerger().Merge(sources, testOptions(out2))
	require.NoError(t, err)

	b1, err := os.ReadFile(out1)
	require.NoError(t, err)
	b2, err := os.ReadFile(out2)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(b1, b2), "same sources in same order must produce byte-identical output")
}

func TestMergeStrictFailureLeavesNoOutput(t *testing.T) {
	tmpDir := t.TempDir()

	good := filepath.Join(tmpDir, "good.cbz")
	createTestArchive(t, good, []zipEntry{
		{"1.jpg", []byte("one")},
	})

	bad := filepath.Join(tmpDir, "bad.cbz")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0644))

	outDir := filepath.Join(tmpDir, "out")
	output := filepath.Join(outDir, "merged.cbz")
	opts := testOptions(output)
	opts.Strict = true

	merger := NewMerger()
	_, err := merger.Merge([]data.SourceEntry{
		{Path: good, Kind: data.KindCBZ},
		{Path: bad, Kind: data.KindCBZ},
	}, opts)
	require.Error(t, err)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "failed merge must leave no output file")

	// No stray temporary files either.
	leftovers, _ := os.ReadDir(outDir)
	assert.Empty(t, leftovers)
}

func TestMergeLenientSkipsBadSource(t *testing.T) {
	tmpDir := t.TempDir()

	good := filepath.Join(tmpDir, "good.cbz")
	createTestArchive(t, good, []zipEntry{
		{"1.jpg", []byte("one")},
	})

	bad := filepath.Join(tmpDir, "bad.cbz")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0644))

	output := filepath.Join(tmpDir, "merged.cbz")

	merger := NewMerger()
	result, err := merger.Merge([]data.SourceEntry{
		{Path: bad, Kind: data.KindCBZ},
		{Path: good, Kind: data.KindCBZ},
	}, testOptions(output))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Sources)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, bad, result.Skipped[0].Source)

	// The surviving source becomes chapter 2: list position is chapter order
	// even when an earlier source is skipped.
	assert.Equal(t, []string{"ch2_001.jpg"}, outputEntries(t, output))
}

func TestMergeUnsafeEntryWarnsLenient(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.cbz")
	createTestArchive(t, src, []zipEntry{
		{"../../etc/passwd.jpg", []byte("evil")},
		{"ok.jpg", []byte("fine")},
	})

	output := filepath.Join(tmpDir, "merged.cbz")
	merger := NewMerger()
	result, err := merger.Merge([]data.SourceEntry{
		{Path: src, Kind: data.KindCBZ},
	}, testOptions(output))
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "../../etc/passwd.jpg", result.Skipped[0].Entry)
	assert.Equal(t, []string{"ch1_001.jpg"}, outputEntries(t, output))
}

func TestMergeCollisionRenumbersFromStreamPosition(t *testing.T) {
	tmpDir := t.TempDir()

	srcA := filepath.Join(tmpDir, "a.cbz")
	createTestArchive(t, srcA, []zipEntry{
		{"1.jpg", []byte("a1")},
		{"2.jpg", []byte("a2")},
	})
	srcB := filepath.Join(tmpDir, "b.cbz")
	createTestArchive(t, srcB, []zipEntry{
		{"1.jpg", []byte("b1")},
	})

	// Both sources claim chapter 1, so B's first page would collide with
	// ch1_001.jpg and must take its position in the concatenated stream.
	output := filepath.Join(tmpDir, "merged.cbz")
	merger := NewMerger()
	_, err := merger.Merge([]data.SourceEntry{
		{Path: srcA, Kind: data.KindCBZ, Chapter: 1},
		{Path: srcB, Kind: data.KindCBZ, Chapter: 1},
	}, testOptions(output))
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"ch1_001.jpg", "ch1_002.jpg", "ch1_003.jpg"},
		outputEntries(t, output),
	)
}

func TestMergeComicInfoPassthrough(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.cbz")
	createTestArchive(t, src, []zipEntry{
		{"1.jpg", []byte("one")},
		{"ComicInfo.xml", []byte("<ComicInfo><Title>Kept</Title></ComicInfo>")},
	})

	output := filepath.Join(tmpDir, "merged.cbz")
	merger := NewMerger()
	_, err := merger.Merge([]data.SourceEntry{
		{Path: src, Kind: data.KindCBZ},
	}, testOptions(output))
	require.NoError(t, err)

	assert.Contains(t, outputEntries(t, output), "ComicInfo.xml")
}

func TestMergeMalformedComicInfoOmitted(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.cbz")
	createTestArchive(t, src, []zipEntry{
		{"1.jpg", []byte("one")},
		{"ComicInfo.xml", []byte("<ComicInfo><broken")},
	})

	output := filepath.Join(tmpDir, "merged.cbz")
	merger := NewMerger()
	_, err := merger.Merge([]data.SourceEntry{
		{Path: src, Kind: data.KindCBZ},
	}, testOptions(output))
	require.NoError(t, err)

	assert.NotContains(t, outputEntries(t, output), "ComicInfo.xml")
}

func TestMergeSynthesizedComicInfo(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.cbz")
	createTestArchive(t, src, []zipEntry{
		{"1.jpg", []byte("one")},
	})

	output := filepath.Join(tmpDir, "merged.cbz")
	opts := testOptions(output)
	opts.WriteComicInfo = true

	merger := NewMerger()
	_, err := merger.Merge([]data.SourceEntry{
		{Path: src, Kind: data.KindCBZ},
	}, opts)
	require.NoError(t, err)

	assert.Contains(t, outputEntries(t, output), "ComicInfo.xml")
}

func TestMergeRejectsBadOutputExtension(t *testing.T) {
	merger := NewMerger()
	_, err := merger.Merge(
		[]data.SourceEntry{{Path: "x.cbz", Kind: data.KindCBZ}},
		data.MergeOptions{OutputPath: "out.zip", Formats: []string{"jpg"}},
	)
	assert.Error(t, err)
}

func TestMergeNoFormatsSelected(t *testing.T) {
	merger := NewMerger()
	_, err := merger.Merge(
		[]data.SourceEntry{{Path: "x.cbz", Kind: data.KindCBZ}},
		data.MergeOptions{OutputPath: "out.cbz"},
	)
	assert.ErrorIs(t, err, ErrNoFormatsSelected)
}

func TestMergeNoSources(t *testing.T) {
	merger := NewMerger()
	_, err := merger.Merge(nil, testOptions("out.cbz"))
	assert.Error(t, err)
}

func TestMergeOperationInProgress(t *testing.T) {
	merger := NewMerger()
	merger.inFlight.Store(true)

	_, err := merger.Merge(
		[]data.SourceEntry{{Path: "x.cbz", Kind: data.KindCBZ}},
		testOptions("out.cbz"),
	)
	assert.ErrorIs(t, err, ErrOperationInProgress)
}

func TestWriteDirectHonorsCancellation(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.cbz")
	createTestArchive(t, src, []zipEntry{
		{"1.jpg", []byte("one")},
	})

	merger := NewMerger()
	merger.cancelled.Store(true)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	defer zw.Close()

	st := &mergeState{used: make(map[string]bool), totalSources: 1}
	err := merger.writeDirect(zw, data.SourceEntry{Path: src, Kind: data.KindCBZ}, 1, testOptions("out.cbz"), st)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, st.entriesWritten)
}

func TestWriteExtractedStopsStagingWhenCancelled(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.zip")
	createTestArchive(t, src, []zipEntry{
		{"1.jpg", []byte("one")},
		{"2.jpg", []byte("two")},
		{"3.jpg", []byte("three")},
	})

	merger := NewMerger()
	merger.cancelled.Store(true)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	defer zw.Close()

	staging := filepath.Join(tmpDir, "staging")
	st := &mergeState{used: make(map[string]bool), totalSources: 1}
	err := merger.writeExtracted(zw, data.SourceEntry{Path: src, Kind: data.KindZIP}, 1, staging, testOptions("out.cbz"), st)
	assert.ErrorIs(t, err, ErrCancelled)

	staged, _ := os.ReadDir(filepath.Join(staging, "ch1"))
	assert.Empty(t, staged, "no pages may be staged after cancellation")
	assert.Zero(t, st.entriesWritten)
}

func TestCancelBeforeMergeHonored(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.cbz")
	createTestArchive(t, src, []zipEntry{
		{"1.jpg", []byte("one")},
	})

	output := filepath.Join(tmpDir, "merged.cbz")
	merger := NewMerger()
	merger.Cancel()

	_, err := merger.Merge([]data.SourceEntry{{Path: src, Kind: data.KindCBZ}}, testOptions(output))
	assert.ErrorIs(t, err, ErrCancelled)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))

	// The request is consumed: the next merge on the same instance runs.
	result, err := merger.Merge([]data.SourceEntry{{Path: src, Kind: data.KindCBZ}}, testOptions(output))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalPages)
}

func TestMergeComicInfoFromSurvivingSource(t *testing.T) {
	tmpDir := t.TempDir()

	// Valid metadata but zero qualifying images: skipped in lenient mode and
	// must not contribute its ComicInfo.xml.
	empty := filepath.Join(tmpDir, "empty.cbz")
	createTestArchive(t, empty, []zipEntry{
		{"notes.txt", []byte("text")},
		{"ComicInfo.xml", []byte("<ComicInfo><Title>Skipped</Title></ComicInfo>")},
	})

	survivor := filepath.Join(tmpDir, "survivor.cbz")
	createTestArchive(t, survivor, []zipEntry{
		{"1.jpg", []byte("one")},
		{"ComicInfo.xml", []byte("<ComicInfo><Title>Survivor</Title></ComicInfo>")},
	})

	output := filepath.Join(tmpDir, "merged.cbz")
	merger := NewMerger()
	result, err := merger.Merge([]data.SourceEntry{
		{Path: empty, Kind: data.KindCBZ},
		{Path: survivor, Kind: data.KindCBZ},
	}, testOptions(output))
	require.NoError(t, err)
	require.Len(t, result.Skipped, 1)

	zr, err := zip.OpenReader(output)
	require.NoError(t, err)
	defer zr.Close()

	var meta []byte
	for _, f := range zr.File {
		if f.Name != "ComicInfo.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		meta, err = io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
	}
	require.NotNil(t, meta)
	assert.Contains(t, string(meta), "Survivor")
}

func TestMergeZipSourceEmitsExtractionTicks(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.zip")
	createTestArchive(t, src, []zipEntry{
		{"1.jpg", []byte("a")},
		{"2.jpg", []byte("b")},
		{"3.jpg", []byte("c")},
	})

	merger := NewMerger()
	output := filepath.Join(tmpDir, "merged.cbz")
	_, err := merger.Merge([]data.SourceEntry{{Path: src, Kind: data.KindZIP}}, testOptions(output))
	require.NoError(t, err)
	merger.Close()

	extracting := 0
	for progress := range merger.GetProgressChannel() {
		if progress.Phase == data.PhaseExtracting {
			extracting++
			assert.Equal(t, src, progress.CurrentSource)
		}
	}
	// One snapshot when the source starts plus one per staged entry.
	assert.GreaterOrEqual(t, extracting, 4)
}

func TestMergeProgressMonotonic(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "src.cbz")
	var entries []zipEntry
	for i := 0; i < 20; i++ {
		entries = append(entries, zipEntry{
			name: filepath.Base(tmpDir) + "-" + string(rune('a'+i)) + ".jpg",
			body: []byte{byte(i)},
		})
	}
	createTestArchive(t, src, entries)

	merger := NewMerger()
	output := filepath.Join(tmpDir, "merged.cbz")
	opts := testOptions(output)
	opts.ProgressEvery = 4

	_, err := merger.Merge([]data.SourceEntry{{Path: src, Kind: data.KindCBZ}}, opts)
	require.NoError(t, err)
	merger.Close()

	written := 0
	sawDone := false
	for progress := range merger.GetProgressChannel() {
		require.GreaterOrEqual(t, progress.EntriesWritten, written)
		written = progress.EntriesWritten
		if progress.Phase == data.PhaseDone {
			sawDone = true
		}
	}
	assert.True(t, sawDone)
	assert.Equal(t, 20, written)
}
