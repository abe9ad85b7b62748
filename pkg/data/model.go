package data

// SupportedFormats is the full set of image extensions the tool handles,
// lowercase and without the dot.
var SupportedFormats = []string{"jpg", "jpeg", "png", "webp", "gif", "bmp"}

// IsSupportedFormat reports whether ext (lowercase, no dot) is one of the
// supported image formats.
func IsSupportedFormat(ext string) bool {
	for _, f := range SupportedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// SourceKind distinguishes the two accepted container types.
type SourceKind string

const (
	KindCBZ SourceKind = "cbz"
	KindZIP SourceKind = "zip"
)

// SourceEntry is one input archive in the merge order. The position in the
// caller's list is the chapter order; Chapter overrides it when non-zero.
type SourceEntry struct {
	Path    string
	Kind    SourceKind
	Chapter int
}

// ArchiveEntry is a read-only view of one image inside an open archive.
// Bytes are read lazily through the reader, not held here.
type ArchiveEntry struct {
	Name      string
	Extension string
	Size      int64
	Index     int // position in the archive's central directory
}

// ChapterGroup is the ordered page set one source contributes, tagged with
// its 1-based chapter index.
type ChapterGroup struct {
	Chapter int
	Source  string
	Entries []RenamedEntry
}

// RenamedEntry is a page after chapter renaming: the deterministic target
// name plus where its bytes currently live (staging file or source archive).
type RenamedEntry struct {
	TargetName   string
	OriginalName string
	Extension    string
	Chapter      int
	Page         int
	StagedPath   string // set when the bytes were extracted to staging
}

// Phase values for progress snapshots.
const (
	PhaseValidating = "validating"
	PhaseReading    = "reading"
	PhaseExtracting = "extracting"
	PhaseWriting    = "writing"
	PhaseDone       = "done"
	PhaseFailed     = "failed"
	PhaseCancelled  = "cancelled"
)

// MergeProgress is an immutable snapshot of a merge in flight. A new value
// replaces the previous one; observers never see it mutate.
type MergeProgress struct {
	TotalSources     int
	SourcesCompleted int
	CurrentSource    string
	TotalEntries     int
	EntriesWritten   int
	Phase            string
	Error            string
}

// ExtractionProgress is the single-source analog of MergeProgress.
type ExtractionProgress struct {
	Source         string
	CurrentFile    string
	EntriesFound   int
	EntriesWritten int
	Phase          string
	Error          string
}

// Warning records one skipped entry or source and why it was skipped.
type Warning struct {
	Source string
	Entry  string
	Reason string
}

// MergeOptions carries the caller-chosen knobs for one merge invocation.
type MergeOptions struct {
	OutputPath     string
	Formats        []string
	Strict         bool
	WriteComicInfo bool // synthesize a summary ComicInfo.xml when none exists
	ProgressEvery  int  // entries between writing-phase snapshots; 0 = default
}

// MergeResult is the terminal outcome of a successful (or lenient-partial)
// merge.
type MergeResult struct {
	OutputPath string
	TotalPages int
	Sources    int
	Skipped    []Warning
}
