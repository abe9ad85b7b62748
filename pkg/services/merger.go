package services

import (
	"archive/zip"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/kerbaras/comicmerge/pkg/archive"
	"github.com/kerbaras/comicmerge/pkg/data"
	"github.com/kerbaras/comicmerge/pkg/integrations"
)

// Merger combines ordered CBZ/ZIP sources into a single output CBZ. One
// merge runs at a time per instance; the caller-supplied source order is the
// chapter order.
type Merger struct {
	progressChan chan data.MergeProgress
	inFlight     atomic.Bool
	cancelled    atomic.Bool
}

// NewMerger creates a new Merger instance.
func NewMerger() *Merger {
	return &Merger{
		progressChan: make(chan data.MergeProgress, 100),
	}
}

// GetProgressChannel returns the channel for receiving merge progress
// snapshots.
func (m *Merger) GetProgressChannel() <-chan data.MergeProgress {
	return m.progressChan
}

// Cancel requests cancellation. The engine checks at entry boundaries; the
// temporary output is discarded and never promoted.
func (m *Merger) Cancel() {
	m.cancelled.Store(true)
}

// mergeState accumulates naming and progress bookkeeping across sources.
type mergeState struct {
	used           map[string]bool
	globalPos      int
	totalSources   int
	totalEntries   int
	entriesWritten int
	completed      int
	warnings       []data.Warning
}

// Merge runs one merge to completion. Under strict mode any source or entry
// failure aborts and no file appears at the output path; under lenient mode
// failed sources and entries are skipped and reported as warnings.
func (m *Merger) Merge(sources []data.SourceEntry, opts data.MergeOptions) (*data.MergeResult, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return nil, ErrOperationInProgress
	}
	defer m.inFlight.Store(false)
	// Cleared on exit, not on entry: a Cancel issued before the merge starts
	// must still cancel it.
	defer m.cancelled.Store(false)

	st := &mergeState{used: make(map[string]bool), totalSources: len(sources)}

	m.sendProgress(data.MergeProgress{
		TotalSources: len(sources),
		Phase:        data.PhaseValidating,
	})

	if len(sources) == 0 {
		return nil, m.fail(st, fmt.Errorf("no sources to merge"))
	}
	if len(opts.Formats) == 0 {
		return nil, m.fail(st, ErrNoFormatsSelected)
	}
	if !strings.EqualFold(filepath.Ext(opts.OutputPath), ".cbz") {
		return nil, m.fail(st, fmt.Errorf("output path must use the .cbz extension: %s", opts.OutputPath))
	}

	staging, err := os.MkdirTemp("", "comicmerge-*")
	if err != nil {
		return nil, m.fail(st, fmt.Errorf("failed to create staging directory: %w", err))
	}
	defer os.RemoveAll(staging)

	outDir := filepath.Dir(opts.OutputPath)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, m.fail(st, fmt.Errorf("failed to create output directory: %w", err))
	}

	tmpFile, err := os.CreateTemp(outDir, ".comicmerge-*.tmp")
	if err != nil {
		return nil, m.fail(st, fmt.Errorf("failed to create temporary output: %w", err))
	}
	tmpPath := tmpFile.Name()
	promoted := false
	defer func() {
		if !promoted {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmpFile)

	var comicInfo []byte
	metaResolved := false

	for i, src := range sources {
		if m.cancelled.Load() {
			return nil, m.cancel(st)
		}

		chapter := i + 1
		if src.Chapter > 0 {
			chapter = src.Chapter
		}

		err := m.writeSource(zw, src, chapter, staging, opts, st)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return nil, m.cancel(st)
			}
			if !opts.Strict && sourceSkippable(err) {
				log.Printf("skipping source %s: %v", src.Path, err)
				st.warnings = append(st.warnings, data.Warning{Source: src.Path, Reason: err.Error()})
				continue
			}
			return nil, m.fail(st, fmt.Errorf("source %s: %w", src.Path, err))
		}

		st.completed++
		if !metaResolved {
			// Metadata follows the pages: the first source that actually
			// contributes decides the ComicInfo.xml, not a skipped one.
			metaResolved = true
			comicInfo = m.sourceComicInfo(src.Path)
		}
		m.sendProgress(data.MergeProgress{
			TotalSources:     st.totalSources,
			SourcesCompleted: st.completed,
			CurrentSource:    src.Path,
			TotalEntries:     st.totalEntries,
			EntriesWritten:   st.entriesWritten,
			Phase:            data.PhaseWriting,
		})
	}

	if st.entriesWritten == 0 {
		return nil, m.fail(st, ErrNoPages)
	}

	if comicInfo == nil && opts.WriteComicInfo {
		names := make([]string, len(sources))
		for i, src := range sources {
			names[i] = filepath.Base(src.Path)
		}
		comicInfo, err = integrations.MergedComicInfo(names, st.entriesWritten)
		if err != nil {
			return nil, m.fail(st, fmt.Errorf("failed to build ComicInfo.xml: %w", err))
		}
	}
	if comicInfo != nil {
		w, err := zw.Create("ComicInfo.xml")
		if err == nil {
			_, err = w.Write(comicInfo)
		}
		if err != nil {
			return nil, m.fail(st, fmt.Errorf("failed to write ComicInfo.xml: %w", err))
		}
	}

	if err := zw.Close(); err != nil {
		return nil, m.fail(st, fmt.Errorf("failed to finalize archive: %w", err))
	}
	if err := tmpFile.Close(); err != nil {
		return nil, m.fail(st, fmt.Errorf("failed to flush output: %w", err))
	}
	if err := os.Rename(tmpPath, opts.OutputPath); err != nil {
		return nil, m.fail(st, fmt.Errorf("failed to move output into place: %w", err))
	}
	promoted = true

	m.sendProgress(data.MergeProgress{
		TotalSources:     st.totalSources,
		SourcesCompleted: st.completed,
		TotalEntries:     st.totalEntries,
		EntriesWritten:   st.entriesWritten,
		Phase:            data.PhaseDone,
	})

	return &data.MergeResult{
		OutputPath: opts.OutputPath,
		TotalPages: st.entriesWritten,
		Sources:    st.completed,
		Skipped:    st.warnings,
	}, nil
}

// writeSource streams one source's pages into the open output archive.
// CBZ sources are read directly in archive order; ZIP sources go through the
// extractor and staging first.
func (m *Merger) writeSource(zw *zip.Writer, src data.SourceEntry, chapter int, staging string, opts data.MergeOptions, st *mergeState) error {
	switch src.Kind {
	case data.KindZIP:
		return m.writeExtracted(zw, src, chapter, staging, opts, st)
	default:
		return m.writeDirect(zw, src, chapter, opts, st)
	}
}

// writeDirect reads a CBZ source entry by entry and writes renamed pages
// straight into the output.
func (m *Merger) writeDirect(zw *zip.Writer, src data.SourceEntry, chapter int, opts data.MergeOptions, st *mergeState) error {
	reader, err := archive.Open(src.Path)
	if err != nil {
		return err
	}
	defer reader.Close()

	m.sendProgress(data.MergeProgress{
		TotalSources:     st.totalSources,
		SourcesCompleted: st.completed,
		CurrentSource:    src.Path,
		TotalEntries:     st.totalEntries,
		EntriesWritten:   st.entriesWritten,
		Phase:            data.PhaseReading,
	})

	entries, err := reader.ImageEntries(opts.Formats)
	if err != nil {
		return err
	}
	archive.SortEntries(entries)
	st.totalEntries += len(entries)

	page := 0
	for _, entry := range entries {
		if m.cancelled.Load() {
			return ErrCancelled
		}

		if err := archive.ValidateEntryName(entry.Name); err != nil {
			if opts.Strict {
				return err
			}
			log.Printf("skipping entry %q in %s: %v", entry.Name, src.Path, err)
			st.warnings = append(st.warnings, data.Warning{Source: src.Path, Entry: entry.Name, Reason: err.Error()})
			continue
		}

		content, err := reader.ReadEntry(entry)
		if err != nil {
			if opts.Strict {
				return err
			}
			log.Printf("skipping entry %q in %s: %v", entry.Name, src.Path, err)
			st.warnings = append(st.warnings, data.Warning{Source: src.Path, Entry: entry.Name, Reason: err.Error()})
			continue
		}

		page++
		if err := m.writePage(zw, st, chapter, page, entry.Extension, content); err != nil {
			return err
		}

		m.batchProgress(src.Path, opts, st)
	}

	if page == 0 {
		return fmt.Errorf("%w: %s", ErrNoPages, src.Path)
	}
	return nil
}

// writeExtracted runs a ZIP source through the extractor into staging, then
// copies the staged chapter into the output. The extractor observes the
// merger's cancellation flag, and its per-entry snapshots are forwarded as
// extracting-phase merge progress.
func (m *Merger) writeExtracted(zw *zip.Writer, src data.SourceEntry, chapter int, staging string, opts data.MergeOptions, st *mergeState) error {
	base := data.MergeProgress{
		TotalSources:     st.totalSources,
		SourcesCompleted: st.completed,
		CurrentSource:    src.Path,
		TotalEntries:     st.totalEntries,
		EntriesWritten:   st.entriesWritten,
		Phase:            data.PhaseExtracting,
	}
	m.sendProgress(base)

	extractor := NewExtractor(opts.Formats, opts.Strict)
	extractor.cancelCheck = m.cancelled.Load

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for progress := range extractor.GetProgressChannel() {
			if progress.Phase != data.PhaseExtracting {
				continue
			}
			snap := base
			snap.TotalEntries = base.TotalEntries + progress.EntriesFound
			m.sendProgress(snap)
		}
	}()

	destDir := filepath.Join(staging, fmt.Sprintf("ch%d", chapter))
	group, warnings, err := extractor.Extract(src.Path, chapter, destDir)
	extractor.Close()
	<-forwarded

	st.warnings = append(st.warnings, warnings...)
	if err != nil {
		return err
	}
	st.totalEntries += len(group.Entries)

	for _, entry := range group.Entries {
		if m.cancelled.Load() {
			return ErrCancelled
		}

		content, err := os.ReadFile(entry.StagedPath)
		if err != nil {
			return fmt.Errorf("failed to read staged page %s: %w", entry.TargetName, err)
		}

		if err := m.writePage(zw, st, chapter, entry.Page, entry.Extension, content); err != nil {
			return err
		}

		m.batchProgress(src.Path, opts, st)
	}

	return nil
}

// writePage assigns the final unique name for a page and writes it. On a
// collision across chapter groups the page number is re-derived from the
// entry's position in the concatenated output stream.
func (m *Merger) writePage(zw *zip.Writer, st *mergeState, chapter, page int, ext string, content []byte) error {
	st.globalPos++

	name := fmt.Sprintf("ch%d_%03d.%s", chapter, page, ext)
	for st.used[name] {
		name = fmt.Sprintf("ch%d_%03d.%s", chapter, st.globalPos, ext)
		if st.used[name] {
			st.globalPos++
			continue
		}
	}
	st.used[name] = true

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	st.entriesWritten++
	return nil
}

// batchProgress emits a writing-phase snapshot every N written entries.
func (m *Merger) batchProgress(source string, opts data.MergeOptions, st *mergeState) {
	every := opts.ProgressEvery
	if every <= 0 {
		every = 8
	}
	if st.entriesWritten%every == 0 {
		m.sendProgress(data.MergeProgress{
			TotalSources:     st.totalSources,
			SourcesCompleted: st.completed,
			CurrentSource:    source,
			TotalEntries:     st.totalEntries,
			EntriesWritten:   st.entriesWritten,
			Phase:            data.PhaseWriting,
		})
	}
}

// sourceComicInfo pulls a well-formed ComicInfo.xml out of a source, if it
// has one. Missing or malformed metadata is not an error.
func (m *Merger) sourceComicInfo(path string) []byte {
	reader, err := archive.Open(path)
	if err != nil {
		return nil
	}
	defer reader.Close()

	raw, ok := reader.ComicInfo()
	if !ok || !integrations.WellFormedComicInfo(raw) {
		return nil
	}
	return raw
}

// sourceSkippable reports whether a source failure can be recovered from in
// lenient mode by moving on to the next source.
func sourceSkippable(err error) bool {
	return errors.Is(err, archive.ErrUnreadableArchive) ||
		errors.Is(err, archive.ErrEmptyArchive) ||
		errors.Is(err, ErrNoPages)
}

// fail emits a terminal failed snapshot and passes err through.
func (m *Merger) fail(st *mergeState, err error) error {
	m.sendProgress(data.MergeProgress{
		TotalSources:     st.totalSources,
		SourcesCompleted: st.completed,
		TotalEntries:     st.totalEntries,
		EntriesWritten:   st.entriesWritten,
		Phase:            data.PhaseFailed,
		Error:            err.Error(),
	})
	return err
}

// cancel emits a terminal cancelled snapshot.
func (m *Merger) cancel(st *mergeState) error {
	m.sendProgress(data.MergeProgress{
		TotalSources:     st.totalSources,
		SourcesCompleted: st.completed,
		TotalEntries:     st.totalEntries,
		EntriesWritten:   st.entriesWritten,
		Phase:            data.PhaseCancelled,
		Error:            ErrCancelled.Error(),
	})
	return ErrCancelled
}

// sendProgress sends a progress snapshot (non-blocking).
func (m *Merger) sendProgress(progress data.MergeProgress) {
	select {
	case m.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close releases the progress channel.
func (m *Merger) Close() {
	close(m.progressChan)
}
