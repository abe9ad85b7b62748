package services

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/kerbaras/comicmerge/pkg/archive"
	"github.com/kerbaras/comicmerge/pkg/data"
)

// Extractor pulls the image entries of one archive into a destination
// directory under chapter-prefixed names.
type Extractor struct {
	formats      []string
	strict       bool
	cancelled    atomic.Bool
	cancelCheck  func() bool
	progressChan chan data.ExtractionProgress
}

// NewExtractor creates an extractor for the given format selection. In
// strict mode any rejected or corrupt entry fails the whole extraction
// instead of being skipped.
func NewExtractor(formats []string, strict bool) *Extractor {
	e := &Extractor{
		formats:      formats,
		strict:       strict,
		progressChan: make(chan data.ExtractionProgress, 100),
	}
	e.cancelCheck = e.cancelled.Load
	return e
}

// GetProgressChannel returns the channel for receiving extraction progress
// snapshots.
func (e *Extractor) GetProgressChannel() <-chan data.ExtractionProgress {
	return e.progressChan
}

// Cancel requests cancellation. Extract checks at entry boundaries and stops
// staging further pages.
func (e *Extractor) Cancel() {
	e.cancelled.Store(true)
}

// Extract reads sourcePath, orders its matching entries naturally, and
// writes them to destDir as ch{chapter}_{page:03d}.{ext}. Pages are numbered
// 1-based in sorted order. Skipped entries come back as warnings; the call
// fails only when zero entries survive (or on any skip in strict mode).
// Cancellation is checked between entries and surfaces as ErrCancelled.
func (e *Extractor) Extract(sourcePath string, chapter int, destDir string) (*data.ChapterGroup, []data.Warning, error) {
	if len(e.formats) == 0 {
		return nil, nil, ErrNoFormatsSelected
	}

	reader, err := archive.Open(sourcePath)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	e.sendProgress(data.ExtractionProgress{
		Source: sourcePath,
		Phase:  data.PhaseReading,
	})

	entries, err := reader.ImageEntries(e.formats)
	if err != nil {
		return nil, nil, err
	}
	archive.SortEntries(entries)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	group := &data.ChapterGroup{Chapter: chapter, Source: sourcePath}
	var warnings []data.Warning
	page := 0

	for _, entry := range entries {
		if e.cancelCheck() {
			return nil, warnings, ErrCancelled
		}

		if err := archive.ValidateEntryName(entry.Name); err != nil {
			if e.strict {
				return nil, warnings, err
			}
			log.Printf("skipping entry %q in %s: %v", entry.Name, sourcePath, err)
			warnings = append(warnings, data.Warning{Source: sourcePath, Entry: entry.Name, Reason: err.Error()})
			continue
		}

		content, err := reader.ReadEntry(entry)
		if err != nil {
			if e.strict {
				return nil, warnings, err
			}
			log.Printf("skipping entry %q in %s: %v", entry.Name, sourcePath, err)
			warnings = append(warnings, data.Warning{Source: sourcePath, Entry: entry.Name, Reason: err.Error()})
			continue
		}

		page++
		targetName := fmt.Sprintf("ch%d_%03d.%s", chapter, page, entry.Extension)

		targetPath, err := archive.SafeJoin(destDir, targetName)
		if err != nil {
			return nil, warnings, err
		}
		if err := os.WriteFile(targetPath, content, 0644); err != nil {
			return nil, warnings, fmt.Errorf("failed to write %s: %w", targetName, err)
		}

		group.Entries = append(group.Entries, data.RenamedEntry{
			TargetName:   targetName,
			OriginalName: entry.Name,
			Extension:    entry.Extension,
			Chapter:      chapter,
			Page:         page,
			StagedPath:   targetPath,
		})

		e.sendProgress(data.ExtractionProgress{
			Source:         sourcePath,
			CurrentFile:    entry.Name,
			EntriesFound:   len(entries),
			EntriesWritten: page,
			Phase:          data.PhaseExtracting,
		})
	}

	if page == 0 {
		return nil, warnings, fmt.Errorf("%w: %s", ErrNoPages, sourcePath)
	}

	e.sendProgress(data.ExtractionProgress{
		Source:         sourcePath,
		EntriesFound:   len(entries),
		EntriesWritten: page,
		Phase:          data.PhaseDone,
	})

	return group, warnings, nil
}

// sendProgress sends a progress snapshot (non-blocking).
func (e *Extractor) sendProgress(progress data.ExtractionProgress) {
	select {
	case e.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close releases the progress channel.
func (e *Extractor) Close() {
	close(e.progressChan)
}
