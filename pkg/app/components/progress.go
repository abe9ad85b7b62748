package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/comicmerge/pkg/app/styles"
	"github.com/kerbaras/comicmerge/pkg/data"
)

// MergeTracker renders the latest merge progress snapshot.
type MergeTracker struct {
	latest *data.MergeProgress
	width  int
}

func NewMergeTracker(width int) *MergeTracker {
	return &MergeTracker{width: width}
}

func (p *MergeTracker) SetWidth(width int) {
	p.width = width
}

// Update replaces the tracked snapshot; snapshots are values, never shared
// state with the worker.
func (p *MergeTracker) Update(progress data.MergeProgress) {
	snapshot := progress // Copy
	p.latest = &snapshot
}

func (p *MergeTracker) Clear() {
	p.latest = nil
}

func (p *MergeTracker) Active() bool {
	if p.latest == nil {
		return false
	}
	switch p.latest.Phase {
	case data.PhaseDone, data.PhaseFailed, data.PhaseCancelled:
		return false
	}
	return true
}

func (p *MergeTracker) View() string {
	if p.latest == nil {
		return styles.MutedStyle.Render("No merge running")
	}

	progress := *p.latest

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Merge Progress"))
	b.WriteString("\n\n")

	sourceText := progress.CurrentSource
	if sourceText == "" {
		sourceText = "—"
	}
	b.WriteString(styles.TextStyle.Render(fmt.Sprintf("Source: %s", sourceText)))
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(
		fmt.Sprintf("Sources: %d/%d", progress.SourcesCompleted, progress.TotalSources),
	))
	b.WriteString("\n")

	if progress.TotalEntries > 0 {
		percentage := float64(progress.EntriesWritten) / float64(progress.TotalEntries) * 100
		b.WriteString(renderProgressBar(progress.EntriesWritten, progress.TotalEntries, p.width-4))
		b.WriteString("\n")
		b.WriteString(styles.PhaseStyle(progress.Phase).Render(
			fmt.Sprintf("%s (%d/%d pages - %.0f%%)",
				progress.Phase, progress.EntriesWritten, progress.TotalEntries, percentage),
		))
	} else {
		b.WriteString(styles.PhaseStyle(progress.Phase).Render(progress.Phase))
	}
	b.WriteString("\n")

	if progress.Error != "" {
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", progress.Error)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	bar := styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
	return bar
}
