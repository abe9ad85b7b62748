package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/comicmerge/pkg/app/components"
	"github.com/kerbaras/comicmerge/pkg/app/styles"
	"github.com/kerbaras/comicmerge/pkg/data"
	"github.com/kerbaras/comicmerge/pkg/services"
)

// MergeScreen drives one merge and shows its progress snapshots.
type MergeScreen struct {
	merger  *services.Merger
	repo    *data.Repository
	opts    data.MergeOptions
	tracker *components.MergeTracker

	running bool
	result  *data.MergeResult
	err     error

	width  int
	height int
}

func NewMergeScreen(merger *services.Merger, repo *data.Repository, opts data.MergeOptions) *MergeScreen {
	return &MergeScreen{
		merger:  merger,
		repo:    repo,
		opts:    opts,
		tracker: components.NewMergeTracker(60),
	}
}

func (s *MergeScreen) Running() bool {
	return s.running
}

func (s *MergeScreen) Init() tea.Cmd {
	return nil
}

// Start kicks off the merge worker and the progress listener.
func (s *MergeScreen) Start(sources []data.SourceEntry) tea.Cmd {
	if s.running {
		return nil
	}
	s.running = true
	s.result = nil
	s.err = nil
	s.tracker.Clear()

	return tea.Batch(s.runMerge(sources), s.waitForProgress())
}

func (s *MergeScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.tracker.SetWidth(msg.Width - 8)

	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			if s.running {
				s.merger.Cancel()
			}
		case "esc":
			if !s.running {
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "sources"}
				}
			}
		}

	case mergeProgressMsg:
		if msg.ok {
			s.tracker.Update(msg.progress)
			return s, s.waitForProgress()
		}

	case mergeDoneMsg:
		s.running = false
		s.result = msg.result
		s.err = msg.err
	}

	return s, nil
}

func (s *MergeScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("🗜  Merging")

	body := s.tracker.View()

	var outcome string
	switch {
	case s.err != nil:
		outcome = styles.StatusError.Render(fmt.Sprintf("Merge failed: %s", s.err))
	case s.result != nil:
		outcome = styles.StatusDone.Render(
			fmt.Sprintf("Done: %s (%d pages from %d sources)",
				s.result.OutputPath, s.result.TotalPages, s.result.Sources),
		)
		if len(s.result.Skipped) > 0 {
			outcome += "\n" + styles.MutedStyle.Render(
				fmt.Sprintf("%d entries/sources skipped, see log", len(s.result.Skipped)),
			)
		}
	}

	help := styles.HelpStyle.Render("c: cancel • esc: back to sources • tab: switch view • q: quit")

	return fmt.Sprintf("%s\n\n%s\n%s\n%s", header, body, outcome, help)
}

// Messages
type mergeProgressMsg struct {
	progress data.MergeProgress
	ok       bool
}

type mergeDoneMsg struct {
	result *data.MergeResult
	err    error
}

// Commands
func (s *MergeScreen) runMerge(sources []data.SourceEntry) tea.Cmd {
	return func() tea.Msg {
		result, err := s.merger.Merge(sources, s.opts)
		if err == nil && s.repo != nil {
			// History row is best effort; the merge itself already succeeded.
			s.repo.RecordMerge(result.OutputPath, result.Sources, result.TotalPages)
		}
		return mergeDoneMsg{result: result, err: err}
	}
}

func (s *MergeScreen) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		progress, ok := <-s.merger.GetProgressChannel()
		return mergeProgressMsg{progress: progress, ok: ok}
	}
}
