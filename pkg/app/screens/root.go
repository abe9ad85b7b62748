package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/comicmerge/pkg/app/styles"
	"github.com/kerbaras/comicmerge/pkg/data"
	"github.com/kerbaras/comicmerge/pkg/services"
)

type screenType int

const (
	sourcesView screenType = iota
	mergeView
)

// SwitchScreenMsg asks the root screen to change the active view.
type SwitchScreenMsg struct {
	Screen string
}

type RootScreen struct {
	repo   *data.Repository
	merger *services.Merger

	currentView screenType
	sources     *SourcesScreen
	merge       *MergeScreen

	width  int
	height int
}

func NewRootScreen(repo *data.Repository, sources []data.SourceEntry, opts data.MergeOptions) *RootScreen {
	merger := services.NewMerger()

	sourcesScreen := NewSourcesScreen(sources)
	mergeScreen := NewMergeScreen(merger, repo, opts)

	return &RootScreen{
		repo:        repo,
		merger:      merger,
		currentView: sourcesView,
		sources:     sourcesScreen,
		merge:       mergeScreen,
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return r.sources.Init()
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if r.merge.Running() {
				// Let a running merge tear down cleanly first.
				r.merger.Cancel()
				break
			}
			return r, tea.Quit
		case "tab":
			r.currentView = (r.currentView + 1) % 2
			return r, nil
		}

	case SwitchScreenMsg:
		switch msg.Screen {
		case "sources":
			r.currentView = sourcesView
		case "merge":
			r.currentView = mergeView
			cmd = r.merge.Start(r.sources.Sources())
		}
		return r, cmd
	}

	// Forward message to active screen
	switch r.currentView {
	case sourcesView:
		newModel, newCmd := r.sources.Update(msg)
		r.sources = newModel.(*SourcesScreen)
		return r, newCmd
	case mergeView:
		newModel, newCmd := r.merge.Update(msg)
		r.merge = newModel.(*MergeScreen)
		return r, newCmd
	}

	return r, cmd
}

func (r *RootScreen) View() string {
	tabs := r.renderTabs()

	var content string
	switch r.currentView {
	case sourcesView:
		content = r.sources.View()
	case mergeView:
		content = r.merge.View()
	}

	return fmt.Sprintf("%s\n\n%s", tabs, content)
}

func (r *RootScreen) renderTabs() string {
	sourcesTab := "Sources"
	mergeTab := "Merge"

	if r.currentView == sourcesView {
		sourcesTab = styles.ActiveTabStyle.Render(sourcesTab)
		mergeTab = styles.InactiveTabStyle.Render(mergeTab)
	} else {
		sourcesTab = styles.InactiveTabStyle.Render(sourcesTab)
		mergeTab = styles.ActiveTabStyle.Render(mergeTab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, sourcesTab, mergeTab)
}
