package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/comicmerge/pkg/app/components"
	"github.com/kerbaras/comicmerge/pkg/app/styles"
	"github.com/kerbaras/comicmerge/pkg/archive"
	"github.com/kerbaras/comicmerge/pkg/data"
)

// SourcesScreen lists the input archives in merge order and lets the user
// reorder or drop them before starting.
type SourcesScreen struct {
	list   *components.SourceList
	width  int
	height int
	err    error
}

func NewSourcesScreen(sources []data.SourceEntry) *SourcesScreen {
	list := components.NewSourceList()

	items := make([]components.SourceItem, len(sources))
	for i, src := range sources {
		items[i] = components.SourceItem{Source: src, Pages: -1}
	}
	list.SetItems(items)

	return &SourcesScreen{list: list}
}

func (s *SourcesScreen) Sources() []data.SourceEntry {
	return s.list.Sources()
}

func (s *SourcesScreen) Init() tea.Cmd {
	return s.scanSources
}

func (s *SourcesScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.list.Width = msg.Width - 4
		s.list.Height = msg.Height - 10

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.list.Prev()
		case "down", "j":
			s.list.Next()
		case "K", "u":
			s.list.MoveUp()
		case "J", "d":
			s.list.MoveDown()
		case "x":
			s.list.Remove()
		case "r":
			return s, s.scanSources
		case "m", "enter":
			if len(s.list.Items) > 0 {
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "merge"}
				}
			}
		}

	case sourcesScannedMsg:
		s.list.SetItems(msg.items)
		s.err = msg.err
	}

	return s, nil
}

func (s *SourcesScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("📚 Merge Sources")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	listView := s.list.View()

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: select • K/J: reorder • x: remove • r: rescan • enter: merge • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s", header, errorMsg, listView, help)
}

// Messages
type sourcesScannedMsg struct {
	items []components.SourceItem
	err   error
}

// Commands
func (s *SourcesScreen) scanSources() tea.Msg {
	items := make([]components.SourceItem, len(s.list.Items))
	copy(items, s.list.Items)

	var firstErr error
	for i := range items {
		reader, err := archive.Open(items[i].Source.Path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			items[i].Pages = 0
			continue
		}

		pages := 0
		for _, n := range reader.FormatCounts() {
			pages += n
		}
		items[i].Pages = pages
		reader.Close()
	}

	return sourcesScannedMsg{items: items, err: firstErr}
}
