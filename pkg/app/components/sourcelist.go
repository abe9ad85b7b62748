package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/comicmerge/pkg/app/styles"
	"github.com/kerbaras/comicmerge/pkg/data"
)

type SourceItem struct {
	Source data.SourceEntry
	Pages  int // -1 when not scanned yet
}

// SourceList shows the merge order; list position is chapter order.
type SourceList struct {
	Items         []SourceItem
	SelectedIndex int
	Width         int
	Height        int
}

func NewSourceList() *SourceList {
	return &SourceList{
		Items:         []SourceItem{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
	}
}

func (s *SourceList) SetItems(items []SourceItem) {
	s.Items = items
	if s.SelectedIndex >= len(items) && len(items) > 0 {
		s.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		s.SelectedIndex = 0
	}
}

func (s *SourceList) Sources() []data.SourceEntry {
	sources := make([]data.SourceEntry, len(s.Items))
	for i, item := range s.Items {
		sources[i] = item.Source
	}
	return sources
}

func (s *SourceList) Next() {
	if len(s.Items) == 0 {
		return
	}
	s.SelectedIndex++
	if s.SelectedIndex >= len(s.Items) {
		s.SelectedIndex = 0
	}
}

func (s *SourceList) Prev() {
	if len(s.Items) == 0 {
		return
	}
	s.SelectedIndex--
	if s.SelectedIndex < 0 {
		s.SelectedIndex = len(s.Items) - 1
	}
}

// MoveUp swaps the selected source with the one above it, changing chapter
// order.
func (s *SourceList) MoveUp() {
	i := s.SelectedIndex
	if i <= 0 || i >= len(s.Items) {
		return
	}
	s.Items[i-1], s.Items[i] = s.Items[i], s.Items[i-1]
	s.SelectedIndex--
}

// MoveDown swaps the selected source with the one below it.
func (s *SourceList) MoveDown() {
	i := s.SelectedIndex
	if i < 0 || i >= len(s.Items)-1 {
		return
	}
	s.Items[i+1], s.Items[i] = s.Items[i], s.Items[i+1]
	s.SelectedIndex++
}

// Remove drops the selected source from the list.
func (s *SourceList) Remove() {
	i := s.SelectedIndex
	if i < 0 || i >= len(s.Items) {
		return
	}
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
	if s.SelectedIndex >= len(s.Items) && s.SelectedIndex > 0 {
		s.SelectedIndex--
	}
}

func (s *SourceList) Selected() *SourceItem {
	if len(s.Items) == 0 || s.SelectedIndex >= len(s.Items) {
		return nil
	}
	return &s.Items[s.SelectedIndex]
}

func (s *SourceList) View() string {
	if len(s.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render("No source archives. Pass .cbz/.zip paths on the command line.")
		return lipgloss.Place(s.Width, s.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder

	for i, item := range s.Items {
		cardStyle := styles.CardStyle
		if i == s.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		title := styles.TitleStyle.Render(
			fmt.Sprintf("Chapter %d — %s", i+1, filepath.Base(item.Source.Path)),
		)

		kindInfo := styles.MutedStyle.Render(fmt.Sprintf("Kind: %s", strings.ToUpper(string(item.Source.Kind))))
		pagesText := "Pages: not scanned"
		if item.Pages >= 0 {
			pagesText = fmt.Sprintf("Pages: %d", item.Pages)
		}
		pageInfo := styles.MutedStyle.Render(pagesText)

		cardContent := lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			kindInfo,
			pageInfo,
		)

		card := cardStyle.Width(s.Width - 4).Render(cardContent)
		b.WriteString(card)
		b.WriteString("\n")
	}

	return b.String()
}
