package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/comicmerge/pkg/app/screens"
	"github.com/kerbaras/comicmerge/pkg/data"
)

type App struct {
	repo    *data.Repository
	sources []data.SourceEntry
	opts    data.MergeOptions
}

func NewApp(repo *data.Repository, sources []data.SourceEntry, opts data.MergeOptions) *App {
	return &App{repo: repo, sources: sources, opts: opts}
}

func (a *App) Run() error {
	model := screens.NewRootScreen(a.repo, a.sources, a.opts)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
