package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past merges",
	Long:  "Display the recorded merge history in a formatted table",
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo()
		if repo == nil {
			cobra.CheckErr(fmt.Errorf("settings database unavailable"))
		}

		records, err := repo.ListMerges()
		if err != nil {
			cobra.CheckErr(err)
		}

		if len(records) == 0 {
			fmt.Println("🗜  No merges recorded yet. Run 'comicmerge merge' to create one.")
			return
		}

		columns := []table.Column{
			{Title: "Output", Width: 44},
			{Title: "Sources", Width: 8},
			{Title: "Pages", Width: 8},
			{Title: "When", Width: 17},
		}

		rows := []table.Row{}
		for _, rec := range records {
			rows = append(rows, table.Row{
				truncateString(rec.OutputPath, 42),
				fmt.Sprintf("%d", rec.Sources),
				fmt.Sprintf("%d", rec.Pages),
				rec.CreatedAt.Format("2006-01-02 15:04"),
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\n🗜  Merge history (%d merges)\n\n", len(records))
		fmt.Println(t.View())
	},
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
