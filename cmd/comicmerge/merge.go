package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerbaras/comicmerge/pkg/data"
	"github.com/kerbaras/comicmerge/pkg/services"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [archives...]",
	Short: "Merge archives into one CBZ without the TUI",
	Long:  "Merge the given CBZ/ZIP archives, in argument order, into a single chapter-numbered CBZ",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo()
		opts := optionsFromFlags(cmd, repo)
		sources := buildSources(args)

		merger := services.NewMerger()

		fmt.Printf("🗜  Merging %d archives into %s\n", len(sources), opts.OutputPath)

		// Listen for progress until the channel closes
		done := make(chan struct{})
		go func() {
			defer close(done)
			for progress := range merger.GetProgressChannel() {
				if progress.Phase == data.PhaseWriting {
					fmt.Printf("  %d/%d sources, %d pages written\n",
						progress.SourcesCompleted, progress.TotalSources, progress.EntriesWritten)
				}
			}
		}()

		result, err := merger.Merge(sources, opts)
		merger.Close()
		<-done
		if err != nil {
			cobra.CheckErr(fmt.Errorf("merge failed: %w", err))
		}

		for _, warning := range result.Skipped {
			if warning.Entry != "" {
				fmt.Printf("⚠️  skipped entry %s in %s: %s\n", warning.Entry, warning.Source, warning.Reason)
			} else {
				fmt.Printf("⚠️  skipped source %s: %s\n", warning.Source, warning.Reason)
			}
		}

		if repo != nil {
			repo.SetLastFormats(opts.Formats)
			repo.RecordMerge(result.OutputPath, result.Sources, result.TotalPages)
		}

		fmt.Printf("✅ Merged %d pages from %d sources into %s\n",
			result.TotalPages, result.Sources, result.OutputPath)
	},
}
