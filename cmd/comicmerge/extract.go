package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerbaras/comicmerge/pkg/data"
	"github.com/kerbaras/comicmerge/pkg/services"
)

var extractCmd = &cobra.Command{
	Use:   "extract [archive]",
	Short: "Extract one archive's images under chapter-numbered names",
	Long:  "Extract the matching image entries of a CBZ/ZIP into a directory, renamed ch{chapter}_{page}.{ext} in natural page order",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo()
		opts := optionsFromFlags(cmd, repo)
		destDir, _ := cmd.Flags().GetString("dest")
		chapter, _ := cmd.Flags().GetInt("chapter")

		extractor := services.NewExtractor(opts.Formats, opts.Strict)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for progress := range extractor.GetProgressChannel() {
				if progress.Phase == data.PhaseExtracting {
					fmt.Printf("  %d/%d %s\n", progress.EntriesWritten, progress.EntriesFound, progress.CurrentFile)
				}
			}
		}()

		group, warnings, err := extractor.Extract(args[0], chapter, destDir)
		extractor.Close()
		<-done

		for _, warning := range warnings {
			fmt.Printf("⚠️  skipped %s: %s\n", warning.Entry, warning.Reason)
		}
		if err != nil {
			cobra.CheckErr(fmt.Errorf("extraction failed: %w", err))
		}

		fmt.Printf("✅ Extracted %d pages of chapter %d to %s\n", len(group.Entries), group.Chapter, destDir)
	},
}

func init() {
	extractCmd.Flags().StringP("dest", "d", ".", "Destination directory")
	extractCmd.Flags().IntP("chapter", "c", 1, "Chapter number used in target names")
}
