package cmd

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kerbaras/comicmerge/pkg/app"
	"github.com/kerbaras/comicmerge/pkg/data"
)

var rootCmd = &cobra.Command{
	Use:   "comicmerge [archives...]",
	Short: "Merge comic archives into a single CBZ",
	Long:  "Merge CBZ and ZIP comic archives into one chapter-numbered CBZ, with a TUI for ordering sources and watching progress",
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo()
		opts := optionsFromFlags(cmd, repo)

		a := app.NewApp(repo, buildSources(args), opts)
		if err := a.Run(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output CBZ path")
	rootCmd.PersistentFlags().StringP("formats", "f", "", "Comma-separated image formats to include (default: last used)")
	rootCmd.PersistentFlags().Bool("strict", false, "Fail the whole operation on any bad source or entry")
	rootCmd.PersistentFlags().Bool("comicinfo", false, "Write a summary ComicInfo.xml when sources have none")

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(epubCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(historyCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openRepo opens the settings database; the tool still works without it.
func openRepo() *data.Repository {
	db, err := data.InitDuckDB(data.DefaultDBPath())
	if err != nil {
		log.Printf("settings database unavailable: %v", err)
		return nil
	}
	return data.NewRepository(db)
}

// optionsFromFlags resolves merge options from flags, falling back to saved
// defaults from the settings store.
func optionsFromFlags(cmd *cobra.Command, repo *data.Repository) data.MergeOptions {
	output, _ := cmd.Flags().GetString("output")
	formatsFlag, _ := cmd.Flags().GetString("formats")
	strict, _ := cmd.Flags().GetBool("strict")
	comicInfo, _ := cmd.Flags().GetBool("comicinfo")

	formats := parseFormats(formatsFlag)
	if formats == nil && repo != nil {
		formats, _ = repo.LastFormats()
	}
	if formats == nil {
		formats = append([]string(nil), data.SupportedFormats...)
	}

	if output == "" {
		dir := ""
		if repo != nil {
			dir, _ = repo.DefaultOutputDir()
		}
		if dir == "" {
			dir = "."
		}
		output = filepath.Join(dir, "merged.cbz")
	}

	return data.MergeOptions{
		OutputPath:     output,
		Formats:        formats,
		Strict:         strict,
		WriteComicInfo: comicInfo,
	}
}

// parseFormats splits a comma-separated format flag, dropping anything
// unsupported. Returns nil for an empty flag so defaults can apply.
func parseFormats(flag string) []string {
	if flag == "" {
		return nil
	}

	var formats []string
	for _, f := range strings.Split(flag, ",") {
		f = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(f)), ".")
		if data.IsSupportedFormat(f) {
			formats = append(formats, f)
		}
	}
	return formats
}

// buildSources turns CLI paths into ordered source entries; order on the
// command line is chapter order.
func buildSources(paths []string) []data.SourceEntry {
	sources := make([]data.SourceEntry, 0, len(paths))
	for _, path := range paths {
		kind := data.KindCBZ
		if strings.EqualFold(filepath.Ext(path), ".zip") {
			kind = data.KindZIP
		}
		sources = append(sources, data.SourceEntry{Path: path, Kind: kind})
	}
	return sources
}
