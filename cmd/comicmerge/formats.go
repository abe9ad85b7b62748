package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kerbaras/comicmerge/pkg/archive"
	"github.com/kerbaras/comicmerge/pkg/data"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [archive]",
	Short: "List supported image formats, or count them inside an archive",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Printf("Supported formats: %s\n", strings.Join(data.SupportedFormats, ", "))
			return
		}

		reader, err := archive.Open(args[0])
		if err != nil {
			cobra.CheckErr(err)
		}
		defer reader.Close()

		counts := reader.FormatCounts()
		if len(counts) == 0 {
			fmt.Println("No supported image entries found")
			return
		}

		total := 0
		for _, format := range data.SupportedFormats {
			if n := counts[format]; n > 0 {
				fmt.Printf("  %-5s %d\n", format, n)
				total += n
			}
		}
		fmt.Printf("Total: %d image entries\n", total)
	},
}
