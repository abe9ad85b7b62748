package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kerbaras/comicmerge/pkg/integrations"
)

var epubCmd = &cobra.Command{
	Use:   "epub [merged.cbz]",
	Short: "Compile a merged CBZ into an EPUB",
	Long:  "Build an EPUB from a merged CBZ, one section per chapter, with the first page as cover",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		outDir, _ := cmd.Flags().GetString("dest")
		if outDir == "" {
			outDir = filepath.Dir(args[0])
		}

		exporter := integrations.NewEPubExporter(outDir)
		epubPath, err := exporter.Export(args[0])
		if err != nil {
			cobra.CheckErr(fmt.Errorf("EPUB generation failed: %w", err))
		}

		fmt.Printf("📖 EPUB created: %s\n", epubPath)
	},
}

func init() {
	epubCmd.Flags().StringP("dest", "d", "", "Output directory (default: next to the CBZ)")
}
