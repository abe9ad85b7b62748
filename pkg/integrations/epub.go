package integrations

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-shiori/go-epub"

	"github.com/kerbaras/comicmerge/pkg/archive"
)

var chapterNameRe = regexp.MustCompile(`^ch(\d+)_(\d+)\.`)

// EPubExporter compiles a merged CBZ into an EPUB, one section per chapter.
type EPubExporter struct {
	outputDir string
}

// NewEPubExporter creates an exporter writing into outputDir.
func NewEPubExporter(outputDir string) *EPubExporter {
	return &EPubExporter{outputDir: outputDir}
}

// Export reads a merged CBZ and writes <name>.epub next to the configured
// output directory. The first page becomes a scaled cover; pages keep their
// original bytes.
func (p *EPubExporter) Export(cbzPath string) (string, error) {
	reader, err := archive.Open(cbzPath)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	entries, err := reader.ImageEntries(nil)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// Unpack pages so go-epub can ingest them by path.
	workDir, err := os.MkdirTemp("", "comicmerge-epub-*")
	if err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	title := strings.TrimSuffix(filepath.Base(cbzPath), filepath.Ext(cbzPath))
	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	e.SetLang("en")

	// Group pages by chapter prefix, keeping archive order inside each.
	chapters := make(map[int][]string)
	var chapterNumbers []int
	for i, entry := range entries {
		content, err := reader.ReadEntry(entry)
		if err != nil {
			return "", err
		}

		pagePath := filepath.Join(workDir, fmt.Sprintf("page%05d.%s", i, entry.Extension))
		if err := os.WriteFile(pagePath, content, 0644); err != nil {
			return "", fmt.Errorf("failed to unpack page %s: %w", entry.Name, err)
		}

		chapter := 0
		if m := chapterNameRe.FindStringSubmatch(filepath.Base(entry.Name)); m != nil {
			chapter, _ = strconv.Atoi(m[1])
		}
		if _, seen := chapters[chapter]; !seen {
			chapterNumbers = append(chapterNumbers, chapter)
		}
		chapters[chapter] = append(chapters[chapter], pagePath)

		if i == 0 {
			// Non-fatal: a page that will not decode just means no cover.
			_ = p.setCover(e, content, workDir)
		}
	}
	sort.Ints(chapterNumbers)

	for _, num := range chapterNumbers {
		chapterTitle := fmt.Sprintf("Chapter %d", num)
		if num == 0 {
			chapterTitle = title
		}

		var htmlContent strings.Builder
		htmlContent.WriteString(fmt.Sprintf("<h1>%s</h1>\n", chapterTitle))

		for i, pagePath := range chapters[num] {
			internalPath, err := e.AddImage(pagePath, "")
			if err != nil {
				return "", fmt.Errorf("failed to add image %s: %w", filepath.Base(pagePath), err)
			}

			htmlContent.WriteString(fmt.Sprintf(
				`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>%s`,
				internalPath, i+1, "\n",
			))
		}

		if _, err := e.AddSection(htmlContent.String(), chapterTitle, "", ""); err != nil {
			return "", fmt.Errorf("failed to add section: %w", err)
		}
	}

	outputPath := filepath.Join(p.outputDir, title+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

// setCover scales the first page and registers it as the EPUB cover.
func (p *EPubExporter) setCover(e *epub.Epub, pageData []byte, workDir string) error {
	coverData, err := MakeCover(pageData)
	if err != nil {
		return err
	}

	coverPath := filepath.Join(workDir, "cover.jpg")
	if err := os.WriteFile(coverPath, coverData, 0644); err != nil {
		return err
	}

	internalPath, err := e.AddImage(coverPath, "cover.jpg")
	if err != nil {
		return err
	}
	return e.SetCover(internalPath, "")
}
