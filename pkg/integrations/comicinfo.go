package integrations

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// ComicInfo mirrors the subset of the ComicInfo.xml schema the tool writes.
type ComicInfo struct {
	XMLName   xml.Name `xml:"ComicInfo"`
	Title     string   `xml:"Title,omitempty"`
	Summary   string   `xml:"Summary,omitempty"`
	Notes     string   `xml:"Notes,omitempty"`
	PageCount int      `xml:"PageCount,omitempty"`
}

// WellFormedComicInfo reports whether raw parses as XML with a ComicInfo
// root element. Used to decide whether a source's metadata is worth copying
// through; malformed metadata is dropped, never an error.
func WellFormedComicInfo(raw []byte) bool {
	var probe struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.XMLName.Local == "ComicInfo"
}

// MergedComicInfo builds a minimal ComicInfo.xml summarizing a merge: the
// source archive names and the final page count.
func MergedComicInfo(sourceNames []string, pages int) ([]byte, error) {
	info := ComicInfo{
		Title:     "Merged Comic",
		Summary:   fmt.Sprintf("Merged from %d source archives", len(sourceNames)),
		Notes:     strings.Join(sourceNames, "; "),
		PageCount: pages,
	}

	output, err := xml.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, err
	}

	return []byte(xml.Header + string(output)), nil
}
