package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/kerbaras/comicmerge/pkg/data"
)

var (
	// ErrUnreadableArchive means the file could not be opened or parsed as
	// a ZIP container at all.
	ErrUnreadableArchive = errors.New("unreadable archive")

	// ErrEmptyArchive means the archive opened fine but holds no entries
	// matching the requested image formats.
	ErrEmptyArchive = errors.New("no image entries in archive")

	// ErrCorruptEntry means one entry could not be read mid-stream.
	ErrCorruptEntry = errors.New("corrupt entry")
)

// Reader enumerates and reads the image entries of one CBZ/ZIP archive.
// It owns the underlying zip handle; Close releases it.
type Reader struct {
	path string
	zr   *zip.ReadCloser
}

// Open opens a CBZ/ZIP archive for reading. Zero-byte files and files that
// are not ZIP containers fail with ErrUnreadableArchive.
func Open(path string) (*Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableArchive, path, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnreadableArchive, path)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableArchive, path, err)
	}

	return &Reader{path: path, zr: zr}, nil
}

// Path returns the filesystem path the reader was opened from.
func (r *Reader) Path() string {
	return r.path
}

// ImageEntries lists the archive's image entries in central-directory order,
// filtered to the given formats (nil means all supported formats). It fails
// with ErrEmptyArchive when nothing qualifies.
func (r *Reader) ImageEntries(formats []string) ([]data.ArchiveEntry, error) {
	wanted := make(map[string]bool, len(formats))
	for _, f := range formats {
		wanted[strings.ToLower(f)] = true
	}

	var entries []data.ArchiveEntry
	for i, f := range r.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		ext := entryExtension(f.Name)
		if !data.IsSupportedFormat(ext) {
			continue
		}
		if len(wanted) > 0 && !wanted[ext] {
			continue
		}

		entries = append(entries, data.ArchiveEntry{
			Name:      f.Name,
			Extension: ext,
			Size:      int64(f.UncompressedSize64),
			Index:     i,
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyArchive, r.path)
	}

	return entries, nil
}

// ReadEntry reads one entry's bytes. Failures mid-stream surface as
// ErrCorruptEntry so callers can skip the page and continue.
func (r *Reader) ReadEntry(entry data.ArchiveEntry) ([]byte, error) {
	if entry.Index < 0 || entry.Index >= len(r.zr.File) {
		return nil, fmt.Errorf("%w: %s: no such entry", ErrCorruptEntry, entry.Name)
	}

	rc, err := r.zr.File[entry.Index].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, entry.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, entry.Name, err)
	}

	return content, nil
}

// ComicInfo returns the raw bytes of a root-level ComicInfo.xml entry, or
// false when the archive has none.
func (r *Reader) ComicInfo() ([]byte, bool) {
	for _, f := range r.zr.File {
		if strings.EqualFold(path.Base(f.Name), "ComicInfo.xml") && !strings.Contains(f.Name, "/") {
			rc, err := f.Open()
			if err != nil {
				return nil, false
			}
			defer rc.Close()

			content, err := io.ReadAll(rc)
			if err != nil {
				return nil, false
			}
			return content, true
		}
	}
	return nil, false
}

// FormatCounts tallies image entries per extension, for inspection output.
func (r *Reader) FormatCounts() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if ext := entryExtension(f.Name); data.IsSupportedFormat(ext) {
			counts[ext]++
		}
	}
	return counts
}

// Close releases the underlying zip handle.
func (r *Reader) Close() error {
	return r.zr.Close()
}

func entryExtension(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}
