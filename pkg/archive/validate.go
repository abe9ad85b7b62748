package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathRejected marks an archive entry name that must never be used to
// build a filesystem path or an output entry name.
var ErrPathRejected = errors.New("path rejected")

// ValidateEntryName rejects entry names that could escape the staging or
// output directory: parent-directory segments, absolute roots, and Windows
// drive specifiers. It runs on every entry read from an archive,
// unconditionally.
func ValidateEntryName(name string) error {
	if name == "" || strings.HasSuffix(name, "/") {
		return fmt.Errorf("%w: %q is not a file entry", ErrPathRejected, name)
	}

	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return fmt.Errorf("%w: %q is absolute", ErrPathRejected, name)
	}

	if len(name) >= 2 && name[1] == ':' {
		return fmt.Errorf("%w: %q has a drive specifier", ErrPathRejected, name)
	}

	for _, seg := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if seg == ".." {
			return fmt.Errorf("%w: %q contains a parent-directory segment", ErrPathRejected, name)
		}
	}

	return nil
}

// SafeJoin validates name and resolves it inside dir, failing with
// ErrPathRejected if the resolved path would land outside dir.
func SafeJoin(dir, name string) (string, error) {
	if err := ValidateEntryName(name); err != nil {
		return "", err
	}

	joined := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrPathRejected, name, dir)
	}

	return joined, nil
}
