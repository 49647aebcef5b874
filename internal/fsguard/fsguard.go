// Package fsguard implements the filesystem safety checks the driver
// applies before touching any file: directory containment, symlink
// rejection, and filename sanitization, ported from
// original_source/removemetadata.py's _is_within_directory guard.
package fsguard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// unsafeChars are replaced with "-" in derived filenames.
const unsafeChars = "\\/:*?\"<>|"

// maxFilenameLength caps a derived filename, extension included.
const maxFilenameLength = 128

// Violation reports why a path failed the guard.
type Violation struct {
	Path   string
	Reason string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("filesystem guard: %s: %s", v.Path, v.Reason)
}

// Check resolves path and confirms it lies within baseDir's realpath, and
// that it is not a symlink. baseDir must already exist.
func Check(path, baseDir string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("filesystem guard: stat %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return &Violation{Path: path, Reason: "symlink"}
	}

	resolvedBase, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return fmt.Errorf("filesystem guard: resolve base dir: %w", err)
	}
	resolvedPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("filesystem guard: resolve %s: %w", path, err)
	}

	rel, err := filepath.Rel(resolvedBase, resolvedPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &Violation{Path: path, Reason: "outside input directory"}
	}
	return nil
}

// SanitizeFilename replaces unsafe characters and control bytes with "-",
// strips leading dots, and caps the total length (extension included) at
// maxFilenameLength.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20:
			b.WriteByte('-')
		case strings.ContainsRune(unsafeChars, r):
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	sanitized := strings.TrimLeft(b.String(), ".")
	if len(sanitized) > maxFilenameLength {
		sanitized = sanitized[:maxFilenameLength]
	}
	return sanitized
}
