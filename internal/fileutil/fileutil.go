// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrEmptyPath              = errors.New("path cannot be empty")
	ErrNoFileName             = errors.New("path has no file name")
)

// rename is swapped in tests to simulate cross-device moves.
var rename = os.Rename

// ValidateExtension checks that the extension is safe to splice into a file name.
// A leading dot is accepted ("pdf" and ".pdf" are equivalent).
func ValidateExtension(extension string) error {
	if strings.TrimPrefix(extension, ".") == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// ReplaceExt returns path with its final extension replaced by extension.
// A path without extension gets one appended. Only the last element of the
// path is considered, so "out.d/report" becomes "out.d/report.pdf". A
// leading dot does not start an extension, and trailing separators are
// dropped. Returns ErrNoFileName when no element is left to name a file.
//
// Examples:
//   - ("report.txt", "pdf")  -> "report.pdf"
//   - ("report", ".pdf")     -> "report.pdf"
//   - ("report.pdf", "pdf")  -> "report.pdf"
//   - ("a.tar.gz", "pdf")    -> "a.tar.pdf"
//   - (".report", "pdf")     -> ".report.pdf"
//   - ("out/", "pdf")        -> "out.pdf"
func ReplaceExt(path, extension string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if err := ValidateExtension(extension); err != nil {
		return "", err
	}

	dir, base := filepath.Split(strings.TrimRight(path, "/"+string(filepath.Separator)))
	if base == "" || base == "." || base == ".." {
		return "", fmt.Errorf("%w: %q", ErrNoFileName, path)
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return dir + base + "." + strings.TrimPrefix(extension, "."), nil
}

// MoveFile moves src to dst, replacing any existing file at dst.
//
// Within one filesystem this is a single rename. Across filesystems the
// content is copied into a hidden temp file next to dst which is then
// renamed over dst, so dst is either the old file or the complete new one.
// src is left in place on the cross-device path; callers own its removal.
func MoveFile(src, dst string) error {
	err := rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyThenRename(src, dst)
}

func copyThenRename(src, dst string) (err error) {
	in, err := os.Open(src) // #nosec G304 -- src is produced by this process
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpPath, dst)
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "article" -> false (name)
//   - "./report.tex" -> true (relative path)
//   - "/absolute/path.tex" -> true (absolute)
//   - "C:\windows\path.tex" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
