package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// templatesDir is the subdirectory holding templates, both on disk and
// in the embedded filesystem.
const templatesDir = "templates"

// DirLoader loads templates from {dir}/templates/{name}.tex.
// Reads are confined to dir with os.OpenInRoot, so a symlink or name
// cannot reach files outside it.
type DirLoader struct {
	dir string
}

// NewDirLoader returns a DirLoader for dir.
// Returns ErrInvalidBasePath if dir is empty, missing, or not a directory.
func NewDirLoader(dir string) (*DirLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, abs)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, abs)
	}

	return &DirLoader{dir: abs}, nil
}

// Dir returns the absolute directory the loader reads from.
func (d *DirLoader) Dir() string {
	return d.dir
}

// LoadTemplate reads {dir}/templates/{name}.tex.
func (d *DirLoader) LoadTemplate(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	rel := path.Join(templatesDir, name+templateExt)
	f, err := os.OpenInRoot(d.dir, rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q in %s", ErrTemplateNotFound, name, d.dir)
		}
		return "", d.classifyOpenError(rel, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssetRead, rel, err)
	}
	return string(content), nil
}

// classifyOpenError tells a confinement refusal from an ordinary read
// failure: if the file opens outside the root, the root refused it.
func (d *DirLoader) classifyOpenError(rel string, rootErr error) error {
	f, err := os.Open(filepath.Join(d.dir, filepath.FromSlash(rel))) // #nosec G304 -- only probed, never read
	if err == nil {
		_ = f.Close()
		return fmt.Errorf("%w: %s resolves outside %s", ErrPathTraversal, rel, d.dir)
	}
	return fmt.Errorf("%w: %v", ErrAssetRead, rootErr)
}

// ListTemplates returns the template names found in the directory, sorted.
// A missing templates subdirectory yields an empty list.
func (d *DirLoader) ListTemplates() []string {
	entries, err := os.ReadDir(filepath.Join(d.dir, templatesDir))
	if err != nil {
		return nil
	}
	return templateNames(entries)
}

// templateNames extracts valid template names from directory entries.
func templateNames(entries []fs.DirEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), templateExt)
		if ok && ValidateAssetName(name) == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ AssetLoader = (*DirLoader)(nil)
