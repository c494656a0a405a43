package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed templates/*.tex
var templates embed.FS

//go:embed presets/pagesizes.yaml
var pageSizeTable []byte

// EmbeddedLoader loads templates from the embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadTemplate loads a LaTeX template from embedded assets by name.
// The name should not include the .tex extension.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := templates.ReadFile(templatesDir + "/" + name + templateExt)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	return string(content), nil
}

// ListTemplates returns the embedded template names without extension, sorted.
func (e *EmbeddedLoader) ListTemplates() []string {
	entries, err := fs.ReadDir(templates, templatesDir)
	if err != nil {
		return nil
	}
	return templateNames(entries)
}

// PageSizeTable returns a copy of the embedded page-size preset table (YAML).
func PageSizeTable() []byte {
	out := make([]byte, len(pageSizeTable))
	copy(out, pageSizeTable)
	return out
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
