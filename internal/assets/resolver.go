package assets

import (
	"errors"
	"slices"
)

// Resolver looks templates up in an optional user directory first and
// falls back to the built-in set. Only ErrTemplateNotFound falls through;
// invalid names and read errors from the directory are returned as is.
type Resolver struct {
	dir      *DirLoader // nil without a custom directory
	embedded *EmbeddedLoader
}

// NewResolver returns a Resolver. An empty dir uses built-in templates only.
func NewResolver(dir string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if dir == "" {
		return r, nil
	}

	loader, err := NewDirLoader(dir)
	if err != nil {
		return nil, err
	}
	r.dir = loader
	return r, nil
}

// LoadTemplate returns the template source for name.
func (r *Resolver) LoadTemplate(name string) (string, error) {
	if r.dir != nil {
		content, err := r.dir.LoadTemplate(name)
		if !errors.Is(err, ErrTemplateNotFound) {
			return content, err
		}
	}
	return r.embedded.LoadTemplate(name)
}

// ListTemplates returns every name LoadTemplate accepts, sorted and unique.
func (r *Resolver) ListTemplates() []string {
	names := r.embedded.ListTemplates()
	if r.dir != nil {
		names = append(names, r.dir.ListTemplates()...)
		slices.Sort(names)
		names = slices.Compact(names)
	}
	return names
}

// Custom reports whether a user directory is configured.
func (r *Resolver) Custom() bool {
	return r.dir != nil
}

// Compile-time interface check.
var _ AssetLoader = (*Resolver)(nil)
