package tex2pdf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alnah/go-tex2pdf/internal/assets"
	"github.com/alnah/go-tex2pdf/internal/yamlutil"
)

// PageSize is a page geometry preset. Width and Height are TeX dimensions
// ("210mm", "8.5in") handed to the geometry package as-is; they are not
// parsed, so a malformed value only surfaces as a compilation failure.
type PageSize struct {
	Width  string `yaml:"width"`
	Height string `yaml:"height"`
	Name   string `yaml:"name"` // display name
}

func (p PageSize) String() string {
	return fmt.Sprintf("%s (%s x %s)", p.Name, p.Width, p.Height)
}

// PageSizeRegistry is an immutable set of presets keyed by short,
// case-insensitive names. It is safe for concurrent use.
type PageSizeRegistry struct {
	sizes map[string]PageSize
}

// NewPageSizeRegistry builds a registry from a copy of sizes.
// Returns ErrInvalidPageSize if a key, width or height is empty, or if two
// keys differ only by case.
func NewPageSizeRegistry(sizes map[string]PageSize) (*PageSizeRegistry, error) {
	r := &PageSizeRegistry{sizes: make(map[string]PageSize, len(sizes))}
	for key, size := range sizes {
		k := normalizeKey(key)
		if k == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidPageSize)
		}
		if size.Width == "" || size.Height == "" {
			return nil, fmt.Errorf("%w: %q needs both width and height", ErrInvalidPageSize, key)
		}
		if _, dup := r.sizes[k]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidPageSize, key)
		}
		if size.Name == "" {
			size.Name = key
		}
		r.sizes[k] = size
	}
	return r, nil
}

// Lookup returns the preset registered under key.
// Returns an error wrapping ErrUnknownPageSize if there is none.
func (r *PageSizeRegistry) Lookup(key string) (PageSize, error) {
	size, ok := r.sizes[normalizeKey(key)]
	if !ok {
		return PageSize{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPageSize, key, strings.Join(r.Keys(), ", "))
	}
	return size, nil
}

// Keys returns the registered keys in sorted order.
func (r *PageSizeRegistry) Keys() []string {
	keys := make([]string, 0, len(r.sizes))
	for k := range r.sizes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of presets.
func (r *PageSizeRegistry) Len() int {
	return len(r.sizes)
}

// defaultPageSizes is built once from the embedded preset table and never mutated.
var defaultPageSizes = mustLoadPageSizes(assets.PageSizeTable())

// DefaultPageSizes returns the built-in presets: a3, a4, a5, b5, letter,
// legal, phone and remarkable2.
func DefaultPageSizes() *PageSizeRegistry {
	return defaultPageSizes
}

// LookupPageSize looks key up in the built-in presets.
func LookupPageSize(key string) (PageSize, error) {
	return defaultPageSizes.Lookup(key)
}

// LoadPageSizes parses a YAML preset table of the form
//
//	a4:
//	  width: 210mm
//	  height: 297mm
//	  name: A4
func LoadPageSizes(data []byte) (*PageSizeRegistry, error) {
	var table map[string]PageSize
	if err := yamlutil.Decode(data, &table); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPageSize, err)
	}
	return NewPageSizeRegistry(table)
}

func mustLoadPageSizes(data []byte) *PageSizeRegistry {
	r, err := LoadPageSizes(data)
	if err != nil {
		panic("tex2pdf: embedded page size table: " + err.Error())
	}
	return r
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
