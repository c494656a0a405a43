package tex2pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/alnah/go-tex2pdf/internal/assets"
	"github.com/alnah/go-tex2pdf/internal/fileutil"
	"github.com/alnah/go-tex2pdf/internal/texutil"
)

// Canonical data keys consumed by the built-in templates.
const (
	KeyTitle    = "title"
	KeyContent  = "content"
	KeyPageSize = "pageSize"
	KeyMargin   = "margin"
)

// templateExt marks a template argument as a file rather than a name.
const templateExt = ".tex"

// DefaultMargin is the page margin used when none is given.
const DefaultMargin = "2cm"

// Data maps template field names to values. Templates reference fields by
// key (.title, .pageSize.Width); any key a template references must be
// present, or rendering fails with a *RenderError.
type Data map[string]any

// NewData returns the data expected by the built-in templates.
// Content is inserted verbatim: it is LaTeX, not plain text.
func NewData(title, content string, size PageSize, margin string) Data {
	return Data{
		KeyTitle:    title,
		KeyContent:  content,
		KeyPageSize: size,
		KeyMargin:   margin,
	}
}

// templateFuncs are available to every template.
var templateFuncs = template.FuncMap{
	"escape": texutil.Escape,
	"upper":  strings.ToUpper,
	"lower":  strings.ToLower,
}

// Template is a parsed LaTeX template. It is immutable and safe for
// concurrent rendering.
type Template struct {
	name string
	tmpl *template.Template
}

// ParseTemplate parses text as a template named name.
// Placeholders use Go template syntax: {{.title}}, {{escape .title}}.
func ParseTemplate(name, text string) (*Template, error) {
	t, err := template.New(name).
		Option("missingkey=error").
		Funcs(templateFuncs).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTemplateParse, name, err)
	}
	return &Template{name: name, tmpl: t}, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
// Intended for templates embedded in the calling program.
func MustParseTemplate(name, text string) *Template {
	t, err := ParseTemplate(name, text)
	if err != nil {
		panic("tex2pdf: " + err.Error())
	}
	return t
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.name
}

// LoadTemplate loads a built-in template ("article", "pgfplots") by name,
// or a template file when nameOrPath contains a path separator or ends in .tex.
func LoadTemplate(nameOrPath string) (*Template, error) {
	return LoadTemplateFrom("", nameOrPath)
}

// LoadTemplateFrom is like LoadTemplate but looks up names in
// {assetPath}/templates/{name}.tex first, falling back to the built-in
// templates. An empty assetPath uses only the built-in templates.
func LoadTemplateFrom(assetPath, nameOrPath string) (*Template, error) {
	if nameOrPath == "" {
		nameOrPath = assets.DefaultTemplateName
	}

	if fileutil.IsFilePath(nameOrPath) || strings.EqualFold(filepath.Ext(nameOrPath), templateExt) {
		return loadTemplateFile(nameOrPath)
	}

	resolver, err := assets.NewResolver(assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	text, err := resolver.LoadTemplate(nameOrPath)
	if err != nil {
		if errors.Is(err, assets.ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrTemplateNotFound, nameOrPath, strings.Join(resolver.ListTemplates(), ", "))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	return ParseTemplate(nameOrPath, text)
}

// TemplateNames lists the built-in templates.
func TemplateNames() []string {
	return assets.ListTemplates()
}

func loadTemplateFile(path string) (*Template, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided template path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading template %s: %w", ErrFilesystem, path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseTemplate(name, string(data))
}

// Render substitutes data into t and returns the markup. It has no side
// effects: the same template and data always yield the same markup.
// A field referenced by the template but absent from data yields a
// *RenderError naming the field.
func Render(t *Template, data Data) (string, error) {
	if t == nil {
		return "", &RenderError{Err: ErrNilTemplate}
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, map[string]any(data)); err != nil {
		return "", &RenderError{Template: t.name, Key: missingKey(err), Err: err}
	}
	return buf.String(), nil
}

var missingKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`map has no entry for key "([^"]*)"`),
	regexp.MustCompile(`can't evaluate field (\w+)`),
}

// missingKey extracts the field name from a text/template execution error.
func missingKey(err error) string {
	msg := err.Error()
	for _, re := range missingKeyPatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			return m[1]
		}
	}
	return ""
}
