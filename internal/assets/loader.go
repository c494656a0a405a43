package assets

// AssetLoader defines the contract for loading LaTeX templates.
type AssetLoader interface {
	// LoadTemplate loads a template by name (without .tex extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)
}

// DefaultTemplateName is the name of the built-in document template.
const DefaultTemplateName = "article"

// templateExt is the file extension of template files.
const templateExt = ".tex"
