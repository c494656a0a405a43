package assets

import "errors"

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetName = errors.New("invalid template name")
	ErrInvalidBasePath  = errors.New("invalid template directory")
	ErrAssetRead        = errors.New("reading template")

	// ErrPathTraversal reports a template that resolves outside its directory.
	ErrPathTraversal = errors.New("template escapes its directory")
)
