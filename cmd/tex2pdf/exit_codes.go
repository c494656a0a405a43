package main

import (
	"errors"
	"os"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/config"
)

// Exit codes for the tex2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // PDF written
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, page size, or template
	ExitIO      = 3 // File not found, permission denied
	ExitEngine  = 4 // Engine missing, failed, or timed out
)

// exitCodeFor returns the appropriate exit code for an error.
// Compilation is checked first: a CompilationError may wrap os errors.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Engine errors (exit 4)
	if errors.Is(err, tex2pdf.ErrCompilation) {
		return ExitEngine
	}

	// I/O errors (exit 3)
	if errors.Is(err, tex2pdf.ErrFilesystem) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, tex2pdf.ErrUnknownPageSize) ||
		errors.Is(err, tex2pdf.ErrRender) ||
		errors.Is(err, tex2pdf.ErrTemplateParse) ||
		errors.Is(err, tex2pdf.ErrTemplateNotFound) ||
		errors.Is(err, tex2pdf.ErrInvalidAssetPath) ||
		errors.Is(err, tex2pdf.ErrEmptyOutputPath) ||
		errors.Is(err, ErrTooManyArgs) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
