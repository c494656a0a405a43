package tex2pdf

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	// Page-size registry errors.
	ErrUnknownPageSize = errors.New("unknown page size")
	ErrInvalidPageSize = errors.New("invalid page size")

	// Template errors.
	ErrTemplateParse    = errors.New("template parsing failed")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrNilTemplate      = errors.New("template is nil")
	ErrRender           = errors.New("template rendering failed")

	// Compilation errors.
	ErrCompilation    = errors.New("compilation failed")
	ErrEngineNotFound = errors.New("typesetting engine not found")
	ErrNoArtifact     = errors.New("engine exited successfully but produced no PDF")

	// Filesystem errors: workspace setup and artifact relocation.
	ErrFilesystem      = errors.New("filesystem operation failed")
	ErrEmptyOutputPath = errors.New("output path cannot be empty")
)

// RenderError reports a template that could not be rendered against its data.
// It matches ErrRender with errors.Is.
type RenderError struct {
	Template string // template name
	Key      string // missing field, empty when the failure is something else
	Err      error  // underlying text/template error
}

func (e *RenderError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("rendering template %q: missing field %q", e.Template, e.Key)
	}
	return fmt.Sprintf("rendering template %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRender }

// CompilationError reports a failed engine run. It matches ErrCompilation
// with errors.Is and carries everything the engine said, so callers can show
// or log the diagnostics.
type CompilationError struct {
	Engine   string
	ExitCode int      // -1 when the engine did not run to completion
	Stdout   string   // captured standard output
	Stderr   string   // captured standard error
	Log      string   // the engine's .log file, empty if none was written
	Errors   []string // "!" error messages extracted from Log (or Stdout)
	Err      error    // cause: exit status, ErrNoArtifact, ErrEngineNotFound, ctx error
}

func (e *CompilationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Engine)
	sb.WriteString(": ")
	sb.WriteString(ErrCompilation.Error())
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if len(e.Errors) > 0 {
		sb.WriteString(": ")
		sb.WriteString(e.Errors[0])
		if n := len(e.Errors) - 1; n > 0 {
			fmt.Fprintf(&sb, " (and %d more)", n)
		}
	}
	return sb.String()
}

func (e *CompilationError) Unwrap() error { return e.Err }

func (e *CompilationError) Is(target error) bool { return target == ErrCompilation }

// Diagnostics returns the captured engine output, falling back to the log
// file when the engine wrote nothing to its streams.
func (e *CompilationError) Diagnostics() string {
	out := strings.TrimSpace(strings.Join(nonEmpty(e.Stdout, e.Stderr), "\n"))
	if out != "" {
		return out
	}
	return strings.TrimSpace(e.Log)
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
