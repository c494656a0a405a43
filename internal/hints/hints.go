// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-tex2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForEngineNotFound returns hints for a typesetting engine missing from PATH.
// Suggests a package install in CI/Docker and the engine override otherwise.
func ForEngineNotFound(engine string) string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if inCI || IsInContainer() {
		hints = append(hints, "install TeX Live in the image (apt-get install texlive-latex-extra)")
	} else {
		hints = append(hints, "install TeX Live or MiKTeX so "+engine+" is on PATH")
	}

	if os.Getenv("TEX2PDF_ENGINE") == "" {
		hints = append(hints, "set TEX2PDF_ENGINE or use --engine to pick another binary")
	}

	return formatHints(hints)
}

// ForCompilation returns a hint pointing at the engine's own diagnostics.
func ForCompilation(verbose bool) string {
	if verbose {
		return format("the engine output above shows the failing line (l.N)")
	}
	return format("rerun with --verbose to see the full engine output")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag or TEX2PDF_TIMEOUT")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-tex2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-tex2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateNotFound returns hints for template not found errors.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", ") + ", or a path to a .tex file")
}

// ForPageSize returns hints for unknown page size keys.
func ForPageSize(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", ") + " (see tex2pdf sizes)")
}

// ForMissingField returns a hint for a template field absent from the data.
func ForMissingField(key string) string {
	if key == "" {
		return ""
	}
	return format("the template uses {{." + key + "}}; remove it or use a template that does not")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
