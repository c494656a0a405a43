package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/hints"
)

// doctorTimeout bounds each probe command.
const doctorTimeout = 10 * time.Second

// requiredPackages are the LaTeX packages used by the built-in templates.
var requiredPackages = []string{"geometry.sty", "hyperref.sty", "ulem.sty", "graphicx.sty"}

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Engine   engineInfo  `json:"engine"`
	Packages []pkgStatus `json:"packages,omitempty"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// engineInfo holds typesetting engine detection results.
type engineInfo struct {
	Name    string `json:"name"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// pkgStatus reports whether kpsewhich located a package file.
type pkgStatus struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS             string `json:"os"`
	Arch           string `json:"arch"`
	Container      bool   `json:"container"`
	ContainerHint  string `json:"container_hint,omitempty"`
	CI             bool   `json:"ci"`
	EngineOverride string `json:"tex2pdf_engine,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempDir      string `json:"temp_dir"`
	TempWritable bool   `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "-h", "--help":
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		}
	}

	result := runDoctor(context.Background(), env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:             runtime.GOOS,
			Arch:           runtime.GOARCH,
			EngineOverride: env.Getenv("TEX2PDF_ENGINE"),
		},
	}

	checkEngine(ctx, env, result)
	checkPackages(ctx, env, result)
	checkEnvironment(env, result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkEngine locates the engine binary and reads its version banner.
func checkEngine(ctx context.Context, env *Environment, result *doctorResult) {
	name := result.Env.EngineOverride
	if name == "" {
		name = tex2pdf.DefaultEngine
	}
	result.Engine.Name = name

	path, err := env.LookPath(name)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s not found on PATH. Install TeX Live or set TEX2PDF_ENGINE", name))
		return
	}
	result.Engine.Found = true
	result.Engine.Path = path

	probeCtx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	stdout, _, err := env.commandRunner().Run(probeCtx, "", path, "--version")
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get %s version: %v", name, err))
		return
	}
	result.Engine.Version = firstLine(stdout)
}

// checkPackages asks kpsewhich for each package the templates load.
// Skipped with a warning when kpsewhich is not installed (e.g., MiKTeX).
func checkPackages(ctx context.Context, env *Environment, result *doctorResult) {
	kpsewhich, err := env.LookPath("kpsewhich")
	if err != nil {
		result.Warnings = append(result.Warnings,
			"kpsewhich not found; LaTeX package check skipped")
		return
	}

	for _, pkg := range requiredPackages {
		probeCtx, cancel := context.WithTimeout(ctx, doctorTimeout)
		stdout, _, err := env.commandRunner().Run(probeCtx, "", kpsewhich, pkg)
		cancel()

		status := pkgStatus{Name: pkg, Path: firstLine(stdout)}
		status.Found = err == nil && status.Path != ""
		if !status.Found {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("LaTeX package %s not found (install texlive-latex-extra)", pkg))
		}
		result.Packages = append(result.Packages, status)
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(env *Environment, result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("TEX2PDF_CONTAINER") == "1" {
		return true, "TEX2PDF_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the engine workspace can be created.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	result.System.TempDir = tmpDir

	dir, err := os.MkdirTemp(tmpDir, "tex2pdf-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.RemoveAll(dir)
	result.System.TempWritable = true
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for line := range strings.Lines(s) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "tex2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Engine")
	if r.Engine.Found {
		fmt.Fprintf(w, "  [OK] %s found at %s\n", r.Engine.Name, r.Engine.Path)
		if r.Engine.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Engine.Version)
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] %s not found\n", r.Engine.Name)
	}
	fmt.Fprintln(w)

	if len(r.Packages) > 0 {
		fmt.Fprintln(w, "LaTeX packages")
		for _, p := range r.Packages {
			if p.Found {
				fmt.Fprintf(w, "  [OK] %s\n", p.Name)
			} else {
				fmt.Fprintf(w, "  [WARN] %s missing\n", p.Name)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to build")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
