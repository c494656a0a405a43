package main

// Notes:
// - parseBuildFlags: we test long and short forms, interspersed positional
//   arguments, and parse errors. Defaults are empty so that unset flags
//   never override config (see mergeFlags).
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-tex2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseBuildFlags - Flag parsing
// ---------------------------------------------------------------------------

func TestParseBuildFlags(t *testing.T) {
	t.Parallel()

	t.Run("all flags", func(t *testing.T) {
		t.Parallel()

		args := []string{
			"in.tex",
			"-o", "out.pdf",
			"-c", "work",
			"-t", "pgfplots",
			"-p", "letter",
			"--margin", "1in",
			"--title", "Report",
			"-f", "markdown",
			"--engine", "lualatex",
			"--timeout", "30s",
			"--asset-path", "assets",
			"--tex-only",
			"--log-format", "json",
			"-v",
		}

		f, rest, err := parseBuildFlags(args, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !slices.Equal(rest, []string{"in.tex"}) {
			t.Errorf("positional = %v, want [in.tex]", rest)
		}

		checks := []struct {
			name, got, want string
		}{
			{"output", f.output, "out.pdf"},
			{"config", f.common.config, "work"},
			{"template", f.document.template, "pgfplots"},
			{"page-size", f.page.size, "letter"},
			{"margin", f.page.margin, "1in"},
			{"title", f.document.title, "Report"},
			{"format", f.document.format, "markdown"},
			{"engine", f.engine.binary, "lualatex"},
			{"timeout", f.engine.timeout, "30s"},
			{"asset-path", f.assetPath, "assets"},
			{"log-format", f.logFormat, "json"},
		}
		for _, c := range checks {
			if c.got != c.want {
				t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
			}
		}
		if !f.texOnly {
			t.Error("texOnly = false, want true")
		}
		if !f.common.verbose || f.common.quiet {
			t.Errorf("verbose = %v, quiet = %v", f.common.verbose, f.common.quiet)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseBuildFlags([]string{"--nope"}, &bytes.Buffer{})
		if err == nil {
			t.Fatal("expected error for unknown flag")
		}
	})

	t.Run("help prints usage", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, _, err := parseBuildFlags([]string{"-h"}, &buf)
		if !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("error = %v, want flag.ErrHelp", err)
		}
		if buf.Len() == 0 {
			t.Error("usage not printed")
		}
	})
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI values override config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("set flags win", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		f := &buildFlags{
			page:     pageFlags{size: "a5", margin: "3cm"},
			document: documentFlags{title: "T", template: "pgfplots"},
			engine:   engineFlags{binary: "xelatex"},
		}

		mergeFlags(f, cfg)

		if cfg.Page.Size != "a5" || cfg.Page.Margin != "3cm" {
			t.Errorf("Page = %+v", cfg.Page)
		}
		if cfg.Document.Title != "T" || cfg.Document.Template != "pgfplots" {
			t.Errorf("Document = %+v", cfg.Document)
		}
		if cfg.Engine.Binary != "xelatex" {
			t.Errorf("Engine.Binary = %q", cfg.Engine.Binary)
		}
	})

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Page.Margin = "1in"

		mergeFlags(&buildFlags{}, cfg)

		if cfg.Page.Margin != "1in" {
			t.Errorf("Page.Margin = %q, want %q", cfg.Page.Margin, "1in")
		}
		if cfg.Document.Template != config.DefaultConfig().Document.Template {
			t.Errorf("Document.Template = %q, want default", cfg.Document.Template)
		}
	})
}
