package tex2pdf

// Notes:
// - fakeEngine stands in for the TeX engine: it records where and how it
//   was called, reads the source it was given, and optionally leaves a PDF
//   and a log in the workspace
// - every test checks the workspace is gone afterwards, whatever the outcome
// - real-process behavior (cwd, exit codes, killing) is in exec_test.go

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// exitError mimics *exec.ExitError for fakes.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *exitError) ExitCode() int { return e.code }

type fakeEngine struct {
	mu sync.Mutex

	// behavior
	writePDF bool
	log      string
	stdout   string
	stderr   string
	err      error
	block    bool // wait for ctx to be done before returning

	// observations
	calls   int
	dirs    []string
	names   []string
	args    [][]string
	sources []string
}

func (f *fakeEngine) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	f.mu.Lock()
	f.calls++
	f.dirs = append(f.dirs, dir)
	f.names = append(f.names, name)
	f.args = append(f.args, args)
	if src, err := os.ReadFile(filepath.Join(dir, sourceName)); err == nil {
		f.sources = append(f.sources, string(src))
	}
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return f.stdout, f.stderr, errors.New("signal: killed")
	}
	if f.log != "" {
		if err := os.WriteFile(filepath.Join(dir, logName), []byte(f.log), 0o600); err != nil {
			return "", "", err
		}
	}
	if f.writePDF {
		if err := os.WriteFile(filepath.Join(dir, artifactName), []byte("%PDF-1.5\nfake\n"), 0o600); err != nil {
			return "", "", err
		}
	}
	return f.stdout, f.stderr, f.err
}

func (f *fakeEngine) lastDir() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.dirs) == 0 {
		return ""
	}
	return f.dirs[len(f.dirs)-1]
}

// newTestRunner returns a Runner whose workspaces live in their own temp dir.
func newTestRunner(t *testing.T, engine *fakeEngine, opts ...Option) (*Runner, string) {
	t.Helper()
	tmp := t.TempDir()
	opts = append([]Option{WithCommandRunner(engine), WithTempDir(tmp)}, opts...)
	return NewRunner(opts...), tmp
}

func assertWorkspaceRemoved(t *testing.T, engine *fakeEngine, tmp string) {
	t.Helper()
	if dir := engine.lastDir(); dir != "" {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("workspace %s still exists (stat err: %v)", dir, err)
		}
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir not empty: %d entries left", len(entries))
	}
}

// ---------------------------------------------------------------------------
// TestRunner_Compile - Success Path
// ---------------------------------------------------------------------------

func TestRunner_Compile_Success(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{writePDF: true}
	r, tmp := newTestRunner(t, engine)
	out := filepath.Join(t.TempDir(), "doc.pdf")

	if err := r.Compile(context.Background(), `\documentclass{article}`, out); err != nil {
		t.Fatalf("Compile() unexpected error: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if !strings.HasPrefix(string(got), "%PDF") {
		t.Errorf("artifact content = %q", got)
	}
	if engine.calls != 1 {
		t.Errorf("engine calls = %d, want 1", engine.calls)
	}
	if engine.sources[0] != `\documentclass{article}` {
		t.Errorf("source = %q", engine.sources[0])
	}
	assertWorkspaceRemoved(t, engine, tmp)
}

func TestRunner_Compile_Invocation(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{writePDF: true}
		r, _ := newTestRunner(t, engine)
		if err := r.Compile(context.Background(), "x", filepath.Join(t.TempDir(), "a.pdf")); err != nil {
			t.Fatal(err)
		}

		if engine.names[0] != "pdflatex" {
			t.Errorf("engine = %q, want pdflatex", engine.names[0])
		}
		want := []string{"-interaction=nonstopmode", "-halt-on-error", "input.tex"}
		if strings.Join(engine.args[0], " ") != strings.Join(want, " ") {
			t.Errorf("args = %v, want %v", engine.args[0], want)
		}
		if !strings.HasPrefix(filepath.Base(engine.dirs[0]), "tex2pdf-") {
			t.Errorf("workspace = %q, want tex2pdf-* directory", engine.dirs[0])
		}
	})

	t.Run("custom engine and args", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{writePDF: true}
		r, _ := newTestRunner(t, engine, WithEngine("lualatex"), WithEngineArgs("-interaction=batchmode"))
		if err := r.Compile(context.Background(), "x", filepath.Join(t.TempDir(), "a.pdf")); err != nil {
			t.Fatal(err)
		}

		if engine.names[0] != "lualatex" {
			t.Errorf("engine = %q, want lualatex", engine.names[0])
		}
		want := []string{"-interaction=batchmode", "input.tex"}
		if strings.Join(engine.args[0], " ") != strings.Join(want, " ") {
			t.Errorf("args = %v, want %v", engine.args[0], want)
		}
	})
}

func TestRunner_Compile_OutputSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  string
		want string
	}{
		{"already pdf", "report.pdf", "report.pdf"},
		{"other suffix", "report.txt", "report.pdf"},
		{"no suffix", "report", "report.pdf"},
		{"dotted directory", filepath.Join("out.d", "report"), filepath.Join("out.d", "report.pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if err := os.MkdirAll(filepath.Join(dir, "out.d"), 0o750); err != nil {
				t.Fatal(err)
			}
			engine := &fakeEngine{writePDF: true}
			r, _ := newTestRunner(t, engine)

			if err := r.Compile(context.Background(), "x", filepath.Join(dir, tt.out)); err != nil {
				t.Fatal(err)
			}
			if _, err := os.Stat(filepath.Join(dir, tt.want)); err != nil {
				t.Errorf("artifact not at %s: %v", tt.want, err)
			}
			if tt.out != tt.want {
				if _, err := os.Stat(filepath.Join(dir, tt.out)); !os.IsNotExist(err) {
					t.Errorf("unexpected file at %s", tt.out)
				}
			}
		})
	}
}

func TestRunner_Compile_OverwritesExisting(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(out, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	engine := &fakeEngine{writePDF: true}
	r, _ := newTestRunner(t, engine)
	if err := r.Compile(context.Background(), "x", out); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(out)
	if string(got) == "old" {
		t.Error("existing file was not replaced")
	}
}

func TestRunner_Compile_Idempotent(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{writePDF: true}
	r, tmp := newTestRunner(t, engine)
	out := filepath.Join(t.TempDir(), "doc.pdf")

	for i := range 2 {
		if err := r.Compile(context.Background(), "same", out); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if engine.calls != 2 {
		t.Errorf("engine calls = %d, want 2", engine.calls)
	}
	if engine.dirs[0] == engine.dirs[1] {
		t.Error("runs shared a workspace")
	}
	assertWorkspaceRemoved(t, engine, tmp)
}

func TestRunner_Compile_Concurrent(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{writePDF: true}
	r, tmp := newTestRunner(t, engine)
	outDir := t.TempDir()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Compile(context.Background(), fmt.Sprint(i), filepath.Join(outDir, fmt.Sprintf("%d.pdf", i)))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Compile: %v", err)
		}
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 8 {
		t.Errorf("got %d artifacts, want 8", len(entries))
	}
	if leftover, _ := os.ReadDir(tmp); len(leftover) != 0 {
		t.Errorf("%d workspaces left behind", len(leftover))
	}
}

// ---------------------------------------------------------------------------
// TestRunner_Compile - Failures
// ---------------------------------------------------------------------------

const undefinedControlSequenceLog = `This is pdfTeX, Version 3.141592653
(./input.tex
! Undefined control sequence.
l.3 \foo
        
No pages of output.
`

func TestRunner_Compile_EngineFailure(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		log:    undefinedControlSequenceLog,
		stdout: undefinedControlSequenceLog,
		err:    &exitError{code: 1},
	}
	r, tmp := newTestRunner(t, engine)
	out := filepath.Join(t.TempDir(), "doc.pdf")

	err := r.Compile(context.Background(), `\foo`, out)

	if !errors.Is(err, ErrCompilation) {
		t.Fatalf("error = %v, want ErrCompilation", err)
	}
	var cerr *CompilationError
	if !errors.As(err, &cerr) {
		t.Fatalf("error %T is not *CompilationError", err)
	}
	if cerr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", cerr.ExitCode)
	}
	if cerr.Engine != "pdflatex" {
		t.Errorf("Engine = %q", cerr.Engine)
	}
	if cerr.Diagnostics() == "" {
		t.Error("Diagnostics() is empty")
	}
	if !strings.Contains(cerr.Log, "Undefined control sequence") {
		t.Errorf("Log = %q", cerr.Log)
	}
	if len(cerr.Errors) != 1 || cerr.Errors[0] != `Undefined control sequence. (l.3 \foo)` {
		t.Errorf("Errors = %q", cerr.Errors)
	}
	if !strings.Contains(err.Error(), "Undefined control sequence") {
		t.Errorf("Error() = %q should include the first TeX error", err.Error())
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("output file created despite failure")
	}
	assertWorkspaceRemoved(t, engine, tmp)
}

func TestRunner_Compile_EngineFailure_NoLog(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		stdout: "! Emergency stop.\n",
		stderr: "fatal",
		err:    &exitError{code: 2},
	}
	r, _ := newTestRunner(t, engine)

	err := r.Compile(context.Background(), "x", filepath.Join(t.TempDir(), "doc.pdf"))

	var cerr *CompilationError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *CompilationError", err)
	}
	if cerr.Log != "" {
		t.Errorf("Log = %q, want empty", cerr.Log)
	}
	if len(cerr.Errors) != 1 || cerr.Errors[0] != "Emergency stop." {
		t.Errorf("Errors = %q, want extraction from stdout", cerr.Errors)
	}
	got := cerr.Diagnostics()
	if !strings.Contains(got, "Emergency stop") || !strings.Contains(got, "fatal") {
		t.Errorf("Diagnostics() = %q, want stdout and stderr", got)
	}
}

func TestRunner_Compile_NoArtifact(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{stdout: "No pages of output."}
	r, tmp := newTestRunner(t, engine)
	out := filepath.Join(t.TempDir(), "doc.pdf")

	err := r.Compile(context.Background(), "x", out)

	if !errors.Is(err, ErrCompilation) || !errors.Is(err, ErrNoArtifact) {
		t.Fatalf("error = %v, want ErrCompilation wrapping ErrNoArtifact", err)
	}
	var cerr *CompilationError
	errors.As(err, &cerr)
	if cerr.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", cerr.ExitCode)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("output file created without artifact")
	}
	assertWorkspaceRemoved(t, engine, tmp)
}

func TestRunner_Compile_FailureKeepsExistingOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		engine *fakeEngine
	}{
		{
			name:   "engine exits non-zero",
			engine: &fakeEngine{log: undefinedControlSequenceLog, err: &exitError{code: 1}},
		},
		{
			name:   "engine exits non-zero after writing a partial PDF",
			engine: &fakeEngine{writePDF: true, err: &exitError{code: 1}},
		},
		{
			name:   "engine produces no artifact",
			engine: &fakeEngine{stdout: "No pages of output."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, _ := newTestRunner(t, tt.engine)
			out := filepath.Join(t.TempDir(), "doc.pdf")
			if err := os.WriteFile(out, []byte("OLD"), 0o600); err != nil {
				t.Fatal(err)
			}

			if err := r.Compile(context.Background(), `\foo`, out); !errors.Is(err, ErrCompilation) {
				t.Fatalf("error = %v, want ErrCompilation", err)
			}

			got, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("existing output removed: %v", err)
			}
			if string(got) != "OLD" {
				t.Errorf("output = %q, want it untouched (%q)", got, "OLD")
			}
		})
	}
}

func TestRunner_Compile_EngineNotFound(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{err: &exec.Error{Name: "pdflatex", Err: exec.ErrNotFound}}
	r, tmp := newTestRunner(t, engine)

	err := r.Compile(context.Background(), "x", filepath.Join(t.TempDir(), "doc.pdf"))

	if !errors.Is(err, ErrCompilation) || !errors.Is(err, ErrEngineNotFound) {
		t.Fatalf("error = %v, want ErrCompilation wrapping ErrEngineNotFound", err)
	}
	var cerr *CompilationError
	errors.As(err, &cerr)
	if cerr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", cerr.ExitCode)
	}
	assertWorkspaceRemoved(t, engine, tmp)
}

func TestRunner_Compile_Timeout(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{block: true}
	r, tmp := newTestRunner(t, engine, WithTimeout(20*time.Millisecond))

	start := time.Now()
	err := r.Compile(context.Background(), "x", filepath.Join(t.TempDir(), "doc.pdf"))

	if !errors.Is(err, ErrCompilation) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want ErrCompilation wrapping DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Compile took %s after timeout", elapsed)
	}
	assertWorkspaceRemoved(t, engine, tmp)
}

func TestRunner_Compile_Canceled(t *testing.T) {
	t.Parallel()

	t.Run("before start", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{writePDF: true}
		r, _ := newTestRunner(t, engine)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := r.Compile(ctx, "x", filepath.Join(t.TempDir(), "doc.pdf"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if engine.calls != 0 {
			t.Errorf("engine calls = %d, want 0", engine.calls)
		}
	})

	t.Run("while running", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{block: true}
		r, tmp := newTestRunner(t, engine)
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		err := r.Compile(ctx, "x", filepath.Join(t.TempDir(), "doc.pdf"))
		if !errors.Is(err, ErrCompilation) || !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want ErrCompilation wrapping context.Canceled", err)
		}
		assertWorkspaceRemoved(t, engine, tmp)
	})
}

func TestRunner_Compile_FilesystemErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty output path", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{writePDF: true}
		r, _ := newTestRunner(t, engine)
		err := r.Compile(context.Background(), "x", "")
		if !errors.Is(err, ErrEmptyOutputPath) {
			t.Errorf("error = %v, want ErrEmptyOutputPath", err)
		}
		if engine.calls != 0 {
			t.Errorf("engine calls = %d, want 0", engine.calls)
		}
	})

	t.Run("missing output directory", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{writePDF: true}
		r, tmp := newTestRunner(t, engine)
		out := filepath.Join(t.TempDir(), "missing", "doc.pdf")

		err := r.Compile(context.Background(), "x", out)
		if !errors.Is(err, ErrFilesystem) {
			t.Fatalf("error = %v, want ErrFilesystem", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want it to wrap os.ErrNotExist", err)
		}
		assertWorkspaceRemoved(t, engine, tmp)
	})

	t.Run("unusable temp dir", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{writePDF: true}
		r := NewRunner(WithCommandRunner(engine), WithTempDir(filepath.Join(t.TempDir(), "missing")))

		err := r.Compile(context.Background(), "x", filepath.Join(t.TempDir(), "doc.pdf"))
		if !errors.Is(err, ErrFilesystem) {
			t.Errorf("error = %v, want ErrFilesystem", err)
		}
		if engine.calls != 0 {
			t.Errorf("engine calls = %d, want 0", engine.calls)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunner_Compile - Logging
// ---------------------------------------------------------------------------

func TestRunner_Compile_Logging(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zapcore.DebugLevel)
		engine := &fakeEngine{writePDF: true}
		r, _ := newTestRunner(t, engine, WithLogger(zap.New(core)))
		out := filepath.Join(t.TempDir(), "doc.pdf")

		if err := r.Compile(context.Background(), "x", out); err != nil {
			t.Fatal(err)
		}

		if n := logs.FilterMessage("running engine").Len(); n != 1 {
			t.Errorf("got %d 'running engine' entries, want 1", n)
		}
		written := logs.FilterMessage("PDF written").All()
		if len(written) != 1 {
			t.Fatalf("got %d 'PDF written' entries, want 1", len(written))
		}
		if got := written[0].ContextMap()["path"]; got != out {
			t.Errorf("path field = %v, want %s", got, out)
		}
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zapcore.DebugLevel)
		engine := &fakeEngine{stderr: "boom", err: &exitError{code: 1}}
		r, _ := newTestRunner(t, engine, WithLogger(zap.New(core)))

		_ = r.Compile(context.Background(), "x", filepath.Join(t.TempDir(), "doc.pdf"))

		failed := logs.FilterMessage("engine failed").FilterLevelExact(zapcore.ErrorLevel).All()
		if len(failed) != 1 {
			t.Fatalf("got %d 'engine failed' entries, want 1", len(failed))
		}
		if got := failed[0].ContextMap()["stderr"]; got != "boom" {
			t.Errorf("stderr field = %v, want boom", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestArtifactPath
// ---------------------------------------------------------------------------

func TestArtifactPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"doc.pdf", "doc.pdf", nil},
		{"doc.tex", "doc.pdf", nil},
		{"doc", "doc.pdf", nil},
		{".report", ".report.pdf", nil},
		{"out/", "out.pdf", nil},
		{"", "", ErrEmptyOutputPath},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ArtifactPath(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ArtifactPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
