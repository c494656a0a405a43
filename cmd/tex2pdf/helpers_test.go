package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake engine and environment
// ---------------------------------------------------------------------------

// fakeRunner stands in for the engine and probe commands.
// On a compile call it writes input.pdf into the workspace unless fail is set.
type fakeRunner struct {
	mu sync.Mutex

	fail    bool
	stdout  string
	outputs map[string]string // probe name -> stdout

	calls   []string
	sources []string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, name)

	if out, ok := f.outputs[filepath.Base(name)]; ok {
		return out, "", nil
	}

	if data, err := os.ReadFile(filepath.Join(dir, "input.tex")); err == nil {
		f.sources = append(f.sources, string(data))
	}

	if f.fail {
		_ = os.WriteFile(filepath.Join(dir, "input.log"), []byte("! Undefined control sequence.\nl.3 \\foo\n"), 0o600)
		return f.stdout, "", exitError{code: 1}
	}

	if err := os.WriteFile(filepath.Join(dir, "input.pdf"), []byte("%PDF-1.5 fake"), 0o600); err != nil {
		return "", "", err
	}
	return f.stdout, "", nil
}

func (f *fakeRunner) lastSource() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sources) == 0 {
		return ""
	}
	return f.sources[len(f.sources)-1]
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	runner *fakeRunner
}

// newTestEnv returns an Environment with captured output, the given
// environment variables, and a fake engine.
func newTestEnv(t *testing.T, vars map[string]string) *testEnv {
	t.Helper()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	runner := &fakeRunner{}

	var environ []string
	for k, v := range vars {
		environ = append(environ, k+"="+v)
	}

	env := &Environment{
		Stdout:  stdout,
		Stderr:  stderr,
		Getenv:  func(k string) string { return vars[k] },
		Environ: func() []string { return environ },
		LookPath: func(name string) (string, error) {
			return "", exec.ErrNotFound
		},
		Runner: runner,
	}

	return &testEnv{Environment: env, stdout: stdout, stderr: stderr, runner: runner}
}

// writeInput writes content to name inside a fresh temp dir.
func writeInput(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing input: %v", err)
	}
	return path
}

// assertFileExists fails the test if path does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

// exitError mimics *exec.ExitError.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e exitError) ExitCode() int { return e.code }
