package main

import (
	"io"
	"os"
	"os/exec"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-tex2pdf"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, process environment, and engine execution.
type Environment struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string

	// LookPath resolves engine binaries for doctor.
	LookPath func(string) (string, error)

	// Runner launches the engine. Nil uses the library's process runner.
	Runner tex2pdf.CommandRunner

	// SetMaxProcs adjusts GOMAXPROCS to the container CPU quota.
	// Nil skips the adjustment.
	SetMaxProcs func(logf func(string, ...any)) (undo func(), err error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Getenv:   os.Getenv,
		Environ:  os.Environ,
		LookPath: exec.LookPath,
		SetMaxProcs: func(logf func(string, ...any)) (func(), error) {
			return maxprocs.Set(maxprocs.Logger(logf))
		},
	}
}

// commandRunner returns the configured runner or a process runner.
func (e *Environment) commandRunner() tex2pdf.CommandRunner {
	if e.Runner != nil {
		return e.Runner
	}
	return &tex2pdf.ExecRunner{}
}
