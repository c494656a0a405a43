package tex2pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-tex2pdf/internal/fileutil"
	"github.com/alnah/go-tex2pdf/internal/texutil"
)

// ArtifactExt is the suffix of every produced document.
const ArtifactExt = ".pdf"

// Fixed names inside a compilation workspace. The engine names its outputs
// after the source file, so input.tex yields input.pdf and input.log.
const (
	workspacePattern = "tex2pdf-*"
	sourceName       = "input.tex"
	artifactName     = "input.pdf"
	logName          = "input.log"
)

// maxLogSize caps how much of the engine log is kept in a CompilationError.
const maxLogSize = 1 << 20

// Runner compiles LaTeX markup into a PDF with an external engine.
// Each Compile call gets its own scratch workspace, so a Runner is safe for
// concurrent use. Concurrent compilations to the same output path are not
// serialized: the last one to finish wins.
type Runner struct {
	engine     string
	engineArgs []string
	timeout    time.Duration
	tempDir    string
	logger     *zap.Logger
	cmdRunner  CommandRunner
}

// NewRunner creates a Runner. Without options it runs
// "pdflatex -interaction=nonstopmode -halt-on-error" with a two-minute timeout.
func NewRunner(opts ...Option) *Runner {
	return newRunner(newSettings(opts))
}

func newRunner(s settings) *Runner {
	return &Runner{
		engine:     s.engine,
		engineArgs: s.engineArgs,
		timeout:    s.timeout,
		tempDir:    s.tempDir,
		logger:     s.logger,
		cmdRunner:  s.cmdRunner,
	}
}

// ArtifactPath returns outputPath with its suffix replaced by ".pdf".
func ArtifactPath(outputPath string) (string, error) {
	if outputPath == "" {
		return "", ErrEmptyOutputPath
	}
	return fileutil.ReplaceExt(outputPath, ArtifactExt)
}

// Compile typesets markup and moves the resulting PDF to outputPath, with
// the suffix forced to ".pdf". An existing file there is replaced.
//
// Errors:
//   - *CompilationError when the engine fails, times out, is missing, or
//     produces no PDF
//   - ErrFilesystem when the workspace cannot be prepared or the PDF cannot
//     be moved; the OS error is wrapped alongside
//
// The workspace is removed before Compile returns, whatever the outcome.
func (r *Runner) Compile(ctx context.Context, markup, outputPath string) error {
	dst, err := ArtifactPath(outputPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	workspace, err := os.MkdirTemp(r.tempDir, workspacePattern)
	if err != nil {
		return fmt.Errorf("%w: creating workspace: %w", ErrFilesystem, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workspace); rmErr != nil {
			r.logger.Warn("removing workspace failed", zap.String("workspace", workspace), zap.Error(rmErr))
		}
	}()

	if err := os.WriteFile(filepath.Join(workspace, sourceName), []byte(markup), 0o600); err != nil {
		return fmt.Errorf("%w: writing source: %w", ErrFilesystem, err)
	}

	args := append(slices.Clone(r.engineArgs), sourceName)
	r.logger.Debug("running engine",
		zap.String("engine", r.engine),
		zap.Strings("args", args),
		zap.String("workspace", workspace),
	)

	start := time.Now()
	stdout, stderr, runErr := r.cmdRunner.Run(ctx, workspace, r.engine, args...)
	if runErr != nil {
		cerr := r.compilationError(ctx, workspace, stdout, stderr, runErr)
		r.logger.Error("engine failed",
			zap.String("engine", r.engine),
			zap.Int("exit_code", cerr.ExitCode),
			zap.Strings("errors", cerr.Errors),
			zap.String("stderr", stderr),
			zap.Error(cerr.Err),
		)
		return cerr
	}

	artifact := filepath.Join(workspace, artifactName)
	if !fileutil.FileExists(artifact) {
		cerr := &CompilationError{
			Engine: r.engine,
			Stdout: stdout,
			Stderr: stderr,
			Log:    readLog(workspace),
			Err:    ErrNoArtifact,
		}
		r.logger.Error("engine produced no PDF", zap.String("engine", r.engine))
		return cerr
	}

	if err := fileutil.MoveFile(artifact, dst); err != nil {
		return fmt.Errorf("%w: moving PDF to %s: %w", ErrFilesystem, dst, err)
	}

	r.logger.Info("PDF written",
		zap.String("path", dst),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (r *Runner) compilationError(ctx context.Context, workspace, stdout, stderr string, runErr error) *CompilationError {
	cerr := &CompilationError{
		Engine:   r.engine,
		ExitCode: -1,
		Stdout:   stdout,
		Stderr:   stderr,
		Log:      readLog(workspace),
	}

	var coded interface{ ExitCode() int }
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		cerr.Err = fmt.Errorf("no result after %s: %w", r.timeout, context.DeadlineExceeded)
	case ctx.Err() != nil:
		cerr.Err = ctx.Err()
	case errors.Is(runErr, exec.ErrNotFound), errors.Is(runErr, fs.ErrNotExist):
		cerr.Err = fmt.Errorf("%w: %w", ErrEngineNotFound, runErr)
	case errors.As(runErr, &coded):
		cerr.ExitCode = coded.ExitCode()
		cerr.Err = runErr
	default:
		cerr.Err = runErr
	}

	source := cerr.Log
	if source == "" {
		source = stdout
	}
	cerr.Errors = texutil.ErrorLines(source)
	return cerr
}

// readLog returns the engine log left in workspace, truncated to its last
// maxLogSize bytes. A missing log yields "".
func readLog(workspace string) string {
	data, err := os.ReadFile(filepath.Join(workspace, logName))
	if err != nil {
		return ""
	}
	if len(data) > maxLogSize {
		data = data[len(data)-maxLogSize:]
	}
	return string(data)
}
