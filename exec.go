package tex2pdf

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/alnah/go-tex2pdf/internal/process"
)

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	// Run executes name with args in directory dir and returns what it
	// wrote to stdout and stderr. A non-zero exit is reported as an error
	// exposing ExitCode() int, as *exec.ExitError does.
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, stderr string, err error)
}

// waitDelay bounds how long Run waits for output pipes after the process
// has been killed.
const waitDelay = 5 * time.Second

// ExecRunner implements CommandRunner using os/exec. The child runs in its
// own process group, killed as a whole when ctx is done.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- engine binary is caller configuration
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	process.Isolate(cmd)
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Compile-time interface check.
var _ CommandRunner = (*ExecRunner)(nil)
