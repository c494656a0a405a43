package tex2pdf

import (
	"slices"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultEngine is the typesetting engine binary.
	DefaultEngine = "pdflatex"

	// DefaultTimeout bounds a single engine run.
	DefaultTimeout = 2 * time.Minute
)

// defaultEngineArgs keep the engine from stopping at an interactive prompt
// and make it exit on the first error.
var defaultEngineArgs = []string{"-interaction=nonstopmode", "-halt-on-error"}

// Option configures a Runner or a Pipeline.
type Option func(*settings)

// settings holds the configuration shared by Runner and Pipeline.
type settings struct {
	engine     string
	engineArgs []string
	timeout    time.Duration
	tempDir    string
	logger     *zap.Logger
	cmdRunner  CommandRunner
}

func newSettings(opts []Option) settings {
	s := settings{
		engine:     DefaultEngine,
		engineArgs: slices.Clone(defaultEngineArgs),
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
		cmdRunner:  &ExecRunner{},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithEngine sets the engine binary ("pdflatex", "xelatex", "lualatex" or a path).
// Panics if bin is empty.
func WithEngine(bin string) Option {
	if bin == "" {
		panic("tex2pdf: WithEngine binary must not be empty")
	}
	return func(s *settings) {
		s.engine = bin
	}
}

// WithEngineArgs replaces the flags passed to the engine before the source
// file name. The defaults are -interaction=nonstopmode -halt-on-error;
// callers replacing them should keep a non-interactive mode.
func WithEngineArgs(args ...string) Option {
	return func(s *settings) {
		s.engineArgs = slices.Clone(args)
	}
}

// WithTimeout sets the maximum duration of one engine run.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tex2pdf: WithTimeout duration must be positive")
	}
	return func(s *settings) {
		s.timeout = d
	}
}

// WithTempDir sets the parent directory of compilation workspaces.
// Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(s *settings) {
		s.tempDir = dir
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l == nil {
			l = zap.NewNop()
		}
		s.logger = l
	}
}

// WithCommandRunner replaces the process launcher, mainly for tests.
// Panics if r is nil.
func WithCommandRunner(r CommandRunner) Option {
	if r == nil {
		panic("tex2pdf: WithCommandRunner runner must not be nil")
	}
	return func(s *settings) {
		s.cmdRunner = r
	}
}
