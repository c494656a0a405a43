package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/config"
	"github.com/alnah/go-tex2pdf/internal/hints"
	"github.com/alnah/go-tex2pdf/internal/logger"
	"github.com/alnah/go-tex2pdf/internal/mdlatex"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput     = errors.New("no input specified")
	ErrTooManyArgs = errors.New("too many arguments")
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Input formats.
const (
	formatLaTeX    = "latex"
	formatMarkdown = "markdown"
)

// runBuildCmd parses flags, loads configuration and runs a build.
// Returns the process exit code.
func runBuildCmd(args []string, env *Environment) int {
	flags, positional, err := parseBuildFlags(args, env.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		fmt.Fprintln(env.Stderr, "Run 'tex2pdf help build' for usage.")
		return ExitUsage
	}

	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg, err := loadBuildConfig(flags, env.Getenv)
	if err != nil {
		printError(env.Stderr, err, cfg, flags.common.verbose)
		return exitCodeFor(err)
	}

	log, err := newBuildLogger(flags, cfg, env.Stderr)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}
	defer func() { _ = log.Sync() }()

	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS,
	// in which case Go runtime defaults apply.
	if env.SetMaxProcs != nil {
		if undo, err := env.SetMaxProcs(logger.Printf(log)); err == nil {
			defer undo()
		}
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	outPath, err := runBuild(ctx, positional, flags, cfg, log, env)
	if err != nil {
		printError(env.Stderr, err, cfg, flags.common.verbose)
		return exitCodeFor(err)
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "wrote %s\n", outPath)
	}
	return ExitSuccess
}

// loadBuildConfig resolves configuration.
// Precedence: CLI flags > env vars > config file > defaults.
func loadBuildConfig(flags *buildFlags, getenv func(string) string) (*config.Config, error) {
	envCfg := loadEnvConfig(getenv)

	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(f *buildFlags, cfg *config.Config) {
	setIfSet(&cfg.Engine.Binary, f.engine.binary)
	setIfSet(&cfg.Engine.Timeout, f.engine.timeout)
	setIfSet(&cfg.Page.Size, f.page.size)
	setIfSet(&cfg.Page.Margin, f.page.margin)
	setIfSet(&cfg.Document.Title, f.document.title)
	setIfSet(&cfg.Document.Format, f.document.format)
	setIfSet(&cfg.Document.Template, f.document.template)
	setIfSet(&cfg.Assets.BasePath, f.assetPath)
	setIfSet(&cfg.Log.Format, f.logFormat)
}

// newBuildLogger creates the zap logger for a build.
// --verbose forces debug level, --quiet forces error level.
func newBuildLogger(f *buildFlags, cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	level := cfg.Log.Level
	switch {
	case f.common.verbose:
		level = "debug"
	case f.common.quiet:
		level = "error"
	}
	return logger.New(&logger.Config{Level: level, Format: cfg.Log.Format, Output: w})
}

// runBuild renders the input into the configured template and typesets it.
// Returns the path of the written file.
func runBuild(ctx context.Context, args []string, flags *buildFlags, cfg *config.Config, log *zap.Logger, env *Environment) (string, error) {
	inputPath, err := resolveInputPath(args)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	body := string(content)
	if detectFormat(cfg.Document.Format, inputPath) == formatMarkdown {
		body, err = markdownBody(body, inputPath)
		if err != nil {
			return "", err
		}
	}

	size, err := tex2pdf.LookupPageSize(cfg.Page.Size)
	if err != nil {
		return "", err
	}

	tmpl, err := tex2pdf.LoadTemplateFrom(cfg.Assets.BasePath, cfg.Document.Template)
	if err != nil {
		return "", err
	}

	title := cfg.Document.Title
	if title == "" {
		title = stem(inputPath)
	}
	data := tex2pdf.NewData(title, body, size, cfg.Page.Margin)

	if flags.texOnly {
		return writeMarkup(tmpl, data, inputPath, flags.output, cfg.Output.DefaultDir)
	}

	outputPath := resolveOutputPath(inputPath, flags.output, cfg.Output.DefaultDir, tex2pdf.ArtifactExt)
	if err := ensureParentDir(outputPath); err != nil {
		return "", err
	}

	log.Debug("building document",
		zap.String("input", inputPath),
		zap.String("template", tmpl.Name()),
		zap.String("pageSize", size.Name))

	pipeline := tex2pdf.NewPipeline(pipelineOptions(cfg, log, env)...)
	if err := pipeline.Process(ctx, tmpl, data, outputPath); err != nil {
		return "", err
	}
	return tex2pdf.ArtifactPath(outputPath)
}

// writeMarkup renders the template and writes the .tex without running the engine.
func writeMarkup(tmpl *tex2pdf.Template, data tex2pdf.Data, inputPath, output, defaultDir string) (string, error) {
	markup, err := tex2pdf.Render(tmpl, data)
	if err != nil {
		return "", err
	}

	outputPath := resolveOutputPath(inputPath, output, defaultDir, ".tex")
	if samePath(outputPath, inputPath) {
		return "", fmt.Errorf("%w: %s would overwrite the input, use --output", ErrWriteOutput, outputPath)
	}
	if err := ensureParentDir(outputPath); err != nil {
		return "", err
	}
	if err := os.WriteFile(outputPath, []byte(markup), filePermissions); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return outputPath, nil
}

// pipelineOptions translates configuration into library options.
// Config is validated before this is called.
func pipelineOptions(cfg *config.Config, log *zap.Logger, env *Environment) []tex2pdf.Option {
	opts := []tex2pdf.Option{
		tex2pdf.WithLogger(log),
		tex2pdf.WithCommandRunner(env.commandRunner()),
	}
	if cfg.Engine.Binary != "" {
		opts = append(opts, tex2pdf.WithEngine(cfg.Engine.Binary))
	}
	if len(cfg.Engine.Args) > 0 {
		opts = append(opts, tex2pdf.WithEngineArgs(cfg.Engine.Args...))
	}
	if timeout, err := cfg.Engine.TimeoutDuration(); err == nil && timeout > 0 {
		opts = append(opts, tex2pdf.WithTimeout(timeout))
	}
	return opts
}

// resolveInputPath returns the single positional input file.
func resolveInputPath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrNoInput
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: expected one input file, got %d", ErrTooManyArgs, len(args))
	}
}

// detectFormat returns the configured format, or infers it from the extension.
func detectFormat(configured, inputPath string) string {
	if configured != "" {
		return strings.ToLower(configured)
	}
	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".md", ".markdown":
		return formatMarkdown
	default:
		return formatLaTeX
	}
}

// markdownBody converts Markdown to a LaTeX body.
// Relative image paths resolve against the input's directory.
func markdownBody(markdown, inputPath string) (string, error) {
	baseDir, err := filepath.Abs(filepath.Dir(inputPath))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return mdlatex.New(mdlatex.WithBaseDir(baseDir)).Convert(markdown)
}

// resolveOutputPath returns the output path for the given extension.
// Priority: --output flag, then output.defaultDir, then next to the input.
func resolveOutputPath(inputPath, output, defaultDir, ext string) string {
	if output != "" {
		return output
	}
	name := stem(inputPath) + ext
	if defaultDir != "" {
		return filepath.Join(defaultDir, name)
	}
	return filepath.Join(filepath.Dir(inputPath), name)
}

// ensureParentDir creates the directory that will hold path.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: creating directory %s: %w", ErrWriteOutput, dir, err)
	}
	return nil
}

// stem returns the file name without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// samePath reports whether a and b name the same file location.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// printError writes err to w followed by actionable hints.
// cfg may be nil when configuration failed to load.
func printError(w io.Writer, err error, cfg *config.Config, verbose bool) {
	var compErr *tex2pdf.CompilationError
	if verbose && errors.As(err, &compErr) {
		if diag := compErr.Diagnostics(); diag != "" {
			fmt.Fprintln(w, diag)
		}
	}
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err, cfg, verbose))
}

// hintFor returns the hint matching err, or "".
func hintFor(err error, cfg *config.Config, verbose bool) string {
	var renderErr *tex2pdf.RenderError
	switch {
	case errors.Is(err, tex2pdf.ErrEngineNotFound):
		engine := tex2pdf.DefaultEngine
		if cfg != nil && cfg.Engine.Binary != "" {
			engine = cfg.Engine.Binary
		}
		return hints.ForEngineNotFound(engine)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, tex2pdf.ErrCompilation):
		return hints.ForCompilation(verbose)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, tex2pdf.ErrUnknownPageSize):
		return hints.ForPageSize(tex2pdf.DefaultPageSizes().Keys())
	case errors.Is(err, tex2pdf.ErrTemplateNotFound):
		return hints.ForTemplateNotFound(tex2pdf.TemplateNames())
	case errors.As(err, &renderErr):
		return hints.ForMissingField(renderErr.Key)
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
