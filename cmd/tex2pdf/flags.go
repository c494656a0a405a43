package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size   string
	margin string
}

// documentFlags holds document content flags.
type documentFlags struct {
	title    string
	format   string
	template string
}

// engineFlags holds typesetting engine flags.
type engineFlags struct {
	binary  string
	timeout string
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common    commonFlags
	output    string
	assetPath string
	texOnly   bool
	logFormat string
	page      pageFlags
	document  documentFlags
	engine    engineFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show engine invocation and output")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size preset (default a4, see 'tex2pdf sizes')")
	fs.StringVar(&f.margin, "margin", "", "page margin as a TeX dimension (default 2cm)")
}

// addDocumentFlags adds document content flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "section title (default: input file name)")
	fs.StringVarP(&f.format, "format", "f", "", "input format: latex, markdown (default: by extension)")
	fs.StringVarP(&f.template, "template", "t", "", "template name or .tex path (default article)")
}

// addEngineFlags adds engine flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVar(&f.binary, "engine", "", "typesetting engine binary (default pdflatex)")
	fs.StringVar(&f.timeout, "timeout", "", "engine timeout (e.g., 90s, 5m; default 2m)")
}

// newBuildFlagSet registers every build flag on a fresh FlagSet.
// Shared by parseBuildFlags and shell completion.
func newBuildFlagSet(f *buildFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output PDF path (default: input name with .pdf)")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom template directory ({dir}/templates/{name}.tex)")
	fs.BoolVar(&f.texOnly, "tex-only", false, "write the rendered .tex and skip the engine")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addDocumentFlags(fs, &f.document)
	addEngineFlags(fs, &f.engine)

	return fs
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string, usageOut io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet(f)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printBuildUsage(usageOut) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
