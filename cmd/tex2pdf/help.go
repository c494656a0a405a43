package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build       Render a template and typeset it to PDF")
	fmt.Fprintln(w, "  sizes       List page size presets")
	fmt.Fprintln(w, "  doctor      Check the typesetting environment")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tex2pdf help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2pdf build <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Substitute a content file into a LaTeX template and typeset it to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    LaTeX body (.tex) or Markdown (.md) file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output PDF path (default: input name with .pdf)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --tex-only            Write the rendered .tex and skip the engine")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>           Section title (default: input file name)")
	fmt.Fprintln(w, "  -f, --format <s>          Input format: latex, markdown")
	fmt.Fprintln(w, "  -t, --template <s>        Template name or .tex path (default article)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom template directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size preset (see 'tex2pdf sizes')")
	fmt.Fprintln(w, "      --margin <dim>        Margin as a TeX dimension (default 2cm)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "      --engine <bin>        Engine binary (default pdflatex)")
	fmt.Fprintln(w, "      --timeout <dur>       Engine timeout (default 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show engine invocation and output")
	fmt.Fprintln(w, "      --log-format <s>      Log format: console, json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TEX2PDF_CONFIG, TEX2PDF_ENGINE, TEX2PDF_TIMEOUT, TEX2PDF_PAGE_SIZE,")
	fmt.Fprintln(w, "  TEX2PDF_TEMPLATE, TEX2PDF_OUTPUT_DIR, TEX2PDF_ASSET_PATH, TEX2PDF_LOG_FORMAT")
}

// printSizesUsage prints usage for the sizes command.
func printSizesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2pdf sizes [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the page size presets accepted by --page-size.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the engine and required LaTeX packages are installed.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "sizes":
		printSizesUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: tex2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: tex2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
