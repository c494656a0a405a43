// Command tex2pdf renders LaTeX templates and typesets them to PDF.
package main

import (
	"fmt"
	"os"
	"strings"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the exit code.
// A bare input file is shorthand for `tex2pdf build <file>`.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "build":
		return runBuildCmd(rest, env)
	case "sizes":
		return runSizesCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		if err := runCompletion(rest, env); err != nil {
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "tex2pdf %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	}

	if isInputFile(cmd) {
		return runBuildCmd(args[1:], env)
	}

	fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
	printUsage(env.Stderr)
	return ExitUsage
}

// isInputFile reports whether arg looks like a content file.
func isInputFile(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasSuffix(lower, ".tex") ||
		strings.HasSuffix(lower, ".md") ||
		strings.HasSuffix(lower, ".markdown")
}
