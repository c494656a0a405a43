package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alnah/go-tex2pdf"
)

// sizeEntry is one preset in `tex2pdf sizes --json` output.
type sizeEntry struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// runSizesCmd lists the page size presets.
func runSizesCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "-h", "--help":
			printSizesUsage(env.Stdout)
			return ExitSuccess
		default:
			fmt.Fprintf(env.Stderr, "error: unknown argument %q\n", arg)
			printSizesUsage(env.Stderr)
			return ExitUsage
		}
	}

	entries := sizeEntries(tex2pdf.DefaultPageSizes())

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
			return ExitGeneral
		}
		return ExitSuccess
	}

	printSizes(env.Stdout, entries)
	return ExitSuccess
}

// sizeEntries returns the registry's presets sorted by key.
func sizeEntries(r *tex2pdf.PageSizeRegistry) []sizeEntry {
	keys := r.Keys()
	entries := make([]sizeEntry, 0, len(keys))
	for _, key := range keys {
		size, err := r.Lookup(key)
		if err != nil {
			continue
		}
		entries = append(entries, sizeEntry{Key: key, Name: size.Name, Width: size.Width, Height: size.Height})
	}
	return entries
}

// printSizes writes entries as an aligned table.
func printSizes(w io.Writer, entries []sizeEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tWIDTH\tHEIGHT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.Name, e.Width, e.Height)
	}
	_ = tw.Flush()
}
