// Package texutil holds small LaTeX helpers shared by the renderer, the
// Markdown converter and the compilation runner.
package texutil

import (
	"bufio"
	"regexp"
	"strings"
)

// escaper maps each LaTeX special character to a form that typesets the
// literal character. strings.Replacer applies all rules in a single pass,
// so the backslash rule cannot re-escape output of the brace rules.
var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
)

// Escape returns s with LaTeX special characters escaped for use as plain text.
func Escape(s string) string {
	return escaper.Replace(s)
}

var urlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`#`, `\#`,
	`{`, `\{`,
	`}`, `\}`,
)

// EscapeURL escapes the characters hyperref cannot take verbatim inside the
// first argument of \href or \url.
func EscapeURL(s string) string {
	return urlEscaper.Replace(s)
}

// dimensionPattern matches a single TeX dimension in a unit geometry accepts.
var dimensionPattern = regexp.MustCompile(`^\d+(\.\d+)?(pt|mm|cm|in|bp|pc|dd|cc|sp|em|ex)$`)

// IsDimension reports whether s is a plain TeX dimension such as "2cm" or
// "0.5in". Values spliced into a preamble verbatim should pass this check.
func IsDimension(s string) bool {
	return dimensionPattern.MatchString(s)
}

// maxContextLines bounds how far after an error line the "l.N" location is searched.
const maxContextLines = 6

// ErrorLines extracts error messages from a TeX log. TeX reports errors as
// lines starting with "! ", usually followed a few lines later by the input
// location ("l.12 \section{..."). Each returned entry is the message with
// its location appended when one was found.
func ErrorLines(log string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(log))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	var out []string
	for i, line := range lines {
		if !strings.HasPrefix(line, "! ") {
			continue
		}
		msg := strings.TrimSpace(strings.TrimPrefix(line, "! "))
		for j := i + 1; j < len(lines) && j <= i+maxContextLines; j++ {
			if strings.HasPrefix(lines[j], "! ") {
				break
			}
			if strings.HasPrefix(lines[j], "l.") {
				msg += " (" + strings.TrimSpace(lines[j]) + ")"
				break
			}
		}
		out = append(out, msg)
	}
	return out
}
