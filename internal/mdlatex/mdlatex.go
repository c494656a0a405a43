// Package mdlatex converts Markdown into a LaTeX document body.
//
// Parsing is done by Goldmark; rendering uses a node renderer that emits
// LaTeX instead of HTML. The output is a fragment meant for the {{.content}}
// slot of a document template, not a standalone document. Raw HTML is
// dropped. Text is escaped, so Markdown input cannot inject TeX commands.
package mdlatex

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-tex2pdf/internal/texutil"
)

// Converter converts Markdown to a LaTeX body.
type Converter struct {
	md goldmark.Markdown
}

// Option configures a Converter.
type Option func(*nodeRenderer)

// WithBaseDir resolves relative image paths against dir. The engine runs in
// a scratch directory, so relative paths would otherwise not resolve.
func WithBaseDir(dir string) Option {
	return func(r *nodeRenderer) {
		r.baseDir = dir
	}
}

// New creates a Converter with CommonMark plus strikethrough and linkify.
func New(opts ...Option) *Converter {
	nr := &nodeRenderer{}
	for _, opt := range opts {
		opt(nr)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithParserOptions(
			parser.WithInlineParsers(util.Prioritized(extension.NewStrikethroughParser(), 500)),
		),
		goldmark.WithRenderer(renderer.NewRenderer(
			renderer.WithNodeRenderers(util.Prioritized(nr, 100)),
		)),
	)
	return &Converter{md: md}
}

// Convert renders markdown as a LaTeX fragment.
func (c *Converter) Convert(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("converting markdown to LaTeX: %w", err)
	}
	return buf.String(), nil
}

// sectioning maps heading levels 1-6 to LaTeX sectioning commands.
var sectioning = [...]string{
	`\section`, `\subsection`, `\subsubsection`,
	`\paragraph`, `\subparagraph`, `\subparagraph`,
}

type nodeRenderer struct {
	baseDir string
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	// blocks
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindParagraph, r.renderParagraph)
	reg.Register(ast.KindTextBlock, r.renderTextBlock)
	reg.Register(ast.KindThematicBreak, r.renderThematicBreak)
	reg.Register(ast.KindBlockquote, r.renderBlockquote)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindFencedCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindHTMLBlock, r.skip)
	reg.Register(ast.KindList, r.renderList)
	reg.Register(ast.KindListItem, r.renderListItem)

	// inlines
	reg.Register(ast.KindText, r.renderText)
	reg.Register(ast.KindString, r.renderString)
	reg.Register(ast.KindEmphasis, r.renderEmphasis)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(ast.KindRawHTML, r.skip)
	reg.Register(extast.KindStrikethrough, r.renderStrikethrough)
}

func (r *nodeRenderer) skip(_ util.BufWriter, _ []byte, _ ast.Node, _ bool) (ast.WalkStatus, error) {
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderHeading(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if entering {
		level := min(max(n.Level, 1), len(sectioning))
		_, _ = w.WriteString(sectioning[level-1] + "{")
	} else {
		_, _ = w.WriteString("}\n\n")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderParagraph(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("\n\n")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderTextBlock(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering && node.NextSibling() != nil {
		_ = w.WriteByte('\n')
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderThematicBreak(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("\\noindent\\rule{\\linewidth}{0.4pt}\n\n")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderBlockquote(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("\\begin{quote}\n")
	} else {
		_, _ = w.WriteString("\\end{quote}\n\n")
	}
	return ast.WalkContinue, nil
}

// renderCodeBlock emits indented and fenced code verbatim. The info string
// of fenced blocks is ignored. A block that contains the verbatim end marker
// is typeset line by line with escaping instead.
func (r *nodeRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var code strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}
	text := code.String()

	if strings.Contains(text, verbatimEnd) {
		writeEscapedCode(w, text)
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString("\\begin{verbatim}\n")
	_, _ = w.WriteString(text)
	_, _ = w.WriteString(verbatimEnd + "\n\n")
	return ast.WalkSkipChildren, nil
}

// verbatimEnd terminates a verbatim environment wherever it appears.
const verbatimEnd = `\end{verbatim}`

// writeEscapedCode typesets code in a monospace flushleft block. Spaces become
// control spaces so indentation survives.
func writeEscapedCode(w util.BufWriter, text string) {
	_, _ = w.WriteString("\\begin{flushleft}\\ttfamily\n")
	rows := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, row := range rows {
		row = strings.TrimSuffix(row, "\r")
		if row == "" {
			_, _ = w.WriteString(`\mbox{}`)
		} else {
			_, _ = w.WriteString(strings.ReplaceAll(texutil.Escape(row), " ", `\ `))
		}
		if i < len(rows)-1 {
			_, _ = w.WriteString(`\\`)
		}
		_, _ = w.WriteString("\n")
	}
	_, _ = w.WriteString("\\end{flushleft}\n\n")
}

func (r *nodeRenderer) renderList(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.List)
	env := "itemize"
	if n.IsOrdered() {
		env = "enumerate"
	}
	if entering {
		_, _ = w.WriteString("\\begin{" + env + "}\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("\\end{" + env + "}\n")
	if _, nested := n.Parent().(*ast.ListItem); !nested {
		_ = w.WriteByte('\n')
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderListItem(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("\\item ")
	} else {
		_ = w.WriteByte('\n')
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderText(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Text)
	_, _ = w.WriteString(texutil.Escape(string(n.Segment.Value(source))))
	switch {
	case n.HardLineBreak():
		_, _ = w.WriteString("\\\\\n")
	case n.SoftLineBreak():
		_ = w.WriteByte('\n')
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderString(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		n := node.(*ast.String)
		_, _ = w.WriteString(texutil.Escape(string(n.Value)))
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderEmphasis(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Emphasis)
	if !entering {
		_ = w.WriteByte('}')
		return ast.WalkContinue, nil
	}
	if n.Level >= 2 {
		_, _ = w.WriteString("\\textbf{")
	} else {
		_, _ = w.WriteString("\\emph{")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderStrikethrough(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("\\sout{")
	} else {
		_ = w.WriteByte('}')
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var sb strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		}
	}
	_, _ = w.WriteString("\\texttt{" + texutil.Escape(sb.String()) + "}")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if entering {
		_, _ = w.WriteString("\\href{" + texutil.EscapeURL(string(n.Destination)) + "}{")
	} else {
		_ = w.WriteByte('}')
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.AutoLink)
	url := string(n.URL(source))
	if n.AutoLinkType == ast.AutoLinkEmail {
		if !strings.HasPrefix(strings.ToLower(url), "mailto:") {
			url = "mailto:" + url
		}
		label := texutil.Escape(string(n.Label(source)))
		_, _ = w.WriteString("\\href{" + texutil.EscapeURL(url) + "}{" + label + "}")
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString("\\url{" + texutil.EscapeURL(url) + "}")
	return ast.WalkSkipChildren, nil
}

// renderImage includes local images and degrades remote ones to a link,
// since TeX engines cannot fetch URLs.
func (r *nodeRenderer) renderImage(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	dest := string(node.(*ast.Image).Destination)
	if isRemote(dest) {
		_, _ = w.WriteString("\\url{" + texutil.EscapeURL(dest) + "}")
		return ast.WalkSkipChildren, nil
	}
	if r.baseDir != "" && !filepath.IsAbs(dest) {
		dest = filepath.Join(r.baseDir, dest)
	}
	dest = filepath.ToSlash(dest)
	if !safeGraphicsPath(dest) {
		_, _ = w.WriteString("\\texttt{" + texutil.Escape(dest) + "}")
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString("\\includegraphics[width=\\linewidth]{\\detokenize{" + dest + "}}")
	return ast.WalkSkipChildren, nil
}

// safeGraphicsPath reports whether path can sit inside \detokenize. Braces,
// backslashes, comment and parameter characters act before detokenizing.
func safeGraphicsPath(path string) bool {
	return !strings.ContainsAny(path, `{}\%#`) && !strings.Contains(path, "^^")
}

func isRemote(dest string) bool {
	lower := strings.ToLower(dest)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}
