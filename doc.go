// Package tex2pdf turns document data into a PDF by filling a LaTeX
// template and running a TeX engine on the result.
//
// # Quick Start
//
// Look up a page size, load a template and run the pipeline:
//
//	size, err := tex2pdf.LookupPageSize("a4")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tmpl, err := tex2pdf.LoadTemplate("article")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p := tex2pdf.NewPipeline()
//	data := tex2pdf.NewData("Report", `Hello, \textbf{world}.`, size, "2cm")
//	if err := p.Process(ctx, tmpl, data, "report.pdf"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Stages
//
//  1. Page-size lookup: short keys ("a4", "letter", "remarkable2") map to
//     TeX dimensions.
//  2. Rendering: a text/template with missingkey=error, so a field the
//     template needs but the data lacks is reported instead of rendered
//     as "<no value>".
//  3. Compilation: the markup is written to a fresh scratch directory, the
//     engine runs there non-interactively, and the PDF is moved to the
//     output path. The directory is always removed.
//
// # Templates
//
// Two templates are built in: "article" (title, content, geometry) and
// "pgfplots" (the same with TikZ and pgfplots loaded). Templates see the
// data keys title, content, pageSize (.Width, .Height, .Name) and margin,
// and the functions escape, upper and lower. Values are inserted verbatim;
// use {{escape .title}} for plain text.
//
// # Configuration
//
// Use functional options to customize the engine run:
//
//	r := tex2pdf.NewRunner(
//	    tex2pdf.WithEngine("lualatex"),
//	    tex2pdf.WithTimeout(5 * time.Minute),
//	    tex2pdf.WithLogger(logger),
//	)
//
// # Error Handling
//
// Errors can be inspected with errors.Is and errors.As:
//
//	err := p.Process(ctx, tmpl, data, "out.pdf")
//	var cerr *tex2pdf.CompilationError
//	switch {
//	case errors.Is(err, tex2pdf.ErrRender):
//	    // template needs a field the data lacks
//	case errors.As(err, &cerr):
//	    fmt.Println(cerr.Diagnostics())
//	case errors.Is(err, tex2pdf.ErrFilesystem):
//	    // workspace or output path problem
//	}
package tex2pdf
