package tex2pdf_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/alnah/go-tex2pdf"
)

// ExampleLookupPageSize shows how preset keys map to TeX dimensions.
func ExampleLookupPageSize() {
	size, err := tex2pdf.LookupPageSize("A4")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(size.Width, size.Height, size.Name)
	// Output: 210mm 297mm A4
}

// ExampleRender renders an inline template. escape makes plain text safe
// to insert into LaTeX.
func ExampleRender() {
	tmpl, err := tex2pdf.ParseTemplate("greeting", `\section{ {{- escape .title -}} } {{.content}}`)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	markup, err := tex2pdf.Render(tmpl, tex2pdf.Data{"title": "Q&A", "content": `\emph{Hello}`})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(markup)
	// Output: \section{Q\&A} \emph{Hello}
}

// ExampleRender_missingField shows the error reported for absent data.
func ExampleRender_missingField() {
	tmpl := tex2pdf.MustParseTemplate("doc", `{{.content}}`)

	_, err := tex2pdf.Render(tmpl, tex2pdf.Data{"title": "T"})

	var rerr *tex2pdf.RenderError
	if errors.As(err, &rerr) {
		fmt.Println("missing:", rerr.Key)
	}
	// Output: missing: content
}

// ExamplePipeline_Process compiles a document. It requires pdflatex.
func ExamplePipeline_Process() {
	size, err := tex2pdf.LookupPageSize("letter")
	if err != nil {
		log.Fatal(err)
	}
	tmpl, err := tex2pdf.LoadTemplate("article")
	if err != nil {
		log.Fatal(err)
	}

	p := tex2pdf.NewPipeline()
	err = p.Process(context.Background(), tmpl, tex2pdf.NewData("Report", "Hello.", size, "1in"), "report.pdf")

	var cerr *tex2pdf.CompilationError
	if errors.As(err, &cerr) {
		fmt.Println(cerr.Diagnostics())
	}
}
