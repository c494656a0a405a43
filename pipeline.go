package tex2pdf

import "context"

// Pipeline renders a template and compiles the result in one call.
type Pipeline struct {
	runner *Runner
}

// NewPipeline creates a Pipeline. Options configure the underlying Runner.
func NewPipeline(opts ...Option) *Pipeline {
	return &Pipeline{runner: NewRunner(opts...)}
}

// Render returns the markup Process would compile, without running the engine.
func (p *Pipeline) Render(t *Template, data Data) (string, error) {
	return Render(t, data)
}

// Process renders t with data and compiles the markup to outputPath.
// Errors from either stage are returned unchanged; when rendering fails the
// engine is never started and nothing is written.
func (p *Pipeline) Process(ctx context.Context, t *Template, data Data, outputPath string) error {
	markup, err := Render(t, data)
	if err != nil {
		return err
	}
	return p.runner.Compile(ctx, markup, outputPath)
}

// Runner returns the Runner used by Process.
func (p *Pipeline) Runner() *Runner {
	return p.runner
}
