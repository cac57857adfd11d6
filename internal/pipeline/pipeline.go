// Package pipeline sequences witness-resolution stages over one module: a
// Context is threaded through each stage, collecting the registry, the
// function table, resolution results, and any errors.
package pipeline

import (
	"github.com/tangentlang/tangent/internal/autodiff"
	"github.com/tangentlang/tangent/internal/manifest"
)

// Result records the outcome of one replayed lookup request.
type Result struct {
	Request manifest.Request
	Witness *autodiff.Witness // nil when the request did not resolve
	Reason  string            // human-readable miss explanation, empty on success
}

// Context carries the state shared by all stages.
type Context struct {
	ManifestPath string
	Module       *manifest.Module
	Registry     *autodiff.Registry
	Functions    map[string]autodiff.Function

	// EagerWitnesses is the registry size right after the build stage, before
	// any request materialized new declarations.
	EagerWitnesses int

	Results []Result
	Errors  []error
}

// Processor is one stage of the resolution pipeline.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors so the report can show every stage's findings.
	}
	return ctx
}
