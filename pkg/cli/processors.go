package cli

import (
	"github.com/tangentlang/tangent/internal/autodiff"
	"github.com/tangentlang/tangent/internal/config"
	"github.com/tangentlang/tangent/internal/indexset"
	"github.com/tangentlang/tangent/internal/manifest"
	"github.com/tangentlang/tangent/internal/pipeline"
)

// LoadProcessor parses the manifest at ctx.ManifestPath.
type LoadProcessor struct{}

func (p *LoadProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	mod, err := manifest.Load(ctx.ManifestPath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Module = mod
	return ctx
}

// BuildProcessor materializes the declaration table and the eagerly
// registered witnesses into a fresh module registry.
type BuildProcessor struct{}

func (p *BuildProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Module == nil {
		return ctx
	}
	registry, funcs, err := ctx.Module.Build()
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Registry = registry
	ctx.Functions = funcs
	ctx.EagerWitnesses = registry.Len()
	return ctx
}

// ReplayProcessor runs the manifest's lookup requests through the registry in
// order, recording each outcome.
type ReplayProcessor struct{}

func (p *ReplayProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Registry == nil {
		return ctx
	}
	for _, req := range ctx.Module.Requests {
		params, results, err := ctx.Module.RequestSets(req)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			continue
		}
		fn := ctx.Functions[req.Function]
		w := ctx.Registry.GetOrCreateMinimalWitness(fn, params, results)
		res := pipeline.Result{Request: req, Witness: w}
		if w == nil {
			res.Reason = reasonForMiss(fn, results)
		}
		ctx.Results = append(ctx.Results, res)
	}
	return ctx
}

// reasonForMiss explains an unresolved request. The registry itself only
// signals absence; the distinctions here are for the report reader.
func reasonForMiss(fn autodiff.Function, results *indexset.IndexSet) string {
	switch {
	case results.Capacity() != 1 || !results.Contains(config.SingleResultIndex):
		return "unresolved: multi-result differentiation is not supported"
	case fn.Decl() == nil:
		return "unresolved: function has no source declaration"
	case len(fn.Decl().Annotations()) == 0:
		return "unresolved: no " + config.DifferentiableAttrName + " annotations declared"
	default:
		return "unresolved: no annotation covers the requested parameters"
	}
}
