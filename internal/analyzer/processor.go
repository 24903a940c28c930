package analyzer

import (
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/registry"
)

type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}

	reg := registry.New()
	analyzer := New(reg)
	errors := analyzer.Analyze(ctx.AstRoot)

	ctx.Registry = reg
	ctx.RequireResults = analyzer.Results
	ctx.Reports = analyzer.Reports

	if len(errors) > 0 {
		ctx.Errors = append(ctx.Errors, errors...)
	}

	return ctx
}
