package pipeline

import (
	"github.com/veldt-lang/veldt/internal/ast"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/report"
	"github.com/veldt-lang/veldt/internal/resolve"
	"github.com/veldt-lang/veldt/internal/token"
)

// Processor is a single pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// TokenStream is what the lexer stage leaves behind for the parser
// stage: a buffered token source.
type TokenStream interface {
	Next() token.Token
}

// RequireResult pairs one require declaration with its verdict, in
// source order. Programmatic consumers read these; human-facing
// output goes through Reports instead.
type RequireResult struct {
	Query   *resolve.Query
	Verdict resolve.Verdict
}

// PipelineContext is the shared state threaded through all stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string

	TokenStream TokenStream
	AstRoot     *ast.Program

	// Errors accumulates diagnostics from every stage.
	Errors []*diagnostics.DiagnosticError

	// Set by the analyzer stage.
	Registry       *registry.Registry
	RequireResults []RequireResult
	Reports        []*report.Report
}

func NewPipelineContext(sourceCode string) *PipelineContext {
	return &PipelineContext{
		SourceCode: sourceCode,
	}
}

// AddError appends a diagnostic to the context, stamping the current
// file path on diagnostics that don't carry one.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

// HasErrors reports whether any stage recorded a diagnostic.
func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}
