package lexer

import (
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/token"
)

// LexerProcessor is the first pipeline stage: source text in, buffered
// token stream out. Malformed tokens become L001 diagnostics here; the
// parser skips over ILLEGAL tokens without reporting them again.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.SourceCode)
	stream := NewTokenStream(l)
	ctx.TokenStream = stream

	for _, tok := range stream.Tokens() {
		if tok.Type != token.ILLEGAL {
			continue
		}
		msg := "illegal character"
		if s, ok := tok.Literal.(string); ok && s != tok.Lexeme {
			msg = s
		}
		ctx.AddError(diagnostics.NewError(diagnostics.ErrL001, tok, msg, tok.Lexeme))
	}

	return ctx
}
