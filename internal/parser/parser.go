package parser

import (
	"fmt"

	"github.com/veldt-lang/veldt/internal/ast"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/token"
)

// Parser is a recursive-descent parser over a buffered token stream.
// Errors go straight into the shared pipeline context; parsing keeps
// going past a broken declaration so one bad line doesn't hide the
// diagnostics of the rest of the file.
type Parser struct {
	stream pipeline.TokenStream
	ctx    *pipeline.PipelineContext

	curToken  token.Token
	peekToken token.Token
}

func New(stream pipeline.TokenStream, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{stream: stream, ctx: ctx}

	// Prime curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.stream.Next()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
		diagnostics.ErrP001,
		p.peekToken,
		fmt.Sprintf("expected next token to be %s", t),
		p.peekToken.Lexeme,
	))
}

// ParseProgram parses the whole input. Each declaration sits on its
// own line; after a broken one the parser resynchronizes at the next
// newline.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.ILLEGAL) {
			// ILLEGAL tokens were already reported by the lexer stage
			p.nextToken()
			continue
		}

		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
			if !p.peekTokenIs(token.NEWLINE) && !p.peekTokenIs(token.EOF) {
				p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
					diagnostics.ErrP002,
					p.peekToken,
					"expected newline after declaration",
					p.peekToken.Lexeme,
				))
			}
		}
		p.nextToken()
		p.skipToNewline()
	}

	return program
}

func (p *Parser) parseDeclaration() ast.Statement {
	switch p.curToken.Type {
	case token.INTERFACE:
		if d := p.parseInterfaceDeclaration(); d != nil {
			return d
		}
	case token.TYPE:
		if d := p.parseTypeDeclaration(); d != nil {
			return d
		}
	case token.IMPL:
		if d := p.parseImplDeclaration(); d != nil {
			return d
		}
	case token.REQUIRE:
		if d := p.parseRequireDeclaration(); d != nil {
			return d
		}
	default:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP002,
			p.curToken,
			"expected a declaration (interface, type, impl or require)",
			p.curToken.Lexeme,
		))
	}
	return nil
}

func (p *Parser) skipToNewline() {
	for !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}
