package parser

import (
	"github.com/veldt-lang/veldt/internal/ast"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/token"
)

// interface Traitor[N: u8 = 1, M: u8 = N]
func (p *Parser) parseInterfaceDeclaration() *ast.InterfaceDeclaration {
	stmt := &ast.InterfaceDeclaration{Token: p.curToken}

	stmt.Name = p.parseUpperName("Interface")
	if stmt.Name == nil {
		return nil
	}

	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		params := p.parseConstParams(true)
		if params == nil {
			return nil
		}
		stmt.Params = params
	}

	return stmt
}

// type Uwu[A: u32 = 1, B: u32 = A]
func (p *Parser) parseTypeDeclaration() *ast.TypeDeclaration {
	stmt := &ast.TypeDeclaration{Token: p.curToken}

	stmt.Name = p.parseUpperName("Type")
	if stmt.Name == nil {
		return nil
	}

	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		params := p.parseConstParams(true)
		if params == nil {
			return nil
		}
		stmt.Params = params
	}

	return stmt
}

// impl[N: u8] Traitor[N, 2] for u32
func (p *Parser) parseImplDeclaration() *ast.ImplDeclaration {
	stmt := &ast.ImplDeclaration{Token: p.curToken}

	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		params := p.parseConstParams(false)
		if params == nil {
			return nil
		}
		stmt.Params = params
	}

	p.nextToken()
	if p.curTokenIs(token.IDENT_LOWER) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP006,
			p.curToken,
			"Interface names must start with an uppercase letter",
		))
	}
	stmt.Interface = p.parseTypeRef()
	if stmt.Interface == nil {
		return nil
	}

	if !p.expectPeek(token.FOR) {
		return nil
	}

	p.nextToken()
	stmt.Target = p.parseTypeRef()
	if stmt.Target == nil {
		return nil
	}

	return stmt
}

// require[N: u8] u32 : Traitor[N, N]
func (p *Parser) parseRequireDeclaration() *ast.RequireDeclaration {
	stmt := &ast.RequireDeclaration{Token: p.curToken}

	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		params := p.parseConstParams(false)
		if params == nil {
			return nil
		}
		stmt.Params = params
	}

	p.nextToken()
	stmt.Target = p.parseTypeRef()
	if stmt.Target == nil {
		return nil
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}

	p.nextToken()
	if p.curTokenIs(token.IDENT_LOWER) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP006,
			p.curToken,
			"Interface names must start with an uppercase letter",
		))
	}
	stmt.Interface = p.parseTypeRef()
	if stmt.Interface == nil {
		return nil
	}

	return stmt
}

// parseUpperName consumes the name following a declaration keyword.
// A lowercase name is reported but still parsed, so the rest of the
// declaration gets checked too.
func (p *Parser) parseUpperName(what string) *ast.Identifier {
	if p.peekTokenIs(token.IDENT_LOWER) {
		p.nextToken()
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP006,
			p.curToken,
			what+" names must start with an uppercase letter",
		))
		return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)}
	}
	if !p.expectPeek(token.IDENT_UPPER) {
		return nil
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)}
}

// parseConstParams parses '[N: u8, M: u8 = N]'. curToken must be on
// the opening bracket; on success it ends on the closing one.
// Defaults are only legal in interface/type headers; binder lists on
// impl/require report P003 but keep parsing.
func (p *Parser) parseConstParams(allowDefaults bool) []*ast.ConstParam {
	params := []*ast.ConstParam{}

	if p.peekTokenIs(token.RBRACKET) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005,
			p.peekToken,
			"expected constant parameter",
			p.peekToken.Lexeme,
		))
		p.nextToken()
		return params
	}

	for {
		if p.peekTokenIs(token.IDENT_LOWER) {
			p.nextToken()
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP006,
				p.curToken,
				"Constant parameter names must start with an uppercase letter",
			))
		} else if !p.expectPeek(token.IDENT_UPPER) {
			return nil
		}
		param := &ast.ConstParam{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)},
		}

		if !p.expectPeek(token.COLON) {
			return nil
		}

		if p.peekTokenIs(token.IDENT_UPPER) {
			p.nextToken()
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP006,
				p.curToken,
				"Kind names must start with a lowercase letter",
			))
		} else if !p.expectPeek(token.IDENT_LOWER) {
			return nil
		}
		param.Kind = &ast.KindRef{Token: p.curToken, Name: p.curToken.Lexeme}

		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken() // consume =
			if !allowDefaults {
				p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
					diagnostics.ErrP003,
					p.curToken,
					"defaults are not allowed in an impl or require binder",
				))
			}
			p.nextToken()
			def := p.parseConstExpr()
			if def == nil {
				return nil
			}
			if allowDefaults {
				param.Default = def
			}
		}

		params = append(params, param)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return params
}

// parseTypeRef parses 'u32' or 'Uwu[A, 11]'. curToken must be on the
// name; on success it ends on the last token of the reference.
func (p *Parser) parseTypeRef() *ast.TypeRef {
	if !p.curTokenIs(token.IDENT_UPPER) && !p.curTokenIs(token.IDENT_LOWER) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005,
			p.curToken,
			"expected type or interface name",
			p.curToken.Lexeme,
		))
		return nil
	}

	ref := &ast.TypeRef{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)},
	}

	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()

		if p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			ref.Args = []ast.Expression{}
			return ref
		}

		for {
			p.nextToken()
			arg := p.parseConstExpr()
			if arg == nil {
				return nil
			}
			ref.Args = append(ref.Args, arg)

			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}

		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
	}

	return ref
}

// parseConstExpr parses one constant argument: an integer literal, a
// negated integer literal, or a parameter reference.
func (p *Parser) parseConstExpr() ast.Expression {
	switch p.curToken.Type {
	case token.INT:
		return &ast.IntegerLiteral{Token: p.curToken, Magnitude: p.curToken.Literal.(uint64)}
	case token.MINUS:
		tok := p.curToken
		if !p.expectPeek(token.INT) {
			return nil
		}
		return &ast.IntegerLiteral{Token: tok, Negative: true, Magnitude: p.curToken.Literal.(uint64)}
	case token.IDENT_UPPER:
		return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)}
	case token.IDENT_LOWER:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP006,
			p.curToken,
			"Constant references must start with an uppercase letter",
		))
		return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)}
	default:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP005,
			p.curToken,
			"expected constant expression",
			p.curToken.Lexeme,
		))
		return nil
	}
}
