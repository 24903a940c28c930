package ast

import (
	"github.com/veldt-lang/veldt/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its
// primary token. This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
}

// Statement is a Node that represents a top-level declaration.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents a constant expression: an
// integer literal or a reference to a constant parameter.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Visitor walks an AST. The source formatter implements it.
type Visitor interface {
	VisitProgram(p *Program)
	VisitInterfaceDeclaration(d *InterfaceDeclaration)
	VisitTypeDeclaration(d *TypeDeclaration)
	VisitImplDeclaration(d *ImplDeclaration)
	VisitRequireDeclaration(d *RequireDeclaration)
	VisitIdentifier(i *Identifier)
	VisitIntegerLiteral(il *IntegerLiteral)
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string // Source file path
	Statements []Statement
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// Identifier represents a name: a constant parameter, a type, or an
// interface, depending on where it appears.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) Accept(v Visitor)     { v.VisitIdentifier(i) }
func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

// IntegerLiteral represents an integer literal. The sign is kept apart
// from the magnitude so the full unsigned 64-bit range stays
// representable; the parser folds a leading minus into Negative.
type IntegerLiteral struct {
	Token     token.Token
	Negative  bool
	Magnitude uint64
}

func (il *IntegerLiteral) Accept(v Visitor)     { v.VisitIntegerLiteral(il) }
func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

// KindRef names a constant kind annotation, e.g. 'u8' in 'N: u8'.
type KindRef struct {
	Token token.Token
	Name  string
}

func (kr *KindRef) GetToken() token.Token {
	if kr == nil {
		return token.Token{}
	}
	return kr.Token
}

// ConstParam is one entry of a constant parameter list:
// 'N: u8' or 'N: u8 = 1' or 'M: u8 = N'.
type ConstParam struct {
	Token   token.Token // the parameter name token
	Name    *Identifier
	Kind    *KindRef
	Default Expression // nil when the parameter has no default
}

func (cp *ConstParam) GetToken() token.Token {
	if cp == nil {
		return token.Token{}
	}
	return cp.Token
}

// TypeRef references a type or an interface by name, with optional
// constant arguments: 'u32', 'Uwu[A, 11]', 'Traitor[N, 2]'.
type TypeRef struct {
	Token token.Token // the name token
	Name  *Identifier
	Args  []Expression
}

func (tr *TypeRef) GetToken() token.Token {
	if tr == nil {
		return token.Token{}
	}
	return tr.Token
}

// InterfaceDeclaration declares an interface and its constant
// parameters: interface Traitor[N: u8 = 1, M: u8 = N]
type InterfaceDeclaration struct {
	Token  token.Token // The 'interface' token
	Name   *Identifier
	Params []*ConstParam
}

func (d *InterfaceDeclaration) Accept(v Visitor)     { v.VisitInterfaceDeclaration(d) }
func (d *InterfaceDeclaration) statementNode()       {}
func (d *InterfaceDeclaration) TokenLiteral() string { return d.Token.Lexeme }
func (d *InterfaceDeclaration) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// TypeDeclaration declares a named type and its constant parameters:
// type Uwu[A: u32 = 1, B: u32 = A]
type TypeDeclaration struct {
	Token  token.Token // The 'type' token
	Name   *Identifier
	Params []*ConstParam
}

func (d *TypeDeclaration) Accept(v Visitor)     { v.VisitTypeDeclaration(d) }
func (d *TypeDeclaration) statementNode()       {}
func (d *TypeDeclaration) TokenLiteral() string { return d.Token.Lexeme }
func (d *TypeDeclaration) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// ImplDeclaration declares an implementation record:
// impl[N: u8] Traitor[N, 2] for u32
type ImplDeclaration struct {
	Token     token.Token   // The 'impl' token
	Params    []*ConstParam // binder, defaults not allowed here
	Interface *TypeRef
	Target    *TypeRef
}

func (d *ImplDeclaration) Accept(v Visitor)     { v.VisitImplDeclaration(d) }
func (d *ImplDeclaration) statementNode()       {}
func (d *ImplDeclaration) TokenLiteral() string { return d.Token.Lexeme }
func (d *ImplDeclaration) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// RequireDeclaration states an obligation to be resolved:
// require[N: u8] u32 : Traitor[N, N]
type RequireDeclaration struct {
	Token     token.Token   // The 'require' token
	Params    []*ConstParam // binder, defaults not allowed here
	Target    *TypeRef
	Interface *TypeRef
}

func (d *RequireDeclaration) Accept(v Visitor)     { v.VisitRequireDeclaration(d) }
func (d *RequireDeclaration) statementNode()       {}
func (d *RequireDeclaration) TokenLiteral() string { return d.Token.Lexeme }
func (d *RequireDeclaration) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}
