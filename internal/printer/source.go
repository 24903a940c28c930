package printer

import (
	"bytes"
	"strconv"

	"github.com/veldt-lang/veldt/internal/ast"
	"github.com/veldt-lang/veldt/internal/token"
)

// SourcePrinter reprints an AST in canonical surface syntax: one
// declaration per line, minimal spacing, integer literals in decimal.
// Declarations are grouped by keyword with a blank line between
// groups. Comments do not survive lexing, so they are not reprinted.
type SourcePrinter struct {
	buf bytes.Buffer
}

func NewSourcePrinter() *SourcePrinter {
	return &SourcePrinter{}
}

// Source formats a whole program.
func Source(program *ast.Program) string {
	sp := NewSourcePrinter()
	program.Accept(sp)
	return sp.String()
}

func (sp *SourcePrinter) String() string {
	return sp.buf.String()
}

func (sp *SourcePrinter) VisitProgram(p *ast.Program) {
	var last token.TokenType
	for i, stmt := range p.Statements {
		if i > 0 && stmt.GetToken().Type != last {
			sp.buf.WriteByte('\n')
		}
		stmt.Accept(sp)
		sp.buf.WriteByte('\n')
		last = stmt.GetToken().Type
	}
}

func (sp *SourcePrinter) VisitInterfaceDeclaration(d *ast.InterfaceDeclaration) {
	sp.buf.WriteString("interface ")
	sp.writeName(d.Name)
	sp.writeParams(d.Params)
}

func (sp *SourcePrinter) VisitTypeDeclaration(d *ast.TypeDeclaration) {
	sp.buf.WriteString("type ")
	sp.writeName(d.Name)
	sp.writeParams(d.Params)
}

func (sp *SourcePrinter) VisitImplDeclaration(d *ast.ImplDeclaration) {
	sp.buf.WriteString("impl")
	sp.writeParams(d.Params)
	sp.buf.WriteByte(' ')
	sp.writeRef(d.Interface)
	sp.buf.WriteString(" for ")
	sp.writeRef(d.Target)
}

func (sp *SourcePrinter) VisitRequireDeclaration(d *ast.RequireDeclaration) {
	sp.buf.WriteString("require")
	sp.writeParams(d.Params)
	sp.buf.WriteByte(' ')
	sp.writeRef(d.Target)
	sp.buf.WriteString(" : ")
	sp.writeRef(d.Interface)
}

func (sp *SourcePrinter) VisitIdentifier(i *ast.Identifier) {
	sp.buf.WriteString(i.Value)
}

func (sp *SourcePrinter) VisitIntegerLiteral(il *ast.IntegerLiteral) {
	if il.Negative {
		sp.buf.WriteByte('-')
	}
	sp.buf.WriteString(strconv.FormatUint(il.Magnitude, 10))
}

func (sp *SourcePrinter) writeName(name *ast.Identifier) {
	if name == nil {
		sp.buf.WriteString("<???>")
		return
	}
	sp.buf.WriteString(name.Value)
}

func (sp *SourcePrinter) writeParams(params []*ast.ConstParam) {
	if len(params) == 0 {
		return
	}
	sp.buf.WriteByte('[')
	for i, param := range params {
		if i > 0 {
			sp.buf.WriteString(", ")
		}
		sp.writeName(param.Name)
		sp.buf.WriteString(": ")
		if param.Kind != nil {
			sp.buf.WriteString(param.Kind.Name)
		} else {
			sp.buf.WriteString("<???>")
		}
		if param.Default != nil {
			sp.buf.WriteString(" = ")
			param.Default.Accept(sp)
		}
	}
	sp.buf.WriteByte(']')
}

// writeRef prints a type or interface reference. Empty argument
// brackets are dropped.
func (sp *SourcePrinter) writeRef(ref *ast.TypeRef) {
	if ref == nil {
		sp.buf.WriteString("<???>")
		return
	}
	sp.writeName(ref.Name)
	if len(ref.Args) == 0 {
		return
	}
	sp.buf.WriteByte('[')
	for i, arg := range ref.Args {
		if i > 0 {
			sp.buf.WriteString(", ")
		}
		arg.Accept(sp)
	}
	sp.buf.WriteByte(']')
}
