package printer

import (
	"bytes"

	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/registry"
)

// Printer renders registry entries and queries back into canonical
// source form. Diagnostics and trace output both go through it so a
// record prints identically everywhere.
type Printer struct {
	buf bytes.Buffer
}

func New() *Printer {
	return &Printer{}
}

func (p *Printer) write(s string) {
	p.buf.WriteString(s)
}

func (p *Printer) String() string {
	return p.buf.String()
}

func (p *Printer) Reset() {
	p.buf.Reset()
}

func (p *Printer) printTerm(term constgen.Term) {
	p.write(term.String())
}

func (p *Printer) printTermList(terms []constgen.Term) {
	p.write("[")
	for i, term := range terms {
		if i > 0 {
			p.write(", ")
		}
		p.printTerm(term)
	}
	p.write("]")
}

func (p *Printer) printTypeRef(ref registry.TypeRef) {
	p.write(ref.Name)
	if len(ref.Args) > 0 {
		p.printTermList(ref.Args)
	}
}

func (p *Printer) printParams(params []registry.ConstParam) {
	if len(params) == 0 {
		return
	}
	p.write("[")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name)
		p.write(": ")
		p.write(param.Kind.String())
	}
	p.write("]")
}

// Term renders a single constant term.
func Term(term constgen.Term) string {
	return term.String()
}

// TypeRef renders a type reference, with its constant arguments when
// it has any: "u32", "Uwu[10, 12]".
func TypeRef(ref registry.TypeRef) string {
	p := New()
	p.printTypeRef(ref)
	return p.String()
}

// Record renders an implementation record as declared:
// "impl[N: u8] Traitor[N, 2] for u32".
func Record(rec *registry.ImplementationRecord) string {
	p := New()
	p.write("impl")
	p.printParams(rec.Params)
	p.write(" ")
	p.write(rec.Interface)
	if len(rec.Args) > 0 {
		p.printTermList(rec.Args)
	}
	p.write(" for ")
	p.printTypeRef(rec.Target)
	return p.String()
}

// Goal renders the obligation side of a query: "u32 : Traitor[1, 1]".
func Goal(target registry.TypeRef, iface string, args []constgen.Term) string {
	p := New()
	p.printTypeRef(target)
	p.write(" : ")
	p.write(iface)
	if len(args) > 0 {
		p.printTermList(args)
	}
	return p.String()
}

// Interface renders an interface header with its parameter kinds:
// "interface Traitor[N: u8, M: u8]".
func Interface(decl *registry.InterfaceDecl) string {
	p := New()
	p.write("interface ")
	p.write(decl.Name)
	p.printParams(decl.Params)
	return p.String()
}
