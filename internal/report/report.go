package report

import (
	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/printer"
	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/resolve"
)

// Status classifies the outcome of a resolution query.
type Status string

const (
	StatusResolved  Status = "resolved"
	StatusNotFound  Status = "not-found"
	StatusAmbiguous Status = "ambiguous"
)

// Site is a source position. The zero value means the position is
// unknown (synthetic queries, daemon requests without a file).
type Site struct {
	File   string
	Line   int
	Column int
}

func (s Site) Known() bool {
	return s.File != "" || s.Line != 0
}

// Impl is one implementation record as it appears in a report: its
// canonical signature plus where it was declared.
type Impl struct {
	Signature string
	Site      Site
}

// Binding records one instantiated parameter of a resolved record.
type Binding struct {
	Name string
	Term string
}

// Report is the structured outcome of a single query. It carries
// everything a renderer or a trace sink needs; it does not know how
// to print itself.
type Report struct {
	Goal   string
	Site   Site
	Status Status

	// Resolved only.
	Resolved *Impl
	Bindings []Binding

	// Ambiguous only, declaration order.
	Candidates []Impl

	// NotFound only, declaration order.
	NearMisses []Impl
}

func siteOf(file string, line, column int) Site {
	return Site{File: file, Line: line, Column: column}
}

func implOf(rec *registry.ImplementationRecord) Impl {
	return Impl{
		Signature: printer.Record(rec),
		Site:      siteOf(rec.File, rec.Line, rec.Column),
	}
}

func implsOf(recs []*registry.ImplementationRecord) []Impl {
	if len(recs) == 0 {
		return nil
	}
	impls := make([]Impl, len(recs))
	for i, rec := range recs {
		impls[i] = implOf(rec)
	}
	return impls
}

// bindingsOf reports the chosen record's parameters in declaration
// order. Parameters the unifier never touched are left out.
func bindingsOf(rec *registry.ImplementationRecord, sub constgen.Subst) []Binding {
	var bindings []Binding
	for _, param := range rec.Params {
		v := constgen.Var{Decl: rec.Decl, Name: param.Name}
		if term, ok := sub.Lookup(v); ok {
			bindings = append(bindings, Binding{Name: param.Name, Term: term.String()})
		}
	}
	return bindings
}

// Build assembles the report for one query verdict. The registry
// supplies declaration sites for the query itself.
func Build(q *resolve.Query, verdict resolve.Verdict, reg *registry.Registry) *Report {
	r := &Report{
		Goal: printer.Goal(q.Target, q.Interface, q.Args),
	}
	if decl, ok := reg.Decls().Lookup(q.Decl); ok {
		r.Site = siteOf(decl.File, decl.Line, decl.Column)
	}

	switch v := verdict.(type) {
	case resolve.Resolved:
		r.Status = StatusResolved
		impl := implOf(v.Record)
		r.Resolved = &impl
		r.Bindings = bindingsOf(v.Record, v.Subst)
	case resolve.Ambiguous:
		r.Status = StatusAmbiguous
		r.Candidates = implsOf(v.Candidates)
	case resolve.NotFound:
		r.Status = StatusNotFound
		r.NearMisses = implsOf(v.NearMisses)
	}
	return r
}
