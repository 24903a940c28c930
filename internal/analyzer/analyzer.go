package analyzer

import (
	"github.com/veldt-lang/veldt/internal/ast"
	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/report"
	"github.com/veldt-lang/veldt/internal/token"
)

// Analyzer performs semantic analysis on the AST: it populates the
// implementation registry from declarations, then resolves every
// require obligation against it.
type Analyzer struct {
	registry *registry.Registry
	errors   []*diagnostics.DiagnosticError
	file     string

	// Filled by the require pass, in source order.
	Results []pipeline.RequireResult
	Reports []*report.Report
}

// New creates a new Analyzer over a given registry.
func New(reg *registry.Registry) *Analyzer {
	return &Analyzer{registry: reg}
}

// Registry returns the registry the analyzer populates.
func (a *Analyzer) Registry() *registry.Registry {
	return a.registry
}

// Analyze runs all passes over a single program: headers, impls, then
// requires. The registry is sealed between the impl and require
// passes; resolution only ever sees a finished record set.
func (a *Analyzer) Analyze(program *ast.Program) []*diagnostics.DiagnosticError {
	a.AnalyzeHeaders(program)
	a.AnalyzeImpls(program)
	a.registry.Seal()
	a.AnalyzeRequires(program)
	return a.errors
}

// AnalyzeHeaders registers interface and type declarations. Callers
// analyzing several files run this over all of them before any impl
// pass, so declaration order only matters within the record list.
func (a *Analyzer) AnalyzeHeaders(program *ast.Program) []*diagnostics.DiagnosticError {
	a.file = program.File
	for _, stmt := range program.Statements {
		switch d := stmt.(type) {
		case *ast.InterfaceDeclaration:
			a.declareInterface(d)
		case *ast.TypeDeclaration:
			a.declareType(d)
		}
	}
	return a.errors
}

// AnalyzeImpls registers implementation records in source order.
func (a *Analyzer) AnalyzeImpls(program *ast.Program) []*diagnostics.DiagnosticError {
	a.file = program.File
	for _, stmt := range program.Statements {
		if d, ok := stmt.(*ast.ImplDeclaration); ok {
			a.declareImpl(d)
		}
	}
	return a.errors
}

// AnalyzeRequires validates and resolves require declarations in
// source order. Duplicate requires each get their own verdict and
// report.
func (a *Analyzer) AnalyzeRequires(program *ast.Program) []*diagnostics.DiagnosticError {
	a.file = program.File
	for _, stmt := range program.Statements {
		if d, ok := stmt.(*ast.RequireDeclaration); ok {
			a.declareRequire(d)
		}
	}
	return a.errors
}

func (a *Analyzer) addError(code string, tok token.Token, message string, got ...interface{}) {
	err := diagnostics.NewError(code, tok, message, got...)
	if err.File == "" {
		err.File = a.file
	}
	a.errors = append(a.errors, err)
}

// binderScope tracks the constant parameters an impl or require
// declared, which of them were referenced, and the declaration that
// owns the resulting free variables.
type binderScope struct {
	owner  constgen.DeclID
	params []registry.ConstParam
	decls  []*ast.ConstParam
	kinds  map[string]constgen.Kind
	used   map[string]bool
}

func (a *Analyzer) buildBinder(astParams []*ast.ConstParam, owner constgen.DeclID) (*binderScope, bool) {
	scope := &binderScope{
		owner: owner,
		kinds: make(map[string]constgen.Kind),
		used:  make(map[string]bool),
	}

	valid := true
	for _, ap := range astParams {
		kind, ok := constgen.KindFromName(ap.Kind.Name)
		if !ok {
			a.addError(diagnostics.ErrA003, ap.Kind.Token, "unknown kind name", ap.Kind.Name)
			valid = false
			continue
		}
		if _, dup := scope.kinds[ap.Name.Value]; dup {
			a.addError(diagnostics.ErrA004, ap.Name.Token, "duplicate constant parameter", ap.Name.Value)
			valid = false
			continue
		}
		scope.kinds[ap.Name.Value] = kind
		scope.params = append(scope.params, registry.ConstParam{Name: ap.Name.Value, Kind: kind})
		scope.decls = append(scope.decls, ap)
	}

	return scope, valid
}

// checkBinderUse reports binder parameters nothing referenced.
func (a *Analyzer) checkBinderUse(scope *binderScope) {
	for i, p := range scope.params {
		if !scope.used[p.Name] {
			a.addError(diagnostics.ErrA005, scope.decls[i].GetToken(), "unused constant parameter", p.Name)
		}
	}
}

// slotSpec describes one declared constant slot: its name, its kind,
// and the default term (nil when the slot has none).
type slotSpec struct {
	name    string
	kind    constgen.Kind
	defTerm constgen.Term
}

func slotsOf(params []registry.ConstParam, defaults []constgen.Term) []slotSpec {
	slots := make([]slotSpec, len(params))
	for i, p := range params {
		slots[i] = slotSpec{name: p.Name, kind: p.Kind}
		if i < len(defaults) && defaults[i] != nil {
			slots[i].defTerm = defaults[i]
		}
	}
	return slots
}

func slotIndex(slots []slotSpec, name string) int {
	for i, s := range slots {
		if s.name == name {
			return i
		}
	}
	return -1
}
