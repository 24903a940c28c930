// Package veldt embeds the resolution engine in host Go programs:
// load declaration files or source strings, seal the registry, then
// ask which implementation applies.
package veldt

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/veldt-lang/veldt/internal/analyzer"
	"github.com/veldt-lang/veldt/internal/ast"
	"github.com/veldt-lang/veldt/internal/config"
	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/lexer"
	"github.com/veldt-lang/veldt/internal/manifest"
	"github.com/veldt-lang/veldt/internal/parser"
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/report"
	"github.com/veldt-lang/veldt/internal/resolve"
)

// Engine accumulates declaration programs, seals them into a registry,
// and resolves queries. Loading and Require mutate engine state and
// are not safe for concurrent use; Resolve against a sealed engine is.
type Engine struct {
	programs []*ast.Program
	sources  map[string]string
	errs     []*diagnostics.DiagnosticError

	reg     *registry.Registry
	results []pipeline.RequireResult
	reports []*report.Report
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{
		sources: make(map[string]string),
	}
}

// LoadSource lexes and parses one declaration document. The program is
// kept even when parsing reported diagnostics; the returned error
// aggregates them.
func (e *Engine) LoadSource(source, filename string) error {
	if e.reg != nil {
		return fmt.Errorf("engine is already sealed")
	}
	pctx := pipeline.NewPipelineContext(source)
	pctx.FilePath = filename
	pctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(pctx)

	e.sources[filename] = source
	if pctx.AstRoot != nil {
		e.programs = append(e.programs, pctx.AstRoot)
	}
	e.errs = append(e.errs, pctx.Errors...)
	return composeError("parse errors in "+filename, pctx.Errors)
}

// LoadManifest loads one YAML manifest of declarations.
func (e *Engine) LoadManifest(path string) error {
	if e.reg != nil {
		return fmt.Errorf("engine is already sealed")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", path, err)
	}
	program, errs := manifest.Parse(data, path)

	e.sources[path] = string(data)
	if program != nil {
		e.programs = append(e.programs, program)
	}
	e.errs = append(e.errs, errs...)
	return composeError("parse errors in "+path, errs)
}

// LoadFile loads a declaration file, routed by extension: manifests by
// their YAML suffix, everything else as source.
func (e *Engine) LoadFile(path string) error {
	ext := filepath.Ext(path)
	for _, m := range config.ManifestFileExtensions {
		if ext == m {
			return e.LoadManifest(path)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return e.LoadSource(string(data), path)
}

// Seal analyzes everything loaded so far: headers from every program
// first, then implementation records, then requires against the sealed
// set. The returned error aggregates declaration diagnostics; failed
// requires are not errors here, they are Reports.
func (e *Engine) Seal() error {
	if e.reg != nil {
		return fmt.Errorf("engine is already sealed")
	}
	reg := registry.New()
	a := analyzer.New(reg)
	for _, p := range e.programs {
		a.AnalyzeHeaders(p)
	}
	for _, p := range e.programs {
		a.AnalyzeImpls(p)
	}
	reg.Seal()
	var errs []*diagnostics.DiagnosticError
	for _, p := range e.programs {
		errs = a.AnalyzeRequires(p)
	}

	e.reg = reg
	e.results = a.Results
	e.reports = a.Reports
	e.errs = append(e.errs, errs...)
	return composeError("declaration errors", withoutVerdictCodes(errs))
}

// Sealed reports whether Seal has run.
func (e *Engine) Sealed() bool {
	return e.reg != nil
}

// Registry exposes the sealed registry, nil before Seal. The daemon
// serves straight from it.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Errors returns every diagnostic accumulated by loading and sealing,
// including the R-coded ones that mirror failed reports.
func (e *Engine) Errors() []*diagnostics.DiagnosticError {
	return e.errs
}

// Reports returns the outcome of every loaded require, in source
// order.
func (e *Engine) Reports() []*report.Report {
	return e.reports
}

// Results pairs each loaded require with its raw verdict, aligned with
// Reports.
func (e *Engine) Results() []pipeline.RequireResult {
	return e.results
}

// Sources returns the loaded documents by filename, for renderers
// that excerpt source lines.
func (e *Engine) Sources() map[string]string {
	return e.sources
}

// Require resolves one textual obligation, e.g. "u32 : Traitor[1, 2]"
// or "[K: u8] u32 : Traitor[K, 2]". It runs the full front end, so
// omitted arguments are filled from declared defaults.
func (e *Engine) Require(goal string) (*report.Report, error) {
	if e.reg == nil {
		return nil, fmt.Errorf("engine is not sealed")
	}
	pctx := pipeline.NewPipelineContext("require " + goal + "\n")
	pctx.FilePath = "<require>"
	pctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(pctx)
	if len(pctx.Errors) > 0 {
		return nil, composeError("invalid require", pctx.Errors)
	}

	a := analyzer.New(e.reg)
	errs := withoutVerdictCodes(a.AnalyzeRequires(pctx.AstRoot))
	if len(errs) > 0 {
		return nil, composeError("invalid require", errs)
	}
	if len(a.Reports) != 1 {
		return nil, fmt.Errorf("expected one require obligation, got %d", len(a.Reports))
	}
	return a.Reports[0], nil
}

// Arg is one constant argument of a QuerySpec: a literal when Value is
// set, a caller-side free variable when Name is set.
type Arg struct {
	Value string
	Name  string
}

// QuerySpec is a structured query. Arguments must cover the declared
// arity in full; defaults are not expanded here.
type QuerySpec struct {
	Target     string
	TargetArgs []Arg
	Interface  string
	Args       []Arg
}

// Resolve answers one structured query against the sealed registry.
// Distinct argument names are distinct free variables within the one
// query. Safe for concurrent use after Seal.
func (e *Engine) Resolve(spec QuerySpec) (*report.Report, error) {
	if e.reg == nil {
		return nil, fmt.Errorf("engine is not sealed")
	}
	q, err := e.buildQuery(spec)
	if err != nil {
		return nil, err
	}
	verdict := resolve.Resolve(q, e.reg)
	return report.Build(q, verdict, e.reg), nil
}

func (e *Engine) buildQuery(spec QuerySpec) (*resolve.Query, error) {
	if spec.Target == "" {
		return nil, fmt.Errorf("query target is required")
	}
	if spec.Interface == "" {
		return nil, fmt.Errorf("query interface is required")
	}
	ifaceDecl, ok := e.reg.Interface(spec.Interface)
	if !ok {
		return nil, fmt.Errorf("interface %s is not declared", spec.Interface)
	}

	var targetTerms []constgen.Term
	if _, builtin := constgen.KindFromName(spec.Target); builtin {
		if len(spec.TargetArgs) > 0 {
			return nil, fmt.Errorf("builtin type %s takes no constant arguments", spec.Target)
		}
	} else {
		typeDecl, ok := e.reg.Type(spec.Target)
		if !ok {
			return nil, fmt.Errorf("type %s is not declared", spec.Target)
		}
		if len(spec.TargetArgs) != typeDecl.Arity() {
			return nil, fmt.Errorf("type %s expects %d constant arguments, got %d",
				spec.Target, typeDecl.Arity(), len(spec.TargetArgs))
		}
		terms, err := argTerms(spec.TargetArgs, typeDecl.Params)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", spec.Target, err)
		}
		targetTerms = terms
	}

	if len(spec.Args) != ifaceDecl.Arity() {
		return nil, fmt.Errorf("interface %s expects %d constant arguments, got %d",
			spec.Interface, ifaceDecl.Arity(), len(spec.Args))
	}
	ifaceTerms, err := argTerms(spec.Args, ifaceDecl.Params)
	if err != nil {
		return nil, fmt.Errorf("interface %s: %w", spec.Interface, err)
	}

	return &resolve.Query{
		Decl:      constgen.NoDecl,
		Target:    registry.TypeRef{Name: spec.Target, Args: targetTerms},
		Interface: spec.Interface,
		Args:      ifaceTerms,
	}, nil
}

func argTerms(args []Arg, params []registry.ConstParam) ([]constgen.Term, error) {
	terms := make([]constgen.Term, len(args))
	for i, a := range args {
		slot := params[i]
		switch {
		case a.Name != "" && a.Value != "":
			return nil, fmt.Errorf("argument %d: name and value are mutually exclusive", i+1)
		case a.Name != "":
			terms[i] = constgen.Var{Decl: constgen.NoDecl, Name: a.Name}
		case a.Value != "":
			text, negative := strings.CutPrefix(a.Value, "-")
			magnitude, err := strconv.ParseUint(text, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("argument %d: malformed constant %q", i+1, a.Value)
			}
			lit, err := constgen.ParseLit(slot.Kind, negative, magnitude)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %v", i+1, err)
			}
			terms[i] = lit
		default:
			return nil, fmt.Errorf("argument %d: needs a value or a name", i+1)
		}
	}
	return terms, nil
}

// withoutVerdictCodes drops the R-coded diagnostics that duplicate
// failed reports.
func withoutVerdictCodes(errs []*diagnostics.DiagnosticError) []*diagnostics.DiagnosticError {
	var out []*diagnostics.DiagnosticError
	for _, e := range errs {
		if e.Code == diagnostics.ErrR001 || e.Code == diagnostics.ErrR002 {
			continue
		}
		out = append(out, e)
	}
	return out
}

func composeError(context string, errs []*diagnostics.DiagnosticError) error {
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return fmt.Errorf("%s:\n%s", context, strings.Join(lines, "\n"))
}
