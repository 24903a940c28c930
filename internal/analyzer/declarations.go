package analyzer

import (
	"fmt"
	"strconv"

	"github.com/veldt-lang/veldt/internal/ast"
	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/printer"
	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/report"
	"github.com/veldt-lang/veldt/internal/resolve"
)

func (a *Analyzer) declareInterface(d *ast.InterfaceDeclaration) {
	declID := a.registry.Decls().Declare("interface "+d.Name.Value, a.file, d.Token.Line, d.Token.Column)

	params, defaults, ok := a.buildHeaderParams(d.Params, declID)
	if !ok {
		return
	}

	err := a.registry.RegisterInterface(&registry.InterfaceDecl{
		Name:     d.Name.Value,
		Decl:     declID,
		Params:   params,
		Defaults: defaults,
		File:     a.file,
		Line:     d.Token.Line,
		Column:   d.Token.Column,
	})
	if err != nil {
		a.addError(diagnostics.ErrA004, d.Name.Token, err.Error())
	}
}

func (a *Analyzer) declareType(d *ast.TypeDeclaration) {
	if _, builtin := constgen.KindFromName(d.Name.Value); builtin {
		a.addError(diagnostics.ErrA004, d.Name.Token, "builtin type cannot be redeclared", d.Name.Value)
		return
	}

	declID := a.registry.Decls().Declare("type "+d.Name.Value, a.file, d.Token.Line, d.Token.Column)

	params, defaults, ok := a.buildHeaderParams(d.Params, declID)
	if !ok {
		return
	}

	err := a.registry.RegisterType(&registry.TypeDecl{
		Name:     d.Name.Value,
		Decl:     declID,
		Params:   params,
		Defaults: defaults,
		File:     a.file,
		Line:     d.Token.Line,
		Column:   d.Token.Column,
	})
	if err != nil {
		a.addError(diagnostics.ErrA004, d.Name.Token, err.Error())
	}
}

// buildHeaderParams validates an interface/type parameter list and
// its defaults. A literal default must fit the slot kind; a name
// default must reference an earlier slot of the same declaration with
// the same kind.
func (a *Analyzer) buildHeaderParams(astParams []*ast.ConstParam, owner constgen.DeclID) ([]registry.ConstParam, []constgen.Term, bool) {
	params := make([]registry.ConstParam, len(astParams))
	defaults := make([]constgen.Term, len(astParams))
	index := make(map[string]int, len(astParams))
	valid := true

	for i, ap := range astParams {
		kind, ok := constgen.KindFromName(ap.Kind.Name)
		if !ok {
			a.addError(diagnostics.ErrA003, ap.Kind.Token, "unknown kind name", ap.Kind.Name)
			valid = false
			continue
		}
		if _, dup := index[ap.Name.Value]; dup {
			a.addError(diagnostics.ErrA004, ap.Name.Token, "duplicate constant parameter", ap.Name.Value)
			valid = false
			continue
		}
		index[ap.Name.Value] = i
		params[i] = registry.ConstParam{Name: ap.Name.Value, Kind: kind}
	}

	for i, ap := range astParams {
		if ap.Default == nil || params[i].Name == "" {
			continue
		}
		kind := params[i].Kind

		switch def := ap.Default.(type) {
		case *ast.IntegerLiteral:
			lit, err := constgen.ParseLit(kind, def.Negative, def.Magnitude)
			if err != nil {
				a.addError(diagnostics.ErrA003, def.Token,
					fmt.Sprintf("default out of range for kind %s", kind), litText(def))
				valid = false
				continue
			}
			defaults[i] = lit
		case *ast.Identifier:
			refIdx, declared := index[def.Value]
			if !declared || refIdx >= i {
				a.addError(diagnostics.ErrA006, def.Token,
					"default must reference an earlier parameter of the same declaration", def.Value)
				valid = false
				continue
			}
			if params[refIdx].Kind != kind {
				a.addError(diagnostics.ErrA003, def.Token,
					fmt.Sprintf("default %s has kind %s, expected %s", def.Value, params[refIdx].Kind, kind))
				valid = false
				continue
			}
			defaults[i] = constgen.Var{Decl: owner, Name: def.Value}
		}
	}

	if !valid {
		return nil, nil, false
	}
	return params, defaults, true
}

func (a *Analyzer) declareImpl(d *ast.ImplDeclaration) {
	label := fmt.Sprintf("impl %s for %s", d.Interface.Name.Value, d.Target.Name.Value)
	declID := a.registry.Decls().Declare(label, a.file, d.Token.Line, d.Token.Column)

	scope, ok := a.buildBinder(d.Params, declID)
	if !ok {
		return
	}

	ifaceName, args, ok := a.convertInterfaceRef(d.Interface, scope)
	if !ok {
		return
	}
	target, ok := a.convertTargetRef(d.Target, scope)
	if !ok {
		return
	}
	a.checkBinderUse(scope)

	rec := &registry.ImplementationRecord{
		Decl:      declID,
		Target:    target,
		Interface: ifaceName,
		Args:      args,
		Params:    scope.params,
		File:      a.file,
		Line:      d.Token.Line,
		Column:    d.Token.Column,
	}
	if err := a.registry.RegisterImplementation(rec); err != nil {
		a.addError(diagnostics.ErrA001, d.Token, err.Error())
	}
}

func (a *Analyzer) declareRequire(d *ast.RequireDeclaration) {
	label := fmt.Sprintf("require %s : %s", d.Target.Name.Value, d.Interface.Name.Value)
	declID := a.registry.Decls().Declare(label, a.file, d.Token.Line, d.Token.Column)

	scope, ok := a.buildBinder(d.Params, declID)
	if !ok {
		return
	}

	target, ok := a.convertTargetRef(d.Target, scope)
	if !ok {
		return
	}
	ifaceName, args, ok := a.convertInterfaceRef(d.Interface, scope)
	if !ok {
		return
	}
	a.checkBinderUse(scope)

	q := &resolve.Query{
		Decl:      declID,
		Target:    target,
		Interface: ifaceName,
		Args:      args,
	}
	verdict := resolve.Resolve(q, a.registry)
	a.Results = append(a.Results, pipeline.RequireResult{Query: q, Verdict: verdict})
	a.Reports = append(a.Reports, report.Build(q, verdict, a.registry))

	switch v := verdict.(type) {
	case resolve.NotFound:
		a.addError(diagnostics.ErrR001, d.Token,
			fmt.Sprintf("no implementation of %s for %s", ifaceName, printer.TypeRef(target)))
	case resolve.Ambiguous:
		a.addError(diagnostics.ErrR002, d.Token,
			fmt.Sprintf("ambiguous implementations of %s for %s (%d candidates)",
				ifaceName, printer.TypeRef(target), len(v.Candidates)))
	}
}

// convertInterfaceRef resolves the interface side of an impl or
// require: the interface must be declared, and its argument list is
// expanded against the declared slots (applying defaults).
func (a *Analyzer) convertInterfaceRef(ref *ast.TypeRef, scope *binderScope) (string, []constgen.Term, bool) {
	name := ref.Name.Value
	decl, ok := a.registry.Interface(name)
	if !ok {
		a.addError(diagnostics.ErrA001, ref.Token, "undeclared interface", name)
		return "", nil, false
	}

	args, ok := a.expandArgs(ref, slotsOf(decl.Params, decl.Defaults), scope)
	if !ok {
		return "", nil, false
	}
	return name, args, true
}

// convertTargetRef resolves the implementing-type side. Builtin
// scalars (the kind names) take no constant arguments; declared types
// get the same default expansion as interfaces.
func (a *Analyzer) convertTargetRef(ref *ast.TypeRef, scope *binderScope) (registry.TypeRef, bool) {
	name := ref.Name.Value

	if _, builtin := constgen.KindFromName(name); builtin {
		if len(ref.Args) > 0 {
			a.addError(diagnostics.ErrA002, ref.Token,
				fmt.Sprintf("builtin type %s takes no constant arguments", name), len(ref.Args))
			return registry.TypeRef{}, false
		}
		return registry.TypeRef{Name: name}, true
	}

	decl, ok := a.registry.Type(name)
	if !ok {
		a.addError(diagnostics.ErrA001, ref.Token, "undeclared type", name)
		return registry.TypeRef{}, false
	}

	args, ok := a.expandArgs(ref, slotsOf(decl.Params, decl.Defaults), scope)
	if !ok {
		return registry.TypeRef{}, false
	}
	return registry.TypeRef{Name: name, Args: args}, true
}

// expandArgs converts the written arguments of a reference and fills
// the remaining slots from defaults. A name default copies the term
// already computed for the earlier slot it points at, so
// 'Traitor[5]' against 'interface Traitor[N: u8 = 1, M: u8 = N]'
// expands to 'Traitor[5, 5]'.
func (a *Analyzer) expandArgs(ref *ast.TypeRef, slots []slotSpec, scope *binderScope) ([]constgen.Term, bool) {
	name := ref.Name.Value
	if len(ref.Args) > len(slots) {
		a.addError(diagnostics.ErrA002, ref.Token,
			fmt.Sprintf("%s takes at most %d constant arguments", name, len(slots)), len(ref.Args))
		return nil, false
	}

	terms := make([]constgen.Term, len(slots))
	valid := true
	for i, slot := range slots {
		if i < len(ref.Args) {
			t := a.convertArg(ref.Args[i], slot.kind, scope)
			if t == nil {
				valid = false
				continue
			}
			terms[i] = t
			continue
		}

		switch def := slot.defTerm.(type) {
		case nil:
			a.addError(diagnostics.ErrA002, ref.Token,
				fmt.Sprintf("missing constant argument for parameter %s of %s", slot.name, name))
			valid = false
		case constgen.Lit:
			terms[i] = def
		case constgen.Var:
			idx := slotIndex(slots, def.Name)
			if idx < 0 || terms[idx] == nil {
				valid = false
				continue
			}
			terms[i] = terms[idx]
		}
	}

	if !valid {
		return nil, false
	}
	return terms, true
}

// convertArg turns one written argument into a term of the expected
// kind: literals are range-checked at construction, parameter
// references must be bound by the binder with a matching kind.
func (a *Analyzer) convertArg(expr ast.Expression, want constgen.Kind, scope *binderScope) constgen.Term {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		lit, err := constgen.ParseLit(want, e.Negative, e.Magnitude)
		if err != nil {
			a.addError(diagnostics.ErrA003, e.Token,
				fmt.Sprintf("constant out of range for kind %s", want), litText(e))
			return nil
		}
		return lit
	case *ast.Identifier:
		kind, ok := scope.kinds[e.Value]
		if !ok {
			a.addError(diagnostics.ErrA001, e.Token, "undeclared constant parameter", e.Value)
			return nil
		}
		if kind != want {
			a.addError(diagnostics.ErrA003, e.Token,
				fmt.Sprintf("parameter %s has kind %s, expected %s", e.Value, kind, want))
			return nil
		}
		scope.used[e.Value] = true
		return constgen.Var{Decl: scope.owner, Name: e.Value}
	}
	return nil
}

func litText(il *ast.IntegerLiteral) string {
	if il.Negative {
		return "-" + strconv.FormatUint(il.Magnitude, 10)
	}
	return il.Token.Lexeme
}
