package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-lang/veldt/internal/analyzer"
	"github.com/veldt-lang/veldt/internal/ast"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/printer"
	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/report"
)

const fullManifest = `interfaces:
  - name: Traitor
    params:
      - {name: N, kind: u8, default: 1}
      - {name: M, kind: u8, default: N}
types:
  - name: Uwu
    params:
      - {name: A, kind: u32}
      - {name: B, kind: u32}
impls:
  - params: [{name: N, kind: u8}]
    interface: {name: Traitor, args: [N, 2]}
    for: u32
  - interface: {name: Traitor, args: [1, 2]}
    for: {name: Uwu, args: [10, 12]}
requires:
  - target: u32
    interface: {name: Traitor, args: [1, 2]}
`

func TestParseFullManifest(t *testing.T) {
	program, errs := Parse([]byte(fullManifest), "decls.yaml")
	require.Empty(t, errs, "clean manifest produced diagnostics")
	require.Len(t, program.Statements, 5)
	assert.Equal(t, "decls.yaml", program.File)

	iface, ok := program.Statements[0].(*ast.InterfaceDeclaration)
	require.True(t, ok, "expected *ast.InterfaceDeclaration, got %T", program.Statements[0])
	assert.Equal(t, "Traitor", iface.Name.Value)
	require.Len(t, iface.Params, 2)
	lit, ok := iface.Params[0].Default.(*ast.IntegerLiteral)
	require.True(t, ok, "expected literal default, got %T", iface.Params[0].Default)
	assert.Equal(t, uint64(1), lit.Magnitude)
	ref, ok := iface.Params[1].Default.(*ast.Identifier)
	require.True(t, ok, "expected name default, got %T", iface.Params[1].Default)
	assert.Equal(t, "N", ref.Value)

	impl, ok := program.Statements[2].(*ast.ImplDeclaration)
	require.True(t, ok, "expected *ast.ImplDeclaration, got %T", program.Statements[2])
	assert.Equal(t, "impl[N: u8] Traitor[N, 2] for u32", formatDecl(impl))

	impl2, ok := program.Statements[3].(*ast.ImplDeclaration)
	require.True(t, ok, "expected *ast.ImplDeclaration, got %T", program.Statements[3])
	assert.Equal(t, "impl Traitor[1, 2] for Uwu[10, 12]", formatDecl(impl2))

	req, ok := program.Statements[4].(*ast.RequireDeclaration)
	require.True(t, ok, "expected *ast.RequireDeclaration, got %T", program.Statements[4])
	assert.Equal(t, "require u32 : Traitor[1, 2]", formatDecl(req))
}

// formatDecl reprints a single declaration through the source printer.
func formatDecl(stmt ast.Statement) string {
	sp := printer.NewSourcePrinter()
	stmt.Accept(sp)
	return sp.String()
}

func TestParsePositions(t *testing.T) {
	program, errs := Parse([]byte(fullManifest), "decls.yaml")
	require.Empty(t, errs)

	iface := program.Statements[0].(*ast.InterfaceDeclaration)
	assert.Equal(t, 2, iface.Token.Line, "interface keyword token line")
	assert.Equal(t, 4, iface.Params[0].Token.Line, "first param token line")

	impl := program.Statements[2].(*ast.ImplDeclaration)
	assert.Equal(t, 13, impl.Interface.Token.Line, "impl interface ref line")
	assert.Equal(t, 14, impl.Target.Token.Line, "impl target ref line")
}

func TestParseAnchorsAndAliases(t *testing.T) {
	src := `interfaces:
  - name: Traitor
    params:
      - {name: N, kind: u8, default: &one 1}
      - {name: M, kind: u8, default: *one}
`
	program, errs := Parse([]byte(src), "decls.yaml")
	require.Empty(t, errs)
	iface := program.Statements[0].(*ast.InterfaceDeclaration)
	lit, ok := iface.Params[1].Default.(*ast.IntegerLiteral)
	require.True(t, ok, "aliased default not resolved, got %T", iface.Params[1].Default)
	assert.Equal(t, uint64(1), lit.Magnitude)
}

func TestParseUnknownFieldIsRejected(t *testing.T) {
	src := `interfaces:
  - name: Traitor
    bogus: 1
`
	_, errs := Parse([]byte(src), "decls.yaml")
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostics.ErrP002, errs[0].Code)
	assert.Contains(t, errs[0].Message, "bogus")
	assert.Equal(t, "decls.yaml", errs[0].File)
}

func TestParseMalformedYAML(t *testing.T) {
	_, errs := Parse([]byte("interfaces: ["), "decls.yaml")
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostics.ErrP002, errs[0].Code)
}

func TestParseEmptyManifest(t *testing.T) {
	program, errs := Parse(nil, "decls.yaml")
	require.Empty(t, errs)
	assert.Empty(t, program.Statements)
}

func TestParseBadValues(t *testing.T) {
	for name, tc := range map[string]struct {
		src      string
		wantCode string
	}{
		"float argument": {
			src: `requires:
  - target: u32
    interface: {name: Traitor, args: [3.5]}
`,
			wantCode: diagnostics.ErrP005,
		},
		"boolean argument": {
			src: `requires:
  - target: u32
    interface: {name: Traitor, args: [true]}
`,
			wantCode: diagnostics.ErrP005,
		},
		"sequence argument": {
			src: `requires:
  - target: u32
    interface: {name: Traitor, args: [[1]]}
`,
			wantCode: diagnostics.ErrP005,
		},
		"oversized tagged literal": {
			src: `requires:
  - target: u32
    interface: {name: Traitor, args: [!!int 18446744073709551616]}
`,
			wantCode: diagnostics.ErrL001,
		},
		"oversized implicit literal resolves to float": {
			src: `requires:
  - target: u32
    interface: {name: Traitor, args: [18446744073709551616]}
`,
			wantCode: diagnostics.ErrP005,
		},
		"binder default": {
			src: `impls:
  - params: [{name: N, kind: u8, default: 1}]
    interface: {name: Traitor, args: [N]}
    for: u32
`,
			wantCode: diagnostics.ErrP003,
		},
		"missing interface": {
			src: `impls:
  - for: u32
`,
			wantCode: diagnostics.ErrP005,
		},
		"missing param kind": {
			src: `interfaces:
  - name: Traitor
    params: [{name: N}]
`,
			wantCode: diagnostics.ErrP005,
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, errs := Parse([]byte(tc.src), "decls.yaml")
			require.NotEmpty(t, errs, "expected diagnostics")
			assert.Equal(t, tc.wantCode, errs[0].Code, "diagnostic: %v", errs[0])
		})
	}
}

func TestManifestFlowsThroughAnalysis(t *testing.T) {
	program, errs := Parse([]byte(fullManifest), "decls.yaml")
	require.Empty(t, errs)

	a := analyzer.New(registry.New())
	analysisErrs := a.Analyze(program)
	require.Empty(t, analysisErrs, "manifest declarations failed analysis")

	require.Len(t, a.Reports, 1)
	rep := a.Reports[0]
	assert.Equal(t, report.StatusResolved, rep.Status)
	assert.Equal(t, "u32 : Traitor[1, 2]", rep.Goal)
	require.NotNil(t, rep.Resolved)
	assert.Equal(t, "impl[N: u8] Traitor[N, 2] for u32", rep.Resolved.Signature)
	assert.Equal(t, "decls.yaml", rep.Resolved.Site.File)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decls.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullManifest), 0o644))

	program, errs, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Len(t, program.Statements, 5)

	_, _, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
