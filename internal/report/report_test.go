package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/resolve"
)

func lit(t *testing.T, kind constgen.Kind, value uint64) constgen.Lit {
	t.Helper()
	l, err := constgen.ParseLit(kind, false, value)
	if err != nil {
		t.Fatalf("ParseLit(%s, %d) failed: %v", kind, value, err)
	}
	return l
}

// traitorRegistry builds the two-record setup most report tests use:
//
//	impl Traitor[1, 2] for u64       lib.vd:2
//	impl[N: u8] Traitor[N, 2] for u32  lib.vd:3
func traitorRegistry(t *testing.T) (*registry.Registry, *registry.ImplementationRecord, *registry.ImplementationRecord) {
	t.Helper()
	reg := registry.New()

	ifaceDecl := reg.Decls().Declare("interface Traitor", "lib.vd", 1, 1)
	err := reg.RegisterInterface(&registry.InterfaceDecl{
		Name: "Traitor",
		Decl: ifaceDecl,
		Params: []registry.ConstParam{
			{Name: "N", Kind: constgen.U8},
			{Name: "M", Kind: constgen.U8},
		},
	})
	if err != nil {
		t.Fatalf("RegisterInterface failed: %v", err)
	}

	impl1Decl := reg.Decls().Declare("impl Traitor for u64", "lib.vd", 2, 1)
	rec1 := &registry.ImplementationRecord{
		Decl:      impl1Decl,
		Target:    registry.TypeRef{Name: "u64"},
		Interface: "Traitor",
		Args:      []constgen.Term{lit(t, constgen.U8, 1), lit(t, constgen.U8, 2)},
		File:      "lib.vd",
		Line:      2,
		Column:    1,
	}
	if err := reg.RegisterImplementation(rec1); err != nil {
		t.Fatalf("RegisterImplementation failed: %v", err)
	}

	impl2Decl := reg.Decls().Declare("impl Traitor for u32", "lib.vd", 3, 1)
	rec2 := &registry.ImplementationRecord{
		Decl:      impl2Decl,
		Target:    registry.TypeRef{Name: "u32"},
		Interface: "Traitor",
		Args:      []constgen.Term{constgen.Var{Decl: impl2Decl, Name: "N"}, lit(t, constgen.U8, 2)},
		Params:    []registry.ConstParam{{Name: "N", Kind: constgen.U8}},
		File:      "lib.vd",
		Line:      3,
		Column:    1,
	}
	if err := reg.RegisterImplementation(rec2); err != nil {
		t.Fatalf("RegisterImplementation failed: %v", err)
	}

	return reg, rec1, rec2
}

func TestBuildResolved(t *testing.T) {
	reg, _, _ := traitorRegistry(t)
	reg.Seal()

	reqDecl := reg.Decls().Declare("require u32 : Traitor", "main.vd", 7, 5)
	q := &resolve.Query{
		Decl:      reqDecl,
		Target:    registry.TypeRef{Name: "u32"},
		Interface: "Traitor",
		Args:      []constgen.Term{lit(t, constgen.U8, 5), lit(t, constgen.U8, 2)},
	}

	r := Build(q, resolve.Resolve(q, reg), reg)

	want := &Report{
		Goal:   "u32 : Traitor[5, 2]",
		Site:   Site{File: "main.vd", Line: 7, Column: 5},
		Status: StatusResolved,
		Resolved: &Impl{
			Signature: "impl[N: u8] Traitor[N, 2] for u32",
			Site:      Site{File: "lib.vd", Line: 3, Column: 1},
		},
		Bindings: []Binding{{Name: "N", Term: "5"}},
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildNotFound(t *testing.T) {
	reg, _, _ := traitorRegistry(t)
	reg.Seal()

	reqDecl := reg.Decls().Declare("require u64 : Traitor", "main.vd", 9, 1)
	q := &resolve.Query{
		Decl:      reqDecl,
		Target:    registry.TypeRef{Name: "u64"},
		Interface: "Traitor",
		Args:      []constgen.Term{lit(t, constgen.U8, 1), lit(t, constgen.U8, 1)},
	}

	r := Build(q, resolve.Resolve(q, reg), reg)

	want := &Report{
		Goal:   "u64 : Traitor[1, 1]",
		Site:   Site{File: "main.vd", Line: 9, Column: 1},
		Status: StatusNotFound,
		NearMisses: []Impl{
			{Signature: "impl Traitor[1, 2] for u64", Site: Site{File: "lib.vd", Line: 2, Column: 1}},
			{Signature: "impl[N: u8] Traitor[N, 2] for u32", Site: Site{File: "lib.vd", Line: 3, Column: 1}},
		},
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAmbiguous(t *testing.T) {
	reg := registry.New()
	ifaceDecl := reg.Decls().Declare("interface I", "lib.vd", 1, 1)
	err := reg.RegisterInterface(&registry.InterfaceDecl{
		Name:   "I",
		Decl:   ifaceDecl,
		Params: []registry.ConstParam{{Name: "N", Kind: constgen.U8}},
	})
	if err != nil {
		t.Fatalf("RegisterInterface failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		implDecl := reg.Decls().Declare("impl I for T", "lib.vd", 2+i, 1)
		err := reg.RegisterImplementation(&registry.ImplementationRecord{
			Decl:      implDecl,
			Target:    registry.TypeRef{Name: "T"},
			Interface: "I",
			Args:      []constgen.Term{constgen.Var{Decl: implDecl, Name: "A"}},
			Params:    []registry.ConstParam{{Name: "A", Kind: constgen.U8}},
			File:      "lib.vd",
			Line:      2 + i,
			Column:    1,
		})
		if err != nil {
			t.Fatalf("RegisterImplementation failed: %v", err)
		}
	}
	reg.Seal()

	q := &resolve.Query{
		Decl:      constgen.NoDecl,
		Target:    registry.TypeRef{Name: "T"},
		Interface: "I",
		Args:      []constgen.Term{lit(t, constgen.U8, 5)},
	}

	r := Build(q, resolve.Resolve(q, reg), reg)
	if r.Status != StatusAmbiguous {
		t.Fatalf("Status = %q, want %q", r.Status, StatusAmbiguous)
	}
	if r.Site.Known() {
		t.Errorf("a query without a declaration has no site, got %+v", r.Site)
	}
	if len(r.Candidates) != 2 {
		t.Fatalf("Candidates = %d, want 2", len(r.Candidates))
	}
	if r.Candidates[0].Site.Line != 2 || r.Candidates[1].Site.Line != 3 {
		t.Errorf("candidates must keep declaration order, got %+v", r.Candidates)
	}
}

func TestBuildResolvedClosedRecordNoBindings(t *testing.T) {
	reg, _, _ := traitorRegistry(t)
	reg.Seal()

	q := &resolve.Query{
		Decl:      constgen.NoDecl,
		Target:    registry.TypeRef{Name: "u64"},
		Interface: "Traitor",
		Args:      []constgen.Term{lit(t, constgen.U8, 1), lit(t, constgen.U8, 2)},
	}

	r := Build(q, resolve.Resolve(q, reg), reg)
	if r.Status != StatusResolved {
		t.Fatalf("Status = %q, want %q", r.Status, StatusResolved)
	}
	if len(r.Bindings) != 0 {
		t.Errorf("a record without parameters has no bindings, got %v", r.Bindings)
	}
}
