package printer

import (
	"testing"

	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/registry"
)

func lit(t *testing.T, kind constgen.Kind, value uint64) constgen.Lit {
	t.Helper()
	l, err := constgen.ParseLit(kind, false, value)
	if err != nil {
		t.Fatalf("ParseLit(%s, %d) failed: %v", kind, value, err)
	}
	return l
}

func TestTypeRef(t *testing.T) {
	tests := []struct {
		name string
		ref  registry.TypeRef
		want string
	}{
		{
			name: "bare type",
			ref:  registry.TypeRef{Name: "u32"},
			want: "u32",
		},
		{
			name: "literal args",
			ref: registry.TypeRef{
				Name: "Uwu",
				Args: []constgen.Term{lit(t, constgen.U32, 10), lit(t, constgen.U32, 12)},
			},
			want: "Uwu[10, 12]",
		},
		{
			name: "variable arg",
			ref: registry.TypeRef{
				Name: "Uwu",
				Args: []constgen.Term{constgen.Var{Decl: 0, Name: "A"}, lit(t, constgen.U32, 11)},
			},
			want: "Uwu[A, 11]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeRef(tt.ref); got != tt.want {
				t.Errorf("TypeRef() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  *registry.ImplementationRecord
		want string
	}{
		{
			name: "closed record",
			rec: &registry.ImplementationRecord{
				Target:    registry.TypeRef{Name: "u64"},
				Interface: "Traitor",
				Args:      []constgen.Term{lit(t, constgen.U8, 1), lit(t, constgen.U8, 2)},
			},
			want: "impl Traitor[1, 2] for u64",
		},
		{
			name: "parameterized record",
			rec: &registry.ImplementationRecord{
				Target:    registry.TypeRef{Name: "u32"},
				Interface: "Traitor",
				Args:      []constgen.Term{constgen.Var{Decl: 1, Name: "N"}, lit(t, constgen.U8, 2)},
				Params:    []registry.ConstParam{{Name: "N", Kind: constgen.U8}},
			},
			want: "impl[N: u8] Traitor[N, 2] for u32",
		},
		{
			name: "parameterized target",
			rec: &registry.ImplementationRecord{
				Target: registry.TypeRef{
					Name: "Uwu",
					Args: []constgen.Term{constgen.Var{Decl: 2, Name: "A"}, constgen.Var{Decl: 2, Name: "A"}},
				},
				Interface: "Trait",
				Params:    []registry.ConstParam{{Name: "A", Kind: constgen.U32}},
			},
			want: "impl[A: u32] Trait for Uwu[A, A]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Record(tt.rec); got != tt.want {
				t.Errorf("Record() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGoal(t *testing.T) {
	got := Goal(
		registry.TypeRef{Name: "u64"},
		"Traitor",
		[]constgen.Term{lit(t, constgen.U8, 1), lit(t, constgen.U8, 1)},
	)
	if want := "u64 : Traitor[1, 1]"; got != want {
		t.Errorf("Goal() = %q, want %q", got, want)
	}
}

func TestGoalNullaryInterface(t *testing.T) {
	got := Goal(registry.TypeRef{Name: "u32"}, "Lonely", nil)
	if want := "u32 : Lonely"; got != want {
		t.Errorf("Goal() = %q, want %q", got, want)
	}
}

func TestInterface(t *testing.T) {
	got := Interface(&registry.InterfaceDecl{
		Name: "Traitor",
		Params: []registry.ConstParam{
			{Name: "N", Kind: constgen.U8},
			{Name: "M", Kind: constgen.U8},
		},
	})
	if want := "interface Traitor[N: u8, M: u8]"; got != want {
		t.Errorf("Interface() = %q, want %q", got, want)
	}
}

func TestSignedLiteralRendering(t *testing.T) {
	neg, err := constgen.ParseLit(constgen.I8, true, 5)
	if err != nil {
		t.Fatalf("ParseLit failed: %v", err)
	}
	ref := registry.TypeRef{Name: "Offset", Args: []constgen.Term{neg}}
	if got := TypeRef(ref); got != "Offset[-5]" {
		t.Errorf("TypeRef() = %q, want %q", got, "Offset[-5]")
	}
}
