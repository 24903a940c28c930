package constgen

import (
	"testing"
)

func lit(t *testing.T, kind Kind, value uint64) Lit {
	t.Helper()
	l, err := ParseLit(kind, false, value)
	if err != nil {
		t.Fatalf("ParseLit(%s, %d) failed: %v", kind, value, err)
	}
	return l
}

// --- Literal vs literal ---

func TestUnifyLiterals(t *testing.T) {
	tests := []struct {
		name    string
		pattern Term
		subject Term
		want    bool
	}{
		{"exact match", lit(t, U8, 2), lit(t, U8, 2), true},
		{"value mismatch", lit(t, U8, 2), lit(t, U8, 1), false},
		{"kind mismatch same value", lit(t, U32, 5), lit(t, U64, 5), false},
		{"signed vs unsigned", lit(t, I32, 5), lit(t, U32, 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := make(Subst)
			if got := Unify(tt.pattern, tt.subject, sub); got != tt.want {
				t.Errorf("Unify(%v, %v) = %v, want %v", tt.pattern, tt.subject, got, tt.want)
			}
		})
	}
}

// --- Record var instantiated by the query ---

func TestUnifyRecordVarBindsToLiteral(t *testing.T) {
	table := NewDeclTable()
	implDecl := table.Declare("impl", "", 0, 0)
	n := Var{Decl: implDecl, Name: "N"}

	sub := make(Subst)
	if !Unify(n, lit(t, U32, 10), sub) {
		t.Fatalf("record var vs literal must unify")
	}
	bound, ok := sub.Lookup(n)
	if !ok || !Equal(bound, lit(t, U32, 10)) {
		t.Errorf("expected N := 10, got %v (bound=%v)", bound, ok)
	}
}

func TestUnifyMonotonicBinding(t *testing.T) {
	// impl Trait for Uwu[A, A] against target args [10, 12]: the
	// second position must fail because A is already 10.
	table := NewDeclTable()
	implDecl := table.Declare("impl", "", 0, 0)
	a := Var{Decl: implDecl, Name: "A"}

	sub := make(Subst)
	pattern := []Term{a, a}
	subject := []Term{lit(t, U32, 10), lit(t, U32, 12)}

	if UnifyAll(pattern, subject, sub) {
		t.Fatalf("rebinding A from 10 to 12 must fail the whole record")
	}
}

func TestUnifyRepeatedVarConsistentValue(t *testing.T) {
	table := NewDeclTable()
	implDecl := table.Declare("impl", "", 0, 0)
	a := Var{Decl: implDecl, Name: "A"}

	sub := make(Subst)
	if !UnifyAll([]Term{a, a}, []Term{lit(t, U32, 7), lit(t, U32, 7)}, sub) {
		t.Fatalf("the same value at both positions must unify")
	}
}

// --- Query var constrained by the record ---

func TestUnifyQueryVarConstrainedByLiteral(t *testing.T) {
	table := NewDeclTable()
	reqDecl := table.Declare("require", "", 0, 0)
	n := Var{Decl: reqDecl, Name: "N"}

	sub := make(Subst)
	if !Unify(lit(t, U8, 2), n, sub) {
		t.Fatalf("literal pattern vs query var must unify")
	}
	// The binding lands under the query var's identity: the caller's
	// context owns it.
	bound, ok := sub.Lookup(n)
	if !ok || !Equal(bound, lit(t, U8, 2)) {
		t.Errorf("expected caller's N := 2, got %v (bound=%v)", bound, ok)
	}
}

// --- Both sides open ---

func TestUnifyMutualAliasing(t *testing.T) {
	table := NewDeclTable()
	implDecl := table.Declare("impl", "", 0, 0)
	reqDecl := table.Declare("require", "", 0, 0)
	implN := Var{Decl: implDecl, Name: "N"}
	reqN := Var{Decl: reqDecl, Name: "N"}

	sub := make(Subst)
	if !Unify(implN, reqN, sub) {
		t.Fatalf("two open vars must unify")
	}

	if bound, ok := sub.Lookup(implN); !ok || !Equal(bound, reqN) {
		t.Errorf("record var must alias the query var, got %v", bound)
	}
	if bound, ok := sub.Lookup(reqN); !ok || !Equal(bound, implN) {
		t.Errorf("query var must alias the record var, got %v", bound)
	}
}

func TestUnifyAliasedQueryVarRejectsLiteral(t *testing.T) {
	// Record pattern [N, 2] against query subject [M, M]: position one
	// aliases N and M, so position two's literal 2 conflicts with M's
	// existing binding and the record is rejected.
	table := NewDeclTable()
	implDecl := table.Declare("impl", "", 0, 0)
	reqDecl := table.Declare("require", "", 0, 0)
	implN := Var{Decl: implDecl, Name: "N"}
	reqM := Var{Decl: reqDecl, Name: "M"}

	sub := make(Subst)
	pattern := []Term{implN, lit(t, U8, 2)}
	subject := []Term{reqM, reqM}

	if UnifyAll(pattern, subject, sub) {
		t.Fatalf("aliased query var must reject a later literal constraint")
	}
}

func TestUnifySameVarBothSides(t *testing.T) {
	table := NewDeclTable()
	d := table.Declare("decl", "", 0, 0)
	n := Var{Decl: d, Name: "N"}

	sub := make(Subst)
	if !Unify(n, n, sub) {
		t.Fatalf("a var must unify with itself")
	}
	if len(sub) != 0 {
		t.Errorf("self-unification must not record a binding, got %v", sub)
	}
}

// --- Sequences ---

func TestUnifyAllLengthMismatch(t *testing.T) {
	sub := make(Subst)
	if UnifyAll([]Term{lit(t, U8, 1)}, []Term{lit(t, U8, 1), lit(t, U8, 2)}, sub) {
		t.Fatalf("length mismatch must fail")
	}
}

func TestUnifyAllEarlyExitKeepsNoPartialResult(t *testing.T) {
	table := NewDeclTable()
	implDecl := table.Declare("impl", "", 0, 0)
	a := Var{Decl: implDecl, Name: "A"}
	b := Var{Decl: implDecl, Name: "B"}

	sub := make(Subst)
	pattern := []Term{a, lit(t, U8, 1), b}
	subject := []Term{lit(t, U8, 5), lit(t, U8, 2), lit(t, U8, 9)}

	if UnifyAll(pattern, subject, sub) {
		t.Fatalf("middle position mismatch must fail")
	}
	// The record is rejected as a whole; the caller discards sub.
	// B must not have been reached.
	if _, ok := sub.Lookup(b); ok {
		t.Errorf("positions after the failure must not run")
	}
}

func TestBindConflictLeavesBindingIntact(t *testing.T) {
	table := NewDeclTable()
	d := table.Declare("decl", "", 0, 0)
	n := Var{Decl: d, Name: "N"}

	sub := make(Subst)
	if !sub.Bind(n, lit(t, U8, 1)) {
		t.Fatalf("first bind must succeed")
	}
	if sub.Bind(n, lit(t, U8, 2)) {
		t.Fatalf("conflicting rebind must fail")
	}
	if bound, _ := sub.Lookup(n); !Equal(bound, lit(t, U8, 1)) {
		t.Errorf("conflict must not overwrite the binding, got %v", bound)
	}
}
