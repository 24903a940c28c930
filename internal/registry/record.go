package registry

import (
	"github.com/veldt-lang/veldt/internal/constgen"
)

// TypeRef names an implementing type together with its constant
// arguments. Record-to-query matching compares the name; the args are
// unified, never name-compared.
type TypeRef struct {
	Name string
	Args []constgen.Term
}

// ConstParam is a declared constant slot or binder.
type ConstParam struct {
	Name string
	Kind constgen.Kind
}

// InterfaceDecl fixes an interface's constant slots. Arity is the
// number of params and is the same for every record and query naming
// this interface. Defaults[i] is nil for a slot without a default;
// otherwise a Lit, or a Var owned by Decl referring to an earlier slot
// of this same declaration.
type InterfaceDecl struct {
	Name     string
	Decl     constgen.DeclID
	Params   []ConstParam
	Defaults []constgen.Term
	File     string
	Line     int
	Column   int
}

// Arity returns the number of constant slots.
func (d *InterfaceDecl) Arity() int {
	return len(d.Params)
}

// TypeDecl mirrors InterfaceDecl for declared implementing types,
// whose references also carry constant arguments.
type TypeDecl struct {
	Name     string
	Decl     constgen.DeclID
	Params   []ConstParam
	Defaults []constgen.Term
	File     string
	Line     int
	Column   int
}

func (d *TypeDecl) Arity() int {
	return len(d.Params)
}

// ImplementationRecord is one declared implementation: the claim that
// Target satisfies Interface for the given pattern of constant
// arguments. Params are the record's own free-var binders and are
// exactly the vars appearing in Target.Args and Args (validated before
// registration). Immutable once registered.
type ImplementationRecord struct {
	ID        int
	Decl      constgen.DeclID
	Target    TypeRef
	Interface string
	Args      []constgen.Term
	Params    []ConstParam
	File      string
	Line      int
	Column    int
}
