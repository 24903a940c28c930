package resolve

import (
	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/registry"
)

// Query asks whether Target satisfies Interface with the given
// constant arguments. Args may contain the caller's own free vars,
// owned by Decl (the enclosing generic context).
type Query struct {
	Decl      constgen.DeclID
	Target    registry.TypeRef
	Interface string
	Args      []constgen.Term
}

// Verdict is the closed three-state outcome of one resolution. There
// is no retry, fallback, or default-candidate mechanism behind it.
type Verdict interface {
	verdict()
}

// Resolved means exactly one record unified. Subst carries the
// bindings that made it unify: record vars instantiated by the query,
// query vars constrained by the record.
type Resolved struct {
	Record *registry.ImplementationRecord
	Subst  constgen.Subst
}

// NotFound means no record unified. NearMisses lists every record
// declared for the queried interface name in declaration order,
// regardless of implementing type, arity, or how far unification got.
// The list is diagnostic display only; none of them applies.
type NotFound struct {
	Query      *Query
	NearMisses []*registry.ImplementationRecord
}

// Ambiguous means two or more records unified. Candidates are in
// declaration order and are not deduplicated by semantic equality,
// only by identity.
type Ambiguous struct {
	Query      *Query
	Candidates []*registry.ImplementationRecord
}

func (Resolved) verdict()  {}
func (NotFound) verdict()  {}
func (Ambiguous) verdict() {}
