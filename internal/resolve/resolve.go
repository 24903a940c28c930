package resolve

import (
	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/registry"
)

// Candidate pairs a record that unified with the substitution that
// made it unify.
type Candidate struct {
	Record *registry.ImplementationRecord
	Subst  constgen.Subst
}

// Collect runs the unifier against every registered record that
// matches the query syntactically: same implementing-type name, same
// interface name, same arity on both the target-argument and the
// interface-argument sequences. A record whose sequence lengths differ
// is never a candidate regardless of content. Each record gets a fresh
// substitution; target args unify first, then interface args, under
// the one substitution. Output preserves registry declaration order.
// No specificity or priority tie-break of any kind is applied.
func Collect(q *Query, reg *registry.Registry) []Candidate {
	var candidates []Candidate
	for _, rec := range reg.RecordsFor(q.Interface) {
		if rec.Target.Name != q.Target.Name {
			continue
		}
		if len(rec.Target.Args) != len(q.Target.Args) || len(rec.Args) != len(q.Args) {
			continue
		}
		sub := make(constgen.Subst)
		if !constgen.UnifyAll(rec.Target.Args, q.Target.Args, sub) {
			continue
		}
		if !constgen.UnifyAll(rec.Args, q.Args, sub) {
			continue
		}
		candidates = append(candidates, Candidate{Record: rec, Subst: sub})
	}
	return candidates
}

// Resolve applies the acceptance policy to the collected candidates:
// zero is NotFound with the near-miss listing attached, one is
// Resolved with its substitution, more is Ambiguous. Pure function of
// (query, registry) with fresh intermediate state per call, so it is
// safe to invoke from any number of goroutines against a sealed
// registry.
func Resolve(q *Query, reg *registry.Registry) Verdict {
	candidates := Collect(q, reg)
	switch len(candidates) {
	case 0:
		return NotFound{Query: q, NearMisses: reg.RecordsFor(q.Interface)}
	case 1:
		return Resolved{Record: candidates[0].Record, Subst: candidates[0].Subst}
	default:
		records := make([]*registry.ImplementationRecord, len(candidates))
		for i, c := range candidates {
			records[i] = c.Record
		}
		return Ambiguous{Query: q, Candidates: records}
	}
}
