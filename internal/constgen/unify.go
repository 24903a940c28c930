package constgen

// Unify matches one position of a record's pattern term against the
// query's subject term, extending sub. Failure carries no detail: it
// only disqualifies the record under consideration.
//
// The two sides are asymmetric. A record's own free var is
// instantiated by whatever the query supplies; a query's free var is
// constrained by the record's literal, recorded under the query var's
// identity since the caller's context owns it. When both sides are
// open, the two identities are aliased to each other in both
// directions; a later position that fixes either one to a different
// shape then fails the structural conflict check.
func Unify(pattern, subject Term, sub Subst) bool {
	switch p := pattern.(type) {
	case Lit:
		switch s := subject.(type) {
		case Lit:
			return p == s
		case Var:
			return sub.Bind(s, p)
		}
	case Var:
		switch s := subject.(type) {
		case Lit:
			return sub.Bind(p, s)
		case Var:
			if p == s {
				return true
			}
			return sub.Bind(p, s) && sub.Bind(s, p)
		}
	}
	return false
}

// UnifyAll runs Unify positionally across two sequences, left to right
// with early exit. Binding is monotonic and failure is immediate, so
// no backtracking across positions is ever needed. A length mismatch
// is a failure, never a partial match.
func UnifyAll(pattern, subject []Term, sub Subst) bool {
	if len(pattern) != len(subject) {
		return false
	}
	for i := range pattern {
		if !Unify(pattern[i], subject[i], sub) {
			return false
		}
	}
	return true
}
