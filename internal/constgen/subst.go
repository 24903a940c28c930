package constgen

// Subst maps free variables to their bound terms. A variable gets at
// most one binding: Bind refuses a conflicting rebinding instead of
// overwriting, which is what makes unification monotonic.
type Subst map[Var]Term

// Bind records v := t, or checks an existing binding for structural
// equality with t. A conflicting prior binding returns false and
// leaves the substitution unchanged.
func (s Subst) Bind(v Var, t Term) bool {
	if prev, ok := s[v]; ok {
		return Equal(prev, t)
	}
	s[v] = t
	return true
}

// Lookup returns the binding for v, if any.
func (s Subst) Lookup(v Var) (Term, bool) {
	t, ok := s[v]
	return t, ok
}

// Vars returns the bound variables in no particular order.
func (s Subst) Vars() []Var {
	vars := make([]Var, 0, len(s))
	for v := range s {
		vars = append(vars, v)
	}
	return vars
}
