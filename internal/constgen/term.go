package constgen

import (
	"fmt"
	"strconv"
)

// Term is a constant generic argument: either a concrete literal of a
// fixed-width integer kind, or a free generic-constant reference owned
// by an enclosing declaration.
type Term interface {
	String() string
	Apply(Subst) Term
	FreeVars() []Var
}

// Lit is a concrete constant. raw holds the value's bits; signed kinds
// store the sign-extended two's complement, so struct equality is
// exact value equality within a kind. Literals are built only through
// ParseLit, which validates the range once; resolution never
// re-validates.
type Lit struct {
	Kind Kind
	raw  uint64
}

// ParseLit builds a literal of the given kind from a sign and a
// magnitude. A value outside the kind's range, or a negative sign on
// an unsigned kind, is a construction error.
func ParseLit(kind Kind, negative bool, magnitude uint64) (Lit, error) {
	if negative {
		if !kind.Signed() {
			return Lit{}, fmt.Errorf("negative value for unsigned kind %s", kind)
		}
		limit := uint64(1) << uint(kind.Bits()-1)
		if magnitude > limit {
			return Lit{}, fmt.Errorf("value -%d out of range for %s", magnitude, kind)
		}
		return Lit{Kind: kind, raw: -magnitude}, nil
	}
	var max uint64
	if kind.Signed() {
		max = uint64(1)<<uint(kind.Bits()-1) - 1
	} else if kind.Bits() == 64 {
		max = ^uint64(0)
	} else {
		max = uint64(1)<<uint(kind.Bits()) - 1
	}
	if magnitude > max {
		return Lit{}, fmt.Errorf("value %d out of range for %s", magnitude, kind)
	}
	return Lit{Kind: kind, raw: magnitude}, nil
}

// Uint returns the raw bits of the value. For signed kinds this is the
// two's complement representation.
func (l Lit) Uint() uint64 {
	return l.raw
}

// Int returns the value of a signed-kind literal.
func (l Lit) Int() int64 {
	return int64(l.raw)
}

func (l Lit) String() string {
	if l.Kind.Signed() {
		return strconv.FormatInt(int64(l.raw), 10)
	}
	return strconv.FormatUint(l.raw, 10)
}

func (l Lit) Apply(Subst) Term {
	return l
}

func (l Lit) FreeVars() []Var {
	return nil
}

// Var is a free generic-constant reference. Identity is the pair of
// owning declaration and surface name: the same name under two
// declarations is two distinct variables.
type Var struct {
	Decl DeclID
	Name string
}

func (v Var) String() string {
	return v.Name
}

// Apply resolves v through the substitution by a single step. Bindings
// are not chased: mutual aliasing of a record var and a query var is a
// two-cycle, and conflict detection works on the immediate binding.
func (v Var) Apply(s Subst) Term {
	if t, ok := s[v]; ok {
		return t
	}
	return v
}

func (v Var) FreeVars() []Var {
	return []Var{v}
}

// Equal reports structural equality: literals match on exact kind and
// value, vars match on identity, and a literal never equals a var.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case Lit:
		b, ok := b.(Lit)
		return ok && a == b
	case Var:
		b, ok := b.(Var)
		return ok && a == b
	}
	return false
}
