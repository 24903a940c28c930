// Package constgen models constant generic arguments (fixed-width
// integer literals and free generic-constant references) and the
// unification of record patterns against query subjects.
package constgen

// Kind is one of the closed set of fixed-width integer kinds a
// constant slot can have. Kinds never coerce: a u32 literal and a u64
// literal are distinct values everywhere in the engine, regardless of
// numeric equality.
type Kind uint8

const (
	U8 Kind = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
)

var kindNames = [...]string{"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Signed reports whether k is a signed kind.
func (k Kind) Signed() bool {
	return k >= I8
}

// Bits returns the bit width of k.
func (k Kind) Bits() int {
	switch k {
	case U8, I8:
		return 8
	case U16, I16:
		return 16
	case U32, I32:
		return 32
	default:
		return 64
	}
}

// KindFromName maps a surface kind name like "u8" to its Kind.
func KindFromName(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// KindNames lists the surface names of all kinds in declaration order.
func KindNames() []string {
	names := make([]string, len(kindNames))
	copy(names, kindNames[:])
	return names
}
