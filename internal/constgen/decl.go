package constgen

// DeclID is an index into a DeclTable. Free variables carry the id of
// their owning declaration, so identity never falls back to surface
// name comparison.
type DeclID int32

// NoDecl marks a variable with no recorded owner (only used by tests
// and tooling; the analyzer always declares owners).
const NoDecl DeclID = -1

// Decl is one owning declaration site: an impl, a require, or an
// interface/type header whose defaults reference its own slots.
type Decl struct {
	Label  string
	File   string
	Line   int
	Column int
}

// DeclTable is an append-only arena of declarations.
type DeclTable struct {
	decls []Decl
}

func NewDeclTable() *DeclTable {
	return &DeclTable{}
}

// Declare appends a declaration and returns its id.
func (t *DeclTable) Declare(label, file string, line, column int) DeclID {
	t.decls = append(t.decls, Decl{Label: label, File: file, Line: line, Column: column})
	return DeclID(len(t.decls) - 1)
}

// Lookup returns the declaration for id.
func (t *DeclTable) Lookup(id DeclID) (Decl, bool) {
	if id < 0 || int(id) >= len(t.decls) {
		return Decl{}, false
	}
	return t.decls[int(id)], true
}

// Len returns the number of declarations in the arena.
func (t *DeclTable) Len() int {
	return len(t.decls)
}
