package registry

import (
	"errors"
	"fmt"

	"github.com/veldt-lang/veldt/internal/constgen"
)

// ErrSealed is returned by registration calls after Seal.
var ErrSealed = errors.New("registry is sealed")

// Registry owns every declared interface, type, and implementation
// record. It is populated single-threaded, then sealed; after Seal the
// read side is safe for concurrent use without locking because nothing
// mutates. Declaration order is preserved and is the order all listing
// methods return.
type Registry struct {
	decls      *constgen.DeclTable
	interfaces map[string]*InterfaceDecl
	types      map[string]*TypeDecl
	ifaceList  []*InterfaceDecl
	records    []*ImplementationRecord
	byIface    map[string][]*ImplementationRecord
	sealed     bool
}

func New() *Registry {
	return &Registry{
		decls:      constgen.NewDeclTable(),
		interfaces: make(map[string]*InterfaceDecl),
		types:      make(map[string]*TypeDecl),
		byIface:    make(map[string][]*ImplementationRecord),
	}
}

// Decls returns the declaration arena owning every free var in the
// registry.
func (r *Registry) Decls() *constgen.DeclTable {
	return r.decls
}

// RegisterInterface adds an interface declaration. Redeclaring a name
// is an error.
func (r *Registry) RegisterInterface(d *InterfaceDecl) error {
	if r.sealed {
		return ErrSealed
	}
	if _, ok := r.interfaces[d.Name]; ok {
		return fmt.Errorf("interface %s already declared", d.Name)
	}
	r.interfaces[d.Name] = d
	r.ifaceList = append(r.ifaceList, d)
	return nil
}

// RegisterType adds a type declaration. Redeclaring a name is an
// error.
func (r *Registry) RegisterType(d *TypeDecl) error {
	if r.sealed {
		return ErrSealed
	}
	if _, ok := r.types[d.Name]; ok {
		return fmt.Errorf("type %s already declared", d.Name)
	}
	r.types[d.Name] = d
	return nil
}

// RegisterImplementation appends a record in declaration order and
// assigns its ID. There is no overlap check between records: two
// implementations that both apply to some query are registered as
// declared and surface as an ambiguity at query time.
func (r *Registry) RegisterImplementation(rec *ImplementationRecord) error {
	if r.sealed {
		return ErrSealed
	}
	if _, ok := r.interfaces[rec.Interface]; !ok {
		return fmt.Errorf("interface %s is not declared", rec.Interface)
	}
	rec.ID = len(r.records)
	r.records = append(r.records, rec)
	r.byIface[rec.Interface] = append(r.byIface[rec.Interface], rec)
	return nil
}

// Seal ends the population phase. Registration afterwards fails with
// ErrSealed; reads never block.
func (r *Registry) Seal() {
	r.sealed = true
}

func (r *Registry) Sealed() bool {
	return r.sealed
}

// Interface looks up a declared interface by name.
func (r *Registry) Interface(name string) (*InterfaceDecl, bool) {
	d, ok := r.interfaces[name]
	return d, ok
}

// Type looks up a declared type by name.
func (r *Registry) Type(name string) (*TypeDecl, bool) {
	d, ok := r.types[name]
	return d, ok
}

// Interfaces returns all interface declarations in declaration order.
// Callers must not modify the returned slice.
func (r *Registry) Interfaces() []*InterfaceDecl {
	return r.ifaceList
}

// Records returns every implementation record in declaration order.
// Callers must not modify the returned slice.
func (r *Registry) Records() []*ImplementationRecord {
	return r.records
}

// RecordsFor returns the records declared for one interface name, in
// declaration order; nil when the interface has none. Callers must not
// modify the returned slice.
func (r *Registry) RecordsFor(interfaceName string) []*ImplementationRecord {
	return r.byIface[interfaceName]
}
