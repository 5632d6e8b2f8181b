package registry

import (
	"sort"

	"github.com/wippyai/buffi/errors"
)

// Shape discriminates user type definitions
type Shape uint8

const (
	ShapeStruct Shape = iota
	ShapeTupleStruct
	ShapeEnum
)

var shapeNames = [...]string{
	ShapeStruct:      "struct",
	ShapeTupleStruct: "tuple_struct",
	ShapeEnum:        "enum",
}

func (s Shape) String() string { return shapeNames[s] }

// VariantShape discriminates enum variant payloads
type VariantShape uint8

const (
	VariantUnit VariantShape = iota
	VariantNewType
	VariantTuple
	VariantStruct
)

// Field is one named or positional field of a user type. Positional
// fields have an empty name.
type Field struct {
	Name string
	Type Term
	Docs string
}

// Variant is one case of a tagged union
type Variant struct {
	Name   string
	Shape  VariantShape
	Fields []Field
	Docs   string
}

// UserType is a registered definition reachable from the exported API
type UserType struct {
	Name     string // canonical monomorphic name
	Shape    Shape
	Fields   []Field   // struct / tuple struct
	Variants []Variant // enum
	Docs     string
}

// equalDef reports structural equality, ignoring documentation
func equalDef(a, b *UserType) bool {
	if a.Shape != b.Shape || len(a.Fields) != len(b.Fields) || len(a.Variants) != len(b.Variants) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i].Name != b.Fields[i].Name || !a.Fields[i].Type.Equal(b.Fields[i].Type) {
			return false
		}
	}
	for i := range a.Variants {
		va, vb := &a.Variants[i], &b.Variants[i]
		if va.Name != vb.Name || va.Shape != vb.Shape || len(va.Fields) != len(vb.Fields) {
			return false
		}
		for j := range va.Fields {
			if va.Fields[j].Name != vb.Fields[j].Name || !va.Fields[j].Type.Equal(vb.Fields[j].Type) {
				return false
			}
		}
	}
	return true
}

// Registry holds the closed set of user types reachable from the
// exported API surface. Built once per generation run; immutable after
// BreakCycles.
type Registry struct {
	types map[string]*UserType
}

// New creates an empty registry
func New() *Registry {
	return &Registry{types: make(map[string]*UserType)}
}

// Register adds a user type definition. Re-registering a structurally
// identical definition is a no-op; a structurally different definition
// under the same canonical name is a NameCollision.
func (r *Registry) Register(t *UserType) error {
	if existing, ok := r.types[t.Name]; ok {
		if equalDef(existing, t) {
			return nil
		}
		return errors.NameCollision(t.Name)
	}
	r.types[t.Name] = t
	return nil
}

// Lookup returns the definition registered under name
func (r *Registry) Lookup(name string) (*UserType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Contains reports whether name is registered
func (r *Registry) Contains(name string) bool {
	_, ok := r.types[name]
	return ok
}

// Len returns the number of registered types
func (r *Registry) Len() int { return len(r.types) }

// Names returns all canonical names in lexicographic order
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// fieldSlots returns pointers to every field term of a type, in
// declaration order (struct fields first-to-last; enum variants in
// order, each variant's fields in order). Slot indices identify
// boxing sites deterministically.
func fieldSlots(t *UserType) []*Term {
	var slots []*Term
	for i := range t.Fields {
		slots = append(slots, &t.Fields[i].Type)
	}
	for i := range t.Variants {
		for j := range t.Variants[i].Fields {
			slots = append(slots, &t.Variants[i].Fields[j].Type)
		}
	}
	return slots
}
