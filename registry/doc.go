// Package registry holds the canonical, language-neutral type model of
// the exported API surface.
//
// A Term describes a single type occurrence: a wire primitive, a
// structural composite (sequence, set, map, option, tuple, fixed
// array), or a reference to a registered user type by canonical name.
// A UserType is a registered definition: a struct with named fields, a
// tuple struct, or a tagged union.
//
// Canonical names of monomorphized generics follow a fixed mangling,
// <Base>_<Arg1>_<Arg2>..., with primitives spelled by their wire names
// ("i64", "f64", "String", "void"). Names are unique; a structural
// mismatch under one name is a NameCollision.
//
// The registry is closed under reachability once the resolver finishes.
// BreakCycles then detects strongly connected components in the field
// dependency digraph and rewrites one deterministically chosen edge per
// cycle to a Boxed reference, which the emitter renders through the
// support runtime's value pointer. TopoOrder yields the stable
// definition order used for emission.
package registry
