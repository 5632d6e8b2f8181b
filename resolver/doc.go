// Package resolver closes the type graph transitively from the
// exported API surface and produces the canonical type registry.
//
// For every type reference it applies, in order: site-local override
// substitution, global proxy substitution, the fixed builtin table
// (String, Vec, Option, transparent Box, maps, sets, tuples, fixed
// arrays, unit), transparent alias flattening, and finally user type
// monomorphization.
// Generic user types are registered once per distinct argument list
// under their mangled canonical name.
//
// Constructs the bridge cannot represent (trait objects, references,
// function pointers, slices, raw pointers) fail with
// errors.KindUnsupportedConstruct; references to items missing from the
// doc index fail with errors.KindDanglingReference. All failures are
// fatal.
package resolver
