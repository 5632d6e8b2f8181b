// Package annotation interprets the attribute markers that select the
// exported API surface from the doc index.
//
// Recognized markers:
//
//	#[buffi(export)]                         include item in the surface
//	#[cfg(not(generated_extern_impl))]       same, left behind by the macro
//	#[buffi(client)]                         struct is an opaque handle type
//	#[buffi(async)]                          method needs executor context
//	#[buffi(proxy(target = "<path>"))]       local type is the wire shape for target
//	#[buffi(override(target = "...", with = "..."))]  site-local substitution
//	#[serde(with = "<path>")]                custom wire shape for one field
//
// The interpreter produces the Surface: exported free functions, client
// types with their methods, exported data types, the proxy and override
// substitution tables, and the async/custom-serde flag sets. It does no
// type resolution of its own; everything it emits is re-checked by the
// resolver.
package annotation
