// Package signature synthesizes the wire-level signature of every
// exported function.
//
// For a function with parameters p1..pn and declared return R, the
// transmitted result is always Result_<canon(R)>_SerializableError: a
// two-variant union with Ok(tuple<R>) at index 0 and
// Err(tuple<SerializableError>) at index 1. The tuple nesting is
// mandatory and part of the wire format. Each parameter travels as an
// independently encoded byte range, so the C entry point takes one
// (ptr, len) pair per parameter plus the opaque receiver pointer for
// client methods.
//
// Functions classify as free standing, client method, or async client
// method. Async methods keep the exact same ABI; suspension is the
// host's concern.
package signature
