// Package writer lays out the generated header bundle on disk.
//
// The emitters never bake a concrete namespace; they emit the literal
// namespace token everywhere. This package performs the substitution at
// file-write time, in both file names and contents, appends the
// vendored support runtime headers (serde.hpp, bincode.hpp) unchanged,
// and commits each file atomically. Nothing is written until every file
// has been rendered, so a failed run leaves no partial output.
//
// Output is hermetic: byte-identical across runs and machines for the
// same input document and configuration.
package writer
