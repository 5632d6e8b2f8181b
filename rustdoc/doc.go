// Package rustdoc loads the rustdoc JSON index that drives the binding
// generator.
//
// The package is a pure loader: it decodes the document into an in-memory
// item graph keyed by opaque item ids and validates the format version
// against the supported range. No semantic interpretation happens here;
// the annotation and resolver packages consume the graph.
//
// The decoder is tolerant of the encoding differences between supported
// format versions (numeric vs string ids, "sig" vs "decl" signatures)
// and rejects everything outside the version range with
// errors.KindUnsupportedSchema.
package rustdoc
