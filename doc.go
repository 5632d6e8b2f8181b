// Package buffi generates an ergonomic, buffer-based C++ API over a
// minimal C ABI from the rustdoc JSON index of an annotated crate.
//
// The generator emits the extern "C" entry point declarations the host
// produces, a C++ type model with a bincode-compatible wire format, one
// holder class per client handle type, and wrappers for free-standing
// functions, all bridged through length-prefixed byte buffers.
//
// # Architecture Overview
//
// The pipeline runs leaves-first through dedicated packages:
//
//	buffi/           Root package with Config and the Generate pipeline
//	├── rustdoc/     Doc index loader (schema-version gated)
//	├── annotation/  Attribute markers: export, client, async, proxy, override
//	├── resolver/    Type graph closure, substitution, monomorphization
//	├── registry/    Canonical type model, mangled names, cycle boxing
//	├── signature/   Result carrier synthesis and ABI classification
//	├── emit/        Deterministic C++ schema and facade emission
//	├── bincode/     Go codec for the wire format
//	├── writer/      Atomic output layout, namespace substitution
//	└── errors/      Structured error types with a fixed taxonomy
//
// # Quick Start
//
// Generate bindings from a rustdoc JSON document:
//
//	cfg := buffi.Config{
//	    OutputDir:   "include",
//	    APIBasename: "my_api",
//	    Namespace:   "my_namespace",
//	}
//	result, err := buffi.GenerateFromFile(cfg, "target/doc/my_api.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Wire Format
//
// Arguments and results travel as independently encoded byte buffers:
// little-endian fixed-width integers, u64 length-prefixed strings and
// sequences, one-byte option tags, u32 variant indexes. Every exported
// function returns Result_<T>_SerializableError on the wire with Ok at
// variant index 0 and Err at index 1; the C++ facade throws the error
// value on the Err arm and frees the result buffer on every path.
//
// # Determinism
//
// Given the same document and configuration the emitted files are
// byte-identical across runs and machines. All orderings are explicit:
// forward declarations sort lexicographically, definitions follow a
// topological order with lexicographic tie-breaks, and cycle boxing
// always selects the least edge.
package buffi
