// Package errors provides structured error types for the binding generator.
//
// Errors are categorized by Phase (which pipeline stage failed) and Kind
// (error category). The Error type includes rich context: the source item
// path, the canonical wire type name, a field path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindUnsupportedConstruct).
//		Item("my_api::Handle").
//		Path("inner", "callback").
//		Detail("function pointers cannot cross the bridge").
//		Build()
//
// Or use convenience constructors for the fixed taxonomy:
//
//	err := errors.DanglingReference("my_api::Point", "0:1:99")
//	err := errors.UnsupportedSchema(12, 28, 46)
//
// All generator errors are fatal: the pipeline stops at the first error and
// no output files are written. Errors implement the standard error interface
// and support errors.Is/As.
package errors
