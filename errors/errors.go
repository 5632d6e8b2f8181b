package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the generation pipeline the error occurred
type Phase string

const (
	PhaseLoad       Phase = "load"       // doc index loading
	PhaseAnnotate   Phase = "annotate"   // attribute interpretation
	PhaseResolve    Phase = "resolve"    // type resolution
	PhaseSynthesize Phase = "synthesize" // signature synthesis
	PhaseEmit       Phase = "emit"       // C++ emission
	PhaseWrite      Phase = "write"      // output writing
)

// Kind categorizes the error
type Kind string

const (
	KindDocLoad              Kind = "doc_load"
	KindUnsupportedSchema    Kind = "unsupported_doc_schema"
	KindUnsupportedConstruct Kind = "unsupported_construct"
	KindDanglingReference    Kind = "dangling_reference"
	KindAmbiguousProxy       Kind = "ambiguous_proxy"
	KindNameCollision        Kind = "name_collision"
	KindCycleWithoutBoxing   Kind = "cycle_without_boxing"
	KindInvalidData          Kind = "invalid_data"
	KindNotFound             Kind = "not_found"
	KindIO                   Kind = "io"
)

// Error is the structured error type used throughout the generator
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Item     string // source item path (e.g. "my_api::CustomType")
	TypeName string // canonical wire type name, if known
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Item != "" || e.TypeName != "" {
		b.WriteString(": ")
		if e.Item != "" && e.TypeName != "" {
			b.WriteString("item ")
			b.WriteString(e.Item)
			b.WriteString(", type ")
			b.WriteString(e.TypeName)
		} else if e.Item != "" {
			b.WriteString("item ")
			b.WriteString(e.Item)
		} else {
			b.WriteString("type ")
			b.WriteString(e.TypeName)
		}
	}

	if e.Detail != "" {
		if e.Item != "" || e.TypeName != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Item sets the source item path
func (b *Builder) Item(item string) *Builder {
	b.err.Item = item
	return b
}

// TypeName sets the canonical type name
func (b *Builder) TypeName(t string) *Builder {
	b.err.TypeName = t
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the generator taxonomy

// DocLoad creates a doc loading error
func DocLoad(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindDocLoad,
		Detail: detail,
		Cause:  cause,
	}
}

// UnsupportedSchema creates an error for an incompatible doc format version
func UnsupportedSchema(got, min, max int) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindUnsupportedSchema,
		Detail: fmt.Sprintf("doc format_version %d outside supported range %d..%d", got, min, max),
	}
}

// UnsupportedConstruct creates an error for a construct the bridge cannot represent
func UnsupportedConstruct(item, what string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnsupportedConstruct,
		Item:   item,
		Detail: what,
	}
}

// DanglingReference creates an error for a reference to a missing item
func DanglingReference(item, id string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindDanglingReference,
		Item:   item,
		Detail: fmt.Sprintf("item id %q not present in the doc index", id),
	}
}

// AmbiguousProxy creates an error for conflicting proxy declarations
func AmbiguousProxy(target, first, second string) *Error {
	return &Error{
		Phase:  PhaseAnnotate,
		Kind:   KindAmbiguousProxy,
		Item:   target,
		Detail: fmt.Sprintf("both %s and %s declare a proxy for this target", first, second),
	}
}

// NameCollision creates an error for two types sharing a canonical name
func NameCollision(name string) *Error {
	return &Error{
		Phase:    PhaseResolve,
		Kind:     KindNameCollision,
		TypeName: name,
		Detail:   "two distinct types monomorphize to the same canonical name",
	}
}

// CycleWithoutBoxing reports an internal invariant failure in cycle breaking
func CycleWithoutBoxing(names []string) *Error {
	return &Error{
		Phase:    PhaseResolve,
		Kind:     KindCycleWithoutBoxing,
		TypeName: strings.Join(names, " -> "),
		Detail:   "type cycle remained after boxing pass",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Write creates an output writing error
func Write(file string, cause error) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindIO,
		Detail: fmt.Sprintf("write %s", file),
		Cause:  cause,
	}
}
