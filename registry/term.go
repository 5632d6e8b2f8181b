package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the Term union
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindU128
	KindI128
	KindF32
	KindF64
	KindUnit
	KindStr
	KindBytes
	KindSeq
	KindSet
	KindMap
	KindOption
	KindTuple
	KindArray
	KindNamed
	KindBoxed
)

// Wire spellings of the kinds; composite kinds are expanded by WireName.
var kindNames = [...]string{
	KindBool:   "bool",
	KindU8:     "u8",
	KindI8:     "i8",
	KindU16:    "u16",
	KindI16:    "i16",
	KindU32:    "u32",
	KindI32:    "i32",
	KindU64:    "u64",
	KindI64:    "i64",
	KindU128:   "u128",
	KindI128:   "i128",
	KindF32:    "f32",
	KindF64:    "f64",
	KindUnit:   "void",
	KindStr:    "String",
	KindBytes:  "Bytes",
	KindSeq:    "Vec",
	KindSet:    "Set",
	KindMap:    "Map",
	KindOption: "Option",
	KindTuple:  "Tuple",
	KindArray:  "Array",
	KindNamed:  "named",
	KindBoxed:  "boxed",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsPrimitive reports whether the kind is a scalar wire primitive
func (k Kind) IsPrimitive() bool {
	return k <= KindBytes
}

// Term is a language-neutral type term. Terms are treated as immutable
// once registered, with the single exception of the boxing rewrite in
// BreakCycles.
type Term struct {
	Kind  Kind
	Elem  *Term  // Seq, Set, Option, Array element
	Key   *Term  // Map key
	Value *Term  // Map value
	Items []Term // Tuple members
	Len   int    // Array length
	Name  string // Named / Boxed canonical name
}

// Primitive constructors

func Bool() Term  { return Term{Kind: KindBool} }
func U8() Term    { return Term{Kind: KindU8} }
func I8() Term    { return Term{Kind: KindI8} }
func U16() Term   { return Term{Kind: KindU16} }
func I16() Term   { return Term{Kind: KindI16} }
func U32() Term   { return Term{Kind: KindU32} }
func I32() Term   { return Term{Kind: KindI32} }
func U64() Term   { return Term{Kind: KindU64} }
func I64() Term   { return Term{Kind: KindI64} }
func U128() Term  { return Term{Kind: KindU128} }
func I128() Term  { return Term{Kind: KindI128} }
func F32() Term   { return Term{Kind: KindF32} }
func F64() Term   { return Term{Kind: KindF64} }
func Unit() Term  { return Term{Kind: KindUnit} }
func Str() Term   { return Term{Kind: KindStr} }
func Bytes() Term { return Term{Kind: KindBytes} }

// Composite constructors

func Seq(elem Term) Term    { return Term{Kind: KindSeq, Elem: &elem} }
func SetOf(elem Term) Term  { return Term{Kind: KindSet, Elem: &elem} }
func Option(elem Term) Term { return Term{Kind: KindOption, Elem: &elem} }

func Map(key, value Term) Term {
	return Term{Kind: KindMap, Key: &key, Value: &value}
}

func TupleOf(items ...Term) Term {
	if len(items) == 0 {
		return Unit()
	}
	return Term{Kind: KindTuple, Items: items}
}

func ArrayOf(elem Term, n int) Term {
	return Term{Kind: KindArray, Elem: &elem, Len: n}
}

func Named(name string) Term { return Term{Kind: KindNamed, Name: name} }
func Boxed(name string) Term { return Term{Kind: KindBoxed, Name: name} }

// WireName returns the mangled spelling of a term as it appears inside
// canonical monomorphic names (e.g. "i64", "String", "Option_f64").
func WireName(t Term) string {
	switch t.Kind {
	case KindSeq:
		return "Vec_" + WireName(*t.Elem)
	case KindSet:
		return "Set_" + WireName(*t.Elem)
	case KindMap:
		return "Map_" + WireName(*t.Key) + "_" + WireName(*t.Value)
	case KindOption:
		return "Option_" + WireName(*t.Elem)
	case KindTuple:
		var b strings.Builder
		b.WriteString("Tuple")
		b.WriteString(strconv.Itoa(len(t.Items)))
		for _, item := range t.Items {
			b.WriteByte('_')
			b.WriteString(WireName(item))
		}
		return b.String()
	case KindArray:
		return "Array" + strconv.Itoa(t.Len) + "_" + WireName(*t.Elem)
	case KindNamed, KindBoxed:
		return t.Name
	default:
		return kindNames[t.Kind]
	}
}

// Mangle builds the canonical name of a monomorphized generic type:
// <Base>_<Arg1>_<Arg2>...
func Mangle(base string, args []Term) string {
	if len(args) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	for _, a := range args {
		b.WriteByte('_')
		b.WriteString(WireName(a))
	}
	return b.String()
}

// Equal reports structural equality of two terms
func (t Term) Equal(o Term) bool {
	if t.Kind != o.Kind || t.Len != o.Len || t.Name != o.Name {
		return false
	}
	if (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	if t.Elem != nil && !t.Elem.Equal(*o.Elem) {
		return false
	}
	if (t.Key == nil) != (o.Key == nil) {
		return false
	}
	if t.Key != nil && (!t.Key.Equal(*o.Key) || !t.Value.Equal(*o.Value)) {
		return false
	}
	if len(t.Items) != len(o.Items) {
		return false
	}
	for i := range t.Items {
		if !t.Items[i].Equal(o.Items[i]) {
			return false
		}
	}
	return true
}

// NamedRefs appends the canonical names referenced by unboxed Named
// nodes in the term tree, in traversal order.
func (t Term) NamedRefs(out []string) []string {
	switch t.Kind {
	case KindNamed:
		out = append(out, t.Name)
	case KindSeq, KindSet, KindOption, KindArray:
		out = t.Elem.NamedRefs(out)
	case KindMap:
		out = t.Key.NamedRefs(out)
		out = t.Value.NamedRefs(out)
	case KindTuple:
		for i := range t.Items {
			out = t.Items[i].NamedRefs(out)
		}
	}
	return out
}

// boxNamed rewrites every Named(target) node within the term tree to
// Boxed(target). Used only by the cycle breaker.
func (t *Term) boxNamed(target string) {
	switch t.Kind {
	case KindNamed:
		if t.Name == target {
			t.Kind = KindBoxed
		}
	case KindSeq, KindSet, KindOption, KindArray:
		t.Elem.boxNamed(target)
	case KindMap:
		t.Key.boxNamed(target)
		t.Value.boxNamed(target)
	case KindTuple:
		for i := range t.Items {
			t.Items[i].boxNamed(target)
		}
	}
}
