package rustdoc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Id identifies an item in the doc index. Recent format versions emit
// numeric ids, older ones strings like "0:1:234"; both normalize to a
// string here.
type Id string

// UnmarshalJSON accepts both numeric and string ids
func (id *Id) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Id(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = Id(fmt.Sprintf("%d", n))
	return nil
}

// Crate is the root of a rustdoc JSON document
type Crate struct {
	Root           Id                       `json:"root"`
	CrateVersion   string                   `json:"crate_version"`
	Index          map[Id]*Item             `json:"index"`
	Paths          map[Id]*ItemSummary      `json:"paths"`
	ExternalCrates map[string]ExternalCrate `json:"external_crates"`
	FormatVersion  int                      `json:"format_version"`
}

// ExternalCrate names a crate referenced from the index
type ExternalCrate struct {
	Name string `json:"name"`
}

// ItemSummary is the path-index entry for an item
type ItemSummary struct {
	CrateID int      `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// Item is a single entry of the doc index
type Item struct {
	ID      Id       `json:"id"`
	CrateID int      `json:"crate_id"`
	Name    string   `json:"name"`
	Docs    string   `json:"docs"`
	Attrs   []string `json:"attrs"`
	Inner   Inner    `json:"inner"`
}

// Inner is the tagged item payload. Exactly one pointer is non-nil for
// item kinds the generator understands; all nil means an ignorable kind
// (modules, traits, macros, ...).
type Inner struct {
	Struct      *Struct    `json:"struct"`
	StructField *Type      `json:"struct_field"`
	Enum        *Enum      `json:"enum"`
	Variant     *Variant   `json:"variant"`
	Function    *Function  `json:"function"`
	Impl        *Impl      `json:"impl"`
	TypeAlias   *TypeAlias `json:"type_alias"`
}

// Struct describes a struct item
type Struct struct {
	Kind     StructKind `json:"kind"`
	Generics Generics   `json:"generics"`
}

// StructKind is "unit", a tuple field list, or a plain field list
type StructKind struct {
	Unit  bool
	Tuple []*Id
	Plain *PlainStruct
}

// PlainStruct lists the field item ids of a named-field struct
type PlainStruct struct {
	Fields            []Id `json:"fields"`
	HasStrippedFields bool `json:"has_stripped_fields"`
}

// UnmarshalJSON decodes the three struct kind encodings
func (k *StructKind) UnmarshalJSON(data []byte) error {
	if string(data) == `"unit"` {
		k.Unit = true
		return nil
	}
	var tagged struct {
		Tuple []*Id        `json:"tuple"`
		Plain *PlainStruct `json:"plain"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	k.Tuple = tagged.Tuple
	k.Plain = tagged.Plain
	return nil
}

// Enum describes an enum item
type Enum struct {
	Variants []Id     `json:"variants"`
	Generics Generics `json:"generics"`
}

// Variant describes one enum variant
type Variant struct {
	Kind VariantKind `json:"kind"`
}

// VariantKind is "plain", a tuple field list, or a struct field list
type VariantKind struct {
	Plain  bool
	Tuple  []*Id
	Struct *PlainStruct
}

// UnmarshalJSON decodes the three variant kind encodings
func (k *VariantKind) UnmarshalJSON(data []byte) error {
	if string(data) == `"plain"` {
		k.Plain = true
		return nil
	}
	var tagged struct {
		Tuple  []*Id        `json:"tuple"`
		Struct *PlainStruct `json:"struct"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	k.Tuple = tagged.Tuple
	k.Struct = tagged.Struct
	return nil
}

// Generics carries the generic parameter names of an item
type Generics struct {
	Params []GenericParam `json:"params"`
}

// GenericParam is a single generic parameter declaration
type GenericParam struct {
	Name string `json:"name"`
}

// Function describes a free function or method
type Function struct {
	Sig     FnSig    `json:"sig"`
	Header  FnHeader `json:"header"`
	HasBody bool     `json:"has_body"`
}

// UnmarshalJSON accepts both the "sig" (current) and "decl" (older)
// field spellings for the signature.
func (f *Function) UnmarshalJSON(data []byte) error {
	var raw struct {
		Sig     *FnSig   `json:"sig"`
		Decl    *FnSig   `json:"decl"`
		Header  FnHeader `json:"header"`
		HasBody bool     `json:"has_body"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Sig != nil:
		f.Sig = *raw.Sig
	case raw.Decl != nil:
		f.Sig = *raw.Decl
	}
	f.Header = raw.Header
	f.HasBody = raw.HasBody
	return nil
}

// FnSig is a function signature
type FnSig struct {
	Inputs []FnInput `json:"inputs"`
	Output *Type     `json:"output"`
}

// FnInput is one named parameter. Encoded as a two-element [name, type]
// array in the doc JSON.
type FnInput struct {
	Name string
	Type Type
}

// UnmarshalJSON decodes the [name, type] pair encoding
func (in *FnInput) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("function input: expected [name, type] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &in.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &in.Type)
}

// FnHeader carries the function qualifiers the generator cares about
type FnHeader struct {
	IsAsync bool `json:"is_async"`
}

// Impl describes an inherent or trait impl block
type Impl struct {
	Trait *Path `json:"trait"`
	For   Type  `json:"for"`
	Items []Id  `json:"items"`
}

// TypeAlias describes a `type X = Y` item
type TypeAlias struct {
	Type     Type     `json:"type"`
	Generics Generics `json:"generics"`
}

// TypeKind discriminates the Type union
type TypeKind uint8

const (
	TypeNone TypeKind = iota
	TypeResolvedPath
	TypeGeneric
	TypePrimitive
	TypeTuple
	TypeSlice
	TypeArray
	TypeBorrowedRef
	TypeRawPointer
	TypeFunctionPointer
	TypeQualifiedPath
	TypeDynTrait
	TypeImplTrait
	TypeInfer
)

var typeKindNames = [...]string{
	TypeNone:            "none",
	TypeResolvedPath:    "resolved_path",
	TypeGeneric:         "generic",
	TypePrimitive:       "primitive",
	TypeTuple:           "tuple",
	TypeSlice:           "slice",
	TypeArray:           "array",
	TypeBorrowedRef:     "borrowed_ref",
	TypeRawPointer:      "raw_pointer",
	TypeFunctionPointer: "function_pointer",
	TypeQualifiedPath:   "qualified_path",
	TypeDynTrait:        "dyn_trait",
	TypeImplTrait:       "impl_trait",
	TypeInfer:           "infer",
}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return fmt.Sprintf("type_kind(%d)", uint8(k))
}

// Type is a type reference in the doc index
type Type struct {
	Kind      TypeKind
	Path      *Path  // resolved_path
	Generic   string // generic
	Primitive string // primitive
	Tuple     []Type // tuple
	Elem      *Type  // slice, borrowed_ref, raw_pointer
	Array     *ArrayType
	Mutable   bool // borrowed_ref, raw_pointer
}

// ArrayType is a fixed-length array `[T; N]`
type ArrayType struct {
	Type Type   `json:"type"`
	Len  string `json:"len"`
}

// UnmarshalJSON decodes the externally-tagged type union
func (t *Type) UnmarshalJSON(data []byte) error {
	if string(data) == `"infer"` {
		t.Kind = TypeInfer
		return nil
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	for key, raw := range tagged {
		switch key {
		case "resolved_path":
			t.Kind = TypeResolvedPath
			t.Path = &Path{}
			return json.Unmarshal(raw, t.Path)
		case "generic":
			t.Kind = TypeGeneric
			return json.Unmarshal(raw, &t.Generic)
		case "primitive":
			t.Kind = TypePrimitive
			return json.Unmarshal(raw, &t.Primitive)
		case "tuple":
			t.Kind = TypeTuple
			return json.Unmarshal(raw, &t.Tuple)
		case "slice":
			t.Kind = TypeSlice
			t.Elem = &Type{}
			return json.Unmarshal(raw, t.Elem)
		case "array":
			t.Kind = TypeArray
			t.Array = &ArrayType{}
			return json.Unmarshal(raw, t.Array)
		case "borrowed_ref":
			t.Kind = TypeBorrowedRef
			return t.unmarshalRef(raw)
		case "raw_pointer":
			t.Kind = TypeRawPointer
			return t.unmarshalRef(raw)
		case "function_pointer":
			t.Kind = TypeFunctionPointer
			return nil
		case "qualified_path":
			t.Kind = TypeQualifiedPath
			return nil
		case "dyn_trait":
			t.Kind = TypeDynTrait
			return nil
		case "impl_trait":
			t.Kind = TypeImplTrait
			return nil
		}
	}
	return fmt.Errorf("unknown type encoding: %s", truncate(string(data), 64))
}

func (t *Type) unmarshalRef(raw json.RawMessage) error {
	var ref struct {
		Type      Type  `json:"type"`
		IsMutable *bool `json:"is_mutable"`
		Mutable   *bool `json:"mutable"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		return err
	}
	t.Elem = &ref.Type
	if ref.IsMutable != nil {
		t.Mutable = *ref.IsMutable
	} else if ref.Mutable != nil {
		t.Mutable = *ref.Mutable
	}
	return nil
}

// Path is a reference to a named item, possibly with generic arguments
type Path struct {
	Name string       `json:"name"`
	ID   Id           `json:"id"`
	Args *GenericArgs `json:"args"`
}

// BaseName strips any leading module path from the path name; recent
// doc versions emit fully qualified names here.
func (p *Path) BaseName() string {
	if i := strings.LastIndex(p.Name, "::"); i >= 0 {
		return p.Name[i+2:]
	}
	return p.Name
}

// TypeArgs returns the angle-bracketed type arguments, if any
func (p *Path) TypeArgs() []Type {
	if p.Args == nil || p.Args.AngleBracketed == nil {
		return nil
	}
	var out []Type
	for _, a := range p.Args.AngleBracketed.Args {
		if a.Type != nil {
			out = append(out, *a.Type)
		}
	}
	return out
}

// GenericArgs carries angle-bracketed generic arguments
type GenericArgs struct {
	AngleBracketed *AngleBracketed `json:"angle_bracketed"`
}

// AngleBracketed is the `<...>` argument list
type AngleBracketed struct {
	Args []GenericArg `json:"args"`
}

// GenericArg is one generic argument; only type arguments matter here
type GenericArg struct {
	Type     *Type  `json:"type"`
	Lifetime string `json:"lifetime"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
