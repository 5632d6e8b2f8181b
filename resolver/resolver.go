package resolver

import (
	"strconv"

	"github.com/wippyai/buffi/annotation"
	"github.com/wippyai/buffi/errors"
	"github.com/wippyai/buffi/registry"
	"github.com/wippyai/buffi/rustdoc"
)

// ErrorTypeName is the canonical name of the fixed error arm type. It
// is always registered, independent of what the source crate declares.
const ErrorTypeName = "SerializableError"

// Options tunes type resolution
type Options struct {
	// PrimitiveOverrides remaps source primitive names before the fixed
	// table applies (e.g. "usize" -> "u32" for 32-bit hosts).
	PrimitiveOverrides map[string]string
}

// Resolver closes the type graph transitively from the exported roots
// and fills the registry with canonical user type definitions.
type Resolver struct {
	crate   *rustdoc.Crate
	surface *annotation.Surface
	reg     *registry.Registry
	opts    Options

	// visiting guards against re-entering a definition that is being
	// built further up the stack; recursive references resolve to a
	// Named term and the definition completes when the stack unwinds.
	visiting map[string]bool
}

// New creates a resolver over the given doc index and API surface
func New(crate *rustdoc.Crate, surface *annotation.Surface, opts Options) *Resolver {
	r := &Resolver{
		crate:    crate,
		surface:  surface,
		reg:      registry.New(),
		opts:     opts,
		visiting: make(map[string]bool),
	}
	// the error arm of every result carrier
	r.reg.Register(&registry.UserType{
		Name:   ErrorTypeName,
		Shape:  registry.ShapeStruct,
		Fields: []registry.Field{{Name: "message", Type: registry.Str()}},
	})
	return r
}

// Registry returns the registry being populated
func (r *Resolver) Registry() *registry.Registry { return r.reg }

// ResolveExportedTypes registers every explicitly exported data type
func (r *Resolver) ResolveExportedTypes() error {
	for _, id := range r.surface.ExportedTypes {
		if _, err := r.ResolveItem(id); err != nil {
			return err
		}
	}
	return nil
}

// ResolveItem resolves an item id (struct or enum) to its term
func (r *Resolver) ResolveItem(id rustdoc.Id) (registry.Term, error) {
	path := &rustdoc.Path{ID: id}
	if item, ok := r.crate.Item(id); ok {
		path.Name = item.Name
	}
	return r.resolveUserType(path, nil, "")
}

// ResolveTerm resolves a doc type reference appearing at the given
// site (a field or impl item id, used for site-local overrides).
func (r *Resolver) ResolveTerm(t rustdoc.Type, site rustdoc.Id) (registry.Term, error) {
	return r.resolveTerm(t, nil, site)
}

func (r *Resolver) resolveTerm(t rustdoc.Type, env map[string]registry.Term, site rustdoc.Id) (registry.Term, error) {
	switch t.Kind {
	case rustdoc.TypePrimitive:
		return r.resolvePrimitive(t.Primitive, site)

	case rustdoc.TypeTuple:
		if len(t.Tuple) == 0 {
			return registry.Unit(), nil
		}
		items := make([]registry.Term, len(t.Tuple))
		for i, inner := range t.Tuple {
			term, err := r.resolveTerm(inner, env, site)
			if err != nil {
				return registry.Term{}, err
			}
			items[i] = term
		}
		return registry.TupleOf(items...), nil

	case rustdoc.TypeArray:
		n, err := strconv.Atoi(t.Array.Len)
		if err != nil {
			return registry.Term{}, errors.InvalidData(errors.PhaseResolve, nil, "array length is not a number: "+t.Array.Len)
		}
		elem, err := r.resolveTerm(t.Array.Type, env, site)
		if err != nil {
			return registry.Term{}, err
		}
		return registry.ArrayOf(elem, n), nil

	case rustdoc.TypeGeneric:
		if term, ok := env[t.Generic]; ok {
			return term, nil
		}
		return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "unresolved generic parameter "+t.Generic)

	case rustdoc.TypeResolvedPath:
		return r.resolvePath(t.Path, env, site)

	case rustdoc.TypeBorrowedRef:
		return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "non-owned reference cannot cross the bridge")

	case rustdoc.TypeSlice:
		return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "unsized slice (use Vec instead)")

	case rustdoc.TypeRawPointer:
		return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "raw pointer")

	case rustdoc.TypeFunctionPointer:
		return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "function pointer")

	case rustdoc.TypeDynTrait:
		return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "trait object")

	case rustdoc.TypeImplTrait:
		return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "impl trait")

	default:
		return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "type encoding "+t.Kind.String())
	}
}

// fixed primitive table
var primitiveTable = map[string]func() registry.Term{
	"bool": registry.Bool,
	"u8":   registry.U8,
	"i8":   registry.I8,
	"u16":  registry.U16,
	"i16":  registry.I16,
	"u32":  registry.U32,
	"i32":  registry.I32,
	"u64":  registry.U64,
	"i64":  registry.I64,
	"u128": registry.U128,
	"i128": registry.I128,
	"f32":  registry.F32,
	"f64":  registry.F64,
}

func (r *Resolver) resolvePrimitive(name string, site rustdoc.Id) (registry.Term, error) {
	if mapped, ok := r.opts.PrimitiveOverrides[name]; ok {
		name = mapped
	}
	switch name {
	case "usize":
		name = "u64"
	case "isize":
		name = "i64"
	}
	if ctor, ok := primitiveTable[name]; ok {
		return ctor(), nil
	}
	return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "primitive "+name)
}

func (r *Resolver) resolvePath(p *rustdoc.Path, env map[string]registry.Term, site rustdoc.Id) (registry.Term, error) {
	target := r.pathString(p)

	// site-local override wins over everything
	if with, ok := r.surface.OverrideFor(site, target); ok {
		id, found := r.crate.FindByPath(with)
		if !found {
			return registry.Term{}, errors.NotFound(errors.PhaseResolve, "override type", with)
		}
		return r.resolveUserType(&rustdoc.Path{Name: with, ID: id}, nil, site)
	}

	// global proxy substitution
	if proxyID, ok := r.surface.Proxies[target]; ok {
		return r.resolveUserType(&rustdoc.Path{ID: proxyID}, nil, site)
	}

	switch p.BaseName() {
	case "String":
		return registry.Str(), nil
	case "Vec":
		elem, err := r.singleArg(p, env, site)
		if err != nil {
			return registry.Term{}, err
		}
		return registry.Seq(elem), nil
	case "Option":
		elem, err := r.singleArg(p, env, site)
		if err != nil {
			return registry.Term{}, err
		}
		return registry.Option(elem), nil
	case "Box":
		// transparent; recursion is re-detected structurally and boxed
		// by the cycle breaker
		args := p.TypeArgs()
		if len(args) != 1 {
			return registry.Term{}, errors.InvalidData(errors.PhaseResolve, nil, "Box without a type argument")
		}
		return r.resolveTerm(args[0], env, site)
	case "HashMap", "BTreeMap":
		args := p.TypeArgs()
		if len(args) != 2 {
			return registry.Term{}, errors.InvalidData(errors.PhaseResolve, nil, "map without two type arguments")
		}
		key, err := r.resolveTerm(args[0], env, site)
		if err != nil {
			return registry.Term{}, err
		}
		value, err := r.resolveTerm(args[1], env, site)
		if err != nil {
			return registry.Term{}, err
		}
		return registry.Map(key, value), nil
	case "HashSet", "BTreeSet":
		elem, err := r.singleArg(p, env, site)
		if err != nil {
			return registry.Term{}, err
		}
		return registry.SetOf(elem), nil
	case "Result":
		return registry.Term{}, errors.UnsupportedConstruct(r.siteName(site), "Result outside function return position")
	case ErrorTypeName:
		return registry.Named(ErrorTypeName), nil
	}

	return r.resolveUserType(p, env, site)
}

func (r *Resolver) singleArg(p *rustdoc.Path, env map[string]registry.Term, site rustdoc.Id) (registry.Term, error) {
	args := p.TypeArgs()
	if len(args) != 1 {
		return registry.Term{}, errors.InvalidData(errors.PhaseResolve, nil, p.BaseName()+" without a type argument")
	}
	return r.resolveTerm(args[0], env, site)
}

// resolveUserType registers the (possibly monomorphized) definition of
// a struct, enum or alias and returns a Named reference to it.
func (r *Resolver) resolveUserType(p *rustdoc.Path, env map[string]registry.Term, site rustdoc.Id) (registry.Term, error) {
	item, ok := r.crate.Item(p.ID)
	if !ok {
		return registry.Term{}, errors.DanglingReference(r.pathString(p), string(p.ID))
	}

	// transparent alias flattening
	if alias := item.Inner.TypeAlias; alias != nil {
		aliasEnv, err := r.argEnv(p, alias.Generics, env, site)
		if err != nil {
			return registry.Term{}, err
		}
		return r.resolveTerm(alias.Type, aliasEnv, site)
	}

	switch {
	case item.Inner.Struct != nil:
		return r.resolveStruct(item, p, env, site)
	case item.Inner.Enum != nil:
		return r.resolveEnum(item, p, env, site)
	default:
		return registry.Term{}, errors.UnsupportedConstruct(r.crate.PathOf(item.ID), "item kind cannot be used as a data type")
	}
}

// argEnv resolves the generic arguments of p and binds them to the
// parameter names declared on the referenced item.
func (r *Resolver) argEnv(p *rustdoc.Path, generics rustdoc.Generics, env map[string]registry.Term, site rustdoc.Id) (map[string]registry.Term, error) {
	args := p.TypeArgs()
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]registry.Term, len(args))
	for i, arg := range args {
		term, err := r.resolveTerm(arg, env, site)
		if err != nil {
			return nil, err
		}
		if i < len(generics.Params) {
			out[generics.Params[i].Name] = term
		}
	}
	return out, nil
}

// argTerms resolves the generic arguments of p in declaration order
func (r *Resolver) argTerms(p *rustdoc.Path, env map[string]registry.Term, site rustdoc.Id) ([]registry.Term, error) {
	args := p.TypeArgs()
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]registry.Term, len(args))
	for i, arg := range args {
		term, err := r.resolveTerm(arg, env, site)
		if err != nil {
			return nil, err
		}
		out[i] = term
	}
	return out, nil
}

func (r *Resolver) resolveStruct(item *rustdoc.Item, p *rustdoc.Path, env map[string]registry.Term, site rustdoc.Id) (registry.Term, error) {
	st := item.Inner.Struct
	argTerms, err := r.argTerms(p, env, site)
	if err != nil {
		return registry.Term{}, err
	}
	canonical := registry.Mangle(item.Name, argTerms)
	if r.reg.Contains(canonical) || r.visiting[canonical] {
		return registry.Named(canonical), nil
	}
	r.visiting[canonical] = true
	defer delete(r.visiting, canonical)

	inner := bindParams(st.Generics, argTerms)

	def := &registry.UserType{Name: canonical, Docs: item.Docs}
	switch {
	case st.Kind.Unit:
		def.Shape = registry.ShapeStruct

	case st.Kind.Plain != nil:
		def.Shape = registry.ShapeStruct
		if st.Kind.Plain.HasStrippedFields {
			return registry.Term{}, errors.UnsupportedConstruct(r.crate.PathOf(item.ID), "struct has private fields that cannot be serialized")
		}
		for _, fid := range st.Kind.Plain.Fields {
			field, err := r.resolveField(fid, inner)
			if err != nil {
				return registry.Term{}, err
			}
			def.Fields = append(def.Fields, field)
		}

	case st.Kind.Tuple != nil:
		def.Shape = registry.ShapeTupleStruct
		for i, fid := range st.Kind.Tuple {
			if fid == nil {
				return registry.Term{}, errors.UnsupportedConstruct(r.crate.PathOf(item.ID), "tuple struct has a private field at position "+strconv.Itoa(i))
			}
			field, err := r.resolveField(*fid, inner)
			if err != nil {
				return registry.Term{}, err
			}
			field.Name = ""
			def.Fields = append(def.Fields, field)
		}
	}

	if err := r.reg.Register(def); err != nil {
		return registry.Term{}, err
	}
	return registry.Named(canonical), nil
}

func (r *Resolver) resolveEnum(item *rustdoc.Item, p *rustdoc.Path, env map[string]registry.Term, site rustdoc.Id) (registry.Term, error) {
	en := item.Inner.Enum
	argTerms, err := r.argTerms(p, env, site)
	if err != nil {
		return registry.Term{}, err
	}
	canonical := registry.Mangle(item.Name, argTerms)
	if r.reg.Contains(canonical) || r.visiting[canonical] {
		return registry.Named(canonical), nil
	}
	r.visiting[canonical] = true
	defer delete(r.visiting, canonical)

	inner := bindParams(en.Generics, argTerms)

	def := &registry.UserType{Name: canonical, Shape: registry.ShapeEnum, Docs: item.Docs}
	for _, vid := range en.Variants {
		vitem, ok := r.crate.Item(vid)
		if !ok {
			return registry.Term{}, errors.DanglingReference(r.crate.PathOf(item.ID), string(vid))
		}
		variant := vitem.Inner.Variant
		if variant == nil {
			return registry.Term{}, errors.InvalidData(errors.PhaseResolve, nil, "enum member is not a variant: "+vitem.Name)
		}
		v := registry.Variant{Name: vitem.Name, Docs: vitem.Docs}
		switch {
		case variant.Kind.Plain:
			v.Shape = registry.VariantUnit

		case variant.Kind.Tuple != nil:
			for i, fid := range variant.Kind.Tuple {
				if fid == nil {
					return registry.Term{}, errors.UnsupportedConstruct(r.crate.PathOf(item.ID), "variant "+vitem.Name+" has a private field at position "+strconv.Itoa(i))
				}
				field, err := r.resolveField(*fid, inner)
				if err != nil {
					return registry.Term{}, err
				}
				field.Name = ""
				v.Fields = append(v.Fields, field)
			}
			// a single payload collapses to a newtype variant; the
			// synthesized result carrier keeps the tuple shape instead
			if len(v.Fields) == 1 {
				v.Shape = registry.VariantNewType
			} else {
				v.Shape = registry.VariantTuple
			}

		case variant.Kind.Struct != nil:
			v.Shape = registry.VariantStruct
			for _, fid := range variant.Kind.Struct.Fields {
				field, err := r.resolveField(fid, inner)
				if err != nil {
					return registry.Term{}, err
				}
				v.Fields = append(v.Fields, field)
			}
		}
		def.Variants = append(def.Variants, v)
	}

	if err := r.reg.Register(def); err != nil {
		return registry.Term{}, err
	}
	return registry.Named(canonical), nil
}

// resolveField resolves a struct_field item, honoring custom serde
// shapes and field-site overrides.
func (r *Resolver) resolveField(fid rustdoc.Id, env map[string]registry.Term) (registry.Field, error) {
	item, ok := r.crate.Item(fid)
	if !ok {
		return registry.Field{}, errors.DanglingReference("", string(fid))
	}
	ft := item.Inner.StructField
	if ft == nil {
		return registry.Field{}, errors.InvalidData(errors.PhaseResolve, nil, "item is not a struct field: "+item.Name)
	}

	// a custom serde shape replaces the declared type entirely
	if path, ok := r.surface.CustomSerde[fid]; ok {
		id, found := r.crate.FindByPath(path)
		if !found {
			return registry.Field{}, errors.NotFound(errors.PhaseResolve, "custom serde type", path)
		}
		term, err := r.resolveUserType(&rustdoc.Path{Name: path, ID: id}, nil, fid)
		if err != nil {
			return registry.Field{}, err
		}
		return registry.Field{Name: item.Name, Type: term, Docs: item.Docs}, nil
	}

	term, err := r.resolveTerm(*ft, env, fid)
	if err != nil {
		return registry.Field{}, err
	}
	return registry.Field{Name: item.Name, Type: term, Docs: item.Docs}, nil
}

func bindParams(generics rustdoc.Generics, args []registry.Term) map[string]registry.Term {
	if len(args) == 0 {
		return nil
	}
	env := make(map[string]registry.Term, len(args))
	for i, param := range generics.Params {
		if i < len(args) {
			env[param.Name] = args[i]
		}
	}
	return env
}

func (r *Resolver) pathString(p *rustdoc.Path) string {
	if s := r.crate.PathOf(p.ID); s != "" {
		return s
	}
	return p.Name
}

func (r *Resolver) siteName(site rustdoc.Id) string {
	if site == "" {
		return ""
	}
	return r.crate.PathOf(site)
}
