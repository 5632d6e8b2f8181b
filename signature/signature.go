package signature

import (
	"strings"
	"unicode"

	"github.com/wippyai/buffi/annotation"
	"github.com/wippyai/buffi/errors"
	"github.com/wippyai/buffi/registry"
	"github.com/wippyai/buffi/resolver"
	"github.com/wippyai/buffi/rustdoc"
)

// EntryPointPrefix prefixes every synthesized C entry point name
const EntryPointPrefix = "buffi"

// FreeBufferEntryPoint releases callee-allocated result buffers; it is
// the only cross-boundary free function.
const FreeBufferEntryPoint = EntryPointPrefix + "_free_byte_buffer"

// Class classifies an exported function at the ABI
type Class uint8

const (
	ClassFree Class = iota
	ClassClientMethod
	ClassAsyncClientMethod
)

var classNames = [...]string{
	ClassFree:              "free_standing",
	ClassClientMethod:      "client_method",
	ClassAsyncClientMethod: "async_client_method",
}

func (c Class) String() string { return classNames[c] }

// Param is one serialized function parameter
type Param struct {
	Name string
	Type registry.Term
}

// Function is an exported function with its synthesized wire types
type Function struct {
	Name          string
	Docs          string
	Receiver      string        // client type name, empty when free standing
	Params        []Param       // receiver excluded
	Return        registry.Term // the Ok arm carried over the wire
	ResultCarrier string        // canonical name of the result union
	EntryPoint    string        // C entry point name
	Class         Class
}

// Client is an exported handle type with its methods and factory
type Client struct {
	Name    string
	Factory string // zero-arg C factory producing the opaque handle
	Methods []Function
}

// Set is the complete synthesized signature set of one generation run
type Set struct {
	Free    []Function
	Clients []Client
}

// Synthesize classifies every exported function, resolves its parameter
// and return terms, and registers the result carrier unions.
func Synthesize(crate *rustdoc.Crate, surface *annotation.Surface, res *resolver.Resolver) (*Set, error) {
	set := &Set{}
	entryPoints := make(map[string]string)

	for _, id := range surface.FreeFunctions {
		fn, err := synthesizeFunction(crate, surface, res, id, "")
		if err != nil {
			return nil, err
		}
		if err := claimEntryPoint(entryPoints, fn); err != nil {
			return nil, err
		}
		set.Free = append(set.Free, fn)
	}

	for _, c := range surface.Clients {
		client := Client{
			Name:    c.Name,
			Factory: "get_" + Snake(c.Name),
		}
		for _, mid := range c.Methods {
			fn, err := synthesizeFunction(crate, surface, res, mid, c.Name)
			if err != nil {
				return nil, err
			}
			if err := claimEntryPoint(entryPoints, fn); err != nil {
				return nil, err
			}
			client.Methods = append(client.Methods, fn)
		}
		set.Clients = append(set.Clients, client)
	}

	return set, nil
}

func claimEntryPoint(claimed map[string]string, fn Function) error {
	owner := fn.Name
	if fn.Receiver != "" {
		owner = fn.Receiver + "::" + fn.Name
	}
	if prior, ok := claimed[fn.EntryPoint]; ok {
		return errors.New(errors.PhaseSynthesize, errors.KindNameCollision).
			Item(owner).
			Detail("entry point %s already claimed by %s", fn.EntryPoint, prior).
			Build()
	}
	claimed[fn.EntryPoint] = owner
	return nil
}

func synthesizeFunction(crate *rustdoc.Crate, surface *annotation.Surface, res *resolver.Resolver, id rustdoc.Id, receiver string) (Function, error) {
	item, ok := crate.Item(id)
	if !ok {
		return Function{}, errors.DanglingReference("", string(id))
	}
	decl := item.Inner.Function
	if decl == nil {
		return Function{}, errors.InvalidData(errors.PhaseSynthesize, nil, "exported item is not a function: "+item.Name)
	}

	fn := Function{
		Name:       item.Name,
		Docs:       item.Docs,
		Receiver:   receiver,
		EntryPoint: EntryPointPrefix + "_" + item.Name,
	}

	for _, input := range decl.Sig.Inputs {
		if input.Name == "self" {
			continue
		}
		term, err := res.ResolveTerm(input.Type, id)
		if err != nil {
			return Function{}, err
		}
		fn.Params = append(fn.Params, Param{Name: input.Name, Type: term})
	}

	ret, err := resolveReturn(res, decl.Sig.Output, id)
	if err != nil {
		return Function{}, err
	}
	fn.Return = ret

	carrier, err := registerResultCarrier(res.Registry(), ret)
	if err != nil {
		return Function{}, err
	}
	fn.ResultCarrier = carrier

	switch {
	case receiver == "":
		fn.Class = ClassFree
	case surface.AsyncFns[id]:
		fn.Class = ClassAsyncClientMethod
	default:
		fn.Class = ClassClientMethod
	}
	return fn, nil
}

// resolveReturn normalizes the declared return to the Ok arm term. A
// declared Result contributes its first type argument; anything else
// (including no return at all) is carried as-is and wrapped later.
func resolveReturn(res *resolver.Resolver, output *rustdoc.Type, site rustdoc.Id) (registry.Term, error) {
	if output == nil {
		return registry.Unit(), nil
	}
	if output.Kind == rustdoc.TypeResolvedPath && output.Path.BaseName() == "Result" {
		args := output.Path.TypeArgs()
		if len(args) == 0 {
			return registry.Term{}, errors.InvalidData(errors.PhaseSynthesize, nil, "Result without type arguments")
		}
		return res.ResolveTerm(args[0], site)
	}
	return res.ResolveTerm(*output, site)
}

// registerResultCarrier registers the two-variant union that every
// exported function transmits: Ok(tuple<R>) at index 0, Err(tuple<SerializableError>)
// at index 1. The single-element tuple nesting is part of the wire format.
func registerResultCarrier(reg *registry.Registry, ret registry.Term) (string, error) {
	name := "Result_" + registry.WireName(ret) + "_" + resolver.ErrorTypeName
	carrier := &registry.UserType{
		Name:  name,
		Shape: registry.ShapeEnum,
		Variants: []registry.Variant{
			{Name: "Ok", Shape: registry.VariantTuple, Fields: []registry.Field{{Type: ret}}},
			{Name: "Err", Shape: registry.VariantTuple, Fields: []registry.Field{{Type: registry.Named(resolver.ErrorTypeName)}}},
		},
	}
	if err := reg.Register(carrier); err != nil {
		return "", err
	}
	return name, nil
}

// Snake converts a camel-case type name to snake_case
// (e.g. "TestClient" -> "test_client").
func Snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
