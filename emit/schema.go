package emit

import (
	"strings"

	"github.com/wippyai/buffi/emit/internal/cpp"
	"github.com/wippyai/buffi/registry"
)

// member is a serializable data member of an emitted C++ struct
type member struct {
	name string
	typ  string
	docs string
}

// emitTypeModel renders the type model header: forward declarations in
// lexicographic order, definitions in topological order over unboxed
// edges, then per type the equality operator, the bincode methods, and
// the serde template specializations.
func emitTypeModel(reg *registry.Registry, opts Options) ([]byte, error) {
	order, err := reg.TopoOrder()
	if err != nil {
		return nil, err
	}

	w := cpp.New()
	bannerComments(w, opts)
	w.Line("#pragma once")
	w.Blank()
	w.Line(`#include "serde.hpp"`)
	w.Line(`#include "bincode.hpp"`)
	w.Blank()
	w.Linef("namespace %s {", NamespaceToken)
	w.Blank()
	w.Indent()

	for _, name := range reg.Names() {
		w.Linef("struct %s;", name)
	}
	w.Blank()

	for _, name := range order {
		def, _ := reg.Lookup(name)
		emitDefinition(w, def)
		w.Blank()
	}

	w.Dedent()
	w.Linef("} // end of namespace %s", NamespaceToken)

	for _, name := range order {
		def, _ := reg.Lookup(name)
		w.Blank()
		emitBodies(w, name, structMembers(def), true)
		if def.Shape == registry.ShapeEnum {
			for i := range def.Variants {
				v := &def.Variants[i]
				w.Blank()
				emitBodies(w, name+"::"+v.Name, variantMembers(v), false)
			}
		}
	}

	return []byte(w.String()), nil
}

// emitDefinition renders one struct or union definition
func emitDefinition(w *cpp.Writer, def *registry.UserType) {
	docComment(w, def.Docs, "///")
	w.Linef("struct %s {", def.Name)
	w.Indent()

	switch def.Shape {
	case registry.ShapeEnum:
		w.Blank()
		var names []string
		for i := range def.Variants {
			v := &def.Variants[i]
			names = append(names, v.Name)
			docComment(w, v.Docs, "///")
			w.Linef("struct %s {", v.Name)
			w.Indent()
			emitMembers(w, variantMembers(v))
			emitMethodDecls(w, v.Name, len(variantMembers(v)) > 0)
			w.Dedent()
			w.Line("};")
			w.Blank()
		}
		w.Linef("std::variant<%s> value;", strings.Join(names, ", "))
		w.Blank()
		emitMethodDecls(w, def.Name, false)

	default:
		emitMembers(w, structMembers(def))
		emitMethodDecls(w, def.Name, len(structMembers(def)) > 0)
	}

	w.Dedent()
	w.Line("};")
}

func emitMembers(w *cpp.Writer, members []member) {
	for _, m := range members {
		docComment(w, m.docs, "///")
		w.Linef("%s %s;", m.typ, m.name)
	}
}

// emitMethodDecls writes the equality and bincode method declarations
func emitMethodDecls(w *cpp.Writer, name string, blankBefore bool) {
	if blankBefore {
		w.Blank()
	}
	w.Linef("friend bool operator==(const %s&, const %s&);", name, name)
	w.Line("std::vector<uint8_t> bincodeSerialize() const;")
	w.Linef("static %s bincodeDeserialize(std::vector<uint8_t>);", name)
}

// structMembers lists the serializable members of a non-variant type
func structMembers(def *registry.UserType) []member {
	switch def.Shape {
	case registry.ShapeStruct:
		out := make([]member, 0, len(def.Fields))
		for _, f := range def.Fields {
			out = append(out, member{name: f.Name, typ: cppType(f.Type, NamespaceToken), docs: f.Docs})
		}
		return out
	case registry.ShapeTupleStruct:
		return []member{{name: "value", typ: tupleType(def.Fields)}}
	default: // enum parent serializes through its variant member
		return []member{{name: "value"}}
	}
}

// variantMembers lists the serializable members of one variant struct
func variantMembers(v *registry.Variant) []member {
	switch v.Shape {
	case registry.VariantUnit:
		return nil
	case registry.VariantNewType:
		return []member{{name: "value", typ: cppType(v.Fields[0].Type, NamespaceToken)}}
	case registry.VariantTuple:
		return []member{{name: "value", typ: tupleType(v.Fields)}}
	default: // named-struct variant carries its fields directly
		out := make([]member, 0, len(v.Fields))
		for _, f := range v.Fields {
			out = append(out, member{name: f.Name, typ: cppType(f.Type, NamespaceToken), docs: f.Docs})
		}
		return out
	}
}

func tupleType(fields []registry.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = cppType(f.Type, NamespaceToken)
	}
	return "std::tuple<" + strings.Join(parts, ", ") + ">"
}

// emitBodies renders the equality operator, the bincode method bodies
// and the serde specializations for one type. Only top-level records
// bracket the container depth; variant payload structs do not.
func emitBodies(w *cpp.Writer, name string, members []member, bracketDepth bool) {
	qn := qualified(name)

	w.Linef("namespace %s {", NamespaceToken)
	w.Blank()
	w.Indent()

	w.Linef("inline bool operator==(const %s &lhs, const %s &rhs) {", name, name)
	w.Indent()
	for _, m := range members {
		w.Linef("if (!(lhs.%s == rhs.%s)) { return false; }", m.name, m.name)
	}
	w.Line("return true;")
	w.Dedent()
	w.Line("}")
	w.Blank()

	w.Linef("inline std::vector<uint8_t> %s::bincodeSerialize() const {", name)
	w.Indent()
	w.Line("auto serializer = serde::BincodeSerializer();")
	w.Linef("serde::Serializable<%s>::serialize(*this, serializer);", name)
	w.Line("return std::move(serializer).bytes();")
	w.Dedent()
	w.Line("}")
	w.Blank()

	w.Linef("inline %s %s::bincodeDeserialize(std::vector<uint8_t> input) {", name, name)
	w.Indent()
	w.Line("auto deserializer = serde::BincodeDeserializer(input);")
	w.Linef("auto value = serde::Deserializable<%s>::deserialize(deserializer);", name)
	w.Line("if (deserializer.get_buffer_offset() < input.size()) {")
	w.Indent()
	w.Line(`throw serde::deserialization_error("Some input bytes were not read");`)
	w.Dedent()
	w.Line("}")
	w.Line("return value;")
	w.Dedent()
	w.Line("}")
	w.Blank()

	w.Dedent()
	w.Linef("} // end of namespace %s", NamespaceToken)
	w.Blank()

	w.Line("template <>")
	w.Line("template <typename Serializer>")
	w.Linef("void serde::Serializable<%s>::serialize(const %s &obj, Serializer &serializer) {", qn, qn)
	w.Indent()
	if bracketDepth {
		w.Line("serializer.increase_container_depth();")
	}
	for _, m := range members {
		w.Linef("serde::Serializable<decltype(obj.%s)>::serialize(obj.%s, serializer);", m.name, m.name)
	}
	if bracketDepth {
		w.Line("serializer.decrease_container_depth();")
	}
	w.Dedent()
	w.Line("}")
	w.Blank()

	w.Line("template <>")
	w.Line("template <typename Deserializer>")
	w.Linef("%s serde::Deserializable<%s>::deserialize(Deserializer &deserializer) {", qn, qn)
	w.Indent()
	if bracketDepth {
		w.Line("deserializer.increase_container_depth();")
	}
	w.Linef("%s obj;", qn)
	for _, m := range members {
		w.Linef("obj.%s = serde::Deserializable<decltype(obj.%s)>::deserialize(deserializer);", m.name, m.name)
	}
	if bracketDepth {
		w.Line("deserializer.decrease_container_depth();")
	}
	w.Line("return obj;")
	w.Dedent()
	w.Line("}")
}
