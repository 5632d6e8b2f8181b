package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wippyai/buffi/emit/internal/cpp"
	"github.com/wippyai/buffi/signature"
)

// emitAPIFunctions renders the extern "C" declarations header: forward
// declarations of the opaque client structs followed by every entry
// point prototype in lexicographic order.
func emitAPIFunctions(set *signature.Set, opts Options) ([]byte, error) {
	w := cpp.New()
	functionHeader(w, opts)
	w.Line("#include <cstdint>")
	w.Blank()

	names := make([]string, 0, len(set.Clients))
	for _, c := range set.Clients {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		w.Linef("struct %s;", name)
		w.Blank()
	}

	var protos []string
	for _, c := range set.Clients {
		protos = append(protos, fmt.Sprintf(`extern "C" %s* %s();`, c.Name, c.Factory))
		for _, m := range c.Methods {
			protos = append(protos, cPrototype(m))
		}
	}
	for _, fn := range set.Free {
		protos = append(protos, cPrototype(fn))
	}
	protos = append(protos, fmt.Sprintf(`extern "C" void %s(std::uint8_t* ptr, size_t size);`, signature.FreeBufferEntryPoint))
	sort.Strings(protos)

	for _, p := range protos {
		w.Line(p)
	}
	return []byte(w.String()), nil
}

// cPrototype renders the entry point declaration of one exported
// function: the opaque receiver pointer when present, one (ptr, size)
// pair per parameter, and the callee-allocated output pointer.
func cPrototype(fn signature.Function) string {
	var args []string
	if fn.Receiver != "" {
		args = append(args, fn.Receiver+"* this_ptr")
	}
	for _, p := range fn.Params {
		args = append(args, fmt.Sprintf("const std::uint8_t* %s, size_t %s_size", p.Name, p.Name))
	}
	args = append(args, "std::uint8_t** out_ptr")
	return fmt.Sprintf(`extern "C" size_t %s(%s);`, fn.EntryPoint, strings.Join(args, ", "))
}

// emitHolder renders the holder class header of one client type
func emitHolder(client signature.Client, opts Options) []byte {
	w := cpp.New()
	functionHeader(w, opts)
	w.Linef(`#include "%s_api_functions.hpp"`, opts.Prefix)
	w.Blank()
	w.Linef(`#include "%s.hpp"`, NamespaceToken)
	w.Blank()
	w.Blank()
	w.Linef("namespace %s {", NamespaceToken)
	w.Blank()
	w.Linef("class %sHolder {", client.Name)
	w.Indent()
	w.Linef("%s* inner;", client.Name)
	w.Dedent()
	w.Line("public:")
	w.Indent()
	w.Linef("%sHolder(%s* ptr) {", client.Name, client.Name)
	w.Indent()
	w.Line("this->inner = ptr;")
	w.Dedent()
	w.Line("}")
	w.Blank()
	for _, m := range client.Methods {
		emitWrapper(w, m)
	}
	w.Dedent()
	w.Line("};")
	w.Blank()
	w.Linef("}  // end of namespace %s", NamespaceToken)
	return []byte(w.String())
}

// emitFreeStanding renders the combined free function header
func emitFreeStanding(free []signature.Function, opts Options) []byte {
	w := cpp.New()
	functionHeader(w, opts)
	w.Linef(`#include "%s_api_functions.hpp"`, opts.Prefix)
	w.Blank()
	w.Linef(`#include "%s.hpp"`, NamespaceToken)
	w.Blank()
	w.Blank()
	w.Linef("namespace %s {", NamespaceToken)
	w.Blank()
	w.Indent()
	for _, fn := range free {
		emitWrapper(w, fn)
		w.Blank()
	}
	w.Dedent()
	w.Blank()
	w.Linef("}  // end of namespace %s", NamespaceToken)
	return []byte(w.String())
}

// emitWrapper renders one inline facade method. Every wrapper follows
// the same shape: serialize each parameter independently, call the C
// entry point, copy the result bytes, release the callee buffer before
// inspecting anything, then return the Ok payload or throw the error.
func emitWrapper(w *cpp.Writer, fn signature.Function) {
	docComment(w, fn.Docs, "//")

	var params []string
	for _, p := range fn.Params {
		params = append(params, fmt.Sprintf("const %s& %s", localType(p.Type), p.Name))
	}
	w.Linef("inline %s %s(%s) {", returnType(fn.Return), fn.Name, strings.Join(params, ", "))
	w.Indent()

	for _, p := range fn.Params {
		w.Linef("auto serializer_%s = serde::BincodeSerializer();", p.Name)
		w.Linef("serde::Serializable<%s>::serialize(%s, serializer_%s);", localType(p.Type), p.Name, p.Name)
		w.Linef("std::vector<uint8_t> %s_serialized = std::move(serializer_%s).bytes();", p.Name, p.Name)
	}
	w.Line("uint8_t* out_ptr = nullptr;")
	w.Blank()

	var args []string
	if fn.Receiver != "" {
		args = append(args, "this->inner")
	}
	for _, p := range fn.Params {
		args = append(args, fmt.Sprintf("%s_serialized.data(), %s_serialized.size()", p.Name, p.Name))
	}
	args = append(args, "&out_ptr")
	w.Linef("size_t res_size = %s(%s);", fn.EntryPoint, strings.Join(args, ", "))
	w.Blank()

	w.Line("std::vector<uint8_t> serialized_result(out_ptr, out_ptr + res_size);")
	w.Linef("%s out = %s::bincodeDeserialize(serialized_result);", fn.ResultCarrier, fn.ResultCarrier)
	w.Linef("%s(out_ptr, res_size);", signature.FreeBufferEntryPoint)
	w.Blank()

	w.Line("if (out.value.index() == 0) { // Ok")
	w.Indent()
	if returnType(fn.Return) == "void" {
		w.Line("return;")
	} else {
		w.Line("auto ok = std::get<0>(out.value);")
		w.Line("return std::get<0>(ok.value);")
	}
	w.Dedent()
	w.Line("} else { // Err")
	w.Indent()
	w.Line("auto err = std::get<1>(out.value);")
	w.Line("auto error = std::get<0>(err.value);")
	w.Line("throw error;")
	w.Dedent()
	w.Line("}")

	w.Dedent()
	w.Line("}")
	w.Blank()
}
