package emit

import (
	"strings"
	"testing"

	"github.com/wippyai/buffi/registry"
	"github.com/wippyai/buffi/signature"
)

func testSet() *signature.Set {
	return &signature.Set{
		Free: []signature.Function{
			{
				Name:          "free_standing_function",
				Docs:          "A function that is not part of an impl block",
				Params:        []signature.Param{{Name: "input", Type: registry.I64()}},
				Return:        registry.I64(),
				ResultCarrier: "Result_i64_SerializableError",
				EntryPoint:    "buffi_free_standing_function",
				Class:         signature.ClassFree,
			},
		},
		Clients: []signature.Client{
			{
				Name:    "TestClient",
				Factory: "get_test_client",
				Methods: []signature.Function{
					{
						Name:          "async_function",
						Receiver:      "TestClient",
						Params:        []signature.Param{{Name: "content", Type: registry.I64()}},
						Return:        registry.Named("CustomType"),
						ResultCarrier: "Result_CustomType_SerializableError",
						EntryPoint:    "buffi_async_function",
						Class:         signature.ClassAsyncClientMethod,
					},
					{
						Name:          "client_function",
						Docs:          "A function that might use context provided by a TestClient to do its thing",
						Receiver:      "TestClient",
						Params:        []signature.Param{{Name: "input", Type: registry.Str()}},
						Return:        registry.Str(),
						ResultCarrier: "Result_String_SerializableError",
						EntryPoint:    "buffi_client_function",
						Class:         signature.ClassClientMethod,
					},
					{
						Name:          "use_foreign_type_and_return_nothing",
						Receiver:      "TestClient",
						Params:        []signature.Param{{Name: "point", Type: registry.Named("Point1_f64")}},
						Return:        registry.Unit(),
						ResultCarrier: "Result_void_SerializableError",
						EntryPoint:    "buffi_use_foreign_type_and_return_nothing",
						Class:         signature.ClassClientMethod,
					},
				},
			},
		},
	}
}

func TestAPIFunctions_Prototypes(t *testing.T) {
	content, err := emitAPIFunctions(testSet(), Options{Prefix: "buffi_example"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := string(content)

	wantLines := []string{
		"struct TestClient;",
		`extern "C" TestClient* get_test_client();`,
		`extern "C" size_t buffi_async_function(TestClient* this_ptr, const std::uint8_t* content, size_t content_size, std::uint8_t** out_ptr);`,
		`extern "C" size_t buffi_client_function(TestClient* this_ptr, const std::uint8_t* input, size_t input_size, std::uint8_t** out_ptr);`,
		`extern "C" size_t buffi_free_standing_function(const std::uint8_t* input, size_t input_size, std::uint8_t** out_ptr);`,
		`extern "C" size_t buffi_use_foreign_type_and_return_nothing(TestClient* this_ptr, const std::uint8_t* point, size_t point_size, std::uint8_t** out_ptr);`,
		`extern "C" void buffi_free_byte_buffer(std::uint8_t* ptr, size_t size);`,
	}
	last := -1
	for _, line := range wantLines {
		idx := strings.Index(got, line)
		if idx < 0 {
			t.Fatalf("missing line %q", line)
		}
		if idx < last {
			t.Errorf("line out of order: %q", line)
		}
		last = idx
	}
}

func TestAPIFunctions_Includes(t *testing.T) {
	content, err := emitAPIFunctions(testSet(), Options{Prefix: "buffi_example"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := string(content)

	for _, want := range []string{"#pragma once", "#include <cstddef>", "#include <limits>", "#include <cstdint>"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestHolder_Wrapper(t *testing.T) {
	set := testSet()
	got := string(emitHolder(set.Clients[0], Options{Prefix: "buffi_example"}))

	wantLines := []string{
		`#include "buffi_example_api_functions.hpp"`,
		`#include "BUFFI_NAMESPACE.hpp"`,
		"namespace BUFFI_NAMESPACE {",
		"class TestClientHolder {",
		"    TestClient* inner;",
		"public:",
		"    TestClientHolder(TestClient* ptr) {",
		"        this->inner = ptr;",
		"    // A function that might use context provided by a TestClient to do its thing",
		"    inline std::string client_function(const std::string& input) {",
		"        auto serializer_input = serde::BincodeSerializer();",
		"        serde::Serializable<std::string>::serialize(input, serializer_input);",
		"        std::vector<uint8_t> input_serialized = std::move(serializer_input).bytes();",
		"        uint8_t* out_ptr = nullptr;",
		"        size_t res_size = buffi_client_function(this->inner, input_serialized.data(), input_serialized.size(), &out_ptr);",
		"        std::vector<uint8_t> serialized_result(out_ptr, out_ptr + res_size);",
		"        Result_String_SerializableError out = Result_String_SerializableError::bincodeDeserialize(serialized_result);",
		"        buffi_free_byte_buffer(out_ptr, res_size);",
		"        if (out.value.index() == 0) { // Ok",
		"            auto ok = std::get<0>(out.value);",
		"            return std::get<0>(ok.value);",
		"        } else { // Err",
		"            auto err = std::get<1>(out.value);",
		"            auto error = std::get<0>(err.value);",
		"            throw error;",
		"}  // end of namespace BUFFI_NAMESPACE",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("missing line %q", line)
		}
	}
}

func TestHolder_FreeBeforeInspect(t *testing.T) {
	set := testSet()
	got := string(emitHolder(set.Clients[0], Options{Prefix: "buffi_example"}))

	// every wrapper frees the callee buffer exactly once, before the
	// result union is inspected (so the throwing path cannot leak)
	methods := strings.Split(got, "inline ")[1:]
	if len(methods) != 3 {
		t.Fatalf("methods: got %d, want 3", len(methods))
	}
	for _, m := range methods {
		frees := strings.Count(m, "buffi_free_byte_buffer(out_ptr, res_size);")
		if frees != 1 {
			t.Errorf("wrapper must free exactly once, got %d in:\n%s", frees, m)
		}
		freeIdx := strings.Index(m, "buffi_free_byte_buffer(out_ptr, res_size);")
		inspectIdx := strings.Index(m, "if (out.value.index() == 0)")
		throwIdx := strings.Index(m, "throw error;")
		if inspectIdx < 0 || throwIdx < 0 {
			t.Fatal("wrapper is missing the result inspection")
		}
		if !(freeIdx < inspectIdx && freeIdx < throwIdx) {
			t.Error("free must happen before the result is inspected or thrown")
		}
	}
}

func TestHolder_AsyncSameShape(t *testing.T) {
	set := testSet()
	got := string(emitHolder(set.Clients[0], Options{Prefix: "buffi_example"}))

	// async methods expose no extra parameter or suspension point
	want := "inline CustomType async_function(const int64_t& content) {"
	if !strings.Contains(got, want) {
		t.Errorf("missing async wrapper %q", want)
	}
	if strings.Contains(got, "executor") || strings.Contains(got, "await") {
		t.Error("async wrapper must not expose suspension machinery")
	}
}

func TestHolder_VoidReturn(t *testing.T) {
	set := testSet()
	got := string(emitHolder(set.Clients[0], Options{Prefix: "buffi_example"}))

	sig := "inline void use_foreign_type_and_return_nothing(const Point1_f64& point) {"
	if !strings.Contains(got, sig) {
		t.Fatalf("missing void wrapper %q", sig)
	}
	body := section(t, got, sig, "\n    }")
	if !strings.Contains(body, "return;") {
		t.Error("void wrapper must return without a payload")
	}
	if strings.Contains(body, "std::get<0>(ok.value)") {
		t.Error("void wrapper must not extract an Ok payload")
	}
}

func TestFreeStanding_Wrapper(t *testing.T) {
	set := testSet()
	got := string(emitFreeStanding(set.Free, Options{Prefix: "buffi_example"}))

	wantLines := []string{
		"    // A function that is not part of an impl block",
		"    inline int64_t free_standing_function(const int64_t& input) {",
		"        size_t res_size = buffi_free_standing_function(input_serialized.data(), input_serialized.size(), &out_ptr);",
		"        Result_i64_SerializableError out = Result_i64_SerializableError::bincodeDeserialize(serialized_result);",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("missing line %q", line)
		}
	}
	if strings.Contains(got, "this->inner") {
		t.Error("free-standing wrappers must not reference a receiver")
	}
}

func TestGenerate_FileNames(t *testing.T) {
	reg := schemaRegistry(t)
	files, err := Generate(reg, testSet(), Options{Prefix: "buffi_example"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := []string{
		"buffi_example_api_functions.hpp",
		"BUFFI_NAMESPACE.hpp",
		"buffi_example_testclient.hpp",
		"buffi_example_free_standing_functions.hpp",
	}
	if len(files) != len(want) {
		t.Fatalf("files: got %d, want %d", len(files), len(want))
	}
	for i, name := range want {
		if files[i].Name != name {
			t.Errorf("file %d: got %q, want %q", i, files[i].Name, name)
		}
	}
}

func TestBanner(t *testing.T) {
	opts := Options{
		Prefix:            "buffi_example",
		CopyrightHeader:   "Copyright (C) example",
		GeneratedByHeader: "generated by buffigen",
	}
	content, err := emitAPIFunctions(testSet(), opts)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := string(content)
	if !strings.HasPrefix(got, "// Copyright (C) example\n// generated by buffigen\n\n#pragma once") {
		t.Errorf("banner missing or misordered:\n%s", got[:120])
	}
}
