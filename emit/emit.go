package emit

import (
	"strings"

	"github.com/wippyai/buffi/emit/internal/cpp"
	"github.com/wippyai/buffi/registry"
	"github.com/wippyai/buffi/signature"
)

// NamespaceToken is the literal placeholder emitted everywhere a
// namespace identifier is needed. The writer substitutes it with the
// configured namespace at file-write time; the emitter never bakes a
// concrete name.
const NamespaceToken = "BUFFI_NAMESPACE"

// Options configures a generation pass
type Options struct {
	// Prefix is the api basename used in output file names and include
	// directives (e.g. "buffi_example").
	Prefix string
	// CopyrightHeader and GeneratedByHeader become banner comment lines
	// at the top of every emitted file when set.
	CopyrightHeader   string
	GeneratedByHeader string
}

// File is one rendered output file. Content still carries the
// namespace token; substitution happens in the writer.
type File struct {
	Name    string
	Content []byte
}

// Generate renders the complete header bundle: the C entry point
// declarations, the type model, one holder header per client type, and
// the free-standing function header.
func Generate(reg *registry.Registry, set *signature.Set, opts Options) ([]File, error) {
	var files []File

	api, err := emitAPIFunctions(set, opts)
	if err != nil {
		return nil, err
	}
	files = append(files, File{Name: opts.Prefix + "_api_functions.hpp", Content: api})

	model, err := emitTypeModel(reg, opts)
	if err != nil {
		return nil, err
	}
	files = append(files, File{Name: NamespaceToken + ".hpp", Content: model})

	for _, client := range set.Clients {
		holder := emitHolder(client, opts)
		name := opts.Prefix + "_" + strings.ToLower(client.Name) + ".hpp"
		files = append(files, File{Name: name, Content: holder})
	}

	files = append(files, File{
		Name:    opts.Prefix + "_free_standing_functions.hpp",
		Content: emitFreeStanding(set.Free, opts),
	})

	return files, nil
}

// bannerComments writes the optional copyright and generated-by lines
func bannerComments(w *cpp.Writer, opts Options) {
	if opts.CopyrightHeader != "" {
		w.Linef("// %s", opts.CopyrightHeader)
	}
	if opts.GeneratedByHeader != "" {
		w.Linef("// %s", opts.GeneratedByHeader)
	}
	if opts.CopyrightHeader != "" || opts.GeneratedByHeader != "" {
		w.Blank()
	}
}

// functionHeader writes the common prologue of the function headers
func functionHeader(w *cpp.Writer, opts Options) {
	bannerComments(w, opts)
	w.Line("#pragma once")
	w.Blank()
	w.Line("#include <cstddef>")
	w.Line("#include <limits>")
}

// docComment writes source documentation as comment lines
func docComment(w *cpp.Writer, docs, marker string) {
	if docs == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(docs, "\n"), "\n") {
		if line == "" {
			w.Line(marker)
		} else {
			w.Linef("%s %s", marker, line)
		}
	}
}

// qualified prefixes a type name with the namespace token
func qualified(name string) string {
	return NamespaceToken + "::" + name
}
