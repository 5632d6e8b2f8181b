package writer

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/buffi/emit"
	"github.com/wippyai/buffi/errors"
)

//go:embed runtime/serde.hpp runtime/bincode.hpp
var runtimeFS embed.FS

// runtimeHeaders are the support runtime files copied unchanged into
// every output directory.
var runtimeHeaders = []string{"serde.hpp", "bincode.hpp"}

// Written reports one committed output file
type Written struct {
	Name string
	Size int
}

// Write substitutes the namespace token with the configured namespace
// in names and contents, appends the vendored runtime headers, and
// commits everything to dir. Files land atomically (temp file plus
// rename) and only after every file rendered, so a failing run leaves
// no partial output.
func Write(dir string, files []emit.File, namespace string) ([]Written, error) {
	if namespace == "" {
		return nil, errors.InvalidData(errors.PhaseWrite, nil, "namespace must not be empty")
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errors.New(errors.PhaseWrite, errors.KindIO).
			Detail("output directory %s does not exist", dir).
			Cause(err).
			Build()
	}

	final := make([]emit.File, 0, len(files)+len(runtimeHeaders))
	for _, f := range files {
		final = append(final, emit.File{
			Name:    strings.ReplaceAll(f.Name, emit.NamespaceToken, namespace),
			Content: bytes.ReplaceAll(f.Content, []byte(emit.NamespaceToken), []byte(namespace)),
		})
	}
	for _, name := range runtimeHeaders {
		content, err := runtimeFS.ReadFile("runtime/" + name)
		if err != nil {
			return nil, errors.Write(name, err)
		}
		final = append(final, emit.File{Name: name, Content: content})
	}

	var written []Written
	for _, f := range final {
		if err := commit(dir, f); err != nil {
			// roll back the files this run already committed
			for _, w := range written {
				os.Remove(filepath.Join(dir, w.Name))
			}
			return nil, err
		}
		written = append(written, Written{Name: f.Name, Size: len(f.Content)})
	}
	return written, nil
}

// commit writes one file atomically
func commit(dir string, f emit.File) error {
	target := filepath.Join(dir, f.Name)
	tmp, err := os.CreateTemp(dir, "."+f.Name+".tmp*")
	if err != nil {
		return errors.Write(f.Name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(f.Content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Write(f.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Write(f.Name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return errors.Write(f.Name, err)
	}
	return nil
}
