package rustdoc

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/wippyai/buffi/errors"
)

// Supported rustdoc JSON format versions. Documents outside this range
// are rejected before any interpretation happens.
const (
	MinFormatVersion = 28
	MaxFormatVersion = 46
)

// Load decodes a rustdoc JSON document and validates its format version
func Load(r io.Reader) (*Crate, error) {
	var crate Crate
	dec := json.NewDecoder(r)
	if err := dec.Decode(&crate); err != nil {
		return nil, errors.DocLoad("parse doc index", err)
	}
	if crate.FormatVersion < MinFormatVersion || crate.FormatVersion > MaxFormatVersion {
		return nil, errors.UnsupportedSchema(crate.FormatVersion, MinFormatVersion, MaxFormatVersion)
	}
	if crate.Index == nil {
		return nil, errors.DocLoad("doc index has no items", nil)
	}
	return &crate, nil
}

// LoadFile decodes a rustdoc JSON document from disk
func LoadFile(path string) (*Crate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DocLoad("open doc index", err)
	}
	defer f.Close()
	return Load(f)
}

// Item returns the indexed item for id
func (c *Crate) Item(id Id) (*Item, bool) {
	item, ok := c.Index[id]
	return item, ok
}

// PathOf returns the fully qualified path of an item, or its bare name
// when the path index has no entry.
func (c *Crate) PathOf(id Id) string {
	if s, ok := c.Paths[id]; ok && len(s.Path) > 0 {
		return strings.Join(s.Path, "::")
	}
	if item, ok := c.Index[id]; ok {
		return item.Name
	}
	return ""
}

// FindByPath resolves a fully qualified path (e.g. "chrono::DateTime")
// to an item id via the path index.
func (c *Crate) FindByPath(path string) (Id, bool) {
	want := strings.Split(path, "::")
	for id, s := range c.Paths {
		if equalPath(s.Path, want) {
			return id, true
		}
	}
	return "", false
}

// CrateName returns the name of the crate an item belongs to
func (c *Crate) CrateName(crateID int) string {
	if crateID == 0 {
		if s, ok := c.Paths[c.Root]; ok && len(s.Path) > 0 {
			return s.Path[0]
		}
		return ""
	}
	for key, ext := range c.ExternalCrates {
		if key == itoa(crateID) {
			return ext.Name
		}
	}
	return ""
}

func equalPath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
