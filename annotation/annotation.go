package annotation

import (
	"sort"
	"strings"

	"github.com/wippyai/buffi/errors"
	"github.com/wippyai/buffi/rustdoc"
)

// Marker spellings recognized in item attributes. The cfg marker is
// what the original attribute macro leaves behind on exported items and
// is accepted as an export marker for compatibility.
const (
	attrPrefix      = "#[buffi("
	attrSuffix      = ")]"
	cfgExportMarker = "#[cfg(not(generated_extern_impl))]"
	serdeWithPrefix = `#[serde(with = "`
	serdeWithSuffix = `")]`
)

// Client is an exported handle type and its exported method item ids
type Client struct {
	ID      rustdoc.Id
	Name    string
	Methods []rustdoc.Id
}

// Surface is the seed set of exported items plus the substitution and
// flag tables derived from attributes.
type Surface struct {
	FreeFunctions []rustdoc.Id
	Clients       []Client
	ExportedTypes []rustdoc.Id

	// Proxies maps a fully qualified target path to the local item that
	// declares itself the wire shape for it.
	Proxies map[string]rustdoc.Id

	// Overrides is site-local: item id (field or impl) -> target path -> replacement path
	Overrides map[rustdoc.Id]map[string]string

	// AsyncFns marks exported functions that need executor context
	AsyncFns map[rustdoc.Id]bool

	// CustomSerde maps a field item id to the path of the type that
	// defines its wire shape.
	CustomSerde map[rustdoc.Id]string
}

// Interpret scans the doc index for recognized markers and builds the
// exported API surface.
func Interpret(crate *rustdoc.Crate) (*Surface, error) {
	s := &Surface{
		Proxies:     make(map[string]rustdoc.Id),
		Overrides:   make(map[rustdoc.Id]map[string]string),
		AsyncFns:    make(map[rustdoc.Id]bool),
		CustomSerde: make(map[rustdoc.Id]string),
	}

	ids := make([]rustdoc.Id, 0, len(crate.Index))
	for id := range crate.Index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// impl members are methods, not free functions
	methodIDs := make(map[rustdoc.Id]bool)
	clients := make(map[rustdoc.Id]*Client)

	// first pass: impl blocks, type declarations, fields
	for _, id := range ids {
		item := crate.Index[id]
		switch {
		case item.Inner.Impl != nil:
			impl := item.Inner.Impl
			if impl.Trait != nil || !hasExportMarker(item.Attrs) {
				continue
			}
			if impl.For.Kind != rustdoc.TypeResolvedPath {
				return nil, errors.New(errors.PhaseAnnotate, errors.KindInvalidData).
					Item(crate.PathOf(id)).
					Detail("exported impl block must target a named type").
					Build()
			}
			forID := impl.For.Path.ID
			c := clients[forID]
			if c == nil {
				c = &Client{ID: forID, Name: impl.For.Path.BaseName()}
				clients[forID] = c
			}
			for _, member := range impl.Items {
				if m, ok := crate.Item(member); ok && m.Inner.Function != nil {
					c.Methods = append(c.Methods, member)
					methodIDs[member] = true
				}
			}
			if ov := parseOverrides(item.Attrs); len(ov) > 0 {
				s.Overrides[id] = ov
			}

		case item.Inner.Struct != nil:
			if target, ok := proxyTarget(item.Attrs); ok {
				if prior, exists := s.Proxies[target]; exists && prior != id {
					return nil, errors.AmbiguousProxy(target, crate.PathOf(prior), crate.PathOf(id))
				}
				s.Proxies[target] = id
			}
			if hasMarker(item.Attrs, "client") {
				if _, ok := clients[id]; !ok {
					clients[id] = &Client{ID: id, Name: item.Name}
				}
			} else if hasExportMarker(item.Attrs) {
				// client handles stay opaque; they never join the data model
				s.ExportedTypes = append(s.ExportedTypes, id)
			}

		case item.Inner.Enum != nil:
			if hasExportMarker(item.Attrs) {
				s.ExportedTypes = append(s.ExportedTypes, id)
			}

		case item.Inner.StructField != nil:
			if path, ok := serdeWith(item.Attrs); ok {
				s.CustomSerde[id] = path
			}
			if ov := parseOverrides(item.Attrs); len(ov) > 0 {
				s.Overrides[id] = ov
			}
		}
	}

	// second pass: functions (methods were claimed by impls above)
	for _, id := range ids {
		item := crate.Index[id]
		fn := item.Inner.Function
		if fn == nil {
			continue
		}
		if fn.Header.IsAsync || hasMarker(item.Attrs, "async") {
			s.AsyncFns[id] = true
		}
		if methodIDs[id] {
			continue
		}
		if hasExportMarker(item.Attrs) {
			s.FreeFunctions = append(s.FreeFunctions, id)
		}
	}

	// stable client ordering by type name
	for _, c := range clients {
		sortByName(crate, c.Methods)
		s.Clients = append(s.Clients, *c)
	}
	sort.Slice(s.Clients, func(i, j int) bool { return s.Clients[i].Name < s.Clients[j].Name })
	sortByName(crate, s.FreeFunctions)

	return s, nil
}

// AddProxyPath registers a config-supplied proxy (target path -> local
// type path), resolving the local path through the doc index.
func (s *Surface) AddProxyPath(crate *rustdoc.Crate, target, local string) error {
	id, ok := crate.FindByPath(local)
	if !ok {
		return errors.NotFound(errors.PhaseAnnotate, "proxy type", local)
	}
	if prior, exists := s.Proxies[target]; exists && prior != id {
		return errors.AmbiguousProxy(target, crate.PathOf(prior), local)
	}
	s.Proxies[target] = id
	return nil
}

// OverrideFor returns the replacement path for target at the given
// site, if one is declared.
func (s *Surface) OverrideFor(site rustdoc.Id, target string) (string, bool) {
	ov, ok := s.Overrides[site]
	if !ok {
		return "", false
	}
	with, ok := ov[target]
	return with, ok
}

func sortByName(crate *rustdoc.Crate, ids []rustdoc.Id) {
	sort.Slice(ids, func(i, j int) bool {
		a, _ := crate.Item(ids[i])
		b, _ := crate.Item(ids[j])
		return a.Name < b.Name
	})
}

// hasExportMarker accepts both the attribute spelling and the cfg
// marker the original macro expansion leaves behind.
func hasExportMarker(attrs []string) bool {
	for _, a := range attrs {
		if a == cfgExportMarker {
			return true
		}
	}
	return hasMarker(attrs, "export")
}

func hasMarker(attrs []string, directive string) bool {
	for _, a := range attrs {
		name, _, ok := buffiDirective(a)
		if ok && name == directive {
			return true
		}
	}
	return false
}

func proxyTarget(attrs []string) (string, bool) {
	for _, a := range attrs {
		name, body, ok := buffiDirective(a)
		if !ok || name != "proxy" {
			continue
		}
		if target, ok := keyValue(body, "target"); ok {
			return target, true
		}
	}
	return "", false
}

func parseOverrides(attrs []string) map[string]string {
	var out map[string]string
	for _, a := range attrs {
		name, body, ok := buffiDirective(a)
		if !ok || name != "override" {
			continue
		}
		target, tok := keyValue(body, "target")
		with, wok := keyValue(body, "with")
		if tok && wok {
			if out == nil {
				out = make(map[string]string)
			}
			out[target] = with
		}
	}
	return out
}

func serdeWith(attrs []string) (string, bool) {
	for _, a := range attrs {
		if strings.HasPrefix(a, serdeWithPrefix) && strings.HasSuffix(a, serdeWithSuffix) {
			return a[len(serdeWithPrefix) : len(a)-len(serdeWithSuffix)], true
		}
	}
	return "", false
}

// buffiDirective splits "#[buffi(directive(args))]" into its directive
// name and argument body.
func buffiDirective(attr string) (name, body string, ok bool) {
	if !strings.HasPrefix(attr, attrPrefix) || !strings.HasSuffix(attr, attrSuffix) {
		return "", "", false
	}
	inner := attr[len(attrPrefix) : len(attr)-len(attrSuffix)]
	if i := strings.IndexByte(inner, '('); i >= 0 {
		if !strings.HasSuffix(inner, ")") {
			return "", "", false
		}
		return inner[:i], inner[i+1 : len(inner)-1], true
	}
	return inner, "", true
}

// keyValue extracts `key = "value"` from an argument body
func keyValue(body, key string) (string, bool) {
	for _, part := range splitArgs(body) {
		k, v, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(k) != key {
			continue
		}
		v = strings.TrimSpace(v)
		if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
			return v[1 : len(v)-1], true
		}
	}
	return "", false
}

// splitArgs splits on commas outside quotes
func splitArgs(body string) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '"':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
			}
		case ',':
			if !inQuote && depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, body[start:])
	return parts
}
