package annotation

import (
	"errors"
	"strings"
	"testing"

	generrors "github.com/wippyai/buffi/errors"
	"github.com/wippyai/buffi/rustdoc"
)

const surfaceDoc = `{
  "root": "0:0",
  "format_version": 37,
  "external_crates": {},
  "paths": {
    "0:0": {"crate_id": 0, "path": ["my_api"], "kind": "module"},
    "0:1": {"crate_id": 0, "path": ["my_api", "TestClient"], "kind": "struct"},
    "0:5": {"crate_id": 0, "path": ["my_api", "free_standing_function"], "kind": "function"},
    "0:7": {"crate_id": 0, "path": ["my_api", "DateTimeHelper"], "kind": "struct"}
  },
  "index": {
    "0:1": {
      "id": "0:1", "crate_id": 0, "name": "TestClient",
      "attrs": ["#[buffi(client)]"],
      "inner": {"struct": {"kind": "unit", "generics": {"params": []}}}
    },
    "0:2": {
      "id": "0:2", "crate_id": 0, "name": "impl TestClient",
      "attrs": ["#[cfg(not(generated_extern_impl))]"],
      "inner": {"impl": {"trait": null, "for": {"resolved_path": {"name": "TestClient", "id": "0:1"}}, "items": ["0:3", "0:4"]}}
    },
    "0:3": {
      "id": "0:3", "crate_id": 0, "name": "client_function",
      "inner": {"function": {"sig": {"inputs": [], "output": null}, "header": {"is_async": false}, "has_body": true}}
    },
    "0:4": {
      "id": "0:4", "crate_id": 0, "name": "async_function",
      "inner": {"function": {"sig": {"inputs": [], "output": null}, "header": {"is_async": true}, "has_body": true}}
    },
    "0:5": {
      "id": "0:5", "crate_id": 0, "name": "free_standing_function",
      "attrs": ["#[buffi(export)]"],
      "inner": {"function": {"sig": {"inputs": [], "output": null}, "header": {"is_async": false}, "has_body": true}}
    },
    "0:6": {
      "id": "0:6", "crate_id": 0, "name": "not_exported",
      "inner": {"function": {"sig": {"inputs": [], "output": null}, "header": {"is_async": false}, "has_body": true}}
    },
    "0:7": {
      "id": "0:7", "crate_id": 0, "name": "DateTimeHelper",
      "attrs": ["#[buffi(proxy(target = \"chrono::DateTime\"))]", "#[buffi(export)]"],
      "inner": {"struct": {"kind": {"plain": {"fields": ["0:8"], "has_stripped_fields": false}}, "generics": {"params": []}}}
    },
    "0:8": {
      "id": "0:8", "crate_id": 0, "name": "milliseconds_since_unix_epoch",
      "inner": {"struct_field": {"primitive": "i64"}}
    }
  }
}`

func loadSurface(t *testing.T, doc string) (*rustdoc.Crate, *Surface) {
	t.Helper()
	crate, err := rustdoc.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := Interpret(crate)
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}
	return crate, s
}

func TestInterpret_Surface(t *testing.T) {
	_, s := loadSurface(t, surfaceDoc)

	if len(s.FreeFunctions) != 1 || s.FreeFunctions[0] != "0:5" {
		t.Errorf("free functions: got %v, want [0:5]", s.FreeFunctions)
	}
	if len(s.Clients) != 1 {
		t.Fatalf("clients: got %d, want 1", len(s.Clients))
	}
	c := s.Clients[0]
	if c.Name != "TestClient" || c.ID != "0:1" {
		t.Errorf("client: got %q/%s", c.Name, c.ID)
	}
	// methods sorted by name: async_function before client_function
	if len(c.Methods) != 2 || c.Methods[0] != "0:4" || c.Methods[1] != "0:3" {
		t.Errorf("methods: got %v, want [0:4 0:3]", c.Methods)
	}
	if !s.AsyncFns["0:4"] {
		t.Error("async_function should be flagged async")
	}
	if s.AsyncFns["0:3"] {
		t.Error("client_function should not be flagged async")
	}
}

func TestInterpret_Proxy(t *testing.T) {
	_, s := loadSurface(t, surfaceDoc)

	id, ok := s.Proxies["chrono::DateTime"]
	if !ok || id != "0:7" {
		t.Errorf("proxy: got %q %v, want 0:7 true", id, ok)
	}
}

func TestInterpret_AmbiguousProxy(t *testing.T) {
	doc := strings.Replace(surfaceDoc,
		`"attrs": ["#[buffi(client)]"],`,
		`"attrs": ["#[buffi(client)]", "#[buffi(proxy(target = \"chrono::DateTime\"))]"],`, 1)
	crate, err := rustdoc.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = Interpret(crate)
	if err == nil {
		t.Fatal("expected ambiguous proxy error")
	}
	want := &generrors.Error{Phase: generrors.PhaseAnnotate, Kind: generrors.KindAmbiguousProxy}
	if !errors.Is(err, want) {
		t.Errorf("got %v, want ambiguous_proxy", err)
	}
}

func TestAddProxyPath(t *testing.T) {
	crate, s := loadSurface(t, surfaceDoc)

	if err := s.AddProxyPath(crate, "uuid::Uuid", "my_api::DateTimeHelper"); err != nil {
		t.Fatalf("add proxy: %v", err)
	}
	if s.Proxies["uuid::Uuid"] != "0:7" {
		t.Errorf("config proxy: got %q, want 0:7", s.Proxies["uuid::Uuid"])
	}
	if err := s.AddProxyPath(crate, "x::Y", "my_api::Missing"); err == nil {
		t.Error("expected not-found error for missing local type")
	}
}

func TestBuffiDirective(t *testing.T) {
	tests := []struct {
		attr string
		name string
		body string
		ok   bool
	}{
		{"#[buffi(export)]", "export", "", true},
		{"#[buffi(client)]", "client", "", true},
		{`#[buffi(proxy(target = "chrono::DateTime"))]`, "proxy", `target = "chrono::DateTime"`, true},
		{`#[buffi(override(target = "a::B", with = "c::D"))]`, "override", `target = "a::B", with = "c::D"`, true},
		{"#[serde(default)]", "", "", false},
		{"#[derive(Debug)]", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			name, body, ok := buffiDirective(tt.attr)
			if ok != tt.ok || name != tt.name || body != tt.body {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)", name, body, ok, tt.name, tt.body, tt.ok)
			}
		})
	}
}

func TestKeyValue(t *testing.T) {
	body := `target = "a::B", with = "c::D"`
	if v, ok := keyValue(body, "target"); !ok || v != "a::B" {
		t.Errorf("target: got %q %v", v, ok)
	}
	if v, ok := keyValue(body, "with"); !ok || v != "c::D" {
		t.Errorf("with: got %q %v", v, ok)
	}
	if _, ok := keyValue(body, "missing"); ok {
		t.Error("missing key should not be found")
	}
}

func TestSerdeWith(t *testing.T) {
	attrs := []string{`#[serde(with = "crate::datetime_serde")]`}
	path, ok := serdeWith(attrs)
	if !ok || path != "crate::datetime_serde" {
		t.Errorf("got %q %v, want crate::datetime_serde true", path, ok)
	}
}
