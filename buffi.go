package buffi

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/buffi/annotation"
	"github.com/wippyai/buffi/emit"
	"github.com/wippyai/buffi/errors"
	"github.com/wippyai/buffi/registry"
	"github.com/wippyai/buffi/resolver"
	"github.com/wippyai/buffi/rustdoc"
	"github.com/wippyai/buffi/signature"
	"github.com/wippyai/buffi/writer"
)

// Config drives one generation run. The proxy map and custom serde set
// are usually populated from source attributes; the config fields exist
// for types that cannot be annotated at their definition site.
type Config struct {
	// OutputDir receives the generated header bundle (must exist)
	OutputDir string `toml:"output_dir"`
	// APIBasename prefixes the generated file names (e.g. "buffi_example")
	APIBasename string `toml:"api_basename"`
	// Namespace is the C++ namespace substituted for the namespace
	// token at write time
	Namespace string `toml:"namespace"`
	// CopyrightHeader is an optional banner line for every file
	CopyrightHeader string `toml:"copyright_header"`
	// GeneratedByHeader is an optional banner line for every file
	GeneratedByHeader string `toml:"generated_by_header"`
	// PrimitiveOverrides remaps source primitives (e.g. usize = "u32")
	PrimitiveOverrides map[string]string `toml:"primitive_overrides"`
	// ProxyMap declares wire twins: target type path -> local type path
	ProxyMap map[string]string `toml:"proxy_map"`
	// CustomSerdeSet declares wire shapes per field: "crate::Type::field" -> type path
	CustomSerdeSet map[string]string `toml:"custom_serde_set"`
}

// Extraction is the distilled API surface of one run, immutable once
// built: the closed type registry and the synthesized signature set.
type Extraction struct {
	Registry   *registry.Registry
	Signatures *signature.Set
}

// Result reports a completed generation run
type Result struct {
	Files []writer.Written
}

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// SetLogger installs the logger used by the pipeline. Call before the
// first generation run.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Logger returns the pipeline logger. It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// Extract runs the pipeline up to and including cycle breaking: it
// interprets annotations, closes the type graph, synthesizes the
// signatures, and finalizes the registry. No files are touched.
func Extract(cfg Config, crate *rustdoc.Crate) (*Extraction, error) {
	surface, err := annotation.Interpret(crate)
	if err != nil {
		return nil, err
	}
	for _, target := range sortedKeys(cfg.ProxyMap) {
		if err := surface.AddProxyPath(crate, target, cfg.ProxyMap[target]); err != nil {
			return nil, err
		}
	}
	if err := applyCustomSerde(crate, surface, cfg.CustomSerdeSet); err != nil {
		return nil, err
	}

	res := resolver.New(crate, surface, resolver.Options{PrimitiveOverrides: cfg.PrimitiveOverrides})
	if err := res.ResolveExportedTypes(); err != nil {
		return nil, err
	}

	set, err := signature.Synthesize(crate, surface, res)
	if err != nil {
		return nil, err
	}

	reg := res.Registry()
	if err := reg.BreakCycles(); err != nil {
		return nil, err
	}

	Logger().Debug("extracted API surface",
		zap.Int("types", reg.Len()),
		zap.Int("free_functions", len(set.Free)),
		zap.Int("clients", len(set.Clients)))

	return &Extraction{Registry: reg, Signatures: set}, nil
}

// Render produces the full header bundle in memory, with the namespace
// token still unsubstituted.
func Render(cfg Config, crate *rustdoc.Crate) ([]emit.File, error) {
	ex, err := Extract(cfg, crate)
	if err != nil {
		return nil, err
	}
	return emit.Generate(ex.Registry, ex.Signatures, emit.Options{
		Prefix:            cfg.basename(),
		CopyrightHeader:   cfg.CopyrightHeader,
		GeneratedByHeader: cfg.GeneratedByHeader,
	})
}

// Generate runs the complete pipeline and commits the header bundle to
// the configured output directory. Nothing is written on failure.
func Generate(cfg Config, crate *rustdoc.Crate) (*Result, error) {
	files, err := Render(cfg, crate)
	if err != nil {
		return nil, err
	}
	written, err := writer.Write(cfg.OutputDir, files, cfg.Namespace)
	if err != nil {
		return nil, err
	}
	Logger().Info("wrote bindings",
		zap.String("dir", cfg.OutputDir),
		zap.Int("files", len(written)))
	return &Result{Files: written}, nil
}

// GenerateFromFile loads a rustdoc JSON document and generates from it
func GenerateFromFile(cfg Config, docPath string) (*Result, error) {
	crate, err := rustdoc.LoadFile(docPath)
	if err != nil {
		return nil, err
	}
	return Generate(cfg, crate)
}

func (c Config) basename() string {
	if c.APIBasename != "" {
		return c.APIBasename
	}
	return "api"
}

// applyCustomSerde resolves config-declared field shapes. Keys name a
// field as "crate::Type::field"; values are the path of the wire type.
func applyCustomSerde(crate *rustdoc.Crate, surface *annotation.Surface, set map[string]string) error {
	for _, key := range sortedKeys(set) {
		parent, fieldName, ok := splitFieldPath(key)
		if !ok {
			return errors.InvalidData(errors.PhaseAnnotate, nil, "custom serde key must be crate::Type::field: "+key)
		}
		parentID, found := crate.FindByPath(parent)
		if !found {
			return errors.NotFound(errors.PhaseAnnotate, "custom serde parent type", parent)
		}
		item, _ := crate.Item(parentID)
		if item == nil || item.Inner.Struct == nil || item.Inner.Struct.Kind.Plain == nil {
			return errors.InvalidData(errors.PhaseAnnotate, nil, "custom serde parent is not a field struct: "+parent)
		}
		fieldID := rustdoc.Id("")
		for _, fid := range item.Inner.Struct.Kind.Plain.Fields {
			if f, ok := crate.Item(fid); ok && f.Name == fieldName {
				fieldID = fid
				break
			}
		}
		if fieldID == "" {
			return errors.NotFound(errors.PhaseAnnotate, "custom serde field", key)
		}
		surface.CustomSerde[fieldID] = set[key]
	}
	return nil
}

func splitFieldPath(key string) (parent, field string, ok bool) {
	i := strings.LastIndex(key, "::")
	if i <= 0 || i+2 >= len(key) {
		return "", "", false
	}
	return key[:i], key[i+2:], true
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
