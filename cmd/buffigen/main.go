package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/buffi"
	"github.com/wippyai/buffi/registry"
	"github.com/wippyai/buffi/rustdoc"
	"github.com/wippyai/buffi/signature"
)

func main() {
	var (
		docFile     = flag.String("doc", "", "Path to the rustdoc JSON index")
		configFile  = flag.String("config", "", "Path to an api_config.toml")
		outDir      = flag.String("out", "", "Output directory (overrides config)")
		namespace   = flag.String("namespace", "", "C++ namespace (overrides config)")
		basename    = flag.String("basename", "", "API basename for file names (overrides config)")
		list        = flag.Bool("list", false, "List the extracted API surface and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *docFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: buffigen -doc <index.json> -config <api_config.toml> [-out dir]")
		fmt.Fprintln(os.Stderr, "       buffigen -doc <index.json> -list")
		fmt.Fprintln(os.Stderr, "       buffigen -doc <index.json> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			buffi.SetLogger(logger)
			defer logger.Sync()
		}
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fail(err)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *namespace != "" {
		cfg.Namespace = *namespace
	}
	if *basename != "" {
		cfg.APIBasename = *basename
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fail(fmt.Errorf("interactive mode requires a terminal"))
		}
		if err := runInteractive(*docFile, cfg); err != nil {
			fail(err)
		}
		return
	}

	crate, err := rustdoc.LoadFile(*docFile)
	if err != nil {
		fail(err)
	}

	if *list {
		if err := listSurface(cfg, crate); err != nil {
			fail(err)
		}
		return
	}

	if cfg.OutputDir == "" || cfg.Namespace == "" {
		fail(fmt.Errorf("output directory and namespace are required (set them in the config or via -out/-namespace)"))
	}

	result, err := buffi.Generate(cfg, crate)
	if err != nil {
		fail(err)
	}

	total := 0
	for _, f := range result.Files {
		fmt.Printf("  %s (%s)\n", f.Name, humanize.Bytes(uint64(f.Size)))
		total += f.Size
	}
	color.Green("Finished, wrote %d files (%s) to `%s`", len(result.Files), humanize.Bytes(uint64(total)), cfg.OutputDir)
}

func loadConfig(path string) (buffi.Config, error) {
	var cfg buffi.Config
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

func listSurface(cfg buffi.Config, crate *rustdoc.Crate) error {
	ex, err := buffi.Extract(cfg, crate)
	if err != nil {
		return err
	}

	fmt.Printf("Types: %d\n", ex.Registry.Len())
	for _, name := range ex.Registry.Names() {
		def, _ := ex.Registry.Lookup(name)
		fmt.Printf("  %s %s\n", def.Shape, name)
	}

	fmt.Printf("\nFree-standing functions:\n")
	for _, fn := range ex.Signatures.Free {
		fmt.Printf("  %s\n", formatFunction(fn))
	}

	for _, c := range ex.Signatures.Clients {
		fmt.Printf("\nClient %s (factory %s):\n", c.Name, c.Factory)
		for _, m := range c.Methods {
			fmt.Printf("  %s\n", formatFunction(m))
		}
	}
	return nil
}

func formatFunction(fn signature.Function) string {
	var params []string
	for _, p := range fn.Params {
		params = append(params, p.Name+": "+registry.WireName(p.Type))
	}
	marker := ""
	if fn.Class == signature.ClassAsyncClientMethod {
		marker = " [async]"
	}
	return fmt.Sprintf("%s(%s) -> %s%s  [%s]",
		fn.Name, strings.Join(params, ", "), registry.WireName(fn.Return), marker, fn.EntryPoint)
}

func fail(err error) {
	color.Red("Error: %v", err)
	os.Exit(1)
}
