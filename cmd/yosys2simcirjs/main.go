package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tilk/yosys2simcirjs/internal/backend"
	"github.com/tilk/yosys2simcirjs/internal/circuit"
	"github.com/tilk/yosys2simcirjs/internal/compile"
	"github.com/tilk/yosys2simcirjs/internal/config"
	"github.com/tilk/yosys2simcirjs/internal/diag"
	"github.com/tilk/yosys2simcirjs/internal/emit"
	"github.com/tilk/yosys2simcirjs/internal/passes"
	"github.com/tilk/yosys2simcirjs/internal/validate"
	"github.com/tilk/yosys2simcirjs/internal/yosys"
)

var synthesize = backend.Synthesize

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printGlobalUsage()
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "compile":
		return runCompile(args[1:])
	case "synth":
		return runSynth(args[1:])
	case "lint":
		return runLint(args[1:])
	default:
		printGlobalUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printGlobalUsage() {
	fmt.Fprintf(os.Stderr, "yosys2simcirjs netlist compiler\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  yosys2simcirjs <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  compile    Compile a JSON netlist to a device graph (json|html|ir)\n")
	fmt.Fprintf(os.Stderr, "  synth      Run yosys on HDL sources, then compile the result\n")
	fmt.Fprintf(os.Stderr, "  lint       Parse and compile for diagnostics only\n")
}

type compileFlags struct {
	output     string
	emitFormat string
	diagFormat string
	configPath string
	top        string
	title      string
	noLayout   bool
}

func addCompileFlags(fs *flag.FlagSet) *compileFlags {
	cf := &compileFlags{}
	fs.StringVar(&cf.output, "o", "", "output file path (stdout when omitted)")
	fs.StringVar(&cf.emitFormat, "emit", "json", "output format (json|html|ir)")
	fs.StringVar(&cf.diagFormat, "diag-format", "text", "diagnostic output format (text|json)")
	fs.StringVar(&cf.configPath, "config", "", "path to a YAML options file")
	fs.StringVar(&cf.top, "top", "", "top-level module override")
	fs.StringVar(&cf.title, "title", "circuit", "page title for html output")
	fs.BoolVar(&cf.noLayout, "no-layout", false, "skip device coordinate annotation")
	return cf
}

func (cf *compileFlags) loadConfig() (*config.Config, error) {
	if cf.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(cf.configPath)
}

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cf := addCompileFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("compile command requires exactly one JSON netlist file")
	}
	netlist, err := yosys.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	return compileAndEmit(netlist, cf)
}

func runSynth(args []string) error {
	fs := flag.NewFlagSet("synth", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cf := addCompileFlags(fs)
	yosysPath := fs.String("yosys", "", "path to the yosys binary (PATH lookup when omitted)")
	script := fs.String("script", "", "yosys command script override")
	jsonOut := fs.String("json-out", "", "path to keep the intermediate JSON netlist (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("synth command requires at least one HDL source file")
	}
	res, err := synthesize(fs.Args(), *jsonOut, backend.Options{
		YosysPath: *yosysPath,
		Script:    *script,
		TopModule: cf.top,
	})
	if err != nil {
		return err
	}
	netlist, err := yosys.Load(res.JSONPath)
	if err != nil {
		return err
	}
	return compileAndEmit(netlist, cf)
}

func runLint(args []string) error {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	diagFormat := fs.String("diag-format", "text", "diagnostic output format (text|json)")
	configPath := fs.String("config", "", "path to a YAML options file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("lint command requires exactly one JSON netlist file")
	}
	cf := &compileFlags{diagFormat: *diagFormat, configPath: *configPath}
	cfg, err := cf.loadConfig()
	if err != nil {
		return err
	}
	netlist, err := yosys.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	reporter := diag.NewReporter(os.Stderr, cf.diagFormat)
	if err := validate.CheckNetlist(netlist, reporter); err != nil {
		return err
	}
	if _, err := buildDesign(netlist, reporter, cfg, cf.top); err != nil {
		return err
	}
	if reporter.WarningCount() > 0 {
		fmt.Fprintf(os.Stderr, "%d warning(s)\n", reporter.WarningCount())
	}
	return nil
}

func compileAndEmit(netlist *yosys.Netlist, cf *compileFlags) error {
	cfg, err := cf.loadConfig()
	if err != nil {
		return err
	}
	reporter := diag.NewReporter(os.Stderr, cf.diagFormat)
	if err := validate.CheckNetlist(netlist, reporter); err != nil {
		return err
	}
	design, err := buildDesign(netlist, reporter, cfg, cf.top)
	if err != nil {
		return err
	}

	layout := cfg.Layout && !cf.noLayout
	switch cf.emitFormat {
	case "json":
		return emit.Emit(design, cf.output, emit.Options{Layout: layout})
	case "html":
		data, err := emit.JSON(design, emit.Options{Layout: layout})
		if err != nil {
			return err
		}
		page, err := renderPage(cf.title, data)
		if err != nil {
			return err
		}
		return withOutputWriter(cf.output, func(w io.Writer) error {
			_, err := io.WriteString(w, page)
			return err
		})
	case "ir":
		return withOutputWriter(cf.output, func(w io.Writer) error {
			circuit.Dump(design, w)
			return nil
		})
	default:
		return fmt.Errorf("unknown emit format: %s", cf.emitFormat)
	}
}

func buildDesign(netlist *yosys.Netlist, reporter *diag.Reporter, cfg *config.Config, topOverride string) (*circuit.Design, error) {
	top := cfg.Top
	if topOverride != "" {
		top = topOverride
	}
	design, err := compile.BuildDesign(netlist, reporter, compile.Options{
		Top:      top,
		PortMaps: cfg.PortMaps,
	})
	if err != nil {
		return nil, err
	}
	if reporter.HasErrors() {
		return nil, fmt.Errorf("errors reported during compilation")
	}
	mgr := passes.NewManager()
	mgr.Add(passes.NewIORetag())
	if err := mgr.Run(design); err != nil {
		return nil, err
	}
	return design, nil
}

func withOutputWriter(path string, fn func(io.Writer) error) error {
	w, cleanup, err := outputWriter(path)
	if err != nil {
		return err
	}
	if cleanup == nil {
		return fn(w)
	}
	err = fn(w)
	if closeErr := cleanup(); err == nil && closeErr != nil {
		err = closeErr
	}
	return err
}

func outputWriter(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
