// Command pl0c compiles a PL/0 source file and, if it compiles without
// errors, runs it on the bundled stack VM (or in the step-debugger with -i).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pl0lang/pl0c/compiler"
	"github.com/pl0lang/pl0c/config"
	"github.com/pl0lang/pl0c/lexer"
	"github.com/pl0lang/pl0c/report"
	"github.com/pl0lang/pl0c/tui"
	"github.com/pl0lang/pl0c/vm"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showLexemes  = flag.Bool("l", false, "Print the lexeme table")
		showAssembly = flag.Bool("a", false, "Print the generated assembly")
		showTrace    = flag.Bool("v", false, "Print an execution trace while running")
		interactive  = flag.Bool("i", false, "Start the interactive step-debugger instead of running to completion")
		configPath   = flag.String("config", "", "Path to a config.toml (default: platform config dir)")
		maxCycles    = flag.Uint64("max-cycles", 0, "Override the VM's cycle limit (0 keeps the config/default value)")
		showVersion  = flag.Bool("version", false, "Show version information")
	)
	// flag parsing stops at the first non-flag argument; parse again after
	// each one so flags may come before, between or after the file names.
	var positional []string
	for args := os.Args[1:]; ; {
		_ = flag.CommandLine.Parse(args)
		if flag.NArg() == 0 {
			break
		}
		positional = append(positional, flag.Arg(0))
		args = flag.Args()[1:]
	}
	_ = flag.CommandLine.Parse(append([]string{"--"}, positional...))

	if *showVersion {
		fmt.Printf("pl0c %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pl0c [flags] <input.pl0> [output]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	inPath := flag.Arg(0)
	src, err := os.ReadFile(inPath) // #nosec G304 -- user-specified input path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", inPath, err)
		os.Exit(1)
	}

	var out *os.File
	if flag.NArg() >= 2 {
		out, err = os.Create(flag.Arg(1)) // #nosec G304 -- user-specified output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", flag.Arg(1), err)
			os.Exit(1)
		}
		defer out.Close()
	} else {
		out = os.Stdout
	}

	stream, _, errs := compiler.Compile(string(src))

	wantLexemes := *showLexemes || cfg.Reports.Lexemes
	wantAssembly := *showAssembly || cfg.Reports.Assembly
	wantTrace := *showTrace || cfg.Reports.Trace

	if wantLexemes {
		tokens := lexer.New(string(src)).TokenizeAll()
		fmt.Fprintln(out, report.Lexemes(tokens, errs))
	}

	if errs.HasErrors() {
		fmt.Fprintln(out, errs.Error())
		os.Exit(1)
	}

	if wantAssembly {
		fmt.Fprintln(out, report.Assembly(stream))
	}

	cycles := cfg.Limits.MaxCycles
	if *maxCycles != 0 {
		cycles = *maxCycles
	}

	if *interactive {
		m := vm.New(stream, out, os.Stdin)
		m.MaxCycles = cycles
		t := tui.New(m, stream)
		if err := t.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	m := vm.New(stream, out, os.Stdin)
	m.MaxCycles = cycles

	if wantTrace {
		tr := report.NewTrace()
		m.OnStep = tr.Observe
		if err := m.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(out, tr.Render(m))
		return
	}

	if err := m.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}
