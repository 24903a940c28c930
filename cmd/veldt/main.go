package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/veldt-lang/veldt/internal/config"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/lexer"
	"github.com/veldt-lang/veldt/internal/parser"
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/printer"
	"github.com/veldt-lang/veldt/internal/render"
	"github.com/veldt-lang/veldt/internal/store"
	"github.com/veldt-lang/veldt/pkg/veldt"
)

// Version can be set at build time using: -ldflags "-X main.Version=v1.0.0"
// Default is "dev".
var Version = "dev"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [arguments]

Commands:
  check [--trace <db>] [--no-color] <file>...   analyze declarations and report verdicts
  fmt <file>                                    reprint a declaration file canonically
  trace [<db>] [--verdict <kind>]               list recorded resolution traces
  version                                       print the version
  help                                          print this help

Files are .vd sources or .yaml manifests; '-' reads source from stdin.
`, os.Args[0])
}

func handleHelp() bool {
	if os.Args[1] != "help" && os.Args[1] != "-help" && os.Args[1] != "--help" {
		return false
	}
	usage()
	return true
}

func handleVersion() bool {
	if os.Args[1] != "version" && os.Args[1] != "-version" && os.Args[1] != "--version" {
		return false
	}
	fmt.Printf("veldt %s\n", Version)
	return true
}

func handleCheck() bool {
	if os.Args[1] != "check" {
		return false
	}

	var tracePath string
	var noColor bool
	var files []string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--trace":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --trace needs a database path")
				os.Exit(1)
			}
			tracePath = args[i]
		case "--no-color":
			noColor = true
		default:
			files = append(files, args[i])
		}
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s check [--trace <db>] [--no-color] <file>...\n", os.Args[0])
		os.Exit(1)
	}

	engine := veldt.New()
	for _, path := range files {
		if path == "-" {
			source, err := readStdin()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
				os.Exit(1)
			}
			_ = engine.LoadSource(source, "<stdin>")
			continue
		}
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		// Parse diagnostics surface through the renderer below.
		_ = engine.LoadFile(path)
	}
	_ = engine.Seal()

	r := render.New(os.Stdout)
	if noColor {
		r.SetColor(false)
	}
	for file, text := range engine.Sources() {
		r.AddSource(file, text)
	}
	blocks := r.All(engine.Errors(), engine.Reports())

	if tracePath != "" {
		if err := recordTraces(tracePath, engine); err != nil {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", diagnostics.ErrS001, err)
		}
	}

	if blocks > 0 {
		os.Exit(1)
	}
	return true
}

func recordTraces(path string, engine *veldt.Engine) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	reports := engine.Reports()
	for i, result := range engine.Results() {
		if err := st.Record(store.EntryFor(result, reports[i])); err != nil {
			return err
		}
	}
	return nil
}

func handleFmt() bool {
	if os.Args[1] != "fmt" {
		return false
	}
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s fmt <file>\n", os.Args[0])
		os.Exit(1)
	}

	path := os.Args[2]
	var source string
	if path == "-" {
		input, err := readStdin()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		source = input
	} else {
		if !isSourcePath(path) {
			fmt.Fprintf(os.Stderr, "Error: %s is not a declaration source file\n", path)
			os.Exit(1)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		source = string(data)
	}

	pctx := pipeline.NewPipelineContext(source)
	pctx.FilePath = path
	pctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(pctx)
	if len(pctx.Errors) > 0 {
		fmt.Fprintln(os.Stderr, "Formatting failed with errors:")
		for _, err := range pctx.Errors {
			fmt.Fprintf(os.Stderr, "- %s\n", err.Error())
		}
		os.Exit(1)
	}

	fmt.Print(printer.Source(pctx.AstRoot))
	return true
}

func handleTrace() bool {
	if os.Args[1] != "trace" {
		return false
	}

	var path string
	verdict := ""
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--verdict":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --verdict needs a kind")
				os.Exit(1)
			}
			verdict = args[i]
		default:
			if path != "" {
				fmt.Fprintf(os.Stderr, "Usage: %s trace [<db>] [--verdict <kind>]\n", os.Args[0])
				os.Exit(1)
			}
			path = args[i]
		}
	}
	if path == "" {
		path = defaultTraceDB()
	}

	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	st, err := store.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer st.Close()

	var entries []store.TraceEntry
	if verdict != "" {
		entries, err = st.ByVerdict(verdict)
	} else {
		entries, err = st.List()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	for _, entry := range entries {
		fmt.Println(formatEntry(entry))
	}
	return true
}

// formatEntry renders one trace as a single line: timestamp, verdict,
// goal, then the site and the winning implementation when present.
func formatEntry(entry store.TraceEntry) string {
	goal := entry.Target + " : " + entry.Interface
	if entry.Args != "" {
		goal += "[" + entry.Args + "]"
	}
	line := fmt.Sprintf("%s  %-9s  %s", entry.Created.Format(time.RFC3339), entry.Verdict, goal)
	if entry.File != "" {
		line += fmt.Sprintf("  (%s:%d:%d)", entry.File, entry.Line, entry.Column)
	}
	if entry.Impl != "" {
		line += "  => " + entry.Impl
	}
	return line
}

// defaultTraceDB matches the daemon's trace flag default.
func defaultTraceDB() string {
	if path := os.Getenv(config.TraceDBEnv); path != "" {
		return path
	}
	return config.DefaultTraceDB
}

func isSourcePath(path string) bool {
	ext := filepath.Ext(path)
	for _, s := range config.SourceFileExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func readStdin() (string, error) {
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", fmt.Errorf("stdin is a terminal; pipe a declaration file in")
	}
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(input), nil
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	if handleHelp() {
		return
	}
	if handleVersion() {
		return
	}
	if handleCheck() {
		return
	}
	if handleFmt() {
		return
	}
	if handleTrace() {
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
	usage()
	os.Exit(1)
}
