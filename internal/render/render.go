package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/veldt-lang/veldt/internal/config"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/report"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[1;31m"
	ansiBlue  = "\x1b[1;34m"
	ansiCyan  = "\x1b[1;36m"
)

var (
	colorOnce sync.Once
	colorVal  bool
)

// stderrColor caches the color decision for the common target. Other
// files are probed directly.
func stderrColor() bool {
	colorOnce.Do(func() { colorVal = detectColor(os.Stderr.Fd()) })
	return colorVal
}

func detectColor(fd uintptr) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv(config.NoColorEnv); ok {
		return false
	}

	// Not a terminal
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// Renderer writes diagnostics and resolution reports in a compiler
// style layout: a coded headline, a source locator, an excerpt with a
// caret, and a help block listing implementation signatures.
type Renderer struct {
	out    io.Writer
	color  bool
	source map[string]string
}

// New builds a renderer for out. Color is enabled only when out is a
// terminal and the environment does not forbid it.
func New(out io.Writer) *Renderer {
	r := &Renderer{out: out, source: make(map[string]string)}
	if f, ok := out.(*os.File); ok {
		if f == os.Stderr {
			r.color = stderrColor()
		} else {
			r.color = detectColor(f.Fd())
		}
	}
	return r
}

// SetColor overrides the detected color mode.
func (r *Renderer) SetColor(on bool) {
	r.color = on
}

// AddSource registers the text of a processed file so excerpts can be
// shown under diagnostics that point into it.
func (r *Renderer) AddSource(file, text string) {
	r.source[file] = text
}

func (r *Renderer) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

// Diagnostic renders one error block. The excerpt is skipped when the
// file's source was never registered or the position is unknown.
func (r *Renderer) Diagnostic(e *diagnostics.DiagnosticError) {
	r.headline(e.Code, e.Text())
	if e.File != "" && e.Line > 0 {
		r.locator(e.File, e.Line, e.Column)
		r.excerpt(e.File, e.Line, e.Column)
	}
	fmt.Fprintln(r.out)
}

// Report renders one failing resolution report and reports whether
// anything was written. Resolved reports are silent.
func (r *Renderer) Report(rep *report.Report) bool {
	switch rep.Status {
	case report.StatusNotFound:
		r.headline(diagnostics.ErrR001, fmt.Sprintf("no implementation found for `%s`", rep.Goal))
	case report.StatusAmbiguous:
		r.headline(diagnostics.ErrR002, fmt.Sprintf("ambiguous implementations for `%s` (%d candidates)", rep.Goal, len(rep.Candidates)))
	default:
		return false
	}
	if rep.Site.Known() {
		r.locator(rep.Site.File, rep.Site.Line, rep.Site.Column)
		r.excerpt(rep.Site.File, rep.Site.Line, rep.Site.Column)
	}
	switch rep.Status {
	case report.StatusNotFound:
		if len(rep.NearMisses) == 0 {
			fmt.Fprintf(r.out, "%s no implementations of this interface were declared\n", r.paint(ansiCyan, "help:"))
		} else {
			fmt.Fprintf(r.out, "%s the following implementations were found:\n", r.paint(ansiCyan, "help:"))
			r.implList(rep.NearMisses)
		}
	case report.StatusAmbiguous:
		fmt.Fprintf(r.out, "%s all of these implementations match:\n", r.paint(ansiCyan, "help:"))
		r.implList(rep.Candidates)
	}
	fmt.Fprintln(r.out)
	return true
}

// All renders errs and reports and returns the number of error blocks
// written. Resolution failures arrive twice, once as a coded error and
// once as a report; the report form carries the candidate list, so the
// R001/R002 errors are dropped here and validation diagnostics render
// first.
func (r *Renderer) All(errs []*diagnostics.DiagnosticError, reports []*report.Report) int {
	blocks := 0
	for _, e := range errs {
		if e.Code == diagnostics.ErrR001 || e.Code == diagnostics.ErrR002 {
			continue
		}
		r.Diagnostic(e)
		blocks++
	}
	for _, rep := range reports {
		if r.Report(rep) {
			blocks++
		}
	}
	return blocks
}

func (r *Renderer) headline(code, msg string) {
	fmt.Fprintf(r.out, "%s%s\n", r.paint(ansiRed, "error["+code+"]"), r.paint(ansiBold, ": "+msg))
}

func (r *Renderer) locator(file string, line, column int) {
	w := len(strconv.Itoa(line))
	fmt.Fprintf(r.out, "%s%s %s:%d:%d\n", strings.Repeat(" ", w), r.paint(ansiBlue, "-->"), file, line, column)
}

// excerpt prints the offending source line inside a numbered gutter
// with a caret under the reported column.
func (r *Renderer) excerpt(file string, line, column int) {
	text, ok := r.source[file]
	if !ok {
		return
	}
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return
	}
	src := strings.TrimSuffix(lines[line-1], "\r")

	num := strconv.Itoa(line)
	w := len(num)
	blank := strings.Repeat(" ", w+1) + "|"

	// Columns are counted in runes by the lexer.
	pad := column - 1
	if runes := len([]rune(src)); pad > runes {
		pad = runes
	}
	if pad < 0 {
		pad = 0
	}

	fmt.Fprintf(r.out, "%s\n", r.paint(ansiBlue, blank))
	fmt.Fprintf(r.out, "%s %s\n", r.paint(ansiBlue, num+" |"), src)
	fmt.Fprintf(r.out, "%s %s%s\n", r.paint(ansiBlue, blank), strings.Repeat(" ", pad), r.paint(ansiRed, "^"))
}

func (r *Renderer) implList(impls []report.Impl) {
	for _, impl := range impls {
		if impl.Site.Known() {
			fmt.Fprintf(r.out, "  %s %s:%d:%d: %s\n", r.paint(ansiBlue, "-->"), impl.Site.File, impl.Site.Line, impl.Site.Column, impl.Signature)
		} else {
			fmt.Fprintf(r.out, "  %s\n", impl.Signature)
		}
	}
}
