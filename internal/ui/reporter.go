// Package ui provides the console reporter and the confirmation gate for
// destructive runs.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Outcome markers, kept greppable in CI logs.
const (
	okMark    = "[OK]"
	failMark  = "[!!]"
	warnMark  = "[??]"
	stepMark  = "[->]"
	infoMark  = "[  ]"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308"))
	stepStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Reporter emits step-by-step progress with a running counter. All output
// goes to a single writer; color is applied only when the writer is a
// terminal.
type Reporter struct {
	out   io.Writer
	color bool
}

// NewReporter creates a reporter writing to out. Color is enabled when out
// is a TTY.
func NewReporter(out io.Writer) *Reporter {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{out: out, color: color}
}

// NewPlainReporter creates a reporter with color disabled regardless of
// the writer. Used in tests and when output is piped.
func NewPlainReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) render(style lipgloss.Style, s string) string {
	if r.color {
		return style.Render(s)
	}
	return s
}

// Step announces stage current of total with its label.
func (r *Reporter) Step(current, total int, label string) {
	counter := fmt.Sprintf("step %d of %d", current, total)
	fmt.Fprintf(r.out, "%s %s: %s\n", r.render(stepStyle, stepMark), r.render(dimStyle, counter), label)
}

// Infof prints an informational line.
func (r *Reporter) Infof(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", infoMark, fmt.Sprintf(format, args...))
}

// Successf prints a success line.
func (r *Reporter) Successf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.render(okStyle, okMark), fmt.Sprintf(format, args...))
}

// Warnf prints a best-effort failure. The run continues after these.
func (r *Reporter) Warnf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.render(warnStyle, warnMark), fmt.Sprintf(format, args...))
}

// Errorf prints a fatal failure marker.
func (r *Reporter) Errorf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.render(failStyle, failMark), fmt.Sprintf(format, args...))
}

// Done prints the final aggregate success marker.
func (r *Reporter) Done(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.render(okStyle, okMark), fmt.Sprintf(format, args...))
}
