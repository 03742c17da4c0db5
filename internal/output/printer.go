// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled lines to one writer. Styles degrade to plain text
// when the writer is not a terminal.
type Printer struct {
	w       io.Writer
	header  lipgloss.Style
	section lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
}

// New creates a Printer for w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		section: r.NewStyle().Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		dim:     r.NewStyle().Faint(true),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Header prints "=== title ===".
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.w, p.header.Render("=== "+title+" ==="))
}

// Section prints a blank line and "--- title ---".
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.section.Render("--- "+title+" ---"))
}

// Field prints "label: value" indented by two spaces.
func (p *Printer) Field(label string, value any) {
	fmt.Fprintf(p.w, "  %s: %v\n", label, value)
}

// Success prints "✓ msg".
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.ok.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Failure prints "✗ msg".
func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintln(p.w, p.fail.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Warn prints "⚠ msg".
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.warn.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// Dim prints a de-emphasised line.
func (p *Printer) Dim(format string, args ...any) {
	fmt.Fprintln(p.w, p.dim.Render(fmt.Sprintf(format, args...)))
}

// Printf writes unstyled formatted text.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Println writes an unstyled line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.w, args...)
}
