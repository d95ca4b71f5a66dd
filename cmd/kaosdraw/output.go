package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// output writes styled lines. Colors are dropped automatically when the
// writer is not a terminal.
type output struct {
	w       io.Writer
	ok      lipgloss.Style
	bad     lipgloss.Style
	dim     lipgloss.Style
	heading lipgloss.Style
}

func newOutput(w io.Writer) *output {
	r := lipgloss.NewRenderer(w)
	return &output{
		w:       w,
		ok:      r.NewStyle().Foreground(lipgloss.Color("10")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		dim:     r.NewStyle().Faint(true),
		heading: r.NewStyle().Bold(true),
	}
}

func (o *output) println(s string) {
	_, _ = fmt.Fprintln(o.w, s)
}

func (o *output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *output) success(format string, args ...any) {
	o.println(o.ok.Render(fmt.Sprintf(format, args...)))
}

func (o *output) failure(format string, args ...any) {
	o.println(o.bad.Render(fmt.Sprintf(format, args...)))
}

// score formats a fuzzy score, green at or above threshold and red below.
func (o *output) score(v, threshold float64) string {
	s := fmt.Sprintf("%.2f", v)
	if v >= threshold {
		return o.ok.Render(s)
	}
	return o.bad.Render(s)
}
