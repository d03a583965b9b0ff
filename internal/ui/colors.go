package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the palette used by the CLI.
var Styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	key   lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		key:   NewStyle(h).Width(14),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Title renders a section heading.
func (p *Palette) Title(s string) string { return p.title.Render(s) }

// Success renders s prefixed with a check mark.
func (p *Palette) Success(s string) string { return p.ok.Render("✓ " + s) }

// Failure renders s prefixed with a cross.
func (p *Palette) Failure(s string) string { return p.err.Render("✗ " + s) }

// Warning renders s in the warning color.
func (p *Palette) Warning(s string) string { return p.warn.Render(s) }

// Hint renders muted italic text.
func (p *Palette) Hint(s string) string { return p.help.Render(s) }

// KeyValue renders an aligned "key  value" line.
func (p *Palette) KeyValue(k string, v any) string {
	return p.key.Render(k) + fmt.Sprint(v)
}
