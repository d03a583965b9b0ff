// Package ui holds the lipgloss palette used to style CLI output.
//
// Styling degrades to plain text when stdout is not a terminal, since lipgloss
// detects the color profile of the output.
package ui
