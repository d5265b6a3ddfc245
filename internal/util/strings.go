// Package util provides shared text helpers for the viewer and the plain
// progress output.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks shortened text.
const Ellipsis = "…"

// Excerpt collapses all whitespace runs in s to single spaces and shortens the
// result to maxLen runes, ending in Ellipsis when cut. It does not account for
// ANSI escape codes or wide characters; use TruncateANSI for styled text.
func Excerpt(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxLen <= 1 {
		if s == "" {
			return ""
		}
		return Ellipsis
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + Ellipsis
}

// TruncateANSI truncates a string to maxWidth visual columns, ending in
// Ellipsis if truncated. Escape codes are preserved and wide characters count
// by their display width. A non-positive maxWidth leaves s unchanged.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 || lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate includes the tail in the final width calculation
	return ansi.Truncate(s, maxWidth, Ellipsis)
}
