package util

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello w…"},
		{"whitespace collapsed", "  two\n\nlines\there ", 40, "two lines here"},
		{"collapse before cutting", "a    b    c    d", 5, "a b …"},
		{"multibyte runes", "héllo wörld", 6, "héllo…"},
		{"maxLen of 1 returns ellipsis", "hello", 1, "…"},
		{"negative maxLen returns ellipsis", "hello", -1, "…"},
		{"empty stays empty", "", 0, ""},
		{"blank becomes empty", " \n\t ", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Excerpt(tt.input, tt.maxLen)
			if got != tt.expected {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}

func TestExcerpt_LongText(t *testing.T) {
	got := []rune(Excerpt(strings.Repeat("a", 200), 160))
	if len(got) != 160 || string(got[159]) != Ellipsis {
		t.Errorf("Excerpt() returned %d runes ending in %q", len(got), string(got[len(got)-1]))
	}
}

func TestTruncateANSI(t *testing.T) {
	redStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boldStyle := lipgloss.NewStyle().Bold(true)

	tests := []struct {
		name     string
		input    string
		maxWidth int
		check    func(t *testing.T, result string)
	}{
		{
			name:     "short plain string unchanged",
			input:    "hello",
			maxWidth: 10,
			check: func(t *testing.T, result string) {
				if result != "hello" {
					t.Errorf("expected 'hello', got %q", result)
				}
			},
		},
		{
			name:     "plain string truncated",
			input:    "hello world",
			maxWidth: 8,
			check: func(t *testing.T, result string) {
				if width := lipgloss.Width(result); width > 8 {
					t.Errorf("result width %d exceeds maxWidth 8", width)
				}
				if !strings.HasSuffix(result, Ellipsis) || !strings.HasPrefix(result, "hello") {
					t.Errorf("unexpected truncation %q", result)
				}
			},
		},
		{
			name:     "zero width leaves string unchanged",
			input:    "hello",
			maxWidth: 0,
			check: func(t *testing.T, result string) {
				if result != "hello" {
					t.Errorf("expected 'hello', got %q", result)
				}
			},
		},
		{
			name:     "styled string preserves style when not truncated",
			input:    redStyle.Render("hi"),
			maxWidth: 10,
			check: func(t *testing.T, result string) {
				if result != redStyle.Render("hi") {
					t.Errorf("styled string was modified when it shouldn't be")
				}
			},
		},
		{
			name:     "bold styled string truncated",
			input:    boldStyle.Render("● running Iteration 2 of 3"),
			maxWidth: 12,
			check: func(t *testing.T, result string) {
				if width := lipgloss.Width(result); width > 12 {
					t.Errorf("result width %d exceeds maxWidth 12", width)
				}
			},
		},
		{
			name:     "wide characters counted by visual width",
			input:    "日本語テスト",
			maxWidth: 8,
			check: func(t *testing.T, result string) {
				if width := lipgloss.Width(result); width > 8 {
					t.Errorf("result width %d exceeds maxWidth 8", width)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, TruncateANSI(tt.input, tt.maxWidth))
		})
	}
}
