package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Text width helpers measure display columns, not bytes. Wide characters
// (emoji, CJK) take two columns, combining marks and control characters none.

// RuneWidth returns the display width of a single rune
func RuneWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w < 0 {
		return 0
	}
	return w
}

// StringWidth returns the display width of a string
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateToWidth cuts s so that it fits within maxWidth columns without
// splitting a rune
func TruncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	width := 0
	for i, r := range s {
		rw := RuneWidth(r)
		if width+rw > maxWidth {
			return s[:i]
		}
		width += rw
	}
	return s
}

// TruncateToWidthWithEllipsis truncates s and appends "..." when it does
// not fit in maxWidth columns
func TruncateToWidthWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return TruncateToWidth(s, maxWidth)
	}
	if StringWidth(s) <= maxWidth {
		return s
	}
	return TruncateToWidth(s, maxWidth-3) + "..."
}

// PadStringToWidth pads s with spaces up to width columns
func PadStringToWidth(s string, width int) string {
	current := StringWidth(s)
	if current >= width {
		return s
	}
	return s + strings.Repeat(" ", width-current)
}

// CalculateBreakPoint finds where to break s for wrapping at maxWidth.
// It returns the byte index to break at and the width of s[:byteIndex].
// Breaks prefer the position after the last space and fall back to a
// rune boundary.
func CalculateBreakPoint(s string, maxWidth int) (byteIndex int, actualWidth int) {
	if maxWidth <= 0 {
		return 0, 0
	}

	width := 0
	lastSpace, lastSpaceWidth := -1, 0
	for i, r := range s {
		rw := RuneWidth(r)
		if width+rw > maxWidth {
			if lastSpace >= 0 {
				return lastSpace, lastSpaceWidth
			}
			return i, width
		}
		width += rw
		if r == ' ' || r == '\t' {
			lastSpace, lastSpaceWidth = i+1, width
		}
	}
	return len(s), width
}

// WrapText splits s into lines of at most width columns. Newlines in s
// always start a new line. A rune wider than width gets a line of its own.
func WrapText(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		if para == "" {
			lines = append(lines, "")
			continue
		}
		for para != "" {
			idx, _ := CalculateBreakPoint(para, width)
			if idx == 0 {
				_, idx = utf8.DecodeRuneInString(para)
			}
			lines = append(lines, strings.TrimRight(para[:idx], " "))
			para = para[idx:]
		}
	}
	return lines
}
