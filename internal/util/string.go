// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended to text cut by Truncate and FitWidth.
const Ellipsis = "..."

// Truncate keeps the first maxRunes characters of s and appends "..." when
// anything was cut. A string of exactly maxRunes characters is returned as is,
// so the result of a cut is maxRunes+3 runes long.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + Ellipsis
}

// TruncateNoEllipsis keeps at most maxRunes characters of s.
func TruncateNoEllipsis(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// FitWidth cuts s to at most width terminal columns, wide (CJK, emoji)
// characters counting as two. The ellipsis is included in the width.
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= len(Ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// PadRight pads s with spaces to width display columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// SingleLine collapses all whitespace runs (newlines included) to one space.
// Table cells and list rows use it so a multi-line message keeps one row.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
