// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators: 12345 -> "12,345".
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Plural renders "1 result" / "3 results".
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return FormatCount(n) + " " + singular
	}
	return FormatCount(n) + " " + plural
}
