// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/carepath/carepath-tui/internal/ui/styles"
)

// ErrorBox renders a bordered error with an optional retry hint. Message
// may span several lines; the first is the headline.
type ErrorBox struct {
	Title   string
	Message string
	Hint    string
	Width   int
	theme   *styles.Theme
}

// NewErrorBox creates an empty error box.
func NewErrorBox(theme *styles.Theme, title string) ErrorBox {
	return ErrorBox{Title: title, Width: 60, theme: theme}
}

// Visible reports whether there is a message to show.
func (e ErrorBox) Visible() bool { return e.Message != "" }

// View renders the box, or "" when there is no message.
func (e ErrorBox) View() string {
	if !e.Visible() {
		return ""
	}
	lines := []string{e.theme.ErrorTitle.Render("✗ " + e.Title)}
	for _, l := range strings.Split(e.Message, "\n") {
		lines = append(lines, e.theme.ErrorMessage.Render(l))
	}
	if e.Hint != "" {
		lines = append(lines, "", e.theme.ErrorHint.Render(e.Hint))
	}

	box := e.theme.ErrorBox
	if e.Width > 4 {
		box = box.Width(e.Width - 2)
	}
	return box.Render(strings.Join(lines, "\n"))
}
