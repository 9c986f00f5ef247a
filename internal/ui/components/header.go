// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/carepath/carepath-tui/internal/ui/styles"
)

// Header is the title bar with the view tabs.
type Header struct {
	Title  string
	Tabs   []string
	Active int
	Width  int
	theme  *styles.Theme
}

// NewHeader creates a header for the given tab labels.
func NewHeader(theme *styles.Theme, tabs ...string) *Header {
	return &Header{Title: "CarePath", Tabs: tabs, Width: 80, theme: theme}
}

// SetWidth sets the available width.
func (h *Header) SetWidth(w int) { h.Width = w }

// View renders "CarePath  [1 Chat]  2 History".
func (h *Header) View() string {
	parts := []string{h.theme.Brand.Render(h.Title)}
	for i, tab := range h.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tab)
		if i == h.Active {
			parts = append(parts, h.theme.TabActive.Render(label))
		} else {
			parts = append(parts, h.theme.Tab.Render(label))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Center, parts...)

	w := h.Width
	if w < lipgloss.Width(line) {
		w = lipgloss.Width(line)
	}
	return h.theme.Header.Width(w).Render(line)
}

// Height is the number of rows View occupies.
func (h *Header) Height() int {
	return strings.Count(h.View(), "\n") + 1
}
