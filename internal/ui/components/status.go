// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import tea "github.com/charmbracelet/bubbletea"

// StatusMsg asks the shell to show a transient message in the status bar.
type StatusMsg struct {
	Text  string
	Error bool
}

// Status returns a command that emits a StatusMsg.
func Status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

// StatusError is Status for failures.
func StatusError(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text, Error: true} }
}
