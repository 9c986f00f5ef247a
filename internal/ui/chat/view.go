// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/carepath/carepath-tui/internal/session"
	"github.com/carepath/carepath-tui/internal/ui/components"
)

const demoHint = "Demo MRNs: P000001-P000050"

// View implements tea.Model.
func (m Model) View() string {
	form := m.sess.Chat

	sections := []string{
		m.renderField("Patient MRN", m.mrn.View(), m.focus == fieldMRN),
		m.theme.Muted.Render(demoHint),
		"",
		m.renderField("Your Question", m.query.View(), m.focus == fieldQuery),
		m.renderMode(),
		"",
		m.renderActions(),
	}

	switch form.State() {
	case session.StateFailed:
		box := components.NewErrorBox(m.theme, "Error")
		box.Message = form.Err
		box.Hint = "Your question was kept. Press ctrl+s to retry."
		box.Width = m.width - 2
		sections = append(sections, "", box.View())
	case session.StateSucceeded:
		sections = append(sections, "", m.renderResponseSection())
	}

	m.help.ShowAll = m.showHelp
	sections = append(sections, "", m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderField(label, input string, focused bool) string {
	labelStyle, box := m.theme.Label, m.theme.Field
	if focused && !m.sess.Chat.Submitting() {
		labelStyle, box = m.theme.LabelFocused, m.theme.FieldFocused
	}
	return labelStyle.Render(label) + "\n" + box.Render(input)
}

func (m Model) renderMode() string {
	mode := m.sess.Chat.Mode
	return m.theme.Label.Render("LLM Mode ") +
		m.theme.ModeChip.Render(modeLabel(&mode)) +
		m.theme.Muted.Render("  (ctrl+o to change)")
}

func (m Model) renderActions() string {
	form := m.sess.Chat

	var parts []string
	switch {
	case form.Submitting():
		parts = append(parts,
			m.theme.ButtonOff.Render("Submitting..."),
			m.spinner.View(),
			m.theme.Timer.Render(FormatElapsed(form.ElapsedMs)),
		)
	case form.CanSubmit():
		parts = append(parts, m.theme.Button.Render("Submit"))
	default:
		parts = append(parts, m.theme.ButtonOff.Render("Submit"))
	}

	if form.Response != nil && !form.Submitting() {
		parts = append(parts, m.theme.ButtonActive.Render("New Chat"))
	}
	if form.State() == session.StateSucceeded || form.State() == session.StateFailed {
		parts = append(parts, m.theme.Muted.Render("Total time: "+FormatElapsed(form.ElapsedMs)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderResponseSection() string {
	resp := m.sess.Chat.Response
	if resp == nil {
		return ""
	}

	lines := []string{
		m.theme.Title.Render("Response"),
		m.theme.ResponseBox.Render(m.viewport.View()),
	}

	meta := []string{
		"Conversation ID: " + orDash(resp.ConversationID),
		"Trace ID: " + orDash(resp.TraceID),
		"LLM Mode: " + orDash(resp.LLMMode),
	}
	if d, ok := resp.InferenceTime(); ok {
		meta = append(meta, fmt.Sprintf("Inference: %s", d.Round(time.Millisecond)))
	}
	lines = append(lines, m.theme.Muted.Render(strings.Join(meta, "  ")))
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
