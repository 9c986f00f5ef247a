// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/carepath/carepath-tui/internal/ui/components"
)

// Empty-state text.
const (
	EmptyTitle = "No chat history found."
	EmptyHint  = "Start a chat to see conversations here."
)

// View implements tea.Model.
func (m Model) View() string {
	if m.mode == modeDetail {
		return m.viewDetail()
	}

	sections := []string{m.viewTitle()}
	if m.mode == modeFilter {
		sections = append(sections, m.input.View())
	}
	sections = append(sections, "", m.viewBody())

	m.help.ShowAll = m.showHelp
	sections = append(sections, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewTitle() string {
	title := m.theme.Title.Render("Chat History")
	if m.filter != "" {
		title += m.theme.Muted.Render("  patient ") + m.theme.Patient.Render(m.filter)
	}
	return title
}

func (m Model) viewBody() string {
	switch {
	case m.loading:
		return m.spinner.View()

	case m.errText != "":
		box := components.NewErrorBox(m.theme, "Error")
		box.Message = m.errText
		box.Hint = "Press r to retry."
		box.Width = m.width - 2
		return box.View()

	case len(m.items) == 0:
		return m.theme.Empty.Render(EmptyTitle + "\n" + EmptyHint)
	}

	out := m.table.View()
	if m.pager.ShowControls() {
		out += "\n\n" + m.viewPager()
	}
	return out
}

// viewPager renders the result range and the Previous/Next controls.
func (m Model) viewPager() string {
	from, to := m.pager.Range(len(m.items))
	summary := m.theme.Muted.Render(fmt.Sprintf("Showing %d to %d of %d results", from, to, m.pager.Total))

	prev := m.theme.PagerOff.Render("← Previous")
	if m.pager.HasPrev() {
		prev = m.theme.Pager.Render("← Previous")
	}
	next := m.theme.PagerOff.Render("Next →")
	if m.pager.HasNext() {
		next = m.theme.Pager.Render("Next →")
	}
	page := m.theme.Muted.Render(fmt.Sprintf("Page %d of %d", m.pager.CurrentPage(), m.pager.TotalPages()))

	return summary + "    " + strings.Join([]string{prev, page, next}, "  ")
}

func (m Model) viewDetail() string {
	d := m.detail
	header := m.theme.Title.Render("Conversation " + d.Key())
	meta := m.theme.Muted.Render("Patient ") + m.theme.Patient.Render(d.PatientMRN) +
		m.theme.Muted.Render("  started "+d.StartedAt.Local()) +
		m.theme.Muted.Render("  "+components.Plural(len(d.Messages), "message", "messages"))

	sections := []string{header, m.theme.Muted.Render(d.Title(m.width - 4)), meta}
	if m.detailLoading {
		sections = append(sections, m.theme.Muted.Render("Refreshing..."))
	}
	if m.detailErr != "" {
		sections = append(sections, m.theme.Warning.Render(strings.ReplaceAll(m.detailErr, "\n", ": ")))
	}
	sections = append(sections, "", m.viewport.View(), "", m.help.View(detailHelp{m.keys}))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
