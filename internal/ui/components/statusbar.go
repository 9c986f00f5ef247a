// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/carepath/carepath-tui/internal/ui/styles"
)

// HealthState is the last known state of a backend service.
type HealthState int

const (
	HealthUnknown HealthState = iota
	HealthUp
	HealthDown
)

// ServiceHealth is one entry of the status bar's health section.
type ServiceHealth struct {
	Name  string
	State HealthState
}

// StatusBar is the bottom line: service health on the left, a transient
// message in the middle and the session summary on the right.
type StatusBar struct {
	Services []ServiceHealth
	Message  string
	Right    string
	Width    int
	theme    *styles.Theme
}

// NewStatusBar creates a status bar listing the given services as unknown.
func NewStatusBar(theme *styles.Theme, services ...string) *StatusBar {
	sb := &StatusBar{Width: 80, theme: theme}
	for _, name := range services {
		sb.Services = append(sb.Services, ServiceHealth{Name: name})
	}
	return sb
}

// SetHealth records the state of the named service.
func (s *StatusBar) SetHealth(name string, state HealthState) {
	for i := range s.Services {
		if s.Services[i].Name == name {
			s.Services[i].State = state
			return
		}
	}
	s.Services = append(s.Services, ServiceHealth{Name: name, State: state})
}

// View renders the bar padded to Width.
func (s *StatusBar) View() string {
	var left []string
	for _, svc := range s.Services {
		left = append(left, s.indicator(svc))
	}
	leftStr := strings.Join(left, "  ")

	right := s.theme.StatusKey.Render(s.Right)
	middle := s.theme.StatusValue.Render(s.Message)

	inner := s.Width - 2
	gap := inner - lipgloss.Width(leftStr) - lipgloss.Width(middle) - lipgloss.Width(right)
	if gap < 2 {
		// Narrow terminal: drop the right-hand summary first.
		right = ""
		gap = inner - lipgloss.Width(leftStr) - lipgloss.Width(middle)
	}
	if gap < 2 {
		gap = 2
	}
	half := gap / 2
	line := leftStr + strings.Repeat(" ", half) + middle + strings.Repeat(" ", gap-half) + right
	return s.theme.StatusBar.Width(s.Width).Render(line)
}

func (s *StatusBar) indicator(svc ServiceHealth) string {
	switch svc.State {
	case HealthUp:
		return s.theme.Success.Render("● " + svc.Name)
	case HealthDown:
		return s.theme.ErrorTitle.Render("✗ " + svc.Name)
	default:
		return s.theme.StatusKey.Render("○ " + svc.Name)
	}
}
