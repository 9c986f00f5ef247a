// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/carepath/carepath-tui/internal/ui/styles"
)

// Spinner is a loading indicator with a message. It only advances while
// active, so a stopped spinner lets its tick chain end.
type Spinner struct {
	spinner spinner.Model
	message string
	active  bool
	theme   *styles.Theme
}

// NewSpinner creates an inactive spinner using ASCII frames, which render
// the same on every terminal.
func NewSpinner(theme *styles.Theme, message string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner
	return Spinner{spinner: s, message: message, theme: theme}
}

// Start activates the spinner and returns the first tick.
func (s *Spinner) Start() tea.Cmd {
	s.active = true
	return s.spinner.Tick
}

// Stop deactivates the spinner; pending ticks are then ignored.
func (s *Spinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is running.
func (s Spinner) Active() bool { return s.active }

// SetMessage changes the text shown next to the frames.
func (s *Spinner) SetMessage(msg string) { s.message = msg }

// Update advances the animation on spinner ticks.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	if _, ok := msg.(spinner.TickMsg); !ok {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the frame and the message, or nothing when inactive.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	if s.message == "" {
		return s.spinner.View()
	}
	return s.spinner.View() + " " + s.theme.Muted.Render(s.message)
}
