// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/carepath/carepath-tui/internal/ui/styles"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.in); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlural(t *testing.T) {
	if got := Plural(1, "result", "results"); got != "1 result" {
		t.Errorf("Plural(1) = %q", got)
	}
	if got := Plural(2500, "result", "results"); got != "2,500 results" {
		t.Errorf("Plural(2500) = %q", got)
	}
}

func TestHeader_View(t *testing.T) {
	h := NewHeader(styles.Plain(), "Chat", "History")
	h.Active = 1
	h.SetWidth(60)

	view := h.View()
	for _, want := range []string{"CarePath", "1 Chat", "2 History"} {
		if !strings.Contains(view, want) {
			t.Errorf("header missing %q:\n%s", want, view)
		}
	}
	if h.Height() < 1 {
		t.Errorf("Height() = %d", h.Height())
	}
}

func TestStatusBar_Health(t *testing.T) {
	sb := NewStatusBar(styles.Plain(), "data", "inference")
	sb.Width = 80
	sb.SetHealth("data", HealthUp)
	sb.SetHealth("inference", HealthDown)
	sb.Message = "Copied"
	sb.Right = "session abcd1234"

	view := sb.View()
	for _, want := range []string{"● data", "✗ inference", "Copied", "session abcd1234"} {
		if !strings.Contains(view, want) {
			t.Errorf("status bar missing %q:\n%s", want, view)
		}
	}
}

func TestStatusBar_NarrowDropsRight(t *testing.T) {
	sb := NewStatusBar(styles.Plain(), "data")
	sb.Width = 20
	sb.Right = "a very long session summary"

	if strings.Contains(sb.View(), "session summary") {
		t.Error("narrow status bar should drop the right-hand summary")
	}
}

func TestErrorBox(t *testing.T) {
	box := NewErrorBox(styles.Plain(), "Could not load history")
	if box.View() != "" {
		t.Error("empty error box should render nothing")
	}

	box.Message = "Failed to fetch chat logs: 500 Internal Server Error\ndatabase unavailable"
	box.Hint = "Press r to retry"
	view := box.View()
	for _, want := range []string{"Could not load history", "500 Internal Server Error", "database unavailable", "Press r to retry"} {
		if !strings.Contains(view, want) {
			t.Errorf("error box missing %q:\n%s", want, view)
		}
	}
}

func TestSpinner_InactiveIgnoresTicks(t *testing.T) {
	s := NewSpinner(styles.Plain(), "Loading history")
	if s.View() != "" {
		t.Error("inactive spinner should render nothing")
	}

	s, cmd := s.Update(spinner.TickMsg{})
	if cmd != nil {
		t.Error("inactive spinner should not re-arm")
	}

	if s.Start() == nil {
		t.Fatal("Start() should return a tick")
	}
	if !strings.Contains(s.View(), "Loading history") {
		t.Errorf("active spinner view = %q", s.View())
	}
	s.Stop()
	if s.Active() {
		t.Error("Stop() should deactivate")
	}
}

func TestStatusCommands(t *testing.T) {
	if got := Status("saved")(); got != (StatusMsg{Text: "saved"}) {
		t.Errorf("Status() = %#v", got)
	}
	if got := StatusError("disk full")(); got != (StatusMsg{Text: "disk full", Error: true}) {
		t.Errorf("StatusError() = %#v", got)
	}
}
