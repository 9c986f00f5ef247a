// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds every style the views render with.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// FRAME
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	Brand       lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style

	// ==========================================================================
	// FORM
	// ==========================================================================

	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	Field        lipgloss.Style
	FieldFocused lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	ButtonOff    lipgloss.Style
	ModeChip     lipgloss.Style

	// ==========================================================================
	// CONTENT
	// ==========================================================================

	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Muted        lipgloss.Style
	Patient      lipgloss.Style
	ResponseBox  lipgloss.Style
	Timer        lipgloss.Style
	Spinner      lipgloss.Style
	Empty        lipgloss.Style
	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style
	ErrorHint    lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style

	// ==========================================================================
	// TABLE
	// ==========================================================================

	TableHeader   lipgloss.Style
	TableCell     lipgloss.Style
	TableSelected lipgloss.Style
	Pager         lipgloss.Style
	PagerOff      lipgloss.Style
}

// NewTheme detects the terminal and builds every style.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// Plain returns a theme without terminal detection, for tests and pipes.
func Plain() *Theme {
	t := &Theme{IsDark: true, ColorProfile: termenv.Ascii}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Border)
	t.Brand = lipgloss.NewStyle().Bold(true).Foreground(Teal).PaddingRight(2)
	t.Tab = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().Foreground(TextMuted)
	t.StatusValue = lipgloss.NewStyle().Foreground(TextPrimary)

	t.Label = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true)
	t.LabelFocused = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.Field = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	t.FieldFocused = t.Field.Copy().BorderForeground(Teal)
	t.Button = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Bold(true).
		Padding(0, 2)
	t.ButtonActive = t.Button.Copy().Background(Indigo)
	t.ButtonOff = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BorderDim).
		Padding(0, 2)
	t.ModeChip = lipgloss.NewStyle().Foreground(Indigo).Bold(true)

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.Subtitle = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
	t.Patient = lipgloss.NewStyle().Foreground(Sky).Bold(true)
	t.ResponseBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(0, 1)
	t.Timer = lipgloss.NewStyle().Foreground(Amber)
	t.Spinner = lipgloss.NewStyle().Foreground(Teal)
	t.Empty = lipgloss.NewStyle().Foreground(TextMuted).Italic(true).Padding(1, 2)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Red).
		Padding(0, 1)
	t.ErrorTitle = lipgloss.NewStyle().Foreground(Red).Bold(true)
	t.ErrorMessage = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ErrorHint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.Success = lipgloss.NewStyle().Foreground(Green)
	t.Warning = lipgloss.NewStyle().Foreground(Amber)

	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Border)
	t.TableCell = lipgloss.NewStyle().Foreground(TextPrimary)
	t.TableSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true)
	t.Pager = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.PagerOff = lipgloss.NewStyle().Foreground(TextMuted)
}
