// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Teal is the brand colour: header, active tab, focused field.
var Teal = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}

// Indigo marks assistant text and selected rows.
var Indigo = lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#A5B4FC"}

// Sky marks the patient and informational hints.
var Sky = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#7DD3FC"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

var (
	Green = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	Red   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	Amber = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
)

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

var (
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#F1F5F9", Dark: "#0F172A"}
	Border     = lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#334155"}
	BorderDim  = lipgloss.AdaptiveColor{Light: "#E2E8F0", Dark: "#1E293B"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#0F172A", Dark: "#E2E8F0"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94A3B8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#94A3B8", Dark: "#64748B"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0F172A"}
)

// RenderSuccess renders text in the success colour with a check mark.
func RenderSuccess(text string) string {
	return lipgloss.NewStyle().Foreground(Green).Render("✓ " + text)
}

// RenderError renders text in the error colour with a cross.
func RenderError(text string) string {
	return lipgloss.NewStyle().Foreground(Red).Render("✗ " + text)
}

// RenderWarning renders text in the warning colour.
func RenderWarning(text string) string {
	return lipgloss.NewStyle().Foreground(Amber).Render("! " + text)
}
