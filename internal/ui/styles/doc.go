// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles holds the CarePath colour palette and the lipgloss styles
// built from it. Colours are AdaptiveColor so light and dark terminals both
// read well; NewTheme detects the terminal profile once at startup.
package styles
