// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders content with glamour when env is a terminal and
// markdown is enabled. Any renderer failure falls back to the raw text.
func renderMarkdown(env *Env, content string) string {
	if !env.TTY || !env.Config.UI.RenderMarkdown {
		return content
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth()),
	)
	if err != nil {
		log.Printf("markdown renderer unavailable: %v", err)
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		log.Printf("markdown render failed: %v", err)
		return content
	}
	return strings.TrimRight(out, "\n")
}
