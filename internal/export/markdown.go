// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/carepath/carepath-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a chat log as Markdown with YAML front matter.
type MarkdownExporter struct {
	options *Options
	now     func() time.Time
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts, now: time.Now}
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }
func (e *MarkdownExporter) MimeType() string      { return "text/markdown" }

// Export renders log.
func (e *MarkdownExporter) Export(log *model.ChatLog) ([]byte, error) {
	if err := validate(log); err != nil {
		return nil, err
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "conversation_id: %s\n", escapeYAML(log.ConversationID))
		fmt.Fprintf(&sb, "patient_mrn: %s\n", escapeYAML(log.PatientMRN))
		fmt.Fprintf(&sb, "channel: %s\n", escapeYAML(log.Channel))
		fmt.Fprintf(&sb, "started_at: %s\n", escapeYAML(log.StartedAt.Raw))
		if !log.EndedAt.IsZero() {
			fmt.Fprintf(&sb, "ended_at: %s\n", escapeYAML(log.EndedAt.Raw))
		}
		fmt.Fprintf(&sb, "messages: %d\n", len(log.Messages))
		fmt.Fprintf(&sb, "exported: %s\n", e.now().Format(time.RFC3339))
		sb.WriteString("generator: carepath-tui\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# Conversation with %s\n\n", escapeMarkdown(log.PatientMRN))

	if e.options.IncludeMetadata {
		sb.WriteString("## Details\n\n")
		fmt.Fprintf(&sb, "- **Patient**: %s\n", escapeMarkdown(log.PatientMRN))
		fmt.Fprintf(&sb, "- **Started**: %s\n", log.StartedAt.Local())
		if !log.EndedAt.IsZero() {
			fmt.Fprintf(&sb, "- **Ended**: %s\n", log.EndedAt.Local())
		}
		if log.Channel != "" {
			fmt.Fprintf(&sb, "- **Channel**: %s\n", escapeMarkdown(log.Channel))
		}
		if log.ConversationID != "" {
			fmt.Fprintf(&sb, "- **Conversation**: `%s`\n", log.ConversationID)
		}
		sb.WriteString("\n---\n\n")
	}

	for _, m := range log.Messages {
		fmt.Fprintf(&sb, "### %s", m.Role.DisplayName())
		if m.Timestamp.Valid() {
			fmt.Fprintf(&sb, " · %s", m.Timestamp.Local())
		}
		sb.WriteString("\n\n")
		// Content is already Markdown from the inference service.
		sb.WriteString(strings.TrimSpace(m.Content))
		sb.WriteString("\n\n")
		if m.ModelName != "" || m.LatencyMs > 0 {
			var meta []string
			if m.ModelName != "" {
				meta = append(meta, "model "+m.ModelName)
			}
			if m.LatencyMs > 0 {
				meta = append(meta, fmt.Sprintf("%.0f ms", m.LatencyMs))
			}
			fmt.Fprintf(&sb, "*%s*\n\n", strings.Join(meta, ", "))
		}
	}

	if e.options.IncludeRetrieval && len(log.RetrievalEvents) > 0 {
		sb.WriteString("## Retrieval\n\n")
		sb.WriteString("| Step | Query | Top K | Latency | Documents |\n")
		sb.WriteString("|---:|---|---:|---:|---|\n")
		for _, ev := range log.RetrievalEvents {
			docs := make([]string, 0, len(ev.Results))
			for _, r := range ev.Results {
				docs = append(docs, fmt.Sprintf("%s (%.2f)", r.DocID, r.Score))
			}
			fmt.Fprintf(&sb, "| %d | %s | %d | %.0f ms | %s |\n",
				ev.StepID, escapeTable(ev.Query), ev.TopK, ev.RetrievalLatencyMs, strings.Join(docs, ", "))
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// escapeYAML quotes values that YAML would otherwise misread.
func escapeYAML(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, ":#'\"{}[]|>&*!%@`\n") || strings.TrimSpace(s) != s {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func escapeMarkdown(s string) string {
	r := strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`)
	return r.Replace(s)
}

func escapeTable(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
