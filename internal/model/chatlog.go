// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the author of a LogMessage. The services only emit "user"
// and "assistant" today; other values are kept verbatim.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Patient"
	case RoleAssistant:
		return "Assistant"
	case "":
		return "Unknown"
	default:
		return string(r)
	}
}

// =============================================================================
// CHAT LOG
// =============================================================================

// LogMessage is one turn of a stored conversation.
type LogMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
	ModelName string    `json:"model_name,omitempty"`
	LatencyMs float64   `json:"latency_ms,omitempty"`
}

// RetrievalResult is a single document hit from a retrieval step.
type RetrievalResult struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// RetrievalEvent records one retrieval step the inference service ran while
// answering. It is shown in the detail view only.
type RetrievalEvent struct {
	StepID                 int               `json:"step_id"`
	Query                  string            `json:"query"`
	TopK                   int               `json:"top_k"`
	RetrievalLatencyMs     float64           `json:"retrieval_latency_ms"`
	TotalDocumentsSearched int               `json:"total_documents_searched"`
	Results                []RetrievalResult `json:"results"`
}

// ChatLog is one stored conversation. Instances are read-only once decoded;
// the history view replaces its whole page buffer on every load.
type ChatLog struct {
	ID              string           `json:"_id,omitempty"`
	ConversationID  string           `json:"conversation_id"`
	PatientMRN      string           `json:"patient_mrn"`
	Channel         string           `json:"channel"`
	StartedAt       Timestamp        `json:"started_at"`
	EndedAt         Timestamp        `json:"ended_at"`
	Messages        []LogMessage     `json:"messages"`
	RetrievalEvents []RetrievalEvent `json:"retrieval_events,omitempty"`
}

// FirstMessage returns the content of the first message with the given role.
// ok is false when the log holds no such message.
func (c *ChatLog) FirstMessage(role Role) (content string, ok bool) {
	for _, m := range c.Messages {
		if m.Role == role {
			return m.Content, true
		}
	}
	return "", false
}

// Key returns the identifier used to fetch the log on its own.
func (c *ChatLog) Key() string {
	if c.ConversationID != "" {
		return c.ConversationID
	}
	return c.ID
}

// Title builds a one-line label from the first user message.
func (c *ChatLog) Title(maxRunes int) string {
	q, ok := c.FirstMessage(RoleUser)
	if !ok {
		return c.Key()
	}
	q = strings.Join(strings.Fields(q), " ")
	runes := []rune(q)
	if maxRunes > 0 && len(runes) > maxRunes {
		return string(runes[:maxRunes]) + "..."
	}
	return q
}

// ChatLogPage is one page of chat logs as returned by GET /chat-logs.
type ChatLogPage struct {
	Items []ChatLog `json:"items"`
	Total int       `json:"total"`
	Skip  int       `json:"skip"`
	Limit int       `json:"limit"`
}
