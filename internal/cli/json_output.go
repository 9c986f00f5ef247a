// json_output.go - JSON output for scripting.
//
// Every command run with --json prints exactly one JSONResponse on stdout.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/carepath/carepath-tui/internal/api"
	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/storage"
)

// JSONResponse is the envelope shared by all commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Status is the HTTP status of a failed service call, when there was one.
	Status int `json:"status,omitempty"`

	// Timestamp is the RFC 3339 time the response was generated
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error response. Service failures carry
// the server's detail and status code.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := describe(err)
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Status:    api.StatusCode(err),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response, indented, to w.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// AskData is the payload of the ask command.
type AskData struct {
	*model.ChatResponse
	ElapsedMs int    `json:"elapsed_ms"`
	JournalID string `json:"journal_id,omitempty"`
}

// HistoryData is the payload of "history list".
type HistoryData struct {
	Items      []model.ChatLog `json:"items"`
	Total      int             `json:"total"`
	Skip       int             `json:"skip"`
	Limit      int             `json:"limit"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}

// ExportData is the payload of "history export".
type ExportData struct {
	ConversationID string `json:"conversation_id"`
	Format         string `json:"format"`
	Path           string `json:"path"`
}

// ServiceStatus is one service in the status payload.
type ServiceStatus struct {
	Service   string  `json:"service"`
	URL       string  `json:"url"`
	Healthy   bool    `json:"healthy"`
	Status    string  `json:"status,omitempty"`
	Version   string  `json:"version,omitempty"`
	LatencyMs float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

// StatusData is the payload of the status command.
type StatusData struct {
	Services []ServiceStatus `json:"services"`
	Healthy  bool            `json:"healthy"`
}

// JournalData is the payload of "journal list".
type JournalData struct {
	Path    string           `json:"path"`
	Total   int              `json:"total"`
	Entries []*storage.Entry `json:"entries"`
}
