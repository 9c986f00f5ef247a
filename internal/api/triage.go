// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/carepath/carepath-tui/internal/model"
)

// SubmitChat sends a triage query: POST {chat}/triage. A nil mode leaves
// llm_mode out of the body so the server uses its default.
func (c *Client) SubmitChat(ctx context.Context, patientMRN, query string, mode *string) (*model.ChatResponse, error) {
	body := model.TriageRequest{
		PatientMRN: patientMRN,
		Query:      query,
		LLMMode:    mode,
	}

	var resp model.ChatResponse
	if err := c.do(ctx, OpSubmitChat, http.MethodPost, c.chatURL+"/triage", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
