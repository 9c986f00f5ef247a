// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/carepath/carepath-tui/internal/model"
)

// PageRequest selects one page of chat logs.
type PageRequest struct {
	Skip  int
	Limit int

	// PatientMRN narrows the page to one patient when set.
	PatientMRN string
}

// FetchChatLogs loads one page: GET {db}/chat-logs?skip=&limit=.
func (c *Client) FetchChatLogs(ctx context.Context, req PageRequest) (*model.ChatLogPage, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(req.Skip))
	q.Set("limit", strconv.Itoa(req.Limit))
	if req.PatientMRN != "" {
		q.Set("patient_mrn", req.PatientMRN)
	}

	var page model.ChatLogPage
	if err := c.do(ctx, OpFetchChatLogs, http.MethodGet, c.dbURL+"/chat-logs?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []model.ChatLog{}
	}
	return &page, nil
}

// GetChatLog loads a single conversation by its conversation id.
func (c *Client) GetChatLog(ctx context.Context, conversationID string) (*model.ChatLog, error) {
	var entry model.ChatLog
	endpoint := c.dbURL + "/chat-logs/" + url.PathEscape(conversationID)
	if err := c.do(ctx, OpFetchChatLog, http.MethodGet, endpoint, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
