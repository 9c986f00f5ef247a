// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the two CarePath backend services.
//
// The data service stores chat logs; the inference service answers triage
// queries. Every non-2xx response and every transport failure comes back as
// a *NetworkError, the only error kind callers need to distinguish. There
// are no retries.
//
// # Usage
//
//	client := api.NewClient(api.Config{
//	    DBAPIURL:   "http://localhost:8001",
//	    ChatAPIURL: "http://localhost:8000",
//	})
//
//	page, err := client.FetchChatLogs(ctx, api.PageRequest{Skip: 0, Limit: 10})
//	resp, err := client.SubmitChat(ctx, "P000123", "I have a fever", nil)
package api
