// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the CarePath domain types shared by the API client,
// the TUI views, the journal and the exporters.
//
// # Key Types
//
//   - ChatLog: one stored conversation as returned by the data service
//   - LogMessage: a single turn inside a ChatLog
//   - ChatLogPage: one page of ChatLogs plus the total count
//   - ChatResponse: the inference service's answer to a triage query
//   - Pagination: offset/page-size arithmetic for the history view
//   - Timestamp: lenient ISO-8601 time that keeps the raw server text
//
// # Usage
//
//	p := model.NewPagination(10)
//	p.SetTotal(page.Total)
//	fmt.Printf("Page %d of %d\n", p.CurrentPage(), p.TotalPages())
//
//	first := log.FirstMessage(model.RoleUser)
package model
