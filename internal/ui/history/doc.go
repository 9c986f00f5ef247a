// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides the chat-log browser view.
//
// The view loads one page of logs from the data service at a time and shows
// it as a table with Previous/Next paging, an optional patient filter and a
// detail pane for a single conversation. A failed load replaces the table
// with the error and a retry key.
//
// The shell builds a fresh Model every time the view is activated. Each
// Model has its own instance number and drops any load result that was
// started by another instance.
package history
