// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import "github.com/carepath/carepath-tui/internal/model"

// PageLoadedMsg carries the result of one page load.
type PageLoadedMsg struct {
	Instance uint64
	Offset   int
	Page     *model.ChatLogPage
	Err      error
}

// DetailLoadedMsg carries a single conversation fetched for the detail pane.
type DetailLoadedMsg struct {
	Instance uint64
	Key      string
	Log      *model.ChatLog
	Err      error
}
