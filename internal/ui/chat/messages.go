// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/carepath/carepath-tui/internal/model"

// =============================================================================
// SUBMISSION MESSAGES
// =============================================================================

// SubmitResultMsg carries the outcome of one submission.
type SubmitResultMsg struct {
	Run      uint64
	Response *model.ChatResponse
	Err      error
}

// ElapsedTickMsg advances the elapsed counter of one submission.
type ElapsedTickMsg struct {
	Run uint64
}

// =============================================================================
// SIDE-EFFECT MESSAGES
// =============================================================================

// JournalSavedMsg reports the outcome of writing a journal entry.
type JournalSavedMsg struct {
	Err error
}

// CopiedMsg reports the outcome of a clipboard copy.
type CopiedMsg struct {
	Err error
}
