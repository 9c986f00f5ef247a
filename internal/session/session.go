// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is the application-session context passed to every view.
type Session struct {
	ID        string
	StartedAt time.Time
	Chat      *ChatForm
}

// New creates a session whose chat form defaults to defaultMRN.
func New(defaultMRN string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Chat:      NewChatForm(defaultMRN),
	}
}

// ShortID is the first eight characters of the ID, for status lines.
func (s *Session) ShortID() string {
	if len(s.ID) < 8 {
		return s.ID
	}
	return s.ID[:8]
}

// Uptime returns how long the session has been open.
func (s *Session) Uptime() time.Duration {
	return time.Since(s.StartedAt)
}

// Summary is a one-line description used in the status bar and the log.
func (s *Session) Summary() string {
	sent, ok, failed := s.Chat.Counts()
	return fmt.Sprintf("session %s: %d sent, %d answered, %d failed", s.ShortID(), sent, ok, failed)
}
