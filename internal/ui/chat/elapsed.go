// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTick is the elapsed counter resolution.
const DefaultTick = 100 * time.Millisecond

// FormatElapsed renders milliseconds as whole seconds: "Ys" below a minute,
// "Xm Ys" from a minute on. Fractions are dropped, never rounded up.
func FormatElapsed(ms int) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	if secs >= 60 {
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%ds", secs)
}

// elapsedTickCmd schedules the next tick for run.
func elapsedTickCmd(run uint64, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return ElapsedTickMsg{Run: run}
	})
}
