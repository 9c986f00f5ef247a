// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apitest

import (
	"fmt"
	"time"

	"github.com/carepath/carepath-tui/internal/model"
)

// SampleLogs builds n conversations cycling through the demo patients
// P000001..P000050, one minute apart starting at base.
func SampleLogs(n int, base time.Time) []model.ChatLog {
	logs := make([]model.ChatLog, 0, n)
	for i := 0; i < n; i++ {
		at := model.NewTimestamp(base.Add(time.Duration(i) * time.Minute))
		logs = append(logs, model.ChatLog{
			ID:             fmt.Sprintf("oid-%03d", i+1),
			ConversationID: fmt.Sprintf("conv-%03d", i+1),
			PatientMRN:     fmt.Sprintf("P%06d", i%50+1),
			Channel:        "api",
			StartedAt:      at,
			Messages: []model.LogMessage{
				{Role: model.RoleUser, Content: fmt.Sprintf("Question %d about symptoms", i+1), Timestamp: at},
				{Role: model.RoleAssistant, Content: fmt.Sprintf("Answer %d", i+1), Timestamp: at, ModelName: "mock", LatencyMs: 10},
			},
		})
	}
	return logs
}
