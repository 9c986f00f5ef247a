// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// PAGINATION TESTS
// =============================================================================

func TestPagination_PagesOfTen(t *testing.T) {
	tests := []struct {
		offset   int
		page     int
		hasPrev  bool
		hasNext  bool
		from, to int
		rows     int
	}{
		{offset: 0, page: 1, hasPrev: false, hasNext: true, rows: 10, from: 1, to: 10},
		{offset: 10, page: 2, hasPrev: true, hasNext: true, rows: 10, from: 11, to: 20},
		{offset: 20, page: 3, hasPrev: true, hasNext: false, rows: 5, from: 21, to: 25},
	}

	for _, tt := range tests {
		p := Pagination{Offset: tt.offset, PageSize: 10, Total: 25}
		assert.Equal(t, 3, p.TotalPages())
		assert.Equal(t, tt.page, p.CurrentPage(), "offset %d", tt.offset)
		assert.Equal(t, tt.hasPrev, p.HasPrev(), "offset %d prev", tt.offset)
		assert.Equal(t, tt.hasNext, p.HasNext(), "offset %d next", tt.offset)
		from, to := p.Range(tt.rows)
		assert.Equal(t, tt.from, from)
		assert.Equal(t, tt.to, to)
	}
}

func TestPagination_Stepping(t *testing.T) {
	p := NewPagination(10)
	p.Total = 25

	p = p.Prev()
	assert.Equal(t, 0, p.Offset, "prev on first page is a no-op")

	p = p.Next().Next()
	assert.Equal(t, 20, p.Offset)

	p = p.Next()
	assert.Equal(t, 20, p.Offset, "next on last page is a no-op")

	p = p.Prev()
	assert.Equal(t, 10, p.Offset)
}

func TestPagination_ControlsHiddenForSinglePage(t *testing.T) {
	assert.False(t, Pagination{PageSize: 10, Total: 0}.ShowControls())
	assert.False(t, Pagination{PageSize: 10, Total: 10}.ShowControls())
	assert.True(t, Pagination{PageSize: 10, Total: 11}.ShowControls())
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, DefaultPageSize, ClampPageSize(-5))
	assert.Equal(t, 1, ClampPageSize(1))
	assert.Equal(t, MaxPageSize, ClampPageSize(500))
}

// =============================================================================
// CHAT LOG TESTS
// =============================================================================

const sampleLog = `{
  "_id": "65f0c0ffee",
  "conversation_id": "conv-1",
  "patient_mrn": "P000007",
  "channel": "api",
  "started_at": "2025-03-01T14:30:00.123456Z",
  "ended_at": null,
  "messages": [
    {"role": "user", "content": "I have a headache", "timestamp": "2025-03-01T14:30:00Z"},
    {"role": "assistant", "content": "How long has it lasted?", "timestamp": "2025-03-01T14:30:02Z",
     "model_name": "mock", "latency_ms": 12.5}
  ],
  "retrieval_events": []
}`

func TestChatLog_Decode(t *testing.T) {
	var log ChatLog
	require.NoError(t, json.Unmarshal([]byte(sampleLog), &log))

	assert.Equal(t, "65f0c0ffee", log.ID)
	assert.Equal(t, "conv-1", log.Key())
	assert.True(t, log.StartedAt.Valid())
	assert.Equal(t, 2025, log.StartedAt.Time.Year())
	assert.False(t, log.EndedAt.Valid())
	require.Len(t, log.Messages, 2)
	assert.Equal(t, 12.5, log.Messages[1].LatencyMs)

	user, ok := log.FirstMessage(RoleUser)
	assert.True(t, ok)
	assert.Equal(t, "I have a headache", user)

	reply, ok := log.FirstMessage(RoleAssistant)
	assert.True(t, ok)
	assert.Equal(t, "How long has it lasted?", reply)
}

func TestChatLog_FirstMessageMissing(t *testing.T) {
	log := ChatLog{Messages: []LogMessage{{Role: RoleUser, Content: "hello"}}}
	_, ok := log.FirstMessage(RoleAssistant)
	assert.False(t, ok)
}

func TestChatLog_Title(t *testing.T) {
	log := ChatLog{
		ConversationID: "conv-9",
		Messages:       []LogMessage{{Role: RoleUser, Content: "chest pain\n  since  morning"}},
	}
	assert.Equal(t, "chest pain since morning", log.Title(0))
	assert.Equal(t, "chest...", log.Title(5))

	empty := ChatLog{ConversationID: "conv-10"}
	assert.Equal(t, "conv-10", empty.Title(20))
}

func TestTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{"2025-03-01T14:30:00Z", true},
		{"2025-03-01T14:30:00.5+02:00", true},
		{"2025-03-01T14:30:00.123456", true},
		{"2025-03-01 14:30:00", true},
		{"yesterday", false},
		{"", false},
	}
	for _, tt := range tests {
		ts := ParseTimestamp(tt.raw)
		assert.Equal(t, tt.valid, ts.Valid(), tt.raw)
		assert.Equal(t, tt.raw, ts.Raw)
	}
}

func TestTimestamp_LocalFallsBackToRaw(t *testing.T) {
	assert.Equal(t, "not a date", ParseTimestamp("not a date").Local())

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, at.Local().Format(DisplayLayout), NewTimestamp(at).Local())
}

// =============================================================================
// TRIAGE TESTS
// =============================================================================

func TestTriageRequest_ModeOmission(t *testing.T) {
	body, err := json.Marshal(TriageRequest{PatientMRN: "P000123", Query: "cough"})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "llm_mode")

	empty := ""
	body, err = json.Marshal(TriageRequest{PatientMRN: "P000123", Query: "cough", LLMMode: &empty})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"llm_mode":""`)
}

func TestChatResponse_InferenceTime(t *testing.T) {
	var r ChatResponse
	require.NoError(t, json.Unmarshal([]byte(`{"response":"ok","inference_time_ms":1500.5}`), &r))
	d, ok := r.InferenceTime()
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond+500*time.Microsecond, d)

	var bare ChatResponse
	_, ok = bare.InferenceTime()
	assert.False(t, ok)
}
