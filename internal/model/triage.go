// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// DefaultPatientMRN is the demo patient the chat form starts with. The
// sample data set covers P000001 through P000050.
const DefaultPatientMRN = "P000123"

// DefaultLLMModes are the inference backends the chat service understands.
// The empty mode, listed separately in the UI, lets the server pick.
var DefaultLLMModes = []string{
	"mock",
	"gguf",
	"qwen",
	"Qwen3-4B-Thinking-2507",
	"hf-qwen2.5",
}

// TriageRequest is the body of POST /triage. A nil LLMMode is left out of the
// JSON entirely so the server applies its default; a non-nil pointer, even to
// an empty string, is always sent.
type TriageRequest struct {
	PatientMRN string  `json:"patient_mrn"`
	Query      string  `json:"query"`
	LLMMode    *string `json:"llm_mode,omitempty"`
}

// ChatResponse is the inference service's answer. It is immutable once
// received and owned by the chat form until replaced or cleared.
type ChatResponse struct {
	TraceID         string   `json:"trace_id"`
	PatientMRN      string   `json:"patient_mrn"`
	Query           string   `json:"query"`
	LLMMode         string   `json:"llm_mode"`
	Response        string   `json:"response"`
	InferenceTimeMs *float64 `json:"inference_time_ms,omitempty"`
	ConversationID  string   `json:"conversation_id,omitempty"`
}

// InferenceTime returns the server-reported inference duration.
func (r *ChatResponse) InferenceTime() (time.Duration, bool) {
	if r == nil || r.InferenceTimeMs == nil {
		return 0, false
	}
	return time.Duration(*r.InferenceTimeMs * float64(time.Millisecond)), true
}

// HealthStatus is the body of GET /health on either service.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Healthy reports whether the service declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy" || h.Status == "ok"
}
