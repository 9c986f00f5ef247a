// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/carepath/carepath-tui/internal/model"
)

// State is the chat form's position in its submission cycle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Submission is a snapshot of the form taken when a query is sent.
type Submission struct {
	Run        uint64
	PatientMRN string
	Query      string

	// Mode is nil when the server default is selected.
	Mode *string
}

// ChatForm is the chat form state shared across views.
type ChatForm struct {
	Query      string
	PatientMRN string

	// Mode is the selected LLM mode; empty means the server default.
	Mode string

	Response *model.ChatResponse
	Err      string

	// ElapsedMs counts up while submitting and freezes on completion.
	ElapsedMs int

	// LastSubmission is what was sent most recently, kept for the journal.
	LastSubmission Submission

	defaultMRN string
	state      State
	run        uint64

	submitted int
	succeeded int
	failed    int
}

// NewChatForm returns an idle form with the patient set to defaultMRN.
func NewChatForm(defaultMRN string) *ChatForm {
	if strings.TrimSpace(defaultMRN) == "" {
		defaultMRN = model.DefaultPatientMRN
	}
	return &ChatForm{PatientMRN: defaultMRN, defaultMRN: defaultMRN}
}

// State returns the current state.
func (f *ChatForm) State() State { return f.state }

// Submitting reports whether a query is in flight.
func (f *ChatForm) Submitting() bool { return f.state == StateSubmitting }

// Run returns the number of the most recent submission.
func (f *ChatForm) Run() uint64 { return f.run }

// DefaultMRN returns the patient the form resets to.
func (f *ChatForm) DefaultMRN() string { return f.defaultMRN }

// CanSubmit reports whether the submit action is enabled: nothing in flight
// and both the query and the patient non-blank after trimming.
func (f *ChatForm) CanSubmit() bool {
	return f.state != StateSubmitting &&
		strings.TrimSpace(f.Query) != "" &&
		strings.TrimSpace(f.PatientMRN) != ""
}

// Begin moves the form to Submitting and returns what to send. ok is false,
// and nothing changes, when CanSubmit is false.
func (f *ChatForm) Begin() (sub Submission, ok bool) {
	if !f.CanSubmit() {
		return Submission{}, false
	}
	f.run++
	f.state = StateSubmitting
	f.Err = ""
	f.ElapsedMs = 0
	f.submitted++

	sub = Submission{
		Run:        f.run,
		PatientMRN: strings.TrimSpace(f.PatientMRN),
		Query:      strings.TrimSpace(f.Query),
	}
	if f.Mode != "" {
		mode := f.Mode
		sub.Mode = &mode
	}
	f.LastSubmission = sub
	return sub, true
}

// Tick adds stepMs to the elapsed counter. It returns false, changing
// nothing, when run is not the active submission, which tells the caller
// to stop re-arming its timer.
func (f *ChatForm) Tick(run uint64, stepMs int) bool {
	if f.state != StateSubmitting || run != f.run {
		return false
	}
	f.ElapsedMs += stepMs
	return true
}

// Succeed stores resp and freezes the counter. Results of a stale run are
// ignored and false is returned.
func (f *ChatForm) Succeed(run uint64, resp *model.ChatResponse) bool {
	if f.state != StateSubmitting || run != f.run {
		return false
	}
	f.state = StateSucceeded
	f.Response = resp
	f.succeeded++
	return true
}

// Fail stores the error text and freezes the counter. The entered query and
// patient are kept so the user can retry.
func (f *ChatForm) Fail(run uint64, errText string) bool {
	if f.state != StateSubmitting || run != f.run {
		return false
	}
	f.state = StateFailed
	f.Err = errText
	f.failed++
	return true
}

// Reset is "new chat": every field returns to its initial value. The run
// counter keeps increasing so late results of the previous run are dropped.
func (f *ChatForm) Reset() {
	f.run++
	f.state = StateIdle
	f.Query = ""
	f.PatientMRN = f.defaultMRN
	f.Mode = ""
	f.Response = nil
	f.Err = ""
	f.ElapsedMs = 0
	f.LastSubmission = Submission{}
}

// Counts returns how many queries were sent, answered and failed.
func (f *ChatForm) Counts() (submitted, succeeded, failed int) {
	return f.submitted, f.succeeded, f.failed
}
