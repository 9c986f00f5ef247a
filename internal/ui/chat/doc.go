// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the triage chat view.
//
// The view edits the session's ChatForm: a patient MRN field, a multi-line
// query, and an LLM mode selector. Submitting sends the query to the
// inference service while a spinner and an elapsed-time counter run; the
// answer is rendered as Markdown underneath the form.
//
// The form state belongs to session.Session, not to this view, so the shell
// can switch tabs freely. The elapsed counter is a tea.Tick chain tagged
// with the submission's run number; a tick for any other run is dropped and
// the chain ends.
package chat
