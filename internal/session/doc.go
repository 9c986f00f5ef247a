// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the state that lives for one run of the application.
//
// The shell creates one Session at startup and hands it to every view. The
// chat form's fields, its submission state machine and the elapsed counter
// all live in Session.Chat, so switching views never loses them. Nothing in
// this package is persisted.
//
// # Chat form states
//
//	Idle ──submit──▶ Submitting ──ok──▶ Succeeded
//	                     │                  │
//	                     └──error──▶ Failed ┴──new chat──▶ Idle
//
// Every submission gets a run number. Results and timer ticks carry the run
// they belong to and are ignored once the form has moved on.
package session
