// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps an opt-in local journal of answered triage queries.
//
// The journal is a single SQLite file (pure Go driver, no cgo). It records
// what was asked, for which patient, and what came back, so past answers can
// be reviewed offline with "carepath journal". It never feeds the chat form:
// each run of the TUI still starts with an empty form.
//
// # Usage
//
//	j, err := storage.OpenJournal(path)
//	defer j.Close()
//
//	err = j.Save(ctx, storage.EntryFromResponse(sessionID, sub, resp, elapsedMs))
//	entries, err := j.List(ctx, storage.ListOptions{Limit: 20})
package storage
