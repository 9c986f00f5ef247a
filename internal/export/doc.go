// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat logs to files.
//
// Two formats are supported: Markdown (for reading or pasting into a note)
// and JSON (the data service's own shape, for tooling). Files are written
// atomically and named after the patient and the conversation start time.
//
// # Usage
//
//	exp, err := export.ForFormat("md", export.DefaultOptions())
//	path, err := export.ExportToFile(log, exp, opts)
package export
