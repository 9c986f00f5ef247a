// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the CarePath packages.
//
// # Key Functions
//
// Text:
//   - Truncate: rune-safe cut with a trailing ellipsis
//   - FitWidth: display-width aware cut for table cells
//   - SingleLine: collapse newlines and runs of whitespace
//
// Files:
//   - AtomicWriteFile: crash-safe writes (temp file, fsync, rename)
//
// # Usage
//
//	cell := util.Truncate(message, 100)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
