// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell is the top-level Bubble Tea model. It owns the header, the
// status bar, and the two views, and it routes messages between them.
//
// The chat view lives for the whole program so a submission keeps running
// while the history view is shown. The history view is rebuilt each time it
// is opened.
package shell
