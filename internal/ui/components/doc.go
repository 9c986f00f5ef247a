// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable pieces the CarePath views are
// assembled from: the tabbed header, the status bar, the loading spinner and
// the error box.
package components
