// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration management for CarePath.
//
// Configuration is read from ~/.carepath/config.toml (or config.json), then a
// .env file in the working directory, then CAREPATH_* environment variables.
// Anything left unset falls back to Default().
//
// # Key Types
//
//   - Config: root configuration
//   - APIConfig: service base URLs, timeout and client-side rate limit
//   - ChatConfig: default patient and the selectable LLM modes
//   - HistoryConfig: history page size
//   - JournalConfig: opt-in local journal
//   - UIConfig: rendering and log file
//
// # Usage
//
//	cfg := config.Global()
//	fmt.Println(cfg.API.DBAPIURL)
//
//	cfg.Set("history.page_size", "25")
//	config.Save(cfg)
package config
