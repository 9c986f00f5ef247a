// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands of carepath.
//
// The TUI is the default command. Everything else runs once and exits:
//
//	cmd, args := cli.Parse(os.Args[1:])
//	if cmd == cli.CmdTUI {
//	    // start the bubbletea program
//	}
//	err := cli.Run(cmd, args, cli.NewEnv(cfg))
//	os.Exit(cli.GetExitCode(err))
//
// # Commands
//
//   - ask: submit one query to the inference service
//   - history: list, show and export chat logs from the data service
//   - status: probe both services
//   - config: show, get and set configuration keys
//   - journal: browse the local record of answered queries
//
// All commands accept --json and then print a single JSONResponse.
package cli
