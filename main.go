// carepath - a terminal client for patient triage and chat history.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/carepath/carepath-tui/internal/cli"
	"github.com/carepath/carepath-tui/internal/config"
	"github.com/carepath/carepath-tui/internal/session"
	"github.com/carepath/carepath-tui/internal/storage"
	"github.com/carepath/carepath-tui/internal/ui/shell"
	"github.com/carepath/carepath-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	cfg := config.Global()
	cli.ApplyOverrides(cfg, args)

	if cmd == cli.CmdTUI {
		runTUI(cfg, args)
		return
	}

	if args.Verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}
	os.Exit(cli.GetExitCode(cli.Run(cmd, args, cli.NewEnv(cfg))))
}

func runTUI(cfg *config.Config, args cli.Args) {
	if f := openTUILog(cfg); f != nil {
		defer f.Close()
	}

	opts := shell.OptionsFromConfig(cfg)
	if args.History {
		opts.Start = shell.ViewHistory
	}

	if cfg.Journal.Enabled {
		if path, err := cfg.JournalPath(); err == nil {
			j, err := storage.OpenJournal(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: journal disabled: %v\n", err)
			} else {
				defer j.Close()
				opts.Chat.Journal = j
			}
		}
	}

	log.Printf("carepath %s starting: data=%s inference=%s", Version, cfg.API.DBAPIURL, cfg.API.ChatAPIURL)

	sess := session.New(cfg.Chat.DefaultPatientMRN)
	m := shell.New(styles.NewTheme(), sess, cli.ClientFromConfig(cfg), opts)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running carepath: %v\n", err)
		os.Exit(1)
	}
}

// openTUILog sends the log to the configured file. The alternate screen owns
// the terminal, so when the file cannot be opened logging is discarded.
func openTUILog(cfg *config.Config) io.Closer {
	log.SetOutput(io.Discard)
	path, err := cfg.LogPath()
	if err != nil || config.EnsureConfigDir() != nil {
		return nil
	}
	f, err := tea.LogToFile(path, "carepath")
	if err != nil {
		return nil
	}
	return f
}
