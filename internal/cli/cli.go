// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for carepath.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/carepath/carepath-tui/internal/api"
	"github.com/carepath/carepath-tui/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdHistory
	CmdStatus
	CmdConfig
	CmdJournal
	CmdVersion
	CmdHelp
)

// String returns the name used on the command line and in JSON output.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdHistory:
		return "history"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdJournal:
		return "journal"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON    bool
	Verbose bool
	DBURL   string // overrides api.db_api_url for this run
	ChatURL string // overrides api.chat_api_url for this run
	History bool   // tui: open on the history view

	// Command-specific
	Subcommand string
	Query      string

	// Raw holds the arguments after the command name, global flags removed.
	Raw []string
}

const usageText = `carepath - patient triage assistant

Submit health questions for a patient to the inference service and browse
the conversation history kept by the data service.

Usage:
  carepath                          Start the TUI (default)
  carepath tui [--history]          Start the TUI, optionally on the history view
  carepath ask "question"           Submit one query and print the answer
  carepath history [list]           List chat logs, newest first
  carepath history show <id>        Show one conversation
  carepath history export <id>      Export a conversation to a file
  carepath status, s                Check both services
  carepath config [show|path|get|set]
  carepath journal [list|show|delete|clear]
  carepath version
  carepath help

Ask Options:
  -p, --patient MRN     Patient MRN (default from chat.default_patient_mrn)
  -m, --mode MODE       LLM mode; omit to use the server default

History Options:
  --skip N              Rows to skip (default 0)
  --limit N             Page size, 1-100 (default from history.page_size)
  -p, --patient MRN     Only this patient's conversations
  --format md|json      Export format (default md)
  -o, --output DIR      Export directory (default from ui.export_dir)

Journal Options:
  --limit N             Show at most N entries
  -p, --patient MRN     Only this patient's entries
  --confirm             Required by "journal clear"

Global Options:
  --json                Print a JSON response instead of text
  -v, --verbose         Log requests to stderr
  --db-url URL          Data service base URL for this run
  --chat-url URL        Inference service base URL for this run

Environment:
  CAREPATH_DB_API_URL, CAREPATH_CHAT_API_URL, CAREPATH_PATIENT_MRN,
  CAREPATH_PAGE_SIZE, CAREPATH_JOURNAL, CAREPATH_HOME. A .env file in the
  working directory is read as well.

Examples:
  carepath ask -p P000001 "I have had a headache for three days"
  carepath history --patient P000001 --limit 5
  carepath history export conv-001 --format json -o ./exports
  carepath config set history.page_size 20

Version: %s
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "carepath version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments (without the program name) and returns
// the command and its args. Unknown commands fall through to help.
func Parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		for _, a := range remaining {
			if a == "--history" {
				parsedArgs.History = true
			}
		}
		return CmdTUI, parsedArgs

	case "ask", "a":
		p := NewArgParser(remaining)
		parsedArgs.Query = strings.TrimSpace(JoinPositionalArgs(p, 0))
		return CmdAsk, parsedArgs

	case "history", "h":
		parsedArgs.Subcommand = NewArgParser(remaining).Subcommand()
		return CmdHistory, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config":
		parsedArgs.Subcommand = NewArgParser(remaining).Subcommand()
		return CmdConfig, parsedArgs

	case "journal", "j":
		parsedArgs.Subcommand = NewArgParser(remaining).Subcommand()
		return CmdJournal, parsedArgs

	case "version", "--version", "-V":
		return CmdVersion, parsedArgs

	case "help", "--help", "-h":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Subcommand = cmd
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--json":
			parsedArgs.JSON = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--db-url", "--chat-url":
			if i+1 < len(args) {
				i++
				if arg == "--db-url" {
					parsedArgs.DBURL = args[i]
				} else {
					parsedArgs.ChatURL = args[i]
				}
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--db-url="):
				parsedArgs.DBURL = strings.TrimPrefix(arg, "--db-url=")
			case strings.HasPrefix(arg, "--chat-url="):
				parsedArgs.ChatURL = strings.TrimPrefix(arg, "--chat-url=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Env is what a command handler runs against. Tests swap the writers and
// point Config at a fake server.
type Env struct {
	Out    io.Writer
	Err    io.Writer
	Config *config.Config

	// TTY enables markdown rendering of answers and conversations.
	TTY bool

	// Now is the clock used for elapsed times.
	Now func() time.Time

	client *api.Client
}

// NewEnv returns an Env writing to the process's stdout and stderr.
func NewEnv(cfg *config.Config) *Env {
	return &Env{
		Out:    os.Stdout,
		Err:    os.Stderr,
		Config: cfg,
		TTY:    IsStdoutTTY(),
		Now:    time.Now,
	}
}

// Client returns the API client for env's configuration, creating it on
// first use.
func (e *Env) Client() *api.Client {
	if e.client == nil {
		e.client = ClientFromConfig(e.Config)
	}
	return e.client
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// ClientFromConfig builds an API client from the api section.
func ClientFromConfig(cfg *config.Config) *api.Client {
	return api.NewClient(api.Config{
		DBAPIURL:          cfg.API.DBAPIURL,
		ChatAPIURL:        cfg.API.ChatAPIURL,
		Timeout:           time.Duration(cfg.API.TimeoutSecs) * time.Second,
		UserAgent:         cfg.API.UserAgent + "/" + Version,
		RequestsPerSecond: cfg.API.MaxRequestsPerSecond,
	})
}

// ApplyOverrides copies per-run flags into cfg.
func ApplyOverrides(cfg *config.Config, args Args) {
	if args.DBURL != "" {
		cfg.API.DBAPIURL = config.NormalizeBaseURL(args.DBURL)
	}
	if args.ChatURL != "" {
		cfg.API.ChatAPIURL = config.NormalizeBaseURL(args.ChatURL)
	}
}

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// Run executes a non-interactive command. Errors have already been reported
// on env when Run returns; the caller only maps them to an exit code.
func Run(cmd Command, args Args, env *Env) error {
	var err error
	switch cmd {
	case CmdAsk:
		err = HandleAsk(env, args)
	case CmdHistory:
		err = HandleHistory(env, args)
	case CmdStatus:
		err = HandleStatus(env, args)
	case CmdConfig:
		err = HandleConfig(env, args)
	case CmdJournal:
		err = HandleJournal(env, args)
	case CmdVersion:
		return HandleVersion(env, args)
	case CmdTUI:
		err = &UsageError{Message: "the TUI is started by main, not Run"}
	default:
		if args.Subcommand != "" {
			err = &UsageError{Message: fmt.Sprintf("unknown command: %s", args.Subcommand), Hint: "Run 'carepath help' for usage."}
			break
		}
		PrintUsage(env.Out)
		return nil
	}

	var reported *silentError
	if err != nil && !errors.As(err, &reported) {
		DisplayError(env, cmd.String(), err, args.JSON)
	}
	return err
}

// VersionData is the JSON payload of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// HandleVersion handles the "version" command.
func HandleVersion(env *Env, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Write(env.Out)
	}
	PrintVersion(env.Out)
	return nil
}
