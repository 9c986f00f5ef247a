// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepath/carepath-tui/internal/apitest"
	"github.com/carepath/carepath-tui/internal/config"
)

// =============================================================================
// PARSING
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
	}{
		{name: "no args starts the TUI", argv: nil, wantCmd: CmdTUI},
		{
			name:    "tui on history",
			argv:    []string{"tui", "--history"},
			wantCmd: CmdTUI,
			check:   func(t *testing.T, a Args) { assert.True(t, a.History) },
		},
		{
			name:    "ask joins the query",
			argv:    []string{"ask", "-p", "P000001", "sore", "throat"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "sore throat", a.Query)
				assert.Equal(t, []string{"-p", "P000001", "sore", "throat"}, a.Raw)
			},
		},
		{
			name:    "global flags anywhere",
			argv:    []string{"history", "--json", "show", "conv-1", "--db-url=http://db:8001"},
			wantCmd: CmdHistory,
			check: func(t *testing.T, a Args) {
				assert.True(t, a.JSON)
				assert.Equal(t, "show", a.Subcommand)
				assert.Equal(t, "http://db:8001", a.DBURL)
			},
		},
		{
			name:    "chat url with space",
			argv:    []string{"--chat-url", "http://llm:8000", "status"},
			wantCmd: CmdStatus,
			check:   func(t *testing.T, a Args) { assert.Equal(t, "http://llm:8000", a.ChatURL) },
		},
		{name: "status alias", argv: []string{"s"}, wantCmd: CmdStatus},
		{name: "version flag", argv: []string{"--version"}, wantCmd: CmdVersion},
		{
			name:    "unknown command",
			argv:    []string{"frobnicate"},
			wantCmd: CmdHelp,
			check:   func(t *testing.T, a Args) { assert.Equal(t, "frobnicate", a.Subcommand) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			assert.Equal(t, tt.wantCmd, cmd)
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"Export", "conv-1", "--format", "json", "-o=out", "--confirm", "extra"})

	assert.Equal(t, "export", p.Subcommand())
	assert.Equal(t, "conv-1", p.Positional(1))
	assert.Equal(t, "json", p.Flag("format"))
	assert.Equal(t, "out", p.Flag("output"), "-o is an alias of --output")
	assert.True(t, p.BoolFlag("confirm"))
	assert.Equal(t, "extra", p.Positional(2), "boolean flags never swallow the next argument")
	assert.Equal(t, 3, p.PositionalCount())
	assert.Equal(t, "", p.Positional(9))
}

func TestArgParser_DoubleDash(t *testing.T) {
	p := NewArgParser([]string{"-p", "P000002", "--", "-5", "degrees"})

	assert.Equal(t, "P000002", p.Flag("patient"))
	assert.Equal(t, "-5 degrees", JoinPositionalArgs(p, 0))
}

func TestArgParser_FlagInt(t *testing.T) {
	p := NewArgParser([]string{"--skip", "20", "--limit", "ten", "--page"})

	n, err := p.FlagInt("skip", 0)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = p.FlagInt("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = p.FlagInt("limit", 0)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	_, err = p.FlagInt("page", 0)
	assert.ErrorContains(t, err, "requires a value")
}

// =============================================================================
// COMMANDS
// =============================================================================

type harness struct {
	srv *apitest.Server
	env *Env
	out *bytes.Buffer
	err *bytes.Buffer
}

func newHarness(t *testing.T, logs int) *harness {
	t.Helper()
	t.Setenv("CAREPATH_HOME", t.TempDir())

	srv := apitest.New(apitest.SampleLogs(logs, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))...)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.DBAPIURL = srv.URL
	cfg.API.ChatAPIURL = srv.URL
	cfg.API.TimeoutSecs = 5

	// Each reading of the clock advances 1.5s.
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	h := &harness{srv: srv, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.env = &Env{
		Out:    h.out,
		Err:    h.err,
		Config: cfg,
		Now: func() time.Time {
			clock = clock.Add(1500 * time.Millisecond)
			return clock
		},
	}
	return h
}

func (h *harness) run(argv ...string) error {
	h.out.Reset()
	h.err.Reset()
	cmd, args := Parse(argv)
	return Run(cmd, args, h.env)
}

func (h *harness) jsonOut(t *testing.T) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &resp), h.out.String())
	return resp
}

func TestAsk(t *testing.T) {
	h := newHarness(t, 0)

	require.NoError(t, h.run("ask", "-p", "P000007", "persistent", "cough"))

	out := h.out.String()
	assert.Contains(t, out, "**Triage note:** persistent cough")
	assert.Contains(t, out, "Conversation ID")
	assert.Contains(t, out, "mock")
	assert.Contains(t, out, "43ms")
	assert.Contains(t, out, "1s")
	assert.Contains(t, h.err.String(), "P000007")

	bodies := h.srv.TriageBodies()
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"patient_mrn":"P000007","query":"persistent cough"}`, string(bodies[0]))
}

func TestAsk_DefaultPatientAndMode(t *testing.T) {
	h := newHarness(t, 0)
	h.env.Config.Chat.DefaultPatientMRN = "P000042"

	require.NoError(t, h.run("ask", "--mode", h.env.Config.Chat.LLMModes[0], "dizzy"))

	bodies := h.srv.TriageBodies()
	require.Len(t, bodies, 1)
	var req map[string]interface{}
	require.NoError(t, json.Unmarshal(bodies[0], &req))
	assert.Equal(t, "P000042", req["patient_mrn"])
	assert.Equal(t, h.env.Config.Chat.LLMModes[0], req["llm_mode"])
}

func TestAsk_JSON(t *testing.T) {
	h := newHarness(t, 0)

	require.NoError(t, h.run("--json", "ask", "fever"))

	resp := h.jsonOut(t)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "ask", resp["command"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "fever", data["query"])
	assert.Equal(t, "mock", data["llm_mode"])
	assert.Equal(t, float64(1500), data["elapsed_ms"])
	assert.Empty(t, h.err.String(), "JSON mode keeps stderr quiet")
}

func TestAsk_BlankQuery(t *testing.T) {
	h := newHarness(t, 0)

	err := h.run("ask", "-p", "P000001", "   ")

	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Contains(t, h.err.String(), "missing argument: question")
	assert.Empty(t, h.srv.TriageBodies())
}

func TestAsk_UnknownMode(t *testing.T) {
	h := newHarness(t, 0)

	err := h.run("ask", "--mode", "quantum", "headache")

	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Contains(t, h.err.String(), "unknown LLM mode")
	assert.Empty(t, h.srv.TriageBodies())
}

func TestAsk_ServerError(t *testing.T) {
	h := newHarness(t, 0)
	h.srv.Fail(apitest.RouteTriage, http.StatusInternalServerError, "model offline")

	err := h.run("ask", "rash")

	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Contains(t, h.err.String(), "Failed to submit chat: 500 Internal Server Error")
	assert.Contains(t, h.err.String(), "model offline")

	err = h.run("--json", "ask", "rash")
	require.Error(t, err)
	resp := h.jsonOut(t)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, float64(500), resp["status"])
	assert.Contains(t, resp["error"], "model offline")
}

func TestAsk_WritesJournal(t *testing.T) {
	h := newHarness(t, 0)
	h.env.Config.Journal.Enabled = true
	h.env.Config.Journal.Path = filepath.Join(t.TempDir(), "journal.db")

	require.NoError(t, h.run("--json", "ask", "-p", "P000003", "ear ache"))
	id, _ := h.jsonOut(t)["data"].(map[string]interface{})["journal_id"].(string)
	require.NotEmpty(t, id)

	require.NoError(t, h.run("--json", "ask", "-p", "P000004", "sore throat"))
	other, _ := h.jsonOut(t)["data"].(map[string]interface{})["journal_id"].(string)
	require.NotEmpty(t, other)

	require.NoError(t, h.run("journal", "list"))
	assert.Contains(t, h.out.String(), "P000003")
	assert.Contains(t, h.out.String(), "ear ache")
	assert.Contains(t, h.out.String(), "2 of 2 entries shown")

	require.NoError(t, h.run("journal", "list", "--patient", "P000004"))
	assert.Contains(t, h.out.String(), "1 of 2 entries shown")

	require.NoError(t, h.run("journal", "show", id[:8]))
	assert.Contains(t, h.out.String(), "ear ache")
	assert.Contains(t, h.out.String(), "Triage note")

	require.NoError(t, h.run("journal", "delete", other[:8]))
	assert.Contains(t, h.out.String(), "Deleted "+other)
	assert.Contains(t, h.out.String(), "(1 entry left)")

	err := h.run("journal", "show", other)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	err = h.run("journal", "delete", other)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	err = h.run("journal", "delete")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	require.NoError(t, h.run("--json", "journal", "list"))
	data := h.jsonOut(t)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])

	err = h.run("journal", "clear")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	require.NoError(t, h.run("journal", "clear", "--confirm"))
	assert.Contains(t, h.out.String(), "Removed 1 entry")

	err = h.run("journal", "show", id)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestJournal_EmptyWithoutFile(t *testing.T) {
	h := newHarness(t, 0)

	require.NoError(t, h.run("journal"))

	assert.Contains(t, h.out.String(), "No journal entries.")
	path, err := h.env.Config.JournalPath()
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "listing does not create the database")
}

func TestHistoryList(t *testing.T) {
	h := newHarness(t, 25)

	require.NoError(t, h.run("history", "--limit", "10"))
	out := h.out.String()
	assert.Contains(t, out, "Chat History")
	assert.Contains(t, out, "Showing 1 to 10 of 25 results")
	assert.Contains(t, out, "(page 1 of 3)")
	assert.Contains(t, out, "carepath history --skip 10 --limit 10")

	require.NoError(t, h.run("history", "list", "--skip", "20", "--limit", "10"))
	out = h.out.String()
	assert.Contains(t, out, "Showing 21 to 25 of 25 results")
	assert.NotContains(t, out, "Next page")

	queries := h.srv.ListQueries()
	require.Len(t, queries, 2)
	assert.Contains(t, queries[1], "skip=20")
}

func TestHistoryList_Patient(t *testing.T) {
	h := newHarness(t, 60)

	require.NoError(t, h.run("--json", "history", "-p", "P000002"))

	resp := h.jsonOut(t)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(1), data["total_pages"])
	assert.Contains(t, h.srv.ListQueries()[0], "patient_mrn=P000002")
}

func TestHistoryList_Empty(t *testing.T) {
	h := newHarness(t, 0)

	require.NoError(t, h.run("history"))

	assert.Contains(t, h.out.String(), "No chat history found.")
	assert.Contains(t, h.out.String(), "Start a chat to see conversations here.")
}

func TestHistoryList_BadLimit(t *testing.T) {
	h := newHarness(t, 5)

	for _, limit := range []string{"0", "101", "abc"} {
		err := h.run("history", "--limit", limit)
		assert.Equal(t, ExitUsageError, GetExitCode(err), "limit %s", limit)
	}
	assert.Empty(t, h.srv.ListQueries())
}

func TestHistoryShow(t *testing.T) {
	h := newHarness(t, 3)

	require.NoError(t, h.run("history", "show", "conv-002"))
	assert.Contains(t, h.out.String(), "Question 2 about symptoms")
	assert.Contains(t, h.out.String(), "Answer 2")

	h.srv.Fail(apitest.RouteGetLog, http.StatusNotFound, "Chat log with conversation ID nope not found")
	err := h.run("history", "show", "nope")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	assert.Contains(t, h.err.String(), "Failed to fetch chat log: 404 Not Found")

	err = h.run("history", "show")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHistoryExport(t *testing.T) {
	h := newHarness(t, 3)
	dir := t.TempDir()

	require.NoError(t, h.run("--json", "history", "export", "conv-001", "--format", "json", "-o", dir))

	data := h.jsonOut(t)["data"].(map[string]interface{})
	path := data["path"].(string)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".json"))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "conv-001")

	require.NoError(t, h.run("history", "export", "conv-001", "--output", dir))
	assert.Contains(t, h.out.String(), "Exported to")
	assert.Contains(t, h.out.String(), ".md")

	err = h.run("history", "export", "conv-001", "--format", "pdf")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestStatus(t *testing.T) {
	h := newHarness(t, 0)

	require.NoError(t, h.run("status"))
	out := h.out.String()
	assert.Equal(t, 2, strings.Count(out, "[OK]"))
	assert.Contains(t, out, "data")
	assert.Contains(t, out, "inference")

	h.srv.Fail(apitest.RouteHealth, http.StatusServiceUnavailable, "maintenance")
	err := h.run("--json", "status")
	assert.Equal(t, ExitNetworkError, GetExitCode(err))

	resp := h.jsonOut(t)
	assert.Equal(t, false, resp["success"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, false, data["healthy"])
	assert.Len(t, data["services"], 2)
}

func TestConfig_SetAndGet(t *testing.T) {
	h := newHarness(t, 0)

	require.NoError(t, h.run("config", "set", "history.page_size", "25"))
	assert.Contains(t, h.out.String(), "history.page_size = 25")

	path, err := config.ConfigPathTOML()
	require.NoError(t, err)
	saved, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 25, saved.History.PageSize)

	require.NoError(t, h.run("config", "set", "chat.llm_modes", "fast, careful"))
	saved, err = config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"fast", "careful"}, saved.Chat.LLMModes)

	require.NoError(t, h.run("config", "get", "api.db_api_url"))
	assert.Equal(t, h.srv.URL+"\n", h.out.String())

	require.NoError(t, h.run("config", "path"))
	assert.Equal(t, path+"\n", h.out.String())
}

func TestConfig_Errors(t *testing.T) {
	h := newHarness(t, 0)

	err := h.run("config", "set", "history.page_size", "500")
	assert.Equal(t, ExitConfigError, GetExitCode(err))
	assert.Contains(t, h.err.String(), "history.page_size")

	err = h.run("config", "get", "nope.key")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = h.run("config", "set", "history.page_size")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestVersionAndHelp(t *testing.T) {
	h := newHarness(t, 0)

	require.NoError(t, h.run("--json", "version"))
	data := h.jsonOut(t)["data"].(map[string]interface{})
	assert.Equal(t, Version, data["version"])

	require.NoError(t, h.run("help"))
	assert.Contains(t, h.out.String(), "carepath ask")

	err := h.run("frobnicate")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Contains(t, h.err.String(), "unknown command: frobnicate")
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	ApplyOverrides(cfg, Args{DBURL: "http://db.internal:9000/", ChatURL: ""})

	assert.Equal(t, "http://db.internal:9000", cfg.API.DBAPIURL)
	assert.Equal(t, config.DefaultChatAPIURL, cfg.API.ChatAPIURL)
}
