// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepath/carepath-tui/internal/api"
	"github.com/carepath/carepath-tui/internal/apitest"
	"github.com/carepath/carepath-tui/internal/config"
	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/session"
	"github.com/carepath/carepath-tui/internal/ui/chat"
	"github.com/carepath/carepath-tui/internal/ui/components"
	"github.com/carepath/carepath-tui/internal/ui/history"
	"github.com/carepath/carepath-tui/internal/ui/styles"
)

func newShell(t *testing.T, logs int) (*Model, *apitest.Server) {
	t.Helper()
	srv := apitest.New(apitest.SampleLogs(logs, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))...)
	t.Cleanup(srv.Close)
	client := api.NewClient(api.Config{DBAPIURL: srv.URL, ChatAPIURL: srv.URL, Timeout: 5 * time.Second})

	opts := Options{
		Chat:    chat.Options{Tick: 100 * time.Millisecond},
		History: history.Options{PageSize: 10},
	}
	return New(styles.Plain(), session.New(model.DefaultPatientMRN), client, opts), srv
}

func send(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func key(k string) tea.KeyMsg {
	switch k {
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// pageLoads runs cmd, expanding batches, and returns the history page
// results it produced. Only call it on commands that do not sleep.
func pageLoads(cmd tea.Cmd) []history.PageLoadedMsg {
	if cmd == nil {
		return nil
	}
	var out []history.PageLoadedMsg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, pageLoads(c)...)
		}
	case history.PageLoadedMsg:
		out = append(out, msg)
	}
	return out
}

func TestNew_StartsInChat(t *testing.T) {
	m, _ := newShell(t, 0)

	assert.Equal(t, ViewChat, m.Active())
	_, ok := m.History()
	assert.False(t, ok)
	view := m.View()
	assert.Contains(t, view, "CarePath")
	assert.Contains(t, view, "Patient MRN")
	assert.Contains(t, view, "○ data")
}

func TestToggle_KeepsChatState(t *testing.T) {
	m, _ := newShell(t, 3)

	send(m, key("back pain"))
	send(m, key("ctrl+t"))
	require.Equal(t, ViewHistory, m.Active())
	assert.Contains(t, m.View(), "Chat History")

	send(m, key("ctrl+t"))
	require.Equal(t, ViewChat, m.Active())
	assert.Equal(t, "back pain", m.Chat().Form().Query)
	assert.Contains(t, m.View(), "back pain")
}

func TestHistory_LoadsOnActivation(t *testing.T) {
	m, _ := newShell(t, 12)

	loads := pageLoads(send(m, key("ctrl+t")))
	require.Len(t, loads, 1)
	send(m, loads[0])

	h, ok := m.History()
	require.True(t, ok)
	assert.False(t, h.Loading())
	assert.Len(t, h.Items(), 10)
	assert.Contains(t, m.View(), "Showing 1 to 10 of 12 results")
}

func TestHistory_RebuiltOnEachActivation(t *testing.T) {
	m, _ := newShell(t, 12)

	first := pageLoads(send(m, key("ctrl+t")))
	require.Len(t, first, 1)
	h1, _ := m.History()

	send(m, key("1"))
	require.Equal(t, ViewChat, m.Active())
	send(m, key("ctrl+t"))
	h2, _ := m.History()
	require.NotEqual(t, h1.Instance(), h2.Instance())

	// The first instance's result is dropped by the new one.
	send(m, first[0])
	h2, _ = m.History()
	assert.True(t, h2.Loading())
}

func TestHistory_KeysStayInFilter(t *testing.T) {
	m, _ := newShell(t, 3)
	loads := pageLoads(send(m, key("ctrl+t")))
	send(m, loads[0])

	send(m, key("/"))
	send(m, key("1"))
	assert.Equal(t, ViewHistory, m.Active(), "digits go to the filter field")

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	send(m, key("tab"))
	assert.Equal(t, ViewChat, m.Active())
}

func TestChatResultDeliveredWhileHistoryShown(t *testing.T) {
	m, _ := newShell(t, 0)
	send(m, key("fever"))
	send(m, key("ctrl+s"))
	require.Equal(t, session.StateSubmitting, m.Chat().Form().State())

	send(m, key("ctrl+t"))
	send(m, chat.ElapsedTickMsg{Run: 1})
	send(m, chat.SubmitResultMsg{Run: 1, Response: &model.ChatResponse{Response: "Rest."}})

	form := m.Chat().Form()
	assert.Equal(t, session.StateSucceeded, form.State())
	assert.Equal(t, 100, form.ElapsedMs)
	assert.Equal(t, ViewHistory, m.Active())
}

func TestHealth(t *testing.T) {
	m, _ := newShell(t, 0)

	msg := m.checkHealth()()
	send(m, msg)
	assert.Contains(t, m.View(), "● data")
	assert.Contains(t, m.View(), "● inference")

	send(m, HealthMsg{Reports: []api.HealthReport{
		{Service: api.ServiceData, Status: &model.HealthStatus{Status: "healthy"}},
		{Service: api.ServiceInference, Err: errors.New("connection refused")},
	}})
	assert.Contains(t, m.View(), "● data")
	assert.Contains(t, m.View(), "✗ inference")
}

func TestStatusMessages(t *testing.T) {
	m, _ := newShell(t, 0)

	cmd := send(m, components.StatusMsg{Text: "Exported to a.md"})
	require.NotNil(t, cmd)
	assert.Equal(t, "Exported to a.md", m.StatusText())

	send(m, components.StatusMsg{Text: "disk full", Error: true})
	assert.Equal(t, "✗ disk full", m.StatusText())

	send(m, statusClearMsg{seq: 1})
	assert.Equal(t, "✗ disk full", m.StatusText(), "an older timer does not clear a newer message")

	send(m, statusClearMsg{seq: 2})
	assert.Empty(t, m.StatusText())
}

func TestQuit(t *testing.T) {
	m, _ := newShell(t, 3)

	send(m, key("q"))
	assert.Equal(t, "q", m.Chat().Form().Query, "q is text in the chat view")

	cmd := send(m, key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	send(m, key("ctrl+t"))
	cmd = send(m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestResize(t *testing.T) {
	m, _ := newShell(t, 0)
	send(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.header.Width)
	assert.Equal(t, 120, m.status.Width)
	assert.Equal(t, 118, m.contentSize().Width)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.TickMs = 250
	cfg.History.PageSize = 25
	cfg.UI.ExportDir = "/tmp/exports"
	cfg.UI.RenderMarkdown = false

	opts := OptionsFromConfig(cfg)

	assert.Equal(t, 250*time.Millisecond, opts.Chat.Tick)
	assert.Equal(t, cfg.Chat.LLMModes, opts.Chat.Modes)
	assert.False(t, opts.Chat.RenderMarkdown)
	assert.Equal(t, 25, opts.History.PageSize)
	assert.Equal(t, "/tmp/exports", opts.History.ExportDir)
	assert.Equal(t, ViewChat, opts.Start)
}
