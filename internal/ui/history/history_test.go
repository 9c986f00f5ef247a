// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepath/carepath-tui/internal/api"
	"github.com/carepath/carepath-tui/internal/apitest"
	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/ui/components"
	"github.com/carepath/carepath-tui/internal/ui/styles"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newServer(t *testing.T, n int) (*apitest.Server, *api.Client) {
	t.Helper()
	srv := apitest.New(apitest.SampleLogs(n, base)...)
	t.Cleanup(srv.Close)
	client := api.NewClient(api.Config{DBAPIURL: srv.URL, ChatAPIURL: srv.URL, Timeout: 5 * time.Second})
	return srv, client
}

func newModel(t *testing.T, loader Loader, opts Options) Model {
	t.Helper()
	if opts.PageSize == 0 {
		opts.PageSize = 10
	}
	return New(styles.Plain(), loader, opts)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return out, cmd
}

// settle runs the pending page load to completion.
func settle(t *testing.T, m Model) Model {
	t.Helper()
	require.True(t, m.Loading(), "no load in flight")
	m, _ = update(t, m, m.fetchCmd(m.Pagination().Offset)())
	return m
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return update(t, m, msg)
}

func TestFirstPage(t *testing.T) {
	srv, client := newServer(t, 25)
	m := newModel(t, client, Options{})

	require.True(t, m.Loading())
	assert.Contains(t, m.View(), "Loading chat history...")

	m = settle(t, m)

	assert.False(t, m.Loading())
	assert.Len(t, m.Items(), 10)
	assert.Equal(t, 25, m.Pagination().Total)
	assert.Equal(t, 3, m.Pagination().TotalPages())
	view := m.View()
	assert.Contains(t, view, "Showing 1 to 10 of 25 results")
	assert.Contains(t, view, "Page 1 of 3")
	assert.Contains(t, srv.ListQueries()[0], "skip=0")
	assert.Contains(t, srv.ListQueries()[0], "limit=10")
}

func TestPaging(t *testing.T) {
	_, client := newServer(t, 25)
	m := settle(t, newModel(t, client, Options{}))

	m, _ = press(t, m, "p")
	assert.False(t, m.Loading(), "previous is disabled on page 1")

	m, cmd := press(t, m, "n")
	require.NotNil(t, cmd)
	m = settle(t, m)
	assert.Equal(t, 2, m.Pagination().CurrentPage())

	m, _ = press(t, m, "n")
	m = settle(t, m)
	assert.Equal(t, 20, m.Pagination().Offset)
	assert.Len(t, m.Items(), 5)
	assert.False(t, m.Pagination().HasNext())
	assert.True(t, m.Pagination().HasPrev())
	assert.Contains(t, m.View(), "Showing 21 to 25 of 25 results")

	m, _ = press(t, m, "n")
	assert.False(t, m.Loading(), "next is disabled on the last page")

	m, _ = press(t, m, "p")
	m = settle(t, m)
	assert.Equal(t, 10, m.Pagination().Offset)
}

func TestPaging_IgnoredWhileLoading(t *testing.T) {
	_, client := newServer(t, 25)
	m := newModel(t, client, Options{})

	m, cmd := press(t, m, "n")

	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.Pagination().Offset)
}

func TestSinglePageHidesControls(t *testing.T) {
	_, client := newServer(t, 5)
	m := settle(t, newModel(t, client, Options{}))

	view := m.View()
	assert.NotContains(t, view, "Page 1 of")
	assert.NotContains(t, view, "Showing")
	assert.Contains(t, view, "P000001")
}

func TestEmptyState(t *testing.T) {
	_, client := newServer(t, 0)
	m := settle(t, newModel(t, client, Options{}))

	view := m.View()
	assert.Contains(t, view, EmptyTitle)
	assert.Contains(t, view, EmptyHint)
}

func TestErrorAndRetry(t *testing.T) {
	srv, client := newServer(t, 12)
	srv.Fail(apitest.RouteListLogs, http.StatusInternalServerError, "database unavailable")
	m := settle(t, newModel(t, client, Options{}))

	assert.Equal(t, "Failed to fetch chat logs: 500 Internal Server Error\ndatabase unavailable", m.Err())
	view := m.View()
	assert.Contains(t, view, "Failed to fetch chat logs: 500")
	assert.Contains(t, view, "Press r to retry.")

	srv.Recover()
	m, cmd := press(t, m, "r")
	require.NotNil(t, cmd)
	m = settle(t, m)

	assert.Empty(t, m.Err())
	assert.Len(t, m.Items(), 10)
	assert.Len(t, srv.ListQueries(), 2, "retry repeats the same load")
}

func TestStaleInstanceDropped(t *testing.T) {
	_, client := newServer(t, 3)
	old := newModel(t, client, Options{})
	m := newModel(t, client, Options{})
	require.NotEqual(t, old.Instance(), m.Instance())

	m, _ = update(t, m, old.fetchCmd(0)())

	assert.True(t, m.Loading())
	assert.Empty(t, m.Items())
}

func TestShrunkResultFallsBackToLastPage(t *testing.T) {
	_, client := newServer(t, 12)
	m := newModel(t, client, Options{})
	m = settle(t, m)
	m, _ = press(t, m, "n")

	// Pretend the server now reports fewer rows than the offset.
	m, cmd := update(t, m, PageLoadedMsg{
		Instance: m.Instance(),
		Offset:   10,
		Page:     &model.ChatLogPage{Items: []model.ChatLog{}, Total: 8},
	})
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())
	assert.Equal(t, 0, m.Pagination().Offset)
}

// shortLoader reports a total it cannot serve past the first page.
type shortLoader struct {
	skips []int
}

func (l *shortLoader) FetchChatLogs(_ context.Context, req api.PageRequest) (*model.ChatLogPage, error) {
	l.skips = append(l.skips, req.Skip)
	page := &model.ChatLogPage{Total: 25, Skip: req.Skip, Limit: req.Limit}
	if req.Skip == 0 {
		page.Items = apitest.SampleLogs(10, base)
	}
	return page, nil
}

func (l *shortLoader) GetChatLog(context.Context, string) (*model.ChatLog, error) {
	return nil, &api.NetworkError{Op: "fetch chat log", StatusCode: http.StatusNotFound, Status: "404 Not Found"}
}

func TestEmptyPageBeforeLastIsNotReloaded(t *testing.T) {
	loader := &shortLoader{}
	m := settle(t, newModel(t, loader, Options{}))
	m, cmd := press(t, m, "n")
	require.NotNil(t, cmd)
	m = settle(t, m)

	assert.False(t, m.Loading(), "an empty page is accepted when it is not past the last page")
	assert.Equal(t, []int{0, 10}, loader.skips)
	assert.Equal(t, 10, m.Pagination().Offset)
	assert.Contains(t, m.View(), EmptyTitle)
}

func TestRow(t *testing.T) {
	long := strings.Repeat("a", 101)
	exact := strings.Repeat("b", 100)
	at := model.NewTimestamp(base)

	entry := &model.ChatLog{
		PatientMRN: "P000007",
		StartedAt:  at,
		Messages: []model.LogMessage{
			{Role: model.RoleUser, Content: long},
			{Role: model.RoleAssistant, Content: exact},
		},
	}
	row := Row(entry)
	assert.Equal(t, "P000007", row[0])
	assert.Equal(t, at.Local(), row[1])
	assert.Equal(t, strings.Repeat("a", 100)+"...", row[2])
	assert.Equal(t, exact, row[3])

	onlyUser := &model.ChatLog{Messages: []model.LogMessage{{Role: model.RoleUser, Content: "hi"}}}
	assert.Equal(t, NoResponse, Row(onlyUser)[3])

	none := &model.ChatLog{}
	assert.Equal(t, NoMessage, Row(none)[2])
	assert.Equal(t, NoResponse, Row(none)[3])

	multiline := &model.ChatLog{Messages: []model.LogMessage{{Role: model.RoleUser, Content: "line one\nline two"}}}
	assert.Equal(t, "line one line two", Row(multiline)[2])
}

func TestFilter(t *testing.T) {
	srv, client := newServer(t, 60)
	m := settle(t, newModel(t, client, Options{}))

	m, _ = press(t, m, "/")
	require.True(t, m.CapturesInput())
	m, _ = press(t, m, "P000002")
	m, _ = press(t, m, "enter")

	assert.False(t, m.CapturesInput())
	assert.Equal(t, "P000002", m.Filter())
	assert.Contains(t, m.View(), "Loading chat history for P000002...")
	m = settle(t, m)
	require.Len(t, m.Items(), 2)
	for _, it := range m.Items() {
		assert.Equal(t, "P000002", it.PatientMRN)
	}
	assert.Contains(t, srv.ListQueries()[1], "patient_mrn=P000002")

	m, _ = press(t, m, "esc")
	assert.Equal(t, "", m.Filter())
	assert.Contains(t, m.View(), "Loading chat history...")
	m = settle(t, m)
	assert.Equal(t, 60, m.Pagination().Total)
}

func TestFilter_FromOptions(t *testing.T) {
	_, client := newServer(t, 60)
	m := settle(t, newModel(t, client, Options{PatientMRN: " P000003 "}))

	assert.Equal(t, "P000003", m.Filter())
	assert.Equal(t, 2, m.Pagination().Total)
}

func TestFilter_EscCancels(t *testing.T) {
	_, client := newServer(t, 5)
	m := settle(t, newModel(t, client, Options{}))

	m, _ = press(t, m, "/")
	m, _ = press(t, m, "P000009")
	m, _ = press(t, m, "esc")

	assert.False(t, m.CapturesInput())
	assert.Equal(t, "", m.Filter())
	assert.False(t, m.Loading())
}

func TestDetail(t *testing.T) {
	_, client := newServer(t, 3)
	m := settle(t, newModel(t, client, Options{}))

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	require.True(t, m.InDetail())

	m, _ = update(t, m, cmd())
	view := m.View()
	assert.Contains(t, view, "Conversation conv-001")
	assert.Contains(t, view, "Question 1 about symptoms")
	assert.NotContains(t, view, "Refreshing...")

	m, _ = press(t, m, "esc")
	assert.False(t, m.InDetail())
	assert.Contains(t, m.View(), "Chat History")
}

func TestDetail_RefreshFailureKeepsRow(t *testing.T) {
	srv, client := newServer(t, 3)
	m := settle(t, newModel(t, client, Options{}))
	srv.Fail(apitest.RouteGetLog, http.StatusNotFound, "Chat log with conversation ID conv-001 not found")

	m, cmd := press(t, m, "enter")
	m, _ = update(t, m, cmd())

	view := m.View()
	assert.Contains(t, view, "Failed to fetch chat log: 404 Not Found")
	assert.Contains(t, view, "Question 1 about symptoms")
}

func TestDetail_StaleResultDropped(t *testing.T) {
	_, client := newServer(t, 3)
	m := settle(t, newModel(t, client, Options{}))

	m, cmd := press(t, m, "enter")
	msg := cmd()
	m, _ = press(t, m, "esc")
	m, _ = update(t, m, msg)

	assert.False(t, m.InDetail())
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	_, client := newServer(t, 3)
	m := settle(t, newModel(t, client, Options{ExportDir: dir}))

	_, cmd := press(t, m, "s")
	require.NotNil(t, cmd)
	msg, ok := cmd().(components.StatusMsg)
	require.True(t, ok)
	require.False(t, msg.Error, msg.Text)
	require.True(t, strings.HasPrefix(msg.Text, "Exported to "))

	path := strings.TrimPrefix(msg.Text, "Exported to ")
	assert.True(t, strings.HasSuffix(path, ".md"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Conversation with P000001")

	_, cmd = press(t, m, "S")
	msg = cmd().(components.StatusMsg)
	require.False(t, msg.Error, msg.Text)
	assert.True(t, strings.HasSuffix(msg.Text, ".json"))
}
