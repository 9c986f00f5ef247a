// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/carepath/carepath-tui/internal/api"
	"github.com/carepath/carepath-tui/internal/export"
	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/ui/components"
	"github.com/carepath/carepath-tui/internal/ui/styles"
	"github.com/carepath/carepath-tui/internal/util"
)

// CellRunes is how much of a query or response a table cell keeps.
const CellRunes = 100

// Placeholders for logs without a user or assistant message.
const (
	NoMessage  = "No message"
	NoResponse = "No response"
)

// Loader reads chat logs from the data service. *api.Client satisfies it.
type Loader interface {
	FetchChatLogs(ctx context.Context, req api.PageRequest) (*model.ChatLogPage, error)
	GetChatLog(ctx context.Context, conversationID string) (*model.ChatLog, error)
}

// Options configures the history view.
type Options struct {
	PageSize       int
	PatientMRN     string
	ExportDir      string
	RenderMarkdown bool
}

var instances atomic.Uint64

type mode int

const (
	modeList mode = iota
	modeFilter
	modeDetail
)

// =============================================================================
// HISTORY MODEL
// =============================================================================

// Model is the Bubble Tea model for the history view.
type Model struct {
	theme  *styles.Theme
	loader Loader
	opts   Options

	keys     KeyMap
	help     help.Model
	showHelp bool

	instance uint64
	mode     mode

	pager   model.Pagination
	filter  string
	items   []model.ChatLog
	loading bool
	errText string

	table   table.Model
	spinner components.Spinner
	input   textinput.Model

	detail        *model.ChatLog
	detailLoading bool
	detailErr     string
	viewport      viewport.Model
	renderer      *glamour.TermRenderer
	rendererWidth int

	width  int
	height int
}

// New creates a history view. It starts in the loading state; Init issues
// the first page load.
func New(theme *styles.Theme, loader Loader, opts Options) Model {
	opts.PageSize = model.ClampPageSize(opts.PageSize)

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(opts.PageSize),
	)
	t.SetStyles(table.Styles{
		Header:   theme.TableHeader.Copy().Padding(0, 1),
		Cell:     theme.TableCell.Copy().Padding(0, 1),
		Selected: theme.TableSelected,
	})

	in := textinput.New()
	in.Placeholder = "Patient MRN, empty for all"
	in.Prompt = "/ "
	in.CharLimit = 32

	m := Model{
		theme:    theme,
		loader:   loader,
		opts:     opts,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		instance: instances.Add(1),
		pager:    model.NewPagination(opts.PageSize),
		filter:   strings.TrimSpace(opts.PatientMRN),
		loading:  true,
		table:    t,
		spinner:  components.NewSpinner(theme, loadingText(opts.PatientMRN)),
		input:    in,
		viewport: viewport.New(76, 10),
		width:    80,
		height:   24,
	}
	m.spinner.Start()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	s := m.spinner
	return tea.Batch(s.Start(), m.fetchCmd(m.pager.Offset))
}

// Instance identifies this view for result routing.
func (m Model) Instance() uint64 { return m.instance }

// Loading reports whether a page load is in flight.
func (m Model) Loading() bool { return m.loading }

// Pagination returns the current paging state.
func (m Model) Pagination() model.Pagination { return m.pager }

// Items returns the rows of the current page.
func (m Model) Items() []model.ChatLog { return m.items }

// Err returns the text of the last failed load, or "".
func (m Model) Err() string { return m.errText }

// Filter returns the patient the list is restricted to, or "".
func (m Model) Filter() string { return m.filter }

// CapturesInput reports whether plain keys are going to a text field, so
// the shell should not treat them as navigation.
func (m Model) CapturesInput() bool { return m.mode == modeFilter }

// InDetail reports whether a single conversation is open.
func (m Model) InDetail() bool { return m.mode == modeDetail }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case PageLoadedMsg:
		return m.handlePage(msg)

	case DetailLoadedMsg:
		return m.handleDetail(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.handleFilterKey(msg)
		case modeDetail:
			return m.handleDetailKey(msg)
		default:
			return m.handleListKey(msg)
		}
	}

	if m.mode == modeFilter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.table.SetColumns(columns(m.width))
	m.table.SetWidth(m.width)
	rows := m.height - 8
	if rows > m.pager.PageSize+1 {
		rows = m.pager.PageSize + 1
	}
	if rows < 3 {
		rows = 3
	}
	m.table.SetHeight(rows)

	m.viewport.Width = m.width - 4
	m.viewport.Height = m.height - 6
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.help.Width = m.width
	if m.detail != nil {
		m.renderDetail()
	}
	return m, nil
}

// =============================================================================
// PAGE LOADING
// =============================================================================

func (m Model) fetchCmd(offset int) tea.Cmd {
	loader := m.loader
	instance := m.instance
	req := api.PageRequest{Skip: offset, Limit: m.pager.PageSize, PatientMRN: m.filter}
	return func() tea.Msg {
		page, err := loader.FetchChatLogs(context.Background(), req)
		return PageLoadedMsg{Instance: instance, Offset: offset, Page: page, Err: err}
	}
}

// load starts loading the page at offset. It does nothing while another
// load is in flight.
func (m Model) load(offset int) (Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.loading = true
	m.errText = ""
	m.pager.Offset = offset
	m.spinner.SetMessage(loadingText(m.filter))
	return m, tea.Batch(m.spinner.Start(), m.fetchCmd(offset))
}

func loadingText(filter string) string {
	if filter = strings.TrimSpace(filter); filter != "" {
		return "Loading chat history for " + filter + "..."
	}
	return "Loading chat history..."
}

func (m Model) handlePage(msg PageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Instance != m.instance || !m.loading {
		return m, nil
	}
	m.loading = false
	m.spinner.Stop()

	if msg.Err != nil {
		m.errText = api.Describe(msg.Err)
		log.Printf("history: load at offset %d failed: %v", msg.Offset, msg.Err)
		return m, nil
	}

	page := msg.Page
	if page == nil {
		page = &model.ChatLogPage{}
	}
	m.errText = ""
	m.pager.Offset = msg.Offset
	m.pager.Total = page.Total
	m.items = page.Items

	// The set shrank under us: fall back to the last page that exists.
	// An empty page at or before that offset is shown as it is.
	if len(m.items) == 0 && m.pager.Offset > 0 && m.pager.Total > 0 {
		if last := (m.pager.TotalPages() - 1) * m.pager.PageSize; last < m.pager.Offset {
			return m.load(last)
		}
	}

	m.table.SetRows(rows(m.items))
	m.table.SetCursor(0)
	return m, nil
}

// =============================================================================
// LIST MODE
// =============================================================================

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		return m.load(m.pager.Offset)

	case key.Matches(msg, m.keys.Prev):
		if m.loading || m.errText != "" || !m.pager.HasPrev() {
			return m, nil
		}
		return m.load(m.pager.Prev().Offset)

	case key.Matches(msg, m.keys.Next):
		if m.loading || m.errText != "" || !m.pager.HasNext() {
			return m, nil
		}
		return m.load(m.pager.Next().Offset)

	case key.Matches(msg, m.keys.Filter):
		if m.loading {
			return m, nil
		}
		m.mode = modeFilter
		m.input.SetValue(m.filter)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Back):
		if m.filter == "" || m.loading {
			return m, nil
		}
		m.filter = ""
		return m.load(0)

	case key.Matches(msg, m.keys.Open):
		sel, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.openDetail(sel)

	case key.Matches(msg, m.keys.Export):
		if sel, ok := m.selected(); ok {
			return m, m.exportCmd(sel, "md")
		}
		return m, nil

	case key.Matches(msg, m.keys.ExportJSON):
		if sel, ok := m.selected(); ok {
			return m, m.exportCmd(sel, "json")
		}
		return m, nil
	}

	if m.loading || m.errText != "" {
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) selected() (*model.ChatLog, bool) {
	if m.loading || m.errText != "" || len(m.items) == 0 {
		return nil, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return nil, false
	}
	entry := m.items[i]
	return &entry, true
}

// =============================================================================
// FILTER MODE
// =============================================================================

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeList
		m.input.Blur()
		next := strings.TrimSpace(m.input.Value())
		if next == m.filter {
			return m, nil
		}
		m.filter = next
		return m.load(0)

	case tea.KeyEsc:
		m.mode = modeList
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// DETAIL MODE
// =============================================================================

func (m Model) openDetail(sel *model.ChatLog) (tea.Model, tea.Cmd) {
	m.mode = modeDetail
	m.detail = sel
	m.detailErr = ""
	m.renderDetail()
	m.viewport.GotoTop()

	id := sel.Key()
	if id == "" {
		return m, nil
	}
	m.detailLoading = true
	loader := m.loader
	instance := m.instance
	return m, func() tea.Msg {
		full, err := loader.GetChatLog(context.Background(), id)
		return DetailLoadedMsg{Instance: instance, Key: id, Log: full, Err: err}
	}
}

func (m Model) handleDetail(msg DetailLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Instance != m.instance || m.mode != modeDetail || m.detail == nil || m.detail.Key() != msg.Key {
		return m, nil
	}
	m.detailLoading = false
	if msg.Err != nil {
		// The list row is still shown; only the refresh failed.
		m.detailErr = api.Describe(msg.Err)
		log.Printf("history: load of %s failed: %v", msg.Key, msg.Err)
		return m, nil
	}
	if msg.Log != nil {
		m.detail = msg.Log
		m.renderDetail()
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		m.detail = nil
		m.detailLoading = false
		m.detailErr = ""
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd(m.detail, "md")

	case key.Matches(msg, m.keys.ExportJSON):
		return m, m.exportCmd(m.detail, "json")
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) renderDetail() {
	if m.detail == nil {
		m.viewport.SetContent("")
		return
	}
	md, err := export.NewMarkdownExporter(&export.Options{IncludeRetrieval: true}).Export(m.detail)
	if err != nil {
		m.viewport.SetContent(m.theme.Empty.Render(NoMessage))
		return
	}
	m.viewport.SetContent(m.renderMarkdown(string(md)))
}

func (m *Model) renderMarkdown(text string) string {
	if !m.opts.RenderMarkdown {
		return text
	}
	width := m.viewport.Width
	if m.renderer == nil || m.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		m.renderer = r
		m.rendererWidth = width
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}

// =============================================================================
// EXPORT
// =============================================================================

func (m Model) exportCmd(entry *model.ChatLog, format string) tea.Cmd {
	if entry == nil {
		return nil
	}
	opts := export.DefaultOptions()
	if m.opts.ExportDir != "" {
		opts.OutputDir = m.opts.ExportDir
	}
	return func() tea.Msg {
		exp, err := export.ForFormat(format, opts)
		if err != nil {
			return components.StatusMsg{Text: err.Error(), Error: true}
		}
		path, err := export.ExportToFile(entry, exp, opts)
		if err != nil {
			log.Printf("history: export of %s failed: %v", entry.Key(), err)
			return components.StatusMsg{Text: "Export failed: " + err.Error(), Error: true}
		}
		log.Printf("history: exported %s to %s", entry.Key(), path)
		return components.StatusMsg{Text: "Exported to " + path}
	}
}

// =============================================================================
// TABLE ROWS
// =============================================================================

func columns(width int) []table.Column {
	const mrnW, dateW = 12, 19
	// Four cells, each padded by one column on both sides.
	rest := width - mrnW - dateW - 8
	if rest < 20 {
		rest = 20
	}
	queryW := rest / 2
	return []table.Column{
		{Title: "Patient MRN", Width: mrnW},
		{Title: "Date", Width: dateW},
		{Title: "Query", Width: queryW},
		{Title: "Response", Width: rest - queryW},
	}
}

func rows(items []model.ChatLog) []table.Row {
	out := make([]table.Row, 0, len(items))
	for i := range items {
		out = append(out, Row(&items[i]))
	}
	return out
}

// Row renders one log as table cells: patient, local start time, and the
// first query and answer cut to CellRunes.
func Row(entry *model.ChatLog) table.Row {
	return table.Row{
		entry.PatientMRN,
		entry.StartedAt.Local(),
		cell(entry, model.RoleUser, NoMessage),
		cell(entry, model.RoleAssistant, NoResponse),
	}
}

func cell(entry *model.ChatLog, role model.Role, placeholder string) string {
	text, ok := entry.FirstMessage(role)
	text = util.SingleLine(text)
	if !ok || text == "" {
		return placeholder
	}
	return util.Truncate(text, CellRunes)
}
