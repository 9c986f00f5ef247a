// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/carepath/carepath-tui/internal/api"
	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/session"
	"github.com/carepath/carepath-tui/internal/storage"
	"github.com/carepath/carepath-tui/internal/ui/components"
	"github.com/carepath/carepath-tui/internal/ui/styles"
)

// Submitter sends a query to the inference service. *api.Client satisfies it.
type Submitter interface {
	SubmitChat(ctx context.Context, patientMRN, query string, mode *string) (*model.ChatResponse, error)
}

// Recorder persists answered queries. *storage.Journal satisfies it.
type Recorder interface {
	Save(ctx context.Context, e *storage.Entry) error
}

// Options configures the chat view.
type Options struct {
	// Modes are the selectable LLM modes. The server default is always
	// offered first and need not be listed.
	Modes []string

	// Tick is the elapsed counter resolution.
	Tick time.Duration

	// RenderMarkdown renders answers with glamour; off shows the raw text.
	RenderMarkdown bool

	// Journal, when set, receives every answered query.
	Journal Recorder
}

// =============================================================================
// CHAT MODEL
// =============================================================================

type field int

const (
	fieldQuery field = iota
	fieldMRN
)

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme  *styles.Theme
	sess   *session.Session
	client Submitter
	opts   Options
	modes  []string

	keys     KeyMap
	help     help.Model
	showHelp bool

	mrn      textinput.Model
	query    textarea.Model
	focus    field
	spinner  components.Spinner
	viewport viewport.Model

	renderer      *glamour.TermRenderer
	rendererWidth int

	width  int
	height int
}

// New creates the chat view over the session's chat form.
func New(theme *styles.Theme, sess *session.Session, client Submitter, opts Options) Model {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if len(opts.Modes) == 0 {
		opts.Modes = model.DefaultLLMModes
	}
	modes := make([]string, 0, len(opts.Modes)+1)
	modes = append(modes, "")
	for _, m := range opts.Modes {
		if m != "" {
			modes = append(modes, m)
		}
	}

	mrn := textinput.New()
	mrn.Placeholder = "e.g., P000123"
	mrn.Prompt = ""
	mrn.CharLimit = 32
	mrn.Width = 24
	mrn.SetValue(sess.Chat.PatientMRN)

	query := textarea.New()
	query.Placeholder = "Ask a question about your health records..."
	query.ShowLineNumbers = false
	query.CharLimit = 4000
	query.SetHeight(4)
	query.SetWidth(76)
	query.SetValue(sess.Chat.Query)
	query.Focus()

	vp := viewport.New(76, 8)

	return Model{
		theme:    theme,
		sess:     sess,
		client:   client,
		opts:     opts,
		modes:    modes,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		mrn:      mrn,
		query:    query,
		focus:    fieldQuery,
		spinner:  components.NewSpinner(theme, "Waiting for the assistant"),
		viewport: vp,
		width:    80,
		height:   24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Form returns the chat form this view edits.
func (m Model) Form() *session.ChatForm {
	return m.sess.Chat
}

// Modes returns the selectable modes, server default first.
func (m Model) Modes() []string {
	return m.modes
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case SubmitResultMsg:
		return m.handleResult(msg)

	case ElapsedTickMsg:
		return m.handleTick(msg)

	case JournalSavedMsg:
		if msg.Err != nil {
			log.Printf("chat: journal write failed: %v", msg.Err)
			return m, components.StatusError("Journal write failed: " + msg.Err.Error())
		}
		return m, components.Status("Saved to journal")

	case CopiedMsg:
		if msg.Err != nil {
			log.Printf("chat: clipboard copy failed: %v", msg.Err)
			return m, components.StatusError("Copy failed: " + msg.Err.Error())
		}
		return m, components.Status("Answer copied to clipboard")

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	inner := m.width - 4
	if inner < 20 {
		inner = 20
	}
	m.query.SetWidth(inner)
	m.viewport.Width = inner
	m.viewport.Height = m.responseHeight()
	m.help.Width = m.width

	if m.sess.Chat.Response != nil {
		m.renderResponse()
	}
	return m, nil
}

// responseHeight is what is left for the answer after the form.
func (m Model) responseHeight() int {
	const formRows = 20
	h := m.height - formRows
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.sess.Chat

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NewChat):
		if form.State() == session.StateSucceeded || form.State() == session.StateFailed {
			return m.newChat()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if form.Response == nil {
			return m, nil
		}
		return m, copyCmd(form.Response.Response)

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	// The form is read-only while a query is in flight.
	if form.Submitting() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.CycleMode):
		m.cycleMode()
		return m, nil

	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		if m.focus == fieldQuery {
			m.focus = fieldMRN
		} else {
			m.focus = fieldQuery
		}
		return m, m.applyFocus()
	}

	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused field and copies its value
// back into the form.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.sess.Chat.Submitting() {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.focus {
	case fieldMRN:
		m.mrn, cmd = m.mrn.Update(msg)
		m.sess.Chat.PatientMRN = m.mrn.Value()
	default:
		m.query, cmd = m.query.Update(msg)
		m.sess.Chat.Query = m.query.Value()
	}
	return m, cmd
}

func (m *Model) applyFocus() tea.Cmd {
	if m.focus == fieldMRN {
		m.query.Blur()
		return m.mrn.Focus()
	}
	m.mrn.Blur()
	return m.query.Focus()
}

func (m *Model) cycleMode() {
	form := m.sess.Chat
	next := 0
	for i, mode := range m.modes {
		if mode == form.Mode {
			next = (i + 1) % len(m.modes)
			break
		}
	}
	form.Mode = m.modes[next]
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	form := m.sess.Chat
	form.PatientMRN = m.mrn.Value()
	form.Query = m.query.Value()

	sub, ok := form.Begin()
	if !ok {
		return m, nil
	}
	log.Printf("chat: submission %d for %s (mode %q)", sub.Run, sub.PatientMRN, modeLabel(sub.Mode))

	m.mrn.Blur()
	m.query.Blur()
	m.viewport.SetContent("")

	return m, tea.Batch(
		m.spinner.Start(),
		elapsedTickCmd(sub.Run, m.opts.Tick),
		submitCmd(m.client, sub),
	)
}

func submitCmd(client Submitter, sub session.Submission) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.SubmitChat(context.Background(), sub.PatientMRN, sub.Query, sub.Mode)
		return SubmitResultMsg{Run: sub.Run, Response: resp, Err: err}
	}
}

func (m Model) handleTick(msg ElapsedTickMsg) (tea.Model, tea.Cmd) {
	step := int(m.opts.Tick / time.Millisecond)
	if !m.sess.Chat.Tick(msg.Run, step) {
		return m, nil
	}
	return m, elapsedTickCmd(msg.Run, m.opts.Tick)
}

func (m Model) handleResult(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	form := m.sess.Chat

	if msg.Err != nil {
		if !form.Fail(msg.Run, api.Describe(msg.Err)) {
			return m, nil
		}
		log.Printf("chat: submission %d failed after %s: %v", msg.Run, FormatElapsed(form.ElapsedMs), msg.Err)
		m.spinner.Stop()
		return m, m.applyFocus()
	}

	if msg.Response == nil {
		msg.Response = &model.ChatResponse{}
	}
	if !form.Succeed(msg.Run, msg.Response) {
		return m, nil
	}
	log.Printf("chat: submission %d answered in %s", msg.Run, FormatElapsed(form.ElapsedMs))
	m.spinner.Stop()
	m.renderResponse()
	m.viewport.GotoTop()

	return m, tea.Batch(m.applyFocus(), m.journalCmd(msg.Response))
}

func (m Model) journalCmd(resp *model.ChatResponse) tea.Cmd {
	if m.opts.Journal == nil {
		return nil
	}
	form := m.sess.Chat
	entry := storage.EntryFromResponse(m.sess.ID, form.LastSubmission, resp, form.ElapsedMs)
	journal := m.opts.Journal
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return JournalSavedMsg{Err: journal.Save(ctx, entry)}
	}
}

func (m Model) newChat() (tea.Model, tea.Cmd) {
	m.sess.Chat.Reset()
	m.spinner.Stop()
	m.mrn.SetValue(m.sess.Chat.PatientMRN)
	m.query.Reset()
	m.viewport.SetContent("")
	m.focus = fieldQuery
	return m, m.applyFocus()
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Err: clipboard.WriteAll(text)}
	}
}

// =============================================================================
// RESPONSE RENDERING
// =============================================================================

func (m *Model) renderResponse() {
	resp := m.sess.Chat.Response
	if resp == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderMarkdown(resp.Response))
}

// renderMarkdown returns text unchanged when rendering is off or fails.
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
			log.Printf("chat: markdown renderer unavailable: %v", err)
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

func modeLabel(mode *string) string {
	if mode == nil || *mode == "" {
		return "server default"
	}
	return *mode
}
