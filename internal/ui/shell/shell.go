// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carepath/carepath-tui/internal/api"
	"github.com/carepath/carepath-tui/internal/config"
	"github.com/carepath/carepath-tui/internal/session"
	"github.com/carepath/carepath-tui/internal/ui/chat"
	"github.com/carepath/carepath-tui/internal/ui/components"
	"github.com/carepath/carepath-tui/internal/ui/history"
	"github.com/carepath/carepath-tui/internal/ui/styles"
)

// View selects the visible tab.
type View int

const (
	ViewChat View = iota
	ViewHistory
)

func (v View) String() string {
	if v == ViewHistory {
		return "history"
	}
	return "chat"
}

// Backend is everything the views need from the two services.
// *api.Client satisfies it.
type Backend interface {
	chat.Submitter
	history.Loader
	CheckAll(ctx context.Context) []api.HealthReport
}

// Options configures the shell.
type Options struct {
	Chat    chat.Options
	History history.Options

	// Start is the view shown first.
	Start View

	// StatusTimeout is how long transient status messages stay up.
	StatusTimeout time.Duration
}

// OptionsFromConfig maps the user configuration onto view options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Chat: chat.Options{
			Modes:          cfg.Chat.LLMModes,
			Tick:           time.Duration(cfg.Chat.TickMs) * time.Millisecond,
			RenderMarkdown: cfg.UI.RenderMarkdown,
		},
		History: history.Options{
			PageSize:       cfg.History.PageSize,
			ExportDir:      cfg.ExportPath(),
			RenderMarkdown: cfg.UI.RenderMarkdown,
		},
		StatusTimeout: 5 * time.Second,
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

// HealthMsg carries the result of probing both services.
type HealthMsg struct {
	Reports []api.HealthReport
}

type statusClearMsg struct {
	seq int
}

// =============================================================================
// SHELL MODEL
// =============================================================================

// Model is the application model.
type Model struct {
	theme   *styles.Theme
	sess    *session.Session
	backend Backend
	opts    Options

	view    View
	chat    chat.Model
	history history.Model
	hasHist bool

	header *components.Header
	status *components.StatusBar
	seq    int

	width  int
	height int
}

// New creates the shell. The chat view starts over sess.Chat.
func New(theme *styles.Theme, sess *session.Session, backend Backend, opts Options) *Model {
	if opts.StatusTimeout <= 0 {
		opts.StatusTimeout = 5 * time.Second
	}
	m := &Model{
		theme:   theme,
		sess:    sess,
		backend: backend,
		opts:    opts,
		chat:    chat.New(theme, sess, backend, opts.Chat),
		header:  components.NewHeader(theme, "Chat", "History"),
		status:  components.NewStatusBar(theme, string(api.ServiceData), string(api.ServiceInference)),
		width:   80,
		height:  24,
	}
	m.status.Right = "ctrl+t switch  ctrl+c quit"
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.chat.Init(), m.checkHealth()}
	if m.opts.Start == ViewHistory {
		cmds = append(cmds, m.activate(ViewHistory))
	}
	return tea.Batch(cmds...)
}

// Active returns the visible view.
func (m *Model) Active() View { return m.view }

// Chat returns the chat view.
func (m *Model) Chat() chat.Model { return m.chat }

// History returns the current history view; ok is false before it was
// first opened.
func (m *Model) History() (history.Model, bool) { return m.history, m.hasHist }

// StatusText returns the transient status message.
func (m *Model) StatusText() string { return m.status.Message }

func (m *Model) checkHealth() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return HealthMsg{Reports: backend.CheckAll(ctx)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case HealthMsg:
		m.applyHealth(msg.Reports)
		return m, nil

	case components.StatusMsg:
		return m, m.setStatus(msg)

	case statusClearMsg:
		if msg.seq == m.seq {
			m.status.Message = ""
		}
		return m, nil

	// The chat view keeps running in the background.
	case chat.SubmitResultMsg, chat.ElapsedTickMsg, chat.JournalSavedMsg, chat.CopiedMsg:
		return m, m.updateChat(msg)

	case history.PageLoadedMsg, history.DetailLoadedMsg:
		if !m.hasHist {
			return m, nil
		}
		return m, m.updateHistory(msg)

	case spinner.TickMsg:
		cmds := []tea.Cmd{m.updateChat(msg)}
		if m.hasHist {
			cmds = append(cmds, m.updateHistory(msg))
		}
		return m, tea.Batch(cmds...)
	}

	if m.view == ViewHistory && m.hasHist {
		return m, m.updateHistory(msg)
	}
	return m, m.updateChat(msg)
}

func (m *Model) updateChat(msg tea.Msg) tea.Cmd {
	next, cmd := m.chat.Update(msg)
	m.chat = next.(chat.Model)
	return cmd
}

func (m *Model) updateHistory(msg tea.Msg) tea.Cmd {
	next, cmd := m.history.Update(msg)
	m.history = next.(history.Model)
	return cmd
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.header.SetWidth(msg.Width)
	m.status.Width = msg.Width

	inner := m.contentSize()
	cmds := []tea.Cmd{m.updateChat(inner)}
	if m.hasHist {
		cmds = append(cmds, m.updateHistory(inner))
	}
	return m, tea.Batch(cmds...)
}

// contentSize is the area left between the header and the status bar.
func (m *Model) contentSize() tea.WindowSizeMsg {
	h := m.height - m.header.Height() - 1
	if h < 5 {
		h = 5
	}
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return tea.WindowSizeMsg{Width: w, Height: h}
}

func (m *Model) logQuit() {
	log.Printf("shell: quit after %s, %s", m.sess.Uptime().Round(time.Second), m.sess.Summary())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.logQuit()
		return m, tea.Quit

	case "ctrl+t":
		if m.view == ViewChat {
			return m, m.activate(ViewHistory)
		}
		return m, m.activate(ViewChat)
	}

	if m.view == ViewHistory && !m.history.CapturesInput() {
		switch msg.String() {
		case "1":
			return m, m.activate(ViewChat)
		case "tab":
			return m, m.activate(ViewChat)
		case "2":
			return m, nil
		case "q":
			if !m.history.InDetail() {
				m.logQuit()
				return m, tea.Quit
			}
		}
	}

	if m.view == ViewHistory {
		return m, m.updateHistory(msg)
	}
	return m, m.updateChat(msg)
}

// activate shows v. Opening the history view always builds a new one,
// which loads its first page.
func (m *Model) activate(v View) tea.Cmd {
	m.view = v
	m.header.Active = int(v)
	if v != ViewHistory {
		return nil
	}

	m.history = history.New(m.theme, m.backend, m.opts.History)
	m.hasHist = true
	return tea.Batch(m.updateHistory(m.contentSize()), m.history.Init())
}

func (m *Model) applyHealth(reports []api.HealthReport) {
	for _, r := range reports {
		state := components.HealthUp
		if !r.OK() {
			state = components.HealthDown
		}
		m.status.SetHealth(string(r.Service), state)
		if r.Err != nil {
			log.Printf("shell: %s service at %s unreachable: %v", r.Service, r.URL, r.Err)
		} else {
			log.Printf("shell: %s service at %s answered in %s", r.Service, r.URL, r.Latency.Round(time.Millisecond))
		}
	}
}

func (m *Model) setStatus(msg components.StatusMsg) tea.Cmd {
	text := msg.Text
	if msg.Error {
		text = "✗ " + text
	}
	m.status.Message = text
	m.seq++
	seq := m.seq
	return tea.Tick(m.opts.StatusTimeout, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.view == ViewHistory && m.hasHist {
		content = m.history.View()
	} else {
		content = m.chat.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.theme.App.Render(content),
		m.status.View(),
	)
}
