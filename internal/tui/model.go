package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zeliboba/irc"
	"github.com/zeliboba/irc/handlers"
)

const (
	maxChatLines  = 500
	maxDebugLines = 200
)

// A Client is what the interface drives. *irc.Client is one.
type Client interface {
	irc.Operator
	State() irc.State
	Quit() error
}

type actionMsg handlers.Action

type quitMsg struct{}

type model struct {
	width, height int

	chat   viewport.Model
	debug  viewport.Model
	roster viewport.Model
	input  textinput.Model

	chatLines  []string
	debugLines []string
	nicks      []string
	showDebug  bool

	history      []string
	historyIndex int

	client    Client
	presenter *Presenter
	inputs    chan<- string
}

func newModel(client Client, presenter *Presenter, inputs chan<- string) model {
	input := textinput.New()
	input.Placeholder = "Type a message or /help"
	input.Prompt = "> "
	input.Width = 80
	input.Focus()

	return model{
		chat:         viewport.New(80, 20),
		debug:        viewport.New(80, 6),
		roster:       viewport.New(rosterWidth, 20),
		input:        input,
		historyIndex: -1,
		client:       client,
		presenter:    presenter,
		inputs:       inputs,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.presenter.msgs))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case chatEvent:
		m.handleEvent(msg)
		return m, waitForEvent(m.presenter.msgs)

	case actionMsg:
		m.handleAction(handlers.Action(msg))
		return m, waitForEvent(m.presenter.msgs)

	case quitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.submit("/quit")
		return nil, true

	case tea.KeyEnter:
		line := m.input.Value()
		m.input.Reset()
		if strings.TrimSpace(line) == "" {
			return nil, true
		}

		m.history = append(m.history, line)
		m.historyIndex = -1
		m.submit(line)

		return nil, true

	case tea.KeyUp:
		if len(m.history) == 0 {
			return nil, true
		}
		if m.historyIndex == -1 {
			m.historyIndex = len(m.history) - 1
		} else if m.historyIndex > 0 {
			m.historyIndex--
		}
		m.input.SetValue(m.history[m.historyIndex])
		m.input.CursorEnd()

		return nil, true

	case tea.KeyDown:
		if m.historyIndex == -1 {
			return nil, true
		}
		if m.historyIndex < len(m.history)-1 {
			m.historyIndex++
			m.input.SetValue(m.history[m.historyIndex])
		} else {
			m.historyIndex = -1
			m.input.Reset()
		}
		m.input.CursorEnd()

		return nil, true

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return cmd, true

	case tea.KeyEsc:
		m.input.Reset()
		m.historyIndex = -1
		return nil, true
	}

	return nil, false
}

// submit hands a line to the input worker. The worker may be busy connecting, so it
// never waits here.
func (m *model) submit(line string) {
	select {
	case m.inputs <- line:
	default:
		m.addChat(chatEvent{Kind: eventError, Time: m.presenter.now(), Text: "Busy, try again"})
	}
}

func (m *model) handleEvent(ev chatEvent) {
	switch ev.Kind {
	case eventRoster:
		m.nicks = ev.Roster
		m.updateRoster()
		m.resize(m.width, m.height)
	case eventDebug:
		line, _ := styledLine(ev)
		m.debugLines = appendCapped(m.debugLines, line, maxDebugLines)
		m.debug.SetContent(strings.Join(m.debugLines, "\n"))
		m.debug.GotoBottom()
	default:
		m.addChat(ev)
	}
}

func (m *model) handleAction(action handlers.Action) {
	switch action {
	case handlers.ActionToggleDebug:
		m.showDebug = !m.showDebug
		m.resize(m.width, m.height)
	case handlers.ActionHelp:
		now := m.presenter.now()
		for _, line := range handlers.Help {
			m.addChat(chatEvent{Kind: eventStatus, Time: now, Text: line})
		}
	}
}

func (m *model) addChat(ev chatEvent) {
	line, ok := styledLine(ev)
	if !ok {
		return
	}

	atBottom := m.chat.AtBottom()
	m.chatLines = appendCapped(m.chatLines, line, maxChatLines)
	m.chat.SetContent(strings.Join(m.chatLines, "\n"))
	if atBottom || ev.Kind == eventError {
		m.chat.GotoBottom()
	}
}

func (m *model) updateRoster() {
	lines := make([]string, 0, len(m.nicks))
	for _, nick := range m.nicks {
		style := lipgloss.NewStyle().Foreground(nickColor(nick))
		lines = append(lines, style.Render(truncate(nick, rosterWidth)))
	}

	m.roster.SetContent(strings.Join(lines, "\n"))
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	if width == 0 || height == 0 {
		return
	}

	// Input box (1 line + 2 borders) and status bar (1 line).
	available := height - 3 - 1

	chatWidth := width
	if len(m.nicks) > 0 {
		chatWidth -= rosterWidth + 2
	}

	debugHeight := 0
	if m.showDebug {
		debugHeight = available / 3
	}

	m.chat.Width = max(20, chatWidth-2)
	m.chat.Height = max(1, available-debugHeight-2)
	m.debug.Width = max(20, width-2)
	m.debug.Height = max(1, debugHeight-2)
	m.roster.Width = rosterWidth
	m.roster.Height = m.chat.Height
	m.input.Width = max(10, width-6)
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	row := paneStyle.Render(m.chat.View())
	if len(m.nicks) > 0 {
		row = lipgloss.JoinHorizontal(lipgloss.Top, row, rosterStyle.Height(m.roster.Height).Render(m.roster.View()))
	}

	parts := []string{row}
	if m.showDebug {
		parts = append(parts, paneStyle.Render(m.debug.View()))
	}
	parts = append(parts, inputBoxStyle.Width(m.width-2).Render(m.input.View()), m.statusBar())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m model) statusBar() string {
	return statusBarStyle.Width(m.width).Render(statusText(m.client.State()))
}

func statusText(state irc.State) string {
	text := state.Nick
	if state.Connected {
		text += " @ " + state.Server
	} else {
		text += " (not connected)"
	}
	if state.Joined {
		text += " | " + state.Channel
	}

	return text
}

func appendCapped(lines []string, line string, capacity int) []string {
	lines = append(lines, line)
	if len(lines) > capacity {
		lines = lines[len(lines)-capacity:]
	}

	return lines
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}

	return string(runes) + "…"
}

func max(a, b int) int {
	if a > b {
		return a
	}

	return b
}
