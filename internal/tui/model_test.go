package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeliboba/irc"
	"github.com/zeliboba/irc/handlers"
)

type fakeClient struct {
	irc.NopOperator
	state irc.State
	quits int
}

func (c *fakeClient) State() irc.State {
	return c.state
}

func (c *fakeClient) Quit() error {
	c.quits++
	return nil
}

func newTestModel() (model, chan string) {
	inputs := make(chan string, 4)
	client := &fakeClient{state: irc.State{Nick: "Zeliboba", Server: "irc.example.net", Connected: true}}
	m := newModel(client, NewPresenter(), inputs)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	return updated.(model), inputs
}

func TestModel_Events(t *testing.T) {
	m, _ := newTestModel()

	updated, cmd := m.Update(chatEvent{Kind: eventStatus, Text: "Connecting"})
	m = updated.(model)
	assert.NotNil(t, cmd)
	assert.Len(t, m.chatLines, 1)

	updated, _ = m.Update(chatEvent{Kind: eventDebug, Direction: irc.DirectionOut, Text: "NICK Zeliboba"})
	m = updated.(model)
	assert.Len(t, m.chatLines, 1)
	assert.Len(t, m.debugLines, 1)

	chatWidth := m.chat.Width
	updated, _ = m.Update(chatEvent{Kind: eventRoster, Roster: []string{"alice", "Zeliboba"}})
	m = updated.(model)
	assert.Equal(t, []string{"alice", "Zeliboba"}, m.nicks)
	assert.True(t, m.chat.Width < chatWidth)

	updated, _ = m.Update(actionMsg(handlers.ActionToggleDebug))
	m = updated.(model)
	assert.True(t, m.showDebug)

	updated, _ = m.Update(actionMsg(handlers.ActionHelp))
	m = updated.(model)
	assert.Len(t, m.chatLines, 1+len(handlers.Help))

	assert.NotEmpty(t, m.View())
}

func TestModel_Input(t *testing.T) {
	m, inputs := newTestModel()

	m.input.SetValue("/join #test")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)

	require.Len(t, inputs, 1)
	assert.Equal(t, "/join #test", <-inputs)
	assert.Equal(t, "", m.input.Value())

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(model)
	assert.Equal(t, "/join #test", m.input.Value())

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(model)
	assert.Equal(t, "", m.input.Value())

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)
	assert.Len(t, inputs, 0)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(model)
	assert.Equal(t, "/quit", <-inputs)

	_, cmd := m.Update(quitMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRunInputs(t *testing.T) {
	client := &fakeClient{}
	presenter := NewPresenter()
	inputs := make(chan string, 4)

	inputs <- "/frobnicate"
	inputs <- "/debug"
	inputs <- "/quit"
	close(inputs)

	runInputs(client, presenter, inputs)

	ev := (<-presenter.msgs).(chatEvent)
	assert.Equal(t, eventError, ev.Kind)
	assert.Equal(t, actionMsg(handlers.ActionToggleDebug), <-presenter.msgs)
	assert.Equal(t, quitMsg{}, <-presenter.msgs)
	assert.Equal(t, 1, client.quits)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Zeliboba (not connected)", statusText(irc.State{Nick: "Zeliboba"}))
	assert.Equal(t, "Zeliboba @ irc.example.net | #test", statusText(irc.State{
		Nick: "Zeliboba", Server: "irc.example.net", Connected: true, Channel: "#test", Joined: true,
	}))
}
