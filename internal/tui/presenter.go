package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Kinds of chat events.
const (
	eventStatus = iota
	eventChannel
	eventPrivate
	eventEmote
	eventRoster
	eventDebug
	eventError
)

type chatEvent struct {
	Kind      int
	Time      time.Time
	Nick      string
	Text      string
	Direction string
	Roster    []string
}

// A Presenter turns the client's callbacks into messages for the program. Sends block
// until the program reads them or the presenter is closed.
type Presenter struct {
	msgs chan tea.Msg
	done chan struct{}
	once sync.Once

	now func() time.Time
}

// NewPresenter creates a presenter.
func NewPresenter() *Presenter {
	return &Presenter{
		msgs: make(chan tea.Msg, 256),
		done: make(chan struct{}),
		now:  time.Now,
	}
}

// Close makes every later send a no-op.
func (p *Presenter) Close() {
	p.once.Do(func() { close(p.done) })
}

func (p *Presenter) send(msg tea.Msg) {
	select {
	case p.msgs <- msg:
	case <-p.done:
	}
}

func (p *Presenter) event(ev chatEvent) {
	ev.Time = p.now()
	p.send(ev)
}

func (p *Presenter) OnStatus(text string) {
	p.event(chatEvent{Kind: eventStatus, Text: text})
}

func (p *Presenter) OnChannelMessage(nick, text string) {
	p.event(chatEvent{Kind: eventChannel, Nick: nick, Text: text})
}

func (p *Presenter) OnPrivateMessage(nick, text string) {
	p.event(chatEvent{Kind: eventPrivate, Nick: nick, Text: text})
}

func (p *Presenter) OnEmote(nick, text string) {
	p.event(chatEvent{Kind: eventEmote, Nick: nick, Text: text})
}

func (p *Presenter) OnRosterChanged(roster []string) {
	p.event(chatEvent{Kind: eventRoster, Roster: append([]string{}, roster...)})
}

func (p *Presenter) OnDebugLine(direction, line string) {
	p.event(chatEvent{Kind: eventDebug, Direction: direction, Text: line})
}

func (p *Presenter) onError(text string) {
	p.event(chatEvent{Kind: eventError, Text: text})
}

func waitForEvent(msgs <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-msgs
	}
}
