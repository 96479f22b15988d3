package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/zeliboba/irc"
	"github.com/zeliboba/irc/handlers"
)

// A Client is what the console drives. *irc.Client is one.
type Client interface {
	irc.Operator
	Quit() error
}

// A Presenter prints everything as plain lines. Debug lines are only printed while
// enabled with /debug.
type Presenter struct {
	mutex sync.Mutex
	out   io.Writer
	debug bool
	now   func() time.Time
}

// NewPresenter creates a presenter that writes to out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out, now: time.Now}
}

func (p *Presenter) printf(format string, args ...interface{}) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	_, _ = fmt.Fprintf(p.out, p.now().Format("[15:04] ")+format+"\n", args...)
}

func (p *Presenter) OnStatus(text string) {
	p.printf("== %s", text)
}

func (p *Presenter) OnChannelMessage(nick, text string) {
	p.printf("<%s> %s", nick, text)
}

func (p *Presenter) OnPrivateMessage(nick, text string) {
	p.printf("[private] <%s> %s", nick, text)
}

func (p *Presenter) OnEmote(nick, text string) {
	p.printf("* %s %s", nick, text)
}

func (p *Presenter) OnRosterChanged(roster []string) {
	if len(roster) == 0 {
		return
	}

	p.printf("== Names: %s", strings.Join(roster, " "))
}

func (p *Presenter) OnDebugLine(direction, line string) {
	p.mutex.Lock()
	debug := p.debug
	p.mutex.Unlock()

	if debug {
		p.printf("%s %s", direction, line)
	}
}

// ToggleDebug turns printing of debug lines on or off.
func (p *Presenter) ToggleDebug() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.debug = !p.debug
	return p.debug
}

// Run reads lines from in until EOF or /quit. The client is quit either way.
func Run(client Client, presenter *Presenter, in io.Reader) error {
	presenter.printf("Started, type /help to see the available commands")

	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if line != "" {
			quit := handleLine(client, presenter, line)
			if quit {
				break
			}
		}

		if err != nil {
			if err != io.EOF {
				_ = client.Quit()
				return err
			}

			break
		}
	}

	presenter.printf("Quitting...")

	return client.Quit()
}

func handleLine(client Client, presenter *Presenter, line string) (quit bool) {
	action, err := handlers.Input(client, line)
	if handlers.IsUsageError(err) {
		presenter.printf("!! %s", err)
		return false
	}

	switch action {
	case handlers.ActionQuit:
		return true
	case handlers.ActionToggleDebug:
		if presenter.ToggleDebug() {
			presenter.printf("== Debug output on")
		} else {
			presenter.printf("== Debug output off")
		}
	case handlers.ActionHelp:
		for _, help := range handlers.Help {
			presenter.printf("   %s", help)
		}
	}

	return false
}
