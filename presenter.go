package irc

// Directions passed to Presenter.OnDebugLine.
const (
	DirectionIn  = "<-"
	DirectionOut = "->"
)

// A Presenter receives everything the client has to show. Calls are made from the
// client's loop, one at a time, so implementations must not call back into the client
// synchronously.
type Presenter interface {
	OnStatus(text string)
	OnChannelMessage(nick, text string)
	OnPrivateMessage(nick, text string)
	OnEmote(nick, text string)
	OnRosterChanged(roster []string)
	OnDebugLine(direction, line string)
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) OnStatus(string)                 {}
func (NopPresenter) OnChannelMessage(string, string) {}
func (NopPresenter) OnPrivateMessage(string, string) {}
func (NopPresenter) OnEmote(string, string)          {}
func (NopPresenter) OnRosterChanged([]string)        {}
func (NopPresenter) OnDebugLine(string, string)      {}
