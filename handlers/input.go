package handlers

import (
	"errors"
	"strings"

	"github.com/zeliboba/irc"
	"github.com/zeliboba/irc/ircutil"
)

// An Action is something Input leaves to the caller, since it's about the user interface
// rather than the session.
type Action int

// Actions returned by Input.
const (
	ActionNone Action = iota
	ActionQuit
	ActionToggleDebug
	ActionHelp
)

// A UsageError is returned for a command with bad arguments, or an unknown command.
type UsageError struct {
	Usage string
}

func (err *UsageError) Error() string {
	return err.Usage
}

// Help lists the commands understood by Input.
var Help = []string{
	"/connect <server[:port]>  connect to a server (port defaults to 6667)",
	"/disconnect               disconnect from the server",
	"/join <channel>           join a channel, # is added if missing",
	"/part                     leave the channel",
	"/msg <nick> <text...>     send a private message",
	"/nick <nick>              change nick",
	"/names                    refresh the channel's names",
	"/debug                    toggle the raw traffic pane",
	"/help                     show this",
	"/quit                     leave and exit",
	"Anything else is sent to the channel. Start it with // to send a leading slash.",
}

// Input handles an input line typed by the user. Errors from the operator are returned
// as-is, and have already been shown through the presenter.
func Input(op irc.Operator, line string) (Action, error) {
	input := irc.ParseInput(line)

	switch input.Verb {

	// Plain text goes to the channel.
	case "text":
		{
			if strings.TrimSpace(input.Text) == "" {
				return ActionNone, nil
			}

			return ActionNone, op.SendChannelMessage(input.Text)
		}

	case "connect", "server":
		{
			host, port, err := ircutil.ParseServer(input.Text)
			if err != nil {
				return ActionNone, &UsageError{Usage: "Usage: /connect <server[:port]>"}
			}

			return ActionNone, op.Connect(host, port)
		}

	case "disconnect":
		{
			return ActionNone, op.Disconnect()
		}

	case "join", "j":
		{
			channel, _ := ircutil.ParseArgAndText(input.Text)
			if channel == "" {
				return ActionNone, &UsageError{Usage: "Usage: /join <channel>"}
			}
			if !strings.HasPrefix(channel, "#") && !strings.HasPrefix(channel, "&") {
				channel = "#" + channel
			}

			return ActionNone, op.Join(channel)
		}

	case "part", "leave":
		{
			return ActionNone, op.Part()
		}

	// /msg sends a message to a nick specified before the message.
	case "msg", "query":
		{
			nick, text := ircutil.ParseArgAndText(input.Text)
			if nick == "" || text == "" {
				return ActionNone, &UsageError{Usage: "Usage: /msg <nick> <text...>"}
			}

			return ActionNone, op.SendPrivateMessage(nick, text)
		}

	case "nick":
		{
			nick, rest := ircutil.ParseArgAndText(input.Text)
			if nick == "" || rest != "" {
				return ActionNone, &UsageError{Usage: "Usage: /nick <nick>"}
			}

			return ActionNone, op.SetNick(nick)
		}

	case "names":
		{
			return ActionNone, op.RequestRoster()
		}

	case "debug":
		{
			return ActionToggleDebug, nil
		}

	case "help":
		{
			return ActionHelp, nil
		}

	case "quit", "exit":
		{
			return ActionQuit, nil
		}
	}

	return ActionNone, &UsageError{Usage: "Unknown command /" + input.Verb + ", try /help"}
}

// IsUsageError returns true if err came from bad input rather than the session.
func IsUsageError(err error) bool {
	var usageError *UsageError
	return errors.As(err, &usageError)
}
