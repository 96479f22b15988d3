package irc

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/time/rate"

	"github.com/zeliboba/irc/ircutil"
)

// A Dispatcher drives the session from received messages and operator commands. It is the
// only thing that touches the session, and it's not thread safe: Client runs it on a
// single goroutine, tests may call it directly.
type Dispatcher struct {
	ctx       context.Context
	config    Config
	session   *Session
	presenter Presenter
	fallback  encoding.Encoding
	limiter   *rate.Limiter

	conn   *connection
	frames chan Frame
}

// NewDispatcher creates a dispatcher for a disconnected session. The context bounds
// waiting on the send rate limit.
func NewDispatcher(ctx context.Context, config Config, presenter Presenter) *Dispatcher {
	config = config.WithDefaults()
	if presenter == nil {
		presenter = NopPresenter{}
	}

	limit := rate.Inf
	if config.SendRate > 0 {
		limit = rate.Limit(config.SendRate)
	}

	// An unknown name is caught by the caller with LookupEncoding; here it means dropping
	// invalid bytes.
	fallback, _ := LookupEncoding(config.FallbackEncoding)

	return &Dispatcher{
		ctx:       ctx,
		config:    config,
		session:   NewSession(config),
		presenter: presenter,
		fallback:  fallback,
		limiter:   rate.NewLimiter(limit, config.SendBurst),
		frames:    make(chan Frame, 64),
	}
}

// Session gets the dispatcher's session.
func (d *Dispatcher) Session() *Session {
	return d.session
}

// Frames is where connection readers deliver their lines, in the order they were read.
func (d *Dispatcher) Frames() <-chan Frame {
	return d.frames
}

// HandleFrame handles a frame from Frames. Frames from a connection that has since been
// torn down are dropped.
func (d *Dispatcher) HandleFrame(frame Frame) {
	if frame.conn == nil || frame.conn != d.conn {
		return
	}

	if frame.Err != nil {
		d.lose()
		return
	}

	d.HandleLine(frame.Line)
}

// HandleLine decodes and handles one received line. Empty and malformed lines are
// ignored.
func (d *Dispatcher) HandleLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	d.presenter.OnDebugLine(DirectionIn, line)

	message, err := ParseMessage(line)
	if err != nil {
		return
	}

	d.HandleMessage(message)
}

// HandleMessage applies a decoded message. Unknown commands and messages that lack
// arguments are no-ops.
func (d *Dispatcher) HandleMessage(message Message) {
	if !message.Valid() {
		return
	}

	switch message.Kind {
	case KindPing:
		{
			_ = d.send("PONG " + param(message.Args[0]))
		}

	case KindPrivmsg:
		{
			sender := message.Nick()
			target := message.Args[0]
			text := strings.Join(message.Args[1:], " ")

			if verb, args, ok := ParseCTCP(text); ok {
				d.handleCTCP(sender, verb, args)
				break
			}

			if d.session.IsChannel(target) {
				d.presenter.OnChannelMessage(sender, text)
			} else {
				d.presenter.OnPrivateMessage(sender, text)
			}
		}

	case KindJoin:
		{
			nick := message.Nick()
			channel := message.Args[0]
			if nick == "" {
				break
			}

			if d.session.IsSelf(nick) {
				if d.session.Join(channel) {
					d.presenter.OnStatus(fmt.Sprintf("Joined channel %s", channel))
					d.rosterChanged()
				}
			} else if d.session.IsChannel(channel) {
				if d.session.AddUser(nick) {
					d.rosterChanged()
				}
				d.presenter.OnStatus(fmt.Sprintf("%s joined the channel", nick))
			}
		}

	case KindPart:
		{
			nick := message.Nick()
			channel := message.Args[0]
			if nick == "" || !d.session.IsChannel(channel) {
				break
			}

			if d.session.IsSelf(nick) {
				d.session.Part()
				d.presenter.OnStatus(fmt.Sprintf("Left channel %s", channel))
				d.rosterChanged()
				break
			}

			if d.session.RemoveUser(nick) {
				d.rosterChanged()
			}
			d.presenter.OnStatus(fmt.Sprintf("%s left the channel", nick))
		}

	case KindNick:
		{
			oldNick := message.Nick()
			newNick := message.Args[0]
			if oldNick == "" {
				break
			}

			if d.session.IsSelf(oldNick) {
				d.session.SetNick(newNick)
			}
			if d.session.RenameUser(oldNick, newNick) || d.session.AddUser(newNick) {
				d.rosterChanged()
			}

			d.presenter.OnStatus(fmt.Sprintf("%s is now known as %s", oldNick, newNick))
		}

	case KindNamesReply:
		{
			// Example args: zeliboba = #test :@alice bob carol
			if !d.session.IsChannel(message.Args[2]) {
				break
			}

			if d.session.AddNames(strings.Fields(strings.Join(message.Args[3:], " "))) {
				d.rosterChanged()
			}
		}

	case KindEndOfNames:
		{
			if d.session.IsChannel(message.Args[1]) {
				d.session.EndNames()
			}
		}

	case KindEndOfMOTD:
		{
			d.presenter.OnStatus("MOTD received, ready for action")
		}

	case KindJoinFailed:
		{
			// Example args: zeliboba #test :Cannot join channel (+b)
			channel := message.Args[1]
			if !d.session.AbortJoin(channel) {
				break
			}

			reason := message.Arg(2)
			if reason == "" {
				reason = message.Command
			}
			d.presenter.OnStatus(fmt.Sprintf("Unable to join %s: %s", channel, reason))
		}
	}
}

func (d *Dispatcher) handleCTCP(sender, verb, args string) {
	switch verb {
	case "VERSION":
		if sender != "" {
			_ = d.send(fmt.Sprintf("NOTICE %s :\x01VERSION %s\x01", sender, d.config.Version))
		}
	case "ACTION":
		d.presenter.OnEmote(sender, args)
	default:
		d.presenter.OnStatus(fmt.Sprintf("Got CTCP %s from %s", verb, sender))
	}
}

// Connect dials server:port and logs in with USER and NICK.
func (d *Dispatcher) Connect(server string, port int) error {
	if d.session.Connected() {
		d.presenter.OnStatus("Already connected")
		return ErrAlreadyConnected
	}
	if server == "" || strings.ContainsAny(server, " \t") || port <= 0 || port > 65535 {
		d.presenter.OnStatus("Usage: connect <server:port>")
		return ErrInvalidArgument
	}

	addr := net.JoinHostPort(server, strconv.Itoa(port))
	rwc, err := d.config.Dial(d.ctx, addr)
	if err != nil {
		d.presenter.OnStatus(fmt.Sprintf("Unable to connect to %s", addr))
		return &TransportError{Op: "dial", Addr: addr, Err: err}
	}

	d.conn = newConnection(rwc, addr)
	d.session.Connect(server)
	go d.conn.read(NewFramer(d.config.MaxLineLength, d.fallback), d.frames)

	d.presenter.OnStatus(fmt.Sprintf("Connecting to %s", addr))

	nick := d.session.Nick()
	if err := d.send(fmt.Sprintf("USER %s %s %s %s", d.session.User(), d.session.Host(), server, param(d.session.Name()))); err != nil {
		return err
	}
	if err := d.send("NICK " + nick); err != nil {
		return err
	}

	d.presenter.OnStatus(fmt.Sprintf("Using nickname %s", nick))

	return nil
}

// Disconnect sends QUIT and tears down the connection.
func (d *Dispatcher) Disconnect() error {
	if !d.session.Connected() {
		d.presenter.OnStatus("Not connected")
		return ErrNoConnection
	}

	if err := d.send("QUIT :" + d.config.QuitMessage); err != nil && d.conn == nil {
		// The connection was lost, and already torn down.
		return err
	}

	d.teardown()
	d.presenter.OnStatus("Disconnected")

	return nil
}

// Join sends JOIN for channel. The session is updated when the server confirms.
func (d *Dispatcher) Join(channel string) error {
	if !d.session.Connected() {
		d.presenter.OnStatus("Not connected")
		return ErrNoConnection
	}
	if d.session.Joined() || d.session.Joining() != "" {
		d.presenter.OnStatus("Already in a channel")
		return ErrAlreadyJoined
	}
	if channel == "" || strings.ContainsAny(channel, " ,\x07") {
		d.presenter.OnStatus("Usage: join <channel>")
		return ErrInvalidArgument
	}

	if err := d.send("JOIN " + channel); err != nil {
		return err
	}

	d.session.BeginJoin(channel)

	return nil
}

// Part leaves the joined channel.
func (d *Dispatcher) Part() error {
	if !d.session.Joined() {
		d.presenter.OnStatus("Not in a channel")
		return ErrNotJoined
	}

	channel := d.session.Channel()
	if err := d.send("PART " + channel); err != nil {
		return err
	}

	d.session.Part()
	d.rosterChanged()
	d.presenter.OnStatus(fmt.Sprintf("Left channel %s", channel))

	return nil
}

// SendChannelMessage sends text to the joined channel and echoes it.
func (d *Dispatcher) SendChannelMessage(text string) error {
	if !d.session.Joined() {
		d.presenter.OnStatus("Not in a channel")
		return ErrNotJoined
	}
	if text == "" {
		return ErrInvalidArgument
	}

	channel := d.session.Channel()
	if err := d.sendPrivmsg(channel, text); err != nil {
		return err
	}

	d.presenter.OnChannelMessage(d.session.Nick(), text)

	return nil
}

// SendPrivateMessage sends text to nick and echoes it.
func (d *Dispatcher) SendPrivateMessage(nick, text string) error {
	if !d.session.Connected() {
		d.presenter.OnStatus("Not connected")
		return ErrNoConnection
	}
	if nick == "" || strings.ContainsAny(nick, " ,") || text == "" {
		d.presenter.OnStatus("Usage: msg <nick> <message>")
		return ErrInvalidArgument
	}

	if err := d.sendPrivmsg(nick, text); err != nil {
		return err
	}

	d.presenter.OnChannelMessage(d.session.Nick(), fmt.Sprintf("[%s] %s", nick, text))

	return nil
}

// SetNick asks the server for a new nick. While disconnected it changes the nick used
// for the next login.
func (d *Dispatcher) SetNick(nick string) error {
	if nick == "" || strings.ContainsAny(nick, " ,:!@") {
		d.presenter.OnStatus("Usage: nick <new nick>")
		return ErrInvalidArgument
	}

	if !d.session.Connected() {
		d.session.SetNick(nick)
		d.presenter.OnStatus(fmt.Sprintf("Using nickname %s", nick))
		return nil
	}

	return d.send("NICK " + nick)
}

// RequestRoster sends NAMES for the joined channel.
func (d *Dispatcher) RequestRoster() error {
	if !d.session.Joined() {
		d.presenter.OnStatus("Not in a channel")
		return ErrNotJoined
	}

	return d.send("NAMES " + d.session.Channel())
}

// Close tears down the connection without saying goodbye.
func (d *Dispatcher) Close() {
	if d.conn != nil {
		d.teardown()
	}
}

func (d *Dispatcher) sendPrivmsg(target, text string) error {
	overhead := ircutil.Overhead(d.session.Nick(), d.session.User(), d.session.Host(), target, false)
	for _, cut := range ircutil.Cut(text, overhead) {
		if err := d.send(fmt.Sprintf("PRIVMSG %s :%s", target, cut)); err != nil {
			return err
		}
	}

	return nil
}

// send writes one line. A failed write tears the connection down.
func (d *Dispatcher) send(line string) error {
	if d.conn == nil {
		return ErrNoConnection
	}

	if err := d.limiter.Wait(d.ctx); err != nil {
		return err
	}

	if err := d.conn.write([]byte(line + "\n")); err != nil {
		d.lose()
		return err
	}

	d.presenter.OnDebugLine(DirectionOut, line)

	return nil
}

func (d *Dispatcher) lose() {
	if d.conn == nil {
		return
	}

	d.teardown()
	d.presenter.OnStatus("Connection lost")
}

func (d *Dispatcher) teardown() {
	conn := d.conn
	d.conn = nil
	_ = conn.close()

	wasJoined := d.session.Joined()
	d.session.Disconnect()
	if wasJoined {
		d.rosterChanged()
	}
}

func (d *Dispatcher) rosterChanged() {
	d.presenter.OnRosterChanged(d.session.Roster())
}

// param formats the last parameter of a line, adding the colon if it's needed.
func param(s string) string {
	if s == "" || strings.ContainsRune(s, ' ') || s[0] == ':' {
		return ":" + s
	}

	return s
}
