package irc

import (
	"strings"

	"github.com/zeliboba/irc/list"
)

// A Session holds the client's identity, connection and channel state. At most one channel
// is tracked. It's not thread safe; only the dispatcher touches it.
type Session struct {
	nick    string
	user    string
	name    string
	host    string
	server  string
	channel string
	joining string
	joined  bool
	listing bool
	roster  *list.List
}

// NewSession creates a disconnected session with the login identity from the config.
func NewSession(config Config) *Session {
	config = config.WithDefaults()

	return &Session{
		nick:   config.Nick,
		user:   config.User,
		name:   config.RealName,
		host:   config.Host,
		roster: list.New(),
	}
}

// Nick gets the current nick.
func (session *Session) Nick() string {
	return session.nick
}

// User gets the user/ident.
func (session *Session) User() string {
	return session.user
}

// Name gets the real name.
func (session *Session) Name() string {
	return session.name
}

// Host gets the hostname sent on login.
func (session *Session) Host() string {
	return session.host
}

// Server gets the server, or an empty string when disconnected.
func (session *Session) Server() string {
	return session.server
}

// Connected returns true if the session has a server.
func (session *Session) Connected() bool {
	return session.server != ""
}

// Channel gets the joined channel, or an empty string.
func (session *Session) Channel() string {
	return session.channel
}

// Joined returns true if a channel is joined.
func (session *Session) Joined() bool {
	return session.joined
}

// IsSelf returns true if nick is the session's nick.
func (session *Session) IsSelf(nick string) bool {
	return strings.EqualFold(nick, session.nick)
}

// IsChannel returns true if name is the joined channel.
func (session *Session) IsChannel(name string) bool {
	return session.joined && strings.EqualFold(name, session.channel)
}

// Connect marks the session as connected to server.
func (session *Session) Connect(server string) {
	session.server = server
}

// Disconnect clears the server and the channel state.
func (session *Session) Disconnect() {
	session.server = ""
	session.joining = ""
	session.Part()
}

// Joining gets the channel a JOIN was sent for, until the server answers.
func (session *Session) Joining() string {
	return session.joining
}

// BeginJoin records that a JOIN was sent for channel.
func (session *Session) BeginJoin(channel string) {
	session.joining = channel
}

// AbortJoin forgets the pending JOIN, if it was for channel. It returns false if it
// wasn't.
func (session *Session) AbortJoin(channel string) bool {
	if session.joining == "" || !strings.EqualFold(session.joining, channel) {
		return false
	}

	session.joining = ""
	return true
}

// Join marks channel as joined. It returns false if a channel is already joined.
func (session *Session) Join(channel string) bool {
	if session.joined {
		return false
	}

	session.joining = ""
	session.joined = true
	session.channel = channel
	session.roster.Clear()
	session.listing = false

	return true
}

// Part leaves the channel and clears the roster.
func (session *Session) Part() {
	session.joined = false
	session.channel = ""
	session.listing = false
	session.roster.Clear()
}

// SetNick changes the session's own nick.
func (session *Session) SetNick(nick string) {
	session.nick = nick
}

// AddUser adds nick to the roster. It's ignored when no channel is joined.
func (session *Session) AddUser(nick string) bool {
	if !session.joined {
		return false
	}

	return session.roster.InsertFromNamesToken(nick)
}

// RemoveUser removes nick from the roster.
func (session *Session) RemoveUser(nick string) bool {
	return session.roster.Remove(nick)
}

// RenameUser renames a roster entry.
func (session *Session) RenameUser(from, to string) bool {
	return session.roster.Rename(from, to)
}

// AddNames applies one name-list reply. The first reply after a finished listing replaces
// the roster, later ones add to it until EndNames.
func (session *Session) AddNames(tokens []string) bool {
	if !session.joined {
		return false
	}

	if !session.listing {
		session.roster.Clear()
		session.listing = true
	}
	for _, token := range tokens {
		session.roster.InsertFromNamesToken(token)
	}

	return true
}

// EndNames finishes a name listing.
func (session *Session) EndNames() {
	session.listing = false
}

// Roster gets the bare nicks in the roster, highest rank first.
func (session *Session) Roster() []string {
	return session.roster.Nicks()
}

// RosterUsers gets the roster entries with their prefixes.
func (session *Session) RosterUsers() []list.User {
	return session.roster.Users()
}

// State gets a snapshot of the session.
func (session *Session) State() State {
	return State{
		Nick:      session.nick,
		User:      session.user,
		Host:      session.host,
		Server:    session.server,
		Channel:   session.channel,
		Connected: session.Connected(),
		Joined:    session.joined,
		Roster:    session.roster.Users(),
	}
}

// State is a snapshot of a session that's safe to pass around.
type State struct {
	Nick      string      `json:"nick"`
	User      string      `json:"user"`
	Host      string      `json:"host"`
	Server    string      `json:"server"`
	Channel   string      `json:"channel"`
	Connected bool        `json:"connected"`
	Joined    bool        `json:"joined"`
	Roster    []list.User `json:"roster"`
}

// Nicks gets the bare nicks of the roster.
func (state State) Nicks() []string {
	nicks := make([]string, len(state.Roster))
	for i, user := range state.Roster {
		nicks[i] = user.Nick
	}

	return nicks
}
