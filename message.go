package irc

import (
	"encoding/json"
	"strings"
)

// A Kind is one of the commands the client acts on. Anything else is KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindPing
	KindPrivmsg
	KindJoin
	KindPart
	KindNick
	KindNamesReply
	KindEndOfNames
	KindEndOfMOTD
	KindJoinFailed
)

var kinds = map[string]Kind{
	"PING":    KindPing,
	"PRIVMSG": KindPrivmsg,
	"JOIN":    KindJoin,
	"PART":    KindPart,
	"NICK":    KindNick,
	"353":     KindNamesReply,
	"366":     KindEndOfNames,
	"376":     KindEndOfMOTD,

	// ERR_NOSUCHCHANNEL, ERR_TOOMANYCHANNELS, ERR_CHANNELISFULL, ERR_INVITEONLYCHAN,
	// ERR_BANNEDFROMCHAN, ERR_BADCHANNELKEY, ERR_BADCHANMASK, ERR_NEEDREGGEDNICK
	"403": KindJoinFailed,
	"405": KindJoinFailed,
	"471": KindJoinFailed,
	"473": KindJoinFailed,
	"474": KindJoinFailed,
	"475": KindJoinFailed,
	"476": KindJoinFailed,
	"477": KindJoinFailed,
}

var kindNames = []string{"UNKNOWN", "PING", "PRIVMSG", "JOIN", "PART", "NICK", "NAMREPLY", "ENDOFNAMES", "ENDOFMOTD", "JOINFAILED"}

// minArgs is the number of arguments a kind needs to be acted on.
var minArgs = map[Kind]int{
	KindPing:       1,
	KindPrivmsg:    2,
	KindJoin:       1,
	KindPart:       1,
	KindNick:       1,
	KindNamesReply: 4,
	KindEndOfNames: 2,
	KindJoinFailed: 2,
}

func (kind Kind) String() string {
	if kind < 0 || int(kind) >= len(kindNames) {
		return kindNames[0]
	}

	return kindNames[kind]
}

// A Message is one decoded protocol line.
type Message struct {
	Prefix  string
	Command string
	Args    []string
	Kind    Kind
}

// ParseMessage decodes a line on the form `[:prefix] command *(arg) [:trailing]`.
//
// A line without the leading colon whose first token can't be a command (letters, or
// three digits) is read as having a bare prefix, e.g. `irc.example.net NOTICE * :hi`.
// A bare prefix made of letters only can't be told apart from a command, so
// `irc NOTICE * :hi` decodes with the command `irc`.
func ParseMessage(line string) (Message, error) {
	message := Message{}

	rest := strings.TrimLeft(line, " ")
	if rest == "" {
		return message, ErrEmptyLine
	}

	if rest[0] == ':' {
		split := strings.SplitN(rest[1:], " ", 2)
		if len(split) < 2 || strings.TrimSpace(split[1]) == "" {
			return message, ErrIncompleteMessage
		}

		message.Prefix = split[0]
		rest = split[1]
	} else if split := strings.SplitN(rest, " ", 2); len(split) == 2 && !isCommandToken(split[0]) {
		message.Prefix = split[0]
		rest = split[1]
	}

	var tokens []string
	if split := strings.SplitN(rest, " :", 2); len(split) == 2 {
		tokens = append(strings.Fields(split[0]), split[1])
	} else {
		tokens = strings.Fields(rest)
	}

	if len(tokens) == 0 {
		return message, ErrEmptyLine
	}

	message.Command = tokens[0]
	message.Args = tokens[1:]
	message.Kind = kinds[message.Command]

	return message, nil
}

// Nick gets the nick part of a `nick!user@host` prefix, or the whole prefix if it has
// no `!`.
func (message *Message) Nick() string {
	if index := strings.IndexByte(message.Prefix, '!'); index != -1 {
		return message.Prefix[:index]
	}

	return message.Prefix
}

// Arg gets the argument at index, or an empty string if it's out of range.
func (message *Message) Arg(index int) string {
	if index < 0 || index >= len(message.Args) {
		return ""
	}

	return message.Args[index]
}

// Valid returns true if the message has the arguments its kind needs.
func (message *Message) Valid() bool {
	return len(message.Args) >= minArgs[message.Kind]
}

// MarshalJSON makes a JSON object from the message.
func (message *Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"prefix":  message.Prefix,
		"command": message.Command,
		"args":    message.Args,
		"kind":    message.Kind.String(),
	})
}

// ParseCTCP splits a CTCP body (`\x01VERB args\x01`) into its verb and arguments.
// ok is false if text isn't a CTCP body.
func ParseCTCP(text string) (verb, args string, ok bool) {
	if !strings.HasPrefix(text, "\x01") {
		return "", "", false
	}

	fields := strings.SplitN(strings.Trim(strings.ReplaceAll(text, "\x01", ""), " "), " ", 2)
	if fields[0] == "" {
		return "", "", false
	}

	verb = strings.ToUpper(fields[0])
	if len(fields) == 2 {
		args = fields[1]
	}

	return verb, args, true
}

func isCommandToken(token string) bool {
	if len(token) == 3 && isDigits(token) {
		return true
	}

	for _, ch := range token {
		if (ch < 'A' || ch > 'Z') && (ch < 'a' || ch > 'z') {
			return false
		}
	}

	return token != ""
}

func isDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}

	return true
}
