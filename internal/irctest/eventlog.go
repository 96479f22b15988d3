package irctest

import "sync"

// Kinds of entries in an EventLog, one per presenter callback.
const (
	KindStatus  = "status"
	KindChannel = "channel"
	KindPrivate = "private"
	KindEmote   = "emote"
	KindRoster  = "roster"
	KindDebug   = "debug"
)

// An Entry is one presenter call.
type Entry struct {
	Kind      string
	Nick      string
	Text      string
	Direction string
	Roster    []string
}

// An EventLog is a presenter that records everything. It's safe to read from the test
// while the client is running.
type EventLog struct {
	mutex   sync.Mutex
	entries []Entry
}

func (l *EventLog) add(entry Entry) {
	l.mutex.Lock()
	l.entries = append(l.entries, entry)
	l.mutex.Unlock()
}

func (l *EventLog) OnStatus(text string) {
	l.add(Entry{Kind: KindStatus, Text: text})
}

func (l *EventLog) OnChannelMessage(nick, text string) {
	l.add(Entry{Kind: KindChannel, Nick: nick, Text: text})
}

func (l *EventLog) OnPrivateMessage(nick, text string) {
	l.add(Entry{Kind: KindPrivate, Nick: nick, Text: text})
}

func (l *EventLog) OnEmote(nick, text string) {
	l.add(Entry{Kind: KindEmote, Nick: nick, Text: text})
}

func (l *EventLog) OnRosterChanged(roster []string) {
	l.add(Entry{Kind: KindRoster, Roster: append([]string{}, roster...)})
}

func (l *EventLog) OnDebugLine(direction, line string) {
	l.add(Entry{Kind: KindDebug, Direction: direction, Text: line})
}

// Entries gets all entries, or the entries of the given kinds.
func (l *EventLog) Entries(kinds ...string) []Entry {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	result := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		if len(kinds) == 0 || contains(kinds, entry.Kind) {
			result = append(result, entry)
		}
	}

	return result
}

// Texts gets the text of every entry of a kind.
func (l *EventLog) Texts(kind string) []string {
	entries := l.Entries(kind)
	texts := make([]string, 0, len(entries))
	for _, entry := range entries {
		texts = append(texts, entry.Text)
	}

	return texts
}

// First gets the first entry of a kind.
func (l *EventLog) First(kind string) *Entry {
	entries := l.Entries(kind)
	if len(entries) == 0 {
		return nil
	}

	return &entries[0]
}

// Last gets the last entry of a kind.
func (l *EventLog) Last(kind string) *Entry {
	entries := l.Entries(kind)
	if len(entries) == 0 {
		return nil
	}

	return &entries[len(entries)-1]
}

// Reset forgets everything.
func (l *EventLog) Reset() {
	l.mutex.Lock()
	l.entries = nil
	l.mutex.Unlock()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}

	return false
}
