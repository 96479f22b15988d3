package irc_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeliboba/irc"
	"github.com/zeliboba/irc/internal/irctest"
)

func newTestDispatcher(t *testing.T, dial irc.DialFunc) (*irc.Dispatcher, *irctest.EventLog) {
	log := &irctest.EventLog{}
	dispatcher := irc.NewDispatcher(context.Background(), irc.Config{
		Nick:     "Zeliboba",
		User:     "zel",
		RealName: "Zeliboba Bot",
		Dial:     dial,
	}, log)
	t.Cleanup(dispatcher.Close)

	return dispatcher, log
}

func connectedDispatcher(t *testing.T) (*irc.Dispatcher, *irctest.Conn, *irctest.EventLog) {
	conn := irctest.NewConn()
	dispatcher, log := newTestDispatcher(t, conn.Dial)
	require.NoError(t, dispatcher.Connect("irc.example.net", 6667))

	return dispatcher, conn, log
}

func joinedDispatcher(t *testing.T) (*irc.Dispatcher, *irctest.Conn, *irctest.EventLog) {
	dispatcher, conn, log := connectedDispatcher(t)
	require.NoError(t, dispatcher.Join("#test"))
	dispatcher.HandleLine(":Zeliboba!zel@example.com JOIN #test")
	require.True(t, dispatcher.Session().Joined())

	return dispatcher, conn, log
}

func nextFrame(t *testing.T, dispatcher *irc.Dispatcher) irc.Frame {
	t.Helper()

	select {
	case frame := <-dispatcher.Frames():
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("no frame")
		return irc.Frame{}
	}
}

func countPrefix(lines []string, prefix string) int {
	count := 0
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			count++
		}
	}

	return count
}

func TestDispatcher_Connect(t *testing.T) {
	dispatcher, conn, log := connectedDispatcher(t)

	assert.Equal(t, []string{"USER zel localhost irc.example.net :Zeliboba Bot", "NICK Zeliboba"}, conn.Lines())
	assert.Equal(t, []string{"irc.example.net:6667"}, conn.Addrs())
	assert.Equal(t, []string{"Connecting to irc.example.net:6667", "Using nickname Zeliboba"}, log.Texts(irctest.KindStatus))
	assert.Equal(t, []string{"USER zel localhost irc.example.net :Zeliboba Bot", "NICK Zeliboba"}, log.Texts(irctest.KindDebug))
	assert.Equal(t, irc.DirectionOut, log.First(irctest.KindDebug).Direction)

	state := dispatcher.Session().State()
	assert.True(t, state.Connected)
	assert.Equal(t, "irc.example.net", state.Server)

	assert.Equal(t, irc.ErrAlreadyConnected, dispatcher.Connect("irc.example.net", 6667))
	assert.Equal(t, "Already connected", log.Last(irctest.KindStatus).Text)
	assert.Len(t, conn.Lines(), 2)
	assert.Len(t, conn.Addrs(), 1)
}

func TestDispatcher_ConnectFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	dispatcher, log := newTestDispatcher(t, func(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
		return nil, dialErr
	})

	err := dispatcher.Connect("irc.example.net", 6667)

	var transportErr *irc.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "dial", transportErr.Op)
	assert.True(t, errors.Is(err, dialErr))
	assert.Equal(t, "Unable to connect to irc.example.net:6667", log.Last(irctest.KindStatus).Text)
	assert.False(t, dispatcher.Session().Connected())

	assert.Equal(t, irc.ErrInvalidArgument, dispatcher.Connect("", 6667))
	assert.Equal(t, irc.ErrInvalidArgument, dispatcher.Connect("irc.example.net", 0))
}

func TestDispatcher_PingPong(t *testing.T) {
	dispatcher, conn, log := connectedDispatcher(t)
	log.Reset()

	dispatcher.HandleLine("PING xyz")

	assert.Equal(t, 1, countPrefix(conn.Lines(), "PONG"))
	assert.Equal(t, "PONG xyz", conn.Lines()[2])
	assert.Empty(t, log.Entries(irctest.KindStatus, irctest.KindChannel, irctest.KindPrivate, irctest.KindEmote, irctest.KindRoster))

	dispatcher.HandleLine(":irc.example.net PING :two words")
	assert.Equal(t, "PONG :two words", conn.Lines()[3])
}

func TestDispatcher_JoinGuard(t *testing.T) {
	dispatcher, conn, log := connectedDispatcher(t)

	require.NoError(t, dispatcher.Join("#a"))
	dispatcher.HandleLine(":Zeliboba!zel@example.com JOIN #a")
	assert.Equal(t, irc.ErrAlreadyJoined, dispatcher.Join("#a"))

	assert.Equal(t, 1, countPrefix(conn.Lines(), "JOIN #a"))
	assert.Equal(t, []string{"Joined channel #a", "Already in a channel"}, log.Texts(irctest.KindStatus)[2:])

	state := dispatcher.Session().State()
	assert.True(t, state.Joined)
	assert.Equal(t, "#a", state.Channel)
}

func TestDispatcher_JoinPending(t *testing.T) {
	dispatcher, conn, log := connectedDispatcher(t)

	require.NoError(t, dispatcher.Join("#banned"))
	assert.Equal(t, irc.ErrAlreadyJoined, dispatcher.Join("#banned"))
	assert.Equal(t, 1, countPrefix(conn.Lines(), "JOIN"))

	dispatcher.HandleLine(":irc.example.net 474 Zeliboba #banned :Cannot join channel (+b)")
	assert.Equal(t, "Unable to join #banned: Cannot join channel (+b)", log.Last(irctest.KindStatus).Text)
	assert.False(t, dispatcher.Session().Joined())

	require.NoError(t, dispatcher.Join("#test"))
	assert.Equal(t, 2, countPrefix(conn.Lines(), "JOIN"))
}

func TestDispatcher_JoinNotConnected(t *testing.T) {
	dispatcher, log := newTestDispatcher(t, irctest.NewConn().Dial)

	assert.Equal(t, irc.ErrNoConnection, dispatcher.Join("#test"))
	assert.Equal(t, "Not connected", log.Last(irctest.KindStatus).Text)
	assert.False(t, dispatcher.Session().Joined())
}

func TestDispatcher_RosterConsistency(t *testing.T) {
	dispatcher, _, log := joinedDispatcher(t)

	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #test :alice bob carol")
	dispatcher.HandleLine(":irc.example.net 366 Zeliboba #test :End of /NAMES list.")
	irctest.AssertRoster(t, dispatcher.Session().Roster(), "alice", "bob", "carol")

	dispatcher.HandleLine(":bob!b@example.com PART #test")
	irctest.AssertRoster(t, dispatcher.Session().Roster(), "alice", "carol")
	assert.Equal(t, "bob left the channel", log.Last(irctest.KindStatus).Text)

	dispatcher.HandleLine(":alice!a@example.com NICK alicia")
	irctest.AssertRoster(t, dispatcher.Session().Roster(), "alicia", "carol")
	irctest.AssertRoster(t, log.Last(irctest.KindRoster).Roster, "alicia", "carol")
	assert.Equal(t, "alice is now known as alicia", log.Last(irctest.KindStatus).Text)
	assert.Equal(t, "Zeliboba", dispatcher.Session().Nick())

	dispatcher.HandleLine(":dave!d@example.com JOIN #test")
	irctest.AssertRoster(t, dispatcher.Session().Roster(), "alicia", "carol", "dave")
	assert.Equal(t, "dave joined the channel", log.Last(irctest.KindStatus).Text)

	// Replies for other channels don't touch the roster.
	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #other :mallory")
	dispatcher.HandleLine(":eve!e@example.com JOIN #other")
	irctest.AssertRoster(t, dispatcher.Session().Roster(), "alicia", "carol", "dave")
}

func TestDispatcher_NamesAcrossReplies(t *testing.T) {
	dispatcher, _, _ := joinedDispatcher(t)

	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #test :@alice bob")
	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #test :+carol Zeliboba")
	dispatcher.HandleLine(":irc.example.net 366 Zeliboba #test :End of /NAMES list.")
	irctest.AssertRoster(t, dispatcher.Session().Roster(), "alice", "carol", "bob", "Zeliboba")

	users := dispatcher.Session().RosterUsers()
	assert.Equal(t, "@alice", users[0].PrefixedNick)
	assert.Equal(t, "+carol", users[1].PrefixedNick)

	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #test :bob Zeliboba")
	dispatcher.HandleLine(":irc.example.net 366 Zeliboba #test :End of /NAMES list.")
	irctest.AssertRoster(t, dispatcher.Session().Roster(), "bob", "Zeliboba")
}

func TestDispatcher_NickChange(t *testing.T) {
	dispatcher, conn, _ := joinedDispatcher(t)
	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #test :Zeliboba alice")

	require.NoError(t, dispatcher.SetNick("Zel"))
	assert.Equal(t, "NICK Zel", conn.Lines()[len(conn.Lines())-1])
	assert.Equal(t, "Zeliboba", dispatcher.Session().Nick())

	dispatcher.HandleLine(":Zeliboba!zel@example.com NICK :Zel")
	assert.Equal(t, "Zel", dispatcher.Session().Nick())
	irctest.AssertRoster(t, dispatcher.Session().Roster(), "alice", "Zel")

	assert.Equal(t, irc.ErrInvalidArgument, dispatcher.SetNick(""))
	assert.Equal(t, irc.ErrInvalidArgument, dispatcher.SetNick("two words"))
}

func TestDispatcher_NickChangeBeforeNames(t *testing.T) {
	dispatcher, _, log := joinedDispatcher(t)
	assert.Empty(t, dispatcher.Session().Roster())

	dispatcher.HandleLine(":Zeliboba!zel@example.com NICK Zel2")
	assert.Equal(t, "Zel2", dispatcher.Session().Nick())
	assert.Equal(t, []string{"Zel2"}, dispatcher.Session().Roster())
	assert.Equal(t, []string{"Zel2"}, log.Last(irctest.KindRoster).Roster)

	dispatcher.HandleLine(":alice!a@example.com NICK alice2")
	irctest.AssertRoster(t, dispatcher.Session().Roster(), "alice2", "Zel2")
}

func TestDispatcher_SetNickOffline(t *testing.T) {
	conn := irctest.NewConn()
	dispatcher, log := newTestDispatcher(t, conn.Dial)

	require.NoError(t, dispatcher.SetNick("Other"))
	assert.Equal(t, "Other", dispatcher.Session().Nick())
	assert.Equal(t, "Using nickname Other", log.Last(irctest.KindStatus).Text)
	assert.Empty(t, conn.Lines())

	require.NoError(t, dispatcher.Connect("irc.example.net", 6667))
	assert.Equal(t, "NICK Other", conn.Lines()[1])
}

func TestDispatcher_DisconnectResets(t *testing.T) {
	dispatcher, conn, log := joinedDispatcher(t)
	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #test :Zeliboba alice bob")
	log.Reset()

	require.NoError(t, dispatcher.Disconnect())

	state := dispatcher.Session().State()
	assert.False(t, state.Connected)
	assert.False(t, state.Joined)
	assert.Equal(t, "", state.Channel)
	assert.Equal(t, "", state.Server)
	assert.Empty(t, state.Roster)

	assert.Equal(t, 1, countPrefix(conn.Lines(), "QUIT"))
	assert.Equal(t, "QUIT :I'm quitting!", conn.Lines()[len(conn.Lines())-1])
	assert.True(t, conn.Closed())
	assert.Equal(t, "Disconnected", log.Last(irctest.KindStatus).Text)
	assert.Empty(t, log.Last(irctest.KindRoster).Roster)

	assert.Equal(t, irc.ErrNoConnection, dispatcher.Disconnect())
	assert.Equal(t, "Not connected", log.Last(irctest.KindStatus).Text)
	assert.Equal(t, 1, countPrefix(conn.Lines(), "QUIT"))
}

func TestDispatcher_MalformedLines(t *testing.T) {
	dispatcher, conn, log := joinedDispatcher(t)
	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #test :Zeliboba alice")
	before := dispatcher.Session().State()
	written := len(conn.Lines())
	log.Reset()

	for _, line := range []string{
		"",
		"   ",
		":irc.example.net",
		":irc.example.net FOO bar :baz",
		"PRIVMSG",
		"PING",
		":alice!a@example.com JOIN",
		":alice!a@example.com NICK",
		":irc.example.net 353 Zeliboba",
		":irc.example.net 366",
		"\x01\x01\x01",
	} {
		assert.NotPanics(t, func() { dispatcher.HandleLine(line) }, line)
	}

	assert.Equal(t, before, dispatcher.Session().State())
	assert.Len(t, conn.Lines(), written)
	assert.Empty(t, log.Entries(irctest.KindStatus, irctest.KindChannel, irctest.KindPrivate, irctest.KindEmote, irctest.KindRoster))
}

func TestDispatcher_Privmsg(t *testing.T) {
	dispatcher, conn, log := joinedDispatcher(t)

	dispatcher.HandleLine(":alice!a@example.com PRIVMSG #test :hello world")
	dispatcher.HandleLine(":alice!a@example.com PRIVMSG Zeliboba :psst")
	dispatcher.HandleLine(":alice!a@example.com PRIVMSG #test :\x01ACTION waves\x01")
	dispatcher.HandleLine(":alice!a@example.com PRIVMSG Zeliboba :\x01VERSION\x01")
	dispatcher.HandleLine(":alice!a@example.com PRIVMSG Zeliboba :\x01PING 12345\x01")

	assert.Equal(t, []irctest.Entry{{Kind: irctest.KindChannel, Nick: "alice", Text: "hello world"}}, log.Entries(irctest.KindChannel))
	assert.Equal(t, []irctest.Entry{{Kind: irctest.KindPrivate, Nick: "alice", Text: "psst"}}, log.Entries(irctest.KindPrivate))
	assert.Equal(t, []irctest.Entry{{Kind: irctest.KindEmote, Nick: "alice", Text: "waves"}}, log.Entries(irctest.KindEmote))
	assert.Equal(t, "Got CTCP PING from alice", log.Last(irctest.KindStatus).Text)
	assert.Equal(t, "NOTICE alice :\x01VERSION zeliboba-irc 1.0\x01", conn.Lines()[len(conn.Lines())-1])
}

func TestDispatcher_SendMessages(t *testing.T) {
	dispatcher, conn, log := connectedDispatcher(t)

	assert.Equal(t, irc.ErrNotJoined, dispatcher.SendChannelMessage("hi"))
	assert.Equal(t, "Not in a channel", log.Last(irctest.KindStatus).Text)

	require.NoError(t, dispatcher.SendPrivateMessage("alice", "psst"))
	assert.Equal(t, "PRIVMSG alice :psst", conn.Lines()[len(conn.Lines())-1])
	assert.Equal(t, irctest.Entry{Kind: irctest.KindChannel, Nick: "Zeliboba", Text: "[alice] psst"}, *log.Last(irctest.KindChannel))
	assert.Equal(t, irc.ErrInvalidArgument, dispatcher.SendPrivateMessage("", "psst"))

	require.NoError(t, dispatcher.Join("#test"))
	dispatcher.HandleLine(":Zeliboba!zel@example.com JOIN #test")

	require.NoError(t, dispatcher.SendChannelMessage("hello everyone"))
	assert.Equal(t, "PRIVMSG #test :hello everyone", conn.Lines()[len(conn.Lines())-1])
	assert.Equal(t, irctest.Entry{Kind: irctest.KindChannel, Nick: "Zeliboba", Text: "hello everyone"}, *log.Last(irctest.KindChannel))

	before := len(conn.Lines())
	require.NoError(t, dispatcher.SendChannelMessage(strings.Repeat("lorem ipsum ", 100)))
	cuts := conn.Lines()[before:]
	assert.True(t, len(cuts) > 1)
	for _, cut := range cuts {
		assert.True(t, strings.HasPrefix(cut, "PRIVMSG #test :"))
		assert.True(t, len(cut) <= 510, "%d bytes", len(cut))
	}

	require.NoError(t, dispatcher.RequestRoster())
	assert.Equal(t, "NAMES #test", conn.Lines()[len(conn.Lines())-1])
}

func TestDispatcher_Part(t *testing.T) {
	dispatcher, conn, log := joinedDispatcher(t)
	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #test :Zeliboba alice")

	require.NoError(t, dispatcher.Part())
	assert.Equal(t, "PART #test", conn.Lines()[len(conn.Lines())-1])
	assert.Equal(t, "Left channel #test", log.Last(irctest.KindStatus).Text)
	assert.Empty(t, log.Last(irctest.KindRoster).Roster)
	assert.False(t, dispatcher.Session().Joined())
	assert.Empty(t, dispatcher.Session().Roster())

	// The server's echo is ignored.
	statuses := len(log.Texts(irctest.KindStatus))
	dispatcher.HandleLine(":Zeliboba!zel@example.com PART #test")
	assert.Len(t, log.Texts(irctest.KindStatus), statuses)

	assert.Equal(t, irc.ErrNotJoined, dispatcher.Part())
	assert.Equal(t, irc.ErrNotJoined, dispatcher.RequestRoster())
}

func TestDispatcher_Frames(t *testing.T) {
	dispatcher, conn, log := connectedDispatcher(t)

	require.NoError(t, conn.Push("PI", "NG :x\r\n:irc.example.net 376 Zeliboba :End\n"))
	dispatcher.HandleFrame(nextFrame(t, dispatcher))
	dispatcher.HandleFrame(nextFrame(t, dispatcher))

	assert.Equal(t, "PONG x", conn.Lines()[2])
	assert.Equal(t, "MOTD received, ready for action", log.Last(irctest.KindStatus).Text)
	assert.Equal(t, []string{"PING :x", ":irc.example.net 376 Zeliboba :End"}, debugLines(log, irc.DirectionIn))
}

func TestDispatcher_ShortWrites(t *testing.T) {
	conn := irctest.NewConn()
	conn.ShortWrites(3)
	dispatcher, _ := newTestDispatcher(t, conn.Dial)

	require.NoError(t, dispatcher.Connect("irc.example.net", 6667))
	assert.Equal(t, []string{"USER zel localhost irc.example.net :Zeliboba Bot", "NICK Zeliboba"}, conn.Lines())
	assert.True(t, conn.Writes() > 2)
}

func TestDispatcher_WriteFailure(t *testing.T) {
	dispatcher, conn, log := joinedDispatcher(t)
	dispatcher.HandleLine(":irc.example.net 353 Zeliboba = #test :Zeliboba alice")

	conn.FailWrites()
	err := dispatcher.SendChannelMessage("hello?")

	var transportErr *irc.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "write", transportErr.Op)
	assert.Equal(t, "Connection lost", log.Last(irctest.KindStatus).Text)
	assert.Empty(t, log.Last(irctest.KindRoster).Roster)
	assert.Nil(t, log.Last(irctest.KindChannel))
	assert.True(t, conn.Closed())

	state := dispatcher.Session().State()
	assert.False(t, state.Connected)
	assert.False(t, state.Joined)

	assert.Equal(t, irc.ErrNoConnection, dispatcher.Disconnect())
}

func TestDispatcher_Hangup(t *testing.T) {
	dispatcher, conn, log := joinedDispatcher(t)

	conn.Hangup()
	frame := nextFrame(t, dispatcher)
	require.Error(t, frame.Err)
	assert.True(t, errors.Is(frame.Err, io.EOF))

	dispatcher.HandleFrame(frame)
	assert.Equal(t, "Connection lost", log.Last(irctest.KindStatus).Text)
	assert.False(t, dispatcher.Session().Connected())
	assert.True(t, conn.Closed())
}

func TestDispatcher_StaleFrames(t *testing.T) {
	conns := []*irctest.Conn{irctest.NewConn(), irctest.NewConn()}
	dials := 0
	dispatcher, _ := newTestDispatcher(t, func(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
		conn := conns[dials]
		dials++
		return conn, nil
	})

	require.NoError(t, dispatcher.Connect("irc.example.net", 6667))
	require.NoError(t, conns[0].Push("PING :old\n"))
	stale := nextFrame(t, dispatcher)

	require.NoError(t, dispatcher.Disconnect())
	require.NoError(t, dispatcher.Connect("irc.example.net", 6667))

	dispatcher.HandleFrame(stale)
	assert.Equal(t, 0, countPrefix(conns[1].Lines(), "PONG"))
	assert.Equal(t, 0, countPrefix(conns[0].Lines(), "PONG"))
}

func debugLines(log *irctest.EventLog, direction string) []string {
	lines := make([]string, 0, 4)
	for _, entry := range log.Entries(irctest.KindDebug) {
		if entry.Direction == direction {
			lines = append(lines, entry.Text)
		}
	}

	return lines
}
