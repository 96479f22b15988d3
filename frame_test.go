package irc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/charmap"

	"github.com/zeliboba/irc"
)

const frameStream = ":irc.example.net 001 Zeliboba :Welcome\r\nPING :abc123\n\n:alice!a@host PRIVMSG #test :hei på deg\n:bob!b@host JOIN #te"

func feedChunks(framer *irc.Framer, chunks []string) []string {
	lines := make([]string, 0, 8)
	for _, chunk := range chunks {
		lines = append(lines, framer.Feed([]byte(chunk))...)
	}

	return lines
}

func TestFramer_SplitInvariance(t *testing.T) {
	expected := []string{
		":irc.example.net 001 Zeliboba :Welcome",
		"PING :abc123",
		"",
		":alice!a@host PRIVMSG #test :hei på deg",
	}

	for size := 1; size <= len(frameStream); size++ {
		chunks := make([]string, 0, len(frameStream)/size+1)
		for i := 0; i < len(frameStream); i += size {
			end := i + size
			if end > len(frameStream) {
				end = len(frameStream)
			}
			chunks = append(chunks, frameStream[i:end])
		}

		framer := irc.NewFramer(0, nil)
		lines := feedChunks(framer, chunks)

		if !assert.Equal(t, expected, lines, "chunk size %d", size) {
			break
		}
		assert.Equal(t, len(":bob!b@host JOIN #te"), framer.Pending())

		assert.Equal(t, []string{":bob!b@host JOIN #test"}, framer.Feed([]byte("st\r\n")))
		assert.Equal(t, 0, framer.Pending())
	}
}

func TestFramer_PartialLine(t *testing.T) {
	framer := irc.NewFramer(0, nil)

	assert.Empty(t, framer.Feed([]byte("PING")))
	assert.Empty(t, framer.Feed([]byte(" :x")))
	assert.Equal(t, []string{"PING :x"}, framer.Feed([]byte("\r\nPI")))
	assert.Equal(t, 2, framer.Pending())

	framer.Reset()
	assert.Equal(t, 0, framer.Pending())
	assert.Equal(t, []string{"NG :y"}, framer.Feed([]byte("NG :y\n")))
}

func TestFramer_MultibyteSplit(t *testing.T) {
	data := []byte("PRIVMSG #test :blåbærsyltetøy\n")
	index := strings.Index(string(data), "å") + 1

	framer := irc.NewFramer(0, nil)
	assert.Empty(t, framer.Feed(data[:index]))
	assert.Equal(t, []string{"PRIVMSG #test :blåbærsyltetøy"}, framer.Feed(data[index:]))
}

func TestFramer_Fallback(t *testing.T) {
	latin1 := []byte("PRIVMSG #test :bl\xe5b\xe6r\n")

	framer := irc.NewFramer(0, charmap.ISO8859_1)
	assert.Equal(t, []string{"PRIVMSG #test :blåbær"}, framer.Feed(latin1))

	framer = irc.NewFramer(0, nil)
	assert.Equal(t, []string{"PRIVMSG #test :blbr"}, framer.Feed(latin1))
}

func TestFramer_MaxLength(t *testing.T) {
	framer := irc.NewFramer(16, nil)

	assert.Empty(t, framer.Feed([]byte("PRIVMSG #test :this is way")))
	assert.Equal(t, 0, framer.Pending())
	assert.Equal(t, []string{"PING :ok"}, framer.Feed([]byte(" too long\nPING :ok\n")))

	assert.Equal(t, []string{"PING :short"}, framer.Feed([]byte("PING :short\n")))
	assert.Empty(t, framer.Feed([]byte("PRIVMSG #test :this is way too long\n")))
}
