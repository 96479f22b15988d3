package irc

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
)

// A Framer turns a fragmented byte stream into complete lines. Bytes are kept
// until their terminator arrives, so multi-byte characters split across reads are
// decoded intact. It's not thread safe; a connection's reader owns one.
type Framer struct {
	buffer     []byte
	maxLength  int
	fallback   encoding.Encoding
	discarding bool
}

// NewFramer creates a framer. Partial lines longer than maxLength bytes are dropped
// (0 means no cap). Complete lines that aren't valid UTF-8 are decoded with fallback,
// or have the invalid bytes dropped if fallback is nil.
func NewFramer(maxLength int, fallback encoding.Encoding) *Framer {
	return &Framer{
		buffer:    make([]byte, 0, 512),
		maxLength: maxLength,
		fallback:  fallback,
	}
}

// Feed appends the chunk and returns the lines it completed, in order, right-trimmed
// of whitespace. Empty lines are returned too. The remainder is kept for the next call.
func (framer *Framer) Feed(chunk []byte) []string {
	var lines []string

	for len(chunk) > 0 {
		index := bytes.IndexByte(chunk, '\n')
		if index == -1 {
			framer.grow(chunk)
			break
		}

		if framer.discarding {
			framer.discarding = false
		} else {
			framer.grow(chunk[:index])
			if !framer.discarding {
				lines = append(lines, framer.decode(framer.buffer))
			}
			framer.discarding = false
		}

		framer.buffer = framer.buffer[:0]
		chunk = chunk[index+1:]
	}

	return lines
}

// Pending returns how many bytes of an unterminated line are held.
func (framer *Framer) Pending() int {
	return len(framer.buffer)
}

// Reset drops any held bytes.
func (framer *Framer) Reset() {
	framer.buffer = framer.buffer[:0]
	framer.discarding = false
}

func (framer *Framer) grow(data []byte) {
	if framer.discarding {
		return
	}

	if framer.maxLength > 0 && len(framer.buffer)+len(data) > framer.maxLength {
		framer.buffer = framer.buffer[:0]
		framer.discarding = true
		return
	}

	framer.buffer = append(framer.buffer, data...)
}

func (framer *Framer) decode(line []byte) string {
	var text string

	if utf8.Valid(line) {
		text = string(line)
	} else if framer.fallback != nil {
		decoded, err := framer.fallback.NewDecoder().Bytes(line)
		if err != nil {
			text = strings.ToValidUTF8(string(line), "")
		} else {
			text = string(decoded)
		}
	} else {
		text = strings.ToValidUTF8(string(line), "")
	}

	return strings.TrimRightFunc(text, unicode.IsSpace)
}
