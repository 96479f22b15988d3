package ircutil

import (
	"strings"
	"unicode/utf8"
)

// LineLimit is the longest line a server accepts, excluding the line terminator.
const LineLimit = 510

// Overhead calculates the length a server adds around a `PRIVMSG` body when relaying it
// from nick!user@host to target. If ctcp is true, the CTCP delimiters and the `ACTION`
// verb are counted too.
func Overhead(nick, user, host, target string, ctcp bool) int {
	template := ":!@ PRIVMSG  :"
	if ctcp {
		template += "\x01ACTION \x01"
	}

	return len(template) + len(nick) + len(user) + len(host) + len(target)
}

// Cut splits text into pieces that fit in a line with the given overhead. It cuts on
// spaces where it can, and between runes where a word is too long. Joining the pieces
// with a space gives back the text if every cut was on a space.
func Cut(text string, overhead int) []string {
	limit := LineLimit - overhead
	if limit < 16 {
		limit = 16
	}
	if len(text) <= limit {
		return []string{text}
	}

	result := make([]string, 0, len(text)/limit+1)
	current := ""
	for _, word := range strings.Split(text, " ") {
		if current != "" && len(current)+1+len(word) > limit {
			result = append(result, current)
			current = ""
		}

		if current != "" {
			current += " "
		}

		for len(current)+len(word) > limit {
			cut := runeCut(word, limit-len(current))
			result = append(result, current+word[:cut])
			current = ""
			word = word[cut:]
		}

		current += word
	}

	return append(result, current)
}

// runeCut returns the largest index <= max that doesn't split a rune. Bytes that aren't
// UTF-8 are cut at max, so the result is never 0 for a positive max.
func runeCut(s string, max int) int {
	if max >= len(s) {
		return len(s)
	}

	for i := max; i > 0 && i > max-utf8.UTFMax; i-- {
		if utf8.RuneStart(s[i]) {
			return i
		}
	}

	return max
}
