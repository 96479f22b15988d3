package irc

import "strings"

// An Input is a line typed by the operator. Lines starting with a slash are commands,
// everything else has the verb "text".
type Input struct {
	Verb string
	Text string
}

// ParseInput parses an input line. The verb is lower-cased and the text keeps its
// spacing.
func ParseInput(line string) Input {
	if strings.HasPrefix(line, "/") && !strings.HasPrefix(line, "//") {
		split := strings.SplitN(line[1:], " ", 2)
		input := Input{Verb: strings.ToLower(split[0])}
		if len(split) == 2 {
			input.Text = strings.TrimSpace(split[1])
		}

		return input
	}

	// A double slash escapes a message that starts with a slash.
	if strings.HasPrefix(line, "//") {
		line = line[1:]
	}

	return Input{Verb: "text", Text: line}
}
