package ircutil

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is used by ParseServer when the address has no port.
const DefaultPort = 6667

// ErrBadAddress is returned by ParseServer.
var ErrBadAddress = errors.New("ircutil: bad server address")

// ParseArgAndText parses a text like "alice stuff and things" into "alice"
// and "stuff and things". This is used by input commands that take a target
// followed by a message.
func ParseArgAndText(s string) (arg, text string) {
	s = strings.TrimLeft(s, " ")

	spaceIndex := strings.Index(s, " ")
	if spaceIndex == -1 {
		return s, ""
	}

	return s[:spaceIndex], strings.TrimLeft(s[spaceIndex+1:], " ")
}

// ParseServer parses "host:port", "host" or "[::1]:port" into a host and port.
func ParseServer(s string) (host string, port int, err error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t") {
		return "", 0, ErrBadAddress
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// No port, unless it's a bare IPv6 address with too many colons to tell.
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && len(s) > 2 {
			return s[1 : len(s)-1], DefaultPort, nil
		}
		if strings.Count(s, ":") > 1 && !strings.HasPrefix(s, "[") {
			return s, DefaultPort, nil
		}
		if strings.Contains(s, ":") {
			return "", 0, ErrBadAddress
		}

		return s, DefaultPort, nil
	}

	port, err = strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 || host == "" {
		return "", 0, ErrBadAddress
	}

	return host, port, nil
}
