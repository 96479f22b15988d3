package irc

import (
	"context"
	"io"
	"net"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// A DialFunc opens the transport to addr ("host:port"). Any io.ReadWriteCloser carrying
// newline-delimited lines will do.
type DialFunc func(ctx context.Context, addr string) (io.ReadWriteCloser, error)

// The Config for an IRC client.
type Config struct {
	// The nick that you go by. By default it's "IrcUser"
	Nick string `json:"nick"`

	// User is sent in the USER command. By default it's the nick.
	User string `json:"user"`

	// Host is the hostname sent in the USER command. By default "localhost"
	Host string `json:"host"`

	// RealName is the last USER parameter. By default it's the user.
	RealName string `json:"realName"`

	// QuitMessage is sent along with QUIT on disconnect.
	QuitMessage string `json:"quitMessage"`

	// Version is the reply to a CTCP VERSION query.
	Version string `json:"version"`

	// SendRate limits outgoing lines per second. Zero means no limit.
	SendRate float64 `json:"sendRate"`

	// SendBurst is how many lines may be sent at once before SendRate kicks in.
	SendBurst int `json:"sendBurst"`

	// MaxLineLength caps how many bytes of an unterminated line are kept. Longer
	// lines are dropped.
	MaxLineLength int `json:"maxLineLength"`

	// FallbackEncoding is used for received lines that aren't valid UTF-8. One of
	// "latin1", "cp1252", "cp1251" or "koi8-r". If empty, invalid bytes are dropped.
	FallbackEncoding string `json:"fallbackEncoding"`

	// DialTimeout is how long to wait for the TCP connection. Default 10s.
	DialTimeout time.Duration `json:"dialTimeout"`

	// Dial replaces the default TCP dialer, e.g. for tests.
	Dial DialFunc `json:"-"`
}

// WithDefaults returns the config with the default values
func (config Config) WithDefaults() Config {
	if config.Nick == "" {
		config.Nick = "IrcUser"
	}
	if config.User == "" {
		config.User = config.Nick
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.RealName == "" {
		config.RealName = config.User
	}
	if config.QuitMessage == "" {
		config.QuitMessage = "I'm quitting!"
	}
	if config.Version == "" {
		config.Version = "zeliboba-irc 1.0"
	}
	if config.SendBurst <= 0 {
		config.SendBurst = 5
	}
	if config.MaxLineLength <= 0 {
		config.MaxLineLength = 8192
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = 10 * time.Second
	}
	if config.Dial == nil {
		timeout := config.DialTimeout
		config.Dial = func(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
			dialer := net.Dialer{Timeout: timeout}
			return dialer.DialContext(ctx, "tcp", addr)
		}
	}

	return config
}

var fallbackEncodings = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"cp1251":       charmap.Windows1251,
	"windows-1251": charmap.Windows1251,
	"koi8-r":       charmap.KOI8R,
	"koi8r":        charmap.KOI8R,
}

// LookupEncoding finds a fallback encoding by name. An empty name gives a nil encoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}

	enc, ok := fallbackEncodings[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownEncoding
	}

	return enc, nil
}
