package irc

import (
	"errors"
	"fmt"
)

// ErrNoConnection is returned if you try to do something requiring a connection,
// but there is none.
var ErrNoConnection = errors.New("irc: no connection")

// ErrAlreadyConnected is returned by Connect if the client is connected.
var ErrAlreadyConnected = errors.New("irc: already connected")

// ErrAlreadyJoined is returned by Join while a channel is joined. Only one channel
// is tracked at a time.
var ErrAlreadyJoined = errors.New("irc: already in a channel")

// ErrNotJoined is returned by operations that need a joined channel.
var ErrNotJoined = errors.New("irc: not in a channel")

// ErrInvalidArgument is returned by operator commands given an empty or malformed
// argument.
var ErrInvalidArgument = errors.New("irc: invalid argument")

// ErrEmptyLine is returned by ParseMessage for lines without any tokens.
var ErrEmptyLine = errors.New("irc: empty line")

// ErrIncompleteMessage is returned by ParseMessage if there's a prefix but no command.
var ErrIncompleteMessage = errors.New("irc: incomplete message")

// ErrClientDestroyed is returned by client operations after Destroy.
var ErrClientDestroyed = errors.New("irc: client destroyed")

// ErrUnknownEncoding is returned by LookupEncoding.
var ErrUnknownEncoding = errors.New("irc: unknown encoding")

// A TransportError is a failure to dial, read or write the connection. It's never fatal
// to the client, the connection is torn down and the client can connect again.
type TransportError struct {
	Op   string
	Addr string
	Err  error
}

func (err *TransportError) Error() string {
	if err.Addr == "" {
		return fmt.Sprintf("irc: %s: %s", err.Op, err.Err)
	}

	return fmt.Sprintf("irc: %s %s: %s", err.Op, err.Addr, err.Err)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}
