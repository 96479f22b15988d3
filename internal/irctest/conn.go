package irctest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrWriteFailed is returned by Conn.Write after FailWrites.
var ErrWriteFailed = errors.New("irctest: write failed")

// A Conn is an in-memory transport. What the test pushes is read by the client, and
// what the client writes is recorded.
type Conn struct {
	reader *io.PipeReader
	writer *io.PipeWriter

	mutex      sync.Mutex
	written    bytes.Buffer
	writes     int
	maxWrite   int
	failWrites bool
	closed     bool
	addrs      []string
}

// NewConn creates a connection with nothing to read yet.
func NewConn() *Conn {
	reader, writer := io.Pipe()

	return &Conn{reader: reader, writer: writer}
}

// Dial can be used as the client's dial function. It records the address.
func (conn *Conn) Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	conn.mutex.Lock()
	conn.addrs = append(conn.addrs, addr)
	conn.mutex.Unlock()

	return conn, nil
}

// Addrs gets the addresses Dial was called with.
func (conn *Conn) Addrs() []string {
	conn.mutex.Lock()
	defer conn.mutex.Unlock()

	return append([]string(nil), conn.addrs...)
}

// Push makes each chunk available to the reader as it is, in order. It blocks until the
// reader has consumed them.
func (conn *Conn) Push(chunks ...string) error {
	for _, chunk := range chunks {
		if _, err := conn.writer.Write([]byte(chunk)); err != nil {
			return err
		}
	}

	return nil
}

// Hangup ends the stream from the server's side.
func (conn *Conn) Hangup() {
	_ = conn.writer.Close()
}

// ShortWrites makes every write accept at most n bytes.
func (conn *Conn) ShortWrites(n int) {
	conn.mutex.Lock()
	conn.maxWrite = n
	conn.mutex.Unlock()
}

// FailWrites makes every following write fail.
func (conn *Conn) FailWrites() {
	conn.mutex.Lock()
	conn.failWrites = true
	conn.mutex.Unlock()
}

func (conn *Conn) Read(p []byte) (int, error) {
	return conn.reader.Read(p)
}

func (conn *Conn) Write(p []byte) (int, error) {
	conn.mutex.Lock()
	defer conn.mutex.Unlock()

	if conn.closed {
		return 0, io.ErrClosedPipe
	}
	if conn.failWrites {
		return 0, ErrWriteFailed
	}

	if conn.maxWrite > 0 && len(p) > conn.maxWrite {
		p = p[:conn.maxWrite]
	}

	conn.writes++
	return conn.written.Write(p)
}

// Close unblocks a pending read.
func (conn *Conn) Close() error {
	conn.mutex.Lock()
	conn.closed = true
	conn.mutex.Unlock()

	return conn.reader.Close()
}

// Closed returns true if Close has been called.
func (conn *Conn) Closed() bool {
	conn.mutex.Lock()
	defer conn.mutex.Unlock()

	return conn.closed
}

// Writes counts the calls to Write that were accepted.
func (conn *Conn) Writes() int {
	conn.mutex.Lock()
	defer conn.mutex.Unlock()

	return conn.writes
}

// Lines gets the lines written so far, without terminators.
func (conn *Conn) Lines() []string {
	conn.mutex.Lock()
	defer conn.mutex.Unlock()

	data := conn.written.String()
	if data == "" {
		return []string{}
	}

	lines := strings.Split(strings.TrimSuffix(data, "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	return lines
}
