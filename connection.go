package irc

import (
	"errors"
	"io"
	"sync"
)

// A Frame is a line read from a connection, or the end of its stream if Err is set.
type Frame struct {
	Line string
	Err  error

	conn *connection
}

type connection struct {
	rwc  io.ReadWriteCloser
	addr string

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func newConnection(rwc io.ReadWriteCloser, addr string) *connection {
	return &connection{
		rwc:  rwc,
		addr: addr,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// read feeds the framer until the stream ends or close is called. The stop signal is
// checked before every read and while waiting on the frame channel.
func (conn *connection) read(framer *Framer, frames chan<- Frame) {
	defer close(conn.done)

	buffer := make([]byte, 1024)
	for {
		select {
		case <-conn.stop:
			return
		default:
		}

		n, err := conn.rwc.Read(buffer)
		for _, line := range framer.Feed(buffer[:n]) {
			if !conn.emit(frames, Frame{Line: line, conn: conn}) {
				return
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.EOF
			}

			conn.emit(frames, Frame{Err: &TransportError{Op: "read", Addr: conn.addr, Err: err}, conn: conn})
			return
		}
	}
}

func (conn *connection) emit(frames chan<- Frame, frame Frame) bool {
	select {
	case <-conn.stop:
		return false
	default:
	}

	select {
	case frames <- frame:
		return true
	case <-conn.stop:
		return false
	}
}

// write writes all of data, retrying on short writes.
func (conn *connection) write(data []byte) error {
	for written := 0; written < len(data); {
		n, err := conn.rwc.Write(data[written:])
		if err == nil && n <= 0 {
			err = io.ErrShortWrite
		}
		if err != nil {
			return &TransportError{Op: "write", Addr: conn.addr, Err: err}
		}

		written += n
	}

	return nil
}

// close signals the reader to stop, releases the transport and waits for the reader to
// exit. It's safe to call more than once.
func (conn *connection) close() (err error) {
	conn.once.Do(func() {
		close(conn.stop)
		err = conn.rwc.Close()
		<-conn.done
	})

	return err
}
