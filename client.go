package irc

import (
	"context"
	"sync"
)

// An Operator is what drives the session from the user's side. Both Client and
// Dispatcher implement it; handlers.Input maps typed commands onto it.
type Operator interface {
	Connect(server string, port int) error
	Disconnect() error
	Join(channel string) error
	Part() error
	SendChannelMessage(text string) error
	SendPrivateMessage(nick, text string) error
	SetNick(nick string) error
	RequestRoster() error
}

// NopOperator accepts every command and does nothing.
type NopOperator struct{}

func (NopOperator) Connect(string, int) error               { return nil }
func (NopOperator) Disconnect() error                       { return nil }
func (NopOperator) Join(string) error                       { return nil }
func (NopOperator) Part() error                             { return nil }
func (NopOperator) SendChannelMessage(string) error         { return nil }
func (NopOperator) SendPrivateMessage(string, string) error { return nil }
func (NopOperator) SetNick(string) error                    { return nil }
func (NopOperator) RequestRoster() error                    { return nil }

type request struct {
	run  func(dispatcher *Dispatcher) error
	done chan error
}

// A Client is an IRC client. You need to use New to construct it. All its methods are safe
// to call from any goroutine, but not from inside the presenter's callbacks.
type Client struct {
	dispatcher *Dispatcher

	ctx    context.Context
	cancel context.CancelFunc

	requests chan request
	done     chan struct{}

	mutex sync.RWMutex
	state State
}

// New creates a new client and starts its loop. The context can be context.Background if
// you want manually to tear down clients upon quitting.
func New(ctx context.Context, config Config, presenter Presenter) *Client {
	client := &Client{
		requests: make(chan request),
		done:     make(chan struct{}),
	}

	client.ctx, client.cancel = context.WithCancel(ctx)
	client.dispatcher = NewDispatcher(client.ctx, config, presenter)
	client.state = client.dispatcher.Session().State()

	go client.handleLoop()

	return client
}

// Context gets the client's context. It's cancelled if the parent context used
// in New is, or Destroy is called.
func (client *Client) Context() context.Context {
	return client.ctx
}

// State gets a snapshot of the session as of the last handled frame or command.
func (client *Client) State() State {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	return client.state
}

// Connect connects to server:port and logs in.
func (client *Client) Connect(server string, port int) error {
	return client.do(func(dispatcher *Dispatcher) error {
		return dispatcher.Connect(server, port)
	})
}

// Disconnect sends QUIT and closes the connection.
func (client *Client) Disconnect() error {
	return client.do((*Dispatcher).Disconnect)
}

// Join joins a channel. Only one channel can be joined at a time.
func (client *Client) Join(channel string) error {
	return client.do(func(dispatcher *Dispatcher) error {
		return dispatcher.Join(channel)
	})
}

// Part leaves the current channel.
func (client *Client) Part() error {
	return client.do((*Dispatcher).Part)
}

// SendChannelMessage sends a message to the current channel.
func (client *Client) SendChannelMessage(text string) error {
	return client.do(func(dispatcher *Dispatcher) error {
		return dispatcher.SendChannelMessage(text)
	})
}

// SendPrivateMessage sends a message to a nick.
func (client *Client) SendPrivateMessage(nick, text string) error {
	return client.do(func(dispatcher *Dispatcher) error {
		return dispatcher.SendPrivateMessage(nick, text)
	})
}

// SetNick changes nick.
func (client *Client) SetNick(nick string) error {
	return client.do(func(dispatcher *Dispatcher) error {
		return dispatcher.SetNick(nick)
	})
}

// RequestRoster asks the server for the current channel's names.
func (client *Client) RequestRoster() error {
	return client.do((*Dispatcher).RequestRoster)
}

// Quit parts the channel and disconnects if needed, then destroys the client. Failing
// to say goodbye doesn't stop the teardown.
func (client *Client) Quit() error {
	err := client.do(func(dispatcher *Dispatcher) error {
		if dispatcher.Session().Joined() {
			_ = dispatcher.Part()
		}
		if dispatcher.Session().Connected() {
			return dispatcher.Disconnect()
		}

		return nil
	})

	client.Destroy()

	if err == ErrClientDestroyed {
		return nil
	}

	return err
}

// Destroy destroys the client, which will close the connection without a QUIT. Cancelling
// the parent context will do the same. It returns once the loop has exited.
func (client *Client) Destroy() {
	client.cancel()
	<-client.done
}

// Destroyed returns true if the client has been destroyed, either by
// Destroy or the parent context.
func (client *Client) Destroyed() bool {
	select {
	case <-client.ctx.Done():
		return true
	default:
		return false
	}
}

// Done is closed when the client's loop has exited and the connection is released.
func (client *Client) Done() <-chan struct{} {
	return client.done
}

// do runs a command on the loop and waits for its result.
func (client *Client) do(run func(dispatcher *Dispatcher) error) error {
	req := request{run: run, done: make(chan error, 1)}

	select {
	case client.requests <- req:
	case <-client.ctx.Done():
		return ErrClientDestroyed
	}

	return <-req.done
}

func (client *Client) handleLoop() {
	defer close(client.done)

	for {
		select {
		case frame := <-client.dispatcher.Frames():
			{
				client.dispatcher.HandleFrame(frame)
			}
		case req := <-client.requests:
			{
				req.done <- req.run(client.dispatcher)
			}
		case <-client.ctx.Done():
			{
				goto end
			}
		}

		client.publish()
	}

end:

	client.dispatcher.Close()
	client.publish()
}

func (client *Client) publish() {
	state := client.dispatcher.Session().State()

	client.mutex.Lock()
	client.state = state
	client.mutex.Unlock()
}
