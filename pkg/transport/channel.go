package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rhuss/dockhand/pkg/debug"
)

// Notification is one unit delivered by a Channel: either a raw chunk or the
// completion signal. Done is set on exactly one notification, the last one.
// Err is set on completion when the body could not be read to the end.
type Notification struct {
	Chunk []byte
	Done  bool
	Err   error
}

// Channel is an open streaming response. Chunks are newline-delimited JSON
// documents and are delivered strictly in the order the daemon wrote them.
//
// A Channel releases its resources on its own once completion has been
// delivered. Cancel releases them early and is safe to call at any time,
// any number of times.
type Channel struct {
	body   io.ReadCloser
	cancel context.CancelFunc

	notes    chan Notification
	stop     chan struct{}
	released chan struct{}

	stopOnce    sync.Once
	releaseOnce sync.Once
}

func newChannel(body io.ReadCloser, cancel context.CancelFunc) *Channel {
	ch := &Channel{
		body:     body,
		cancel:   cancel,
		notes:    make(chan Notification),
		stop:     make(chan struct{}),
		released: make(chan struct{}),
	}
	go ch.pump()
	return ch
}

// Notifications returns the delivery path of this channel.
func (c *Channel) Notifications() <-chan Notification {
	return c.notes
}

// Cancel stops delivery and releases the connection. Idempotent.
func (c *Channel) Cancel() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.release()
}

// Released is closed once the connection has been released, either by
// Cancel or after completion was delivered.
func (c *Channel) Released() <-chan struct{} {
	return c.released
}

func (c *Channel) release() {
	c.releaseOnce.Do(func() {
		c.cancel()
		c.body.Close()
		close(c.released)
		debug.Log(debug.CategoryTransport, "stream channel released")
	})
}

func (c *Channel) pump() {
	defer c.release()

	r := bufio.NewReader(c.body)
	for {
		line, err := r.ReadBytes('\n')
		if chunk := bytes.TrimSpace(line); len(chunk) > 0 {
			debug.Raw(debug.CategoryTransport, string(chunk))
			if !c.send(Notification{Chunk: chunk}) {
				return
			}
		}
		if err != nil {
			done := Notification{Done: true}
			if !errors.Is(err, io.EOF) {
				done.Err = MapNetworkError(err)
			}
			c.send(done)
			return
		}
	}
}

// send delivers n unless the channel was cancelled first.
func (c *Channel) send(n Notification) bool {
	select {
	case <-c.stop:
		return false
	default:
	}
	select {
	case c.notes <- n:
		return true
	case <-c.stop:
		return false
	}
}
