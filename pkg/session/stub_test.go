package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/transport"
)

const testTimeout = 2 * time.Second

// stubChannel is a transport channel fed by the test.
type stubChannel struct {
	notes     chan transport.Notification
	cancels   atomic.Int32
	cancelled chan struct{}
	once      sync.Once
}

func newStubChannel() *stubChannel {
	return &stubChannel{
		notes:     make(chan transport.Notification),
		cancelled: make(chan struct{}),
	}
}

func (c *stubChannel) Notifications() <-chan transport.Notification { return c.notes }

func (c *stubChannel) Cancel() {
	c.cancels.Add(1)
	c.once.Do(func() { close(c.cancelled) })
}

// push hands n to the session and fails if nobody takes it.
func (c *stubChannel) push(t *testing.T, n transport.Notification) {
	t.Helper()
	select {
	case c.notes <- n:
	case <-time.After(testTimeout):
		t.Fatalf("session did not take notification %+v", n)
	}
}

func (c *stubChannel) chunk(t *testing.T, s string) {
	t.Helper()
	c.push(t, transport.Notification{Chunk: []byte(s)})
}

func (c *stubChannel) complete(t *testing.T) {
	t.Helper()
	c.push(t, transport.Notification{Done: true})
}

// waitCancelled fails unless the session released the channel.
func (c *stubChannel) waitCancelled(t *testing.T) {
	t.Helper()
	select {
	case <-c.cancelled:
	case <-time.After(testTimeout):
		t.Fatal("channel was not released")
	}
}

// stubOpener hands out stub channels, or fails with err.
type stubOpener struct {
	mu       sync.Mutex
	err      error
	filters  []api.Filter
	notFound []bool
	opened   chan *stubChannel

	// block makes OpenEvents wait for ctx before returning.
	block bool
}

func newStubOpener() *stubOpener {
	return &stubOpener{opened: make(chan *stubChannel, 16)}
}

func (o *stubOpener) OpenEvents(ctx context.Context, f api.Filter, notFoundAware bool) (Channel, error) {
	o.mu.Lock()
	o.filters = append(o.filters, f)
	o.notFound = append(o.notFound, notFoundAware)
	err, block := o.err, o.block
	o.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	ch := newStubChannel()
	o.opened <- ch
	return ch, nil
}

func (o *stubOpener) lastFilter() api.Filter {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.filters[len(o.filters)-1]
}

// nextChannel returns the channel opened for the most recent Spawn.
func (o *stubOpener) nextChannel(t *testing.T) *stubChannel {
	t.Helper()
	select {
	case ch := <-o.opened:
		return ch
	case <-time.After(testTimeout):
		t.Fatal("no channel opened")
		return nil
	}
}

// recv returns the next message for owner.
func recv(t *testing.T, o *Owner) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	m, err := o.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	return m
}

// waitDone fails unless s terminates.
func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(testTimeout):
		t.Fatalf("session %s did not terminate (state %s)", s.ID(), s.State())
	}
}

// spawn starts a session owned by a fresh owner.
func spawn(t *testing.T, r *Registry, o *stubOpener) (*Session, *Owner, *stubChannel) {
	t.Helper()
	owner := NewOwner(context.Background())
	t.Cleanup(owner.Close)

	s, err := r.Spawn(context.Background(), Options{Owner: owner})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return s, owner, o.nextChannel(t)
}
