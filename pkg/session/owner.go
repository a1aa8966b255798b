package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rhuss/dockhand/pkg/api"
)

// MessageKind discriminates the messages a session delivers.
type MessageKind int

const (
	// MessageEvent carries one decoded event.
	MessageEvent MessageKind = iota

	// MessageComplete signals the daemon ended the stream. It is the last
	// message of a session.
	MessageComplete

	// MessageError signals the session failed mid-stream. It is the last
	// message of a session.
	MessageError
)

func (k MessageKind) String() string {
	switch k {
	case MessageEvent:
		return "event"
	case MessageComplete:
		return "complete"
	case MessageError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is what a session puts into its owner's mailbox.
type Message struct {
	Session string
	Kind    MessageKind
	Event   *api.Event
	Err     error
}

// Owner is a consumer of stream sessions. Its liveness is bound to the
// context it was created with; Close ends it early. A session whose owner
// ends terminates itself.
//
// Every Owner has an unbounded mailbox. Delivery never blocks the sender;
// messages delivered after the owner ended are dropped.
type Owner struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	queue []Message
	ready chan struct{}
}

// NewOwner creates an Owner that stays alive until ctx is done or Close is
// called.
func NewOwner(ctx context.Context) *Owner {
	ctx, cancel := context.WithCancel(ctx)
	return &Owner{
		id:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
		ready:  make(chan struct{}, 1),
	}
}

// ID returns the owner's unique identifier.
func (o *Owner) ID() string { return o.id }

// Done is closed when the owner ends.
func (o *Owner) Done() <-chan struct{} { return o.ctx.Done() }

// Alive reports whether the owner has not ended yet.
func (o *Owner) Alive() bool { return o.ctx.Err() == nil }

// Close ends the owner. Sessions it owns terminate and release their
// connections. Idempotent.
func (o *Owner) Close() { o.cancel() }

// Deliver appends m to the mailbox without blocking.
func (o *Owner) Deliver(m Message) {
	if !o.Alive() {
		return
	}
	o.mu.Lock()
	o.queue = append(o.queue, m)
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
}

// Receive returns the next message, blocking until one arrives or ctx is
// done. Messages already queued are still returned after the owner ended;
// once the mailbox is empty an ended owner yields api.ErrOwnerGone.
func (o *Owner) Receive(ctx context.Context) (Message, error) {
	for {
		if m, ok := o.pop(); ok {
			return m, nil
		}
		select {
		case <-o.ready:
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-o.ctx.Done():
			if m, ok := o.pop(); ok {
				return m, nil
			}
			return Message{}, api.ErrOwnerGone
		}
	}
}

// Pending returns the number of undelivered messages in the mailbox.
func (o *Owner) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *Owner) pop() (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) == 0 {
		return Message{}, false
	}
	m := o.queue[0]
	o.queue[0] = Message{}
	o.queue = o.queue[1:]
	return m, true
}
