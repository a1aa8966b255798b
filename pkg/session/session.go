package session

import (
	"context"
	"fmt"
	"log/slog"
	rdebug "runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/debug"
	"github.com/rhuss/dockhand/pkg/events"
	"github.com/rhuss/dockhand/pkg/observability"
)

// State is the lifecycle position of a Session.
type State int32

const (
	StateInitializing State = iota
	StateMonitoring
	StateStreaming
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateMonitoring:
		return "monitoring"
	case StateStreaming:
		return "streaming"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

type controlKind int

const (
	controlClose controlKind = iota
	controlTransfer
)

type control struct {
	kind  controlKind
	owner *Owner
	reply chan error
}

// Session is one running event stream. Obtain Sessions from a Registry.
type Session struct {
	id            string
	filter        api.Filter
	notFoundAware bool
	opener        Opener

	// ctx is cancelled by the registry for forceful termination.
	ctx  context.Context
	kill context.CancelFunc

	// owner is written only by the session goroutine.
	owner atomic.Pointer[Owner]
	state atomic.Int32

	// transport is touched only by the session goroutine. Non-nil means
	// the connection still has to be released.
	transport Channel

	control    chan control
	opened     chan error
	reportOnce sync.Once
	done       chan struct{}
	reason     error
	outcome    string
	onExit     func(*Session)
}

func newSession(ctx context.Context, opener Opener, opts Options, onExit func(*Session)) *Session {
	ctx, kill := context.WithCancel(ctx)
	s := &Session{
		id:            api.NewSessionID(),
		filter:        opts.Filter.Clone(),
		notFoundAware: opts.NotFoundAware,
		opener:        opener,
		ctx:           ctx,
		kill:          kill,
		control:       make(chan control),
		opened:        make(chan error, 1),
		done:          make(chan struct{}),
		onExit:        onExit,
	}
	s.owner.Store(opts.Owner)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Filter returns a copy of the query the session was created with.
func (s *Session) Filter() api.Filter { return s.filter.Clone() }

// Owner returns the current owner.
func (s *Session) Owner() *Owner { return s.owner.Load() }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Done is closed once the session has terminated and released its
// connection.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session terminates and returns the termination
// reason: nil after completion or Close, the failure otherwise.
func (s *Session) Wait() error {
	<-s.done
	return s.reason
}

// Close releases the connection and terminates the session. On a session
// that has already terminated it returns an api.NotFoundError.
func (s *Session) Close() error {
	return s.call(control{kind: controlClose})
}

// TransferOwnership makes newOwner the recipient of all events delivered
// from now on and stops watching the previous owner. If newOwner has
// already ended the transfer fails with api.ErrOwnerGone and the session
// terminates.
func (s *Session) TransferOwnership(newOwner *Owner) error {
	if newOwner == nil {
		return api.NewArgumentError("owner", "new owner must not be nil")
	}
	return s.call(control{kind: controlTransfer, owner: newOwner})
}

func (s *Session) call(c control) error {
	c.reply = make(chan error, 1)

	select {
	case s.control <- c:
	case <-s.done:
		return api.NewSessionNotFoundError(s.id)
	}

	select {
	case err := <-c.reply:
		return err
	case <-s.done:
		select {
		case err := <-c.reply:
			return err
		default:
			return api.NewSessionNotFoundError(s.id)
		}
	}
}

// run is the session goroutine.
func (s *Session) run() {
	defer s.terminate()
	defer func() {
		if r := recover(); r != nil {
			s.reason = fmt.Errorf("stream session crashed: %v", r)
			s.outcome = observability.OutcomeCrashed
			slog.Error("stream session crashed",
				"session", s.id,
				"panic", r,
				"stack", string(rdebug.Stack()),
			)
			s.deliver(Message{Kind: MessageError, Err: s.reason})
		}
	}()

	if !s.monitor() {
		return
	}
	if !s.open() {
		return
	}
	s.stream()
}

// monitor establishes the watch on the initial owner.
func (s *Session) monitor() bool {
	s.setState(StateMonitoring)
	if !s.Owner().Alive() {
		s.fail(observability.OutcomeOwnerLost, api.ErrOwnerGone)
		return false
	}
	return true
}

// open opens the stream. The open call is aborted if the owner ends
// while it is in flight.
func (s *Session) open() bool {
	owner := s.Owner()
	stop := context.AfterFunc(owner.ctx, s.kill)

	ch, err := s.opener.OpenEvents(s.ctx, s.filter, s.notFoundAware)
	ownerWatchOK := stop()

	if err != nil {
		if !ownerWatchOK {
			err = api.ErrOwnerGone
		}
		s.fail(observability.OutcomeOpenFailed, err)
		return false
	}
	s.transport = ch

	if !ownerWatchOK {
		s.fail(observability.OutcomeOwnerLost, api.ErrOwnerGone)
		return false
	}

	s.setState(StateStreaming)
	s.reportOpen(nil)
	debug.Log(debug.CategorySession, "stream opened", "session", s.id, "owner", owner.ID())
	return true
}

// stream is the main loop: one input at a time, first arrival wins.
func (s *Session) stream() {
	notes := s.transport.Notifications()
	for {
		owner := s.Owner()
		select {
		case n := <-notes:
			if n.Done {
				// The transport released the connection itself.
				s.transport = nil
				if n.Err != nil {
					s.outcome = observability.OutcomeFailed
					s.reason = n.Err
					s.deliver(Message{Kind: MessageError, Err: n.Err})
					return
				}
				s.outcome = observability.OutcomeCompleted
				s.deliver(Message{Kind: MessageComplete})
				return
			}

			ev, err := events.Decode(n.Chunk)
			if err != nil {
				s.outcome = observability.OutcomeDefect
				s.reason = err
				slog.Error("stream session received malformed chunk", "session", s.id, "error", err)
				s.deliver(Message{Kind: MessageError, Err: err})
				return
			}
			s.deliver(Message{Kind: MessageEvent, Event: ev})
			observability.EventsDelivered.WithLabelValues(ev.Type).Inc()

		case c := <-s.control:
			if !s.handleControl(c) {
				return
			}

		case <-owner.Done():
			debug.Log(debug.CategorySession, "owner ended, terminating", "session", s.id, "owner", owner.ID())
			s.outcome = observability.OutcomeOwnerLost
			s.reason = api.ErrOwnerGone
			return

		case <-s.ctx.Done():
			s.outcome = observability.OutcomeTerminated
			s.reason = api.ErrShutdown
			s.deliver(Message{Kind: MessageError, Err: api.ErrShutdown})
			return
		}
	}
}

// handleControl applies a close or transfer request. It returns false when
// the session must terminate.
func (s *Session) handleControl(c control) bool {
	switch c.kind {
	case controlClose:
		s.releaseTransport()
		s.outcome = observability.OutcomeClosed
		c.reply <- nil
		return false

	case controlTransfer:
		if !c.owner.Alive() {
			s.outcome = observability.OutcomeOwnerLost
			s.reason = api.ErrOwnerGone
			s.releaseTransport()
			c.reply <- api.ErrOwnerGone
			return false
		}
		prev := s.owner.Swap(c.owner)
		observability.OwnershipTransfers.Inc()
		debug.Log(debug.CategorySession, "ownership transferred", "session", s.id, "from", prev.ID(), "to", c.owner.ID())
		c.reply <- nil
		return true
	}
	c.reply <- fmt.Errorf("unknown control request %d", c.kind)
	return true
}

// deliver puts m into the mailbox of the owner current at this moment.
func (s *Session) deliver(m Message) {
	m.Session = s.id
	s.Owner().Deliver(m)
}

func (s *Session) fail(outcome string, err error) {
	s.outcome = outcome
	s.reason = err
	s.reportOpen(err)
}

func (s *Session) reportOpen(err error) {
	s.reportOnce.Do(func() { s.opened <- err })
}

func (s *Session) releaseTransport() {
	if s.transport != nil {
		s.transport.Cancel()
		s.transport = nil
	}
}

// terminate runs on every exit path, panics included.
func (s *Session) terminate() {
	s.releaseTransport()
	s.kill()

	if s.reason == nil && s.outcome == "" {
		s.outcome = observability.OutcomeClosed
	}
	// A session that never opened reports its reason to the creator.
	s.reportOpen(s.reason)

	s.setState(StateTerminated)
	observability.SessionsTotal.WithLabelValues(s.outcome).Inc()
	debug.Log(debug.CategorySession, "session terminated", "session", s.id, "outcome", s.outcome, "reason", s.reason)

	// Unregister first so that nobody observing done still finds the
	// session in its registry.
	if s.onExit != nil {
		s.onExit(s)
	}
	close(s.done)
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}
