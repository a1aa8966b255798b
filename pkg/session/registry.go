package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/debug"
	"github.com/rhuss/dockhand/pkg/observability"
)

// Registry creates and tracks stream sessions. Sessions are independent:
// one failing never affects another, and none is ever restarted.
//
// All methods are safe for concurrent access.
type Registry struct {
	opener Opener
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewRegistry creates an empty registry whose sessions open their streams
// with opener.
func NewRegistry(opener Opener) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		opener:   opener,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Spawn starts a new session and waits until its stream is open. If the
// stream cannot be opened the error is returned and no session is left
// running. ctx bounds only the wait for the open; the session itself lives
// until it terminates on its own terms.
func (r *Registry) Spawn(ctx context.Context, opts Options) (*Session, error) {
	if opts.Owner == nil {
		return nil, api.NewArgumentError("owner", "owner is required")
	}

	s := newSession(r.ctx, r.opener, opts, r.remove)

	r.mu.Lock()
	if r.ctx.Err() != nil {
		r.mu.Unlock()
		return nil, api.ErrShutdown
	}
	r.sessions[s.id] = s
	r.wg.Add(1)
	r.mu.Unlock()

	observability.SessionsActive.Inc()
	debug.Log(debug.CategoryRegistry, "spawning session", "session", s.id, "owner", opts.Owner.ID())
	go func() {
		defer r.wg.Done()
		s.run()
	}()

	select {
	case err := <-s.opened:
		if err != nil {
			<-s.done
			return nil, err
		}
		return s, nil
	case <-ctx.Done():
		s.kill()
		<-s.done
		return nil, ctx.Err()
	}
}

// Get returns the live session with the given ID. Malformed IDs are
// never found.
func (r *Registry) Get(id string) (*Session, bool) {
	if !api.ValidateSessionID(id) {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Terminate forcefully ends a session and waits until it has released its
// connection. It is meant for administrative shutdown; owners end their
// sessions with Session.Close.
func (r *Registry) Terminate(id string) error {
	if !api.ValidateSessionID(id) {
		return api.NewArgumentError("id", fmt.Sprintf("malformed session id %q", id))
	}
	s, ok := r.Get(id)
	if !ok {
		return api.NewSessionNotFoundError(id)
	}
	s.kill()
	<-s.done
	return nil
}

// Shutdown terminates every session, waits for all of them to release
// their connections, and rejects further Spawn calls.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.cancel()
	n := len(r.sessions)
	r.mu.Unlock()

	if n > 0 {
		slog.Info("terminating stream sessions", "count", n)
	}
	r.wg.Wait()
}

func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s.id)
	r.mu.Unlock()

	observability.SessionsActive.Dec()
}
