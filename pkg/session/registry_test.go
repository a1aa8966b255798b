package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/transport"
)

func TestRegistry_OpenFailureLeavesNothingRunning(t *testing.T) {
	opener := newStubOpener()
	opener.err = api.NewNotFoundError("no such thing")
	r := NewRegistry(opener)

	owner := NewOwner(context.Background())
	defer owner.Close()

	s, err := r.Spawn(context.Background(), Options{Owner: owner, NotFoundAware: true})
	if s != nil {
		t.Error("no session expected on open failure")
	}
	var nf *api.NotFoundError
	if !errors.As(err, &nf) || nf.Message != "no such thing" {
		t.Fatalf("Spawn() = %v, want NotFoundError(no such thing)", err)
	}
	if r.Len() != 0 {
		t.Errorf("registry tracks %d sessions after open failure", r.Len())
	}
	if !opener.notFound[0] {
		t.Error("NotFoundAware was not passed to the opener")
	}
}

func TestRegistry_SpawnRequiresOwner(t *testing.T) {
	r := NewRegistry(newStubOpener())
	var argErr *api.ArgumentError
	if _, err := r.Spawn(context.Background(), Options{}); !errors.As(err, &argErr) {
		t.Errorf("Spawn without owner = %v, want ArgumentError", err)
	}
}

func TestRegistry_SpawnWithEndedOwner(t *testing.T) {
	r := NewRegistry(newStubOpener())
	owner := NewOwner(context.Background())
	owner.Close()

	if _, err := r.Spawn(context.Background(), Options{Owner: owner}); !errors.Is(err, api.ErrOwnerGone) {
		t.Errorf("Spawn() = %v, want ErrOwnerGone", err)
	}
}

func TestRegistry_OwnerEndsDuringOpen(t *testing.T) {
	opener := newStubOpener()
	opener.block = true
	r := NewRegistry(opener)

	owner := NewOwner(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		owner.Close()
	}()

	if _, err := r.Spawn(context.Background(), Options{Owner: owner}); !errors.Is(err, api.ErrOwnerGone) {
		t.Errorf("Spawn() = %v, want ErrOwnerGone", err)
	}
	if r.Len() != 0 {
		t.Errorf("registry tracks %d sessions", r.Len())
	}
}

func TestRegistry_SpawnContextCancelled(t *testing.T) {
	opener := newStubOpener()
	opener.block = true
	r := NewRegistry(opener)

	owner := NewOwner(context.Background())
	defer owner.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := r.Spawn(ctx, Options{Owner: owner}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Spawn() = %v, want DeadlineExceeded", err)
	}
	if r.Len() != 0 {
		t.Errorf("registry tracks %d sessions", r.Len())
	}
}

func TestRegistry_TerminateIsolated(t *testing.T) {
	opener := newStubOpener()
	r := NewRegistry(opener)
	s1, owner1, ch1 := spawn(t, r, opener)
	s2, owner2, ch2 := spawn(t, r, opener)

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if got, ok := r.Get(s1.ID()); !ok || got != s1 {
		t.Error("Get should return the live session")
	}

	if err := r.Terminate(s1.ID()); err != nil {
		t.Fatalf("Terminate() = %v", err)
	}
	ch1.waitCancelled(t)
	if err := s1.Wait(); !errors.Is(err, api.ErrShutdown) {
		t.Errorf("Wait() = %v, want ErrShutdown", err)
	}
	if m := recv(t, owner1); m.Kind != MessageError || !errors.Is(m.Err, api.ErrShutdown) {
		t.Errorf("owner got %s (%v), want ErrShutdown error", m.Kind, m.Err)
	}
	if err := s1.Close(); !api.IsNotFound(err) {
		t.Errorf("Close on terminated session = %v, want NotFoundError", err)
	}
	if err := r.Terminate(s1.ID()); !api.IsNotFound(err) {
		t.Errorf("second Terminate() = %v, want NotFoundError", err)
	}

	// The sibling is unaffected.
	ch2.chunk(t, containerStart)
	if m := recv(t, owner2); m.Kind != MessageEvent {
		t.Errorf("sibling got %s, want event", m.Kind)
	}
	if s2.State() != StateStreaming {
		t.Errorf("sibling state = %s", s2.State())
	}
	s2.Close()
}

func TestRegistry_MalformedSessionID(t *testing.T) {
	opener := newStubOpener()
	r := NewRegistry(opener)
	s, _, _ := spawn(t, r, opener)
	defer s.Close()

	for _, id := range []string{"", "evs_short", strings.ToUpper(s.ID()), "resp_" + s.ID()[4:]} {
		if _, ok := r.Get(id); ok {
			t.Errorf("Get(%q) found a session", id)
		}
		var argErr *api.ArgumentError
		if err := r.Terminate(id); !errors.As(err, &argErr) {
			t.Errorf("Terminate(%q) = %v, want ArgumentError", id, err)
		}
	}
	if s.State() != StateStreaming {
		t.Errorf("state = %s after rejected Terminate calls", s.State())
	}

	// Well-formed but unknown IDs are not found.
	if err := r.Terminate(api.NewSessionID()); !api.IsNotFound(err) {
		t.Errorf("Terminate(unknown) = %v, want NotFoundError", err)
	}
}

func TestRegistry_Shutdown(t *testing.T) {
	opener := newStubOpener()
	r := NewRegistry(opener)
	s1, owner1, ch1 := spawn(t, r, opener)
	s2, owner2, ch2 := spawn(t, r, opener)

	r.Shutdown()

	for _, s := range []*Session{s1, s2} {
		select {
		case <-s.Done():
		default:
			t.Errorf("session %s still running after Shutdown", s.ID())
		}
	}
	if ch1.cancels.Load() != 1 || ch2.cancels.Load() != 1 {
		t.Error("Shutdown should release every channel exactly once")
	}
	for _, o := range []*Owner{owner1, owner2} {
		if m := recv(t, o); m.Kind != MessageError || !errors.Is(m.Err, api.ErrShutdown) {
			t.Errorf("owner %s got %s (%v), want ErrShutdown error", o.ID(), m.Kind, m.Err)
		}
	}

	owner := NewOwner(context.Background())
	defer owner.Close()
	if _, err := r.Spawn(context.Background(), Options{Owner: owner}); !errors.Is(err, api.ErrShutdown) {
		t.Errorf("Spawn after Shutdown = %v, want ErrShutdown", err)
	}
}

// panickyOpener panics while opening.
type panickyOpener struct{}

func (panickyOpener) OpenEvents(context.Context, api.Filter, bool) (Channel, error) {
	panic("opener bug")
}

// brokenChannel panics when the session starts reading it.
type brokenChannel struct{ *stubChannel }

func (brokenChannel) Notifications() <-chan transport.Notification {
	panic("channel bug")
}

type brokenOpener struct{ ch *stubChannel }

func (o brokenOpener) OpenEvents(context.Context, api.Filter, bool) (Channel, error) {
	return brokenChannel{o.ch}, nil
}

func TestRegistry_PanicDuringOpenIsContained(t *testing.T) {
	r := NewRegistry(panickyOpener{})
	owner := NewOwner(context.Background())
	defer owner.Close()

	_, err := r.Spawn(context.Background(), Options{Owner: owner})
	if err == nil || !strings.Contains(err.Error(), "opener bug") {
		t.Fatalf("Spawn() = %v, want crash error", err)
	}
	if r.Len() != 0 {
		t.Errorf("registry tracks %d sessions after crash", r.Len())
	}
}

func TestRegistry_PanicMidStreamReleasesChannel(t *testing.T) {
	ch := newStubChannel()
	r := NewRegistry(brokenOpener{ch: ch})
	owner := NewOwner(context.Background())
	defer owner.Close()

	s, err := r.Spawn(context.Background(), Options{Owner: owner})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	ch.waitCancelled(t)
	waitDone(t, s)
	if err := s.Wait(); err == nil || !strings.Contains(err.Error(), "channel bug") {
		t.Errorf("Wait() = %v, want crash reason", err)
	}
	if m := recv(t, owner); m.Kind != MessageError {
		t.Errorf("owner got %s, want error", m.Kind)
	}
}
