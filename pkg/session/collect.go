package session

import (
	"context"

	"github.com/rhuss/dockhand/pkg/api"
)

// Collect opens a session owned by the caller, gathers every event until
// the daemon completes the stream, and returns them in arrival order. It
// returns once, never with partial results. With an open-ended filter it
// blocks until ctx is done.
func Collect(ctx context.Context, r *Registry, opts Options) ([]api.Event, error) {
	owner := NewOwner(ctx)
	// Ending the owner also ends the session on early return.
	defer owner.Close()

	opts.Owner = owner
	s, err := r.Spawn(ctx, opts)
	if err != nil {
		return nil, err
	}

	collected := make([]api.Event, 0)
	for {
		m, err := owner.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if m.Session != s.ID() {
			continue
		}
		switch m.Kind {
		case MessageEvent:
			collected = append(collected, *m.Event)
		case MessageComplete:
			<-s.Done()
			return collected, nil
		case MessageError:
			<-s.Done()
			return nil, m.Err
		}
	}
}
