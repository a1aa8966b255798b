package client

import (
	"context"
	"io"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/session"
)

// Stream is the handle of an open event stream.
type Stream struct {
	session *session.Session
}

// ID returns the stream's session identifier.
func (s *Stream) ID() string { return s.session.ID() }

// Owner returns the current recipient of the stream's events.
func (s *Stream) Owner() *session.Owner { return s.session.Owner() }

// Done is closed once the stream has ended and released its connection.
func (s *Stream) Done() <-chan struct{} { return s.session.Done() }

// Err returns why the stream ended, or nil while it is running or when it
// ended normally.
func (s *Stream) Err() error {
	select {
	case <-s.session.Done():
		return s.session.Wait()
	default:
		return nil
	}
}

// Receive returns the next message from the current owner's mailbox. The
// mailbox may hold messages of other streams sharing the same owner.
func (s *Stream) Receive(ctx context.Context) (session.Message, error) {
	return s.Owner().Receive(ctx)
}

// Next returns the next event of this stream. It returns io.EOF once the
// daemon completed the stream and the stream's failure if it broke off.
// Messages of other streams sharing the owner are discarded; use Receive
// when one owner consumes several streams.
func (s *Stream) Next(ctx context.Context) (*api.Event, error) {
	for {
		m, err := s.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if m.Session != s.ID() {
			continue
		}
		switch m.Kind {
		case session.MessageEvent:
			return m.Event, nil
		case session.MessageComplete:
			return nil, io.EOF
		case session.MessageError:
			return nil, m.Err
		}
	}
}

// TransferOwnership hands the stream to o. Events delivered after it
// returns go to o.
func (s *Stream) TransferOwnership(o *session.Owner) error {
	return s.session.TransferOwnership(o)
}

// Close releases the stream's connection. Closing a stream that has
// already ended returns an api.NotFoundError.
func (s *Stream) Close() error {
	return s.session.Close()
}

// MustTransferOwnership is like TransferOwnership but panics on error.
func (s *Stream) MustTransferOwnership(o *session.Owner) {
	if err := s.TransferOwnership(o); err != nil {
		panic(err)
	}
}

// MustClose is like Close but panics on error.
func (s *Stream) MustClose() {
	if err := s.Close(); err != nil {
		panic(err)
	}
}
