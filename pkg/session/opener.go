package session

import (
	"context"
	"net/http"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/events"
	"github.com/rhuss/dockhand/pkg/transport"
)

// EventsPath is the daemon's event stream endpoint.
const EventsPath = "/events"

// Channel is the part of a transport channel a session needs. A session
// is the only holder of its Channel.
type Channel interface {
	Notifications() <-chan transport.Notification
	Cancel()
}

// Opener opens the stream a session consumes. ctx bounds the lifetime of
// the returned Channel, not just the open call.
type Opener interface {
	OpenEvents(ctx context.Context, f api.Filter, notFoundAware bool) (Channel, error)
}

// TransportOpener opens event streams with a transport.Client.
type TransportOpener struct {
	Client *transport.Client
}

// OpenEvents implements Opener.
func (o TransportOpener) OpenEvents(ctx context.Context, f api.Filter, notFoundAware bool) (Channel, error) {
	ch, err := o.Client.Open(ctx, transport.Request{
		Method:        http.MethodGet,
		Path:          EventsPath,
		Query:         events.Query(f),
		NotFoundAware: notFoundAware,
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}
