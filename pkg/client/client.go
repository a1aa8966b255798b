package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/auth"
	"github.com/rhuss/dockhand/pkg/auth/jwt"
	"github.com/rhuss/dockhand/pkg/config"
	"github.com/rhuss/dockhand/pkg/session"
	"github.com/rhuss/dockhand/pkg/transport"
)

// VersionPath is the daemon's version endpoint.
const VersionPath = "/version"

// Client talks to one daemon.
type Client struct {
	transport *transport.Client
	registry  *session.Registry
}

// Option customizes a Client beyond what config.Config covers.
type Option func(*options)

type options struct {
	roundTripper http.RoundTripper
	authorizer   auth.Authorizer
}

// WithRoundTripper replaces the HTTP transport used to reach the daemon.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) { o.roundTripper = rt }
}

// WithAuthorizer overrides the authorizer derived from cfg.Auth.
func WithAuthorizer(a auth.Authorizer) Option {
	return func(o *options) { o.authorizer = a }
}

// New creates a Client from cfg. cfg is expected to be validated, as
// config.Load does.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	authorizer := o.authorizer
	if authorizer == nil {
		var err error
		authorizer, err = newAuthorizer(cfg.Auth)
		if err != nil {
			return nil, err
		}
	}

	tc, err := transport.NewClient(transport.Config{
		Host:       cfg.Daemon.Host,
		APIVersion: cfg.Daemon.APIVersion,
		Timeout:    cfg.Daemon.Timeout,
		UserAgent:  cfg.Daemon.UserAgent,
		Authorizer: authorizer,
		Transport:  o.roundTripper,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		transport: tc,
		registry:  session.NewRegistry(session.TransportOpener{Client: tc}),
	}, nil
}

func newAuthorizer(cfg config.AuthConfig) (auth.Authorizer, error) {
	switch cfg.Type {
	case "", "none":
		return auth.None{}, nil
	case "bearer":
		return auth.NewStaticBearer(cfg.Token)
	case "jwt":
		signer, err := jwt.New(jwt.Config{
			Secret:   []byte(cfg.JWT.Secret),
			Subject:  cfg.JWT.Subject,
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
			TTL:      cfg.JWT.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("creating jwt signer: %w", err)
		}
		return &auth.Bearer{Source: signer}, nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Type)
	}
}

// newOwner creates the default owner of a stream. Tests replace it.
var newOwner = session.NewOwner

// StreamEvents opens an event stream. Unless WithOwner is given, the stream
// is owned by ctx: it ends, releasing its connection, when ctx is done.
// Invalid options are reported as api.ArgumentError before any request is
// made; failures to open the stream are returned as they are.
func (c *Client) StreamEvents(ctx context.Context, opts ...session.Option) (*Stream, error) {
	o, err := session.BuildOptions(opts...)
	if err != nil {
		return nil, err
	}
	ownOwner := o.Owner == nil
	if ownOwner {
		o.Owner = newOwner(ctx)
	}

	s, err := c.registry.Spawn(ctx, o)
	if err != nil {
		if ownOwner {
			o.Owner.Close()
		}
		return nil, err
	}
	return &Stream{session: s}, nil
}

// ListEvents returns every event matching opts, in arrival order, once the
// daemon has completed the stream. Without WithUntil the daemon never
// completes it and ListEvents blocks until ctx is done. WithOwner is not
// accepted: the list call always owns its stream.
func (c *Client) ListEvents(ctx context.Context, opts ...session.Option) ([]api.Event, error) {
	o, err := session.BuildOptions(opts...)
	if err != nil {
		return nil, err
	}
	if o.Owner != nil {
		return nil, api.NewArgumentError(session.OptOwner, "not supported by list")
	}
	return session.Collect(ctx, c.registry, o)
}

// Version returns the daemon's version report.
func (c *Client) Version(ctx context.Context) (*api.Version, error) {
	var v api.Version
	if err := c.transport.Do(ctx, transport.Request{Method: http.MethodGet, Path: VersionPath}, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Sessions returns the number of open streams.
func (c *Client) Sessions() int {
	return c.registry.Len()
}

// Close ends every open stream and releases idle connections. The Client
// must not be used afterwards.
func (c *Client) Close() error {
	c.registry.Shutdown()
	c.transport.CloseIdleConnections()
	return nil
}

// MustStreamEvents is like StreamEvents but panics on error.
func (c *Client) MustStreamEvents(ctx context.Context, opts ...session.Option) *Stream {
	s, err := c.StreamEvents(ctx, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// MustListEvents is like ListEvents but panics on error.
func (c *Client) MustListEvents(ctx context.Context, opts ...session.Option) []api.Event {
	evs, err := c.ListEvents(ctx, opts...)
	if err != nil {
		panic(err)
	}
	return evs
}

// MustVersion is like Version but panics on error.
func (c *Client) MustVersion(ctx context.Context) *api.Version {
	v, err := c.Version(ctx)
	if err != nil {
		panic(err)
	}
	return v
}
