package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/auth"
	"github.com/rhuss/dockhand/pkg/debug"
	"github.com/rhuss/dockhand/pkg/observability"
)

// DefaultHost is the local daemon socket.
const DefaultHost = "unix:///var/run/docker.sock"

// DefaultAPIVersion is the API version path segment used when none is configured.
const DefaultAPIVersion = "v1.43"

// Config configures a Client.
type Config struct {
	// Host is the daemon address. Default: DefaultHost.
	Host string

	// APIVersion is the version path segment ("1.43" or "v1.43"). Default: DefaultAPIVersion.
	APIVersion string

	// Timeout bounds synchronous requests. Streams are never timed out.
	// Default: 30s.
	Timeout time.Duration

	// UserAgent is sent with every request. Default: "dockhand".
	UserAgent string

	// Authorizer decorates requests with credentials. Default: auth.None.
	Authorizer auth.Authorizer

	// Transport overrides the HTTP transport (useful for testing). It is
	// still wrapped with logging and metrics instrumentation.
	Transport http.RoundTripper

	// Logger receives request logs. Default: slog.Default().
	Logger *slog.Logger
}

// Request describes one daemon call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte

	// NotFoundAware marks 404 as meaningful for this call: it is reported
	// as api.NotFoundError instead of api.RequestError.
	NotFoundAware bool
}

// Client performs requests against the daemon API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	timeout    time.Duration
	userAgent  string
	authorizer auth.Authorizer
}

// NewClient creates a Client for the configured daemon host.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "dockhand"
	}
	if cfg.Authorizer == nil {
		cfg.Authorizer = auth.None{}
	}

	baseURL, rt, err := resolveHost(cfg.Host, cfg.Transport)
	if err != nil {
		return nil, err
	}

	return &Client{
		// No client-level timeout: streams may legitimately stay open for
		// as long as the caller wants. Do applies cfg.Timeout per request.
		httpClient: &http.Client{Transport: observability.InstrumentRoundTripper(Logging(cfg.Logger, rt))},
		baseURL:    baseURL,
		apiVersion: "v" + strings.TrimPrefix(cfg.APIVersion, "v"),
		timeout:    cfg.Timeout,
		userAgent:  cfg.UserAgent,
		authorizer: cfg.Authorizer,
	}, nil
}

// resolveHost turns a daemon address into a base URL and a transport able
// to reach it.
func resolveHost(host string, override http.RoundTripper) (string, http.RoundTripper, error) {
	u, err := url.Parse(host)
	if err != nil {
		return "", nil, fmt.Errorf("invalid daemon host %q: %w", host, err)
	}

	switch u.Scheme {
	case "unix":
		if u.Path == "" {
			return "", nil, fmt.Errorf("invalid daemon host %q: missing socket path", host)
		}
		rt := override
		if rt == nil {
			socket := u.Path
			rt = &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socket)
				},
			}
		}
		// The host part is ignored by the unix dialer.
		return "http://daemon", rt, nil
	case "tcp":
		return "http://" + u.Host, orDefault(override), nil
	case "http", "https":
		return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"), orDefault(override), nil
	default:
		return "", nil, fmt.Errorf("invalid daemon host %q: unsupported scheme %q", host, u.Scheme)
	}
}

func orDefault(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport.(*http.Transport).Clone()
	}
	return rt
}

// Open issues a streaming request and returns once status and headers are
// known. The returned Channel is bound to ctx: cancelling ctx ends the
// stream as if Cancel had been called.
func (c *Client) Open(ctx context.Context, req Request) (*Channel, error) {
	ctx, cancel := context.WithCancel(ctx)

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		cancel()
		return nil, err
	}

	debug.Log(debug.CategoryTransport, "opening stream", "method", req.Method, "url", httpReq.URL.String())

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, MapNetworkError(err)
	}

	// Check for error status codes before starting the stream.
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer cancel()
		defer httpResp.Body.Close()
		return nil, MapHTTPError(httpResp, req.NotFoundAware)
	}

	return newChannel(httpResp.Body, cancel), nil
}

// Do performs a synchronous request. When out is non-nil the response body
// is decoded into it as JSON.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	debug.Log(debug.CategoryTransport, "request", "method", req.Method, "url", httpReq.URL.String())

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return MapHTTPError(httpResp, req.NotFoundAware)
	}

	if out == nil || httpResp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return api.NewProtocolDefect(httpResp.StatusCode, "undecodable response body", err)
	}
	return nil
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + c.apiVersion + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body *bytes.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	var httpReq *http.Request
	var err error
	if body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, method, target, body)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, method, target, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("creating daemon request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	if err := c.authorizer.Authorize(httpReq); err != nil {
		return nil, fmt.Errorf("authorizing daemon request: %w", err)
	}
	return httpReq, nil
}
