// Package transport talks HTTP to the daemon.
//
// Two request shapes are supported:
//
//   - Do issues a synchronous request and decodes the JSON response body.
//     It serves every ordinary, non-streaming API call.
//   - Open issues a request without waiting for the body and returns a
//     Channel once status and headers are known. The Channel delivers the
//     body as a sequence of chunk notifications followed by exactly one
//     completion notification.
//
// # Status Handling
//
// Both shapes map failure statuses the same way: a 404 with a structured
// error body becomes an api.NotFoundError when the request is marked
// NotFoundAware; any other 4xx/5xx with a structured body becomes an
// api.RequestError; everything else (non-JSON error bodies, 1xx/3xx
// statuses) is an api.ProtocolDefect.
//
// # Daemon Hosts
//
// Hosts are given as unix:///path/to.sock, tcp://host:port, or an
// http(s):// URL. Every request path is prefixed with the configured API
// version segment, e.g. /v1.43/events.
package transport
