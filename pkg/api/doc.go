// Package api defines the core types shared by the dockhand client packages.
//
// The package has zero external dependencies (Go standard library only) and
// performs no I/O. Types mirror the daemon's JSON wire format.
//
// Core types:
//   - [Event]: A decoded entry of the daemon event stream
//   - [Filter]: An immutable event stream query (time range and whitelists)
//   - [NotFoundError], [RequestError], [ProtocolDefect], [ArgumentError]: the error taxonomy
package api
