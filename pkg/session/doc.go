// Package session runs daemon event streams.
//
// A Session owns one streaming connection and forwards every decoded event
// to its current Owner. Each Session is a single goroutine that waits on
// four inputs at once (the next stream notification, a close or transfer
// request, the owner's liveness signal, and the registry's shutdown signal)
// and handles whichever arrives first. Nothing is shared between sessions.
//
// Delivery is fire-and-forget into the owner's unbounded mailbox, so a slow
// consumer never stalls the stream. Ownership can be handed to another
// Owner without interrupting the stream: every event goes to whichever
// owner is current when it is delivered.
//
// The connection is released exactly once, whichever way the session ends:
// completion, Close, loss of the owner, failed transfer, registry shutdown,
// a malformed chunk, or a panic.
//
// Sessions are created through a Registry, which isolates them from one
// another and never restarts them. Collect builds a list call on top of a
// session.
package session
