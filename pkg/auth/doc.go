// Package auth attaches credentials to requests sent to the daemon.
//
// A local daemon socket needs none. Daemons exposed over TCP are commonly
// fronted by an authorizing proxy that expects a bearer token, either a
// static one or a short-lived JWT minted by the client (see package jwt).
package auth
