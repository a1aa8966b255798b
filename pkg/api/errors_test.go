package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorInterfaces(t *testing.T) {
	var _ error = &NotFoundError{}
	var _ error = &RequestError{}
	var _ error = &ProtocolDefect{}
	var _ error = &ArgumentError{}
}

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", NewNotFoundError("no such thing"), "not found: no such thing"},
		{"request", NewRequestError(409, "conflict"), "request failed (HTTP 409): conflict"},
		{"defect with status", NewProtocolDefect(302, "unexpected status", nil), "protocol defect (HTTP 302): unexpected status"},
		{"defect without status", NewProtocolDefect(0, "malformed chunk", nil), "protocol defect: malformed chunk"},
		{"argument with option", NewArgumentError("since", "given twice"), "invalid argument: given twice (option: since)"},
		{"argument without option", NewArgumentError("", "bad shape"), "invalid argument: bad shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionNotFoundWrapsTerminated(t *testing.T) {
	err := fmt.Errorf("closing: %w", NewSessionNotFoundError("evs_x"))

	if !IsNotFound(err) {
		t.Error("IsNotFound should match a wrapped NotFoundError")
	}
	if !errors.Is(err, ErrSessionTerminated) {
		t.Error("session not found error should wrap ErrSessionTerminated")
	}
}

func TestProtocolDefectUnwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := NewProtocolDefect(0, "malformed chunk", cause)

	if !errors.Is(err, cause) {
		t.Error("ProtocolDefect should unwrap to its cause")
	}
	var pd *ProtocolDefect
	if !errors.As(fmt.Errorf("wrapped: %w", err), &pd) {
		t.Fatal("errors.As should find ProtocolDefect")
	}
	if pd.Detail != "malformed chunk" {
		t.Errorf("Detail = %q", pd.Detail)
	}
}

func TestIsNotFoundNegative(t *testing.T) {
	if IsNotFound(NewRequestError(500, "boom")) {
		t.Error("RequestError is not a NotFoundError")
	}
	if IsNotFound(nil) {
		t.Error("nil is not a NotFoundError")
	}
}
