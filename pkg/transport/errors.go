package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/debug"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// MapHTTPError converts a non-2xx response into the error taxonomy. The
// caller remains responsible for closing the body.
func MapHTTPError(resp *http.Response, notFoundAware bool) error {
	status := resp.StatusCode
	if status < 400 || status > 599 {
		return api.NewProtocolDefect(status, "unexpected daemon status", nil)
	}

	message, err := ExtractErrorMessage(resp.Body)
	if err != nil {
		return api.NewProtocolDefect(status, "daemon error body is not structured JSON", err)
	}

	if status == http.StatusNotFound && notFoundAware {
		return api.NewNotFoundError(message)
	}
	return api.NewRequestError(status, message)
}

// MapNetworkError wraps a network-level failure (connection refused, DNS,
// context cancellation) with a descriptive prefix.
func MapNetworkError(err error) error {
	return fmt.Errorf("daemon connection error: %w", err)
}

// ExtractErrorMessage parses the daemon's {"message": "..."} error body.
// An empty, non-JSON or message-less body is an error.
func ExtractErrorMessage(body io.Reader) (string, error) {
	if body == nil {
		return "", fmt.Errorf("empty error body")
	}

	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return "", fmt.Errorf("reading error body: %w", err)
	}

	var errBody api.ErrorBody
	if err := json.Unmarshal(data, &errBody); err != nil {
		return "", fmt.Errorf("%w (body: %q)", err, debug.Truncate(strings.TrimSpace(string(data)), 200))
	}
	if errBody.Message == "" {
		return "", fmt.Errorf("error body without message: %q", debug.Truncate(string(data), 200))
	}
	return errBody.Message, nil
}
