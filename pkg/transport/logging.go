package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rhuss/dockhand/pkg/debug"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Logging wraps next so that every daemon request emits a structured log
// entry with method, path, status and the time until the response headers
// arrived. Successful requests log at debug level, failures and error
// statuses at warn level.
func Logging(logger *slog.Logger, next http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = slog.Default()
	}
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)),
		}

		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(r.Context(), slog.LevelWarn, "daemon request failed", attrs...)
		case resp.StatusCode >= 400:
			attrs = append(attrs, slog.Int("status", resp.StatusCode))
			logger.LogAttrs(r.Context(), slog.LevelWarn, "daemon request rejected", attrs...)
		default:
			if debug.Enabled(debug.CategoryTransport) {
				attrs = append(attrs, slog.Int("status", resp.StatusCode))
				logger.LogAttrs(r.Context(), slog.LevelDebug, "daemon request completed", attrs...)
			}
		}
		return resp, err
	})
}
