package observability

import (
	"net/http"
	"strconv"
	"time"
)

// InstrumentRoundTripper wraps an http.RoundTripper to record daemon request
// metrics.
//
// It captures:
//   - dockhand_daemon_requests_total (counter): per request with method and status class ("2xx", "4xx", "error")
//   - dockhand_daemon_request_duration_seconds (histogram): time until the response headers arrived
//
// For streaming requests the body is still being read when the round trip
// returns, so only header latency is observed.
func InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		DaemonRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())

		status := "error"
		if err == nil {
			status = StatusClass(resp.StatusCode)
		}
		DaemonRequestsTotal.WithLabelValues(r.Method, status).Inc()
		return resp, err
	})
}

// StatusClass builds a status class label like "2xx", "4xx", "5xx".
func StatusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
