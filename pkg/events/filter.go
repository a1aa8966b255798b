package events

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/rhuss/dockhand/pkg/api"
)

// Query parameters of the events endpoint.
const (
	ParamSince   = "since"
	ParamUntil   = "until"
	ParamFilters = "filters"
)

// wireFilters is the JSON object sent under the filters parameter. The
// field names are the daemon's and are intentionally swapped relative to
// api.Filter: resources go under "type", event types under "event".
type wireFilters struct {
	Type  []string `json:"type,omitempty"`
	Event []string `json:"event,omitempty"`
}

// Query encodes f as the events endpoint query. since and until are integer
// unix seconds; the whitelists travel as a JSON object under "filters".
func Query(f api.Filter) url.Values {
	q := url.Values{}
	q.Set(ParamSince, strconv.FormatInt(unixSeconds(f.Since), 10))
	if f.Until != nil {
		q.Set(ParamUntil, strconv.FormatInt(unixSeconds(*f.Until), 10))
	}
	if len(f.Resources) > 0 || len(f.Types) > 0 {
		// Marshalling string slices cannot fail.
		data, _ := json.Marshal(wireFilters{Type: f.Resources, Event: f.Types})
		q.Set(ParamFilters, string(data))
	}
	return q
}

// ParseQuery is the inverse of Query. Daemon stubs use it to interpret a
// request the way the daemon would.
func ParseQuery(q url.Values) (api.Filter, error) {
	var f api.Filter

	if v := q.Get(ParamSince); v != "" {
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, api.NewArgumentError(ParamSince, "must be integer unix seconds")
		}
		if secs != 0 {
			f.Since = time.Unix(secs, 0)
		}
	}
	if v := q.Get(ParamUntil); v != "" {
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, api.NewArgumentError(ParamUntil, "must be integer unix seconds")
		}
		u := time.Unix(secs, 0)
		f.Until = &u
	}
	if v := q.Get(ParamFilters); v != "" {
		var wire wireFilters
		if err := json.Unmarshal([]byte(v), &wire); err != nil {
			return f, api.NewArgumentError(ParamFilters, "must be a JSON object of string lists")
		}
		f.Resources = wire.Type
		f.Types = wire.Event
	}
	return f, nil
}

func unixSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
