package api

import "time"

// Resource types the daemon reports in the event stream.
const (
	ResourceContainer = "container"
	ResourceImage     = "image"
	ResourceVolume    = "volume"
	ResourceNetwork   = "network"
	ResourceDaemon    = "daemon"
	ResourcePlugin    = "plugin"
	ResourceService   = "service"
	ResourceNode      = "node"
	ResourceSecret    = "secret"
	ResourceConfig    = "config"
)

// KnownResource reports whether t is a resource type the daemon emits.
func KnownResource(t string) bool {
	switch t {
	case ResourceContainer, ResourceImage, ResourceVolume, ResourceNetwork,
		ResourceDaemon, ResourcePlugin, ResourceService, ResourceNode,
		ResourceSecret, ResourceConfig:
		return true
	}
	return false
}

// Actor identifies the entity an event originates from.
type Actor struct {
	ID         string            `json:"ID"`
	Attributes map[string]string `json:"Attributes,omitempty"`
}

// Event is a single decoded entry of the daemon event stream. Events are
// treated as immutable once decoded.
type Event struct {
	Type     string `json:"Type"`
	Action   string `json:"Action"`
	Actor    Actor  `json:"Actor"`
	Scope    string `json:"scope,omitempty"`
	Time     int64  `json:"time,omitempty"`
	TimeNano int64  `json:"timeNano,omitempty"`
}

// Timestamp returns the event time, preferring nanosecond precision.
func (e *Event) Timestamp() time.Time {
	if e.TimeNano != 0 {
		return time.Unix(0, e.TimeNano)
	}
	return time.Unix(e.Time, 0)
}

// Filter is the query a stream session is created with. The zero Since
// value means the epoch start; a nil Until leaves the stream open-ended.
type Filter struct {
	Since     time.Time
	Until     *time.Time
	Resources []string
	Types     []string
}

// Clone returns a deep copy so a session can hold a value no caller can
// mutate.
func (f Filter) Clone() Filter {
	out := Filter{Since: f.Since}
	if f.Until != nil {
		u := *f.Until
		out.Until = &u
	}
	if f.Resources != nil {
		out.Resources = append([]string(nil), f.Resources...)
	}
	if f.Types != nil {
		out.Types = append([]string(nil), f.Types...)
	}
	return out
}

// Version is the daemon's version report.
type Version struct {
	Version       string `json:"Version"`
	APIVersion    string `json:"ApiVersion"`
	MinAPIVersion string `json:"MinAPIVersion,omitempty"`
	GitCommit     string `json:"GitCommit,omitempty"`
	GoVersion     string `json:"GoVersion,omitempty"`
	Os            string `json:"Os"`
	Arch          string `json:"Arch"`
}

// ErrorBody is the structured error body the daemon returns on failure.
type ErrorBody struct {
	Message string `json:"message"`
}
