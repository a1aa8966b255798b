package events

import (
	"bytes"
	"encoding/json"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/debug"
)

// wireEvent is the daemon's JSON shape, including the fields older daemons
// still send alongside (or instead of) the structured ones.
type wireEvent struct {
	api.Event

	Status string `json:"status,omitempty"`
	ID     string `json:"id,omitempty"`
	From   string `json:"from,omitempty"`
}

// Decode maps one raw stream chunk to an Event. It performs no I/O.
// A chunk that is not a JSON object, or carries neither a type nor an
// action, is a protocol defect.
func Decode(raw []byte) (*api.Event, error) {
	raw = bytes.TrimSpace(raw)

	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, api.NewProtocolDefect(0, "malformed event chunk: "+debug.Truncate(string(raw), 200), err)
	}

	ev := w.Event
	if ev.Action == "" {
		ev.Action = w.Status
	}
	if ev.Actor.ID == "" {
		ev.Actor.ID = w.ID
	}
	if w.From != "" {
		if _, ok := ev.Actor.Attributes["image"]; !ok {
			attrs := make(map[string]string, len(ev.Actor.Attributes)+1)
			for k, v := range ev.Actor.Attributes {
				attrs[k] = v
			}
			attrs["image"] = w.From
			ev.Actor.Attributes = attrs
		}
	}
	// Daemons old enough to omit Type only ever reported containers.
	if ev.Type == "" && ev.Action != "" {
		ev.Type = api.ResourceContainer
	}

	if ev.Type == "" || ev.Action == "" {
		return nil, api.NewProtocolDefect(0, "event chunk without type or action: "+debug.Truncate(string(raw), 200), nil)
	}
	return &ev, nil
}
