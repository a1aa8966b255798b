package api

import (
	"testing"
	"time"
)

func TestFilterCloneIsDeep(t *testing.T) {
	until := time.Unix(2000, 0)
	f := Filter{
		Since:     time.Unix(1000, 0),
		Until:     &until,
		Resources: []string{"container"},
		Types:     []string{"start"},
	}

	c := f.Clone()
	f.Resources[0] = "volume"
	f.Types[0] = "die"
	*f.Until = time.Unix(3000, 0)

	if c.Resources[0] != "container" {
		t.Errorf("clone resources mutated: %v", c.Resources)
	}
	if c.Types[0] != "start" {
		t.Errorf("clone types mutated: %v", c.Types)
	}
	if c.Until.Unix() != 2000 {
		t.Errorf("clone until mutated: %v", c.Until)
	}
}

func TestEventTimestamp(t *testing.T) {
	e := Event{Time: 1000}
	if got := e.Timestamp().Unix(); got != 1000 {
		t.Errorf("Timestamp() = %d, want 1000", got)
	}

	e = Event{Time: 1000, TimeNano: 1000000000123}
	if got := e.Timestamp().UnixNano(); got != 1000000000123 {
		t.Errorf("Timestamp() = %d, want nanosecond precision", got)
	}
}

func TestKnownResource(t *testing.T) {
	for _, r := range []string{"container", "image", "volume", "network", "secret", "config"} {
		if !KnownResource(r) {
			t.Errorf("KnownResource(%q) = false", r)
		}
	}
	if KnownResource("pod") {
		t.Error("KnownResource(pod) = true")
	}
}
