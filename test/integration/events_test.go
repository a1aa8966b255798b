// Package integration runs dockhand against a real container daemon.
//
// The daemon is the one testcontainers-go finds (DOCKER_HOST, the docker
// context or the default socket). Tests are skipped when no daemon is
// reachable or SKIP_INTEGRATION=true.
package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/client"
	"github.com/rhuss/dockhand/pkg/config"
	"github.com/rhuss/dockhand/pkg/session"
)

// apiVersion is supported by every daemon released since early 2024.
const apiVersion = "v1.44"

func newClient(t *testing.T) *client.Client {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping daemon integration tests")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	cfg := config.Defaults()
	cfg.Daemon.Host = testcontainers.MustExtractDockerHost(context.Background())
	cfg.Daemon.APIVersion = apiVersion
	if err := cfg.Validate(); err != nil {
		t.Skipf("daemon host %q not usable: %v", cfg.Daemon.Host, err)
	}

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if _, err := c.Version(context.Background()); err != nil {
		t.Skipf("daemon not reachable at %s: %v", cfg.Daemon.Host, err)
	}
	return c
}

// startContainer runs a short-lived container and returns its ID.
func startContainer(t *testing.T, ctx context.Context) string {
	t.Helper()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      "alpine:3.20",
			Cmd:        []string{"sh", "-c", "echo ready && sleep 30"},
			WaitingFor: wait.ForLog("ready").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting container: %v", err)
	}
	t.Cleanup(func() { testcontainers.TerminateContainer(ctr) })
	return ctr.GetContainerID()
}

func TestStreamSeesContainerStart(t *testing.T) {
	c := newClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	stream, err := c.StreamEvents(ctx,
		session.WithResource(api.ResourceContainer),
		session.WithType("start"),
	)
	if err != nil {
		t.Fatalf("StreamEvents: %v", err)
	}
	defer stream.Close()

	id := startContainer(t, ctx)

	for {
		ev, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("waiting for start of %s: %v", id, err)
		}
		if ev.Type != api.ResourceContainer || ev.Action != "start" {
			t.Errorf("filter let through %s %s", ev.Type, ev.Action)
			continue
		}
		if ev.Actor.ID == id {
			return
		}
	}
}

func TestListBoundedWindow(t *testing.T) {
	c := newClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	since := time.Now().Add(-time.Second)
	id := startContainer(t, ctx)
	until := time.Now().Add(time.Second)

	evs, err := c.ListEvents(ctx,
		session.WithSince(since),
		session.WithUntil(until),
		session.WithResource(api.ResourceContainer),
	)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}

	var found bool
	var last time.Time
	for _, ev := range evs {
		if ev.Timestamp().Before(last) {
			t.Errorf("events out of order: %s before %s", ev.Timestamp(), last)
		}
		last = ev.Timestamp()
		if ev.Actor.ID == id && ev.Action == "start" {
			found = true
		}
	}
	if !found {
		t.Errorf("start of %s not among %d listed events", id, len(evs))
	}
	if c.Sessions() != 0 {
		t.Errorf("%d sessions left after ListEvents", c.Sessions())
	}
}

func TestPastWindowCompletesEmpty(t *testing.T) {
	c := newClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// A window in the past completes immediately with no events.
	evs, err := c.ListEvents(ctx,
		session.WithSince(time.Unix(1000, 0)),
		session.WithUntil(time.Unix(2000, 0)),
	)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(evs) != 0 {
		t.Errorf("got %d events from 1970", len(evs))
	}
}
