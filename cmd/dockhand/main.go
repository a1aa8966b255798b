// Command dockhand watches and lists container daemon events.
//
// Configuration is read from a YAML file (--config, DOCKHAND_CONFIG,
// ./dockhand.yaml or /etc/dockhand/config.yaml) and overridden by the
// environment:
//
//	DOCKER_HOST          - daemon address (default: unix:///var/run/docker.sock)
//	DOCKHAND_API_VERSION - API version path segment (default: v1.43)
//	DOCKHAND_TOKEN       - bearer token for an authenticating proxy
//	DOCKHAND_METRICS     - serve Prometheus metrics while running
//	DOCKHAND_DEBUG       - debug categories (transport,session,registry,config,all)
//	DOCKHAND_LOG_LEVEL   - TRACE, DEBUG, INFO, WARN or ERROR
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("dockhand failed", "error", err)
		os.Exit(1)
	}
}
