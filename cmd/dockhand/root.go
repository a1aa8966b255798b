package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rhuss/dockhand/pkg/client"
	"github.com/rhuss/dockhand/pkg/config"
	"github.com/rhuss/dockhand/pkg/debug"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "dockhand",
		Short: "Watch and list container daemon events",
		Long: `dockhand streams the event feed of a container daemon.

Events can be followed live or listed for a bounded time window, narrowed
down by resource type and event type.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the config file")

	rootCmd.AddCommand(newEventsCommand(opts))
	rootCmd.AddCommand(newVersionCommand(opts))
	return rootCmd
}

// app bundles what every command needs: the loaded config, a client,
// and the optional metrics server.
type app struct {
	cfg     *config.Config
	client  *client.Client
	metrics *http.Server
}

func (o *rootOptions) open() (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	debug.Init(cfg.Debug.Categories, cfg.Debug.Level)

	c, err := client.New(*cfg)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	s := &app{cfg: cfg, client: c}
	if cfg.Observability.Metrics.Enabled {
		s.metrics = startMetricsServer(cfg.Observability.Metrics)
	}
	return s, nil
}

// metricsShutdownTimeout bounds how long Close waits for open metrics
// scrapes.
var metricsShutdownTimeout = 5 * time.Second

func (s *app) Close() {
	if err := s.client.Close(); err != nil {
		slog.Warn("closing client", "error", err)
	}
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := s.metrics.Shutdown(ctx); err != nil {
			slog.Warn("shutting down metrics server", "error", err)
		}
	}
}

func startMetricsServer(cfg config.MetricsConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("metrics server starting", "addr", cfg.Addr, "path", cfg.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
