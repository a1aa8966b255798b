package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhuss/dockhand/pkg/api"
	"github.com/rhuss/dockhand/pkg/session"
)

type eventsOptions struct {
	filters  []string
	format   string
	notFound bool
}

func (o *eventsOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.filters, "filter", "f", nil,
		"filter as key=value: since, until (unix seconds or RFC 3339), resource, type")
	cmd.Flags().StringVar(&o.format, "format", "text", "output format: text or json")
	cmd.Flags().BoolVar(&o.notFound, "not-found", false, "report a 404 from the daemon as not found")
}

func (o *eventsOptions) sessionOptions() ([]session.Option, error) {
	switch o.format {
	case "text", "json":
	default:
		return nil, api.NewArgumentError("format", fmt.Sprintf("unknown output format %q", o.format))
	}
	opts, err := session.ParseFilterArgs(o.filters)
	if err != nil {
		return nil, err
	}
	if o.notFound {
		opts = append(opts, session.WithNotFound())
	}
	return opts, nil
}

func newEventsCommand(root *rootOptions) *cobra.Command {
	opts := &eventsOptions{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow daemon events",
		Long: `Follow the daemon's event stream until it completes or dockhand is
interrupted. Without an until filter the stream never completes.`,
		Example: `  dockhand events -f resource=container -f type=start,die
  dockhand events -f since=2024-01-01T00:00:00Z -f until=1704070800 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sopts, err := opts.sessionOptions()
			if err != nil {
				return err
			}
			s, err := root.open()
			if err != nil {
				return err
			}
			defer s.Close()

			return followEvents(cmd.Context(), s, sopts, newPrinter(cmd.OutOrStdout(), opts.format))
		},
	}
	opts.addFlags(cmd)
	cmd.AddCommand(newEventsListCommand(root))
	return cmd
}

func newEventsListCommand(root *rootOptions) *cobra.Command {
	opts := &eventsOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the daemon events of a time window",
		Long:  `List every event between since and until. An until filter is required.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sopts, err := opts.sessionOptions()
			if err != nil {
				return err
			}
			if !hasUntil(opts.filters) {
				return api.NewArgumentError(session.OptUntil, "list needs an until filter")
			}
			s, err := root.open()
			if err != nil {
				return err
			}
			defer s.Close()

			evs, err := s.client.ListEvents(cmd.Context(), sopts...)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), opts.format)
			for i := range evs {
				if err := p(&evs[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func followEvents(ctx context.Context, s *app, opts []session.Option, print func(*api.Event) error) error {
	stream, err := s.client.StreamEvents(ctx, opts...)
	if err != nil {
		return err
	}

	for {
		ev, err := stream.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, api.ErrOwnerGone):
			// Interrupted.
			return nil
		case err != nil:
			return err
		}
		if err := print(ev); err != nil {
			return err
		}
	}
}

func hasUntil(filters []string) bool {
	for _, f := range filters {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(f)), session.OptUntil+"=") {
			return true
		}
	}
	return false
}

func newPrinter(w io.Writer, format string) func(*api.Event) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		return func(ev *api.Event) error { return enc.Encode(ev) }
	}
	return func(ev *api.Event) error {
		_, err := fmt.Fprintf(w, "%s %s %s %s%s\n",
			ev.Timestamp().UTC().Format(time.RFC3339),
			ev.Type, ev.Action, ev.Actor.ID, formatAttributes(ev.Actor.Attributes))
		return err
	}
}

func formatAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + attrs[k]
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
