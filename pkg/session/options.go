package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rhuss/dockhand/pkg/api"
)

// Option keys, as accepted by ParseFilterArgs and reported in
// api.ArgumentError.
const (
	OptSince    = "since"
	OptUntil    = "until"
	OptResource = "resource"
	OptType     = "type"
	OptOwner    = "owner"
)

// Options configure a stream request.
type Options struct {
	Filter api.Filter

	// Owner receives the events. Callers that leave it nil get an owner
	// bound to their context.
	Owner *Owner

	// NotFoundAware reports a 404 on open as api.NotFoundError.
	NotFoundAware bool
}

type builder struct {
	opts Options
	seen map[string]bool
}

// once rejects a second use of a non-repeatable option.
func (b *builder) once(key string) error {
	if b.seen[key] {
		return api.NewArgumentError(key, "option given more than once")
	}
	b.seen[key] = true
	return nil
}

// Option sets one stream request option.
type Option func(*builder) error

// WithSince starts the stream at t. Default: the epoch start.
func WithSince(t time.Time) Option {
	return func(b *builder) error {
		if err := b.once(OptSince); err != nil {
			return err
		}
		b.opts.Filter.Since = t
		return nil
	}
}

// WithUntil ends the stream at t. Without it the stream is open-ended.
// A bound in the future makes the daemon hold the stream open until then.
func WithUntil(t time.Time) Option {
	return func(b *builder) error {
		if err := b.once(OptUntil); err != nil {
			return err
		}
		b.opts.Filter.Until = &t
		return nil
	}
}

// WithResource adds resource types to the whitelist. Repeatable.
func WithResource(resources ...string) Option {
	return func(b *builder) error {
		for _, r := range resources {
			if !api.KnownResource(r) {
				return api.NewArgumentError(OptResource, fmt.Sprintf("unknown resource type %q", r))
			}
			b.opts.Filter.Resources = append(b.opts.Filter.Resources, r)
		}
		return nil
	}
}

// WithType adds event types (e.g. "start", "die") to the whitelist. Repeatable.
func WithType(types ...string) Option {
	return func(b *builder) error {
		for _, t := range types {
			if strings.TrimSpace(t) == "" {
				return api.NewArgumentError(OptType, "event type must not be empty")
			}
			b.opts.Filter.Types = append(b.opts.Filter.Types, t)
		}
		return nil
	}
}

// WithOwner delivers events to o instead of an owner bound to the caller's
// context.
func WithOwner(o *Owner) Option {
	return func(b *builder) error {
		if err := b.once(OptOwner); err != nil {
			return err
		}
		if o == nil {
			return api.NewArgumentError(OptOwner, "owner must not be nil")
		}
		b.opts.Owner = o
		return nil
	}
}

// WithNotFound reports a 404 from the daemon as api.NotFoundError.
func WithNotFound() Option {
	return func(b *builder) error {
		b.opts.NotFoundAware = true
		return nil
	}
}

// BuildOptions applies opts in order and validates the result. Every error
// is an api.ArgumentError.
func BuildOptions(opts ...Option) (Options, error) {
	b := &builder{seen: make(map[string]bool)}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(b); err != nil {
			return Options{}, err
		}
	}

	f := b.opts.Filter
	if f.Until != nil && f.Until.Before(f.Since) {
		return Options{}, api.NewArgumentError(OptUntil, "until must not be before since")
	}
	return b.opts, nil
}

// ParseFilterArgs turns "key=value" arguments into options. Keys are since,
// until (unix seconds or RFC 3339), resource and type. resource and type
// may repeat; their values may also be comma separated.
func ParseFilterArgs(args []string) ([]Option, error) {
	var opts []Option
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" || value == "" {
			return nil, api.NewArgumentError("", fmt.Sprintf("filter %q must have the form key=value", arg))
		}

		switch strings.ToLower(strings.TrimSpace(key)) {
		case OptSince:
			t, err := parseTime(OptSince, value)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithSince(t))
		case OptUntil:
			t, err := parseTime(OptUntil, value)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithUntil(t))
		case OptResource:
			opts = append(opts, WithResource(splitList(value)...))
		case OptType:
			opts = append(opts, WithType(splitList(value)...))
		default:
			return nil, api.NewArgumentError(key, "unknown filter option")
		}
	}
	return opts, nil
}

func parseTime(key, value string) (time.Time, error) {
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, api.NewArgumentError(key, fmt.Sprintf("%q is neither unix seconds nor RFC 3339", value))
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
