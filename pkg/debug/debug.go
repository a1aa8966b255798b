// Package debug provides category-based debug logging for dockhand.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): DOCKHAND_DEBUG env or the debug.categories config key
//   - Levels (HOW MUCH detail): DOCKHAND_LOG_LEVEL env or the debug.level config key
//
// Usage:
//
//	debug.Log(debug.CategorySession, "delivering event", "session", id, "type", ev.Type)
//	if debug.Enabled(debug.CategoryTransport) { /* expensive formatting */ }
//
// Levels: ERROR, WARN, INFO, DEBUG, TRACE. At TRACE, raw stream chunks are
// written to stderr.
package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// Debug categories used across the client packages.
const (
	CategoryTransport = "transport"
	CategorySession   = "session"
	CategoryRegistry  = "registry"
	CategoryConfig    = "config"
	CategoryAll       = "all"
)

// LevelTrace is below slog.LevelDebug for maximum verbosity.
const LevelTrace = slog.LevelDebug - 4

var (
	mu         sync.RWMutex
	categories map[string]bool
	rawOut     io.Writer = os.Stderr
)

func init() {
	categories = parseCategories(os.Getenv("DOCKHAND_DEBUG"))
}

// Init configures categories and the default slog handler. Environment
// variables take precedence over the passed config values.
func Init(configCategories string, configLevel string) {
	cats := os.Getenv("DOCKHAND_DEBUG")
	if cats == "" {
		cats = configCategories
	}

	level := os.Getenv("DOCKHAND_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}

	mu.Lock()
	categories = parseCategories(cats)
	mu.Unlock()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})))
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categories[CategoryAll] || categories[category]
}

// Log emits a debug message for the given category. No-op when the
// category is disabled.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level message for the given category.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether TRACE level is active for the given category.
func TraceIsEnabled(category string) bool {
	if !Enabled(category) {
		return false
	}
	return slog.Default().Enabled(context.Background(), LevelTrace)
}

// Raw writes plain text without slog formatting. Only emitted when the
// category is enabled AND the level is TRACE.
func Raw(category string, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(rawOut, text)
}

// ParseLevel converts a level string to a slog.Level. Unknown values map
// to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories in sorted order.
func Categories() []string {
	mu.RLock()
	defer mu.RUnlock()
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
