package debug

import (
	"bytes"
	"log/slog"
	"testing"
)

func setCategories(t *testing.T, s string) {
	t.Helper()
	mu.Lock()
	orig := categories
	categories = parseCategories(s)
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		categories = orig
		mu.Unlock()
	})
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "session", map[string]bool{"session": true}},
		{"multiple", "session,transport", map[string]bool{"session": true, "transport": true}},
		{"all", "all", map[string]bool{"all": true}},
		{"with spaces", " session , transport ", map[string]bool{"session": true, "transport": true}},
		{"uppercase normalized", "SESSION,Transport", map[string]bool{"session": true, "transport": true}},
		{"empty segments", "session,,transport", map[string]bool{"session": true, "transport": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCategories(tt.input)
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %v, want %v", k, got[k], v)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("len(got) = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	setCategories(t, "session,transport")

	if !Enabled(CategorySession) {
		t.Error("session should be enabled")
	}
	if !Enabled(CategoryTransport) {
		t.Error("transport should be enabled")
	}
	if Enabled(CategoryRegistry) {
		t.Error("registry should not be enabled")
	}
}

func TestEnabled_All(t *testing.T) {
	setCategories(t, "all")

	for _, c := range []string{CategorySession, CategoryTransport, "anything"} {
		if !Enabled(c) {
			t.Errorf("%s should be enabled via 'all'", c)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"TRACE", LevelTrace},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoriesSorted(t *testing.T) {
	setCategories(t, "transport,config,session")

	got := Categories()
	want := []string{"config", "session", "transport"}
	if len(got) != len(want) {
		t.Fatalf("Categories() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRawRequiresTrace(t *testing.T) {
	setCategories(t, "transport")

	var buf bytes.Buffer
	origOut, origLogger := rawOut, slog.Default()
	rawOut = &buf
	t.Cleanup(func() {
		rawOut = origOut
		slog.SetDefault(origLogger)
	})

	slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})))
	Raw(CategoryTransport, "chunk")
	if buf.Len() != 0 {
		t.Errorf("Raw wrote %q at INFO level", buf.String())
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: LevelTrace})))
	Raw(CategoryTransport, "chunk")
	if buf.String() != "chunk\n" {
		t.Errorf("Raw wrote %q at TRACE level, want %q", buf.String(), "chunk\n")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate long = %q", got)
	}
}
