package calendar

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fxwire/pkg/logx"
)

func writeEvents(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write events file: %v", err)
	}
	return path
}

func TestFileSourceParsesEvents(t *testing.T) {
	t.Parallel()
	path := writeEvents(t, `[
		{"id": "ev1", "title": "قرار الفائدة", "currency": "usd", "datetime": "2026-08-20 15:30", "impact": "High"},
		{"title": "PMI release", "datetime": "2026-08-20T10:00:00", "impact": "medium"}
	]`)
	loc, _ := time.LoadLocation("Asia/Kuwait")
	src := NewFileSource(path, loc, logx.Nop())

	events, err := src.Events(context.Background())
	if err != nil {
		t.Fatalf("Events error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	ev := events[0]
	if ev.ID != "ev1" {
		t.Fatalf("ID = %q, want ev1", ev.ID)
	}
	if ev.Impact != ImpactHigh {
		t.Fatalf("Impact = %v, want high", ev.Impact)
	}
	if ev.Currency != "USD" {
		t.Fatalf("Currency = %q, want USD", ev.Currency)
	}
	want := time.Date(2026, 8, 20, 15, 30, 0, 0, loc)
	if !ev.At.Equal(want) {
		t.Fatalf("At = %v, want %v", ev.At, want)
	}
	if ev.Source != "Economic Calendar" {
		t.Fatalf("Source = %q, want default", ev.Source)
	}

	// Missing id gets a stable derived one.
	if events[1].ID == "" {
		t.Fatal("derived event ID must not be empty")
	}
	if events[1].Impact != ImpactOther {
		t.Fatalf("Impact = %v, want other", events[1].Impact)
	}
}

func TestFileSourceSkipsMalformedEntries(t *testing.T) {
	t.Parallel()
	path := writeEvents(t, `[
		{"title": "", "datetime": "2026-08-20 15:30"},
		{"title": "no time"},
		{"title": "good", "datetime": "2026-08-20 15:30", "impact": "high"}
	]`)
	src := NewFileSource(path, time.UTC, logx.Nop())
	events, err := src.Events(context.Background())
	if err != nil {
		t.Fatalf("Events error: %v", err)
	}
	if len(events) != 1 || events[0].Title != "good" {
		t.Fatalf("events = %+v, want only the valid entry", events)
	}
}

func TestFileSourceMissingFileIsEmpty(t *testing.T) {
	t.Parallel()
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.json"), time.UTC, logx.Nop())
	events, err := src.Events(context.Background())
	if err != nil {
		t.Fatalf("missing file must not error, got %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %d, want 0", len(events))
	}
}

func TestFileSourceInvalidJSON(t *testing.T) {
	t.Parallel()
	path := writeEvents(t, `{not json`)
	src := NewFileSource(path, time.UTC, logx.Nop())
	if _, err := src.Events(context.Background()); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestParseImpact(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want Impact
	}{
		{"high", ImpactHigh},
		{" HIGH ", ImpactHigh},
		{"strong", ImpactHigh},
		{"عالي", ImpactHigh},
		{"medium", ImpactOther},
		{"", ImpactOther},
	}
	for _, tt := range tests {
		if got := ParseImpact(tt.raw); got != tt.want {
			t.Fatalf("ParseImpact(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseEventTimeLayouts(t *testing.T) {
	t.Parallel()
	loc := time.UTC
	for _, raw := range []string{
		"2026-08-20T15:30:00Z",
		"2026-08-20T15:30:00",
		"2026-08-20 15:30:00",
		"2026-08-20 15:30",
	} {
		got, err := parseEventTime(raw, loc)
		if err != nil {
			t.Fatalf("parseEventTime(%q) error: %v", raw, err)
		}
		if got.Hour() != 15 || got.Minute() != 30 {
			t.Fatalf("parseEventTime(%q) = %v", raw, got)
		}
	}
	if _, err := parseEventTime("20/08/2026", loc); err == nil {
		t.Fatal("expected error for unknown layout")
	}
}
