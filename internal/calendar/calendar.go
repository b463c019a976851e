// Package calendar loads the economic-calendar snapshot consumed by the
// alert scheduler. The file is re-read wholesale on every tick: snapshot
// semantics, no diffing. Alert-key dedup substitutes for diffing.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"fxwire/internal/textnorm"
	"fxwire/pkg/logx"
)

type Impact int

const (
	ImpactOther Impact = iota
	ImpactHigh
)

// ParseImpact accepts the impact spellings seen in calendar exports.
func ParseImpact(s string) Impact {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "strong", "عالي":
		return ImpactHigh
	default:
		return ImpactOther
	}
}

type Event struct {
	ID       string
	Title    string
	Currency string
	Country  string
	Source   string
	At       time.Time
	Impact   Impact
}

// Source returns the full current set of known events.
type Source interface {
	Events(ctx context.Context) ([]Event, error)
}

// FileSource reads a JSON events file. A missing file is an empty calendar,
// not an error; malformed entries are skipped with a log line so one bad row
// can't block alerts for the rest.
type FileSource struct {
	path string
	loc  *time.Location
	log  logx.Logger
}

type rawEvent struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Currency string `json:"currency,omitempty"`
	Country  string `json:"country,omitempty"`
	Source   string `json:"source,omitempty"`
	Datetime string `json:"datetime"`
	Impact   string `json:"impact,omitempty"`
}

func NewFileSource(path string, loc *time.Location, log logx.Logger) *FileSource {
	if loc == nil {
		loc = time.Local
	}
	return &FileSource{path: path, loc: loc, log: log}
}

func (s *FileSource) Events(ctx context.Context) ([]Event, error) {
	_ = ctx
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read events file: %w", err)
	}

	var raw []rawEvent
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse events file: %w", err)
	}

	events := make([]Event, 0, len(raw))
	for i, r := range raw {
		ev, err := s.build(r)
		if err != nil {
			s.log.Warn("skipping calendar entry", logx.Int("index", i), logx.Err(err))
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *FileSource) build(r rawEvent) (Event, error) {
	title := textnorm.Clean(r.Title)
	if title == "" {
		return Event{}, fmt.Errorf("event title is empty")
	}
	at, err := parseEventTime(r.Datetime, s.loc)
	if err != nil {
		return Event{}, err
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = textnorm.Fingerprint(title, r.Datetime)
	}
	src := textnorm.Clean(r.Source)
	if src == "" {
		src = "Economic Calendar"
	}

	return Event{
		ID:       id,
		Title:    title,
		Currency: strings.ToUpper(textnorm.Clean(r.Currency)),
		Country:  textnorm.Clean(r.Country),
		Source:   src,
		At:       at.In(s.loc),
		Impact:   ParseImpact(r.Impact),
	}, nil
}

func parseEventTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("event datetime is empty")
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized event datetime %q", raw)
}
