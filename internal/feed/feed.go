// Package feed wraps RSS/Atom sources behind a small fetch interface.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one raw feed item. Published may be zero when the source omits
// it; the ingestion loop substitutes the current time.
type Entry struct {
	GUID      string
	Title     string
	Summary   string
	Published time.Time
}

type Source interface {
	// Label is a short, stable, link-free source name used in messages and
	// as part of the dedup fingerprint.
	Label() string
	Fetch(ctx context.Context) ([]Entry, error)
}

type HTTPSource struct {
	url   string
	label string
	max   int

	client *http.Client
	parser *gofeed.Parser
}

// NewHTTPSource builds a source for one feed URL. label may be empty, in
// which case it is derived from the feed host. max caps entries per fetch.
func NewHTTPSource(feedURL, label string, max int) *HTTPSource {
	if label == "" {
		label = labelFromURL(feedURL)
	}
	if max <= 0 {
		max = 40
	}
	return &HTTPSource{
		url:    feedURL,
		label:  label,
		max:    max,
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
	}
}

func (s *HTTPSource) Label() string { return s.label }

func (s *HTTPSource) Fetch(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	f, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := f.Items
	if len(items) > s.max {
		items = items[:s.max]
	}

	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		e := Entry{
			GUID:    it.GUID,
			Title:   it.Title,
			Summary: it.Description,
		}
		if e.Summary == "" {
			e.Summary = it.Content
		}
		if it.PublishedParsed != nil {
			e.Published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			e.Published = *it.UpdatedParsed
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// labelFromURL maps known feed hosts to their channel-facing names and falls
// back to the bare host.
func labelFromURL(feedURL string) string {
	host := ""
	if u, err := url.Parse(feedURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}
	switch {
	case strings.Contains(host, "fxstreet"):
		return "FXStreet"
	case strings.Contains(host, "investing"):
		return "Investing"
	case strings.Contains(host, "dailyforex"):
		return "DailyForex"
	case strings.Contains(host, "arabictrader"):
		return "ArabicTrader"
	}
	if host == "" {
		return "feed"
	}
	if len(host) > 40 {
		host = host[:40]
	}
	return host
}
