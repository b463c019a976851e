package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>t</title>%s</channel></rss>`

func rssItem(guid, title, desc, pub string) string {
	return fmt.Sprintf(`<item><guid>%s</guid><title>%s</title><description>%s</description><pubDate>%s</pubDate></item>`,
		guid, title, desc, pub)
}

func TestHTTPSourceFetch(t *testing.T) {
	t.Parallel()
	body := fmt.Sprintf(rssTemplate,
		rssItem("g1", "CPI beats forecast", "details here", "Thu, 20 Aug 2026 12:00:00 GMT")+
			rssItem("g2", "PMI release", "", "Thu, 20 Aug 2026 11:00:00 GMT"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, "Test", 0)
	entries, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	e := entries[0]
	if e.GUID != "g1" || e.Title != "CPI beats forecast" || e.Summary != "details here" {
		t.Fatalf("entry = %+v", e)
	}
	if e.Published.IsZero() {
		t.Fatal("pubDate must be parsed")
	}
}

func TestHTTPSourceCapsEntries(t *testing.T) {
	t.Parallel()
	var items strings.Builder
	for i := 0; i < 10; i++ {
		items.WriteString(rssItem(fmt.Sprintf("g%d", i), fmt.Sprintf("item %d", i), "", ""))
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, rssTemplate, items.String())
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, "Test", 3)
	entries, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3 (capped)", len(entries))
	}
}

func TestHTTPSourceErrorStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, "Test", 0)
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestLabelFromURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.fxstreet.com/rss/news", "FXStreet"},
		{"https://ar.investing.com/rss/news.rss", "Investing"},
		{"https://www.dailyforex.com/rss", "DailyForex"},
		{"https://www.arabictrader.com/rss", "ArabicTrader"},
		{"https://news.example.com/feed", "news.example.com"},
		{"", "feed"},
	}
	for _, tt := range tests {
		if got := labelFromURL(tt.url); got != tt.want {
			t.Fatalf("labelFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestNewHTTPSourceDerivesLabel(t *testing.T) {
	t.Parallel()
	src := NewHTTPSource("https://www.fxstreet.com/rss", "", 0)
	if src.Label() != "FXStreet" {
		t.Fatalf("Label = %q, want FXStreet", src.Label())
	}
	src = NewHTTPSource("https://www.fxstreet.com/rss", "Custom", 0)
	if src.Label() != "Custom" {
		t.Fatalf("Label = %q, want Custom", src.Label())
	}
}
