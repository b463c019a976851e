package format

import (
	"strings"
	"testing"
	"time"

	"fxwire/internal/calendar"
	"fxwire/internal/classify"
)

var at = time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)

func TestNewsMessage(t *testing.T) {
	t.Parallel()
	f := New(time.UTC, "@news_forexq")
	msg := f.News("التضخم الأمريكي يرتفع", "تفاصيل الخبر هنا", "FXStreet",
		classify.StrengthHigh, classify.SentimentNegative, at)

	for _, want := range []string{
		"خبر مميز اليوم", // high-strength header
		"التضخم الأمريكي يرتفع",
		"تفاصيل الخبر هنا",
		"🔴",
		"FXStreet",
		"2026-08-20 15:30",
		"— @news_forexq",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestNewsOmitsHighHeaderAndSignature(t *testing.T) {
	t.Parallel()
	f := New(time.UTC, "")
	msg := f.News("عنوان", "", "Investing", classify.StrengthMedium, classify.SentimentNeutral, at)
	if strings.Contains(msg, "خبر مميز اليوم") {
		t.Fatal("medium strength must not get the star header")
	}
	if strings.Contains(msg, "—") {
		t.Fatal("empty signature must not be rendered")
	}
	if strings.Contains(msg, "ملخص الخبر") {
		t.Fatal("empty summary must omit the summary block")
	}
}

func TestNewsStripsLinks(t *testing.T) {
	t.Parallel()
	f := New(time.UTC, "")
	msg := f.News("عنوان", "اقرأ المزيد https://evil.example.com/x", "src",
		classify.StrengthLow, classify.SentimentNeutral, at)
	if strings.Contains(strings.ToLower(msg), "http") {
		t.Fatalf("link leaked into message:\n%s", msg)
	}
}

func TestNewsTrimsTitleEchoAndLength(t *testing.T) {
	t.Parallel()
	f := New(time.UTC, "")
	long := strings.Repeat("كلمة ", 300)
	msg := f.News("عنوان الخبر", "عنوان الخبر "+long, "src",
		classify.StrengthLow, classify.SentimentNeutral, at)
	if strings.Count(msg, "عنوان الخبر") != 1 {
		t.Fatal("summary must not re-open with the title")
	}
	if !strings.Contains(msg, "...") {
		t.Fatal("overlong summary must be truncated")
	}
}

func TestAlertHeaders(t *testing.T) {
	t.Parallel()
	f := New(time.UTC, "@news_forexq")
	ev := calendar.Event{
		ID:       "ev1",
		Title:    "قرار الفائدة",
		Currency: "USD",
		Source:   "Economic Calendar",
		At:       at,
		Impact:   calendar.ImpactHigh,
	}

	long := f.Alert(ev, 30*time.Minute)
	if !strings.Contains(long, "⚠️") || !strings.Contains(long, "30") {
		t.Fatalf("30m alert header wrong:\n%s", long)
	}
	short := f.Alert(ev, 5*time.Minute)
	if !strings.Contains(short, "🔥") || !strings.Contains(short, "5") {
		t.Fatalf("5m alert header wrong:\n%s", short)
	}
	for _, want := range []string{"قرار الفائدة", "USD", "2026-08-20 15:30", "Economic Calendar"} {
		if !strings.Contains(short, want) {
			t.Fatalf("alert missing %q:\n%s", want, short)
		}
	}
}
