// Package format renders the channel-facing Arabic HTML messages. Templating
// is presentation only: nothing in here affects dedup or delivery semantics,
// except the final link-strip guard.
package format

import (
	"fmt"
	"strings"
	"time"

	"fxwire/internal/calendar"
	"fxwire/internal/classify"
	"fxwire/internal/textnorm"
)

const (
	maxSummaryRunes = 520
	timeLayout      = "2006-01-02 15:04"
)

type Formatter struct {
	loc       *time.Location
	signature string
}

// New builds a formatter. signature is the trailing channel tag (e.g.
// "@news_forexq"); empty omits it.
func New(loc *time.Location, signature string) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{loc: loc, signature: signature}
}

// News renders one news item. The output is guaranteed link-free.
func (f *Formatter) News(title, summary, source string, strength classify.Strength, sentiment classify.Sentiment, at time.Time) string {
	summary = trimSummary(title, summary)

	var b strings.Builder
	if strength == classify.StrengthHigh {
		b.WriteString("⭐ <b>خبر مميز اليوم</b>\n\n")
	}
	b.WriteString(sentimentBadge(sentiment))
	b.WriteString("\n\n🔔🌐 <b>صدر الآن</b> ‼️\n\n")
	fmt.Fprintf(&b, "📌 <b>%s</b>\n\n", title)

	if summary != "" {
		fmt.Fprintf(&b, "📝 <b>ملخص الخبر:</b>\n%s\n\n", summary)
	}

	b.WriteString("━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "⚡ <b>قوة الخبر:</b> %s\n", strengthLabel(strength))
	fmt.Fprintf(&b, "🧠 <b>اتجاه السوق:</b> %s\n\n", sentimentLabel(sentiment))
	fmt.Fprintf(&b, "🕒 <b>%s</b>\n", at.In(f.loc).Format(timeLayout))
	fmt.Fprintf(&b, "📰 <b>المصدر:</b> %s", source)
	f.sign(&b)

	// Final guard: no URL ever reaches subscribers.
	return textnorm.StripLinks(b.String())
}

// Alert renders a pre-event alert for the given lead time.
func (f *Formatter) Alert(ev calendar.Event, lead time.Duration) string {
	minutes := int(lead.Minutes())
	header := fmt.Sprintf("⚠️ <b>تنبيه خبر قوي بعد %d دقيقة</b>", minutes)
	if lead <= 10*time.Minute {
		header = fmt.Sprintf("🔥 <b>خبر قوي بعد %d دقائق!</b>", minutes)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "📌 <b>%s</b>\n", ev.Title)
	if ev.Currency != "" {
		fmt.Fprintf(&b, "💱 <b>العملة:</b> %s\n", ev.Currency)
	}
	fmt.Fprintf(&b, "🕒 <b>وقت الخبر:</b> %s\n", ev.At.In(f.loc).Format(timeLayout))
	fmt.Fprintf(&b, "📰 <b>المصدر:</b> %s", ev.Source)
	f.sign(&b)

	return textnorm.StripLinks(b.String())
}

func (f *Formatter) sign(b *strings.Builder) {
	if f.signature != "" {
		fmt.Fprintf(b, "\n\n— %s", f.signature)
	}
}

// trimSummary drops a title-echoing prefix and caps the length.
func trimSummary(title, summary string) string {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return ""
	}
	if strings.HasPrefix(summary, title) {
		summary = strings.TrimSpace(strings.TrimPrefix(summary, title))
	}
	r := []rune(summary)
	if len(r) > maxSummaryRunes {
		summary = strings.TrimRight(string(r[:maxSummaryRunes]), " ") + "..."
	}
	return summary
}

func sentimentBadge(s classify.Sentiment) string {
	switch s {
	case classify.SentimentPositive:
		return "🟢 <b>إيجابي</b>"
	case classify.SentimentNegative:
		return "🔴 <b>سلبي</b>"
	default:
		return "⚪️ <b>محايد</b>"
	}
}

func sentimentLabel(s classify.Sentiment) string {
	switch s {
	case classify.SentimentPositive:
		return "إيجابي"
	case classify.SentimentNegative:
		return "سلبي"
	default:
		return "محايد"
	}
}

func strengthLabel(s classify.Strength) string {
	switch s {
	case classify.StrengthHigh:
		return "عالي جداً 🔥"
	case classify.StrengthMedium:
		return "متوسط ⚡"
	default:
		return "منخفض ✨"
	}
}
