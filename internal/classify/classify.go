// Package classify maps normalized news text to a strength tier and a
// sentiment label. The keyword tables are data: they can be replaced via
// config without touching the pipeline, and the Classifier interface keeps
// the whole heuristic swappable.
package classify

import (
	"strings"
)

type Strength int

const (
	StrengthLow Strength = iota
	StrengthMedium
	StrengthHigh
)

func (s Strength) String() string {
	switch s {
	case StrengthHigh:
		return "HIGH"
	case StrengthMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// ParseStrength accepts the tier names used in config ("MED" kept as an
// alias for older configs).
func ParseStrength(s string) (Strength, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return StrengthHigh, true
	case "MEDIUM", "MED":
		return StrengthMedium, true
	case "LOW":
		return StrengthLow, true
	default:
		return StrengthLow, false
	}
}

type Sentiment int

const (
	SentimentNeutral Sentiment = iota
	SentimentPositive
	SentimentNegative
)

func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "POSITIVE"
	case SentimentNegative:
		return "NEGATIVE"
	default:
		return "NEUTRAL"
	}
}

// Classifier is a pure, total function over text.
type Classifier interface {
	Classify(text string) (Strength, Sentiment)
}

// Tables holds the keyword lists for the default classifier.
type Tables struct {
	High     []string
	Medium   []string
	Positive []string
	Negative []string
}

func (t Tables) withDefaults() Tables {
	if len(t.High) == 0 {
		t.High = defaultHigh
	}
	if len(t.Medium) == 0 {
		t.Medium = defaultMedium
	}
	if len(t.Positive) == 0 {
		t.Positive = defaultPositive
	}
	if len(t.Negative) == 0 {
		t.Negative = defaultNegative
	}
	return t
}

// Keyword is a case-insensitive substring classifier.
//
// Strength: any high-table hit wins, then any medium-table hit, else LOW.
// Sentiment: whichever of positive/negative scores more hits; ties are
// neutral.
type Keyword struct {
	tables Tables
}

func NewKeyword(t Tables) *Keyword {
	return &Keyword{tables: t.withDefaults()}
}

func (k *Keyword) Classify(text string) (Strength, Sentiment) {
	t := strings.ToLower(text)

	strength := StrengthLow
	if containsAny(t, k.tables.High) {
		strength = StrengthHigh
	} else if containsAny(t, k.tables.Medium) {
		strength = StrengthMedium
	}

	pos := countHits(t, k.tables.Positive)
	neg := countHits(t, k.tables.Negative)
	sentiment := SentimentNeutral
	switch {
	case pos > neg && pos > 0:
		sentiment = SentimentPositive
	case neg > pos && neg > 0:
		sentiment = SentimentNegative
	}

	return strength, sentiment
}

func containsAny(t string, kws []string) bool {
	for _, kw := range kws {
		if kw != "" && strings.Contains(t, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func countHits(t string, kws []string) int {
	n := 0
	for _, kw := range kws {
		if kw != "" && strings.Contains(t, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
