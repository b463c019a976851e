package classify

import "testing"

func TestKeywordDefaults(t *testing.T) {
	t.Parallel()
	k := NewKeyword(Tables{})

	tests := []struct {
		name      string
		text      string
		strength  Strength
		sentiment Sentiment
	}{
		{name: "high english", text: "US CPI comes in hot", strength: StrengthHigh},
		{name: "high arabic", text: "ارتفاع التضخم في أمريكا", strength: StrengthHigh},
		{name: "medium", text: "retail sales slightly above estimates", strength: StrengthMedium},
		{name: "low", text: "weekly market recap and commentary", strength: StrengthLow},
		{name: "case insensitive", text: "cpi SURPRISES to the upside", strength: StrengthHigh},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s, _ := k.Classify(tt.text)
			if s != tt.strength {
				t.Fatalf("Classify(%q) strength = %v, want %v", tt.text, s, tt.strength)
			}
		})
	}
}

func TestKeywordSentiment(t *testing.T) {
	t.Parallel()
	k := NewKeyword(Tables{
		High:     []string{"cpi"},
		Medium:   []string{"pmi"},
		Positive: []string{"beats", "rises", "strong"},
		Negative: []string{"misses", "falls"},
	})

	if _, s := k.Classify("cpi beats and rises strong while one miss"); s != SentimentPositive {
		t.Fatalf("sentiment = %v, want positive", s)
	}
	if _, s := k.Classify("cpi misses badly and falls"); s != SentimentNegative {
		t.Fatalf("sentiment = %v, want negative", s)
	}
	// Equal hit counts stay neutral.
	if _, s := k.Classify("cpi beats then misses"); s != SentimentNeutral {
		t.Fatalf("sentiment = %v, want neutral on tie", s)
	}
	if _, s := k.Classify("cpi release at 14:30"); s != SentimentNeutral {
		t.Fatalf("sentiment = %v, want neutral with no hits", s)
	}
}

func TestKeywordHighWinsOverMedium(t *testing.T) {
	t.Parallel()
	k := NewKeyword(Tables{High: []string{"rate decision"}, Medium: []string{"rate"}})
	if s, _ := k.Classify("fed rate decision tonight"); s != StrengthHigh {
		t.Fatalf("strength = %v, want high when both tables hit", s)
	}
}

func TestParseStrength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want Strength
		ok   bool
	}{
		{"HIGH", StrengthHigh, true},
		{"medium", StrengthMedium, true},
		{" med ", StrengthMedium, true},
		{"low", StrengthLow, true},
		{"bogus", StrengthLow, false},
	}
	for _, tt := range tests {
		got, ok := ParseStrength(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseStrength(%q) = %v,%v, want %v,%v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStrengthOrdering(t *testing.T) {
	t.Parallel()
	if !(StrengthLow < StrengthMedium && StrengthMedium < StrengthHigh) {
		t.Fatal("strength tiers must be ordered low < medium < high")
	}
}
