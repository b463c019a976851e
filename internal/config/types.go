package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	// Timezone is the IANA zone used for message timestamps and calendar
	// arithmetic (e.g. "Asia/Kuwait").
	Timezone string `json:"timezone,omitempty"`

	Feeds    []FeedConfig   `json:"feeds,omitempty"`
	Calendar CalendarConfig `json:"calendar,omitempty"`

	Ingest     IngestConfig      `json:"ingest"`
	Classifier *ClassifierConfig `json:"classifier,omitempty"`
	Dispatch   DispatchConfig    `json:"dispatch"`
	Telegram   TelegramConfig    `json:"telegram"`
	Storage    StorageConfig     `json:"storage"`
	Logging    LoggingConfig     `json:"logging"`
}

type FeedConfig struct {
	URL string `json:"url"`
	// Label overrides the source label derived from the feed host.
	Label string `json:"label,omitempty"`
}

// CalendarConfig points at the economic-calendar snapshot file.
// An empty path disables the alert path entirely.
type CalendarConfig struct {
	Path string `json:"path,omitempty"`
	// PollInterval is a Go duration string. Default "1m".
	PollInterval string `json:"poll_interval,omitempty"`
	// LeadTimesMinutes are the pre-event alert offsets. Default [30, 5].
	LeadTimesMinutes []int `json:"lead_times_minutes,omitempty"`
}

type IngestConfig struct {
	// PollInterval is a Go duration string. Default "1m".
	PollInterval string `json:"poll_interval,omitempty"`
	// MaxPerFeed caps entries taken from one feed per cycle. Default 40.
	MaxPerFeed int `json:"max_per_feed,omitempty"`
	// MaxPerCycle caps items enqueued per cycle across all feeds. Default 6.
	MaxPerCycle int `json:"max_per_cycle,omitempty"`
	// MinStrength drops items classified below this tier ("LOW"/"MEDIUM"/"HIGH").
	// Default "MEDIUM".
	MinStrength string `json:"min_strength,omitempty"`
	// ArabicOnly drops items whose title+summary contain no Arabic script.
	ArabicOnly bool `json:"arabic_only,omitempty"`
}

// ClassifierConfig overrides the built-in keyword tables.
// Empty lists keep the defaults; the tables are data, not code.
type ClassifierConfig struct {
	HighKeywords     []string `json:"high_keywords,omitempty"`
	MediumKeywords   []string `json:"medium_keywords,omitempty"`
	PositiveKeywords []string `json:"positive_keywords,omitempty"`
	NegativeKeywords []string `json:"negative_keywords,omitempty"`
}

type DispatchConfig struct {
	// MinInterval is the minimum spacing between sends. Default "3s".
	MinInterval string `json:"min_interval,omitempty"`
	// MaxAttempts bounds retries per message (flood waits excluded). Default 8.
	MaxAttempts int `json:"max_attempts,omitempty"`
	// TransientDelay is slept before retrying a network/timeout failure. Default "3s".
	TransientDelay string `json:"transient_delay,omitempty"`
	// FatalDelay is slept before retrying an unclassified failure. Default "2s".
	FatalDelay string `json:"fatal_delay,omitempty"`
}

type TelegramConfig struct {
	// Token may be left empty in the file and supplied via FXWIRE_BOT_TOKEN.
	Token string `json:"token,omitempty"`
	// ChatID is the destination channel ("@channel" or "-100...").
	ChatID string `json:"chat_id"`
}

// StorageConfig controls the dedup persistence layer.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./fxwire.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Validate checks cross-field requirements and duration syntax.
// Token presence is checked later, after the env override is applied.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Feeds) == 0 && strings.TrimSpace(c.Calendar.Path) == "" {
		return errors.New("config: at least one feed or a calendar path is required")
	}
	for i, f := range c.Feeds {
		if strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("config: feeds[%d].url is empty", i)
		}
	}
	if strings.TrimSpace(c.Telegram.ChatID) == "" {
		return errors.New("config: telegram.chat_id is required")
	}
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("config: invalid timezone %q: %w", tz, err)
		}
	}
	for _, lt := range c.Calendar.LeadTimesMinutes {
		if lt <= 0 {
			return fmt.Errorf("config: calendar.lead_times_minutes must be positive, got %d", lt)
		}
	}
	durations := []struct {
		path string
		raw  string
	}{
		{"ingest.poll_interval", c.Ingest.PollInterval},
		{"calendar.poll_interval", c.Calendar.PollInterval},
		{"dispatch.min_interval", c.Dispatch.MinInterval},
		{"dispatch.transient_delay", c.Dispatch.TransientDelay},
		{"dispatch.fatal_delay", c.Dispatch.FatalDelay},
		{"storage.busy_timeout", c.Storage.BusyTimeout},
	}
	for _, d := range durations {
		if _, err := ParseDurationField(d.path, d.raw); err != nil {
			return err
		}
	}
	return nil
}
