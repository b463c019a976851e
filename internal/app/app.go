// Package app wires the pipeline together and owns its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"fxwire/internal/alert"
	"fxwire/internal/calendar"
	"fxwire/internal/classify"
	"fxwire/internal/config"
	"fxwire/internal/dispatch"
	"fxwire/internal/feed"
	"fxwire/internal/format"
	"fxwire/internal/ingest"
	"fxwire/internal/publish/telegram"
	"fxwire/internal/runtime/supervisor"
	"fxwire/internal/schedule"
	"fxwire/internal/storage"
	"fxwire/pkg/logx"
)

// TokenEnv overrides telegram.token from the config file when set.
const TokenEnv = "FXWIRE_BOT_TOKEN"

const defaultTimezone = "Asia/Kuwait"

// Run starts the pipeline and blocks until ctx is canceled or startup fails.
func Run(ctx context.Context, configPath string) error {
	mgr := config.NewManager(configPath)
	cfg, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logSvc.Close()
	mgr.SetLogger(log.With(logx.String("component", "config")))

	token := strings.TrimSpace(cfg.Telegram.Token)
	if env := strings.TrimSpace(os.Getenv(TokenEnv)); env != "" {
		token = env
	}
	if token == "" {
		return errors.New("telegram token is empty: set telegram.token or " + TokenEnv)
	}

	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", tz, err)
	}

	busyTimeout, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return err
	}
	storePath := strings.TrimSpace(cfg.Storage.Path)
	if storePath == "" {
		storePath = "./fxwire.state"
	}
	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        storePath,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("component", "storage")))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	pub, err := telegram.New(telegram.Config{Token: token, ChatID: cfg.Telegram.ChatID},
		log.With(logx.String("component", "telegram")))
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	dispatchCfg, err := dispatchConfig(cfg)
	if err != nil {
		return err
	}
	queue := dispatch.New(dispatchCfg, pub, store, log.With(logx.String("component", "dispatch")))

	// The channel handle doubles as the message signature when it is a
	// public "@name"; numeric chats get no signature.
	signature := ""
	if strings.HasPrefix(strings.TrimSpace(cfg.Telegram.ChatID), "@") {
		signature = strings.TrimSpace(cfg.Telegram.ChatID)
	}
	fmtr := format.New(loc, signature)

	sched := schedule.New(loc, log.With(logx.String("component", "schedule")))
	sup := supervisor.New(ctx, supervisor.WithLogger(log.With(logx.String("component", "supervisor"))))

	var ingestLoop *ingest.Loop
	if len(cfg.Feeds) > 0 {
		sources := make([]feed.Source, 0, len(cfg.Feeds))
		for _, fc := range cfg.Feeds {
			sources = append(sources, feed.NewHTTPSource(fc.URL, fc.Label, cfg.Ingest.MaxPerFeed))
		}
		ingestLoop = ingest.New(sources, store, queue, fmtr,
			classify.NewKeyword(classifierTables(cfg)), ingestSettings(cfg), loc,
			log.With(logx.String("component", "ingest")))

		interval, err := config.ParseDurationOrDefault("ingest.poll_interval", cfg.Ingest.PollInterval, time.Minute)
		if err != nil {
			return err
		}
		if err := sched.Every("ingest", interval, ingestLoop.Cycle); err != nil {
			return err
		}
	}

	if strings.TrimSpace(cfg.Calendar.Path) != "" {
		src := calendar.NewFileSource(cfg.Calendar.Path, loc, log.With(logx.String("component", "calendar")))
		alerts := alert.New(src, store, queue, fmtr, leadTimes(cfg),
			log.With(logx.String("component", "alert")))

		interval, err := config.ParseDurationOrDefault("calendar.poll_interval", cfg.Calendar.PollInterval, time.Minute)
		if err != nil {
			return err
		}
		if err := sched.Every("alerts", interval, alerts.Tick); err != nil {
			return err
		}
	}

	// Hot-reload path: classifier tables, ingest thresholds and log level
	// apply live. Transport, storage and feed topology need a restart.
	mgr.OnChange(func(next *config.Config) {
		logSvc.Apply(logx.Config{
			Level:   next.Logging.Level,
			Console: next.Logging.Console,
			File: logx.FileConfig{
				Enabled: next.Logging.File.Enabled,
				Path:    next.Logging.File.Path,
			},
		})
		if ingestLoop != nil {
			ingestLoop.Apply(classify.NewKeyword(classifierTables(next)), ingestSettings(next))
		}
	})

	sup.Go("dispatch", queue.Run)
	sup.GoRestart("config-watch", mgr.Watch)

	sched.Start()
	// Under Type=notify units this flips the unit to active; elsewhere it is
	// a no-op.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	log.Info("fxwire started",
		logx.Int("feeds", len(cfg.Feeds)),
		logx.Bool("calendar", strings.TrimSpace(cfg.Calendar.Path) != ""),
		logx.String("timezone", tz))

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	log.Info("shutting down")

	sched.Stop()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sup.Stop(stopCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func dispatchConfig(cfg *config.Config) (dispatch.Config, error) {
	minInterval, err := config.ParseDurationField("dispatch.min_interval", cfg.Dispatch.MinInterval)
	if err != nil {
		return dispatch.Config{}, err
	}
	transient, err := config.ParseDurationField("dispatch.transient_delay", cfg.Dispatch.TransientDelay)
	if err != nil {
		return dispatch.Config{}, err
	}
	fatal, err := config.ParseDurationField("dispatch.fatal_delay", cfg.Dispatch.FatalDelay)
	if err != nil {
		return dispatch.Config{}, err
	}
	return dispatch.Config{
		MinInterval:    minInterval,
		MaxAttempts:    cfg.Dispatch.MaxAttempts,
		TransientDelay: transient,
		FatalDelay:     fatal,
	}, nil
}

func classifierTables(cfg *config.Config) classify.Tables {
	if cfg.Classifier == nil {
		return classify.Tables{}
	}
	return classify.Tables{
		High:     cfg.Classifier.HighKeywords,
		Medium:   cfg.Classifier.MediumKeywords,
		Positive: cfg.Classifier.PositiveKeywords,
		Negative: cfg.Classifier.NegativeKeywords,
	}
}

func ingestSettings(cfg *config.Config) ingest.Settings {
	min := classify.StrengthMedium
	if s, ok := classify.ParseStrength(cfg.Ingest.MinStrength); ok {
		min = s
	}
	return ingest.Settings{
		MinStrength: min,
		ArabicOnly:  cfg.Ingest.ArabicOnly,
		MaxPerCycle: cfg.Ingest.MaxPerCycle,
	}
}

func leadTimes(cfg *config.Config) []time.Duration {
	minutes := cfg.Calendar.LeadTimesMinutes
	if len(minutes) == 0 {
		minutes = []int{30, 5}
	}
	leads := make([]time.Duration, 0, len(minutes))
	for _, m := range minutes {
		leads = append(leads, time.Duration(m)*time.Minute)
	}
	return leads
}
