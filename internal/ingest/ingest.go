// Package ingest polls the configured feeds and turns novel, strong-enough
// items into dispatch messages.
package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"fxwire/internal/classify"
	"fxwire/internal/dispatch"
	"fxwire/internal/feed"
	"fxwire/internal/format"
	"fxwire/internal/storage"
	"fxwire/internal/textnorm"
	"fxwire/pkg/logx"
)

// Enqueuer is the slice of the dispatch queue producers need.
type Enqueuer interface {
	Enqueue(m dispatch.Message)
}

// Settings are the hot-reloadable knobs.
type Settings struct {
	MinStrength classify.Strength
	ArabicOnly  bool
	MaxPerCycle int
}

func (s Settings) withDefaults() Settings {
	if s.MaxPerCycle <= 0 {
		s.MaxPerCycle = 6
	}
	return s
}

type Loop struct {
	sources []feed.Source
	store   storage.Store
	queue   Enqueuer
	fmtr    *format.Formatter
	log     logx.Logger
	loc     *time.Location
	now     func() time.Time

	mu       sync.RWMutex
	settings Settings
	cls      classify.Classifier

	// pending tracks keys enqueued but not yet finished by the consumer,
	// so the next cycle doesn't enqueue the same item again before the
	// dedup record exists.
	pendingMu sync.Mutex
	pending   map[string]struct{}
}

func New(sources []feed.Source, store storage.Store, queue Enqueuer, fmtr *format.Formatter, cls classify.Classifier, settings Settings, loc *time.Location, log logx.Logger) *Loop {
	if loc == nil {
		loc = time.Local
	}
	return &Loop{
		sources:  sources,
		store:    store,
		queue:    queue,
		fmtr:     fmtr,
		log:      log,
		loc:      loc,
		now:      time.Now,
		settings: settings.withDefaults(),
		cls:      cls,
		pending:  map[string]struct{}{},
	}
}

// Apply swaps the classifier and settings at runtime (config reload).
func (l *Loop) Apply(cls classify.Classifier, settings Settings) {
	l.mu.Lock()
	if cls != nil {
		l.cls = cls
	}
	l.settings = settings.withDefaults()
	l.mu.Unlock()
}

// item is one classified, novel candidate within a cycle.
type item struct {
	fingerprint string
	guidKey     string // empty when the feed supplied no GUID
	title       string
	summary     string
	source      string
	published   time.Time
	strength    classify.Strength
	sentiment   classify.Sentiment
}

// Cycle runs one fetch-filter-enqueue pass over all feeds. A single feed's
// failure is logged and the cycle continues; Cycle itself never fails.
func (l *Loop) Cycle(ctx context.Context) error {
	l.mu.RLock()
	settings := l.settings
	cls := l.cls
	l.mu.RUnlock()

	var candidates []item
	for _, src := range l.sources {
		if ctx.Err() != nil {
			return nil
		}
		entries, err := src.Fetch(ctx)
		if err != nil {
			l.log.Warn("feed fetch failed", logx.String("source", src.Label()), logx.Err(err))
			continue
		}
		candidates = append(candidates, l.sift(src.Label(), entries, cls, settings)...)
	}

	// Presentation policy: newest first across the whole cycle.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].published.After(candidates[j].published)
	})

	posted := 0
	for _, it := range candidates {
		if posted >= settings.MaxPerCycle {
			break
		}
		ok, err := l.isNovel(ctx, it)
		if err != nil {
			// Conservative: an unreadable store must not be treated as
			// "never sent". Skip; next cycle retries.
			l.log.Warn("dedup check failed; skipping item this cycle",
				logx.String("fingerprint", it.fingerprint), logx.Err(err))
			continue
		}
		if !ok {
			continue
		}
		l.enqueue(it)
		posted++
	}
	if posted > 0 {
		l.log.Info("ingest cycle enqueued items", logx.Int("count", posted), logx.Int("candidates", len(candidates)))
	}
	return nil
}

// sift normalizes, classifies and filters one feed's entries.
func (l *Loop) sift(label string, entries []feed.Entry, cls classify.Classifier, settings Settings) []item {
	out := make([]item, 0, len(entries))
	for _, e := range entries {
		title := textnorm.Clean(e.Title)
		if title == "" {
			continue
		}
		summary := textnorm.Clean(e.Summary)
		all := title + " " + summary

		if settings.ArabicOnly && !textnorm.HasArabic(all) {
			continue
		}

		strength, sentiment := cls.Classify(all)
		if strength < settings.MinStrength {
			continue
		}

		published := e.Published
		if published.IsZero() {
			published = l.now()
		}
		published = published.In(l.loc)

		// Published time is part of the key on purpose: a re-published or
		// edited item with a new timestamp counts as new.
		fp := textnorm.Fingerprint(label, title, published.UTC().Format(time.RFC3339))

		it := item{
			fingerprint: fp,
			title:       title,
			summary:     summary,
			source:      label,
			published:   published,
			strength:    strength,
			sentiment:   sentiment,
		}
		if e.GUID != "" {
			it.guidKey = "guid:" + textnorm.Fingerprint(label, e.GUID)
		}
		out = append(out, it)
	}
	return out
}

// isNovel reports whether none of the item's dedup keys are recorded or
// in flight. Fingerprint is canonical; the upstream GUID is an additional
// key, and if either is recorded the item is skipped (never double-post).
func (l *Loop) isNovel(ctx context.Context, it item) (bool, error) {
	l.pendingMu.Lock()
	_, inFlight := l.pending[it.fingerprint]
	l.pendingMu.Unlock()
	if inFlight {
		return false, nil
	}

	for _, key := range it.keys() {
		recorded, err := l.store.IsRecorded(ctx, storage.NamespaceNews, key)
		if err != nil {
			return false, err
		}
		if recorded {
			return false, nil
		}
	}
	return true, nil
}

func (l *Loop) enqueue(it item) {
	keys := it.keys()
	fp := it.fingerprint

	l.pendingMu.Lock()
	l.pending[fp] = struct{}{}
	l.pendingMu.Unlock()

	l.queue.Enqueue(dispatch.Message{
		Payload:   l.fmtr.News(it.title, it.summary, it.source, it.strength, it.sentiment, it.published),
		DedupNS:   storage.NamespaceNews,
		DedupKeys: keys,
		OnDone: func(delivered bool) {
			l.pendingMu.Lock()
			delete(l.pending, fp)
			l.pendingMu.Unlock()
		},
	})
}

func (it item) keys() []string {
	keys := []string{it.fingerprint}
	if it.guidKey != "" {
		keys = append(keys, it.guidKey)
	}
	return keys
}
