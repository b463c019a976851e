// Package alert turns high-impact calendar events into pre-event messages.
//
// The scheduler is tick-driven and stateless across ticks: each tick reloads
// the calendar snapshot and re-derives what is due. The dedup store, keyed by
// event and lead time, is what makes firing idempotent: restarts, clock jumps
// and duplicate ticks all collapse into "already recorded".
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fxwire/internal/calendar"
	"fxwire/internal/dispatch"
	"fxwire/internal/format"
	"fxwire/internal/storage"
	"fxwire/pkg/logx"
)

// Enqueuer is the slice of the dispatch queue the scheduler needs.
type Enqueuer interface {
	Enqueue(m dispatch.Message)
}

type Scheduler struct {
	src   calendar.Source
	store storage.Store
	queue Enqueuer
	fmtr  *format.Formatter
	leads []time.Duration
	log   logx.Logger
	now   func() time.Time

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

// New builds a scheduler. leads are the alert lead times, e.g. 30m and 5m
// before the event; zero or negative leads are ignored.
func New(src calendar.Source, store storage.Store, queue Enqueuer, fmtr *format.Formatter, leads []time.Duration, log logx.Logger) *Scheduler {
	kept := make([]time.Duration, 0, len(leads))
	for _, l := range leads {
		if l > 0 {
			kept = append(kept, l)
		}
	}
	return &Scheduler{
		src:     src,
		store:   store,
		queue:   queue,
		fmtr:    fmtr,
		leads:   kept,
		log:     log,
		now:     time.Now,
		pending: map[string]struct{}{},
	}
}

// Key names one (event, lead) alert in the dedup store.
func Key(eventID string, lead time.Duration) string {
	return fmt.Sprintf("%s_%d", eventID, int(lead.Minutes()))
}

// Tick runs one scheduling pass. Calendar read failures are logged and the
// tick ends; nothing fires off stale state.
func (s *Scheduler) Tick(ctx context.Context) error {
	events, err := s.src.Events(ctx)
	if err != nil {
		s.log.Warn("calendar read failed", logx.Err(err))
		return nil
	}

	now := s.now()
	for _, ev := range events {
		if ev.Impact != calendar.ImpactHigh {
			continue
		}
		for _, lead := range s.leads {
			if ctx.Err() != nil {
				return nil
			}
			s.consider(ctx, ev, lead, now)
		}
	}
	return nil
}

// consider fires one (event, lead) alert if it is inside its window and not
// already recorded or in flight.
func (s *Scheduler) consider(ctx context.Context, ev calendar.Event, lead time.Duration, now time.Time) {
	// The window is [At-lead, At): late process starts still alert as long
	// as the event hasn't happened, and nothing ever fires after it has.
	dueAt := ev.At.Add(-lead)
	if now.Before(dueAt) || !now.Before(ev.At) {
		return
	}

	key := Key(ev.ID, lead)

	s.pendingMu.Lock()
	_, inFlight := s.pending[key]
	s.pendingMu.Unlock()
	if inFlight {
		return
	}

	recorded, err := s.store.IsRecorded(ctx, storage.NamespaceAlerts, key)
	if err != nil {
		// Unreadable store must not read as "never fired". Skip; the next
		// tick retries while the window is still open.
		s.log.Warn("alert dedup check failed", logx.String("key", key), logx.Err(err))
		return
	}
	if recorded {
		return
	}

	s.pendingMu.Lock()
	s.pending[key] = struct{}{}
	s.pendingMu.Unlock()

	s.queue.Enqueue(dispatch.Message{
		Payload:   s.fmtr.Alert(ev, lead),
		DedupNS:   storage.NamespaceAlerts,
		DedupKeys: []string{key},
		OnDone: func(delivered bool) {
			s.pendingMu.Lock()
			delete(s.pending, key)
			s.pendingMu.Unlock()
		},
	})
	s.log.Info("alert enqueued",
		logx.String("event", ev.Title),
		logx.Duration("lead", lead),
		logx.Time("event_at", ev.At))
}
