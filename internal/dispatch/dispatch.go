// Package dispatch owns ordered, flood-safe delivery to the publisher.
//
// The queue is an unbounded FIFO with any number of producers and exactly
// one consumer; at most one message is ever in flight. The consumer is the
// only writer of dedup records, and it records only after the publisher
// confirmed the send.
package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"fxwire/internal/publish"
	"fxwire/internal/storage"
	"fxwire/pkg/logx"
)

// Message is owned by the queue from Enqueue until the consumer finishes
// with it (delivered or dropped).
type Message struct {
	Payload    string
	EnqueuedAt time.Time

	// DedupNS/DedupKeys are recorded in the store after a confirmed send.
	// A news item may carry two keys (fingerprint + upstream GUID key).
	DedupNS   string
	DedupKeys []string

	// OnDone, if set, runs when the consumer finishes with the message:
	// delivered=true after the dedup records are written, delivered=false
	// when the message was dropped. Producers use it to clear in-flight
	// bookkeeping.
	OnDone func(delivered bool)
}

type Config struct {
	// MinInterval is the minimum spacing between any two publisher calls,
	// successful or not. Default 3s.
	MinInterval time.Duration
	// MaxAttempts bounds transient/fatal retries per message. Default 8.
	MaxAttempts int
	// TransientDelay is slept before retrying a network/timeout failure. Default 3s.
	TransientDelay time.Duration
	// FatalDelay is slept before retrying an unclassified failure. Default 2s.
	FatalDelay time.Duration
	// RetryAfterPad is added on top of a provider-mandated wait. Default 1s.
	RetryAfterPad time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinInterval <= 0 {
		c.MinInterval = 3 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.TransientDelay <= 0 {
		c.TransientDelay = 3 * time.Second
	}
	if c.FatalDelay <= 0 {
		c.FatalDelay = 2 * time.Second
	}
	if c.RetryAfterPad <= 0 {
		c.RetryAfterPad = time.Second
	}
	return c
}

type Queue struct {
	cfg   Config
	pub   publish.Publisher
	store storage.Store
	log   logx.Logger

	// limiter is the single pacing gate: every publisher attempt waits on
	// it, win or lose, so a failing message can never turn into a tight
	// retry loop that trips provider flood protection.
	limiter *rate.Limiter

	mu    sync.Mutex
	items []Message
	wake  chan struct{}
}

func New(cfg Config, pub publish.Publisher, store storage.Store, log logx.Logger) *Queue {
	cfg = cfg.withDefaults()
	return &Queue{
		cfg:     cfg,
		pub:     pub,
		store:   store,
		log:     log,
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		wake:    make(chan struct{}, 1),
	}
}

// Enqueue appends and returns; it never blocks the producer.
func (q *Queue) Enqueue(m Message) {
	if m.EnqueuedAt.IsZero() {
		m.EnqueuedAt = time.Now()
	}
	q.mu.Lock()
	q.items = append(q.items, m)
	n := len(q.items)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	q.log.Debug("message enqueued", logx.String("ns", m.DedupNS), logx.Int("queue_len", n))
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Run is the single consumer loop. It returns when ctx is canceled; pending
// messages are dropped on shutdown (the dedup store, not the queue, is the
// durability boundary for "was this ever sent").
func (q *Queue) Run(ctx context.Context) error {
	for {
		m, ok := q.next(ctx)
		if !ok {
			return nil
		}
		if err := q.deliver(ctx, m); err != nil {
			return nil // ctx canceled mid-delivery
		}
	}
}

func (q *Queue) next(ctx context.Context) (Message, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			m := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return m, true
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Message{}, false
		case <-q.wake:
		}
	}
}

// deliver runs the retry decision table for one message. It returns a non-nil
// error only on context cancellation; exhausting the attempt budget drops the
// message (logged) so a poison message never stalls the queue.
func (q *Queue) deliver(ctx context.Context, m Message) error {
	attempts := 0
	for {
		if err := q.limiter.Wait(ctx); err != nil {
			return err
		}

		res := q.pub.Send(ctx, m.Payload)
		if ctx.Err() != nil {
			// Shutdown during the call: the result is untrustworthy unless
			// it is a confirmed success.
			if res.Outcome != publish.OK {
				return ctx.Err()
			}
		}

		switch res.Outcome {
		case publish.OK:
			q.markDelivered(m)
			return nil

		case publish.RetryAfter:
			// Mandated waits never consume the attempt budget: throttling
			// must not cause a message drop.
			wait := res.RetryAfter + q.cfg.RetryAfterPad
			q.log.Warn("provider throttled", logx.Duration("wait", wait), logx.Err(res.Err))
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}

		case publish.Transient:
			attempts++
			if attempts >= q.cfg.MaxAttempts {
				q.drop(m, attempts, res.Err)
				return nil
			}
			q.log.Warn("transient send failure", logx.Int("attempt", attempts), logx.Err(res.Err))
			if err := sleepCtx(ctx, q.cfg.TransientDelay); err != nil {
				return err
			}

		default: // publish.Fatal
			attempts++
			if attempts >= q.cfg.MaxAttempts {
				q.drop(m, attempts, res.Err)
				return nil
			}
			q.log.Error("send failed", logx.Int("attempt", attempts), logx.Err(res.Err))
			if err := sleepCtx(ctx, q.cfg.FatalDelay); err != nil {
				return err
			}
		}
	}
}

func (q *Queue) markDelivered(m Message) {
	for _, key := range m.DedupKeys {
		// Best-effort write with a bounded timeout; never tied to the run
		// ctx so shutdown can't lose a confirmed send's record silently.
		wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := q.store.Record(wctx, m.DedupNS, key)
		cancel()
		if err != nil {
			// The send already happened; a lost record means a possible
			// duplicate after restart. Accepted at-least-once weakness,
			// but it must be loud.
			q.log.Error("dedup record failed after confirmed send",
				logx.String("ns", m.DedupNS), logx.String("key", key), logx.Err(err))
		}
	}
	if m.OnDone != nil {
		m.OnDone(true)
	}
	q.log.Info("message delivered",
		logx.String("ns", m.DedupNS),
		logx.Duration("queued_for", time.Since(m.EnqueuedAt)))
}

func (q *Queue) drop(m Message, attempts int, err error) {
	q.log.Error("message dropped after retries exhausted",
		logx.String("ns", m.DedupNS),
		logx.Int("attempts", attempts),
		logx.Err(err))
	if m.OnDone != nil {
		m.OnDone(false)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
