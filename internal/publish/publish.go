// Package publish defines the outbound message channel as a capability with
// an explicit outcome taxonomy. The dispatch retry policy is a pure decision
// table over these outcomes; adapters translate provider errors into them.
package publish

import (
	"context"
	"time"
)

type Outcome int

const (
	// OK: the provider accepted the message.
	OK Outcome = iota
	// RetryAfter: the provider is throttling and named a wait time.
	RetryAfter
	// Transient: network fault or timeout; retry after a short delay.
	Transient
	// Fatal: unclassified provider error; retried a bounded number of
	// times, then the message is dropped.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case RetryAfter:
		return "retry_after"
	case Transient:
		return "transient"
	default:
		return "fatal"
	}
}

type Result struct {
	Outcome    Outcome
	RetryAfter time.Duration // valid when Outcome == RetryAfter
	Err        error         // nil when Outcome == OK
}

// Publisher delivers one formatted message to the destination channel.
type Publisher interface {
	Send(ctx context.Context, text string) Result
}
