// Package schedule wraps robfig/cron for the pipeline's periodic jobs.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"fxwire/pkg/logx"
)

// Job is one periodic unit of work. Errors are logged, never fatal: a failed
// cycle is retried by the next one.
type Job func(ctx context.Context) error

type Runner struct {
	cron *cron.Cron
	log  logx.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a runner in the given timezone. Overlapping runs of the same job
// are skipped, and a panicking job doesn't take the process down.
func New(loc *time.Location, log logx.Logger) *Runner {
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every registers a fixed-interval job. Must be called before Start.
func (r *Runner) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("job %q: interval must be positive", name)
	}
	spec := fmt.Sprintf("@every %s", interval)
	_, err := r.cron.AddFunc(spec, func() {
		if r.ctx.Err() != nil {
			return
		}
		if err := job(r.ctx); err != nil {
			r.log.Warn("scheduled job failed", logx.String("job", name), logx.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("register job %q: %w", name, err)
	}
	r.log.Debug("job registered", logx.String("job", name), logx.Duration("interval", interval))
	return nil
}

func (r *Runner) Start() { r.cron.Start() }

// Stop cancels the job context and waits for in-flight runs to finish.
func (r *Runner) Stop() {
	r.cancel()
	<-r.cron.Stop().Done()
}

// cronLogger adapts logx to cron's Logger for the chain wrappers.
type cronLogger struct {
	log logx.Logger
}

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.log.Debug(msg, logx.Any("cron", kv))
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.Error(msg, logx.Err(err), logx.Any("cron", kv))
}
