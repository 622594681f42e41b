// Package scheduler runs the periodic cleanup of expired listings and
// webhook-event records on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-society-bot/internal/services"
)

// Job is the cleanup the Sweeper runs.
type Job interface {
	Sweep(ctx context.Context) (services.SweepResult, error)
}

// Parser accepts standard 5-field specs and descriptors such as "@daily"
// or "@every 1h".
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Sweeper schedules Job. Runs never overlap; a run still in progress when
// the next tick fires is skipped.
type Sweeper struct {
	cron *cron.Cron
	job  Job
	ctx  context.Context
}

// New validates spec and returns a stopped Sweeper. ctx is the parent of
// every scheduled run and carries the logger.
func New(ctx context.Context, spec string, job Job) (*Sweeper, error) {
	logger := cronLogger{l: log.Ctx(ctx).With().Str("component", "sweeper").Logger()}
	c := cron.New(
		cron.WithParser(Parser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	s := &Sweeper{cron: c, job: job, ctx: ctx}
	if _, err := c.AddFunc(spec, func() { _, _ = s.RunOnce(s.ctx) }); err != nil {
		return nil, fmt.Errorf("scheduler: bad cleanup schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins scheduling in the background.
func (s *Sweeper) Start() { s.cron.Start() }

// Stop stops scheduling and waits for a running sweep or ctx, whichever
// ends first.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one sweep and logs the outcome.
func (s *Sweeper) RunOnce(ctx context.Context) (services.SweepResult, error) {
	res, err := s.job.Sweep(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("scheduled sweep failed")
		return res, err
	}
	log.Ctx(ctx).Debug().
		Int64("listings", res.Listings).
		Int64("webhook_events", res.WebhookEvents).
		Msg("scheduled sweep done")
	return res, nil
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
