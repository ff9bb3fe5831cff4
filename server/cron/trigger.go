// Package cron runs server housekeeping jobs on a cron schedule.
//
// A CronTrigger wraps a Job and executes it according to a cron schedule.
// It is designed to be started once and run until the context is cancelled.
//
// Example usage:
//
//	trigger, err := cron.NewCronTrigger("prune-sessions", "*/5 * * * *", job, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	trigger.Start(ctx)  // Returns immediately, runs in background
//	<-ctx.Done()        // Wait for shutdown signal
package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidCronSpec is returned when the cron specification cannot be parsed.
var ErrInvalidCronSpec = errors.New("invalid cron spec")

// Job is the work a CronTrigger runs.
type Job func(ctx context.Context) error

// CronTrigger executes a Job according to a cron schedule.
type CronTrigger struct {
	name     string
	spec     string
	schedule cron.Schedule
	job      Job
	logger   *slog.Logger
	runs     atomic.Int64
}

// NewCronTrigger creates a new CronTrigger with the given cron specification.
// The spec follows standard cron format (5 fields: minute, hour, day, month,
// weekday) or a descriptor such as @hourly or @every 10m.
// Returns ErrInvalidCronSpec if the specification cannot be parsed.
func NewCronTrigger(name, spec string, job Job, logger *slog.Logger) (*CronTrigger, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, errors.Join(ErrInvalidCronSpec, err)
	}

	return &CronTrigger{
		name:     name,
		spec:     spec,
		schedule: schedule,
		job:      job,
		logger:   logger.With("job", name),
	}, nil
}

// Start launches a goroutine that runs the job according to the cron schedule.
// Returns immediately. The goroutine exits when ctx is cancelled.
func (ct *CronTrigger) Start(ctx context.Context) {
	go ct.loop(ctx)
}

// NextRun returns the next scheduled run time from now.
func (ct *CronTrigger) NextRun() time.Time {
	return ct.schedule.Next(time.Now())
}

// Runs returns how many times the job has run.
func (ct *CronTrigger) Runs() int64 {
	return ct.runs.Load()
}

func (ct *CronTrigger) loop(ctx context.Context) {
	for {
		nextRun := ct.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(nextRun))

		ct.logger.Debug("waiting for next scheduled run", "next_run", nextRun)

		select {
		case <-ctx.Done():
			timer.Stop()
			ct.logger.Debug("cron trigger shutting down")
			return
		case <-timer.C:
			ct.execute(ctx)
		}
	}
}

func (ct *CronTrigger) execute(ctx context.Context) {
	ct.runs.Add(1)
	if err := ct.job(ctx); err != nil {
		ct.logger.Warn("scheduled job failed", "error", err)
		return
	}
	ct.logger.Debug("scheduled job completed")
}
