package task

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultSchedulerInterval = time.Minute
	logEventJobFailed        = "scheduled_job_failed"
	logFieldJobName          = "job"
)

// Job is one pass of periodic background work.
type Job func(context.Context) error

// Scheduler runs a Job on a fixed interval and on demand until stopped.
type Scheduler struct {
	name         string
	interval     time.Duration
	job          Job
	logger       *zap.Logger
	trigger      chan struct{}
	controlMutex sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}
}

func NewScheduler(logger *zap.Logger, name string, interval time.Duration, job Job) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultSchedulerInterval
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		job:      job,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Start launches the loop. Calling Start on a running scheduler does nothing.
func (scheduler *Scheduler) Start(ctx context.Context) {
	if scheduler == nil || scheduler.job == nil {
		return
	}
	scheduler.controlMutex.Lock()
	if scheduler.cancel != nil {
		scheduler.controlMutex.Unlock()
		return
	}
	runtimeCtx, cancel := context.WithCancel(ctx)
	scheduler.cancel = cancel
	done := make(chan struct{})
	scheduler.done = done
	scheduler.controlMutex.Unlock()

	go scheduler.loop(runtimeCtx, done)
}

// Trigger requests an immediate run. Requests made while one is queued are coalesced.
func (scheduler *Scheduler) Trigger() {
	if scheduler == nil {
		return
	}
	select {
	case scheduler.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for the current run to return.
func (scheduler *Scheduler) Stop() {
	if scheduler == nil {
		return
	}
	scheduler.controlMutex.Lock()
	cancel := scheduler.cancel
	done := scheduler.done
	scheduler.cancel = nil
	scheduler.done = nil
	scheduler.controlMutex.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (scheduler *Scheduler) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(scheduler.interval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-scheduler.trigger:
			scheduler.run(ctx)
			ticker.Reset(scheduler.interval)
		case <-ticker.C:
			scheduler.run(ctx)
		}
	}
}

func (scheduler *Scheduler) run(ctx context.Context) {
	if scheduler.job == nil {
		return
	}
	if jobErr := scheduler.job(ctx); jobErr != nil && ctx.Err() == nil {
		scheduler.logger.Warn(logEventJobFailed, zap.String(logFieldJobName, scheduler.name), zap.Error(jobErr))
	}
}
