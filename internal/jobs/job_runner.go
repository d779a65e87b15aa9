package jobs

import (
	"time"

	"rentflow/internal/config"
	"rentflow/internal/logger"
	"rentflow/internal/repository"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	drafts repository.DraftRepository
	orders repository.OrderRepository
	config *config.Config
	now    func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(drafts repository.DraftRepository, orders repository.OrderRepository, cfg *config.Config) *JobRunner {
	return &JobRunner{
		drafts: drafts,
		orders: orders,
		config: cfg,
		now:    time.Now,
	}
}

// Config returns the configuration the jobs were built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SweepOrphanedDrafts()
}
