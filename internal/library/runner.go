package library

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/voxgrep/voxgrep/internal/logging"
)

// ExportExecutor runs one export job end to end and returns the output
// path (or serialized result) to record on the job.
type ExportExecutor interface {
	ExecuteExport(ctx context.Context, job *Job) (string, error)
}

// Runner drains the job queue one job at a time. Exports are ffmpeg-bound,
// so there is no benefit to concurrency here.
type Runner struct {
	service      *Service
	repo         Repository
	executor     ExportExecutor
	logger       *slog.Logger
	pollInterval time.Duration
	running      atomic.Bool
	paused       atomic.Bool
}

func NewRunner(service *Service, repo Repository, executor ExportExecutor, logger *slog.Logger) *Runner {
	return &Runner{
		service:      service,
		repo:         repo,
		executor:     executor,
		logger:       logger,
		pollInterval: 2 * time.Second,
	}
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("job runner started")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job runner stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
			if !r.paused.Load() {
				r.processNextJob(ctx)
			}
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("job runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("job runner resumed")
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

func (r *Runner) processNextJob(ctx context.Context) {
	jobs, err := r.repo.ListPendingJobs(ctx)
	if err != nil {
		r.logger.Error("failed to list pending jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	job := jobs[0]
	logger := logging.WithJobID(r.logger, job.ID)
	logger.Info("processing job", "type", job.Type)

	switch job.Type {
	case JobTypeScan:
		r.processScanJob(ctx, job, logger)
	case JobTypeExport:
		r.processExportJob(ctx, job, logger)
	default:
		logger.Warn("unknown job type", "type", job.Type)
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, "unknown job type")
	}
}

func (r *Runner) processScanJob(ctx context.Context, job *Job, logger *slog.Logger) {
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, "")

	indexed, err := r.service.ScanFolder(ctx, job.Payload)
	if err != nil {
		logger.Error("scan failed", "error", err)
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, err.Error())
		return
	}

	r.repo.UpdateJobProgress(ctx, job.ID, 100)
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusCompleted, "")
	logger.Info("scan job completed", "indexed", indexed)
}

func (r *Runner) processExportJob(ctx context.Context, job *Job, logger *slog.Logger) {
	if r.executor == nil {
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, "export executor not configured")
		return
	}

	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, "")

	result, err := r.executor.ExecuteExport(ctx, job)
	if err != nil {
		logger.Error("export failed", "error", err)
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, err.Error())
		return
	}

	r.repo.SetJobResult(ctx, job.ID, result)
	r.repo.UpdateJobProgress(ctx, job.ID, 100)
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusCompleted, "")
	logger.Info("export job completed")
}

// ActiveJobCount reports how many jobs are currently running.
func (r *Runner) ActiveJobCount(ctx context.Context) int {
	jobs, err := r.repo.ListJobs(ctx, 100)
	if err != nil {
		return 0
	}
	count := 0
	for _, j := range jobs {
		if j.Status == JobStatusRunning {
			count++
		}
	}
	return count
}
