package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/inspections/services"
	"tts-guard-backend/utils"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSweepCron = "0 1 * * *"

type Sweeper interface {
	SweepOverdue(ctx context.Context) (services.SweepResult, error)
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type NightlyResult struct {
	Sweep        services.SweepResult
	DigestQueued bool
	FilesRemoved int
}

// Scheduler runs the nightly job: overdue sweep, digest, export cleanup.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	enqueuer Enqueuer
	digest   *DigestHandler

	ExportDir  string
	FileTTL    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	today      func() time.Time
}

// NewScheduler takes an enqueuer for the digest. With a nil enqueuer the
// digest is sent inline.
func NewScheduler(sweeper Sweeper, enqueuer Enqueuer, digest *DigestHandler) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(utils.DateLocation)),
		sweeper:    sweeper,
		enqueuer:   enqueuer,
		digest:     digest,
		ExportDir:  utils.ExportDir,
		FileTTL:    24 * time.Hour,
		MaxRetries: 3,
		RetryDelay: 2 * time.Minute,
		today:      utils.Today,
	}
}

func (s *Scheduler) WithClock(today func() time.Time) *Scheduler {
	s.today = today
	return s
}

// RunNightly performs one pass. Cleanup failures are logged, not returned.
func (s *Scheduler) RunNightly(ctx context.Context) (NightlyResult, error) {
	var res NightlyResult

	sweep, err := s.sweeper.SweepOverdue(ctx)
	if err != nil {
		return res, fmt.Errorf("overdue sweep: %w", err)
	}
	res.Sweep = sweep

	today := s.today()
	switch {
	case s.enqueuer != nil:
		task, err := NewOverdueDigestTask(today)
		if err != nil {
			return res, err
		}
		info, err := s.enqueuer.EnqueueContext(ctx, task,
			asynq.TaskID("digest-"+utils.SQLDate(today)),
			asynq.Retention(48*time.Hour))
		if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
			return res, fmt.Errorf("enqueue digest: %w", err)
		}
		res.DigestQueued = true
		if info != nil {
			config.Logger.Info("Overdue digest queued", zap.String("task_id", info.ID))
		}
	case s.digest != nil:
		if err := s.digest.Send(ctx, utils.SQLDate(today)); err != nil {
			return res, fmt.Errorf("send digest: %w", err)
		}
	}

	removed, err := utils.CleanupExpiredFiles(s.ExportDir, s.FileTTL)
	if err != nil {
		config.Logger.Warn("Export cleanup failed", zap.String("dir", s.ExportDir), zap.Error(err))
	}
	res.FilesRemoved = removed
	return res, nil
}

func (s *Scheduler) runWithRetries(ctx context.Context) {
	for attempt := 1; attempt <= s.MaxRetries; attempt++ {
		res, err := s.RunNightly(ctx)
		if err == nil {
			config.Logger.Info("Nightly job finished",
				zap.Int64("marked_overdue", res.Sweep.MarkedOverdue),
				zap.Int64("contracts_expired", res.Sweep.ContractsExpired),
				zap.Bool("digest_queued", res.DigestQueued),
				zap.Int("files_removed", res.FilesRemoved))
			return
		}
		config.Logger.Error("Nightly job failed", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.RetryDelay):
		}
	}
	config.Logger.Error("Nightly job gave up", zap.Int("attempts", s.MaxRetries))
}

// Start schedules the job on spec (standard 5-field cron) and starts cron.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = DefaultSweepCron
	}
	if _, err := s.cron.AddFunc(spec, func() { s.runWithRetries(ctx) }); err != nil {
		return fmt.Errorf("invalid SWEEP_CRON %q: %w", spec, err)
	}
	s.cron.Start()
	config.Logger.Info("Nightly scheduler started", zap.String("cron", spec))
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
