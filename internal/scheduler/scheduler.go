package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler runs jobs on standard five-field cron schedules in the local zone.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(log *zap.Logger, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		log:     log.With(zap.String("component", "scheduler")),
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunNow(job); err != nil {
			s.log.Error("job failed", zap.String("job", job.Name()), zap.Error(err))
			return
		}
		s.log.Debug("job completed", zap.String("job", job.Name()))
	})
	if err != nil {
		return err
	}

	s.log.Info("job registered", zap.String("schedule", schedule), zap.String("job", job.Name()))
	return nil
}

func (s *Scheduler) RunNow(job Job) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	s.log.Debug("running job", zap.String("job", job.Name()))
	return job.Run(ctx)
}
