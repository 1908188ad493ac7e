package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs named jobs on six-field cron specs (seconds first).
// Descriptors such as "@every 5m" are accepted too.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler returns a scheduler whose job runs are cancelled after
// timeout, or when Stop gives up waiting for them.
func NewScheduler(timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers fn under name. A job still running when its next tick fires
// is skipped for that tick.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.run(name, fn)
	}))
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	return nil
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	logger := log.With().Str("job", name).Logger()
	ctx, cancel := context.WithTimeout(logger.WithContext(s.ctx), s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		logger.Error().Err(err).Dur("took", time.Since(start)).Msg("job failed")
		return
	}
	logger.Debug().Dur("took", time.Since(start)).Msg("job finished")
}

// AddPurge registers the soft-delete purge.
func (s *Scheduler) AddPurge(spec string, p *Purger) error {
	return s.Add("purge", spec, func(ctx context.Context) error {
		res, err := p.Run(ctx)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Info().
			Int64("projects", res.Projects).
			Int64("residential_projects", res.ResidentialProjects).
			Int("objects", res.Objects).
			Msg("purge completed")
		return nil
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("cron scheduler started")
}

// Stop waits for running jobs until ctx is done, then cancels them.
func (s *Scheduler) Stop(ctx context.Context) {
	defer s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("cron scheduler stopped before running jobs finished")
	}
}
