package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"skill-hire/internal/infrastructure/metrics"
	"skill-hire/internal/repository"

	"github.com/go-co-op/gocron"
)

const (
	sweepLockKey       = "quiz:sweep"
	sweepBatchSize     = 20
	sweepMaxAttempts   = 3
	defaultStaleAfter  = 10 * time.Minute
	defaultSweepPeriod = time.Minute
)

type SweeperOptions struct {
	StaleAfter time.Duration
	Interval   time.Duration
}

// StaleQuizSweeper re-dispatches queued quizzes whose generation never
// produced questions, for example because a worker died mid-job.
type StaleQuizSweeper struct {
	quizzes   repository.QuizRepository
	assembly  *QuizAssembly
	locker    Locker
	opts      SweeperOptions
	logger    *log.Logger
	now       func() time.Time
	scheduler *gocron.Scheduler
}

func NewStaleQuizSweeper(quizzes repository.QuizRepository, assembly *QuizAssembly, locker Locker, opts SweeperOptions, logger *log.Logger) *StaleQuizSweeper {
	if logger == nil {
		logger = log.Default()
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = defaultStaleAfter
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultSweepPeriod
	}
	return &StaleQuizSweeper{
		quizzes:  quizzes,
		assembly: assembly,
		locker:   locker,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *StaleQuizSweeper) Start() error {
	s.scheduler = gocron.NewScheduler(time.UTC)
	_, err := s.scheduler.Every(s.opts.Interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.Interval)
		defer cancel()
		if _, err := s.SweepOnce(ctx); err != nil {
			s.logger.Printf("quiz_sweeper status=error err=%v", err)
		}
	})
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Printf("quiz_sweeper status=started interval=%s stale_after=%s", s.opts.Interval, s.opts.StaleAfter)
	return nil
}

func (s *StaleQuizSweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// SweepOnce re-dispatches one batch. Only one replica sweeps at a time.
func (s *StaleQuizSweeper) SweepOnce(ctx context.Context) (int, error) {
	unlock, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.opts.Interval)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	defer unlock()

	stale, err := s.quizzes.ListStalePending(ctx, s.now().Add(-s.opts.StaleAfter), sweepMaxAttempts, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, p := range stale {
		var job GenerationJob
		if err := json.Unmarshal(p.Request, &job); err != nil {
			s.logger.Printf("quiz_sweeper quiz=%s step=decode status=skipped err=%v", p.QuizID, err)
			continue
		}
		job.QuizID = p.QuizID

		if err := s.quizzes.MarkRequeued(ctx, p.QuizID); err != nil {
			s.logger.Printf("quiz_sweeper quiz=%s step=mark status=error err=%v", p.QuizID, err)
			continue
		}
		s.assembly.dispatch(ctx, job)
		metrics.StaleRequeued.Inc()
		requeued++
		s.logger.Printf("quiz_sweeper quiz=%s attempt=%d status=requeued", p.QuizID, p.Attempts+1)
	}
	return requeued, nil
}
