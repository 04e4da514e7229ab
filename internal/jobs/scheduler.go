package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// Scheduler запускает задачи по интервалу в рамках процесса
type Scheduler struct {
	jobs         []Job
	tick         time.Duration
	timeProvider domain.TimeProvider
	metrics      Metrics
	logger       Logger

	// lastDaily дата последнего запуска ежедневных задач
	lastDaily map[string]time.Time
}

// NewScheduler создает планировщик, metrics может быть nil
func NewScheduler(jobs []Job, tick time.Duration, timeProvider domain.TimeProvider, metrics Metrics, logger Logger) *Scheduler {
	return &Scheduler{
		jobs:         jobs,
		tick:         tick,
		timeProvider: timeProvider,
		metrics:      metrics,
		logger:       logger,
		lastDaily:    make(map[string]time.Time),
	}
}

// Start крутит цикл до отмены контекста
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Scheduler: started with %d jobs, tick=%s", len(s.jobs), s.tick)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler: stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick запускает задачи, срок которых наступил
// Ошибка задачи не останавливает остальные
func (s *Scheduler) Tick(ctx context.Context) {
	today := domain.DateOnly(s.timeProvider.Now())

	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return
		}

		if job.Period == Daily {
			if last, ok := s.lastDaily[job.Name]; ok && !last.Before(today) {
				continue
			}
		}

		if err := s.run(ctx, job); err != nil {
			continue
		}
		if job.Period == Daily {
			s.lastDaily[job.Name] = today
		}
	}
}

// RunJob разовый запуск задачи по имени
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	job, err := find(s.jobs, name)
	if err != nil {
		return err
	}
	return s.run(ctx, job)
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	runID := uuid.NewString()
	start := time.Now()
	s.logger.Info("Job %s: run=%s started", job.Name, runID)

	err := job.Run(ctx)
	if s.metrics != nil {
		s.metrics.ObserveJob(job.Name, err)
	}
	if err != nil {
		s.logger.Error("Job %s: run=%s failed after %s: %v", job.Name, runID, time.Since(start), err)
		return err
	}

	s.logger.Info("Job %s: run=%s finished in %s", job.Name, runID, time.Since(start))
	return nil
}

// Names имена зарегистрированных задач
func (s *Scheduler) Names() []string {
	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = j.Name
	}
	return names
}
