package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/claim-tracker/app/cfg"
	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	repos       database.Repositories
	planner     *claims.Planner
	clock       *claims.Clock
	verifier    Verifier
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewScheduler builds the worker pool. v may be nil, in which case due
// followups are left to external workers using the HTTP API.
func NewScheduler(repos database.Repositories, planner *claims.Planner, clock *claims.Clock, v Verifier) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		repos:       repos,
		planner:     planner,
		clock:       clock,
		verifier:    v,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		inFlight:    make(map[string]bool),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) TriggerPlanning() error {
	return s.EnqueueTask(NewPlanFollowupsTask(s.repos, s.planner, s.clock))
}

func (s *Scheduler) enqueueTasks() {
	if err := s.TriggerPlanning(); err != nil {
		slog.Warn("Failed to enqueue PlanFollowupsTask", "error", err)
	}

	if s.verifier == nil {
		slog.Debug("No verifier configured, leaving due followups to external workers")
		return
	}

	today := s.clock.Today()
	due, err := s.repos.Followups.ListFollowups(s.ctx, database.FollowupFilter{OpenOnly: true, DueBy: &today, Limit: 100})
	if err != nil {
		slog.Warn("Failed to list due followups", "error", err)
		return
	}

	slog.Debug("Processing due followups", "count", len(due), "today", claims.FormatDate(today))

	for _, f := range due {
		if !s.acquire(f.ID) {
			slog.Debug("Followup already in flight, skipping", "followup_id", f.ID)
			continue
		}

		if err := s.EnqueueTask(NewProcessFollowupTask(f, s.repos, s.verifier)); err != nil {
			s.release(f.ID)
			slog.Warn("Failed to enqueue ProcessFollowupTask", "followup_id", f.ID, "error", err)
		}
	}
}

func (s *Scheduler) acquire(followupID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[followupID] {
		return false
	}
	s.inFlight[followupID] = true
	return true
}

func (s *Scheduler) release(followupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, followupID)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.done(task)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		s.done(task)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "subject", task.GetSubject(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			s.done(task)
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				s.done(task)
			}
		}
	}()
}

// done frees the followup of a finished task for the next sweep.
func (s *Scheduler) done(task TaskInterface) {
	if task.GetType() == TaskTypeProcessFollowup {
		s.release(task.GetSubject())
	}
}
