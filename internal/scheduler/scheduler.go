// Package scheduler re-drives scheduling requests whose last attempt
// aborted on a collaborator failure (calendar or email outage).
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/susnata2002/ai-scheduling-bot/internal/requests"
)

// Queue lists requests eligible for another attempt.
type Queue interface {
	Retryable(ctx context.Context, retryAfter time.Duration, limit int) ([]requests.Request, error)
}

// Attempter runs the match-and-book step for one request.
type Attempter interface {
	AttemptSchedule(ctx context.Context, req requests.Request) error
}

// Scheduler polls for retryable requests and re-attempts them.
type Scheduler struct {
	Queue     Queue
	Attempter Attempter

	// Poll cadence and the minimum spacing between attempts on the
	// same request.
	Interval   time.Duration
	RetryAfter time.Duration

	wg sync.WaitGroup
}

const batchSize = 25

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	reqs, err := s.Queue.Retryable(ctx, s.RetryAfter, batchSize)
	if err != nil {
		slog.Error("sweep query failed", "error", err)
		return
	}

	for _, req := range reqs {
		req := req
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.Attempter.AttemptSchedule(ctx, req); err != nil {
				// The attempt itself recorded its failure; spacing via
				// RetryAfter keeps this from spinning.
				slog.Warn("retry attempt failed", "request_id", req.ID, "error", err)
			}
		}()
	}
}
