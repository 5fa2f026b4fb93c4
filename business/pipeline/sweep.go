package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"aiVisibility/business/refresh"
	"aiVisibility/domain"
	"aiVisibility/pkg/logger"
)

const (
	defaultSweepConcurrency = 8
	defaultLockTTL          = 5 * time.Minute
)

// ContextLister enumerates the contexts the daily sweep has to visit.
type ContextLister interface {
	ListActiveContexts(ctx context.Context) ([]domain.RecommendationContext, error)
}

// Locker guards per-account sweep work across replicas. Acquire returns
// false without error when another replica already holds the lock.
type Locker interface {
	Acquire(ctx context.Context, accountID uint, ttl time.Duration) (bool, error)
	Release(ctx context.Context, accountID uint) error
}

type CycleProcessor interface {
	IsDue(ctx context.Context, accountID, scanID uint) (refresh.DueStatus, error)
	Process(ctx context.Context, accountID, scanID uint) (refresh.ProcessResult, error)
}

type CycleNotifier interface {
	NotifyCycleRefresh(ctx context.Context, ev domain.CycleRefreshEvent) error
}

// Sweeper walks every active context once, rotating the ones whose cycle
// deadline has passed. One context failing never stops the sweep; the
// failure is logged and counted and the walk continues.
type Sweeper struct {
	contexts    ContextLister
	cycles      CycleProcessor
	locks       Locker
	notifier    CycleNotifier
	concurrency int
	lockTTL     time.Duration
}

func NewSweeper(contexts ContextLister, cycles CycleProcessor, locks Locker, notifier CycleNotifier) *Sweeper {
	return &Sweeper{
		contexts:    contexts,
		cycles:      cycles,
		locks:       locks,
		notifier:    notifier,
		concurrency: defaultSweepConcurrency,
		lockTTL:     defaultLockTTL,
	}
}

func NewSweeperWithConcurrency(contexts ContextLister, cycles CycleProcessor, locks Locker, notifier CycleNotifier, concurrency int) *Sweeper {
	s := NewSweeper(contexts, cycles, locks, notifier)
	if concurrency > 0 {
		s.concurrency = concurrency
	}
	return s
}

// SweepResult tallies one full sweep run.
type SweepResult struct {
	Visited int `json:"visited"`
	Rotated int `json:"rotated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Sweep visits every active context with bounded parallelism. Contexts
// belonging to an account whose lock is held elsewhere are skipped; they
// will be picked up by the next run.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	ctx = WithTraceID(ctx)
	tid := TraceIDFromContext(ctx)

	all, err := s.contexts.ListActiveContexts(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list active contexts: %w", err)
	}

	var mu sync.Mutex
	var result SweepResult
	result.Visited = len(all)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, rctx := range all {
		rctx := rctx
		g.Go(func() error {
			outcome := s.sweepOne(gctx, rctx)
			mu.Lock()
			switch outcome {
			case sweepRotated:
				result.Rotated++
			case sweepSkipped:
				result.Skipped++
			case sweepFailed:
				result.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	logger.Info("sweep_finished",
		"trace_id", tid,
		"visited", result.Visited,
		"rotated", result.Rotated,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	return result, nil
}

type sweepOutcome int

const (
	sweepSkipped sweepOutcome = iota
	sweepRotated
	sweepFailed
)

func (s *Sweeper) sweepOne(ctx context.Context, rctx domain.RecommendationContext) sweepOutcome {
	tid := TraceIDFromContext(ctx)

	ok, err := s.locks.Acquire(ctx, rctx.AccountID, s.lockTTL)
	if err != nil {
		logger.Error("sweep_lock_failed", "trace_id", tid, "account_id", rctx.AccountID, "error", err)
		return sweepFailed
	}
	if !ok {
		return sweepSkipped
	}
	defer func() {
		if err := s.locks.Release(ctx, rctx.AccountID); err != nil {
			logger.Warn("sweep_lock_release_failed", "trace_id", tid, "account_id", rctx.AccountID, "error", err)
		}
	}()

	due, err := s.cycles.IsDue(ctx, rctx.AccountID, rctx.PrimaryScanID)
	if err != nil {
		logger.Error("sweep_due_check_failed",
			"trace_id", tid,
			"account_id", rctx.AccountID,
			"context_id", rctx.ID,
			"error", err,
		)
		return sweepFailed
	}
	if !due.Due {
		return sweepSkipped
	}

	res, err := s.cycles.Process(ctx, rctx.AccountID, rctx.PrimaryScanID)
	if err != nil {
		logger.Error("sweep_cycle_failed",
			"trace_id", tid,
			"account_id", rctx.AccountID,
			"context_id", rctx.ID,
			"error", err,
		)
		return sweepFailed
	}

	if res.ReplacedCount > 0 {
		CycleRotationsTotal.Inc()
		ev := domain.CycleRefreshEvent{
			AccountID:     rctx.AccountID,
			ContextID:     rctx.ID,
			CycleNumber:   res.CycleNumber,
			ReplacedCount: res.ReplacedCount,
			NextCycleDate: res.NextCycleDate,
			At:            time.Now(),
		}
		if err := s.notifier.NotifyCycleRefresh(ctx, ev); err != nil {
			logger.Warn("cycle_refresh_notify_failed",
				"trace_id", tid,
				"account_id", rctx.AccountID,
				"error", err,
			)
		}
	}

	return sweepRotated
}
