package reccontext

import (
	"context"
	"fmt"
	"time"

	"aiVisibility/business/refresh"
	"aiVisibility/domain"
	"aiVisibility/pkg/logger"
)

// UpsertOutcome tags whether Create inserted a fresh context or updated
// the existing row for the same identity key, so callers branch
// deterministically instead of depending on store upsert semantics.
type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
)

type Repository interface {
	// GetActiveByKey returns nil, nil when no active context exists.
	GetActiveByKey(ctx context.Context, accountID uint, key string) (*domain.RecommendationContext, error)
	// Upsert inserts or, on an identity-key conflict, updates the existing
	// row in place. Concurrency conflicts are resolved inside the
	// repository and never surface.
	Upsert(ctx context.Context, rctx *domain.RecommendationContext) (UpsertOutcome, error)
}

// CycleManager is the slice of the refresh manager the resolver consults
// on the reuse path.
type CycleManager interface {
	Window() time.Duration
	IsDue(ctx context.Context, accountID, scanID uint) (refresh.DueStatus, error)
	Process(ctx context.Context, accountID, scanID uint) (refresh.ProcessResult, error)
}

type Resolver struct {
	repo   Repository
	cycles CycleManager
}

func NewResolver(repo Repository, cycles CycleManager) *Resolver {
	return &Resolver{repo: repo, cycles: cycles}
}

// Resolution is the outcome of identity resolution for an incoming scan.
type Resolution struct {
	Reuse          bool                          `json:"reuse"`
	Context        *domain.RecommendationContext `json:"context,omitempty"`
	CycleRefreshed bool                          `json:"cycle_refreshed"`
}

// Resolve decides whether an incoming scan reuses an existing
// recommendation context or needs a fresh generation pass. When the
// matched context's cycle is due, the rotation runs synchronously first
// so a reuse answer always reflects a just-rotated set.
func (r *Resolver) Resolve(ctx context.Context, accountID uint, domainName string, pageSet []string, isCompetitorProbe bool) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, fmt.Errorf("context error: %w", err)
	}

	// Competitive probes never share or consume a context.
	if isCompetitorProbe {
		return Resolution{}, nil
	}

	normalized, err := NormalizeDomain(domainName)
	if err != nil {
		return Resolution{}, err
	}
	key := ContextKey(accountID, normalized, pageSet)

	existing, err := r.repo.GetActiveByKey(ctx, accountID, key)
	if err != nil {
		return Resolution{}, fmt.Errorf("load context: %w", err)
	}
	if existing == nil || time.Now().After(existing.ExpiresAt) {
		return Resolution{}, nil
	}

	refreshed := false
	due, err := r.cycles.IsDue(ctx, accountID, existing.PrimaryScanID)
	if err != nil {
		return Resolution{}, fmt.Errorf("check cycle due: %w", err)
	}
	if due.Due {
		if _, err := r.cycles.Process(ctx, accountID, existing.PrimaryScanID); err != nil {
			return Resolution{}, fmt.Errorf("process due cycle: %w", err)
		}
		refreshed = true
		logger.Info("context_reuse_cycle_refreshed",
			"account_id", accountID,
			"context_id", existing.ID,
		)
	}

	return Resolution{Reuse: true, Context: existing, CycleRefreshed: refreshed}, nil
}

// Create upserts the context for a newly generated scan. On an identity
// conflict the existing row's primary scan and expiry advance instead of
// inserting a duplicate, which makes concurrent scan submissions
// idempotent.
func (r *Resolver) Create(ctx context.Context, accountID, scanID uint, domainName string, pageSet []string, initialScore float64, planTier string) (*domain.RecommendationContext, UpsertOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("context error: %w", err)
	}
	if scanID == 0 {
		return nil, "", domain.NewValidationError("scan_id", "required")
	}

	normalized, err := NormalizeDomain(domainName)
	if err != nil {
		return nil, "", err
	}

	rctx := &domain.RecommendationContext{
		AccountID:     accountID,
		ContextKey:    ContextKey(accountID, normalized, pageSet),
		PrimaryScanID: scanID,
		IsActive:      true,
		ExpiresAt:     r.expiry(planTier, time.Now()),
		InitialScore:  initialScore,
		LatestScore:   initialScore,
	}

	outcome, err := r.repo.Upsert(ctx, rctx)
	if err != nil {
		return nil, "", fmt.Errorf("upsert context: %w", err)
	}

	logger.Debug("context_upsert",
		"account_id", accountID,
		"scan_id", scanID,
		"outcome", string(outcome),
	)

	return rctx, outcome, nil
}

// expiry couples context lifetime to the rotation cadence: the agency
// tier runs to the end of the current calendar month, everyone else gets
// one rotation window.
func (r *Resolver) expiry(planTier string, now time.Time) time.Time {
	if planTier == domain.PlanAgency {
		firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
		return firstOfNext
	}
	return now.Add(r.cycles.Window())
}
