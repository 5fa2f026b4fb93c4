package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aiVisibility/business/reccontext"
	"aiVisibility/domain"

	"gorm.io/gorm"
)

type ContextRepository struct {
	DB *gorm.DB
}

func NewContextRepository(db *gorm.DB) *ContextRepository {
	return &ContextRepository{DB: db}
}

var _ reccontext.Repository = (*ContextRepository)(nil)

func (r *ContextRepository) GetActiveByKey(ctx context.Context, accountID uint, key string) (*domain.RecommendationContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rctx domain.RecommendationContext
	err := r.DB.WithContext(ctx).
		Where("account_id = ? AND context_key = ? AND is_active = true", accountID, key).
		First(&rctx).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation context: %w", err)
	}

	return &rctx, nil
}

// Upsert inserts the context or, when the (account_id, context_key) row
// already exists, refreshes it in place. Two concurrent first-scan
// requests race on the unique index; the loser re-reads and updates, so
// the conflict never escapes the repository.
func (r *ContextRepository) Upsert(ctx context.Context, rctx *domain.RecommendationContext) (reccontext.UpsertOutcome, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	existing, err := r.getByKey(ctx, rctx.AccountID, rctx.ContextKey)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return r.refresh(ctx, existing.ID, rctx)
	}

	err = r.DB.WithContext(ctx).Create(rctx).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, rerr := r.getByKey(ctx, rctx.AccountID, rctx.ContextKey)
		if rerr != nil {
			return "", rerr
		}
		if existing == nil {
			return "", fmt.Errorf("context vanished after duplicate key conflict")
		}
		return r.refresh(ctx, existing.ID, rctx)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create recommendation context: %w", err)
	}

	return reccontext.OutcomeCreated, nil
}

func (r *ContextRepository) getByKey(ctx context.Context, accountID uint, key string) (*domain.RecommendationContext, error) {
	var existing domain.RecommendationContext
	err := r.DB.WithContext(ctx).
		Where("account_id = ? AND context_key = ?", accountID, key).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation context: %w", err)
	}
	return &existing, nil
}

func (r *ContextRepository) refresh(ctx context.Context, id uint, rctx *domain.RecommendationContext) (reccontext.UpsertOutcome, error) {
	if err := r.DB.WithContext(ctx).
		Model(&domain.RecommendationContext{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"primary_scan_id": rctx.PrimaryScanID,
			"is_active":       true,
			"expires_at":      rctx.ExpiresAt,
			"latest_score":    rctx.LatestScore,
		}).Error; err != nil {
		return "", fmt.Errorf("failed to refresh recommendation context: %w", err)
	}

	rctx.ID = id
	return reccontext.OutcomeUpdated, nil
}

// ListActiveContexts feeds the daily sweep: every active, unexpired
// context across all accounts.
func (r *ContextRepository) ListActiveContexts(ctx context.Context) ([]domain.RecommendationContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var out []domain.RecommendationContext
	err := r.DB.WithContext(ctx).
		Where("is_active = true AND expires_at > ?", time.Now()).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active contexts: %w", err)
	}

	return out, nil
}
