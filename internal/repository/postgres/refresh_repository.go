package postgres

import (
	"context"
	"fmt"
	"time"

	"aiVisibility/business/refresh"
	"aiVisibility/domain"

	"gorm.io/gorm"
)

// RefreshRepository backs the cycle manager. WithTx hands the closure a
// copy bound to the transaction so every write inside commits atomically.
type RefreshRepository struct {
	DB *gorm.DB
}

func NewRefreshRepository(db *gorm.DB) *RefreshRepository {
	return &RefreshRepository{DB: db}
}

var _ refresh.Repository = (*RefreshRepository)(nil)

func (r *RefreshRepository) WithTx(ctx context.Context, fn func(refresh.Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RefreshRepository{DB: tx})
	})
}

func (r *RefreshRepository) GetContextByAccountScan(ctx context.Context, accountID, scanID uint) (*domain.RecommendationContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rctx domain.RecommendationContext
	err := r.DB.WithContext(ctx).
		Where("account_id = ? AND primary_scan_id = ? AND is_active = true", accountID, scanID).
		First(&rctx).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation context: %w", err)
	}

	return &rctx, nil
}

func (r *RefreshRepository) GetContextByID(ctx context.Context, id uint) (*domain.RecommendationContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rctx domain.RecommendationContext
	err := r.DB.WithContext(ctx).
		Where("id = ? AND is_active = true", id).
		First(&rctx).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation context: %w", err)
	}

	return &rctx, nil
}

func (r *RefreshRepository) GetLatestCycle(ctx context.Context, contextID uint) (*domain.RefreshCycle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var cycle domain.RefreshCycle
	err := r.DB.WithContext(ctx).
		Where("context_id = ?", contextID).
		Order("cycle_number DESC").
		First(&cycle).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest cycle: %w", err)
	}

	return &cycle, nil
}

func (r *RefreshRepository) CreateCycle(ctx context.Context, cycle *domain.RefreshCycle) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(cycle).Error; err != nil {
		return fmt.Errorf("failed to create refresh cycle: %w", err)
	}

	return nil
}

// ExtendCycle pushes the rotation deadline out; the guard keeps it from
// ever moving backwards.
func (r *RefreshRepository) ExtendCycle(ctx context.Context, cycleID uint, nextCycleDate time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).
		Model(&domain.RefreshCycle{}).
		Where("id = ? AND next_cycle_date < ?", cycleID, nextCycleDate).
		Update("next_cycle_date", nextCycleDate).Error; err != nil {
		return fmt.Errorf("failed to extend cycle: %w", err)
	}

	return nil
}

func (r *RefreshRepository) ListByScanAndStates(ctx context.Context, scanID uint, states []string) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var recs []domain.Recommendation
	err := r.DB.WithContext(ctx).
		Where("scan_id = ? AND unlock_state IN ?", scanID, states).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations by states: %w", err)
	}

	return recs, nil
}

func (r *RefreshRepository) ArchiveRecommendation(ctx context.Context, id uint, reason string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).
		Model(&domain.Recommendation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"unlock_state":   domain.StateArchived,
			"archived_at":    at,
			"archive_reason": reason,
		}).Error; err != nil {
		return fmt.Errorf("failed to archive recommendation: %w", err)
	}

	return nil
}

func (r *RefreshRepository) ActivateRecommendation(ctx context.Context, id uint, batch int, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).
		Model(&domain.Recommendation{}).
		Where("id = ? AND unlock_state = ?", id, domain.StateLocked).
		Updates(map[string]any{
			"unlock_state": domain.StateActive,
			"batch_number": batch,
			"unlocked_at":  at,
		}).Error; err != nil {
		return fmt.Errorf("failed to activate recommendation: %w", err)
	}

	return nil
}

func (r *RefreshRepository) SetImpactScore(ctx context.Context, id uint, score float64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).
		Model(&domain.Recommendation{}).
		Where("id = ?", id).
		Update("impact_score", score).Error; err != nil {
		return fmt.Errorf("failed to set impact score: %w", err)
	}

	return nil
}

func (r *RefreshRepository) SaveReplacement(ctx context.Context, rep domain.RecommendationReplacement) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&rep).Error; err != nil {
		return fmt.Errorf("failed to save replacement record: %w", err)
	}

	return nil
}
