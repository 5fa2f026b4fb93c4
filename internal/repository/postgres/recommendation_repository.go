package postgres

import (
	"context"
	"fmt"
	"time"

	"aiVisibility/domain"

	"gorm.io/gorm"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

func (r *RecommendationRepository) GetByID(ctx context.Context, id uint) (*domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rec domain.Recommendation
	err := r.DB.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation: %w", err)
	}

	return &rec, nil
}

func (r *RecommendationRepository) ListByScan(ctx context.Context, scanID uint) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var recs []domain.Recommendation
	err := r.DB.WithContext(ctx).
		Where("scan_id = ?", scanID).
		Order("impact_score DESC NULLS LAST").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}

	return recs, nil
}

func (r *RecommendationRepository) ListByScanAndState(ctx context.Context, scanID uint, state string) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var recs []domain.Recommendation
	err := r.DB.WithContext(ctx).
		Where("scan_id = ? AND unlock_state = ?", scanID, state).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations by state: %w", err)
	}

	return recs, nil
}

func (r *RecommendationRepository) ListSkippedSince(ctx context.Context, scanID uint, since time.Time) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var recs []domain.Recommendation
	err := r.DB.WithContext(ctx).
		Where("scan_id = ? AND unlock_state = ?", scanID, domain.StateSkipped).
		Where("skipped_at >= ?", since).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list skipped recommendations: %w", err)
	}

	return recs, nil
}

func (r *RecommendationRepository) ListMissingScore(ctx context.Context, scanID uint) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var recs []domain.Recommendation
	err := r.DB.WithContext(ctx).
		Where("scan_id = ? AND impact_score IS NULL", scanID).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unscored recommendations: %w", err)
	}

	return recs, nil
}

// UpdateState applies a user-reported state change, stamping the matching
// timestamp column for the target state.
func (r *RecommendationRepository) UpdateState(ctx context.Context, id uint, state string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updates := map[string]any{"unlock_state": state}
	switch state {
	case domain.StateActive:
		updates["unlocked_at"] = at
	case domain.StateCompleted:
		updates["completed_at"] = at
	case domain.StateSkipped:
		updates["skipped_at"] = at
	case domain.StateArchived:
		updates["archived_at"] = at
	}

	if err := r.DB.WithContext(ctx).
		Model(&domain.Recommendation{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update recommendation state: %w", err)
	}

	return nil
}

func (r *RecommendationRepository) MarkCompleted(ctx context.Context, id uint, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	// Guarded on the current state so a detection never overrides a user
	// action that landed first.
	if err := r.DB.WithContext(ctx).
		Model(&domain.Recommendation{}).
		Where("id = ? AND unlock_state = ?", id, domain.StateActive).
		Updates(map[string]any{
			"unlock_state": domain.StateCompleted,
			"completed_at": at,
			"progress":     1.0,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark recommendation completed: %w", err)
	}

	return nil
}

func (r *RecommendationRepository) SetProgress(ctx context.Context, id uint, progress float64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).
		Model(&domain.Recommendation{}).
		Where("id = ? AND unlock_state = ?", id, domain.StateActive).
		Update("progress", progress).Error; err != nil {
		return fmt.Errorf("failed to set recommendation progress: %w", err)
	}

	return nil
}

func (r *RecommendationRepository) SetImpactScore(ctx context.Context, id uint, score float64) error {
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
