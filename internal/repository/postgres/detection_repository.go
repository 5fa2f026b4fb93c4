package postgres

import (
	"context"
	"fmt"

	"aiVisibility/domain"

	"gorm.io/gorm"
)

type DetectionRepository struct {
	DB *gorm.DB
}

func NewDetectionRepository(db *gorm.DB) *DetectionRepository {
	return &DetectionRepository{DB: db}
}

func (r *DetectionRepository) SaveAll(ctx context.Context, detections []domain.ImplementationDetection) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(detections) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).Create(&detections).Error; err != nil {
		return fmt.Errorf("failed to save detections: %w", err)
	}

	return nil
}

func (r *DetectionRepository) ListByRecommendation(ctx context.Context, recommendationID uint) ([]domain.ImplementationDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var out []domain.ImplementationDetection
	err := r.DB.WithContext(ctx).
		Where("recommendation_id = ?", recommendationID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}

	return out, nil
}
