package postgres

import (
	"context"
	"fmt"
	"time"

	"aiVisibility/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScanRepository struct {
	DB *gorm.DB
}

func NewScanRepository(db *gorm.DB) *ScanRepository {
	return &ScanRepository{DB: db}
}

func (r *ScanRepository) Create(ctx context.Context, scan *domain.Scan) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(scan).Error; err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}

	return nil
}

func (r *ScanRepository) GetByID(ctx context.Context, id uint) (*domain.Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var scan domain.Scan
	err := r.DB.WithContext(ctx).First(&scan, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scan: %w", err)
	}

	return &scan, nil
}

// GetPreviousCompleted returns the latest completed non-competitor scan for
// the account and domain strictly before the given time.
func (r *ScanRepository) GetPreviousCompleted(ctx context.Context, accountID uint, domainName string, before time.Time) (*domain.Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var scan domain.Scan
	err := r.DB.WithContext(ctx).
		Where("account_id = ? AND domain = ? AND is_competitor_probe = false", accountID, domainName).
		Where("completed_at IS NOT NULL AND completed_at < ?", before).
		Order("completed_at DESC").
		First(&scan).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query previous scan: %w", err)
	}

	return &scan, nil
}

// Complete stamps scores and the completion time on a pending scan. The
// WHERE clause on completed_at makes completed scans immutable.
func (r *ScanRepository) Complete(ctx context.Context, id uint, pillarScores []float64, totalScore float64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	res := r.DB.WithContext(ctx).
		Model(&domain.Scan{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]any{
			"pillar_scores": datatypes.JSONSlice[float64](pillarScores),
			"total_score":   totalScore,
			"completed_at":  at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to complete scan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("scan %d not found or already completed", id)
	}

	return nil
}
