package postgres

import (
	"context"
	"fmt"

	"aiVisibility/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModeRepository struct {
	DB *gorm.DB
}

func NewModeRepository(db *gorm.DB) *ModeRepository {
	return &ModeRepository{DB: db}
}

func (r *ModeRepository) GetState(ctx context.Context, accountID uint) (*domain.ModeState, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var state domain.ModeState
	err := r.DB.WithContext(ctx).First(&state, "account_id = ?", accountID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mode state: %w", err)
	}

	return &state, nil
}

func (r *ModeRepository) SaveState(ctx context.Context, state *domain.ModeState) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			UpdateAll: true,
		},
	).Create(state).Error; err != nil {
		return fmt.Errorf("failed to upsert mode state: %w", err)
	}

	return nil
}

func (r *ModeRepository) AppendTransition(ctx context.Context, tr domain.ModeTransition) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&tr).Error; err != nil {
		return fmt.Errorf("failed to append mode transition: %w", err)
	}

	return nil
}

func (r *ModeRepository) ListTransitions(ctx context.Context, accountID uint, limit int) ([]domain.ModeTransition, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}

	var out []domain.ModeTransition
	err := r.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mode transitions: %w", err)
	}

	return out, nil
}
