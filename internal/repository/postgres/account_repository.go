package postgres

import (
	"context"
	"fmt"

	"aiVisibility/domain"

	"gorm.io/gorm"
)

type AccountRepository struct {
	DB *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

// GetProfile falls back to the free tier for accounts the billing sync has
// not written yet, so a missing row never blocks the pipeline.
func (r *AccountRepository) GetProfile(ctx context.Context, accountID uint) (domain.AccountProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.AccountProfile{}, fmt.Errorf("context error: %w", err)
	}

	var profile domain.AccountProfile
	err := r.DB.WithContext(ctx).First(&profile, "account_id = ?", accountID).Error
	if err == gorm.ErrRecordNotFound {
		return domain.AccountProfile{AccountID: accountID, PlanTier: domain.PlanFree}, nil
	}
	if err != nil {
		return domain.AccountProfile{}, fmt.Errorf("failed to query account profile: %w", err)
	}

	return profile, nil
}

func (r *AccountRepository) SaveProfile(ctx context.Context, profile *domain.AccountProfile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to save account profile: %w", err)
	}

	return nil
}
