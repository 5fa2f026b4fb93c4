package recommendation

import (
	"context"
	"fmt"
	"time"

	"aiVisibility/domain"
	"aiVisibility/pkg/logger"
)

type Repository interface {
	GetByID(ctx context.Context, id uint) (*domain.Recommendation, error)
	ListByScan(ctx context.Context, scanID uint) ([]domain.Recommendation, error)
	UpdateState(ctx context.Context, id uint, state string, at time.Time) error
}

// Service serves recommendation rows to the API layer and applies
// user-reported state changes, enforcing the forward-only unlock DAG.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByScan(ctx context.Context, scanID uint) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	return s.repo.ListByScan(ctx, scanID)
}

// Complete marks an active recommendation as done by the user.
func (s *Service) Complete(ctx context.Context, id uint) error {
	return s.advance(ctx, id, domain.StateCompleted)
}

// Skip marks an active recommendation as declined by the user.
func (s *Service) Skip(ctx context.Context, id uint) error {
	return s.advance(ctx, id, domain.StateSkipped)
}

func (s *Service) advance(ctx context.Context, id uint, to string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load recommendation: %w", err)
	}
	if rec == nil {
		return domain.NewValidationError("recommendation_id", "not found")
	}
	if !domain.CanAdvance(rec.UnlockState, to) {
		return domain.NewValidationError("unlock_state",
			fmt.Sprintf("cannot move from %s to %s", rec.UnlockState, to))
	}

	if err := s.repo.UpdateState(ctx, id, to, time.Now()); err != nil {
		return fmt.Errorf("update recommendation state: %w", err)
	}

	logger.Debug("recommendation_state_advanced",
		"recommendation_id", id,
		"from", rec.UnlockState,
		"to", to,
	)
	return nil
}
