package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"aiVisibility/domain"
)

type fakeRepo struct {
	recs map[uint]*domain.Recommendation
}

func (f *fakeRepo) GetByID(ctx context.Context, id uint) (*domain.Recommendation, error) {
	rec, ok := f.recs[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRepo) ListByScan(ctx context.Context, scanID uint) ([]domain.Recommendation, error) {
	var out []domain.Recommendation
	for _, rec := range f.recs {
		if rec.ScanID == scanID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateState(ctx context.Context, id uint, state string, at time.Time) error {
	f.recs[id].UnlockState = state
	return nil
}

func TestCompleteActiveRecommendation(t *testing.T) {
	repo := &fakeRepo{recs: map[uint]*domain.Recommendation{
		1: {ID: 1, ScanID: 1, UnlockState: domain.StateActive},
	}}
	svc := NewService(repo)

	if err := svc.Complete(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if repo.recs[1].UnlockState != domain.StateCompleted {
		t.Errorf("state = %s, want completed", repo.recs[1].UnlockState)
	}
}

func TestLockedCannotBypassActive(t *testing.T) {
	calls := []struct {
		name string
		call func(*Service, context.Context) error
	}{
		{"complete", func(s *Service, ctx context.Context) error { return s.Complete(ctx, 1) }},
		{"skip", func(s *Service, ctx context.Context) error { return s.Skip(ctx, 1) }},
	}
	for _, tc := range calls {
		repo := &fakeRepo{recs: map[uint]*domain.Recommendation{
			1: {ID: 1, ScanID: 1, UnlockState: domain.StateLocked},
		}}
		err := tc.call(NewService(repo), context.Background())
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s on a locked recommendation should be a validation error, got %v", tc.name, err)
		}
		if repo.recs[1].UnlockState != domain.StateLocked {
			t.Errorf("%s mutated a locked recommendation to %s", tc.name, repo.recs[1].UnlockState)
		}
	}
}

func TestStateNeverRegresses(t *testing.T) {
	cases := []struct {
		from string
		call func(*Service, context.Context) error
	}{
		{domain.StateCompleted, func(s *Service, ctx context.Context) error { return s.Skip(ctx, 1) }},
		{domain.StateSkipped, func(s *Service, ctx context.Context) error { return s.Complete(ctx, 1) }},
		{domain.StateArchived, func(s *Service, ctx context.Context) error { return s.Complete(ctx, 1) }},
	}
	for _, tc := range cases {
		repo := &fakeRepo{recs: map[uint]*domain.Recommendation{
			1: {ID: 1, ScanID: 1, UnlockState: tc.from},
		}}
		err := tc.call(NewService(repo), context.Background())
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("advancing from %s should be a validation error, got %v", tc.from, err)
		}
		if repo.recs[1].UnlockState != tc.from {
			t.Errorf("state mutated from %s to %s", tc.from, repo.recs[1].UnlockState)
		}
	}
}

func TestUnknownRecommendationRejected(t *testing.T) {
	svc := NewService(&fakeRepo{recs: map[uint]*domain.Recommendation{}})
	err := svc.Complete(context.Background(), 99)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("want validation error, got %v", err)
	}
}
