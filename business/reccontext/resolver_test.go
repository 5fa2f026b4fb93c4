package reccontext

import (
	"context"
	"testing"
	"time"

	"aiVisibility/business/refresh"
	"aiVisibility/domain"
)

type fakeCtxRepo struct {
	byKey map[string]*domain.RecommendationContext
}

func (f *fakeCtxRepo) GetActiveByKey(ctx context.Context, accountID uint, key string) (*domain.RecommendationContext, error) {
	rctx, ok := f.byKey[key]
	if !ok || !rctx.IsActive {
		return nil, nil
	}
	cp := *rctx
	return &cp, nil
}

func (f *fakeCtxRepo) Upsert(ctx context.Context, rctx *domain.RecommendationContext) (UpsertOutcome, error) {
	if existing, ok := f.byKey[rctx.ContextKey]; ok {
		existing.PrimaryScanID = rctx.PrimaryScanID
		existing.ExpiresAt = rctx.ExpiresAt
		existing.LatestScore = rctx.LatestScore
		*rctx = *existing
		return OutcomeUpdated, nil
	}
	rctx.ID = uint(len(f.byKey) + 1)
	cp := *rctx
	f.byKey[rctx.ContextKey] = &cp
	return OutcomeCreated, nil
}

type fakeCycles struct {
	due       bool
	processed int
}

func (f *fakeCycles) Window() time.Duration { return refresh.DefaultWindow }

func (f *fakeCycles) IsDue(ctx context.Context, accountID, scanID uint) (refresh.DueStatus, error) {
	return refresh.DueStatus{Due: f.due}, nil
}

func (f *fakeCycles) Process(ctx context.Context, accountID, scanID uint) (refresh.ProcessResult, error) {
	f.processed++
	f.due = false
	return refresh.ProcessResult{ReplacedCount: 1}, nil
}

func newTestResolver() (*Resolver, *fakeCtxRepo, *fakeCycles) {
	repo := &fakeCtxRepo{byKey: make(map[string]*domain.RecommendationContext)}
	cycles := &fakeCycles{}
	return NewResolver(repo, cycles), repo, cycles
}

func TestResolveNoContextMeansRegenerate(t *testing.T) {
	r, _, _ := newTestResolver()
	res, err := r.Resolve(context.Background(), 1, "example.com", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reuse {
		t.Error("unknown identity must not reuse")
	}
}

func TestResolveReusesActiveContext(t *testing.T) {
	r, _, cycles := newTestResolver()
	ctx := context.Background()

	created, outcome, err := r.Create(ctx, 1, 10, "https://WWW.Example.com/", []string{"/pricing"}, 640, domain.PlanStarter)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeCreated {
		t.Fatalf("outcome = %s, want created", outcome)
	}

	// Same identity spelled differently still resolves.
	res, err := r.Resolve(ctx, 1, "example.com", []string{"pricing/"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Reuse {
		t.Fatal("matching identity inside the window must reuse")
	}
	if res.Context.ID != created.ID {
		t.Errorf("resolved context %d, want %d", res.Context.ID, created.ID)
	}
	if res.CycleRefreshed || cycles.processed != 0 {
		t.Error("cycle not due, nothing should rotate")
	}
}

func TestResolveRunsDueCycleBeforeReuse(t *testing.T) {
	r, _, cycles := newTestResolver()
	ctx := context.Background()

	if _, _, err := r.Create(ctx, 1, 10, "example.com", nil, 640, domain.PlanStarter); err != nil {
		t.Fatal(err)
	}
	cycles.due = true

	res, err := r.Resolve(ctx, 1, "example.com", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Reuse || !res.CycleRefreshed {
		t.Errorf("want reuse with cycleRefreshed, got %+v", res)
	}
	if cycles.processed != 1 {
		t.Errorf("process called %d times, want 1", cycles.processed)
	}
}

func TestCompetitorProbeNeverReuses(t *testing.T) {
	r, _, _ := newTestResolver()
	ctx := context.Background()

	if _, _, err := r.Create(ctx, 1, 10, "example.com", nil, 640, domain.PlanStarter); err != nil {
		t.Fatal(err)
	}
	res, err := r.Resolve(ctx, 1, "example.com", nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reuse {
		t.Error("competitor probes must never reuse a context")
	}
}

func TestExpiredContextNotReused(t *testing.T) {
	r, repo, _ := newTestResolver()
	ctx := context.Background()

	created, _, err := r.Create(ctx, 1, 10, "example.com", nil, 640, domain.PlanStarter)
	if err != nil {
		t.Fatal(err)
	}
	repo.byKey[created.ContextKey].ExpiresAt = time.Now().Add(-time.Hour)

	res, err := r.Resolve(ctx, 1, "example.com", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reuse {
		t.Error("expired context must not be reused")
	}
}

func TestCreateIsIdempotentOnConflict(t *testing.T) {
	r, repo, _ := newTestResolver()
	ctx := context.Background()

	first, _, err := r.Create(ctx, 1, 10, "example.com", nil, 640, domain.PlanStarter)
	if err != nil {
		t.Fatal(err)
	}
	second, outcome, err := r.Create(ctx, 1, 11, "https://www.example.com", nil, 655, domain.PlanStarter)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeUpdated {
		t.Fatalf("outcome = %s, want updated", outcome)
	}
	if second.ID != first.ID {
		t.Errorf("conflict should update row %d, created %d instead", first.ID, second.ID)
	}
	if second.PrimaryScanID != 11 {
		t.Errorf("primary scan = %d, want 11", second.PrimaryScanID)
	}
	if len(repo.byKey) != 1 {
		t.Errorf("duplicate context row created")
	}
}

func TestAgencyExpiryIsEndOfMonth(t *testing.T) {
	r, _, _ := newTestResolver()
	now := time.Date(2026, time.March, 12, 9, 30, 0, 0, time.UTC)

	exp := r.expiry(domain.PlanAgency, now)
	want := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !exp.Equal(want) {
		t.Errorf("agency expiry = %v, want %v", exp, want)
	}

	exp = r.expiry(domain.PlanPro, now)
	if !exp.Equal(now.Add(refresh.DefaultWindow)) {
		t.Errorf("pro expiry = %v, want now+window", exp)
	}
}
