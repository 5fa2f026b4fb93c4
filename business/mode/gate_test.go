package mode

import (
	"context"
	"testing"

	"aiVisibility/domain"
)

type fakeRepo struct {
	state       *domain.ModeState
	transitions []domain.ModeTransition
}

func (f *fakeRepo) GetState(ctx context.Context, accountID uint) (*domain.ModeState, error) {
	if f.state == nil {
		return nil, nil
	}
	cp := *f.state
	return &cp, nil
}

func (f *fakeRepo) SaveState(ctx context.Context, state *domain.ModeState) error {
	cp := *state
	f.state = &cp
	return nil
}

func (f *fakeRepo) AppendTransition(ctx context.Context, tr domain.ModeTransition) error {
	f.transitions = append(f.transitions, tr)
	return nil
}

func TestHysteresisSequence(t *testing.T) {
	repo := &fakeRepo{}
	gate := NewGate(repo)
	ctx := context.Background()

	scores := []float64{820, 860, 830, 810, 790}
	wantModes := []string{
		domain.ModeOptimization,
		domain.ModeEliteMaintenance,
		domain.ModeEliteMaintenance,
		domain.ModeEliteMaintenance,
		domain.ModeOptimization,
	}
	wantTransitioned := []bool{true, true, false, false, true}

	for i, score := range scores {
		res, err := gate.Evaluate(ctx, 1, uint(100+i), score)
		if err != nil {
			t.Fatalf("evaluate %d: %v", i, err)
		}
		if res.Mode != wantModes[i] {
			t.Errorf("score %v: mode = %s, want %s", score, res.Mode, wantModes[i])
		}
		if res.Transitioned != wantTransitioned[i] {
			t.Errorf("score %v: transitioned = %v, want %v", score, res.Transitioned, wantTransitioned[i])
		}
	}

	// 830 and 810 sit in the buffer zone and must not have produced records.
	if len(repo.transitions) != 3 {
		t.Fatalf("got %d transition records, want 3", len(repo.transitions))
	}
	if repo.transitions[2].Reason != ReasonDroppedBelow {
		t.Errorf("final transition reason = %s, want %s", repo.transitions[2].Reason, ReasonDroppedBelow)
	}
}

func TestBufferZoneFlag(t *testing.T) {
	repo := &fakeRepo{}
	gate := NewGate(repo)
	ctx := context.Background()

	if _, err := gate.Evaluate(ctx, 1, 1, 900); err != nil {
		t.Fatal(err)
	}
	res, err := gate.Evaluate(ctx, 1, 2, 830)
	if err != nil {
		t.Fatal(err)
	}
	if !res.InBufferZone {
		t.Error("score 830 in elite maintenance should flag the buffer zone")
	}
	if repo.state.InBufferZone != true {
		t.Error("buffer zone flag not persisted")
	}

	res, err = gate.Evaluate(ctx, 1, 3, 870)
	if err != nil {
		t.Fatal(err)
	}
	if res.InBufferZone {
		t.Error("score 870 should clear the buffer zone")
	}
}

func TestFirstScanStartsInEliteAboveEnter(t *testing.T) {
	repo := &fakeRepo{}
	gate := NewGate(repo)

	res, err := gate.Evaluate(context.Background(), 7, 1, 880)
	if err != nil {
		t.Fatal(err)
	}
	if res.Mode != domain.ModeEliteMaintenance {
		t.Errorf("first scan at 880 should start elite maintenance, got %s", res.Mode)
	}
	if len(repo.transitions) != 1 || repo.transitions[0].Reason != ReasonFirstScan {
		t.Errorf("first scan should append one %s transition", ReasonFirstScan)
	}
}

func TestHighWaterMarkTracked(t *testing.T) {
	repo := &fakeRepo{}
	gate := NewGate(repo)
	ctx := context.Background()

	for _, s := range []float64{500, 700, 620} {
		if _, err := gate.Evaluate(ctx, 3, 1, s); err != nil {
			t.Fatal(err)
		}
	}
	if repo.state.HighestScoreAchieved != 700 {
		t.Errorf("highest score = %v, want 700", repo.state.HighestScoreAchieved)
	}
	if repo.state.CurrentScore != 620 {
		t.Errorf("current score = %v, want 620", repo.state.CurrentScore)
	}
}
