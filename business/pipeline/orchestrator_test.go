package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"aiVisibility/business/mode"
	"aiVisibility/business/refresh"
	"aiVisibility/domain"
)

type fakeScans struct {
	scans map[uint]*domain.Scan
}

func (f *fakeScans) GetByID(ctx context.Context, id uint) (*domain.Scan, error) {
	scan, ok := f.scans[id]
	if !ok {
		return nil, nil
	}
	cp := *scan
	return &cp, nil
}

func (f *fakeScans) Complete(ctx context.Context, id uint, pillarScores []float64, totalScore float64, at time.Time) error {
	scan := f.scans[id]
	scan.PillarScores = pillarScores
	scan.TotalScore = totalScore
	scan.CompletedAt = &at
	return nil
}

type fakeSnapshots struct {
	snaps   []domain.ScoreSnapshot
	saveErr error
}

func (f *fakeSnapshots) GetLatest(ctx context.Context, accountID uint) (*domain.ScoreSnapshot, error) {
	var latest *domain.ScoreSnapshot
	for i := range f.snaps {
		if f.snaps[i].AccountID != accountID {
			continue
		}
		if latest == nil || f.snaps[i].CreatedAt.After(latest.CreatedAt) {
			latest = &f.snaps[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeSnapshots) Save(ctx context.Context, snap *domain.ScoreSnapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	snap.CreatedAt = time.Now()
	f.snaps = append(f.snaps, *snap)
	return nil
}

type fakeModeRepo struct {
	states      map[uint]*domain.ModeState
	transitions []domain.ModeTransition
}

func (f *fakeModeRepo) GetState(ctx context.Context, accountID uint) (*domain.ModeState, error) {
	state, ok := f.states[accountID]
	if !ok {
		return nil, nil
	}
	cp := *state
	return &cp, nil
}

func (f *fakeModeRepo) SaveState(ctx context.Context, state *domain.ModeState) error {
	cp := *state
	f.states[state.AccountID] = &cp
	return nil
}

func (f *fakeModeRepo) AppendTransition(ctx context.Context, tr domain.ModeTransition) error {
	f.transitions = append(f.transitions, tr)
	return nil
}

type fakeDetector struct {
	detections []domain.ImplementationDetection
	err        error
	called     bool
}

func (f *fakeDetector) Detect(ctx context.Context, accountID, currentScanID uint) ([]domain.ImplementationDetection, error) {
	f.called = true
	return f.detections, f.err
}

type fakeImpacts struct {
	missing []domain.Recommendation
	scored  map[uint]float64
}

func (f *fakeImpacts) ListMissingScore(ctx context.Context, scanID uint) ([]domain.Recommendation, error) {
	return f.missing, nil
}

func (f *fakeImpacts) SetImpactScore(ctx context.Context, id uint, score float64) error {
	if f.scored == nil {
		f.scored = map[uint]float64{}
	}
	f.scored[id] = score
	return nil
}

type fakeCycles struct {
	err       error
	called    bool
	contextID uint
}

func (f *fakeCycles) InitializeContext(ctx context.Context, accountID, contextID uint) error {
	f.called = true
	f.contextID = contextID
	return f.err
}

type fakeAccounts struct {
	profile domain.AccountProfile
}

func (f *fakeAccounts) GetProfile(ctx context.Context, accountID uint) (domain.AccountProfile, error) {
	return f.profile, nil
}

type fakeGenerator struct {
	requests int
	err      error
}

func (f *fakeGenerator) GenerateEliteCandidates(ctx context.Context, accountID, scanID uint) error {
	f.requests++
	return f.err
}

type fakeNotifier struct {
	modeEvents  []domain.ModeTransitionEvent
	cycleEvents []domain.CycleRefreshEvent
}

func (f *fakeNotifier) NotifyModeTransition(ctx context.Context, ev domain.ModeTransitionEvent) error {
	f.modeEvents = append(f.modeEvents, ev)
	return nil
}

func (f *fakeNotifier) NotifyCycleRefresh(ctx context.Context, ev domain.CycleRefreshEvent) error {
	f.cycleEvents = append(f.cycleEvents, ev)
	return nil
}

type orchestratorDeps struct {
	scans     *fakeScans
	snapshots *fakeSnapshots
	modeRepo  *fakeModeRepo
	detector  *fakeDetector
	impacts   *fakeImpacts
	cycles    *fakeCycles
	accounts  *fakeAccounts
	generator *fakeGenerator
	notifier  *fakeNotifier
}

func newOrchestratorDeps() *orchestratorDeps {
	return &orchestratorDeps{
		scans:     &fakeScans{scans: map[uint]*domain.Scan{}},
		snapshots: &fakeSnapshots{},
		modeRepo:  &fakeModeRepo{states: map[uint]*domain.ModeState{}},
		detector:  &fakeDetector{},
		impacts:   &fakeImpacts{},
		cycles:    &fakeCycles{},
		accounts:  &fakeAccounts{profile: domain.AccountProfile{PlanTier: domain.PlanFree, Industry: "saas"}},
		generator: &fakeGenerator{},
		notifier:  &fakeNotifier{},
	}
}

func (d *orchestratorDeps) build() *Orchestrator {
	return NewOrchestrator(
		d.scans,
		d.snapshots,
		mode.NewGate(d.modeRepo),
		d.detector,
		d.impacts,
		d.cycles,
		d.accounts,
		d.generator,
		d.notifier,
	)
}

func uniformScores(v float64) []float64 {
	scores := make([]float64, domain.NumPillars)
	for i := range scores {
		scores[i] = v
	}
	return scores
}

func TestScoreImprovementTriggersEliteTransition(t *testing.T) {
	deps := newOrchestratorDeps()
	deps.scans.scans[1] = &domain.Scan{ID: 1, AccountID: 7, Domain: "example.com"}
	deps.scans.scans[2] = &domain.Scan{ID: 2, AccountID: 7, Domain: "example.com"}
	orc := deps.build()
	ctx := context.Background()

	report, err := orc.OnScanComplete(ctx, 7, 1, 50, uniformScores(7.8), 780)
	if err != nil {
		t.Fatal(err)
	}
	if report.Mode != domain.ModeOptimization {
		t.Fatalf("first scan at 780 should land in optimization, got %s", report.Mode)
	}
	if deps.generator.requests != 0 {
		t.Error("elite candidates requested while in optimization")
	}

	report, err = orc.OnScanComplete(ctx, 7, 2, 50, uniformScores(8.6), 860)
	if err != nil {
		t.Fatal(err)
	}
	if report.Mode != domain.ModeEliteMaintenance || !report.ModeChanged {
		t.Fatalf("860 after 780 should transition to elite, got mode=%s changed=%v", report.Mode, report.ModeChanged)
	}
	if report.ScoreDelta != 80 {
		t.Errorf("delta = %v, want 80", report.ScoreDelta)
	}

	last := deps.modeRepo.transitions[len(deps.modeRepo.transitions)-1]
	if last.ToMode != domain.ModeEliteMaintenance || last.FromMode != domain.ModeOptimization {
		t.Errorf("transition record = %+v, want optimization -> elite_maintenance", last)
	}
	if deps.generator.requests != 1 {
		t.Errorf("elite candidate requests = %d, want 1", deps.generator.requests)
	}
	if len(deps.notifier.modeEvents) != 1 || deps.notifier.modeEvents[0].ToMode != domain.ModeEliteMaintenance {
		t.Errorf("mode events = %+v, want one elite transition", deps.notifier.modeEvents)
	}
}

func TestSnapshotFailureAbortsPipeline(t *testing.T) {
	deps := newOrchestratorDeps()
	deps.scans.scans[1] = &domain.Scan{ID: 1, AccountID: 7, Domain: "example.com"}
	deps.snapshots.saveErr = errors.New("write timeout")
	orc := deps.build()

	_, err := orc.OnScanComplete(context.Background(), 7, 1, 50, uniformScores(5), 500)
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("want FatalError, got %v", err)
	}
	if fatal.Step != StepSnapshot {
		t.Errorf("fatal step = %s, want %s", fatal.Step, StepSnapshot)
	}
	if deps.detector.called {
		t.Error("detection ran after a fatal snapshot failure")
	}
	if deps.cycles.called {
		t.Error("cycle init ran after a fatal snapshot failure")
	}
}

func TestRecoverableStepFailuresDoNotAbort(t *testing.T) {
	deps := newOrchestratorDeps()
	deps.scans.scans[1] = &domain.Scan{ID: 1, AccountID: 7, Domain: "example.com"}
	deps.detector.err = errors.New("signals unavailable")
	deps.cycles.err = errors.New("context missing")
	deps.impacts.missing = []domain.Recommendation{
		{ID: 11, ScanID: 1, Category: "faq", Title: "Add an FAQ section"},
	}
	orc := deps.build()

	report, err := orc.OnScanComplete(context.Background(), 7, 1, 50, uniformScores(5), 500)
	if err != nil {
		t.Fatalf("recoverable failures must not abort, got %v", err)
	}
	if len(report.FailedSteps) != 2 {
		t.Fatalf("failed steps = %v, want detection and cycle init", report.FailedSteps)
	}
	if report.ScoredCount != 1 {
		t.Errorf("scored count = %d, want 1", report.ScoredCount)
	}
	if _, ok := deps.impacts.scored[11]; !ok {
		t.Error("impact scoring skipped despite earlier step failing")
	}
}

func TestCycleInitUsesResolvedContext(t *testing.T) {
	deps := newOrchestratorDeps()
	deps.scans.scans[1] = &domain.Scan{ID: 1, AccountID: 7, Domain: "example.com"}
	orc := deps.build()

	if _, err := orc.OnScanComplete(context.Background(), 7, 1, 50, uniformScores(5), 500); err != nil {
		t.Fatal(err)
	}
	if !deps.cycles.called {
		t.Fatal("cycle init never ran")
	}
	if deps.cycles.contextID != 50 {
		t.Errorf("cycle init keyed on context %d, want 50", deps.cycles.contextID)
	}
}

func TestCompetitorProbeSkipsCycleInit(t *testing.T) {
	deps := newOrchestratorDeps()
	deps.scans.scans[1] = &domain.Scan{ID: 1, AccountID: 7, Domain: "rival.com", IsCompetitorProbe: true}
	orc := deps.build()

	report, err := orc.OnScanComplete(context.Background(), 7, 1, 0, uniformScores(5), 500)
	if err != nil {
		t.Fatal(err)
	}
	if deps.cycles.called {
		t.Error("cycle init ran without a resolved context")
	}
	if len(report.FailedSteps) != 0 {
		t.Errorf("failed steps = %v, want none", report.FailedSteps)
	}
}

func TestOutOfOrderCompletionRejected(t *testing.T) {
	deps := newOrchestratorDeps()
	old := time.Now().Add(-48 * time.Hour)
	deps.scans.scans[1] = &domain.Scan{ID: 1, AccountID: 7, Domain: "example.com", CompletedAt: &old}
	deps.snapshots.snaps = []domain.ScoreSnapshot{
		{AccountID: 7, ScanID: 9, TotalScore: 700, CreatedAt: time.Now().Add(-time.Hour)},
	}
	orc := deps.build()

	_, err := orc.OnScanComplete(context.Background(), 7, 1, 50, uniformScores(5), 500)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want validation error for stale scan, got %v", err)
	}
	if len(deps.snapshots.snaps) != 1 {
		t.Error("stale scan must not produce a snapshot")
	}
}

func TestPillarVectorLengthValidated(t *testing.T) {
	deps := newOrchestratorDeps()
	orc := deps.build()

	_, err := orc.OnScanComplete(context.Background(), 7, 1, 50, []float64{1, 2, 3}, 300)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want validation error for short vector, got %v", err)
	}
}

type fakeContextLister struct {
	contexts []domain.RecommendationContext
}

func (f *fakeContextLister) ListActiveContexts(ctx context.Context) ([]domain.RecommendationContext, error) {
	return f.contexts, nil
}

type fakeLocker struct {
	held map[uint]bool
}

func (f *fakeLocker) Acquire(ctx context.Context, accountID uint, ttl time.Duration) (bool, error) {
	if f.held[accountID] {
		return false, nil
	}
	return true, nil
}

func (f *fakeLocker) Release(ctx context.Context, accountID uint) error { return nil }

type fakeCycleProcessor struct {
	due     map[uint]bool
	results map[uint]refresh.ProcessResult
	errs    map[uint]error
}

func (f *fakeCycleProcessor) IsDue(ctx context.Context, accountID, scanID uint) (refresh.DueStatus, error) {
	return refresh.DueStatus{Due: f.due[accountID]}, nil
}

func (f *fakeCycleProcessor) Process(ctx context.Context, accountID, scanID uint) (refresh.ProcessResult, error) {
	if err := f.errs[accountID]; err != nil {
		return refresh.ProcessResult{}, err
	}
	return f.results[accountID], nil
}

func TestSweepRotatesDueContextsOnly(t *testing.T) {
	lister := &fakeContextLister{contexts: []domain.RecommendationContext{
		{ID: 1, AccountID: 10, PrimaryScanID: 100},
		{ID: 2, AccountID: 20, PrimaryScanID: 200},
		{ID: 3, AccountID: 30, PrimaryScanID: 300},
	}}
	processor := &fakeCycleProcessor{
		due: map[uint]bool{10: true, 30: true},
		results: map[uint]refresh.ProcessResult{
			10: {ReplacedCount: 2, CycleNumber: 3, NextCycleDate: time.Now().Add(14 * 24 * time.Hour)},
			30: {CycleNumber: 2},
		},
	}
	notifier := &fakeNotifier{}
	sweeper := NewSweeper(lister, processor, &fakeLocker{}, notifier)

	res, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Visited != 3 || res.Rotated != 2 || res.Skipped != 1 || res.Failed != 0 {
		t.Errorf("result = %+v, want 3 visited, 2 rotated, 1 skipped", res)
	}
	if len(notifier.cycleEvents) != 1 || notifier.cycleEvents[0].AccountID != 10 {
		t.Errorf("cycle events = %+v, want one for the account with replacements", notifier.cycleEvents)
	}
}

func TestSweepSkipsLockedAndIsolatesFailures(t *testing.T) {
	lister := &fakeContextLister{contexts: []domain.RecommendationContext{
		{ID: 1, AccountID: 10, PrimaryScanID: 100},
		{ID: 2, AccountID: 20, PrimaryScanID: 200},
		{ID: 3, AccountID: 30, PrimaryScanID: 300},
	}}
	processor := &fakeCycleProcessor{
		due:  map[uint]bool{10: true, 20: true, 30: true},
		errs: map[uint]error{20: errors.New("deadlock")},
		results: map[uint]refresh.ProcessResult{
			30: {ReplacedCount: 1, CycleNumber: 2},
		},
	}
	locker := &fakeLocker{held: map[uint]bool{10: true}}
	sweeper := NewSweeper(lister, processor, locker, &fakeNotifier{})

	res, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 for the held lock", res.Skipped)
	}
	if res.Failed != 1 {
		t.Errorf("failed = %d, want 1 for the deadlocked account", res.Failed)
	}
	if res.Rotated != 1 {
		t.Errorf("rotated = %d, want the healthy account processed", res.Rotated)
	}
}
