package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aiVisibility/business/impact"
	"aiVisibility/business/mode"
	"aiVisibility/domain"
	"aiVisibility/pkg/logger"
)

// Step names used in error wrapping, logs and metrics.
const (
	StepSnapshot  = "score_snapshot"
	StepMode      = "mode_transition"
	StepDetection = "implementation_detection"
	StepImpact    = "impact_scoring"
	StepElite     = "elite_generation"
	StepCycleInit = "cycle_init"
)

type ScanRepository interface {
	GetByID(ctx context.Context, id uint) (*domain.Scan, error)
	// Complete stamps scores and the completion time on a scan that is not
	// completed yet. Completed scans are immutable; calling it again is an
	// error.
	Complete(ctx context.Context, id uint, pillarScores []float64, totalScore float64, at time.Time) error
}

type SnapshotRepository interface {
	// GetLatest returns nil, nil when the account has no snapshots yet.
	GetLatest(ctx context.Context, accountID uint) (*domain.ScoreSnapshot, error)
	Save(ctx context.Context, snap *domain.ScoreSnapshot) error
}

type ImpactRepository interface {
	ListMissingScore(ctx context.Context, scanID uint) ([]domain.Recommendation, error)
	SetImpactScore(ctx context.Context, id uint, score float64) error
}

type ModeGate interface {
	Evaluate(ctx context.Context, accountID, scanID uint, score float64) (mode.Result, error)
}

type Detector interface {
	Detect(ctx context.Context, accountID, currentScanID uint) ([]domain.ImplementationDetection, error)
}

type CycleManager interface {
	// InitializeContext opens cycle 1 for the resolved context; a no-op
	// when a cycle already exists.
	InitializeContext(ctx context.Context, accountID, contextID uint) error
}

type AccountDirectory interface {
	GetProfile(ctx context.Context, accountID uint) (domain.AccountProfile, error)
}

// CandidateGenerator is the external recommendation-catalog collaborator.
// The orchestrator only triggers it; generation itself is out of scope.
type CandidateGenerator interface {
	GenerateEliteCandidates(ctx context.Context, accountID, scanID uint) error
}

// Notifier hands event payloads to the external notification dispatcher.
type Notifier interface {
	NotifyModeTransition(ctx context.Context, ev domain.ModeTransitionEvent) error
}

// Orchestrator sequences the post-completion saga for one scan. Step 1 is
// fatal; steps 2-6 are independently fault-isolated: a failure is logged
// and counted, then the pipeline moves on.
type Orchestrator struct {
	scans     ScanRepository
	snapshots SnapshotRepository
	gate      ModeGate
	detector  Detector
	impacts   ImpactRepository
	cycles    CycleManager
	accounts  AccountDirectory
	generator CandidateGenerator
	notifier  Notifier
}

func NewOrchestrator(
	scans ScanRepository,
	snapshots SnapshotRepository,
	gate ModeGate,
	detector Detector,
	impacts ImpactRepository,
	cycles CycleManager,
	accounts AccountDirectory,
	generator CandidateGenerator,
	notifier Notifier,
) *Orchestrator {
	return &Orchestrator{
		scans:     scans,
		snapshots: snapshots,
		gate:      gate,
		detector:  detector,
		impacts:   impacts,
		cycles:    cycles,
		accounts:  accounts,
		generator: generator,
		notifier:  notifier,
	}
}

// Report summarizes one orchestration run for the caller and for logs.
type Report struct {
	ScanID         uint     `json:"scan_id"`
	ScoreDelta     float64  `json:"score_delta"`
	Mode           string   `json:"mode"`
	ModeChanged    bool     `json:"mode_changed"`
	DetectionCount int      `json:"detection_count"`
	ScoredCount    int      `json:"scored_count"`
	EliteRequested bool     `json:"elite_requested"`
	FailedSteps    []string `json:"failed_steps,omitempty"`
}

// OnScanComplete runs the completion saga. Ordering is load-bearing: the
// score snapshot lands before anything consumes it, and the mode is
// resolved before elite generation. Only a snapshot failure aborts the
// run. contextID is the recommendation context the caller resolved for
// this scan; zero (competitor probes) skips cycle initialization.
func (o *Orchestrator) OnScanComplete(ctx context.Context, accountID, scanID, contextID uint, pillarScores []float64, totalScore float64) (*Report, error) {
	ctx = WithTraceID(ctx)
	tid := TraceIDFromContext(ctx)

	if len(pillarScores) != domain.NumPillars {
		return nil, domain.NewValidationError("pillar_scores",
			fmt.Sprintf("expected %d entries, got %d", domain.NumPillars, len(pillarScores)))
	}
	if totalScore < 0 || totalScore > 1000 {
		return nil, domain.NewValidationError("total_score", "outside 0-1000")
	}

	CompletionsTotal.Inc()
	report := &Report{ScanID: scanID}

	logger.Info("scan_completion_started",
		"trace_id", tid,
		"account_id", accountID,
		"scan_id", scanID,
		"total_score", totalScore,
	)

	// Step 1: score snapshot + delta. Fatal on failure.
	delta, err := o.recordSnapshot(ctx, accountID, scanID, pillarScores, totalScore)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		logger.Error("scan_completion_fatal", "trace_id", tid, "step", StepSnapshot, "error", err)
		return nil, &FatalError{Step: StepSnapshot, Err: err}
	}
	report.ScoreDelta = delta

	// Step 2: mode transition gate.
	modeRes, err := o.gate.Evaluate(ctx, accountID, scanID, totalScore)
	if err != nil {
		o.stepFailed(ctx, report, StepMode, err)
		modeRes = mode.Result{Mode: domain.ModeOptimization}
	} else {
		report.Mode = modeRes.Mode
		report.ModeChanged = modeRes.Transitioned
		if modeRes.Transitioned {
			ModeTransitionsTotal.WithLabelValues(modeRes.Mode).Inc()
			// First-scan seeding sets a mode but is not a transition the
			// customer should hear about.
			if modeRes.PreviousMode != "" {
				o.emitTransition(ctx, accountID, scanID, modeRes, totalScore)
			}
		}
	}

	// Step 3: implicit-implementation detection against the prior scan.
	detections, err := o.detector.Detect(ctx, accountID, scanID)
	if err != nil {
		o.stepFailed(ctx, report, StepDetection, err)
	} else {
		report.DetectionCount = len(detections)
		for _, det := range detections {
			DetectionsTotal.WithLabelValues(det.DetectionType).Inc()
		}
	}

	// Step 4: impact scores for anything on this scan still missing one.
	scored, err := o.scoreMissing(ctx, accountID, scanID, pillarScores, modeRes.Mode)
	if err != nil {
		o.stepFailed(ctx, report, StepImpact, err)
	} else {
		report.ScoredCount = scored
	}

	// Step 5: elite candidates, only once the mode is settled.
	if modeRes.Mode == domain.ModeEliteMaintenance {
		if err := o.generator.GenerateEliteCandidates(ctx, accountID, scanID); err != nil {
			o.stepFailed(ctx, report, StepElite, err)
		} else {
			report.EliteRequested = true
		}
	}

	// Step 6: first refresh cycle for the resolved context, if none exists.
	if contextID != 0 {
		if err := o.cycles.InitializeContext(ctx, accountID, contextID); err != nil {
			o.stepFailed(ctx, report, StepCycleInit, err)
		}
	}

	logger.Info("scan_completion_finished",
		"trace_id", tid,
		"account_id", accountID,
		"scan_id", scanID,
		"mode", report.Mode,
		"detections", report.DetectionCount,
		"failed_steps", len(report.FailedSteps),
	)

	return report, nil
}

// recordSnapshot completes the scan row and writes the score snapshot.
// Scans for one account must arrive in completion order; anything older
// than the last processed completion is rejected outright.
func (o *Orchestrator) recordSnapshot(ctx context.Context, accountID, scanID uint, pillarScores []float64, totalScore float64) (float64, error) {
	scan, err := o.scans.GetByID(ctx, scanID)
	if err != nil {
		return 0, fmt.Errorf("load scan: %w", err)
	}
	if scan == nil {
		return 0, domain.NewValidationError("scan_id", "not found")
	}
	if scan.AccountID != accountID {
		return 0, domain.NewValidationError("scan_id", "scan belongs to a different account")
	}

	latest, err := o.snapshots.GetLatest(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("load latest snapshot: %w", err)
	}
	if scan.CompletedAt != nil && latest != nil && scan.CompletedAt.Before(latest.CreatedAt) {
		return 0, domain.NewValidationError("scan_id", "completed before the last processed scan")
	}

	if scan.CompletedAt == nil {
		if err := o.scans.Complete(ctx, scanID, pillarScores, totalScore, time.Now()); err != nil {
			return 0, fmt.Errorf("complete scan: %w", err)
		}
	}

	previous := 0.0
	if latest != nil {
		previous = latest.TotalScore
	}
	delta := totalScore - previous

	if err := o.snapshots.Save(ctx, &domain.ScoreSnapshot{
		AccountID:     accountID,
		ScanID:        scanID,
		TotalScore:    totalScore,
		PreviousScore: previous,
		Delta:         delta,
	}); err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}

	return delta, nil
}

func (o *Orchestrator) scoreMissing(ctx context.Context, accountID, scanID uint, pillarScores []float64, currentMode string) (int, error) {
	missing, err := o.impacts.ListMissingScore(ctx, scanID)
	if err != nil {
		return 0, fmt.Errorf("list unscored recommendations: %w", err)
	}
	if len(missing) == 0 {
		return 0, nil
	}

	profile, err := o.accounts.GetProfile(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("load account profile: %w", err)
	}

	for _, rec := range missing {
		score := impact.Score(rec, pillarScores, profile.Industry, currentMode)
		if err := o.impacts.SetImpactScore(ctx, rec.ID, score); err != nil {
			return 0, fmt.Errorf("set impact score for %d: %w", rec.ID, err)
		}
	}
	return len(missing), nil
}

func (o *Orchestrator) emitTransition(ctx context.Context, accountID, scanID uint, res mode.Result, score float64) {
	ev := domain.ModeTransitionEvent{
		AccountID: accountID,
		ScanID:    scanID,
		FromMode:  res.PreviousMode,
		ToMode:    res.Mode,
		Score:     score,
		Reason:    res.Reason,
		At:        time.Now(),
	}
	if err := o.notifier.NotifyModeTransition(ctx, ev); err != nil {
		// Notification is delivery-best-effort on top of a best-effort step.
		logger.Warn("mode_transition_notify_failed",
			"trace_id", TraceIDFromContext(ctx),
			"account_id", accountID,
			"error", err,
		)
	}
}

func (o *Orchestrator) stepFailed(ctx context.Context, report *Report, step string, err error) {
	report.FailedSteps = append(report.FailedSteps, step)
	StepFailuresTotal.WithLabelValues(step).Inc()
	stepErr := &StepError{Step: step, Err: err}
	logger.Error("pipeline_step_failed",
		"trace_id", TraceIDFromContext(ctx),
		"step", step,
		"error", stepErr,
	)
}
