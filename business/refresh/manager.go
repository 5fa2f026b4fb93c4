package refresh

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aiVisibility/business/impact"
	"aiVisibility/domain"
	"aiVisibility/pkg/logger"
)

// Repository is the storage surface the cycle manager needs. WithTx runs
// fn against a transaction-scoped copy of the repository; everything the
// closure does commits or rolls back as one unit.
type Repository interface {
	GetContextByAccountScan(ctx context.Context, accountID, scanID uint) (*domain.RecommendationContext, error)
	GetContextByID(ctx context.Context, id uint) (*domain.RecommendationContext, error)
	GetLatestCycle(ctx context.Context, contextID uint) (*domain.RefreshCycle, error)
	CreateCycle(ctx context.Context, cycle *domain.RefreshCycle) error
	ExtendCycle(ctx context.Context, cycleID uint, nextCycleDate time.Time) error
	ListByScanAndStates(ctx context.Context, scanID uint, states []string) ([]domain.Recommendation, error)
	ArchiveRecommendation(ctx context.Context, id uint, reason string, at time.Time) error
	ActivateRecommendation(ctx context.Context, id uint, batch int, at time.Time) error
	SetImpactScore(ctx context.Context, id uint, score float64) error
	SaveReplacement(ctx context.Context, rep domain.RecommendationReplacement) error

	WithTx(ctx context.Context, fn func(Repository) error) error
}

// AccountDirectory resolves plan tier and industry from the billing system.
type AccountDirectory interface {
	GetProfile(ctx context.Context, accountID uint) (domain.AccountProfile, error)
}

type ScanReader interface {
	GetByID(ctx context.Context, id uint) (*domain.Scan, error)
}

// ModeReader resolves the account's current operating mode so candidate
// ranking weights match what the account is actually served.
type ModeReader interface {
	CurrentMode(ctx context.Context, accountID uint) (string, error)
}

type Manager struct {
	repo     Repository
	accounts AccountDirectory
	scans    ScanReader
	modes    ModeReader
	window   time.Duration
}

func NewManager(repo Repository, accounts AccountDirectory, scans ScanReader, modes ModeReader) *Manager {
	return &Manager{repo: repo, accounts: accounts, scans: scans, modes: modes, window: DefaultWindow}
}

func NewManagerWithWindow(repo Repository, accounts AccountDirectory, scans ScanReader, modes ModeReader, window time.Duration) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Manager{repo: repo, accounts: accounts, scans: scans, modes: modes, window: window}
}

// Window exposes the rotation window so the context resolver can couple
// context expiry to the same cadence.
func (m *Manager) Window() time.Duration {
	return m.window
}

// DueStatus reports whether a context's cycle is ready to rotate.
type DueStatus struct {
	Due           bool `json:"due"`
	DaysRemaining int  `json:"days_remaining"`
	CycleNumber   int  `json:"cycle_number"`
}

// ProcessResult summarizes one rotation.
type ProcessResult struct {
	ReplacedCount        int       `json:"replaced_count"`
	NextCycleDate        time.Time `json:"next_cycle_date"`
	NewRecommendationIDs []uint    `json:"new_recommendation_ids"`
	CycleNumber          int       `json:"cycle_number"`
}

// Initialize opens cycle 1 for the context whose primary scan this is:
// promotes the top-K locked recommendations to active when nothing is
// active yet, snapshots the active set and stamps the first rotation
// deadline. Calling it when a cycle already exists is a no-op.
func (m *Manager) Initialize(ctx context.Context, accountID, scanID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	rctx, err := m.repo.GetContextByAccountScan(ctx, accountID, scanID)
	if err != nil {
		return fmt.Errorf("load context: %w", err)
	}
	if rctx == nil {
		return fmt.Errorf("no active context for account %d scan %d", accountID, scanID)
	}

	return m.initialize(ctx, accountID, rctx)
}

// InitializeContext is Initialize keyed by the resolved context id. Reuse
// scans complete under a context whose primary scan is older, so the
// completion pipeline addresses the context directly instead of guessing
// the scan it was created from.
func (m *Manager) InitializeContext(ctx context.Context, accountID, contextID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	rctx, err := m.repo.GetContextByID(ctx, contextID)
	if err != nil {
		return fmt.Errorf("load context: %w", err)
	}
	if rctx == nil || rctx.AccountID != accountID {
		return fmt.Errorf("no context %d for account %d", contextID, accountID)
	}

	return m.initialize(ctx, accountID, rctx)
}

func (m *Manager) initialize(ctx context.Context, accountID uint, rctx *domain.RecommendationContext) error {
	existing, err := m.repo.GetLatestCycle(ctx, rctx.ID)
	if err != nil {
		return fmt.Errorf("load latest cycle: %w", err)
	}
	if existing != nil {
		return nil
	}

	profile, err := m.accounts.GetProfile(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account profile: %w", err)
	}
	k := BatchSize(profile.PlanTier)

	// The recommendation pool always hangs off the context's primary
	// scan, whichever scan triggered the call.
	poolScanID := rctx.PrimaryScanID

	now := time.Now()
	return m.repo.WithTx(ctx, func(tx Repository) error {
		active, err := tx.ListByScanAndStates(ctx, poolScanID, []string{domain.StateActive})
		if err != nil {
			return fmt.Errorf("list active recommendations: %w", err)
		}

		if len(active) == 0 {
			locked, err := m.rankedLocked(ctx, tx, accountID, poolScanID)
			if err != nil {
				return err
			}
			if len(locked) > k {
				locked = locked[:k]
			}
			for _, rec := range locked {
				if err := tx.ActivateRecommendation(ctx, rec.ID, 1, now); err != nil {
					return fmt.Errorf("activate recommendation %d: %w", rec.ID, err)
				}
			}
			active = locked
		} else {
			sortByImpactDesc(active)
			if len(active) > k {
				active = active[:k]
			}
		}

		ids := make([]uint, 0, len(active))
		for _, rec := range active {
			ids = append(ids, rec.ID)
		}

		cycle := &domain.RefreshCycle{
			ContextID:     rctx.ID,
			ScanID:        poolScanID,
			CycleNumber:   1,
			StartDate:     now,
			NextCycleDate: now.Add(m.window),
			ActiveRecIDs:  ids,
		}
		if err := tx.CreateCycle(ctx, cycle); err != nil {
			return fmt.Errorf("create cycle: %w", err)
		}
		return nil
	})
}

// IsDue reports whether the context's current cycle has reached its
// rotation deadline.
func (m *Manager) IsDue(ctx context.Context, accountID, scanID uint) (DueStatus, error) {
	if err := ctx.Err(); err != nil {
		return DueStatus{}, fmt.Errorf("context error: %w", err)
	}

	rctx, err := m.repo.GetContextByAccountScan(ctx, accountID, scanID)
	if err != nil {
		return DueStatus{}, fmt.Errorf("load context: %w", err)
	}
	if rctx == nil {
		return DueStatus{}, nil
	}

	cycle, err := m.repo.GetLatestCycle(ctx, rctx.ID)
	if err != nil {
		return DueStatus{}, fmt.Errorf("load latest cycle: %w", err)
	}
	if cycle == nil {
		return DueStatus{}, nil
	}

	now := time.Now()
	if !now.Before(cycle.NextCycleDate) {
		return DueStatus{Due: true, CycleNumber: cycle.CycleNumber}, nil
	}
	remaining := int(cycle.NextCycleDate.Sub(now).Hours() / 24)
	return DueStatus{DaysRemaining: remaining, CycleNumber: cycle.CycleNumber}, nil
}

// Process rotates the context's recommendation set. Completed and skipped
// recommendations are archived and replaced by the highest-impact locked
// candidates from the same scan's pool, all inside one transaction. With
// nothing eligible the cycle deadline is simply pushed out by one window;
// re-invoking with no new completions is always safe.
func (m *Manager) Process(ctx context.Context, accountID, scanID uint) (ProcessResult, error) {
	if err := ctx.Err(); err != nil {
		return ProcessResult{}, fmt.Errorf("context error: %w", err)
	}

	rctx, err := m.repo.GetContextByAccountScan(ctx, accountID, scanID)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("load context: %w", err)
	}
	if rctx == nil {
		return ProcessResult{}, fmt.Errorf("no active context for account %d scan %d", accountID, scanID)
	}

	cycle, err := m.repo.GetLatestCycle(ctx, rctx.ID)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("load latest cycle: %w", err)
	}
	if cycle == nil {
		if err := m.initialize(ctx, accountID, rctx); err != nil {
			return ProcessResult{}, err
		}
		cycle, err = m.repo.GetLatestCycle(ctx, rctx.ID)
		if err != nil || cycle == nil {
			return ProcessResult{}, fmt.Errorf("cycle missing after initialize: %w", err)
		}
	}

	poolScanID := rctx.PrimaryScanID

	eligible, err := m.repo.ListByScanAndStates(ctx, poolScanID, []string{domain.StateCompleted, domain.StateSkipped})
	if err != nil {
		return ProcessResult{}, fmt.Errorf("list eligible recommendations: %w", err)
	}

	now := time.Now()

	if len(eligible) == 0 {
		next := now.Add(m.window)
		if err := m.repo.ExtendCycle(ctx, cycle.ID, next); err != nil {
			return ProcessResult{}, fmt.Errorf("extend cycle: %w", err)
		}
		return ProcessResult{NextCycleDate: next, CycleNumber: cycle.CycleNumber}, nil
	}

	var result ProcessResult
	err = m.repo.WithTx(ctx, func(tx Repository) error {
		locked, err := m.rankedLocked(ctx, tx, accountID, poolScanID)
		if err != nil {
			return err
		}

		implemented, skipped := 0, 0
		var newIDs []uint
		var replacements []domain.RecommendationReplacement
		nextLocked := 0
		newBatch := cycle.CycleNumber + 1

		for _, rec := range eligible {
			if rec.UnlockState == domain.StateCompleted {
				implemented++
			} else {
				skipped++
			}
			if err := tx.ArchiveRecommendation(ctx, rec.ID, archiveReasonRotation, now); err != nil {
				return fmt.Errorf("archive recommendation %d: %w", rec.ID, err)
			}
			if nextLocked >= len(locked) {
				continue
			}
			replacement := locked[nextLocked]
			nextLocked++
			if err := tx.ActivateRecommendation(ctx, replacement.ID, newBatch, now); err != nil {
				return fmt.Errorf("activate recommendation %d: %w", replacement.ID, err)
			}
			replacements = append(replacements, domain.RecommendationReplacement{
				OldRecommendationID: rec.ID,
				NewRecommendationID: replacement.ID,
				OldImpactScore:      scoreOf(rec),
				NewImpactScore:      scoreOf(replacement),
			})
			newIDs = append(newIDs, replacement.ID)
		}

		still, err := tx.ListByScanAndStates(ctx, poolScanID, []string{domain.StateActive})
		if err != nil {
			return fmt.Errorf("list surviving active recommendations: %w", err)
		}
		activeIDs := make([]uint, 0, len(still))
		for _, rec := range still {
			activeIDs = append(activeIDs, rec.ID)
		}

		next := &domain.RefreshCycle{
			ContextID:        rctx.ID,
			ScanID:           poolScanID,
			CycleNumber:      newBatch,
			StartDate:        now,
			NextCycleDate:    now.Add(m.window),
			ActiveRecIDs:     activeIDs,
			ImplementedCount: implemented,
			SkippedCount:     skipped,
			ReplacedCount:    len(newIDs),
		}
		if err := tx.CreateCycle(ctx, next); err != nil {
			return fmt.Errorf("create cycle: %w", err)
		}
		for _, rep := range replacements {
			rep.CycleID = next.ID
			if err := tx.SaveReplacement(ctx, rep); err != nil {
				return fmt.Errorf("save replacement: %w", err)
			}
		}

		result = ProcessResult{
			ReplacedCount:        len(newIDs),
			NextCycleDate:        next.NextCycleDate,
			NewRecommendationIDs: newIDs,
			CycleNumber:          next.CycleNumber,
		}
		return nil
	})
	if err != nil {
		return ProcessResult{}, err
	}

	logger.Info("refresh_cycle_processed",
		"account_id", accountID,
		"scan_id", scanID,
		"cycle", result.CycleNumber,
		"replaced", result.ReplacedCount,
	)

	return result, nil
}

// rankedLocked returns the scan's locked candidate pool ordered by impact
// score descending, computing any missing scores through the impact
// scorer first. Scoring uses the account's current mode so replacement
// ordering matches what the account is served.
func (m *Manager) rankedLocked(ctx context.Context, repo Repository, accountID, scanID uint) ([]domain.Recommendation, error) {
	locked, err := repo.ListByScanAndStates(ctx, scanID, []string{domain.StateLocked})
	if err != nil {
		return nil, fmt.Errorf("list locked recommendations: %w", err)
	}

	var missing []int
	for i, rec := range locked {
		if rec.ImpactScore == nil {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		scan, err := m.scans.GetByID(ctx, scanID)
		if err != nil || scan == nil {
			return nil, fmt.Errorf("load scan %d for scoring: %w", scanID, err)
		}
		profile, err := m.accounts.GetProfile(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("load account profile: %w", err)
		}
		currentMode, err := m.modes.CurrentMode(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("load account mode: %w", err)
		}
		for _, i := range missing {
			score := impact.Score(locked[i], scan.PillarScores, profile.Industry, currentMode)
			if err := repo.SetImpactScore(ctx, locked[i].ID, score); err != nil {
				return nil, fmt.Errorf("set impact score: %w", err)
			}
			locked[i].ImpactScore = &score
		}
	}

	sortByImpactDesc(locked)
	return locked, nil
}

func scoreOf(rec domain.Recommendation) float64 {
	if rec.ImpactScore == nil {
		return 0
	}
	return *rec.ImpactScore
}

func sortByImpactDesc(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return scoreOf(recs[i]) > scoreOf(recs[j])
	})
}
