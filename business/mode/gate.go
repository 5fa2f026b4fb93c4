package mode

import (
	"context"
	"fmt"
	"time"

	"aiVisibility/domain"
)

// Hysteresis thresholds on the 0-1000 total score scale. The asymmetric
// band keeps scores oscillating near a single cutoff from flipping the
// mode on every scan: only a move 50 points past the exit boundary forces
// a drop back to foundational recommendations.
const (
	DefaultEnterThreshold = 850.0
	DefaultExitThreshold  = 800.0
)

// Transition reasons recorded in the history log.
const (
	ReasonFirstScan    = "first_scan"
	ReasonEnteredElite = "score_reached_enter_threshold"
	ReasonDroppedBelow = "score_dropped_below_exit_threshold"
)

type Repository interface {
	// GetState returns nil, nil when the account has no mode state yet.
	GetState(ctx context.Context, accountID uint) (*domain.ModeState, error)
	SaveState(ctx context.Context, state *domain.ModeState) error
	AppendTransition(ctx context.Context, tr domain.ModeTransition) error
}

type Gate struct {
	repo  Repository
	enter float64
	exit  float64
}

func NewGate(repo Repository) *Gate {
	return &Gate{repo: repo, enter: DefaultEnterThreshold, exit: DefaultExitThreshold}
}

// NewGateWithThresholds exists for config overrides; enter must sit above exit.
func NewGateWithThresholds(repo Repository, enter, exit float64) *Gate {
	if enter <= exit {
		enter, exit = DefaultEnterThreshold, DefaultExitThreshold
	}
	return &Gate{repo: repo, enter: enter, exit: exit}
}

// Result reports the outcome of one score evaluation.
type Result struct {
	Mode         string
	PreviousMode string
	Transitioned bool
	InBufferZone bool
	Reason       string
}

// Evaluate feeds one completed scan's total score through the hysteresis
// state machine, persisting the updated state and appending a transition
// record when the mode changes. Non-transitioning updates still refresh
// the current score and high-water mark.
func (g *Gate) Evaluate(ctx context.Context, accountID, scanID uint, score float64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context error: %w", err)
	}

	state, err := g.repo.GetState(ctx, accountID)
	if err != nil {
		return Result{}, fmt.Errorf("load mode state: %w", err)
	}

	now := time.Now()

	if state == nil {
		res := g.firstScan(score)
		state = &domain.ModeState{
			AccountID:            accountID,
			CurrentMode:          res.Mode,
			CurrentScore:         score,
			ModeSince:            now,
			InBufferZone:         false,
			HighestScoreAchieved: score,
		}
		if err := g.repo.SaveState(ctx, state); err != nil {
			return Result{}, fmt.Errorf("save mode state: %w", err)
		}
		if err := g.repo.AppendTransition(ctx, domain.ModeTransition{
			AccountID: accountID,
			FromMode:  "",
			ToMode:    res.Mode,
			Score:     score,
			Reason:    ReasonFirstScan,
			ScanID:    scanID,
		}); err != nil {
			return Result{}, fmt.Errorf("append mode transition: %w", err)
		}
		return res, nil
	}

	res := g.step(state.CurrentMode, score)

	state.CurrentScore = score
	state.InBufferZone = res.InBufferZone
	if score > state.HighestScoreAchieved {
		state.HighestScoreAchieved = score
	}
	if res.Transitioned {
		state.CurrentMode = res.Mode
		state.ModeSince = now
	}

	if err := g.repo.SaveState(ctx, state); err != nil {
		return Result{}, fmt.Errorf("save mode state: %w", err)
	}

	if res.Transitioned {
		if err := g.repo.AppendTransition(ctx, domain.ModeTransition{
			AccountID: accountID,
			FromMode:  res.PreviousMode,
			ToMode:    res.Mode,
			Score:     score,
			Reason:    res.Reason,
			ScanID:    scanID,
		}); err != nil {
			return Result{}, fmt.Errorf("append mode transition: %w", err)
		}
	}

	return res, nil
}

func (g *Gate) firstScan(score float64) Result {
	mode := domain.ModeOptimization
	if score >= g.enter {
		mode = domain.ModeEliteMaintenance
	}
	return Result{
		Mode:         mode,
		Transitioned: true,
		Reason:       ReasonFirstScan,
	}
}

// step applies the transition rules without side effects.
func (g *Gate) step(current string, score float64) Result {
	switch current {
	case domain.ModeEliteMaintenance:
		if score < g.exit {
			return Result{
				Mode:         domain.ModeOptimization,
				PreviousMode: current,
				Transitioned: true,
				Reason:       ReasonDroppedBelow,
			}
		}
		// [exit, enter) is the buffer zone: stay put, flag it.
		return Result{
			Mode:         domain.ModeEliteMaintenance,
			PreviousMode: current,
			InBufferZone: score < g.enter,
		}
	default: // optimization, including unknown legacy values
		if score >= g.enter {
			return Result{
				Mode:         domain.ModeEliteMaintenance,
				PreviousMode: current,
				Transitioned: true,
				Reason:       ReasonEnteredElite,
			}
		}
		return Result{Mode: domain.ModeOptimization, PreviousMode: current}
	}
}

// CurrentMode returns the stored mode, defaulting to optimization for
// accounts that have never completed a scan.
func (g *Gate) CurrentMode(ctx context.Context, accountID uint) (string, error) {
	state, err := g.repo.GetState(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("load mode state: %w", err)
	}
	if state == nil {
		return domain.ModeOptimization, nil
	}
	return state.CurrentMode, nil
}
