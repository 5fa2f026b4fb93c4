package detection

import (
	"context"
	"fmt"
	"time"

	"aiVisibility/business/pillar"
	"aiVisibility/domain"
	"aiVisibility/pkg/logger"
)

type ScanRepository interface {
	GetByID(ctx context.Context, id uint) (*domain.Scan, error)
	// GetPreviousCompleted returns the latest completed non-competitor scan
	// for the same account and domain strictly before the given time, or
	// nil when none exists.
	GetPreviousCompleted(ctx context.Context, accountID uint, domainName string, before time.Time) (*domain.Scan, error)
}

type RecommendationRepository interface {
	ListByScanAndState(ctx context.Context, scanID uint, state string) ([]domain.Recommendation, error)
	ListSkippedSince(ctx context.Context, scanID uint, since time.Time) ([]domain.Recommendation, error)
	MarkCompleted(ctx context.Context, id uint, at time.Time) error
	SetProgress(ctx context.Context, id uint, progress float64) error
}

type DetectionRepository interface {
	SaveAll(ctx context.Context, detections []domain.ImplementationDetection) error
}

type Detector struct {
	scans ScanRepository
	recs  RecommendationRepository
	dets  DetectionRepository
	cfg   Config
}

func NewDetector(scans ScanRepository, recs RecommendationRepository, dets DetectionRepository, cfg Config) *Detector {
	return &Detector{scans: scans, recs: recs, dets: dets, cfg: cfg}
}

// Detect compares the current scan with the immediately preceding one for
// the same account+domain and infers which still-open recommendations were
// implemented without being reported. Returns the persisted detections;
// empty when no prior scan exists.
func (d *Detector) Detect(ctx context.Context, accountID, currentScanID uint) ([]domain.ImplementationDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	current, err := d.scans.GetByID(ctx, currentScanID)
	if err != nil {
		return nil, fmt.Errorf("load current scan: %w", err)
	}
	if current == nil || current.CompletedAt == nil {
		return nil, fmt.Errorf("scan %d is not completed", currentScanID)
	}

	previous, err := d.scans.GetPreviousCompleted(ctx, accountID, current.Domain, *current.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("load previous scan: %w", err)
	}
	if previous == nil {
		return nil, nil
	}

	var detections []domain.ImplementationDetection

	active, err := d.recs.ListByScanAndState(ctx, previous.ID, domain.StateActive)
	if err != nil {
		return nil, fmt.Errorf("list active recommendations: %w", err)
	}
	for _, rec := range active {
		det, ok := d.evaluate(rec, previous, current, d.cfg.MinConfidence)
		if !ok {
			continue
		}
		switch det.DetectionType {
		case domain.DetectionAutoComplete:
			if err := d.recs.MarkCompleted(ctx, rec.ID, time.Now()); err != nil {
				return nil, fmt.Errorf("mark recommendation %d completed: %w", rec.ID, err)
			}
		case domain.DetectionAutoPartial:
			progress := det.ScoreDelta / d.cfg.SignificantDelta
			if progress > 0.9 {
				progress = 0.9
			}
			if err := d.recs.SetProgress(ctx, rec.ID, progress); err != nil {
				return nil, fmt.Errorf("set recommendation %d progress: %w", rec.ID, err)
			}
		}
		detections = append(detections, det)
	}

	// Second pass: recently skipped recommendations may have been done
	// after the fact. Stricter floor, audit only; the unlock state machine
	// never moves sideways from skipped.
	skipped, err := d.recs.ListSkippedSince(ctx, previous.ID, time.Now().Add(-d.cfg.SkippedWindow))
	if err != nil {
		return nil, fmt.Errorf("list skipped recommendations: %w", err)
	}
	for _, rec := range skipped {
		det, ok := d.evaluate(rec, previous, current, d.cfg.SkippedConfidence)
		if !ok {
			continue
		}
		det.DetectionType = domain.DetectionAutoDetected
		detections = append(detections, det)
	}

	if len(detections) == 0 {
		return nil, nil
	}
	if err := d.dets.SaveAll(ctx, detections); err != nil {
		return nil, fmt.Errorf("save detections: %w", err)
	}

	logger.Debug("implementation_detection",
		"account_id", accountID,
		"before_scan", previous.ID,
		"after_scan", current.ID,
		"detections", len(detections),
	)

	return detections, nil
}

// evaluate computes delta, evidence and confidence for one recommendation.
// Returns false when the delta is non-positive or confidence sits below
// the floor.
func (d *Detector) evaluate(rec domain.Recommendation, previous, current *domain.Scan, floor float64) (domain.ImplementationDetection, bool) {
	p := pillar.FromRecommendation(rec.Category, rec.Title)
	delta := pillar.ScoreOf(p, current.PillarScores) - pillar.ScoreOf(p, previous.PillarScores)
	if delta <= 0 {
		return domain.ImplementationDetection{}, false
	}

	evidence := gatherEvidence(p, previous.Signals.Data(), current.Signals.Data())
	confidence := d.confidence(delta, len(evidence))
	if confidence < floor {
		return domain.ImplementationDetection{}, false
	}

	detType := domain.DetectionAutoDetected
	if len(evidence) > 0 {
		switch {
		case delta >= d.cfg.SignificantDelta:
			detType = domain.DetectionAutoComplete
		case delta >= d.cfg.MinorDelta:
			detType = domain.DetectionAutoPartial
		}
	}

	return domain.ImplementationDetection{
		RecommendationID: rec.ID,
		BeforeScanID:     previous.ID,
		AfterScanID:      current.ID,
		Pillar:           string(p),
		ScoreDelta:       delta,
		ConfidenceScore:  confidence,
		DetectionType:    detType,
		Evidence:         evidence,
	}, true
}

// confidence = clamp(0.6*deltaBucket + 0.4*evidenceCredit, 0, 100).
// Full credit above the significant threshold, partial above minor,
// linear-scaled below.
func (d *Detector) confidence(delta float64, evidenceCount int) float64 {
	var deltaComponent float64
	switch {
	case delta >= d.cfg.SignificantDelta:
		deltaComponent = deltaFullCredit
	case delta >= d.cfg.MinorDelta:
		deltaComponent = deltaPartialCredit
	default:
		deltaComponent = delta / d.cfg.MinorDelta * deltaPartialCredit
	}

	evidenceComponent := float64(evidenceCount) * perEvidenceCredit
	if evidenceComponent > evidenceCreditCap {
		evidenceComponent = evidenceCreditCap
	}

	c := deltaWeight*deltaComponent + evidenceWeight*evidenceComponent
	if c < 0 {
		c = 0
	}
	if c > 100 {
		c = 100
	}
	return c
}
