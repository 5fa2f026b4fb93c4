package detection

import "time"

// Product-tuned detection constants. These have no first-principles
// derivation; treat them as configuration.
const (
	// Pillar delta thresholds on the 0-10 scale.
	defaultSignificantDelta = 2.0
	defaultMinorDelta       = 1.0

	// Confidence composition: delta bucket weighted 60%, evidence 40%.
	deltaWeight    = 0.60
	evidenceWeight = 0.40

	// Delta bucket credits before weighting.
	deltaFullCredit    = 100.0
	deltaPartialCredit = 60.0

	// Each distinct evidence item is worth a fixed amount, capped.
	perEvidenceCredit = 25.0
	evidenceCreditCap = 100.0

	// Detections below the floor are discarded entirely. Skipped
	// recommendations get a second look at a stricter floor.
	defaultMinConfidence     = 40.0
	defaultSkippedConfidence = 65.0

	// Rolling window for the skipped-recommendation recheck.
	defaultSkippedWindow = 30 * 24 * time.Hour
)

// Config carries the tunable thresholds so tests and ops overrides can
// pin them without touching the bucket logic.
type Config struct {
	SignificantDelta  float64
	MinorDelta        float64
	MinConfidence     float64
	SkippedConfidence float64
	SkippedWindow     time.Duration
}

func DefaultConfig() Config {
	return Config{
		SignificantDelta:  defaultSignificantDelta,
		MinorDelta:        defaultMinorDelta,
		MinConfidence:     defaultMinConfidence,
		SkippedConfidence: defaultSkippedConfidence,
		SkippedWindow:     defaultSkippedWindow,
	}
}
