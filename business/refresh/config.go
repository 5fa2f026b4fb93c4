package refresh

import (
	"time"

	"aiVisibility/domain"
)

// DefaultWindow is the rotation window. Context expiry for non-agency
// plans is coupled to the same value on purpose: a context should not
// outlive the cadence that rotates its recommendations.
const DefaultWindow = 14 * 24 * time.Hour

// Batch sizes per plan tier: how many recommendations are active at once.
var batchSizes = map[string]int{
	domain.PlanFree:    3,
	domain.PlanStarter: 5,
	domain.PlanPro:     7,
	domain.PlanAgency:  10,
}

const defaultBatchSize = 3

// BatchSize returns the active batch size for a plan tier.
func BatchSize(planTier string) int {
	if k, ok := batchSizes[planTier]; ok {
		return k
	}
	return defaultBatchSize
}

// Archive reason recorded when a rotation retires a recommendation.
const archiveReasonRotation = "refresh_cycle_rotation"
