package domain

import (
	"time"

	"gorm.io/datatypes"
)

// RecommendationContext groups repeated scans of the same account, domain
// and page set under one stable identity so they share a recommendation
// set. At most one active context exists per (account_id, context_key);
// the unique index plus upsert semantics in the repository enforce it.
type RecommendationContext struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountID     uint      `gorm:"column:account_id;not null;uniqueIndex:idx_account_context_key" json:"account_id"`
	ContextKey    string    `gorm:"column:context_key;not null;uniqueIndex:idx_account_context_key" json:"context_key"`
	PrimaryScanID uint      `gorm:"column:primary_scan_id;not null" json:"primary_scan_id"`
	IsActive      bool      `gorm:"column:is_active;default:true" json:"is_active"`
	ExpiresAt     time.Time `gorm:"column:expires_at" json:"expires_at"`
	InitialScore  float64   `gorm:"column:initial_score" json:"initial_score"`
	LatestScore   float64   `gorm:"column:latest_score" json:"latest_score"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (RecommendationContext) TableName() string {
	return "recommendation_contexts"
}

// RefreshCycle is one time-boxed rotation window for a context's active
// recommendation set. CycleNumber is monotonic per context and
// NextCycleDate only ever advances.
type RefreshCycle struct {
	ID               uint                      `gorm:"primaryKey" json:"id"`
	ContextID        uint                      `gorm:"column:context_id;not null;index" json:"context_id"`
	ScanID           uint                      `gorm:"column:scan_id;not null" json:"scan_id"`
	CycleNumber      int                       `gorm:"column:cycle_number;not null" json:"cycle_number"`
	StartDate        time.Time                 `gorm:"column:start_date" json:"start_date"`
	NextCycleDate    time.Time                 `gorm:"column:next_cycle_date" json:"next_cycle_date"`
	ActiveRecIDs     datatypes.JSONSlice[uint] `gorm:"column:active_rec_ids" json:"active_rec_ids"`
	ImplementedCount int                       `gorm:"column:implemented_count;default:0" json:"implemented_count"`
	SkippedCount     int                       `gorm:"column:skipped_count;default:0" json:"skipped_count"`
	ReplacedCount    int                       `gorm:"column:replaced_count;default:0" json:"replaced_count"`
	CreatedAt        time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (RefreshCycle) TableName() string {
	return "refresh_cycles"
}
