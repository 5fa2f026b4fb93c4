package domain

import (
	"time"
)

// UnlockState values. The state machine only moves forward:
// locked -> active -> {completed, skipped} -> archived.
const (
	StateLocked    = "locked"
	StateActive    = "active"
	StateCompleted = "completed"
	StateSkipped   = "skipped"
	StateArchived  = "archived"
)

// forwardEdges enumerates the legal transitions of the unlock state
// machine. Nothing skips a state: locked recommendations must pass
// through active before they can be completed or skipped, and completed
// and skipped are siblings with no edge between them.
var forwardEdges = map[string]map[string]bool{
	StateLocked:    {StateActive: true},
	StateActive:    {StateCompleted: true, StateSkipped: true},
	StateCompleted: {StateArchived: true},
	StateSkipped:   {StateArchived: true},
}

// CanAdvance reports whether moving from one unlock state to another is a
// legal forward transition.
func CanAdvance(from, to string) bool {
	return forwardEdges[from][to]
}

type Recommendation struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ScanID       uint       `gorm:"column:scan_id;not null;index" json:"scan_id"`
	ContextID    *uint      `gorm:"column:context_id;index" json:"context_id"`
	Category     string     `gorm:"column:category;not null" json:"category"`
	Title        string     `gorm:"column:title;type:text" json:"title"`
	PriorityText string     `gorm:"column:priority_text;type:text" json:"priority_text"`
	Difficulty   string     `gorm:"column:difficulty" json:"difficulty"`
	ImpactScore  *float64   `gorm:"column:impact_score" json:"impact_score"`
	UnlockState  string     `gorm:"column:unlock_state;not null;default:'locked';index" json:"unlock_state"`
	BatchNumber  int        `gorm:"column:batch_number;default:0" json:"batch_number"`
	Progress     float64    `gorm:"column:progress;default:0" json:"progress"`
	UnlockedAt   *time.Time `gorm:"column:unlocked_at" json:"unlocked_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at"`
	SkippedAt    *time.Time `gorm:"column:skipped_at" json:"skipped_at"`
	ArchivedAt   *time.Time `gorm:"column:archived_at" json:"archived_at"`
	ArchiveReason string    `gorm:"column:archive_reason" json:"archive_reason,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}

// RecommendationReplacement is the audit record written when a refresh cycle
// swaps an archived recommendation for a newly activated one.
type RecommendationReplacement struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CycleID             uint      `gorm:"column:cycle_id;not null;index" json:"cycle_id"`
	OldRecommendationID uint      `gorm:"column:old_recommendation_id;not null" json:"old_recommendation_id"`
	NewRecommendationID uint      `gorm:"column:new_recommendation_id;not null" json:"new_recommendation_id"`
	OldImpactScore      float64   `gorm:"column:old_impact_score" json:"old_impact_score"`
	NewImpactScore      float64   `gorm:"column:new_impact_score" json:"new_impact_score"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RecommendationReplacement) TableName() string {
	return "recommendation_replacements"
}
