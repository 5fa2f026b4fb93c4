package domain

import "time"

// Operating modes. Optimization serves foundational fixes; elite
// maintenance favors competitive/opportunity recommendations once the
// total score clears the entry threshold.
const (
	ModeOptimization     = "optimization"
	ModeEliteMaintenance = "elite_maintenance"
)

// ModeState is the per-account hysteresis state over the total score.
type ModeState struct {
	AccountID            uint      `gorm:"column:account_id;primaryKey" json:"account_id"`
	CurrentMode          string    `gorm:"column:current_mode;not null" json:"current_mode"`
	CurrentScore         float64   `gorm:"column:current_score" json:"current_score"`
	ModeSince            time.Time `gorm:"column:mode_since" json:"mode_since"`
	InBufferZone         bool      `gorm:"column:in_buffer_zone;default:false" json:"in_buffer_zone"`
	HighestScoreAchieved float64   `gorm:"column:highest_score_achieved" json:"highest_score_achieved"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ModeState) TableName() string {
	return "mode_states"
}

// ModeTransition is an immutable log entry appended on every mode change.
type ModeTransition struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"column:account_id;not null;index" json:"account_id"`
	FromMode  string    `gorm:"column:from_mode" json:"from_mode"`
	ToMode    string    `gorm:"column:to_mode;not null" json:"to_mode"`
	Score     float64   `gorm:"column:score" json:"score"`
	Reason    string    `gorm:"column:reason" json:"reason"`
	ScanID    uint      `gorm:"column:scan_id" json:"scan_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ModeTransition) TableName() string {
	return "mode_transition_history"
}
