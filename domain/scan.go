package domain

import (
	"time"

	"gorm.io/datatypes"
)

// NumPillars is the fixed length of every pillar score vector.
// Each entry is on a 0-10 scale; the total score is on a 0-1000 scale.
const NumPillars = 8

// StructuralSignals are the raw extraction signals the content-analysis
// engine attaches to a completed scan. The detector diffs them between
// two scans to corroborate pillar score movement.
type StructuralSignals struct {
	SchemaTypes      []string `json:"schema_types"`
	FAQBlockCount    int      `json:"faq_block_count"`
	FreshnessMarkers []string `json:"freshness_markers"`
	AltTextCoverage  float64  `json:"alt_text_coverage"`
}

type Scan struct {
	ID                uint                                   `gorm:"primaryKey" json:"id"`
	AccountID         uint                                   `gorm:"column:account_id;not null;index" json:"account_id"`
	Domain            string                                 `gorm:"column:domain;not null" json:"domain"`
	PageSet           datatypes.JSONSlice[string]            `gorm:"column:page_set" json:"page_set"`
	PillarScores      datatypes.JSONSlice[float64]           `gorm:"column:pillar_scores" json:"pillar_scores"`
	TotalScore        float64                                `gorm:"column:total_score" json:"total_score"`
	Signals           datatypes.JSONType[StructuralSignals]  `gorm:"column:signals" json:"signals"`
	IsCompetitorProbe bool                                   `gorm:"column:is_competitor_probe;default:false" json:"is_competitor_probe"`
	CompletedAt       *time.Time                             `gorm:"column:completed_at;index" json:"completed_at"`
	CreatedAt         time.Time                              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Scan) TableName() string {
	return "scans"
}

// ScoreSnapshot records the total score and delta versus the prior scan at
// the moment a scan completes. It is the first (and only fatal) write of the
// completion pipeline: everything downstream reads from it.
type ScoreSnapshot struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountID     uint      `gorm:"column:account_id;not null;index" json:"account_id"`
	ScanID        uint      `gorm:"column:scan_id;not null" json:"scan_id"`
	TotalScore    float64   `gorm:"column:total_score" json:"total_score"`
	PreviousScore float64   `gorm:"column:previous_score" json:"previous_score"`
	Delta         float64   `gorm:"column:delta" json:"delta"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ScoreSnapshot) TableName() string {
	return "score_snapshots"
}
