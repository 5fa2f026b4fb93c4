package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Detection types. AutoComplete marks the recommendation completed,
// AutoPartial leaves it active with a progress fraction, AutoDetected is
// persisted for audit only and changes no state.
const (
	DetectionAutoComplete = "auto_complete"
	DetectionAutoPartial  = "auto_partial"
	DetectionAutoDetected = "auto_detected"
)

// ImplementationDetection is an append-only audit record of an inferred
// silent fix: a recommendation whose mapped pillar improved between two
// consecutive scans.
type ImplementationDetection struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	RecommendationID uint                        `gorm:"column:recommendation_id;not null;index" json:"recommendation_id"`
	BeforeScanID     uint                        `gorm:"column:before_scan_id;not null" json:"before_scan_id"`
	AfterScanID      uint                        `gorm:"column:after_scan_id;not null" json:"after_scan_id"`
	Pillar           string                      `gorm:"column:pillar" json:"pillar"`
	ScoreDelta       float64                     `gorm:"column:score_delta" json:"score_delta"`
	ConfidenceScore  float64                     `gorm:"column:confidence_score" json:"confidence_score"`
	DetectionType    string                      `gorm:"column:detection_type;not null" json:"detection_type"`
	Evidence         datatypes.JSONSlice[string] `gorm:"column:evidence" json:"evidence"`
	CreatedAt        time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ImplementationDetection) TableName() string {
	return "implementation_detections"
}
