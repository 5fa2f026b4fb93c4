package domain

import "time"

// ModeTransitionEvent is the payload handed to the notification
// dispatcher when an account changes operating mode.
type ModeTransitionEvent struct {
	AccountID uint      `json:"account_id"`
	ScanID    uint      `json:"scan_id"`
	FromMode  string    `json:"from_mode"`
	ToMode    string    `json:"to_mode"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// CycleRefreshEvent is the payload handed to the notification dispatcher
// when a refresh cycle rotates part of the active recommendation set.
type CycleRefreshEvent struct {
	AccountID     uint      `json:"account_id"`
	ContextID     uint      `json:"context_id"`
	CycleNumber   int       `json:"cycle_number"`
	ReplacedCount int       `json:"replaced_count"`
	NextCycleDate time.Time `json:"next_cycle_date"`
	At            time.Time `json:"at"`
}
