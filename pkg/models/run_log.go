package models

import "time"

// Trigger types for run log rows.
const (
	RunTypeManual    = "Manual"
	RunTypeScheduled = "Scheduled"
)

// RunLog is one audit row per price-refresh execution, whether fired by the
// daily timer or by a manual single-record prediction.
type RunLog struct {
	ID           int       `json:"id"`
	Type         string    `json:"type"`
	Date         time.Time `json:"date"`
	TotalData    int       `json:"total_data"`
	TotalToken   int       `json:"total_token"`
	AverageToken float64   `json:"average_token"`
	Duration     int       `json:"duration"` // Seconds
	UserID       *int      `json:"user,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
