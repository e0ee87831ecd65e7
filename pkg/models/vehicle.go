package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxHitCount is the number of AI price checks after which a vehicle is no
// longer considered for the scheduled refresh.
const MaxHitCount = 2

// Vehicle represents one vehicle awaiting or carrying an AI price range.
// Stored in the vehicles table.
type Vehicle struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Year               int        `json:"year"`
	City               string     `json:"city"`
	Province           string     `json:"province"`
	Transmission       string     `json:"transmission"`
	Fuel               string     `json:"fuel"`
	HitCount           *int       `json:"hit_count,omitempty"`
	AIPriceLow         *int64     `json:"ai_price_low,omitempty"`
	AIPriceHigh        *int64     `json:"ai_price_high,omitempty"`
	AIPriceHistory     *int64     `json:"ai_price_history,omitempty"`
	AIPriceHistoryDate *string    `json:"ai_price_history_date,omitempty"`
	CheckedDate        *time.Time `json:"checked_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NeedsRefresh reports whether the record still qualifies for a scheduled
// price refresh: fewer than MaxHitCount checks and at least one missing or
// zero price bound. Mirrors the SQL filter used by SelectStaleBatch.
func (v *Vehicle) NeedsRefresh() bool {
	if v.HitCount != nil && *v.HitCount >= MaxHitCount {
		return false
	}
	lowMissing := v.AIPriceLow == nil || *v.AIPriceLow == 0
	highMissing := v.AIPriceHigh == nil || *v.AIPriceHigh == 0
	return lowMissing || highMissing
}

// PriceUpdate carries the fields written back to a vehicle after an estimate.
type PriceUpdate struct {
	PriceLow     int64
	PriceHigh    int64
	HistoryPrice *int64
	HistoryDate  *string
	CheckedDate  time.Time
}
