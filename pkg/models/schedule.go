package models

import (
	"fmt"
	"time"
)

// JobSchedule is the single authoritative schedule row for the price-refresh
// job. Time is stored as a full datetime but only its wall-clock
// hour/minute/second drive the scheduler.
type JobSchedule struct {
	ID          int       `json:"id"`
	JobSchedule string    `json:"job_schedule"` // Human label, e.g. "Daily"
	Time        time.Time `json:"time"`
	MaxRecord   int       `json:"max_record"`
	AIIQR       float64   `json:"ai_iqr"`
	AITemp      float64   `json:"ai_temp"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TimeOfDay is the wall-clock firing time derived from a JobSchedule row.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// TimeOfDay extracts the firing time in the given location. Two schedule
// rows with the same hour/minute/second produce equal TimeOfDay values
// regardless of the date stored alongside them.
func (s *JobSchedule) TimeOfDay(loc *time.Location) TimeOfDay {
	local := s.Time.In(loc)
	return TimeOfDay{
		Hour:   local.Hour(),
		Minute: local.Minute(),
		Second: local.Second(),
	}
}

// CronSpec renders the time of day as a seconds-resolution cron expression.
func (t TimeOfDay) CronSpec() string {
	return fmt.Sprintf("%d %d %d * * *", t.Second, t.Minute, t.Hour)
}

// String renders the time of day as HH:MM:SS for logs.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
