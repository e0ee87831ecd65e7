package models

import "time"

// DataParameter maps a vehicle table column to the label shown for it in
// search parameters. Only rows with Status true are active.
type DataParameter struct {
	ID          int       `json:"id"`
	Parameter   string    `json:"parameter"`
	TableColumn string    `json:"table_column"`
	Status      bool      `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
