package models

import "time"

// DataSource is one marketplace URL the estimator may cite as a reference
// for current listings. Only rows with Status true reach the prompt.
type DataSource struct {
	ID              int       `json:"id"`
	MarketplaceName string    `json:"marketplace_name"`
	Address         string    `json:"address"`
	Status          bool      `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
