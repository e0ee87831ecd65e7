package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleSale represents one historical sale from the auction floor.
// Read-only reference data; the refresh job never mutates it.
type VehicleSale struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Year         string    `json:"year"`
	City         string    `json:"city"`
	Province     string    `json:"province"`
	Grade        *string   `json:"grade,omitempty"`
	SellingPrice string    `json:"selling_price"`
	SaleDate     string    `json:"sale_date"` // DD/MM/YYYY as recorded at the source
	CreatedAt    time.Time `json:"created_at"`
}

// gradeRanks is the fixed total order used to rank comparable sales.
// Lower is better; unknown grades sort last.
var gradeRanks = map[string]int{
	"A":  1,
	"A-": 2,
	"B+": 3,
	"B":  4,
	"B-": 5,
	"C+": 6,
	"C":  7,
	"C-": 8,
}

// gradeRankOther is the rank assigned to grades outside the known scale.
const gradeRankOther = 9

// GradeRank returns the ranking position of a condition grade.
func GradeRank(grade string) int {
	if rank, ok := gradeRanks[grade]; ok {
		return rank
	}
	return gradeRankOther
}

// ParseSaleDate parses the source's DD/MM/YYYY date format.
// Returns the zero time and false when the value does not parse, so callers
// can rank unparseable dates last instead of failing the lookup.
func ParseSaleDate(value string) (time.Time, bool) {
	t, err := time.Parse("02/01/2006", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
