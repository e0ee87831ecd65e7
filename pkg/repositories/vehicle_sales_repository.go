package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lelangtech/pricewatch-engine/pkg/database"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
)

// VehicleSalesRepository provides read access to historical sales.
type VehicleSalesRepository interface {
	// QueryMatches returns graded sales whose name, year, and city contain
	// the given fragments. Ranking happens in memory (see the historical
	// price service), so no ordering is imposed here.
	QueryMatches(ctx context.Context, name, year, city string) ([]*models.VehicleSale, error)
}

type vehicleSalesRepository struct {
	db *database.DB
}

// NewVehicleSalesRepository creates a new VehicleSalesRepository.
func NewVehicleSalesRepository(db *database.DB) VehicleSalesRepository {
	return &vehicleSalesRepository{db: db}
}

var _ VehicleSalesRepository = (*vehicleSalesRepository)(nil)

func (r *vehicleSalesRepository) QueryMatches(ctx context.Context, name, year, city string) ([]*models.VehicleSale, error) {
	query := `
		SELECT id, name, year, city, province, grade, selling_price, sale_date, created_at
		FROM vehicle_sales
		WHERE name ILIKE $1
		  AND year LIKE $2
		  AND city ILIKE $3
		  AND grade IS NOT NULL`

	rows, err := r.db.Query(ctx, query,
		"%"+name+"%",
		"%"+year+"%",
		"%"+city+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicle sales: %w", err)
	}
	defer rows.Close()

	var sales []*models.VehicleSale
	for rows.Next() {
		sale, err := scanVehicleSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vehicle sales: %w", err)
	}

	return sales, nil
}

func scanVehicleSale(row pgx.Row) (*models.VehicleSale, error) {
	var s models.VehicleSale
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Year,
		&s.City,
		&s.Province,
		&s.Grade,
		&s.SellingPrice,
		&s.SaleDate,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan vehicle sale: %w", err)
	}
	return &s, nil
}
