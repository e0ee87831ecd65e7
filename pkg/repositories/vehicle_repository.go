package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/database"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
)

// VehicleListOptions controls pagination, sorting, and search for List.
type VehicleListOptions struct {
	Page   int
	Limit  int
	SortBy string
	Order  string // "asc" or "desc"
	Search string
}

// VehicleRepository provides data access for vehicle price-check records.
type VehicleRepository interface {
	// SelectStaleBatch returns up to limit vehicles needing a price refresh,
	// oldest first. An empty slice is a normal no-op result, not an error.
	SelectStaleBatch(ctx context.Context, limit int) ([]*models.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, opts VehicleListOptions) ([]*models.Vehicle, int, error)
	// UpdatePriceFields writes the estimate results and increments hit_count
	// atomically in a single statement.
	UpdatePriceFields(ctx context.Context, id uuid.UUID, update models.PriceUpdate) error
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error)
	CountPending(ctx context.Context, start, end time.Time) (int, error)
	CountProcessed(ctx context.Context, start, end time.Time) (int, error)
}

type vehicleRepository struct {
	db *database.DB
}

// NewVehicleRepository creates a new VehicleRepository.
func NewVehicleRepository(db *database.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

var _ VehicleRepository = (*vehicleRepository)(nil)

const vehicleColumns = `id, name, year, city, province, transmission, fuel,
	hit_count, ai_price_low, ai_price_high, ai_price_history,
	ai_price_history_date, checked_date, created_at, updated_at`

// vehicleSortColumns whitelists the columns List may sort or search on.
var vehicleSortColumns = map[string]bool{
	"name":          true,
	"year":          true,
	"city":          true,
	"province":      true,
	"ai_price_low":  true,
	"ai_price_high": true,
	"checked_date":  true,
	"created_at":    true,
}

func (r *vehicleRepository) SelectStaleBatch(ctx context.Context, limit int) ([]*models.Vehicle, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM vehicles
		WHERE (hit_count IS NULL OR hit_count < $1)
		  AND (ai_price_low IS NULL OR ai_price_low = 0
		       OR ai_price_high IS NULL OR ai_price_high = 0)
		ORDER BY created_at ASC
		LIMIT $2`, vehicleColumns)

	rows, err := r.db.Query(ctx, query, models.MaxHitCount, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale vehicles: %w", err)
	}
	defer rows.Close()

	return collectVehicles(rows)
}

func (r *vehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = $1`, vehicleColumns)

	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

func (r *vehicleRepository) List(ctx context.Context, opts VehicleListOptions) ([]*models.Vehicle, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}

	sortBy := "checked_date"
	if vehicleSortColumns[opts.SortBy] {
		sortBy = opts.SortBy
	}
	order := "DESC"
	if strings.EqualFold(opts.Order, "asc") {
		order = "ASC"
	}

	where := ""
	args := []any{}
	if opts.Search != "" {
		where = `
		WHERE name ILIKE $1 OR transmission ILIKE $1 OR city ILIKE $1
		   OR province ILIKE $1 OR CAST(year AS TEXT) LIKE $1`
		args = append(args, "%"+opts.Search+"%")
	}

	countQuery := "SELECT COUNT(*) FROM vehicles" + where
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM vehicles%s ORDER BY %s %s NULLS LAST LIMIT $%d OFFSET $%d`,
		vehicleColumns, where, sortBy, order, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles, err := collectVehicles(rows)
	if err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (r *vehicleRepository) UpdatePriceFields(ctx context.Context, id uuid.UUID, update models.PriceUpdate) error {
	// hit_count increments inside the statement so concurrent manual and
	// scheduled updates cannot lose each other's increment.
	query := `
		UPDATE vehicles
		SET ai_price_low = $2,
		    ai_price_high = $3,
		    ai_price_history = $4,
		    ai_price_history_date = $5,
		    hit_count = CASE WHEN hit_count IS NULL THEN 1 ELSE hit_count + 1 END,
		    checked_date = $6,
		    updated_at = $7
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		id,
		update.PriceLow,
		update.PriceHigh,
		update.HistoryPrice,
		update.HistoryDate,
		update.CheckedDate,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle price fields: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *vehicleRepository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM vehicles WHERE created_at BETWEEN $1 AND $2`

	var count int
	if err := r.db.QueryRow(ctx, query, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}
	return count, nil
}

func (r *vehicleRepository) CountPending(ctx context.Context, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM vehicles
		WHERE (hit_count IS NULL OR hit_count = 0)
		  AND created_at BETWEEN $1 AND $2`

	var count int
	if err := r.db.QueryRow(ctx, query, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending vehicles: %w", err)
	}
	return count, nil
}

func (r *vehicleRepository) CountProcessed(ctx context.Context, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM vehicles
		WHERE hit_count > 0
		  AND checked_date BETWEEN $1 AND $2`

	var count int
	if err := r.db.QueryRow(ctx, query, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count processed vehicles: %w", err)
	}
	return count, nil
}

func collectVehicles(rows pgx.Rows) ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vehicles: %w", err)
	}
	return vehicles, nil
}

func scanVehicle(row pgx.Row) (*models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Year,
		&v.City,
		&v.Province,
		&v.Transmission,
		&v.Fuel,
		&v.HitCount,
		&v.AIPriceLow,
		&v.AIPriceHigh,
		&v.AIPriceHistory,
		&v.AIPriceHistoryDate,
		&v.CheckedDate,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan vehicle: %w", err)
	}
	return &v, nil
}
