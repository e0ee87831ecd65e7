package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/database"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
)

// DataSourceRepository provides data access for marketplace reference URLs.
type DataSourceRepository interface {
	// ListActive returns the addresses of every source with status true,
	// in insertion order. These become the estimator's reference links.
	ListActive(ctx context.Context) ([]*models.DataSource, error)
	List(ctx context.Context) ([]*models.DataSource, error)
	GetByID(ctx context.Context, id int) (*models.DataSource, error)
	Create(ctx context.Context, source *models.DataSource) error
	Update(ctx context.Context, source *models.DataSource) error
	Delete(ctx context.Context, id int) error
}

type dataSourceRepository struct {
	db *database.DB
}

// NewDataSourceRepository creates a new DataSourceRepository.
func NewDataSourceRepository(db *database.DB) DataSourceRepository {
	return &dataSourceRepository{db: db}
}

var _ DataSourceRepository = (*dataSourceRepository)(nil)

const dataSourceColumns = `id, marketplace_name, address, status, created_at, updated_at`

func (r *dataSourceRepository) ListActive(ctx context.Context) ([]*models.DataSource, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM data_sources
		WHERE status = TRUE AND deleted_at IS NULL
		ORDER BY id`, dataSourceColumns)

	return r.queryDataSources(ctx, query)
}

func (r *dataSourceRepository) List(ctx context.Context) ([]*models.DataSource, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM data_sources
		WHERE deleted_at IS NULL
		ORDER BY id`, dataSourceColumns)

	return r.queryDataSources(ctx, query)
}

func (r *dataSourceRepository) GetByID(ctx context.Context, id int) (*models.DataSource, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM data_sources
		WHERE id = $1 AND deleted_at IS NULL`, dataSourceColumns)

	source, err := scanDataSource(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return source, nil
}

func (r *dataSourceRepository) Create(ctx context.Context, source *models.DataSource) error {
	now := time.Now()

	query := `
		INSERT INTO data_sources (marketplace_name, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		source.MarketplaceName,
		source.Address,
		source.Status,
		now,
		now,
	).Scan(&source.ID, &source.CreatedAt, &source.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}

	return nil
}

func (r *dataSourceRepository) Update(ctx context.Context, source *models.DataSource) error {
	query := `
		UPDATE data_sources
		SET marketplace_name = $2, address = $3, status = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		source.ID,
		source.MarketplaceName,
		source.Address,
		source.Status,
		time.Now(),
	).Scan(&source.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update data source: %w", err)
	}

	return nil
}

func (r *dataSourceRepository) Delete(ctx context.Context, id int) error {
	// Soft delete, matching the source system's paranoid tables.
	query := `UPDATE data_sources SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete data source: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *dataSourceRepository) queryDataSources(ctx context.Context, query string) ([]*models.DataSource, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query data sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.DataSource
	for rows.Next() {
		source, err := scanDataSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data sources: %w", err)
	}

	return sources, nil
}

func scanDataSource(row pgx.Row) (*models.DataSource, error) {
	var s models.DataSource
	err := row.Scan(
		&s.ID,
		&s.MarketplaceName,
		&s.Address,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan data source: %w", err)
	}
	return &s, nil
}
