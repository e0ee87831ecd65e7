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

// DataParameterRepository provides data access for dynamic field labels.
type DataParameterRepository interface {
	ListActive(ctx context.Context) ([]*models.DataParameter, error)
	List(ctx context.Context) ([]*models.DataParameter, error)
	GetByID(ctx context.Context, id int) (*models.DataParameter, error)
	Create(ctx context.Context, param *models.DataParameter) error
	Update(ctx context.Context, param *models.DataParameter) error
	Delete(ctx context.Context, id int) error
}

type dataParameterRepository struct {
	db *database.DB
}

// NewDataParameterRepository creates a new DataParameterRepository.
func NewDataParameterRepository(db *database.DB) DataParameterRepository {
	return &dataParameterRepository{db: db}
}

var _ DataParameterRepository = (*dataParameterRepository)(nil)

const dataParameterColumns = `id, parameter, table_column, status, created_at, updated_at`

func (r *dataParameterRepository) ListActive(ctx context.Context) ([]*models.DataParameter, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM data_parameters
		WHERE status = TRUE AND deleted_at IS NULL
		ORDER BY id`, dataParameterColumns)

	return r.queryDataParameters(ctx, query)
}

func (r *dataParameterRepository) List(ctx context.Context) ([]*models.DataParameter, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM data_parameters
		WHERE deleted_at IS NULL
		ORDER BY id`, dataParameterColumns)

	return r.queryDataParameters(ctx, query)
}

func (r *dataParameterRepository) GetByID(ctx context.Context, id int) (*models.DataParameter, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM data_parameters
		WHERE id = $1 AND deleted_at IS NULL`, dataParameterColumns)

	param, err := scanDataParameter(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return param, nil
}

func (r *dataParameterRepository) Create(ctx context.Context, param *models.DataParameter) error {
	now := time.Now()

	query := `
		INSERT INTO data_parameters (parameter, table_column, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		param.Parameter,
		param.TableColumn,
		param.Status,
		now,
		now,
	).Scan(&param.ID, &param.CreatedAt, &param.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create data parameter: %w", err)
	}

	return nil
}

func (r *dataParameterRepository) Update(ctx context.Context, param *models.DataParameter) error {
	query := `
		UPDATE data_parameters
		SET parameter = $2, table_column = $3, status = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		param.ID,
		param.Parameter,
		param.TableColumn,
		param.Status,
		time.Now(),
	).Scan(&param.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update data parameter: %w", err)
	}

	return nil
}

func (r *dataParameterRepository) Delete(ctx context.Context, id int) error {
	query := `UPDATE data_parameters SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete data parameter: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *dataParameterRepository) queryDataParameters(ctx context.Context, query string) ([]*models.DataParameter, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query data parameters: %w", err)
	}
	defer rows.Close()

	var params []*models.DataParameter
	for rows.Next() {
		param, err := scanDataParameter(rows)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data parameters: %w", err)
	}

	return params, nil
}

func scanDataParameter(row pgx.Row) (*models.DataParameter, error) {
	var p models.DataParameter
	err := row.Scan(
		&p.ID,
		&p.Parameter,
		&p.TableColumn,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan data parameter: %w", err)
	}
	return &p, nil
}
