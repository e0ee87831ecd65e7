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

// ScheduleRepository provides data access for the job schedule configuration.
type ScheduleRepository interface {
	// GetFirst returns the authoritative schedule row (the system always
	// reads the first). Returns apperrors.ErrScheduleNotConfigured when no
	// row exists.
	GetFirst(ctx context.Context) (*models.JobSchedule, error)
	GetByID(ctx context.Context, id int) (*models.JobSchedule, error)
	Update(ctx context.Context, schedule *models.JobSchedule) error
}

type scheduleRepository struct {
	db *database.DB
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(db *database.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

var _ ScheduleRepository = (*scheduleRepository)(nil)

func (r *scheduleRepository) GetFirst(ctx context.Context) (*models.JobSchedule, error) {
	query := `
		SELECT id, job_schedule, time, max_record, ai_iqr, ai_temp, created_at, updated_at
		FROM job_schedule
		WHERE deleted_at IS NULL
		ORDER BY id
		LIMIT 1`

	schedule, err := scanJobSchedule(r.db.QueryRow(ctx, query))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrScheduleNotConfigured
		}
		return nil, err
	}
	return schedule, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int) (*models.JobSchedule, error) {
	query := `
		SELECT id, job_schedule, time, max_record, ai_iqr, ai_temp, created_at, updated_at
		FROM job_schedule
		WHERE id = $1 AND deleted_at IS NULL`

	schedule, err := scanJobSchedule(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return schedule, nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *models.JobSchedule) error {
	query := `
		UPDATE job_schedule
		SET job_schedule = $2, time = $3, max_record = $4, ai_iqr = $5, ai_temp = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		schedule.ID,
		schedule.JobSchedule,
		schedule.Time,
		schedule.MaxRecord,
		schedule.AIIQR,
		schedule.AITemp,
		time.Now(),
	).Scan(&schedule.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update job schedule: %w", err)
	}

	return nil
}

func scanJobSchedule(row pgx.Row) (*models.JobSchedule, error) {
	var s models.JobSchedule
	err := row.Scan(
		&s.ID,
		&s.JobSchedule,
		&s.Time,
		&s.MaxRecord,
		&s.AIIQR,
		&s.AITemp,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan job schedule: %w", err)
	}
	return &s, nil
}
