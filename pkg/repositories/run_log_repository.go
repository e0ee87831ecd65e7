package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/lelangtech/pricewatch-engine/pkg/database"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
)

// RunLogRepository provides append and range-read access to run audit rows.
type RunLogRepository interface {
	Insert(ctx context.Context, log *models.RunLog) error
	ListBetween(ctx context.Context, start, end time.Time) ([]*models.RunLog, error)
}

type runLogRepository struct {
	db *database.DB
}

// NewRunLogRepository creates a new RunLogRepository.
func NewRunLogRepository(db *database.DB) RunLogRepository {
	return &runLogRepository{db: db}
}

var _ RunLogRepository = (*runLogRepository)(nil)

func (r *runLogRepository) Insert(ctx context.Context, log *models.RunLog) error {
	now := time.Now()

	query := `
		INSERT INTO run_logs (type, date, total_data, total_token, average_token, duration, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		log.Type,
		log.Date,
		log.TotalData,
		log.TotalToken,
		log.AverageToken,
		log.Duration,
		log.UserID,
		now,
		now,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run log: %w", err)
	}

	return nil
}

func (r *runLogRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*models.RunLog, error) {
	query := `
		SELECT id, type, date, total_data, total_token, average_token, duration, user_id, created_at, updated_at
		FROM run_logs
		WHERE created_at BETWEEN $1 AND $2
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query run logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.RunLog
	for rows.Next() {
		var l models.RunLog
		err := rows.Scan(
			&l.ID,
			&l.Type,
			&l.Date,
			&l.TotalData,
			&l.TotalToken,
			&l.AverageToken,
			&l.Duration,
			&l.UserID,
			&l.CreatedAt,
			&l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run log: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run logs: %w", err)
	}

	return logs, nil
}
