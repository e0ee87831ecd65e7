package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
)

func TestScheduleConfigCurrent(t *testing.T) {
	repo := &mockScheduleRepo{
		schedule: &models.JobSchedule{
			ID:        1,
			Time:      time.Date(2025, 1, 1, 2, 30, 0, 0, time.UTC),
			MaxRecord: 25,
			AIIQR:     1.5,
			AITemp:    0.9,
		},
	}
	svc := NewScheduleConfigService(repo, zap.NewNop())

	schedule, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, schedule.MaxRecord)
	assert.Equal(t, models.TimeOfDay{Hour: 2, Minute: 30}, schedule.TimeOfDay(time.UTC))
}

func TestScheduleConfigNotConfigured(t *testing.T) {
	svc := NewScheduleConfigService(&mockScheduleRepo{}, zap.NewNop())

	_, err := svc.Current(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrScheduleNotConfigured)
}

func TestScheduleConfigUpdate(t *testing.T) {
	repo := &mockScheduleRepo{
		schedule: &models.JobSchedule{ID: 1, MaxRecord: 10},
	}
	svc := NewScheduleConfigService(repo, zap.NewNop())

	err := svc.Update(context.Background(), &models.JobSchedule{ID: 1, MaxRecord: 40, AIIQR: 2})
	require.NoError(t, err)

	updated, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, updated.MaxRecord)
	assert.Equal(t, 2.0, updated.AIIQR)
}
