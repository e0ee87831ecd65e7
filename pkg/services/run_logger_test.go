package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/models"
)

func TestRecordComputesAverage(t *testing.T) {
	repo := &mockRunLogRepo{}
	svc := NewRunLoggerService(repo, zap.NewNop())

	err := svc.Record(context.Background(), models.RunTypeScheduled, 4, 1000, 90*time.Second, nil)
	require.NoError(t, err)

	logs := repo.all()
	require.Len(t, logs, 1)
	assert.Equal(t, models.RunTypeScheduled, logs[0].Type)
	assert.Equal(t, 4, logs[0].TotalData)
	assert.Equal(t, 1000, logs[0].TotalToken)
	assert.Equal(t, 250.0, logs[0].AverageToken)
	assert.Equal(t, 90, logs[0].Duration)
	assert.Nil(t, logs[0].UserID)
}

func TestRecordSkipsEmptyRun(t *testing.T) {
	repo := &mockRunLogRepo{}
	svc := NewRunLoggerService(repo, zap.NewNop())

	err := svc.Record(context.Background(), models.RunTypeScheduled, 0, 0, time.Second, nil)
	require.NoError(t, err)
	assert.Empty(t, repo.all())
}

func TestRecordManualWithUser(t *testing.T) {
	repo := &mockRunLogRepo{}
	svc := NewRunLoggerService(repo, zap.NewNop())

	userID := 3
	err := svc.Record(context.Background(), models.RunTypeManual, 1, 120, 2*time.Second, &userID)
	require.NoError(t, err)

	logs := repo.all()
	require.Len(t, logs, 1)
	assert.Equal(t, models.RunTypeManual, logs[0].Type)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, 3, *logs[0].UserID)
	assert.Equal(t, 120.0, logs[0].AverageToken)
}

func TestRecordInsertError(t *testing.T) {
	repo := &mockRunLogRepo{insertErr: errors.New("connection refused")}
	svc := NewRunLoggerService(repo, zap.NewNop())

	err := svc.Record(context.Background(), models.RunTypeScheduled, 2, 100, time.Second, nil)
	assert.Error(t, err)
}
