package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentiva/studyloop/pkg/models"
)

func testHistoryService(t *testing.T) (*PlayHistoryService, pgxmock.PgxPoolIface) {
	t.Helper()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewPlayHistoryService(mockDB, logger), mockDB
}

func TestPlayHistoryService_UserHistory(t *testing.T) {
	service, mockDB := testHistoryService(t)

	userID := uuid.New()
	played := time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"game_id", "play_count", "last_played_at"}).
		AddRow(int64(5), 4, &played).
		AddRow(int64(2), 1, nil)

	mockDB.ExpectQuery("SELECT").WithArgs(userID).WillReturnRows(rows)

	history, err := service.UserHistory(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, int64(5), history[0].GameID)
	assert.Equal(t, 4, history[0].PlayCount)
	require.NotNil(t, history[0].LastPlayedAt)
	assert.True(t, history[0].LastPlayedAt.Equal(played))
	assert.Nil(t, history[1].LastPlayedAt)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPlayHistoryService_UserHistoryEmpty(t *testing.T) {
	service, mockDB := testHistoryService(t)

	userID := uuid.New()
	mockDB.ExpectQuery("SELECT").WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"game_id", "play_count", "last_played_at"}))

	history, err := service.UserHistory(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPlayHistoryService_RecordCompletion(t *testing.T) {
	service, mockDB := testHistoryService(t)

	event := models.SessionCompletedEvent{
		SessionID:   uuid.New(),
		UserID:      uuid.New(),
		GameID:      7,
		CompletedAt: time.Date(2026, 2, 11, 9, 30, 0, 0, time.UTC),
	}

	mockDB.ExpectExec("INSERT INTO play_history").
		WithArgs(event.UserID, event.GameID, event.CompletedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := service.RecordCompletion(context.Background(), event)
	require.NoError(t, err)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}
