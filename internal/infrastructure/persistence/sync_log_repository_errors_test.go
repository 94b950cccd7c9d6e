package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/growthdeck/backend/internal/domain/ingestion"
)

// newMockDB opens gorm over a sqlmock connection for driver-level error
// injection that the sqlite harness cannot simulate.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestSyncLogListPropagatesQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSyncLogRepository(db)

	queryErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT count").WillReturnError(queryErr)

	_, _, err := repo.List(context.Background(), uuid.New(), "", 10, 0)
	assert.ErrorIs(t, err, queryErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncLogAppendPropagatesInsertError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSyncLogRepository(db)

	insertErr := errors.New("deadlock detected")
	mock.ExpectExec("INSERT INTO \"sync_logs\"").WillReturnError(insertErr)

	err := repo.Append(context.Background(), &ingestion.SyncLogEntry{
		TenantID: uuid.New(),
		Source:   "metaads",
		Status:   ingestion.SyncStatusSuccess,
	})
	assert.ErrorIs(t, err, insertErr)
}
