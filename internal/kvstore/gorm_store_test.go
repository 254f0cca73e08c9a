package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/postoffice/internal/database"
	apperrors "github.com/welldanyogia/postoffice/internal/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockStore(t *testing.T, opts Options) (*GormStore, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// GORM pings during initialization
	mock.ExpectPing()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStore(db, opts), mock
}

func TestGormStore_ReadFailureIsUnavailable(t *testing.T) {
	store, mock := setupMockStore(t, Options{})
	mock.ExpectQuery(`SELECT \* FROM "columns"`).WillReturnError(errors.New("connection refused"))

	_, err := store.ReadRowSlice(context.Background(), "folders", "bob:inbox", SliceRange{Reverse: true})

	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.Equal(t, apperrors.CodeStoreUnavailable, apperrors.GetErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_WriteFailureIsUnavailable(t *testing.T) {
	store, mock := setupMockStore(t, Options{})
	mock.ExpectExec(`INSERT INTO "columns"`).WillReturnError(errors.New("i/o timeout"))

	err := store.WriteColumn(context.Background(), "conversations", "bob:1", "m1", "{}")

	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AtomicBatchRollsBack(t *testing.T) {
	store, mock := setupMockStore(t, Options{Consistency: ConsistencyAll})
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "columns"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "columns"`).WillReturnError(errors.New("node down"))
	mock.ExpectRollback()

	err := store.NewBatch().
		Delete("folders", "bob:inbox", "e1").
		Write("folders", "bob:inbox", "e2", "bob:1").
		Execute(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_BestEffortBatchHasNoTransaction(t *testing.T) {
	store, mock := setupMockStore(t, Options{Consistency: ConsistencyOne})
	mock.ExpectExec(`DELETE FROM "columns"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "columns"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.NewBatch().
		Delete("folders", "bob:inbox", "e1").
		Write("folders", "bob:inbox", "e2", "bob:1").
		Execute(context.Background())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_WriteTimeFromClock(t *testing.T) {
	db, err := database.ConnectSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	defer database.Close(db)

	store := NewGormStore(db, Options{})
	fixed := time.Date(2011, 7, 13, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	ctx := context.Background()
	require.NoError(t, store.WriteColumn(ctx, "f", "r", "a", "v"))

	cols, err := store.ReadRowSlice(ctx, "f", "r", SliceRange{})
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, fixed.UnixMicro(), cols[0].WrittenAt)
}
