package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestManagerDo(t *testing.T) {
	t.Run("commit on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		m := NewManager(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE events SET status`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := m.Do(context.Background(), func(ctx context.Context) error {
			assert.True(t, InTx(ctx))
			return DB(ctx, db).Exec("UPDATE events SET status = ?", "FULL").Error
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		m := NewManager(db)
		boom := errors.New("capacity exceeded")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := m.Do(context.Background(), func(ctx context.Context) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins outer transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		m := NewManager(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := m.Do(context.Background(), func(ctx context.Context) error {
			outer := DB(ctx, db)
			return m.Do(ctx, func(inner context.Context) error {
				assert.Same(t, outer, DB(inner, db))
				return nil
			})
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("outside a transaction uses fallback", func(t *testing.T) {
		db, _ := newMockDB(t)
		assert.False(t, InTx(context.Background()))
		assert.NotNil(t, DB(context.Background(), db))
	})
}
