package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestCompleteDraw_RollsBackWhenAssignmentInsertFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `groups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status", "max_participants"}).
			AddRow("G1", "Офис", "open", 10))
	mock.ExpectQuery("SELECT (.+) FROM `participants`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "telegram_id", "status"}).
			AddRow("11111111-1111-1111-1111-111111111111", "G1", 1, "confirmed").
			AddRow("22222222-2222-2222-2222-222222222222", "G1", 2, "confirmed").
			AddRow("33333333-3333-3333-3333-333333333333", "G1", 3, "confirmed"))
	mock.ExpectExec("UPDATE `groups`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `assignments`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	group, edges, err := repo.CompleteDraw(context.Background(), "G1", planRotate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Nil(t, group)
	assert.Nil(t, edges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteDraw_LostRaceReportsAlreadyDrawn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `groups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "max_participants"}).
			AddRow("G2", "open", 10))
	mock.ExpectQuery("SELECT (.+) FROM `participants`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "telegram_id", "status"}).
			AddRow("11111111-1111-1111-1111-111111111111", "G2", 1, "confirmed").
			AddRow("22222222-2222-2222-2222-222222222222", "G2", 2, "confirmed").
			AddRow("33333333-3333-3333-3333-333333333333", "G2", 3, "confirmed"))
	mock.ExpectExec("UPDATE `groups`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := repo.CompleteDraw(context.Background(), "G2", planRotate)
	assert.ErrorIs(t, err, ErrGroupAlreadyDrawn)
	assert.NoError(t, mock.ExpectationsWereMet())
}
