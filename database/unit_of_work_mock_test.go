package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*ImportDB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewImportDB(conn, DriverSQLite), mock
}

func TestUnitOfWorkRollsBackOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO ports (name, normalized_name) VALUES (?, ?) RETURNING id`)).
		WithArgs("Umm Qasr", "umm qasr").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`INSERT INTO contracts`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	uow, err := db.Begin(ctx)
	require.NoError(t, err)

	id, err := uow.CreatePort(ctx, "Umm Qasr", "umm qasr")
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	_, err = uow.InsertContract(ctx, ContractRow{ContractNo: "390", Status: "PENDING"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract 390")

	require.NoError(t, uow.Rollback())
	assert.ErrorIs(t, uow.Rollback(), ErrUnitOfWorkDone)
	assert.ErrorIs(t, uow.Commit(), ErrUnitOfWorkDone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkCommitsExactlyOnce(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	uow, err := db.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
	assert.ErrorIs(t, uow.Commit(), ErrUnitOfWorkDone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearTransactionalDeletesChildrenFirst(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	for _, table := range TransactionalTables {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM " + table)).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	uow, err := db.Begin(context.Background())
	require.NoError(t, err)
	n, err := uow.ClearTransactional(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(TransactionalTables)), n)
	require.NoError(t, uow.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearTransactionalStopsOnError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM document_archive").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	uow, err := db.Begin(context.Background())
	require.NoError(t, err)
	_, err = uow.ClearTransactional(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document_archive")
	require.NoError(t, uow.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}
