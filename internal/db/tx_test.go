package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestRunInTxCommits(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `recipes`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := RunInTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().Table("recipes").Set("likes = likes + 1").Where("id = ?", "r1").Exec(ctx)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := RunInTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxRetriesDeadlock(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := RunInTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		calls++
		if calls == 1 {
			return &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxDoesNotRetryConflicts(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	calls := 0
	err := RunInTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		calls++
		return &mysql.MySQLError{Number: 1062}
	})
	assert.True(t, IsDuplicate(err))
	assert.Equal(t, 1, calls)
}
