package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestTeacherAccountRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherAccountRepository(db)
	rows := sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "active", "last_login_at", "created_at"}).
		AddRow("teacher-1", "prof@lycee.fr", "M. Dupont", "hash", true, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, password_hash, active, last_login_at, created_at")).
		WithArgs("prof@lycee.fr").
		WillReturnRows(rows)

	account, err := repo.FindByEmail(context.Background(), "prof@lycee.fr")
	require.NoError(t, err)
	require.Equal(t, "teacher-1", account.ID)
	require.True(t, account.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAccountRepositoryFindByEmailNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherAccountRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, password_hash, active, last_login_at, created_at")).
		WithArgs("ghost@lycee.fr").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@lycee.fr")
	// Raw sql.ErrNoRows must survive so the auth layer can distinguish an
	// unknown account from an infrastructure failure.
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAccountRepositoryUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherAccountRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_accounts SET last_login_at")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "teacher-1", time.Now()))
	require.NoError(t, mock.ExpectationsWereMet())
}
