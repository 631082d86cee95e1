package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-hub-backend/internal/features/adminaccess/repository"
)

func TestValidateAdminAccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT validate_admin_access($1)")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"validate_admin_access"}).AddRow(true))

	ok, err := NewPostgresRepository(db).ValidateAdminAccess(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateAdminAccessMissingFunction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT validate_admin_access($1)")).
		WithArgs("u1").
		WillReturnError(&pq.Error{Code: "42883", Message: "function validate_admin_access(uuid) does not exist"})

	_, err = NewPostgresRepository(db).ValidateAdminAccess(context.Background(), "u1")
	assert.ErrorIs(t, err, repository.ErrFunctionMissing)
}

func TestSetRoleProfileMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET role = $2")).
		WithArgs("u1", "admin").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgresRepository(db).SetRole(context.Background(), "u1", "admin")
	assert.ErrorIs(t, err, repository.ErrProfileNotFound)
}
