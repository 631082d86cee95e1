package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-hub-backend/internal/features/media/models"
	"social-hub-backend/internal/features/media/repository"
)

func TestInsertPhoto(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	columns := []string{"id", "created_at", "inserted"}
	query := regexp.QuoteMeta("INSERT INTO user_photos")
	args := []driver.Value{"u1", "avatar/u1/2026/03/a.jpg", "https://cdn/a.jpg", "avatar", int64(1024)}

	mock.ExpectQuery(query).WithArgs(args...).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("ph1", now, true))
	mock.ExpectQuery(query).WithArgs(args...).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("ph1", now, false))

	newPhoto := func() *models.Photo {
		return &models.Photo{
			UserID:    "u1",
			ObjectKey: "avatar/u1/2026/03/a.jpg",
			URL:       "https://cdn/a.jpg",
			Purpose:   models.PurposeAvatar,
			SizeBytes: 1024,
		}
	}
	repo := NewPostgresRepository(db)

	photo := newPhoto()
	inserted, err := repo.Insert(context.Background(), photo)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "ph1", photo.ID)

	// Повторное подтверждение того же ключа
	photo = newPhoto()
	inserted, err = repo.Insert(context.Background(), photo)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "ph1", photo.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAvatarMissingProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET avatar_url")).
		WithArgs("u1", "https://cdn/a.jpg").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgresRepository(db).SetAvatar(context.Background(), "u1", "https://cdn/a.jpg")
	assert.ErrorIs(t, err, repository.ErrProfileNotFound)
}
