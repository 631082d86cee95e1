package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-hub-backend/internal/features/post/models"
	"social-hub-backend/internal/features/post/repository"
)

var postRowColumns = []string{"id", "author_id", "content", "media_keys", "visibility", "kind", "created_at", "deleted_at"}

func TestCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
		WithArgs("u1", "hello", sqlmock.AnyArg(), "public", "post").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p1", now))

	repo := NewPostgresRepository(db)
	p := &models.Post{AuthorID: "u1", Content: "hello", Visibility: models.VisibilityPublic, Kind: models.KindPost}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, []string{}, p.MediaKeys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentByAuthor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	since := time.Now().Add(-24 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE author_id = $1 AND created_at >= $2 AND deleted_at IS NULL")).
		WithArgs("u1", since, 20).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow("p2", "u1", "second", []byte("{post/u1/a.jpg}"), "public", "post", time.Now(), nil).
			AddRow("p1", "u1", "first", []byte("{}"), "private", "story", time.Now(), nil))

	repo := NewPostgresRepository(db)
	posts, err := repo.RecentByAuthor(context.Background(), "u1", since, 20)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, []string{"post/u1/a.jpg"}, posts[0].MediaKeys)
	assert.Equal(t, models.KindStory, posts[1].Kind)
	assert.Equal(t, []string{}, posts[1].MediaKeys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM posts WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = NewPostgresRepository(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrPostNotFound)
}

func TestSoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts SET deleted_at = NOW()")).
		WithArgs("p1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts SET deleted_at = NOW()")).
		WithArgs("p1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.SoftDelete(context.Background(), "p1", "u1"))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), "p1", "u2"), repository.ErrPostNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM get_post_settings($1)")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "default_visibility", "allow_comments", "allow_shares", "duplicate_check_enabled", "updated_at"}))

	_, err = NewSettingsRepository(db).Get(context.Background(), "u1")
	assert.ErrorIs(t, err, repository.ErrSettingsNotFound)
}

func TestSettingsUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE")).
		WithArgs("u1", "followers", true, false, true).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	s := &models.Settings{UserID: "u1", DefaultVisibility: models.VisibilityFollowers, AllowComments: true, DuplicateCheckEnabled: true}
	require.NoError(t, NewSettingsRepository(db).Upsert(context.Background(), s))
	assert.Equal(t, now, s.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
