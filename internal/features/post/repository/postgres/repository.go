package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"social-hub-backend/internal/features/post/models"
	"social-hub-backend/internal/features/post/repository"
)

const postColumns = `id, author_id, content, media_keys, visibility, kind, created_at, deleted_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.PostRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, post *models.Post) error {
	if post.MediaKeys == nil {
		post.MediaKeys = []string{}
	}

	query := `
		INSERT INTO posts (author_id, content, media_keys, visibility, kind)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		post.AuthorID, post.Content, pq.Array(post.MediaKeys), string(post.Visibility), string(post.Kind),
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND deleted_at IS NULL`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (r *postgresRepository) RecentByAuthor(ctx context.Context, authorID string, since time.Time, limit int) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE author_id = $1 AND created_at >= $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, authorID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent posts: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (r *postgresRepository) ListFeed(ctx context.Context, limit, offset int) ([]*models.Post, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM posts WHERE deleted_at IS NULL AND visibility = 'public'`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feed: %w", err)
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE deleted_at IS NULL AND visibility = 'public'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feed: %w", err)
	}
	defer rows.Close()

	posts, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// SoftDelete удаляет только собственный пост автора
func (r *postgresRepository) SoftDelete(ctx context.Context, id, authorID string) error {
	query := `UPDATE posts SET deleted_at = NOW() WHERE id = $1 AND author_id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrPostNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p          models.Post
		visibility string
		kind       string
		deletedAt  sql.NullTime
	)
	err := row.Scan(&p.ID, &p.AuthorID, &p.Content, pq.Array(&p.MediaKeys), &visibility, &kind, &p.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	p.Visibility = models.Visibility(visibility)
	p.Kind = models.Kind(kind)
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	if p.MediaKeys == nil {
		p.MediaKeys = []string{}
	}
	return &p, nil
}

func collect(rows *sql.Rows) ([]*models.Post, error) {
	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}
