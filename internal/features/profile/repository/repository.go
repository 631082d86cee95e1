package repository

import (
	"context"
	"errors"

	"social-hub-backend/internal/features/profile/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrUsernameTaken   = errors.New("username already taken")
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateLanguage(ctx context.Context, id, language string) error
	List(ctx context.Context, limit, offset int) ([]*models.Profile, int64, error)
}
