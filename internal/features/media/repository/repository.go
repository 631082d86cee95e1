package repository

import (
	"context"
	"errors"

	"social-hub-backend/internal/features/media/models"
)

var ErrProfileNotFound = errors.New("profile not found")

type PhotoRepository interface {
	// Insert идемпотентен по object_key: повторное подтверждение вернет
	// существующую строку и inserted = false
	Insert(ctx context.Context, photo *models.Photo) (inserted bool, err error)
	SetAvatar(ctx context.Context, userID, url string) error
}
