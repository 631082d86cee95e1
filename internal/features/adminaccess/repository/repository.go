package repository

import (
	"context"
	"errors"

	"social-hub-backend/internal/features/adminaccess/models"
)

var (
	// ErrFunctionMissing means validate_admin_access is not deployed; retrying is pointless.
	ErrFunctionMissing = errors.New("validate_admin_access function is missing")
	ErrProfileNotFound = errors.New("profile not found")
)

type AccessRepository interface {
	ValidateAdminAccess(ctx context.Context, userID string) (bool, error)
	SetRole(ctx context.Context, userID, role string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.AuthEvent) error
}
