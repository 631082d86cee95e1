package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/cache"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/metrics"
	"social-hub-backend/internal/features/media/models"
	"social-hub-backend/internal/features/media/repository"
	usagemodels "social-hub-backend/internal/features/usage/models"
	"social-hub-backend/internal/platform/storage"
)

// ObjectStore операции с бакетом
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (*storage.PresignedUpload, error)
	Head(ctx context.Context, key string) (*storage.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// UsageCounter дневные счетчики использования ресурсов
type UsageCounter interface {
	Add(ctx context.Context, day time.Time, metric string, delta int64) error
}

type MediaService interface {
	RequestUpload(ctx context.Context, userID string, req models.UploadRequest) (*models.UploadTicket, error)
	ConfirmUpload(ctx context.Context, userID, key string) (*models.Photo, error)
}

type mediaService struct {
	store     ObjectStore
	photos    repository.PhotoRepository
	usage     UsageCounter
	cache     *cache.CacheService
	uploadTTL time.Duration
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
}

func NewMediaService(
	store ObjectStore,
	photos repository.PhotoRepository,
	usage UsageCounter,
	cache *cache.CacheService,
	uploadTTL time.Duration,
	logger *zap.Logger,
) MediaService {
	if uploadTTL <= 0 {
		uploadTTL = 15 * time.Minute
	}
	return &mediaService{
		store:     store,
		photos:    photos,
		usage:     usage,
		cache:     cache,
		uploadTTL: uploadTTL,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

func rejected(reason string) *errors.AppError {
	return errors.New(errors.ErrCodeUploadRejected, reason)
}

// RequestUpload проверяет тип и размер и выдает presigned PUT
// на ключ <purpose>/<userID>/<yyyy>/<mm>/<uuid><ext>.
func (s *mediaService) RequestUpload(ctx context.Context, userID string, req models.UploadRequest) (*models.UploadTicket, error) {
	if !req.Purpose.Valid() {
		return nil, errors.NewValidationError("purpose", "must be one of: avatar post story reel")
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := req.Purpose.Extension(contentType)
	if !ok {
		return nil, rejected(fmt.Sprintf("Content type %q is not allowed for %s uploads", req.ContentType, req.Purpose)).
			WithDetail("content_type", req.ContentType)
	}

	limit := models.MaxSize(contentType)
	if req.Size <= 0 || req.Size > limit {
		return nil, rejected(fmt.Sprintf("File size must be between 1 byte and %d MiB", limit>>20)).
			WithDetail("max_size", limit)
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%s/%s/%04d/%02d/%s%s", req.Purpose, userID, now.Year(), int(now.Month()), s.newID(), ext)

	presigned, err := s.store.PresignPut(ctx, key, contentType, req.Size, s.uploadTTL)
	if err != nil {
		return nil, errors.NewStorageError("presign upload", err)
	}

	metrics.RecordUpload(string(req.Purpose), "requested")
	s.logger.Debug("Upload URL issued",
		zap.String("user_id", userID),
		zap.String("key", key),
		zap.Int64("size", req.Size),
	)

	return &models.UploadTicket{
		UploadURL: presigned.URL,
		Method:    presigned.Method,
		Key:       key,
		PublicURL: s.store.PublicURL(key),
		Headers:   presigned.Headers,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// ConfirmUpload проверяет, что объект загружен в собственный префикс
// пользователя, и фиксирует его.
func (s *mediaService) ConfirmUpload(ctx context.Context, userID, key string) (*models.Photo, error) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 || parts[1] != userID || strings.Contains(key, "..") {
		return nil, errors.NewForbiddenError("object key does not belong to the current user")
	}
	purpose := models.Purpose(parts[0])
	if !purpose.Valid() {
		return nil, errors.NewForbiddenError("object key does not belong to the current user")
	}

	info, err := s.store.Head(ctx, key)
	if err != nil {
		if stderrors.Is(err, storage.ErrObjectNotFound) {
			return nil, rejected("The file has not been uploaded yet").WithDetail("key", key)
		}
		return nil, errors.NewStorageError("head object", err)
	}

	if limit := models.MaxSize(info.ContentType); info.Size > limit {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete oversized upload", zap.String("key", key), zap.Error(err))
		}
		metrics.RecordUpload(string(purpose), "rejected")
		return nil, rejected("Uploaded file is too large").WithDetail("max_size", limit)
	}

	photo := &models.Photo{
		UserID:    userID,
		ObjectKey: key,
		URL:       s.store.PublicURL(key),
		Purpose:   purpose,
		SizeBytes: info.Size,
	}
	inserted, err := s.photos.Insert(ctx, photo)
	if err != nil {
		return nil, errors.NewDatabaseError("record upload", err)
	}

	if purpose == models.PurposeAvatar {
		if err := s.photos.SetAvatar(ctx, userID, photo.URL); err != nil {
			if stderrors.Is(err, repository.ErrProfileNotFound) {
				return nil, errors.NewProfileNotFoundError(userID)
			}
			return nil, errors.NewDatabaseError("set avatar", err)
		}
		if s.cache != nil {
			if err := s.cache.InvalidateProfileCache(ctx, userID); err != nil {
				s.logger.Warn("Failed to invalidate profile cache", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}

	// Повторное подтверждение того же ключа не считается новой загрузкой
	if s.usage != nil && inserted {
		day := s.now()
		if err := s.usage.Add(ctx, day, usagemodels.MetricUploads, 1); err != nil {
			s.logger.Warn("Failed to count upload", zap.Error(err))
		} else if err := s.usage.Add(ctx, day, usagemodels.MetricUploadBytes, info.Size); err != nil {
			s.logger.Warn("Failed to count upload bytes", zap.Error(err))
		}
	}

	metrics.RecordUpload(string(purpose), "confirmed")
	s.logger.Info("Upload confirmed",
		zap.String("user_id", userID),
		zap.String("key", key),
		zap.Int64("size", info.Size),
	)
	return photo, nil
}
