package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/cache"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/common/validation"
	"social-hub-backend/internal/features/profile/mapper"
	"social-hub-backend/internal/features/profile/models"
	"social-hub-backend/internal/features/profile/repository"
)

const profileCacheTTL = 5 * time.Minute

type ProfileService interface {
	Register(ctx context.Context, principal *auth.Principal, req models.RegisterRequest) (*models.Profile, error)
	GetMe(ctx context.Context, userID string) (*models.Profile, error)
	GetProfile(ctx context.Context, id string) (*models.PublicProfile, error)
	UpdateMe(ctx context.Context, userID string, req models.UpdateRequest) (*models.Profile, error)
	UpdateLanguage(ctx context.Context, userID, language string) error
	SetPageSizePreference(ctx context.Context, userID string, size int) (int, error)
	ListProfiles(ctx context.Context, page pagination.Page) (pagination.Result[*models.Profile], error)
}

type profileService struct {
	repo   repository.ProfileRepository
	cache  *cache.CacheService
	pages  *pagination.Resolver
	logger *zap.Logger
}

func NewProfileService(repo repository.ProfileRepository, cache *cache.CacheService, pages *pagination.Resolver, logger *zap.Logger) ProfileService {
	return &profileService{
		repo:   repo,
		cache:  cache,
		pages:  pages,
		logger: logger,
	}
}

// normalizePhone возвращает E.164 или ошибку валидации; пустая строка допустима
func normalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	res := validation.ValidatePhoneNumber(raw)
	if !res.IsValid {
		reason := res.Reason
		if reason == "" {
			reason = "is not a valid phone number"
		}
		return "", errors.NewValidationError("phone", reason)
	}
	return res.E164, nil
}

func (s *profileService) Register(ctx context.Context, principal *auth.Principal, req models.RegisterRequest) (*models.Profile, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if err := validation.ValidateUsername(username); err != nil {
		return nil, errors.NewValidationError("username", err.Error())
	}
	if req.FullName != "" {
		if err := validation.ValidateFullName(req.FullName); err != nil {
			return nil, errors.NewValidationError("full_name", err.Error())
		}
	}

	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = "en"
	}
	if err := validation.ValidateLanguage(language); err != nil {
		return nil, errors.NewValidationError("language", err.Error())
	}

	profile := &models.Profile{
		ID:       principal.UserID,
		Username: username,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    phone,
		Role:     models.RoleUser,
		Language: language,
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrUsernameTaken):
			return nil, errors.NewConflictError("username", "already taken").WithDetail("field", "username")
		case stderrors.Is(err, repository.ErrProfileExists):
			return nil, errors.NewConflictError("profile", "already registered")
		}
		return nil, errors.NewDatabaseError("create profile", err)
	}

	s.logger.Info("Profile registered",
		zap.String("user_id", profile.ID),
		zap.String("username", profile.Username),
	)
	return profile, nil
}

func (s *profileService) load(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrProfileNotFound) {
			return nil, errors.NewProfileNotFoundError(userID)
		}
		return nil, errors.NewDatabaseError("get profile", err)
	}
	return profile, nil
}

func (s *profileService) cached(ctx context.Context, userID string) (*models.Profile, error) {
	if s.cache == nil {
		return s.load(ctx, userID)
	}
	return cache.GetOrSet(ctx, s.cache, cache.ProfileKey(userID), profileCacheTTL, func(ctx context.Context) (*models.Profile, error) {
		return s.load(ctx, userID)
	})
}

func (s *profileService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProfileCache(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate profile cache", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *profileService) GetMe(ctx context.Context, userID string) (*models.Profile, error) {
	return s.cached(ctx, userID)
}

func (s *profileService) GetProfile(ctx context.Context, id string) (*models.PublicProfile, error) {
	profile, err := s.cached(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToPublicProfile(profile), nil
}

func (s *profileService) UpdateMe(ctx context.Context, userID string, req models.UpdateRequest) (*models.Profile, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if err := validation.ValidateUsername(username); err != nil {
			return nil, errors.NewValidationError("username", err.Error())
		}
		profile.Username = username
	}
	if req.FullName != nil {
		if err := validation.ValidateFullName(*req.FullName); err != nil {
			return nil, errors.NewValidationError("full_name", err.Error())
		}
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		if err := validation.ValidateBio(*req.Bio); err != nil {
			return nil, errors.NewValidationError("bio", err.Error())
		}
		profile.Bio = *req.Bio
	}
	if req.Phone != nil {
		phone, err := normalizePhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		profile.Phone = phone
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrUsernameTaken):
			return nil, errors.NewConflictError("username", "already taken").WithDetail("field", "username")
		case stderrors.Is(err, repository.ErrProfileNotFound):
			return nil, errors.NewProfileNotFoundError(userID)
		}
		return nil, errors.NewDatabaseError("update profile", err)
	}

	s.invalidate(ctx, userID)
	return profile, nil
}

func (s *profileService) UpdateLanguage(ctx context.Context, userID, language string) error {
	if err := validation.ValidateLanguage(language); err != nil {
		return errors.NewValidationError("language", err.Error())
	}

	if err := s.repo.UpdateLanguage(ctx, userID, language); err != nil {
		if stderrors.Is(err, repository.ErrProfileNotFound) {
			return errors.NewProfileNotFoundError(userID)
		}
		return errors.NewDatabaseError("update language", err)
	}

	s.invalidate(ctx, userID)
	return nil
}

// SetPageSizePreference сохраняет размер страницы; значение ограничивается [1, 100]
func (s *profileService) SetPageSizePreference(ctx context.Context, userID string, size int) (int, error) {
	stored, err := s.pages.SavePreference(ctx, userID, size)
	if err != nil {
		return 0, errors.NewCacheError("save page size preference", err)
	}
	return stored, nil
}

func (s *profileService) ListProfiles(ctx context.Context, page pagination.Page) (pagination.Result[*models.Profile], error) {
	profiles, total, err := s.repo.List(ctx, page.Limit(), page.Offset())
	if err != nil {
		return pagination.Result[*models.Profile]{}, errors.NewDatabaseError("list profiles", err)
	}
	return pagination.NewResult(profiles, total, page), nil
}
