package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"social-hub-backend/internal/common/cache"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/validation"
	"social-hub-backend/internal/features/i18n/repository"
)

const (
	FallbackLanguage = "en"
	cacheTTL         = 10 * time.Minute
)

// Bundle словарь, отданный клиенту
type Bundle struct {
	Language     string            `json:"language" example:"es"`
	Translations map[string]string `json:"translations"`
}

type TranslationService interface {
	Get(ctx context.Context, language string) (*Bundle, error)
	// Reload сбрасывает закэшированные словари после правок в таблице
	Reload(ctx context.Context) error
}

type translationService struct {
	repo   repository.TranslationRepository
	cache  *cache.CacheService
	logger *zap.Logger
}

func NewTranslationService(repo repository.TranslationRepository, cache *cache.CacheService, logger *zap.Logger) TranslationService {
	return &translationService{repo: repo, cache: cache, logger: logger}
}

// Get отдает словарь языка; неподдерживаемый язык заменяется на en,
// отсутствующие ключи дополняются из en.
func (s *translationService) Get(ctx context.Context, language string) (*Bundle, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if !validation.IsSupportedLanguage(language) {
		language = FallbackLanguage
	}

	translations, err := s.load(ctx, language)
	if err != nil {
		return nil, err
	}

	if language != FallbackLanguage {
		fallback, err := s.load(ctx, FallbackLanguage)
		if err != nil {
			s.logger.Warn("Failed to load fallback translations", zap.Error(err))
		}
		merged := make(map[string]string, len(fallback)+len(translations))
		for k, v := range fallback {
			merged[k] = v
		}
		for k, v := range translations {
			merged[k] = v
		}
		translations = merged
	}

	return &Bundle{Language: language, Translations: translations}, nil
}

func (s *translationService) load(ctx context.Context, language string) (map[string]string, error) {
	fetch := func(ctx context.Context) (map[string]string, error) {
		t, err := s.repo.GetLanguage(ctx, language)
		if err != nil {
			return nil, errors.NewDatabaseError("get translations", err)
		}
		return t, nil
	}
	if s.cache == nil {
		return fetch(ctx)
	}
	return cache.GetOrSet(ctx, s.cache, cache.TranslationsKey(language), cacheTTL, fetch)
}

func (s *translationService) Reload(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidateTranslations(ctx); err != nil {
		return errors.NewCacheError("invalidate translations", err)
	}
	s.logger.Info("Translation cache invalidated")
	return nil
}
