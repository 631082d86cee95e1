package service

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"social-hub-backend/internal/common/cache"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/metrics"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/common/validation"
	"social-hub-backend/internal/features/post/models"
	"social-hub-backend/internal/features/post/repository"
)

const (
	duplicateWindow   = 24 * time.Hour
	duplicateLookback = 20
	settingsCacheTTL  = 10 * time.Minute
)

type PostService interface {
	CheckDuplicate(ctx context.Context, userID, content string) (*models.DuplicateResult, error)
	CreatePost(ctx context.Context, userID string, req models.CreateRequest) (*models.Post, error)
	ListFeed(ctx context.Context, page pagination.Page) (pagination.Result[*models.Post], error)
	DeletePost(ctx context.Context, userID, postID string) error
	GetSettings(ctx context.Context, userID string) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID string, req models.UpdateSettingsRequest) (*models.Settings, error)
}

type postService struct {
	posts    repository.PostRepository
	settings repository.SettingsRepository
	cache    *cache.CacheService
	now      func() time.Time
	logger   *zap.Logger
}

func NewPostService(
	posts repository.PostRepository,
	settings repository.SettingsRepository,
	cache *cache.CacheService,
	logger *zap.Logger,
) PostService {
	return &postService{
		posts:    posts,
		settings: settings,
		cache:    cache,
		now:      time.Now,
		logger:   logger,
	}
}

// CheckDuplicate сравнивает текст с последними постами автора за сутки
func (s *postService) CheckDuplicate(ctx context.Context, userID, content string) (*models.DuplicateResult, error) {
	recent, err := s.posts.RecentByAuthor(ctx, userID, s.now().Add(-duplicateWindow), duplicateLookback)
	if err != nil {
		return nil, errors.NewDatabaseError("get recent posts", err)
	}

	result := &models.DuplicateResult{}
	for _, p := range recent {
		sim := Jaccard(content, p.Content)
		if sim > result.Similarity {
			result.Similarity = sim
			result.MatchedPostID = p.ID
		}
	}
	result.IsDuplicate = result.Similarity >= DuplicateThreshold
	if !result.IsDuplicate {
		result.MatchedPostID = ""
	}

	return result, nil
}

func (s *postService) CreatePost(ctx context.Context, userID string, req models.CreateRequest) (*models.Post, error) {
	if err := validation.ValidatePostContent(req.Content); err != nil {
		return nil, errors.NewValidationError("content", err.Error())
	}

	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if settings.DuplicateCheckEnabled && !req.Force {
		dup, err := s.CheckDuplicate(ctx, userID, req.Content)
		if err != nil {
			return nil, err
		}
		if dup.IsDuplicate {
			metrics.RecordDuplicatePost()
			return nil, errors.New(errors.ErrCodeDuplicatePost, "This looks like a post you already shared").
				WithDetail("similarity", dup.Similarity).
				WithDetail("matched_post_id", dup.MatchedPostID)
		}
	}

	post := &models.Post{
		AuthorID:   userID,
		Content:    req.Content,
		MediaKeys:  req.MediaKeys,
		Visibility: req.Visibility,
		Kind:       req.Kind,
	}
	if post.Visibility == "" {
		post.Visibility = settings.DefaultVisibility
	}
	if post.Kind == "" {
		post.Kind = models.KindPost
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, errors.NewDatabaseError("create post", err)
	}

	s.logger.Info("Post created",
		zap.String("post_id", post.ID),
		zap.String("author_id", userID),
		zap.Bool("forced", req.Force),
	)
	return post, nil
}

func (s *postService) ListFeed(ctx context.Context, page pagination.Page) (pagination.Result[*models.Post], error) {
	posts, total, err := s.posts.ListFeed(ctx, page.Limit(), page.Offset())
	if err != nil {
		return pagination.Result[*models.Post]{}, errors.NewDatabaseError("list feed", err)
	}
	return pagination.NewResult(posts, total, page), nil
}

func (s *postService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if stderrors.Is(err, repository.ErrPostNotFound) {
			return errors.NewPostNotFoundError(postID)
		}
		return errors.NewDatabaseError("get post", err)
	}
	if post.AuthorID != userID {
		return errors.NewForbiddenError("only the author can delete a post")
	}

	if err := s.posts.SoftDelete(ctx, postID, userID); err != nil {
		if stderrors.Is(err, repository.ErrPostNotFound) {
			return errors.NewPostNotFoundError(postID)
		}
		return errors.NewDatabaseError("delete post", err)
	}
	return nil
}

// GetSettings возвращает настройки из кэша или RPC; без строки в базе отдает значения по умолчанию
func (s *postService) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	load := func(ctx context.Context) (*models.Settings, error) {
		settings, err := s.settings.Get(ctx, userID)
		if err != nil {
			if stderrors.Is(err, repository.ErrSettingsNotFound) {
				return models.DefaultSettings(userID), nil
			}
			return nil, errors.NewDatabaseError("get post settings", err)
		}
		return settings, nil
	}

	if s.cache == nil {
		return load(ctx)
	}
	return cache.GetOrSet(ctx, s.cache, cache.PostSettingsKey(userID), settingsCacheTTL, load)
}

func (s *postService) UpdateSettings(ctx context.Context, userID string, req models.UpdateSettingsRequest) (*models.Settings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := *settings
	req.Apply(&updated)

	if err := s.settings.Upsert(ctx, &updated); err != nil {
		return nil, errors.NewDatabaseError("update post settings", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.PostSettingsKey(userID)); err != nil {
			s.logger.Warn("Failed to invalidate post settings cache", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return &updated, nil
}
