package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/cache"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/features/profile/models"
	"social-hub-backend/internal/features/profile/repository"
	"social-hub-backend/internal/platform/redis"
)

type fakeRepo struct {
	profiles map[string]*models.Profile
	gets     int
}

func (f *fakeRepo) Create(ctx context.Context, p *models.Profile) error {
	if _, ok := f.profiles[p.ID]; ok {
		return repository.ErrProfileExists
	}
	for _, existing := range f.profiles {
		if existing.Username == p.Username {
			return repository.ErrUsernameTaken
		}
	}
	p.CreatedAt = time.Now()
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	f.gets++
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Update(ctx context.Context, p *models.Profile) error {
	for id, existing := range f.profiles {
		if id != p.ID && existing.Username == p.Username {
			return repository.ErrUsernameTaken
		}
	}
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateLanguage(ctx context.Context, id, language string) error {
	p, ok := f.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.Language = language
	return nil
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int) ([]*models.Profile, int64, error) {
	var out []*models.Profile
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func newService(t *testing.T, repo *fakeRepo) ProfileService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return NewProfileService(repo, cache.NewCacheService(client), pagination.NewResolver(client, ""), zap.NewNop())
}

func TestRegisterNormalizesPhone(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]*models.Profile{}}
	svc := newService(t, repo)

	p, err := svc.Register(context.Background(), &auth.Principal{UserID: "u1"}, models.RegisterRequest{
		Username: "Alice",
		Phone:    "(415) 555-0123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "+14155550123", p.Phone)
	assert.Equal(t, "en", p.Language)
	assert.Equal(t, models.RoleUser, p.Role)
}

func TestRegisterConflicts(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]*models.Profile{
		"u1": {ID: "u1", Username: "alice"},
	}}
	svc := newService(t, repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, &auth.Principal{UserID: "u2"}, models.RegisterRequest{Username: "alice"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))

	_, err = svc.Register(ctx, &auth.Principal{UserID: "u1"}, models.RegisterRequest{Username: "bob"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc := newService(t, &fakeRepo{profiles: map[string]*models.Profile{}})
	ctx := context.Background()
	p := &auth.Principal{UserID: "u1"}

	_, err := svc.Register(ctx, p, models.RegisterRequest{Username: "al"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.Register(ctx, p, models.RegisterRequest{Username: "alice", Phone: "12345"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.Register(ctx, p, models.RegisterRequest{Username: "alice", Language: "xx"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestGetMeCachedUntilUpdate(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]*models.Profile{
		"u1": {ID: "u1", Username: "alice", FullName: "Alice", Phone: "+14155550123"},
	}}
	svc := newService(t, repo)
	ctx := context.Background()

	_, err := svc.GetMe(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetMe(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)

	bio := "hello"
	_, err = svc.UpdateMe(ctx, "u1", models.UpdateRequest{Bio: &bio})
	require.NoError(t, err)

	p, err := svc.GetMe(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Bio)
}

func TestGetProfileHidesPhone(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]*models.Profile{
		"u1": {ID: "u1", Username: "alice", Phone: "+14155550123"},
	}}
	svc := newService(t, repo)

	p, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	_, err = svc.GetProfile(context.Background(), "nobody")
	assert.True(t, errors.HasCode(err, errors.ErrCodeProfileNotFound))
}

func TestUpdateMeUsernameTaken(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]*models.Profile{
		"u1": {ID: "u1", Username: "alice"},
		"u2": {ID: "u2", Username: "bob"},
	}}
	svc := newService(t, repo)

	name := "bob"
	_, err := svc.UpdateMe(context.Background(), "u1", models.UpdateRequest{Username: &name})
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
}

func TestUpdateLanguage(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]*models.Profile{"u1": {ID: "u1", Username: "alice", Language: "en"}}}
	svc := newService(t, repo)

	require.NoError(t, svc.UpdateLanguage(context.Background(), "u1", "es"))
	assert.Equal(t, "es", repo.profiles["u1"].Language)

	err := svc.UpdateLanguage(context.Background(), "u1", "klingon")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestSetPageSizePreferenceClamps(t *testing.T) {
	svc := newService(t, &fakeRepo{profiles: map[string]*models.Profile{}})

	n, err := svc.SetPageSizePreference(context.Background(), "u1", 500)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}
