package pagination

import (
	"context"
	"fmt"
	"strconv"

	"social-hub-backend/internal/platform/redis"
)

func preferenceKey(userID string) string {
	return fmt.Sprintf("prefs:%s:page_size", userID)
}

// Resolver walks the full page-size chain for a request: explicit value,
// ?page_size=, the user's stored preference in Redis, then ADMIN_PAGE_SIZE.
type Resolver struct {
	client *redis.Client
	env    string
}

func NewResolver(client *redis.Client, envPageSize string) *Resolver {
	return &Resolver{client: client, env: envPageSize}
}

// StoredPreference returns the raw stored value, "" when absent or unreadable.
func (r *Resolver) StoredPreference(ctx context.Context, userID string) string {
	if r.client == nil || userID == "" {
		return ""
	}
	v, err := r.client.Get(ctx, preferenceKey(userID)).Result()
	if err != nil {
		return ""
	}
	return v
}

// SavePreference stores a page size for userID after clamping it.
func (r *Resolver) SavePreference(ctx context.Context, userID string, size int) (int, error) {
	size = GetPageSize(Sources{Explicit: strconv.Itoa(size)})
	if err := r.client.Set(ctx, preferenceKey(userID), strconv.Itoa(size), 0).Err(); err != nil {
		return 0, err
	}
	return size, nil
}

func (r *Resolver) PageSize(ctx context.Context, userID, explicit, urlParam string) int {
	return GetPageSize(Sources{
		Explicit: explicit,
		URLParam: urlParam,
		Stored:   r.StoredPreference(ctx, userID),
		Env:      r.env,
	})
}

// PageFor resolves both the page number and size.
func (r *Resolver) PageFor(ctx context.Context, userID, rawPage, urlPageSize string) Page {
	return NewPage(rawPage, r.PageSize(ctx, userID, "", urlPageSize))
}
