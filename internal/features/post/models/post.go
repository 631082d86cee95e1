package models

import "time"

type Kind string

const (
	KindPost  Kind = "post"
	KindStory Kind = "story"
	KindReel  Kind = "reel"
)

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// Post публикация пользователя
// @Description Post
type Post struct {
	ID         string     `json:"id" example:"a3c1e2f4-8b7d-4c6e-9f10-1a2b3c4d5e6f"`
	AuthorID   string     `json:"author_id"`
	Content    string     `json:"content" example:"Sunset over the bay"`
	MediaKeys  []string   `json:"media_keys"`
	Visibility Visibility `json:"visibility" example:"public" enums:"public,followers,private"`
	Kind       Kind       `json:"kind" example:"post" enums:"post,story,reel"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// CreateRequest тело POST /posts
type CreateRequest struct {
	Content    string     `json:"content" binding:"required,max=5000" example:"Sunset over the bay"`
	MediaKeys  []string   `json:"media_keys" binding:"omitempty,max=10,dive,required,max=512"`
	Visibility Visibility `json:"visibility" binding:"omitempty,oneof=public followers private"`
	Kind       Kind       `json:"kind" binding:"omitempty,oneof=post story reel"`
	// Force публикует даже похожий пост
	Force bool `json:"force"`
}

type DuplicateCheckRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// DuplicateResult результат сравнения с недавними постами автора
type DuplicateResult struct {
	IsDuplicate   bool    `json:"is_duplicate"`
	Similarity    float64 `json:"similarity" example:"0.83"`
	MatchedPostID string  `json:"matched_post_id,omitempty"`
}

// Settings настройки публикаций пользователя (post_settings)
type Settings struct {
	UserID                string     `json:"user_id"`
	DefaultVisibility     Visibility `json:"default_visibility" example:"public"`
	AllowComments         bool       `json:"allow_comments"`
	AllowShares           bool       `json:"allow_shares"`
	DuplicateCheckEnabled bool       `json:"duplicate_check_enabled"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// DefaultSettings используются, пока пользователь ничего не сохранил
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:                userID,
		DefaultVisibility:     VisibilityPublic,
		AllowComments:         true,
		AllowShares:           true,
		DuplicateCheckEnabled: true,
	}
}

// UpdateSettingsRequest частичное обновление, nil = не менять
type UpdateSettingsRequest struct {
	DefaultVisibility     *Visibility `json:"default_visibility" binding:"omitempty,oneof=public followers private"`
	AllowComments         *bool       `json:"allow_comments"`
	AllowShares           *bool       `json:"allow_shares"`
	DuplicateCheckEnabled *bool       `json:"duplicate_check_enabled"`
}

func (r UpdateSettingsRequest) Apply(s *Settings) {
	if r.DefaultVisibility != nil {
		s.DefaultVisibility = *r.DefaultVisibility
	}
	if r.AllowComments != nil {
		s.AllowComments = *r.AllowComments
	}
	if r.AllowShares != nil {
		s.AllowShares = *r.AllowShares
	}
	if r.DuplicateCheckEnabled != nil {
		s.DuplicateCheckEnabled = *r.DuplicateCheckEnabled
	}
}
