package models

import "time"

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Profile полная модель профиля (таблица profiles)
// @Description Full profile of the current user
type Profile struct {
	ID        string    `json:"id" example:"5d1f6c1e-1c1a-4d8e-9a43-5b3f0e6f8a10"`
	Username  string    `json:"username" example:"alice"`
	FullName  string    `json:"full_name" example:"Alice Liddell"`
	Bio       string    `json:"bio"`
	Phone     string    `json:"phone,omitempty" example:"+14155550123"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role" example:"user" enums:"user,moderator,admin"`
	Language  string    `json:"language" example:"en"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicProfile то, что видят другие пользователи
// @Description Public profile
type PublicProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username" example:"alice"`
	FullName  string    `json:"full_name"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role" example:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest создание профиля для нового пользователя Supabase Auth
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30" example:"alice"`
	FullName string `json:"full_name" binding:"omitempty,max=100" example:"Alice Liddell"`
	Phone    string `json:"phone" binding:"omitempty,e164orlocal" example:"(415) 555-0123"`
	Language string `json:"language" binding:"omitempty,len=2" example:"en"`
}

// UpdateRequest частичное обновление, nil = не менять
type UpdateRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=30"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	Phone    *string `json:"phone"`
}

type LanguageRequest struct {
	Language string `json:"language" binding:"required,len=2" example:"es"`
}

type PreferencesRequest struct {
	PageSize int `json:"page_size" binding:"required,min=1" example:"50"`
}

type PreferencesResponse struct {
	PageSize int `json:"page_size" example:"50"`
}
