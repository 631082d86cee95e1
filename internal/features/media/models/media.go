package models

import "time"

type Purpose string

const (
	PurposeAvatar Purpose = "avatar"
	PurposePost   Purpose = "post"
	PurposeStory  Purpose = "story"
	PurposeReel   Purpose = "reel"
)

const (
	MaxImageSize int64 = 10 << 20
	MaxVideoSize int64 = 100 << 20
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var videoTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
}

func (p Purpose) Valid() bool {
	switch p {
	case PurposeAvatar, PurposePost, PurposeStory, PurposeReel:
		return true
	}
	return false
}

// AllowsVideo: аватар только картинкой
func (p Purpose) AllowsVideo() bool {
	return p == PurposePost || p == PurposeStory || p == PurposeReel
}

// Extension возвращает расширение для допустимого типа или false
func (p Purpose) Extension(contentType string) (string, bool) {
	if ext, ok := imageTypes[contentType]; ok {
		return ext, true
	}
	if p.AllowsVideo() {
		if ext, ok := videoTypes[contentType]; ok {
			return ext, true
		}
	}
	return "", false
}

// MaxSize лимит размера для типа содержимого
func MaxSize(contentType string) int64 {
	if _, ok := videoTypes[contentType]; ok {
		return MaxVideoSize
	}
	return MaxImageSize
}

// UploadRequest запрос на presigned PUT
type UploadRequest struct {
	Purpose     Purpose `json:"purpose" binding:"required,oneof=avatar post story reel" example:"avatar"`
	ContentType string  `json:"content_type" binding:"required" example:"image/jpeg"`
	Size        int64   `json:"size" binding:"required,min=1" example:"204800"`
}

// UploadTicket все, что нужно клиенту для прямой загрузки
type UploadTicket struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method" example:"PUT"`
	Key       string            `json:"key" example:"avatar/5d1f6c1e-1c1a-4d8e-9a43-5b3f0e6f8a10/2026/03/1f0e.jpg"`
	PublicURL string            `json:"public_url"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type ConfirmRequest struct {
	Key string `json:"key" binding:"required,max=512"`
}

// Photo строка user_photos
type Photo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url"`
	Purpose   Purpose   `json:"purpose"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
