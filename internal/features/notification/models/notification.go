package models

import "time"

// Notification уведомление для администраторов
// @Description Admin notification
type Notification struct {
	ID        int64      `json:"id" example:"12"`
	Title     string     `json:"title" example:"Admin access denied"`
	Message   string     `json:"message"`
	Severity  string     `json:"severity" example:"warning" enums:"info,warning,critical"`
	Source    string     `json:"source" example:"security"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// CreateRequest тело запроса на создание уведомления
type CreateRequest struct {
	Title    string `json:"title" binding:"required,max=200" example:"Maintenance window"`
	Message  string `json:"message" binding:"required,max=2000" example:"Storage migration tonight at 02:00 UTC"`
	Severity string `json:"severity" binding:"omitempty,oneof=info warning critical" example:"info"`
}

// ListResponse страница уведомлений со счетчиком непрочитанных
type ListResponse struct {
	Items       []*Notification `json:"items"`
	Total       int64           `json:"total"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	HasMore     bool            `json:"has_more"`
	UnreadCount int64           `json:"unread_count"`
}
