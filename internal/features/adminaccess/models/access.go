package models

import "time"

type State string

const (
	StateLoading State = "loading"
	StateGranted State = "granted"
	StateDenied  State = "denied"
)

// Откуда взято решение
const (
	SourceRPC      = "rpc"
	SourceFallback = "fallback"
	SourceNone     = "none"
)

// Тексты, которые клиент показывает пользователю
const (
	MessageDenied           = "You do not have access to the admin dashboard."
	MessageValidationFailed = "We could not verify your admin access. Please try again."
)

// AccessState результат проверки доступа к админке
// @Description Admin access state
type AccessState struct {
	UserID    string    `json:"user_id"`
	State     State     `json:"state" example:"granted" enums:"loading,granted,denied"`
	Source    string    `json:"source" example:"rpc" enums:"rpc,fallback,none"`
	Attempts  int       `json:"attempts" example:"1"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

func (s *AccessState) Granted() bool {
	return s != nil && s.State == StateGranted
}

// Типы событий аутентификации
const (
	EventSignedIn        = "SIGNED_IN"
	EventSignedOut       = "SIGNED_OUT"
	EventTokenRefreshed  = "TOKEN_REFRESHED"
	EventUserUpdated     = "USER_UPDATED"
	EventNewAdminGranted = "NEW_ADMIN_GRANTED"
)

// AuthEvent событие жизненного цикла авторизации
// @Description Auth lifecycle event
type AuthEvent struct {
	Type       string    `json:"type" binding:"required,oneof=SIGNED_IN SIGNED_OUT TOKEN_REFRESHED USER_UPDATED NEW_ADMIN_GRANTED" example:"SIGNED_IN"`
	UserID     string    `json:"user_id,omitempty"`
	DeviceID   string    `json:"device_id,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	IsAdmin    bool      `json:"is_admin,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Revalidates сообщает, нужно ли перепроверять доступ после события
func (e AuthEvent) Revalidates() bool {
	switch e.Type {
	case EventSignedIn, EventTokenRefreshed, EventNewAdminGranted:
		return true
	}
	return false
}

// EventResponse ответ на POST /admin/access/events
type EventResponse struct {
	Event string       `json:"event"`
	State *AccessState `json:"state,omitempty"`
}
