package models

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusRemoved   Status = "removed"
	StatusLoggedOut Status = "logged_out"
)

func (s Status) Revoked() bool {
	return s == StatusRemoved || s == StatusLoggedOut
}

// Session строка user_sessions
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DeviceID     string    `json:"device_id"`
	DeviceName   string    `json:"device_name"`
	DeviceType   string    `json:"device_type"`
	Browser      string    `json:"browser"`
	OS           string    `json:"os"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	IsTrusted    bool      `json:"is_trusted"`
	Status       Status    `json:"status"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DeviceSession элемент списка устройств
// @Description Active device session
type DeviceSession struct {
	ID           string    `json:"id" example:"5d1f6c1e-1c1a-4d8e-9a43-5b3f0e6f8a10"`
	DeviceID     string    `json:"device_id"`
	DeviceName   string    `json:"device_name" example:"Chrome on macOS"`
	DeviceType   string    `json:"device_type" example:"desktop" enums:"desktop,mobile,tablet"`
	Browser      string    `json:"browser" example:"Chrome 129"`
	OS           string    `json:"os" example:"Intel Mac OS X 10_15_7"`
	IPAddress    string    `json:"ip_address"`
	IsTrusted    bool      `json:"is_trusted"`
	IsCurrent    bool      `json:"is_current"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// DevicesResponse полный список активных сессий пользователя
type DevicesResponse struct {
	Devices []DeviceSession `json:"devices"`
}

type TrustResponse struct {
	SessionID string `json:"session_id"`
	IsTrusted bool   `json:"is_trusted"`
}

type LogoutOthersResponse struct {
	LoggedOut int `json:"logged_out" example:"2"`
}

// ChangeNotice публикуется в канал user_sessions:<userID>
type ChangeNotice struct {
	UserID    string    `json:"user_id"`
	Event     string    `json:"event"`
	SessionID string    `json:"session_id,omitempty"`
	At        time.Time `json:"at"`
}
