package models

import "time"

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Типы событий безопасности
const (
	EventAdminAccessGranted    = "admin_access_granted"
	EventAdminAccessDenied     = "admin_access_denied"
	EventAdminValidationFailed = "admin_validation_failed"
	EventAdminGranted          = "admin_role_granted"
	EventSessionCreated        = "session_created"
	EventSessionReactivated    = "session_reactivated"
	EventSessionTrustChanged   = "session_trust_changed"
	EventSessionRemoved        = "session_removed"
	EventSessionsLoggedOut     = "sessions_logged_out"
	EventRevokedSessionUsed    = "revoked_session_used"
	EventPasswordChanged       = "password_changed"
	EventPasswordChangeFailed  = "password_change_failed"
)

// Event запись журнала безопасности
// @Description Security audit event
type Event struct {
	ID        int64                  `json:"id" example:"42"`
	UserID    string                 `json:"user_id,omitempty" example:"7f0c2a8e-9d55-4b8e-a0a3-4b0f2d1f3c11"`
	EventType string                 `json:"event_type" example:"session_removed"`
	Severity  Severity               `json:"severity" example:"info" enums:"info,warning,critical"`
	IPAddress string                 `json:"ip_address,omitempty" example:"203.0.113.7"`
	UserAgent string                 `json:"user_agent,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Filter условия выборки для админки
type Filter struct {
	UserID    string
	EventType string
	Severity  Severity
}

// IsHighSeverity сообщает, нужно ли уведомлять администраторов
func (s Severity) IsHighSeverity() bool {
	return s == SeverityWarning || s == SeverityCritical
}
