package models

import "time"

// Метрики resource_usage
const (
	MetricPostsCreated   = "posts_created"
	MetricNewProfiles    = "new_profiles"
	MetricActiveSessions = "active_sessions"
	MetricUploads        = "uploads"
	MetricUploadBytes    = "upload_bytes"
)

// DailyUsage значения метрик за один день
// @Description Resource usage for one day
type DailyUsage struct {
	Date    string           `json:"date" example:"2026-03-10"`
	Metrics map[string]int64 `json:"metrics"`
}

type Report struct {
	Days []DailyUsage `json:"days"`
}

// DayKey дата в формате resource_usage.usage_date
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
