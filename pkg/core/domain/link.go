package domain

import "time"

// Link represents a shortened URL held by the link store
type Link struct {
	Code           string     `json:"short_code"`
	TargetURL      string     `json:"original_url"`
	ClickCount     int64      `json:"clicks"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IsCustomCode   bool       `json:"is_custom_code"`
}

// IsExpired reports whether the link is no longer live at now.
// A link is live only while its expiry is strictly in the future.
func (l *Link) IsExpired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return !now.Before(*l.ExpiresAt)
}

// Overview is the aggregate view over every link currently held by the store
type Overview struct {
	TotalLinks   int    `json:"total_urls"`
	TotalClicks  int64  `json:"total_clicks"`
	ActiveLinks  int    `json:"active_urls"`
	ExpiredLinks int    `json:"expired_urls"`
	CustomLinks  int    `json:"custom_urls"`
	RecentLinks  []Link `json:"recent_urls"`
}

// ShortenInput is the caller-facing create request.
type ShortenInput struct {
	URL        string
	CustomCode string
	TTLHours   *float64 // nil means no expiry
}
