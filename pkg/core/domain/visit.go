package domain

import "time"

// Visit represents a click on a short link
type Visit struct {
	ID        int64     `json:"id"`
	Code      string    `json:"short_code"`
	Referer   string    `json:"referer"`
	UserAgent string    `json:"user_agent"`
	IPHash    string    `json:"ip_hash"` // sha256 of the client address
	CreatedAt time.Time `json:"created_at"`
}

// VisitStats represents aggregated visit log data for a link
type VisitStats struct {
	TotalVisits int64            `json:"total_visits"`
	Referrers   map[string]int64 `json:"referrers"`    // count by domain
	DailyClicks []DailyClick     `json:"daily_clicks"` // timeline
}

type DailyClick struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// LinkStats is the per-link statistics view
type LinkStats struct {
	Link
	IsExpired bool        `json:"is_expired"`
	Visits    *VisitStats `json:"visits,omitempty"`
}

// VisitInfo carries the request metadata recorded with a click
type VisitInfo struct {
	Referer   string
	UserAgent string
	IP        string
}
