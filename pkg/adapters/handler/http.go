package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wadjakorntonsri/shortlink/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlink/pkg/ports"
)

type HTTPHandler struct {
	service ports.LinkService
	baseURL string
}

func NewHTTPHandler(service ports.LinkService, baseURL string) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	URL         string   `json:"url"`
	CustomCode  string   `json:"customCode,omitempty"`
	ExpiryHours *float64 `json:"expiryHours,omitempty"`
}

// CreateLinkResponse payload
type CreateLinkResponse struct {
	ShortCode   string     `json:"shortCode"`
	ShortURL    string     `json:"shortUrl"`
	OriginalURL string     `json:"originalUrl"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// LinkSummary is one entry of the overview's recent links
type LinkSummary struct {
	ShortCode    string     `json:"shortCode"`
	OriginalURL  string     `json:"originalUrl"`
	Clicks       int64      `json:"clicks"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
	IsCustomCode bool       `json:"isCustomCode"`
}

// LinkStatsResponse payload
type LinkStatsResponse struct {
	LinkSummary
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
	IsExpired bool               `json:"isExpired"`
	Visits    *domain.VisitStats `json:"visits,omitempty"`
}

// OverviewResponse payload
type OverviewResponse struct {
	TotalURLs   int           `json:"totalUrls"`
	TotalClicks int64         `json:"totalClicks"`
	ActiveURLs  int           `json:"activeUrls"`
	ExpiredURLs int           `json:"expiredUrls"`
	CustomURLs  int           `json:"customUrls"`
	RecentURLs  []LinkSummary `json:"recentUrls"`
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, errors.New("invalid request body"), "Request body must be JSON")
		return
	}

	link, err := h.service.Shorten(r.Context(), domain.ShortenInput{
		URL:        req.URL,
		CustomCode: req.CustomCode,
		TTLHours:   req.ExpiryHours,
	})
	if err != nil {
		sendServiceError(w, err, "Failed to create short URL")
		return
	}

	sendJSON(w, http.StatusOK, CreateLinkResponse{
		ShortCode:   link.Code,
		ShortURL:    h.shortURL(link.Code),
		OriginalURL: link.TargetURL,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
	})
}

// Redirect to original URL
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		http.Error(w, "Short code missing", http.StatusBadRequest)
		return
	}

	originalURL, err := h.service.Resolve(r.Context(), code, domain.VisitInfo{
		Referer:   r.Header.Get("Referer"),
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Debug().Str("short_code", code).Msg("Short code not found")
			renderNotFound(w)
			return
		}
		log.Error().Err(err).Str("short_code", code).Msg("Failed to resolve short code")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, originalURL, http.StatusFound)
}

// Overview of all links
func (h *HTTPHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		sendServiceError(w, err, "Failed to load overview")
		return
	}

	resp := OverviewResponse{
		TotalURLs:   overview.TotalLinks,
		TotalClicks: overview.TotalClicks,
		ActiveURLs:  overview.ActiveLinks,
		ExpiredURLs: overview.ExpiredLinks,
		CustomURLs:  overview.CustomLinks,
		RecentURLs:  make([]LinkSummary, 0, len(overview.RecentLinks)),
	}
	for _, l := range overview.RecentLinks {
		resp.RecentURLs = append(resp.RecentURLs, summarize(l))
	}

	sendJSON(w, http.StatusOK, resp)
}

// Get Stats for a Link
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")

	stats, err := h.service.Stats(r.Context(), code)
	if err != nil {
		sendServiceError(w, err, "Short code not found")
		return
	}

	sendJSON(w, http.StatusOK, LinkStatsResponse{
		LinkSummary: summarize(stats.Link),
		ExpiresAt:   stats.ExpiresAt,
		IsExpired:   stats.IsExpired,
		Visits:      stats.Visits,
	})
}

// Delete Link
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		sendJSONError(w, http.StatusBadRequest, errors.New("short code is required"), "")
		return
	}

	if err := h.service.Delete(r.Context(), code); err != nil {
		sendServiceError(w, err, "URL not found")
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"message": "URL deleted successfully"})
}

func (h *HTTPHandler) shortURL(code string) string {
	return h.baseURL + "/" + code
}

func summarize(l domain.Link) LinkSummary {
	return LinkSummary{
		ShortCode:    l.Code,
		OriginalURL:  l.TargetURL,
		Clicks:       l.ClickCount,
		CreatedAt:    l.CreatedAt,
		LastAccessed: l.LastAccessedAt,
		IsCustomCode: l.IsCustomCode,
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to RemoteAddr.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
