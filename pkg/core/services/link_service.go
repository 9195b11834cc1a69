package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wadjakorntonsri/shortlink/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlink/pkg/ports"
)

const (
	DefaultRecentLimit  = 10
	maxCustomCodeLength = 64
	maxTTLHours         = float64(math.MaxInt64 / int64(time.Hour))
)

var customCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type LinkService struct {
	store       ports.LinkStore
	visits      ports.VisitRepository // nil disables the visit log
	now         func() time.Time
	recentLimit int
}

type Option func(*LinkService)

// WithVisitRepository enables click logging.
func WithVisitRepository(repo ports.VisitRepository) Option {
	return func(s *LinkService) { s.visits = repo }
}

func WithClock(now func() time.Time) Option {
	return func(s *LinkService) { s.now = now }
}

func WithRecentLimit(n int) Option {
	return func(s *LinkService) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

func NewLinkService(store ports.LinkStore, opts ...Option) *LinkService {
	s := &LinkService{
		store:       store,
		now:         time.Now,
		recentLimit: DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LinkService) Shorten(ctx context.Context, in domain.ShortenInput) (*domain.Link, error) {
	if err := validateURL(in.URL); err != nil {
		return nil, err
	}
	if in.CustomCode != "" {
		if len(in.CustomCode) > maxCustomCodeLength || !customCodePattern.MatchString(in.CustomCode) {
			return nil, fmt.Errorf("%w: custom code can only contain letters, numbers, hyphens, and underscores", domain.ErrInvalidInput)
		}
	}

	var ttl time.Duration
	if in.TTLHours != nil {
		hours := *in.TTLHours
		if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
			return nil, fmt.Errorf("%w: expiry hours must be a positive number", domain.ErrInvalidInput)
		}
		if hours > maxTTLHours {
			return nil, fmt.Errorf("%w: expiry hours out of range", domain.ErrInvalidInput)
		}
		ttl = time.Duration(hours * float64(time.Hour))
		if ttl <= 0 {
			return nil, fmt.Errorf("%w: expiry hours too small", domain.ErrInvalidInput)
		}
	}

	link, err := s.store.Create(ctx, in.URL, in.CustomCode, ttl)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationExhausted) {
			log.Error().Err(err).Str("original_url", in.URL).Msg("Short code generation exhausted")
		}
		return nil, err
	}

	log.Info().
		Str("short_code", link.Code).
		Bool("custom_code", link.IsCustomCode).
		Msg("Short link created")
	return link, nil
}

// Resolve returns the target URL for code and counts the click.
// When the visit log is enabled the visit is recorded in the background.
func (s *LinkService) Resolve(ctx context.Context, code string, visit domain.VisitInfo) (string, error) {
	target, err := s.store.ResolveAndTouch(ctx, code)
	if err != nil {
		return "", err
	}

	if s.visits != nil {
		v := &domain.Visit{
			Code:      code,
			Referer:   visit.Referer,
			UserAgent: visit.UserAgent,
			IPHash:    hashIP(visit.IP),
			CreatedAt: s.now(),
		}
		// request context is cancelled once the redirect is written
		go func() {
			if err := s.visits.RecordVisit(context.Background(), v); err != nil {
				log.Error().Err(err).Str("short_code", code).Msg("Failed to record visit")
			}
		}()
	}

	return target, nil
}

func (s *LinkService) GetLink(ctx context.Context, code string) (*domain.Link, error) {
	return s.store.Get(ctx, code)
}

func (s *LinkService) Stats(ctx context.Context, code string) (*domain.LinkStats, error) {
	link, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	// Get evicts expired links, so this is false unless the clocks disagree.
	stats := &domain.LinkStats{
		Link:      *link,
		IsExpired: link.IsExpired(s.now()),
	}

	if s.visits != nil {
		visits, err := s.visits.GetVisitStats(ctx, code)
		if err != nil {
			// counters from the store are still valid
			log.Warn().Err(err).Str("short_code", code).Msg("Failed to load visit stats")
		} else {
			stats.Visits = visits
		}
	}

	return stats, nil
}

// Overview aggregates every stored link. Expiry is classified here, at read time,
// because listing never evicts.
func (s *LinkService) Overview(ctx context.Context) (*domain.Overview, error) {
	links := s.store.ListAll(ctx)
	now := s.now()

	overview := &domain.Overview{TotalLinks: len(links)}
	for _, l := range links {
		overview.TotalClicks += l.ClickCount
		if l.IsExpired(now) {
			overview.ExpiredLinks++
		} else {
			overview.ActiveLinks++
		}
		if l.IsCustomCode {
			overview.CustomLinks++
		}
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	if len(links) > s.recentLimit {
		links = links[:s.recentLimit]
	}
	overview.RecentLinks = links

	return overview, nil
}

func (s *LinkService) Delete(ctx context.Context, code string) error {
	if _, err := s.store.Get(ctx, code); err != nil {
		return err
	}
	if !s.store.Delete(ctx, code) {
		// removed concurrently between the lookup and the delete
		return domain.ErrNotFound
	}
	log.Info().Str("short_code", code).Msg("Short link deleted")
	return nil
}

// StartJanitor evicts expired links every interval until ctx is done.
// Lazy eviction stays in effect either way.
func (s *LinkService) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.store.Sweep(ctx, s.now()); n > 0 {
					log.Info().Int("evicted", n).Msg("Expired links swept")
				}
			}
		}
	}()
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: URL is required", domain.ErrInvalidInput)
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: invalid URL format", domain.ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: URL scheme must be http or https", domain.ErrInvalidInput)
	}
	return nil
}

func hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

var _ ports.LinkService = (*LinkService)(nil)
