package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wadjakorntonsri/shortlink/pkg/core/codegen"
	"github.com/wadjakorntonsri/shortlink/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlink/pkg/ports"
)

// DefaultMaxAttempts bounds the generated-code retry loop.
const DefaultMaxAttempts = 16

// Store is the in-memory short-link store.
//
// A single lock guards the map. Every operation that may evict an expired
// link takes the write lock, so check-then-act sequences stay atomic.
// Records are never handed out directly; callers get copies.
type Store struct {
	mu          sync.RWMutex
	links       map[string]*domain.Link
	now         func() time.Time
	generate    codegen.Func
	maxAttempts int
}

type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithGenerator overrides the code generator.
func WithGenerator(gen codegen.Func) Option {
	return func(s *Store) { s.generate = gen }
}

// WithMaxAttempts sets how many generated candidates Create tries before giving up.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		links:       make(map[string]*domain.Link),
		now:         time.Now,
		generate:    codegen.Default,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create(ctx context.Context, targetURL, customCode string, ttl time.Duration) (*domain.Link, error) {
	if targetURL == "" {
		return nil, fmt.Errorf("%w: target url is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	code := customCode
	if code != "" {
		if s.liveLocked(code, now) {
			return nil, domain.ErrCodeAlreadyExists
		}
	} else {
		var err error
		code, err = s.reserveGeneratedLocked(now)
		if err != nil {
			return nil, err
		}
	}

	link := &domain.Link{
		Code:         code,
		TargetURL:    targetURL,
		CreatedAt:    now,
		IsCustomCode: customCode != "",
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		link.ExpiresAt = &expiresAt
	}

	s.links[code] = link
	return clone(link), nil
}

// reserveGeneratedLocked finds a generated code not held by a live link.
func (s *Store) reserveGeneratedLocked(now time.Time) (string, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		if !s.liveLocked(code, now) {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", domain.ErrGenerationExhausted, s.maxAttempts)
}

// liveLocked reports whether code is held by a live link, evicting it if expired.
func (s *Store) liveLocked(code string, now time.Time) bool {
	link, ok := s.links[code]
	if !ok {
		return false
	}
	if link.IsExpired(now) {
		delete(s.links, code)
		return false
	}
	return true
}

func (s *Store) ResolveAndTouch(ctx context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.liveLocked(code, now) {
		return "", domain.ErrNotFound
	}

	link := s.links[code]
	link.ClickCount++
	accessed := now
	link.LastAccessedAt = &accessed
	return link.TargetURL, nil
}

func (s *Store) Get(ctx context.Context, code string) (*domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveLocked(code, s.now()) {
		return nil, domain.ErrNotFound
	}
	return clone(s.links[code]), nil
}

func (s *Store) ListAll(ctx context.Context) []domain.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make([]domain.Link, 0, len(s.links))
	for _, link := range s.links {
		links = append(links, *clone(link))
	}
	return links
}

func (s *Store) Delete(ctx context.Context, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[code]; !ok {
		return false
	}
	delete(s.links, code)
	return true
}

func (s *Store) Sweep(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for code, link := range s.links {
		if link.IsExpired(now) {
			delete(s.links, code)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of stored links, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links)
}

func clone(link *domain.Link) *domain.Link {
	c := *link
	if link.LastAccessedAt != nil {
		t := *link.LastAccessedAt
		c.LastAccessedAt = &t
	}
	if link.ExpiresAt != nil {
		t := *link.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

var _ ports.LinkStore = (*Store)(nil)
