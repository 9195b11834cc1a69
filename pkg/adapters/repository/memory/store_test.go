package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/shortlink/pkg/core/codegen"
	"github.com/wadjakorntonsri/shortlink/pkg/core/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// sequence returns a generator that yields codes in order, then repeats the last one.
func sequence(codes ...string) codegen.Func {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code, nil
	}
}

func TestStore_Create(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now))

	link, err := store.Create(ctx, "https://example.com", "", time.Hour)
	require.NoError(t, err)

	assert.Len(t, link.Code, codegen.Length)
	assert.Equal(t, "https://example.com", link.TargetURL)
	assert.Equal(t, int64(0), link.ClickCount)
	assert.Equal(t, clock.Now(), link.CreatedAt)
	assert.Nil(t, link.LastAccessedAt)
	require.NotNil(t, link.ExpiresAt)
	assert.Equal(t, clock.Now().Add(time.Hour), *link.ExpiresAt)
	assert.False(t, link.IsCustomCode)
}

func TestStore_Create_Validation(t *testing.T) {
	store := NewStore()
	_, err := store.Create(context.Background(), "", "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Create_NoTTL(t *testing.T) {
	store := NewStore()
	link, err := store.Create(context.Background(), "https://example.com", "", 0)
	require.NoError(t, err)
	assert.Nil(t, link.ExpiresAt)
}

func TestStore_Create_CustomCode(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()

	tests := []struct {
		name       string
		setup      func(t *testing.T, s *Store)
		wantErr    error
		wantTarget string
	}{
		{
			name:       "free code",
			wantTarget: "https://new.example.com",
		},
		{
			name: "collides with live link",
			setup: func(t *testing.T, s *Store) {
				_, err := s.Create(ctx, "https://old.example.com", "promo", 0)
				require.NoError(t, err)
			},
			wantErr:    domain.ErrCodeAlreadyExists,
			wantTarget: "https://old.example.com",
		},
		{
			name: "collides with expired link",
			setup: func(t *testing.T, s *Store) {
				_, err := s.Create(ctx, "https://old.example.com", "promo", time.Hour)
				require.NoError(t, err)
				clock.Advance(2 * time.Hour)
			},
			wantTarget: "https://new.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(WithClock(clock.Now))
			if tt.setup != nil {
				tt.setup(t, store)
			}

			link, err := store.Create(ctx, "https://new.example.com", "promo", 0)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, link)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "promo", link.Code)
				assert.True(t, link.IsCustomCode)
			}

			got, err := store.Get(ctx, "promo")
			require.NoError(t, err)
			assert.Equal(t, tt.wantTarget, got.TargetURL)
			assert.Equal(t, 1, store.Len())
		})
	}
}

func TestStore_Create_CustomCodeConflictLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Create(ctx, "https://example.com", "keep", 0)
	require.NoError(t, err)
	_, err = store.ResolveAndTouch(ctx, "keep")
	require.NoError(t, err)
	before, err := store.Get(ctx, "keep")
	require.NoError(t, err)

	_, err = store.Create(ctx, "https://other.example.com", "keep", time.Minute)
	require.ErrorIs(t, err, domain.ErrCodeAlreadyExists)

	after, err := store.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_Create_GeneratedCollisionRetries(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithGenerator(sequence("aaaaaa", "aaaaaa", "bbbbbb")))

	first, err := store.Create(ctx, "https://one.example.com", "", 0)
	require.NoError(t, err)
	second, err := store.Create(ctx, "https://two.example.com", "", 0)
	require.NoError(t, err)

	assert.Equal(t, "aaaaaa", first.Code)
	assert.Equal(t, "bbbbbb", second.Code)
}

func TestStore_Create_GeneratedReusesExpiredCode(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now), WithGenerator(sequence("aaaaaa")))

	_, err := store.Create(ctx, "https://one.example.com", "", time.Hour)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	link, err := store.Create(ctx, "https://two.example.com", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", link.Code)
	assert.Equal(t, "https://two.example.com", link.TargetURL)
}

func TestStore_Create_GenerationExhausted(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithGenerator(sequence("aaaaaa")), WithMaxAttempts(3))

	_, err := store.Create(ctx, "https://one.example.com", "", 0)
	require.NoError(t, err)

	_, err = store.Create(ctx, "https://two.example.com", "", 0)
	assert.ErrorIs(t, err, domain.ErrGenerationExhausted)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Create_GeneratorError(t *testing.T) {
	boom := errors.New("boom")
	store := NewStore(WithGenerator(func() (string, error) { return "", boom }))

	_, err := store.Create(context.Background(), "https://example.com", "", 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Create_UniqueCodes(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var wg sync.WaitGroup
	codes := make(chan string, 500)
	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			link, err := store.Create(ctx, fmt.Sprintf("https://example.com/%d", i), "", 0)
			if err == nil {
				codes <- link.Code
			}
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Len(t, seen, 500)
	assert.Equal(t, 500, store.Len())
}

func TestStore_Create_ConcurrentSameCustomCode(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, "https://example.com", "race", 0)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.Is(err, domain.ErrCodeAlreadyExists) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 49, conflicts)
}

func TestStore_ResolveAndTouch(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now))

	link, err := store.Create(ctx, "https://example.com", "", 0)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	target, err := store.ResolveAndTouch(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", target)

	got, err := store.Get(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ClickCount)
	require.NotNil(t, got.LastAccessedAt)
	assert.Equal(t, clock.Now(), *got.LastAccessedAt)

	// no TTL: never expires
	clock.Advance(10 * 365 * 24 * time.Hour)
	_, err = store.ResolveAndTouch(ctx, link.Code)
	assert.NoError(t, err)
}

func TestStore_ResolveAndTouch_Unknown(t *testing.T) {
	_, err := NewStore().ResolveAndTouch(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	const ttl = 3 * time.Hour
	const eps = time.Millisecond

	tests := []struct {
		name    string
		elapsed time.Duration
		live    bool
	}{
		{"before expiry", ttl - eps, true},
		{"at expiry", ttl, false},
		{"after expiry", ttl + eps, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			store := NewStore(WithClock(clock.Now))
			link, err := store.Create(ctx, "https://example.com", "", ttl)
			require.NoError(t, err)

			clock.Advance(tt.elapsed)

			_, getErr := store.Get(ctx, link.Code)
			_, resolveErr := store.ResolveAndTouch(ctx, link.Code)
			if tt.live {
				assert.NoError(t, getErr)
				assert.NoError(t, resolveErr)
				assert.Equal(t, 1, store.Len())
			} else {
				assert.ErrorIs(t, getErr, domain.ErrNotFound)
				assert.ErrorIs(t, resolveErr, domain.ErrNotFound)
				assert.Equal(t, 0, store.Len(), "expired link should be evicted")
			}
		})
	}
}

func TestStore_Get_DoesNotTouch(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	link, err := store.Create(ctx, "https://example.com", "", 0)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := store.Get(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.ClickCount)
		assert.Nil(t, got.LastAccessedAt)
	}
}

func TestStore_Get_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	link, err := store.Create(ctx, "https://example.com", "", time.Hour)
	require.NoError(t, err)

	link.ClickCount = 99
	*link.ExpiresAt = time.Time{}

	got, err := store.Get(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.ClickCount)
	assert.False(t, got.ExpiresAt.IsZero())
}

func TestStore_ListAll(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now))

	_, err := store.Create(ctx, "https://a.example.com", "a", time.Hour)
	require.NoError(t, err)
	_, err = store.Create(ctx, "https://b.example.com", "b", 0)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	links := store.ListAll(ctx)
	assert.Len(t, links, 2, "listing must not evict expired links")
	assert.Equal(t, 2, store.Len())

	expired := 0
	for _, l := range links {
		if l.IsExpired(clock.Now()) {
			expired++
		}
	}
	assert.Equal(t, 1, expired)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now))

	assert.False(t, store.Delete(ctx, "unknown"))

	link, err := store.Create(ctx, "https://example.com", "", 0)
	require.NoError(t, err)
	assert.True(t, store.Delete(ctx, link.Code))

	_, err = store.Get(ctx, link.Code)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, store.Delete(ctx, link.Code))

	// expired but not yet evicted: still removed
	_, err = store.Create(ctx, "https://example.com", "old", time.Hour)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	assert.True(t, store.Delete(ctx, "old"))
}

func TestStore_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, "https://example.com", fmt.Sprintf("short%d", i), time.Hour)
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, "https://example.com", "forever", 0)
	require.NoError(t, err)

	assert.Equal(t, 0, store.Sweep(ctx, clock.Now()))

	clock.Advance(time.Hour)
	assert.Equal(t, 3, store.Sweep(ctx, clock.Now()))
	assert.Equal(t, 1, store.Len())
}

func TestStore_ConcurrentResolve(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	link, err := store.Create(ctx, "https://example.com", "", 0)
	require.NoError(t, err)

	const n = 1000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ResolveAndTouch(ctx, link.Code)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.ClickCount)
}

func TestStore_Scenario(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now))

	link, err := store.Create(ctx, "https://example.com", "", time.Hour)
	require.NoError(t, err)
	require.NotNil(t, link.ExpiresAt)
	assert.Equal(t, clock.Now().Add(time.Hour), *link.ExpiresAt)
	assert.Equal(t, int64(0), link.ClickCount)

	for i := 0; i < 5; i++ {
		_, err := store.ResolveAndTouch(ctx, link.Code)
		require.NoError(t, err)
	}
	got, err := store.Get(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ClickCount)
	assert.NotNil(t, got.LastAccessedAt)

	clock.Advance(2 * time.Hour)
	_, err = store.ResolveAndTouch(ctx, link.Code)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Get(ctx, link.Code)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
