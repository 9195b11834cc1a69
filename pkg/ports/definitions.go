package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/shortlink/pkg/core/domain"
)

// LinkStore defines the in-memory short-link store operations
type LinkStore interface {
	// Create reserves customCode, or a generated code when customCode is empty.
	// A ttl of zero means the link never expires.
	Create(ctx context.Context, targetURL, customCode string, ttl time.Duration) (*domain.Link, error)
	// ResolveAndTouch returns the target URL and records one click.
	ResolveAndTouch(ctx context.Context, code string) (string, error)
	Get(ctx context.Context, code string) (*domain.Link, error)
	// ListAll returns every stored link, expired ones included, without evicting.
	ListAll(ctx context.Context) []domain.Link
	Delete(ctx context.Context, code string) bool
	// Sweep evicts every link expired at now and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) int
}

// VisitRepository defines storage operations for the click log
type VisitRepository interface {
	RecordVisit(ctx context.Context, visit *domain.Visit) error
	GetVisitStats(ctx context.Context, code string) (*domain.VisitStats, error)
	Dump(ctx context.Context) ([]domain.Visit, error) // For export
}

// LinkService defines the business logic operations
type LinkService interface {
	Shorten(ctx context.Context, in domain.ShortenInput) (*domain.Link, error)
	Resolve(ctx context.Context, code string, visit domain.VisitInfo) (string, error)
	Stats(ctx context.Context, code string) (*domain.LinkStats, error)
	Overview(ctx context.Context) (*domain.Overview, error)
	Delete(ctx context.Context, code string) error
	GetLink(ctx context.Context, code string) (*domain.Link, error)
}
