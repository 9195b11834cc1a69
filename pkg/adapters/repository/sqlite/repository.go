package sqlite

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/shortlink/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlink/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

// VisitRepository is the append-only click log. Links themselves live in memory.
type VisitRepository struct {
	db *sql.DB
}

func NewVisitRepository(dbURL string) (*VisitRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if driverName == "sqlite" {
		// single writer avoids SQLITE_BUSY from concurrent async visit inserts
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &VisitRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		short_code TEXT NOT NULL,
		referer TEXT,
		user_agent TEXT,
		ip_hash TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_visits_short_code ON visits(short_code);
	`
	_, err := db.Exec(query)
	return err
}

func (r *VisitRepository) Close() error {
	return r.db.Close()
}

func (r *VisitRepository) RecordVisit(ctx context.Context, visit *domain.Visit) error {
	query := `INSERT INTO visits (short_code, referer, user_agent, ip_hash, created_at) VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, visit.Code, visit.Referer, visit.UserAgent, visit.IPHash, visit.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	visit.ID = id
	return nil
}

func (r *VisitRepository) GetVisitStats(ctx context.Context, code string) (*domain.VisitStats, error) {
	stats := &domain.VisitStats{
		Referrers:   make(map[string]int64),
		DailyClicks: []domain.DailyClick{},
	}

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visits WHERE short_code = ?`, code).Scan(&stats.TotalVisits)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT referer FROM visits WHERE short_code = ?`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var referer sql.NullString
		if err := rows.Scan(&referer); err != nil {
			return nil, err
		}
		stats.Referrers[refererHost(referer.String)]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dailyRows, err := r.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, COUNT(*)
		FROM visits WHERE short_code = ?
		GROUP BY day ORDER BY day`, code)
	if err != nil {
		return nil, err
	}
	defer dailyRows.Close()

	for dailyRows.Next() {
		var dc domain.DailyClick
		if err := dailyRows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		stats.DailyClicks = append(stats.DailyClicks, dc)
	}

	return stats, dailyRows.Err()
}

func (r *VisitRepository) Dump(ctx context.Context) ([]domain.Visit, error) {
	query := `SELECT id, short_code, referer, user_agent, ip_hash, created_at FROM visits ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []domain.Visit
	for rows.Next() {
		var v domain.Visit
		var referer, userAgent, ipHash sql.NullString
		var createdAt string
		if err := rows.Scan(&v.ID, &v.Code, &referer, &userAgent, &ipHash, &createdAt); err != nil {
			return nil, err
		}
		if v.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		v.Referer = referer.String
		v.UserAgent = userAgent.String
		v.IPHash = ipHash.String
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// refererHost reduces a referer to its host; empty or unparsable referers count as "direct".
func refererHost(referer string) string {
	if referer == "" {
		return "direct"
	}
	u, err := url.Parse(referer)
	if err != nil || u.Host == "" {
		return "direct"
	}
	return u.Host
}

var _ ports.VisitRepository = (*VisitRepository)(nil)
