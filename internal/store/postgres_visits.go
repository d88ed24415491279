package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laudier3/urlcurt/internal/visits"
)

// PostgresVisitStore is a PostgreSQL implementation of visits.Store.
type PostgresVisitStore struct {
	pool *pgxpool.Pool
}

// NewPostgresVisitStore creates a new PostgreSQL-backed visit store.
func NewPostgresVisitStore(pool *pgxpool.Pool) *PostgresVisitStore {
	return &PostgresVisitStore{pool: pool}
}

func (p *PostgresVisitStore) Insert(ctx context.Context, v *visits.Visit) error {
	query := `
		INSERT INTO visits (url_id, visited_at, ip, country, region, city)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	return p.pool.QueryRow(ctx, query,
		v.URLID, v.Timestamp, v.IP, v.Country, v.Region, v.City,
	).Scan(&v.ID)
}

func (p *PostgresVisitStore) TrafficDaily(ctx context.Context, urlID int64) ([]visits.DayCount, error) {
	query := `
		SELECT TO_CHAR(DATE_TRUNC('day', visited_at), 'YYYY-MM-DD') AS day, COUNT(*)
		FROM visits
		WHERE url_id = $1
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := p.pool.Query(ctx, query, urlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []visits.DayCount

	for rows.Next() {
		var dc visits.DayCount

		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}

		out = append(out, dc)
	}

	return out, rows.Err()
}

func (p *PostgresVisitStore) GeoBreakdown(ctx context.Context, urlID int64) ([]visits.GeoCount, error) {
	query := `
		SELECT
			COALESCE(NULLIF(country, ''), 'Unknown') AS country,
			COALESCE(NULLIF(region, ''), 'Unknown') AS region,
			COALESCE(NULLIF(city, ''), 'Unknown') AS city,
			COUNT(*)
		FROM visits
		WHERE url_id = $1
		GROUP BY 1, 2, 3
		ORDER BY 1, 2, 3
	`

	rows, err := p.pool.Query(ctx, query, urlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []visits.GeoCount

	for rows.Next() {
		var gc visits.GeoCount

		if err := rows.Scan(&gc.Country, &gc.Region, &gc.City, &gc.Count); err != nil {
			return nil, err
		}

		out = append(out, gc)
	}

	return out, rows.Err()
}

// Compile-time check.
var _ visits.Store = (*PostgresVisitStore)(nil)
